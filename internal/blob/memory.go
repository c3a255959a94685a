package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store for tests.
type MemoryStore struct {
	mu    sync.Mutex
	blobs map[string]memBlob
}

type memBlob struct {
	data     []byte
	modified time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string]memBlob)}
}

func (s *MemoryStore) Driver() Driver { return DriverMemory }

func (s *MemoryStore) Put(ctx context.Context, key string, r io.Reader) (Info, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Info{}, fmt.Errorf("failed to read blob: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	b := memBlob{data: data, modified: time.Now()}
	s.blobs[key] = b
	return Info{Key: key, Size: int64(len(data)), LastModified: b.modified}, nil
}

func (s *MemoryStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.blobs[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return io.NopCloser(bytes.NewReader(b.data)), nil
}

func (s *MemoryStore) List(ctx context.Context, prefix string) ([]Info, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var infos []Info
	for key, b := range s.blobs {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			infos = append(infos, Info{Key: key, Size: int64(len(b.data)), LastModified: b.modified})
		}
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos, nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[key]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	delete(s.blobs, key)
	return nil
}
