// Package blob provides the opaque remote storage the backup service hands
// database snapshots to. The core never inspects blob contents; it only
// uploads, lists, downloads, and deletes whole files.
package blob

import (
	"context"
	"errors"
	"io"
	"time"
)

// Driver identifies a concrete blob storage backend.
type Driver string

const (
	DriverFilesystem Driver = "fs"     // local directory (default, dev)
	DriverS3         Driver = "s3"     // S3 / MinIO compatible
	DriverMemory     Driver = "memory" // in-memory (tests)
)

// ErrNotFound indicates the requested key does not exist.
var ErrNotFound = errors.New("blob not found")

// Info describes a stored blob.
type Info struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// Store is a minimal S3-like surface. Implementations must return List
// results in ascending key order so backup listings are stable.
type Store interface {
	Driver() Driver
	Put(ctx context.Context, key string, r io.Reader) (Info, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	List(ctx context.Context, prefix string) ([]Info, error)
	Delete(ctx context.Context, key string) error
}
