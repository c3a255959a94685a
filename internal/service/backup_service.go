package service

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sloanb/pjourney/internal/apperr"
	"github.com/sloanb/pjourney/internal/blob"
)

// cloudSettingsRepository is the subset of store.CloudSettingsStore that
// BackupService requires.
type cloudSettingsRepository interface {
	MarkSynced(ctx context.Context, userID int64, at time.Time) error
}

const backupTimeLayout = "20060102_150405"

// BackupInfo describes one database snapshot, local or remote.
type BackupInfo struct {
	Name     string    `json:"name"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// BackupService makes timestamped copies of the live database file, ships
// them to a blob store, and restores them. It treats the database purely as
// a file; it never reads rows through the live connection.
type BackupService struct {
	dbPath    string
	backupDir string
	blobs     blob.Store
	settings  cloudSettingsRepository
	logger    *slog.Logger
}

func NewBackupService(dbPath, backupDir string, blobs blob.Store, settings cloudSettingsRepository, logger *slog.Logger) *BackupService {
	return &BackupService{
		dbPath:    dbPath,
		backupDir: backupDir,
		blobs:     blobs,
		settings:  settings,
		logger:    logger,
	}
}

func backupName(at time.Time) string {
	return fmt.Sprintf("pjourney_%s.db", at.Format(backupTimeLayout))
}

// BackupLocal copies the database file into the backup directory under a
// timestamped name and returns the created snapshot.
func (s *BackupService) BackupLocal(ctx context.Context) (*BackupInfo, error) {
	if err := os.MkdirAll(s.backupDir, 0o755); err != nil {
		return nil, apperr.Wrap(apperr.CodeIOBackup, fmt.Errorf("create backup dir: %w", err))
	}

	name := backupName(time.Now().UTC())
	dest := filepath.Join(s.backupDir, name)
	if err := copyFile(s.dbPath, dest); err != nil {
		return nil, apperr.Wrap(apperr.CodeIOBackup, err)
	}

	fi, err := os.Stat(dest)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeIOBackup, err)
	}

	s.logger.Info("database backed up", "file", name, "size", fi.Size())
	return &BackupInfo{Name: name, Size: fi.Size(), Modified: fi.ModTime()}, nil
}

// ListLocalBackups lists snapshots in the backup directory, newest first.
func (s *BackupService) ListLocalBackups(ctx context.Context) ([]BackupInfo, error) {
	entries, err := os.ReadDir(s.backupDir)
	if os.IsNotExist(err) {
		return []BackupInfo{}, nil
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeIOBackup, err)
	}

	out := []BackupInfo{}
	for _, e := range entries {
		if e.IsDir() || !isBackupName(e.Name()) {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			return nil, apperr.Wrap(apperr.CodeIOBackup, err)
		}
		out = append(out, BackupInfo{Name: e.Name(), Size: fi.Size(), Modified: fi.ModTime()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name > out[j].Name })
	return out, nil
}

func isBackupName(name string) bool {
	return strings.HasPrefix(name, "pjourney_") && strings.HasSuffix(name, ".db")
}

// SyncToCloud uploads a fresh snapshot of the database file to the blob
// store and records the sync time on the user's cloud settings. The sync
// time is only written after the upload reports success.
func (s *BackupService) SyncToCloud(ctx context.Context, userID int64) (*BackupInfo, error) {
	now := time.Now().UTC()
	name := backupName(now)

	f, err := os.Open(s.dbPath)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeIOBackup, fmt.Errorf("open database: %w", err))
	}
	defer f.Close()

	info, err := s.blobs.Put(ctx, name, f)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeIOBackup, fmt.Errorf("upload %s: %w", name, err))
	}

	if err := s.settings.MarkSynced(ctx, userID, now); err != nil {
		return nil, err
	}

	s.logger.Info("database synced to cloud", "key", info.Key, "size", info.Size, "driver", s.blobs.Driver())
	return &BackupInfo{Name: info.Key, Size: info.Size, Modified: info.LastModified}, nil
}

// SyncToCloudAsync runs SyncToCloud on a background goroutine so the caller
// is not held up by a slow upload. Failures are logged, not returned.
func (s *BackupService) SyncToCloudAsync(userID int64) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if _, err := s.SyncToCloud(ctx, userID); err != nil {
			s.logger.Error("background cloud sync failed", "user_id", userID, "error", err)
		}
	}()
}

// ListCloudBackups lists snapshots in the blob store, newest first.
func (s *BackupService) ListCloudBackups(ctx context.Context) ([]BackupInfo, error) {
	infos, err := s.blobs.List(ctx, "pjourney_")
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeIOBackup, err)
	}
	out := make([]BackupInfo, 0, len(infos))
	for _, info := range infos {
		out = append(out, BackupInfo{Name: info.Key, Size: info.Size, Modified: info.LastModified})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name > out[j].Name })
	return out, nil
}

// RestoreFromCloud downloads a snapshot, validates that it is a usable
// database, moves the current database file aside as a safety copy, and
// puts the snapshot in its place. The caller must close the live
// connection before calling this and reopen afterward.
func (s *BackupService) RestoreFromCloud(ctx context.Context, key string) error {
	rc, err := s.blobs.Get(ctx, key)
	if err != nil {
		return apperr.Wrap(apperr.CodeIOBackup, fmt.Errorf("download %s: %w", key, err))
	}
	defer rc.Close()

	tmp, err := os.CreateTemp(filepath.Dir(s.dbPath), "restore-*.db")
	if err != nil {
		return apperr.Wrap(apperr.CodeIOBackup, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, rc); err != nil {
		tmp.Close()
		return apperr.Wrap(apperr.CodeIOBackup, fmt.Errorf("write %s: %w", tmpPath, err))
	}
	if err := tmp.Close(); err != nil {
		return apperr.Wrap(apperr.CodeIOBackup, err)
	}

	if err := validateSnapshot(ctx, tmpPath); err != nil {
		return apperr.Wrap(apperr.CodeIOBackup, fmt.Errorf("snapshot %s failed validation: %w", key, err))
	}

	if _, err := os.Stat(s.dbPath); err == nil {
		safety := s.dbPath + ".pre-restore"
		if err := copyFile(s.dbPath, safety); err != nil {
			return apperr.Wrap(apperr.CodeIOBackup, fmt.Errorf("safety copy: %w", err))
		}
		s.logger.Info("safety copy of current database written", "file", safety)
	}

	if err := os.Rename(tmpPath, s.dbPath); err != nil {
		return apperr.Wrap(apperr.CodeIOBackup, fmt.Errorf("replace database: %w", err))
	}

	s.logger.Info("database restored from cloud", "key", key)
	return nil
}

// validateSnapshot opens the candidate file read-only, runs an integrity
// check, and verifies the core tables are present, so a truncated or foreign
// file never replaces the live database.
func validateSnapshot(ctx context.Context, path string) error {
	conn, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=ro", path))
	if err != nil {
		return err
	}
	defer conn.Close()

	var check string
	if err := conn.QueryRowContext(ctx, "PRAGMA quick_check").Scan(&check); err != nil {
		return fmt.Errorf("integrity check: %w", err)
	}
	if check != "ok" {
		return fmt.Errorf("integrity check: %s", check)
	}

	for _, table := range []string{"users", "rolls", "film_stocks"} {
		var name string
		err := conn.QueryRowContext(ctx,
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		if err == sql.ErrNoRows {
			return fmt.Errorf("missing table %s", table)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy to %s: %w", dst, err)
	}
	return out.Close()
}
