package service

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sloanb/pjourney/internal/blob"
	"github.com/sloanb/pjourney/internal/domain"
)

// openRaw opens a database file without re-running schema setup, to inspect
// a restored file exactly as it is on disk.
func openRaw(path string) (*sql.DB, error) {
	return sql.Open("sqlite", fmt.Sprintf("file:%s?mode=ro", path))
}

func newBackupFixture(t *testing.T) (*fixture, *BackupService, *blob.MemoryStore) {
	t.Helper()
	f := newFixture(t)
	blobs := blob.NewMemoryStore()
	backups := NewBackupService(f.dbPath, filepath.Join(t.TempDir(), "backups"), blobs, f.cloud, testLogger())
	return f, backups, blobs
}

func TestBackupLocal(t *testing.T) {
	_, backups, _ := newBackupFixture(t)
	ctx := context.Background()

	info, err := backups.BackupLocal(ctx)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(info.Name, "pjourney_"))
	assert.True(t, strings.HasSuffix(info.Name, ".db"))
	assert.Positive(t, info.Size)

	list, err := backups.ListLocalBackups(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, info.Name, list[0].Name)
}

func TestListLocalBackupsMissingDir(t *testing.T) {
	_, backups, _ := newBackupFixture(t)

	list, err := backups.ListLocalBackups(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSyncToCloudMarksSettings(t *testing.T) {
	f, backups, blobs := newBackupFixture(t)
	ctx := context.Background()

	_, err := f.cloud.Save(ctx, &domain.CloudSettings{
		UserID: f.user.ID, Provider: "s3", Enabled: true,
	})
	require.NoError(t, err)

	info, err := backups.SyncToCloud(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Positive(t, info.Size)

	remote, err := blobs.List(ctx, "pjourney_")
	require.NoError(t, err)
	require.Len(t, remote, 1)
	assert.Equal(t, info.Name, remote[0].Key)

	settings, err := f.cloud.Get(ctx, f.user.ID)
	require.NoError(t, err)
	require.NotNil(t, settings.LastSyncAt)
}

func TestRestoreFromCloud(t *testing.T) {
	f, backups, _ := newBackupFixture(t)
	ctx := context.Background()

	_, err := f.cloud.Save(ctx, &domain.CloudSettings{
		UserID: f.user.ID, Provider: "s3", Enabled: true,
	})
	require.NoError(t, err)

	// Snapshot the database, then change it so the restore is observable.
	snapshot, err := backups.SyncToCloud(ctx, f.user.ID)
	require.NoError(t, err)

	f.seedStock(t, 36, 5)
	stocks, err := f.stocks.List(ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, stocks, 1)

	require.NoError(t, f.db.Close())
	require.NoError(t, backups.RestoreFromCloud(ctx, snapshot.Name))

	// A safety copy of the replaced file sits next to the database.
	_, err = os.Stat(f.dbPath + ".pre-restore")
	assert.NoError(t, err)

	reopened, err := openRaw(f.dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	var count int
	require.NoError(t, reopened.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM film_stocks`).Scan(&count))
	assert.Zero(t, count)
}

func TestRestoreRejectsCorruptSnapshot(t *testing.T) {
	f, backups, blobs := newBackupFixture(t)
	ctx := context.Background()

	_, err := blobs.Put(ctx, "pjourney_bogus.db", strings.NewReader("not a database"))
	require.NoError(t, err)

	err = backups.RestoreFromCloud(ctx, "pjourney_bogus.db")
	assert.Error(t, err)

	// The live database was not touched.
	stocks, err := f.stocks.List(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Empty(t, stocks)
}

func TestRestoreUnknownKey(t *testing.T) {
	_, backups, _ := newBackupFixture(t)

	err := backups.RestoreFromCloud(context.Background(), "pjourney_nope.db")
	assert.ErrorIs(t, err, blob.ErrNotFound)
}
