package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sloanb/pjourney/internal/domain"
)

func TestCloudSettingsUpsert(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	user := seedUser(t, d, "ansel")
	settings := NewCloudSettingsStore(d)

	none, err := settings.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, none)

	saved, err := settings.Save(ctx, &domain.CloudSettings{
		UserID:       user.ID,
		Provider:     "s3",
		RemoteFolder: "backups/pjourney",
		Enabled:      true,
	})
	require.NoError(t, err)
	assert.Equal(t, "s3", saved.Provider)

	// A second save overwrites the same row rather than adding one.
	saved, err = settings.Save(ctx, &domain.CloudSettings{
		UserID:       user.ID,
		Provider:     "s3",
		RemoteFolder: "backups/other",
		Enabled:      false,
	})
	require.NoError(t, err)
	assert.Equal(t, "backups/other", saved.RemoteFolder)
	assert.False(t, saved.Enabled)
}

func TestMarkSynced(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	user := seedUser(t, d, "ansel")
	settings := NewCloudSettingsStore(d)

	_, err := settings.Save(ctx, &domain.CloudSettings{
		UserID:   user.ID,
		Provider: "s3",
		Enabled:  true,
	})
	require.NoError(t, err)

	at := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, settings.MarkSynced(ctx, user.ID, at))

	got, err := settings.Get(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastSyncAt)
	assert.WithinDuration(t, at, *got.LastSyncAt, time.Second)
}

func TestCloudSettingsDelete(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	user := seedUser(t, d, "ansel")
	settings := NewCloudSettingsStore(d)

	_, err := settings.Save(ctx, &domain.CloudSettings{UserID: user.ID, Provider: "s3"})
	require.NoError(t, err)

	require.NoError(t, settings.Delete(ctx, user.ID))

	gone, err := settings.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}
