package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sloanb/pjourney/internal/domain"
)

func TestCameraCRUD(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	user := seedUser(t, d, "ansel")
	cameras := NewCameraStore(d)

	created := seedCamera(t, d, user.ID, "FM2")
	assert.NotZero(t, created.ID)
	assert.Equal(t, "FM2", created.Name)

	got, err := cameras.GetByID(ctx, user.ID, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, created.ID, got.ID)

	got.Notes = "meter battery replaced"
	updated, err := cameras.Update(ctx, got)
	require.NoError(t, err)
	assert.Equal(t, "meter battery replaced", updated.Notes)

	require.NoError(t, cameras.Delete(ctx, user.ID, created.ID))

	gone, err := cameras.GetByID(ctx, user.ID, created.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestCameraScopedToUser(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	alice := seedUser(t, d, "alice")
	bob := seedUser(t, d, "bob")
	cameras := NewCameraStore(d)

	mine := seedCamera(t, d, alice.ID, "Leica M6")

	got, err := cameras.GetByID(ctx, bob.ID, mine.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	err = cameras.Delete(ctx, bob.ID, mine.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := cameras.List(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCameraListOrdering(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	user := seedUser(t, d, "ansel")
	cameras := NewCameraStore(d)

	seedCamera(t, d, user.ID, "Zorki 4")
	seedCamera(t, d, user.ID, "AE-1")
	seedCamera(t, d, user.ID, "FM2")

	list, err := cameras.List(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "AE-1", list[0].Name)
	assert.Equal(t, "FM2", list[1].Name)
	assert.Equal(t, "Zorki 4", list[2].Name)
}

func TestCameraDeleteRemovesIssues(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	user := seedUser(t, d, "ansel")
	cameras := NewCameraStore(d)

	camera := seedCamera(t, d, user.ID, "FM2")
	issue, err := cameras.CreateIssue(ctx, &domain.CameraIssue{
		CameraID:    camera.ID,
		Description: "light seal decaying",
		DateNoted:   time.Now().UTC(),
	})
	require.NoError(t, err)

	require.NoError(t, cameras.Delete(ctx, user.ID, camera.ID))

	gone, err := cameras.GetIssue(ctx, issue.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestCameraIssueLifecycle(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	user := seedUser(t, d, "ansel")
	cameras := NewCameraStore(d)
	camera := seedCamera(t, d, user.ID, "FM2")

	issue, err := cameras.CreateIssue(ctx, &domain.CameraIssue{
		CameraID:    camera.ID,
		Description: "shutter capping at 1/1000",
		DateNoted:   time.Now().UTC(),
	})
	require.NoError(t, err)
	assert.False(t, issue.Resolved)

	resolvedAt := time.Now().UTC()
	issue.Resolved = true
	issue.ResolvedDate = &resolvedAt
	issue.Notes = "CLA done"
	updated, err := cameras.UpdateIssue(ctx, issue)
	require.NoError(t, err)
	assert.True(t, updated.Resolved)
	require.NotNil(t, updated.ResolvedDate)

	issues, err := cameras.ListIssues(ctx, camera.ID)
	require.NoError(t, err)
	assert.Len(t, issues, 1)

	require.NoError(t, cameras.DeleteIssue(ctx, issue.ID))
	issues, err = cameras.ListIssues(ctx, camera.ID)
	require.NoError(t, err)
	assert.Empty(t, issues)
}
