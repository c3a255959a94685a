package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDefaultUser(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	users := NewUserStore(d)

	require.NoError(t, users.EnsureDefaultUser(ctx))

	admin, err := users.GetByUsername(ctx, "admin")
	require.NoError(t, err)
	require.NotNil(t, admin)

	// A second call must not create another account.
	require.NoError(t, users.EnsureDefaultUser(ctx))
	all, err := users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestVerifyPassword(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	users := NewUserStore(d)

	created, err := users.Create(ctx, "ansel", "zonesystem")
	require.NoError(t, err)
	assert.NotEqual(t, "zonesystem", created.PasswordHash)

	ok, err := users.VerifyPassword(ctx, "ansel", "zonesystem")
	require.NoError(t, err)
	require.NotNil(t, ok)
	assert.Equal(t, created.ID, ok.ID)

	bad, err := users.VerifyPassword(ctx, "ansel", "f64")
	require.NoError(t, err)
	assert.Nil(t, bad)

	missing, err := users.VerifyPassword(ctx, "nobody", "zonesystem")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestDeleteUserKeepsLastAccount(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	users := NewUserStore(d)

	only, err := users.Create(ctx, "solo", "pw")
	require.NoError(t, err)

	err = users.Delete(ctx, only.ID)
	assert.ErrorIs(t, err, ErrConflict)

	second, err := users.Create(ctx, "other", "pw")
	require.NoError(t, err)

	require.NoError(t, users.Delete(ctx, second.ID))

	err = users.Delete(ctx, second.ID)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestGetUserMissingReturnsNil(t *testing.T) {
	d := openTestDB(t)
	users := NewUserStore(d)

	u, err := users.GetByID(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, u)
}
