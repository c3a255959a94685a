package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLensCRUD(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	user := seedUser(t, d, "ansel")
	lenses := NewLensStore(d)

	created := seedLens(t, d, user.ID, "50mm f/1.8")
	assert.NotZero(t, created.ID)

	maxAperture := 1.8
	created.MaxAperture = &maxAperture
	updated, err := lenses.Update(ctx, created)
	require.NoError(t, err)
	require.NotNil(t, updated.MaxAperture)
	assert.Equal(t, 1.8, *updated.MaxAperture)

	require.NoError(t, lenses.Delete(ctx, user.ID, created.ID))
	gone, err := lenses.GetByID(ctx, user.ID, created.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestLensDeleteRemovesNotes(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	user := seedUser(t, d, "ansel")
	lenses := NewLensStore(d)

	lens := seedLens(t, d, user.ID, "35mm f/2")
	note, err := lenses.CreateNote(ctx, lens.ID, "slight haze, no effect on contrast")
	require.NoError(t, err)

	require.NoError(t, lenses.Delete(ctx, user.ID, lens.ID))

	gone, err := lenses.GetNote(ctx, note.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestLensNotes(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	user := seedUser(t, d, "ansel")
	lenses := NewLensStore(d)
	lens := seedLens(t, d, user.ID, "85mm f/1.8")

	first, err := lenses.CreateNote(ctx, lens.ID, "purchased at camera fair")
	require.NoError(t, err)

	updated, err := lenses.UpdateNote(ctx, first.ID, "purchased at camera fair, serviced 2025")
	require.NoError(t, err)
	assert.Contains(t, updated.Content, "serviced")

	notes, err := lenses.ListNotes(ctx, lens.ID)
	require.NoError(t, err)
	assert.Len(t, notes, 1)

	require.NoError(t, lenses.DeleteNote(ctx, first.ID))
	notes, err = lenses.ListNotes(ctx, lens.ID)
	require.NoError(t, err)
	assert.Empty(t, notes)
}
