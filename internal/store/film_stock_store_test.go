package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilmStockCRUD(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	user := seedUser(t, d, "ansel")
	stocks := NewFilmStockStore(d)

	created := seedStock(t, d, user.ID, 36, 5)
	assert.Equal(t, 36, created.FramesPerRoll)
	assert.Equal(t, 5, created.QuantityOnHand)

	created.QuantityOnHand = 4
	updated, err := stocks.Update(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, 4, updated.QuantityOnHand)

	require.NoError(t, stocks.Delete(ctx, user.ID, created.ID))
	gone, err := stocks.GetByID(ctx, user.ID, created.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestFilmStockDeleteRejectedWhileReferenced(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	user := seedUser(t, d, "ansel")
	stocks := NewFilmStockStore(d)

	stock := seedStock(t, d, user.ID, 36, 2)
	seedRoll(t, d, user.ID, stock.ID)

	err := stocks.Delete(ctx, user.ID, stock.ID)
	assert.ErrorIs(t, err, ErrConflict)

	still, err := stocks.GetByID(ctx, user.ID, stock.ID)
	require.NoError(t, err)
	assert.NotNil(t, still)
}

func TestFilmStockDeleteScopedToUser(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	owner := seedUser(t, d, "ansel")
	other := seedUser(t, d, "dorothea")
	stocks := NewFilmStockStore(d)

	stock := seedStock(t, d, owner.ID, 36, 2)
	seedRoll(t, d, owner.ID, stock.ID)

	// Another user's delete attempt must not reveal that the stock exists,
	// even though it has referencing rolls.
	err := stocks.Delete(ctx, other.ID, stock.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	still, err := stocks.GetByID(ctx, owner.ID, stock.ID)
	require.NoError(t, err)
	assert.NotNil(t, still)
}

func TestDecrementQuantity(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	user := seedUser(t, d, "ansel")
	stocks := NewFilmStockStore(d)

	stock := seedStock(t, d, user.ID, 36, 1)

	err := InTx(ctx, d, func(tx *sql.Tx) error {
		return stocks.DecrementQuantityTx(ctx, tx, user.ID, stock.ID)
	})
	require.NoError(t, err)

	got, err := stocks.GetByID(ctx, user.ID, stock.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.QuantityOnHand)

	// Exhausted stock rejects the next decrement and never goes negative.
	err = InTx(ctx, d, func(tx *sql.Tx) error {
		return stocks.DecrementQuantityTx(ctx, tx, user.ID, stock.ID)
	})
	assert.ErrorIs(t, err, ErrNoStock)

	got, err = stocks.GetByID(ctx, user.ID, stock.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.QuantityOnHand)
}

func TestFilmStockRejectsNegativeValues(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	user := seedUser(t, d, "ansel")
	stocks := NewFilmStockStore(d)

	stock := seedStock(t, d, user.ID, 36, 2)

	stock.QuantityOnHand = -1
	_, err := stocks.Update(ctx, stock)
	assert.Error(t, err)

	stock.QuantityOnHand = 2
	stock.FramesPerRoll = -10
	_, err = stocks.Update(ctx, stock)
	assert.Error(t, err)
}
