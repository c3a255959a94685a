package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sloanb/pjourney/internal/db"
	"github.com/sloanb/pjourney/internal/domain"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	d, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, d.Close()) })
	return d
}

func seedUser(t *testing.T, d *sql.DB, username string) *domain.User {
	t.Helper()
	user, err := NewUserStore(d).Create(context.Background(), username, "secret")
	require.NoError(t, err)
	return user
}

func seedStock(t *testing.T, d *sql.DB, userID int64, framesPerRoll, quantity int) *domain.FilmStock {
	t.Helper()
	stock, err := NewFilmStockStore(d).Create(context.Background(), &domain.FilmStock{
		UserID:         userID,
		Brand:          "Kodak",
		Name:           "Portra 400",
		Type:           "color",
		MediaType:      domain.MediaTypeAnalog,
		ISO:            400,
		Format:         "35mm",
		FramesPerRoll:  framesPerRoll,
		QuantityOnHand: quantity,
	})
	require.NoError(t, err)
	return stock
}

func seedCamera(t *testing.T, d *sql.DB, userID int64, name string) *domain.Camera {
	t.Helper()
	camera, err := NewCameraStore(d).Create(context.Background(), &domain.Camera{
		UserID:     userID,
		Name:       name,
		Make:       "Nikon",
		Model:      "FM2",
		CameraType: domain.CameraTypeFilm,
	})
	require.NoError(t, err)
	return camera
}

func seedLens(t *testing.T, d *sql.DB, userID int64, name string) *domain.Lens {
	t.Helper()
	lens, err := NewLensStore(d).Create(context.Background(), &domain.Lens{
		UserID:      userID,
		Name:        name,
		Make:        "Nikon",
		FocalLength: "50mm",
	})
	require.NoError(t, err)
	return lens
}

func seedRoll(t *testing.T, d *sql.DB, userID, stockID int64) *domain.Roll {
	t.Helper()
	roll := &domain.Roll{UserID: userID, FilmStockID: stockID}
	err := InTx(context.Background(), d, func(tx *sql.Tx) error {
		return NewRollStore(d).CreateTx(context.Background(), tx, roll)
	})
	require.NoError(t, err)
	return roll
}
