package service

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sloanb/pjourney/internal/db"
	"github.com/sloanb/pjourney/internal/domain"
	"github.com/sloanb/pjourney/internal/store"
)

type fixture struct {
	db      *sql.DB
	dbPath  string
	user    *domain.User
	rolls   *RollService
	cameras *store.CameraStore
	lenses  *store.LensStore
	stocks  *store.FilmStockStore
	frames  *store.FrameStore
	devs    *store.DevelopmentStore
	recipes *store.RecipeStore
	cloud   *store.CloudSettingsStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	d, err := db.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, d.Close()) })

	user, err := store.NewUserStore(d).Create(context.Background(), "ansel", "secret")
	require.NoError(t, err)

	f := &fixture{
		db:      d,
		dbPath:  dbPath,
		user:    user,
		cameras: store.NewCameraStore(d),
		lenses:  store.NewLensStore(d),
		stocks:  store.NewFilmStockStore(d),
		frames:  store.NewFrameStore(d),
		devs:    store.NewDevelopmentStore(d),
		recipes: store.NewRecipeStore(d),
		cloud:   store.NewCloudSettingsStore(d),
	}
	f.rolls = NewRollService(d, store.NewRollStore(d), f.stocks, f.cameras,
		f.lenses, f.frames, f.devs, f.recipes, testLogger())
	return f
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (f *fixture) seedStock(t *testing.T, framesPerRoll, quantity int) *domain.FilmStock {
	t.Helper()
	stock, err := f.stocks.Create(context.Background(), &domain.FilmStock{
		UserID:         f.user.ID,
		Brand:          "Ilford",
		Name:           "HP5 Plus",
		Type:           "black_and_white",
		MediaType:      domain.MediaTypeAnalog,
		ISO:            400,
		Format:         "35mm",
		FramesPerRoll:  framesPerRoll,
		QuantityOnHand: quantity,
	})
	require.NoError(t, err)
	return stock
}

func (f *fixture) seedCamera(t *testing.T) *domain.Camera {
	t.Helper()
	camera, err := f.cameras.Create(context.Background(), &domain.Camera{
		UserID:     f.user.ID,
		Name:       "FM2",
		Make:       "Nikon",
		CameraType: domain.CameraTypeFilm,
	})
	require.NoError(t, err)
	return camera
}

func (f *fixture) seedLens(t *testing.T) *domain.Lens {
	t.Helper()
	lens, err := f.lenses.Create(context.Background(), &domain.Lens{
		UserID:      f.user.ID,
		Name:        "50mm f/1.8",
		FocalLength: "50mm",
	})
	require.NoError(t, err)
	return lens
}
