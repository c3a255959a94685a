package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sloanb/pjourney/internal/blob"
	"github.com/sloanb/pjourney/internal/db"
	"github.com/sloanb/pjourney/internal/service"
	"github.com/sloanb/pjourney/internal/store"
	"github.com/sloanb/pjourney/internal/web"
)

type testEnv struct {
	server *web.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	database, err := db.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, database.Close()) })

	ctx := context.Background()
	users := store.NewUserStore(database)
	require.NoError(t, users.EnsureDefaultUser(ctx))

	cameras := store.NewCameraStore(database)
	lenses := store.NewLensStore(database)
	stocks := store.NewFilmStockStore(database)
	rolls := store.NewRollStore(database)
	frames := store.NewFrameStore(database)
	devs := store.NewDevelopmentStore(database)
	recipes := store.NewRecipeStore(database)
	cloud := store.NewCloudSettingsStore(database)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	rollSvc := service.NewRollService(database, rolls, stocks, cameras, lenses,
		frames, devs, recipes, logger)
	blobs := blob.NewMemoryStore()
	backupSvc := service.NewBackupService(dbPath, filepath.Join(t.TempDir(), "backups"),
		blobs, cloud, logger)

	server := web.NewServer(web.Deps{
		Users:             users,
		Cameras:           cameras,
		Lenses:            lenses,
		FilmStocks:        stocks,
		Frames:            frames,
		Developments:      devs,
		Recipes:           recipes,
		CloudSettings:     cloud,
		Rolls:             rollSvc,
		Stats:             service.NewStatsService(database),
		Backups:           backupSvc,
		Exports:           service.NewExportService(database),
		Optimize:          func(ctx context.Context) error { return store.Optimize(ctx, database) },
		LowStockThreshold: 2,
		Logger:            logger,
	})
	return &testEnv{server: server}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, rd)
	req.SetBasicAuth("admin", "pjourney")
	w := httptest.NewRecorder()
	e.server.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), "body: %s", w.Body.String())
	return v
}

func TestAuthRequired(t *testing.T) {
	e := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/cameras", nil)
	w := httptest.NewRecorder()
	e.server.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/cameras", nil)
	req.SetBasicAuth("admin", "wrong")
	w = httptest.NewRecorder()
	e.server.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHealthAndMetricsUnauthenticated(t *testing.T) {
	e := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	e.server.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w = httptest.NewRecorder()
	e.server.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pjourney_http_requests_total")
}

func TestCameraCRUDOverHTTP(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(t, http.MethodPost, "/api/cameras", map[string]any{
		"name": "FM2", "make": "Nikon", "camera_type": "film",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[map[string]any](t, w)
	id := int64(created["id"].(float64))

	w = e.do(t, http.MethodGet, fmt.Sprintf("/api/cameras/%d", id), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodPut, fmt.Sprintf("/api/cameras/%d", id), map[string]any{
		"name": "FM2n", "make": "Nikon", "camera_type": "film",
	})
	require.Equal(t, http.StatusOK, w.Code)
	updated := decode[map[string]any](t, w)
	assert.Equal(t, "FM2n", updated["name"])

	w = e.do(t, http.MethodDelete, fmt.Sprintf("/api/cameras/%d", id), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = e.do(t, http.MethodGet, fmt.Sprintf("/api/cameras/%d", id), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateCameraValidation(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(t, http.MethodPost, "/api/cameras", map[string]any{"name": "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRollLifecycleOverHTTP(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(t, http.MethodPost, "/api/film-stocks", map[string]any{
		"brand": "Ilford", "name": "HP5 Plus", "type": "black_and_white",
		"iso": 400, "format": "35mm", "frames_per_roll": 36, "quantity_on_hand": 1,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	stock := decode[map[string]any](t, w)
	stockID := int64(stock["id"].(float64))

	w = e.do(t, http.MethodPost, "/api/cameras", map[string]any{
		"name": "FM2", "camera_type": "film",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	camera := decode[map[string]any](t, w)
	cameraID := int64(camera["id"].(float64))

	w = e.do(t, http.MethodPost, "/api/rolls", map[string]any{"film_stock_id": stockID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	roll := decode[map[string]any](t, w)
	rollID := int64(roll["id"].(float64))
	assert.Equal(t, "fresh", roll["status"])

	// The stock is exhausted now; a second roll is rejected.
	w = e.do(t, http.MethodPost, "/api/rolls", map[string]any{"film_stock_id": stockID})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = e.do(t, http.MethodPost, fmt.Sprintf("/api/rolls/%d/load", rollID), map[string]any{
		"camera_id": cameraID,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	loaded := decode[map[string]any](t, w)
	assert.Equal(t, "loaded", loaded["status"])

	w = e.do(t, http.MethodGet, fmt.Sprintf("/api/rolls/%d/frames", rollID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	frames := decode[[]map[string]any](t, w)
	assert.Len(t, frames, 36)

	// loaded -> shooting -> finished
	w = e.do(t, http.MethodPost, fmt.Sprintf("/api/rolls/%d/advance", rollID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = e.do(t, http.MethodPost, fmt.Sprintf("/api/rolls/%d/advance", rollID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	// finished without a branch is rejected
	w = e.do(t, http.MethodPost, fmt.Sprintf("/api/rolls/%d/advance", rollID), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(t, http.MethodPost, fmt.Sprintf("/api/rolls/%d/advance", rollID), map[string]any{
		"branch": "self", "process_type": "B&W",
		"steps": []map[string]any{{"chemical_name": "HC-110", "temperature": "20C"}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	developed := decode[map[string]any](t, w)
	assert.Equal(t, "developed", developed["status"])

	// Terminal state conflicts.
	w = e.do(t, http.MethodPost, fmt.Sprintf("/api/rolls/%d/advance", rollID), nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = e.do(t, http.MethodGet, fmt.Sprintf("/api/rolls/%d/development", rollID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	dev := decode[map[string]any](t, w)
	assert.NotNil(t, dev["development"])
}

func TestStatsAndExportOverHTTP(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(t, http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodGet, "/api/stats/low-stock", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodGet, "/api/export/rolls.csv", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "Roll ID,"))
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
}

func TestBackupOverHTTP(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(t, http.MethodPost, "/api/admin/backup", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = e.do(t, http.MethodGet, "/api/admin/backups", nil)
	require.Equal(t, http.StatusOK, w.Code)
	backups := decode[[]map[string]any](t, w)
	assert.Len(t, backups, 1)
}

func TestVacuumOverHTTP(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(t, http.MethodPost, "/api/admin/vacuum", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestErrorBodyCarriesReference(t *testing.T) {
	e := newTestEnv(t)

	// Restores of unknown keys surface the backup IO reference.
	w := e.do(t, http.MethodPost, "/api/admin/restore", map[string]any{"key": "pjourney_nope.db"})
	require.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode[map[string]map[string]string](t, w)
	assert.Equal(t, "PJ-IO01", body["error"]["code"])
}

func TestSecurityHeaders(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(t, http.MethodGet, "/api/cameras", nil)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
}
