// Package web is the JSON API surface. Handlers decode requests, call the
// stores and services, and map failures to status codes with stable error
// references. All business rules live below this package.
package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sloanb/pjourney/internal/domain"
	"github.com/sloanb/pjourney/internal/service"
	"github.com/sloanb/pjourney/internal/store"
)

type Server struct {
	users    *store.UserStore
	cameras  *store.CameraStore
	lenses   *store.LensStore
	stocks   *store.FilmStockStore
	frames   *store.FrameStore
	devs     *store.DevelopmentStore
	recipes  *store.RecipeStore
	cloud    *store.CloudSettingsStore
	rolls    *service.RollService
	stats    *service.StatsService
	backups  *service.BackupService
	exports  *service.ExportService
	maint    func(ctx context.Context) error
	lowStock int
	mux      *http.ServeMux
	metrics  *metrics
	logger   *slog.Logger
}

// Deps carries everything the server needs. Fields mirror the package
// layout so wiring in main stays flat.
type Deps struct {
	Users             *store.UserStore
	Cameras           *store.CameraStore
	Lenses            *store.LensStore
	FilmStocks        *store.FilmStockStore
	Frames            *store.FrameStore
	Developments      *store.DevelopmentStore
	Recipes           *store.RecipeStore
	CloudSettings     *store.CloudSettingsStore
	Rolls             *service.RollService
	Stats             *service.StatsService
	Backups           *service.BackupService
	Exports           *service.ExportService
	Optimize          func(ctx context.Context) error
	LowStockThreshold int
	Logger            *slog.Logger
}

func NewServer(d Deps) *Server {
	s := &Server{
		users:    d.Users,
		cameras:  d.Cameras,
		lenses:   d.Lenses,
		stocks:   d.FilmStocks,
		frames:   d.Frames,
		devs:     d.Developments,
		recipes:  d.Recipes,
		cloud:    d.CloudSettings,
		rolls:    d.Rolls,
		stats:    d.Stats,
		backups:  d.Backups,
		exports:  d.Exports,
		maint:    d.Optimize,
		lowStock: d.LowStockThreshold,
		mux:      http.NewServeMux(),
		metrics:  newMetrics(),
		logger:   d.Logger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	s.mux.Handle("GET /metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))

	s.mux.Handle("GET /api/cameras", s.auth(s.handleListCameras))
	s.mux.Handle("POST /api/cameras", s.auth(s.handleCreateCamera))
	s.mux.Handle("GET /api/cameras/{id}", s.auth(s.handleGetCamera))
	s.mux.Handle("PUT /api/cameras/{id}", s.auth(s.handleUpdateCamera))
	s.mux.Handle("DELETE /api/cameras/{id}", s.auth(s.handleDeleteCamera))
	s.mux.Handle("GET /api/cameras/{id}/issues", s.auth(s.handleListCameraIssues))
	s.mux.Handle("POST /api/cameras/{id}/issues", s.auth(s.handleCreateCameraIssue))
	s.mux.Handle("PUT /api/cameras/{id}/issues/{issueID}", s.auth(s.handleUpdateCameraIssue))
	s.mux.Handle("DELETE /api/cameras/{id}/issues/{issueID}", s.auth(s.handleDeleteCameraIssue))

	s.mux.Handle("GET /api/lenses", s.auth(s.handleListLenses))
	s.mux.Handle("POST /api/lenses", s.auth(s.handleCreateLens))
	s.mux.Handle("GET /api/lenses/{id}", s.auth(s.handleGetLens))
	s.mux.Handle("PUT /api/lenses/{id}", s.auth(s.handleUpdateLens))
	s.mux.Handle("DELETE /api/lenses/{id}", s.auth(s.handleDeleteLens))
	s.mux.Handle("GET /api/lenses/{id}/notes", s.auth(s.handleListLensNotes))
	s.mux.Handle("POST /api/lenses/{id}/notes", s.auth(s.handleCreateLensNote))
	s.mux.Handle("PUT /api/lenses/{id}/notes/{noteID}", s.auth(s.handleUpdateLensNote))
	s.mux.Handle("DELETE /api/lenses/{id}/notes/{noteID}", s.auth(s.handleDeleteLensNote))

	s.mux.Handle("GET /api/film-stocks", s.auth(s.handleListFilmStocks))
	s.mux.Handle("POST /api/film-stocks", s.auth(s.handleCreateFilmStock))
	s.mux.Handle("GET /api/film-stocks/{id}", s.auth(s.handleGetFilmStock))
	s.mux.Handle("PUT /api/film-stocks/{id}", s.auth(s.handleUpdateFilmStock))
	s.mux.Handle("DELETE /api/film-stocks/{id}", s.auth(s.handleDeleteFilmStock))

	s.mux.Handle("GET /api/rolls", s.auth(s.handleListRolls))
	s.mux.Handle("POST /api/rolls", s.auth(s.handleCreateRoll))
	s.mux.Handle("GET /api/rolls/{id}", s.auth(s.handleGetRoll))
	s.mux.Handle("PATCH /api/rolls/{id}", s.auth(s.handleUpdateRollDetails))
	s.mux.Handle("DELETE /api/rolls/{id}", s.auth(s.handleDeleteRoll))
	s.mux.Handle("POST /api/rolls/{id}/load", s.auth(s.handleLoadRoll))
	s.mux.Handle("POST /api/rolls/{id}/advance", s.auth(s.handleAdvanceRoll))
	s.mux.Handle("GET /api/rolls/{id}/frames", s.auth(s.handleListFrames))
	s.mux.Handle("GET /api/rolls/{id}/development", s.auth(s.handleGetDevelopment))

	s.mux.Handle("PUT /api/frames/{id}", s.auth(s.handleUpdateFrame))

	s.mux.Handle("GET /api/recipes", s.auth(s.handleListRecipes))
	s.mux.Handle("POST /api/recipes", s.auth(s.handleCreateRecipe))
	s.mux.Handle("GET /api/recipes/{id}", s.auth(s.handleGetRecipe))
	s.mux.Handle("PUT /api/recipes/{id}", s.auth(s.handleUpdateRecipe))
	s.mux.Handle("DELETE /api/recipes/{id}", s.auth(s.handleDeleteRecipe))

	s.mux.Handle("GET /api/stats", s.auth(s.handleStats))
	s.mux.Handle("GET /api/stats/low-stock", s.auth(s.handleLowStock))
	s.mux.Handle("GET /api/stats/counts", s.auth(s.handleCounts))
	s.mux.Handle("GET /api/stats/usage", s.auth(s.handleUsage))
	s.mux.Handle("GET /api/stats/loaded-cameras", s.auth(s.handleLoadedCameras))

	s.mux.Handle("GET /api/export/rolls.csv", s.auth(s.handleExportRollsCSV))
	s.mux.Handle("GET /api/export/rolls.json", s.auth(s.handleExportRollsJSON))
	s.mux.Handle("GET /api/export/frames.csv", s.auth(s.handleExportFramesCSV))
	s.mux.Handle("GET /api/export/frames.json", s.auth(s.handleExportFramesJSON))

	s.mux.Handle("GET /api/users", s.auth(s.handleListUsers))
	s.mux.Handle("POST /api/users", s.auth(s.handleCreateUser))
	s.mux.Handle("DELETE /api/users/{id}", s.auth(s.handleDeleteUser))

	s.mux.Handle("GET /api/cloud-settings", s.auth(s.handleGetCloudSettings))
	s.mux.Handle("PUT /api/cloud-settings", s.auth(s.handleSaveCloudSettings))
	s.mux.Handle("DELETE /api/cloud-settings", s.auth(s.handleDeleteCloudSettings))

	s.mux.Handle("POST /api/admin/vacuum", s.auth(s.handleVacuum))
	s.mux.Handle("POST /api/admin/backup", s.auth(s.handleBackup))
	s.mux.Handle("GET /api/admin/backups", s.auth(s.handleListBackups))
	s.mux.Handle("POST /api/admin/sync", s.auth(s.handleSync))
	s.mux.Handle("GET /api/admin/cloud-backups", s.auth(s.handleListCloudBackups))
	s.mux.Handle("POST /api/admin/restore", s.auth(s.handleRestore))
}

type ctxKey int

const userKey ctxKey = 0

// auth checks HTTP Basic credentials against the user store and stores the
// authenticated user on the request context.
func (s *Server) auth(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		if !ok {
			w.Header().Set("WWW-Authenticate", `Basic realm="pjourney"`)
			writeErrorStatus(w, http.StatusUnauthorized, "authentication required")
			return
		}
		user, err := s.users.VerifyPassword(r.Context(), username, password)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if user == nil {
			w.Header().Set("WWW-Authenticate", `Basic realm="pjourney"`)
			writeErrorStatus(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, user)))
	})
}

func currentUser(r *http.Request) *domain.User {
	u, _ := r.Context().Value(userKey).(*domain.User)
	return u
}

// securityHeaders adds defensive HTTP response headers to every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder wraps http.ResponseWriter to capture the written status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		elapsed := time.Since(start)
		s.metrics.observe(r.Method, r.URL.Path, rec.status, elapsed)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", elapsed.Milliseconds(),
		)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.requestLogger(securityHeaders(s.mux)).ServeHTTP(w, r)
}

func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("starting server", "addr", addr)
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return srv.ListenAndServe()
}
