package main

import (
	"context"
	"database/sql"
	"log"

	"github.com/sloanb/pjourney/internal/blob"
	"github.com/sloanb/pjourney/internal/config"
	"github.com/sloanb/pjourney/internal/db"
	"github.com/sloanb/pjourney/internal/logging"
	"github.com/sloanb/pjourney/internal/service"
	"github.com/sloanb/pjourney/internal/store"
	"github.com/sloanb/pjourney/internal/web"
)

func main() {
	cfg := config.Load()

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer cleanup()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	ctx := context.Background()

	userStore := store.NewUserStore(database)
	if err := userStore.EnsureDefaultUser(ctx); err != nil {
		logger.Error("failed to ensure default user", "error", err)
		return
	}

	cameraStore := store.NewCameraStore(database)
	lensStore := store.NewLensStore(database)
	stockStore := store.NewFilmStockStore(database)
	rollStore := store.NewRollStore(database)
	frameStore := store.NewFrameStore(database)
	devStore := store.NewDevelopmentStore(database)
	recipeStore := store.NewRecipeStore(database)
	cloudStore := store.NewCloudSettingsStore(database)

	blobStore, err := blob.Open(ctx, blob.Options{
		Driver:      blob.Driver(cfg.BlobDriver),
		FSRoot:      cfg.BlobFSRoot,
		S3Region:    cfg.S3Region,
		S3Bucket:    cfg.S3Bucket,
		S3Endpoint:  cfg.S3Endpoint,
		S3PathStyle: cfg.S3PathStyle,
	})
	if err != nil {
		logger.Error("failed to initialize blob store", "error", err)
		return
	}

	rollService := service.NewRollService(database, rollStore, stockStore, cameraStore,
		lensStore, frameStore, devStore, recipeStore, logger)
	statsService := service.NewStatsService(database)
	backupService := service.NewBackupService(cfg.DBPath, cfg.BackupDir, blobStore, cloudStore, logger)
	exportService := service.NewExportService(database)

	server := web.NewServer(web.Deps{
		Users:             userStore,
		Cameras:           cameraStore,
		Lenses:            lensStore,
		FilmStocks:        stockStore,
		Frames:            frameStore,
		Developments:      devStore,
		Recipes:           recipeStore,
		CloudSettings:     cloudStore,
		Rolls:             rollService,
		Stats:             statsService,
		Backups:           backupService,
		Exports:           exportService,
		Optimize:          optimizer(database),
		LowStockThreshold: cfg.LowStockThreshold,
		Logger:            logger,
	})

	if err := server.ListenAndServe(cfg.ListenAddr); err != nil {
		logger.Error("server error", "error", err)
	}
}

func optimizer(database *sql.DB) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		return store.Optimize(ctx, database)
	}
}
