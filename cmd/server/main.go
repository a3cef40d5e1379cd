package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/asgtransit/website-api/internal/config"
	"github.com/asgtransit/website-api/internal/database"
	"github.com/asgtransit/website-api/internal/logger"
	"github.com/asgtransit/website-api/internal/server"
	"github.com/asgtransit/website-api/internal/services"
	"github.com/asgtransit/website-api/pkg/blob"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log := logger.New(cfg.Server)
	log.Info("Starting ASG transit website API")
	log.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Set Gin mode
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	ctx := context.Background()

	log.WithField("backend", cfg.Storage.Backend).Info("Opening record store...")
	store, err := database.NewRecordStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open record store: %v", err)
	}
	defer store.Close()

	if err := store.Ping(ctx); err != nil {
		log.Fatalf("Failed to reach record store: %v", err)
	}
	log.Info("Record store ready")

	blobs, err := blob.NewLocalStorage(cfg.Storage.UploadDir, cfg.Storage.UploadURLPrefix)
	if err != nil {
		log.Fatalf("Failed to prepare upload directory: %v", err)
	}
	log.WithField("upload_dir", blobs.Root()).Info("Upload storage ready")

	cache := services.NewListingCache(cfg.Cache.ListingTTL)
	migration := newMigrationService(ctx, cfg, store, cache, log)

	server.Version = version
	router := server.NewRouter(server.Deps{
		Config:    cfg,
		Logger:    log,
		Store:     store,
		Blobs:     blobs,
		Migration: migration,
		Cache:     cache,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited successfully")
}

// newMigrationService reads from the file store in DATA_DIR and writes to the
// document store. It returns nil when DATABASE_URL is not set.
func newMigrationService(ctx context.Context, cfg *config.Config, store database.RecordStore, cache *services.ListingCache, log *logrus.Logger) *services.MigrationService {
	if cfg.Database.URL == "" {
		log.Info("DATABASE_URL not set, migration endpoint disabled")
		return nil
	}

	source, err := database.NewFileStore(cfg.Storage.DataDir)
	if err != nil {
		log.WithError(err).Warn("File store unavailable, migration endpoint disabled")
		return nil
	}

	dest, ok := store.(*database.DocumentStore)
	if !ok {
		dest, err = database.OpenDocumentStore(ctx, cfg.Database)
		if err != nil {
			log.WithError(err).Warn("Document store unavailable, migration endpoint disabled")
			return nil
		}
	}
	return services.NewMigrationService(source, dest, cache, log)
}
