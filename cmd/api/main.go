package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/drios/memedb/internal/api"
	"github.com/drios/memedb/internal/api/middleware"
	"github.com/drios/memedb/internal/config"
	"github.com/drios/memedb/internal/logger"
	"github.com/drios/memedb/internal/repository"
	"github.com/drios/memedb/internal/service"
	"github.com/drios/memedb/internal/storage"
	"github.com/drios/memedb/internal/tagger"
)

func main() {
	// Support CONFIG_PATH for deployments
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.New(&logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		LogFile:     cfg.Log.File,
		MaxSizeMB:   100,
		MaxBackups:  7,
		MaxAgeDays:  30,
		Compress:    true,
		ServiceName: "memedb",
	})
	logger.SetDefault(appLogger)
	defer logger.Sync()

	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}
	memeRepo := repository.NewMemeRepository(db)

	blobStore, err := storage.NewS3Store(&storage.S3Config{
		Bucket:    cfg.S3.Bucket,
		Region:    cfg.S3.Region,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize blob store")
	}

	classifier := tagger.NewImaggaClient(&tagger.ImaggaConfig{
		Endpoint:  cfg.Imagga.Endpoint,
		APIKey:    cfg.Imagga.APIKey,
		APISecret: cfg.Imagga.APISecret,
		Timeout:   cfg.Imagga.Timeout,
	})

	ingestService := service.NewIngestService(memeRepo, blobStore, classifier, appLogger,
		&service.IngestServiceConfig{
			UploadDir:           cfg.Ingest.UploadDir,
			ConfidenceThreshold: cfg.Ingest.ConfidenceThreshold,
		})
	searchService := service.NewSearchService(memeRepo, appLogger)

	router := api.SetupRouter(ingestService, searchService, middleware.CORSConfig{
		AllowedOrigins:  cfg.Server.CORS.AllowedOrigins,
		AllowAllOrigins: cfg.Server.CORS.AllowAllOrigins,
	}, cfg.Server.Mode)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		appLogger.WithField("port", cfg.Server.Port).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Fatal("Server forced to shutdown")
	}

	appLogger.Info("Server exited")
}
