package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sujalbistaa/suara/internal/auth"
	"github.com/sujalbistaa/suara/internal/config"
	"github.com/sujalbistaa/suara/internal/db"
	routes "github.com/sujalbistaa/suara/internal/http"
	"github.com/sujalbistaa/suara/internal/logger"
	"github.com/sujalbistaa/suara/internal/metrics"
	"github.com/sujalbistaa/suara/internal/service"
	"github.com/sujalbistaa/suara/internal/storage"
	"github.com/sujalbistaa/suara/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Initialize(cfg.Log.Level, cfg.Log.File); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	// 1. Initialize Database
	database, err := db.Init(cfg.DatabaseURL)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close(database)

	// 2. Run Migrations
	if err := db.Migrate(database); err != nil {
		logger.Log.Fatal("Failed to run migrations", zap.Error(err))
	}

	// 3. Image storage
	ctx := context.Background()
	uploader, uploadDir, err := newUploader(ctx, cfg.Storage)
	if err != nil {
		logger.Log.Fatal("Failed to initialize image storage", zap.Error(err))
	}

	// 4. Initialize WebSocket Hub
	hub := ws.NewHub()
	go hub.Run()

	m := metrics.New()
	svc := service.New(database, auth.NewTokenManager([]byte(cfg.JWT.Secret), cfg.JWT.TTL), service.Options{
		Events:     hub,
		Metrics:    m,
		Uploader:   uploader,
		AdminEmail: cfg.AdminEmail,
	})

	// 5. Setup Routes
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	done := make(chan struct{})
	routes.SetupRoutes(router, &routes.Env{Svc: svc, Hub: hub, Metrics: m}, routes.RouteOptions{
		CORSOrigin:     cfg.CORSOrigin,
		RateLimitRPS:   cfg.Limits.RPS,
		RateLimitBurst: cfg.Limits.Burst,
		UploadDir:      uploadDir,
		Done:           done,
	})

	// 6. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Log.Info("Server listening",
			zap.String("port", cfg.Port),
			zap.String("storage", cfg.Storage.Driver),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("listen", zap.Error(err))
		}
	}()

	<-quit
	logger.Log.Info("Shutting down server...")
	close(done)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}
	hub.Stop()

	logger.Log.Info("Server exiting")
}

// newUploader returns the configured backend and, for local storage, the
// directory to serve under /uploads.
func newUploader(ctx context.Context, cfg config.StorageConfig) (storage.Uploader, string, error) {
	switch cfg.Driver {
	case "s3":
		up, err := storage.NewS3Uploader(ctx, cfg.AWSRegion, cfg.AWSBucket, cfg.CDNBaseURL)
		if err != nil {
			return nil, "", err
		}
		checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := up.CheckBucketAccess(checkCtx); err != nil {
			// Uploads will fail but the rest of the API is usable.
			logger.WarnWithFields("S3 bucket not reachable", err)
		}
		return up, "", nil
	default:
		up, err := storage.NewLocalUploader(cfg.UploadDir, cfg.PublicBaseURL)
		if err != nil {
			return nil, "", err
		}
		return up, up.Dir(), nil
	}
}
