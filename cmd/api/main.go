package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/adilbek/goalbums/internal/album"
	"github.com/adilbek/goalbums/internal/auth"
	"github.com/adilbek/goalbums/internal/config"
	"github.com/adilbek/goalbums/internal/image"
	"github.com/adilbek/goalbums/internal/logger"
	"github.com/adilbek/goalbums/internal/quota"
	"github.com/adilbek/goalbums/internal/server"
	"github.com/adilbek/goalbums/internal/storage"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	log, err := logger.Init()
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("load config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := storage.Migrate(cfg.Postgres); err != nil {
		log.Fatal("run migrations", zap.Error(err))
	}

	dbPool, err := storage.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		log.Fatal("connect postgres", zap.Error(err))
	}
	defer dbPool.Close()

	minioClient, err := storage.NewMinIOClient(cfg.MinIO)
	if err != nil {
		log.Fatal("connect minio", zap.Error(err))
	}

	if err := storage.EnsureBucket(ctx, minioClient, cfg.MinIO.Bucket, cfg.MinIO.Region); err != nil {
		log.Fatal("ensure bucket", zap.Error(err))
	}

	authRepo := auth.NewRepository(dbPool)
	authService := auth.NewService(authRepo, cfg.Auth)

	quotaRepo := quota.NewRepository(dbPool)
	quotaService := quota.NewService(quotaRepo, cfg.Limits.MaxStorageBytes)

	albumRepo := album.NewRepository(dbPool)
	imageRepo := image.NewRepository(dbPool)
	objectStore := image.NewMinIOStore(minioClient, cfg.MinIO.Bucket)

	albumService := album.NewService(albumRepo, imageRepo, objectStore, quotaService)
	imageService := image.NewService(imageRepo, albumRepo, quotaService, objectStore, cfg.Limits.MaxImageSizeBytes, cfg.Limits.PresignTTL)

	router := server.NewRouter(server.Dependencies{
		Config:       cfg,
		DB:           dbPool,
		ObjectStore:  minioClient,
		AuthService:  authService,
		AlbumService: albumService,
		ImageService: imageService,
		QuotaService: quotaService,
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("GoAlbums API listening", zap.String("addr", cfg.Server.Address()))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Info("shutting down gracefully")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
}
