package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"coursemarket/internal/application/usecase"
	"coursemarket/internal/config"
	"coursemarket/internal/domain"
	"coursemarket/internal/infrastructure/cache"
	"coursemarket/internal/infrastructure/repository"
	"coursemarket/internal/infrastructure/security"
	"coursemarket/internal/infrastructure/storage"
	"coursemarket/internal/logger"
	"coursemarket/internal/middleware"
	grpc_server "coursemarket/internal/transport/grpc"
	handlers "coursemarket/internal/transport/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

func loadConfig() (config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return cfg, zerolog.Nop(), fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.Env, cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		return cfg, log, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, log, nil
}

func openDB(cfg config.Config) (*gorm.DB, error) {
	db, err := repository.Open(repository.DBConfig{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Name:     cfg.DBName,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := repository.Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func runMigrate() error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	if _, err := openDB(cfg); err != nil {
		return err
	}
	log.Info().Msg("schema migrated")
	return nil
}

func newImageStore(ctx context.Context, cfg config.Config) (storage.ImageStore, *storage.DiskStore, error) {
	if cfg.UploadDriver == "s3" {
		s3Store, err := storage.NewS3Store(ctx, storage.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			PublicURL: cfg.S3PublicURL,
		})
		return s3Store, nil, err
	}
	disk, err := storage.NewDiskStore(cfg.UploadDir, cfg.UploadPublicPrefix)
	return disk, disk, err
}

func runServe(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()
	log.Info().Str("host", cfg.DBHost).Msg("connected to postgres")

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer rdb.Close()
	log.Info().Str("addr", cfg.RedisAddr).Msg("connected to redis")

	images, disk, err := newImageStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("image store: %w", err)
	}

	hasher := security.NewPasswordHasher(cfg.BcryptCost)
	tokens := security.NewTokenManager(cfg.UserSecret, cfg.AdminSecret, cfg.TokenTTL)

	userAuth := usecase.NewAuthUseCase(domain.RoleUser, repository.NewUserRepository(db), hasher, tokens, log)
	adminAuth := usecase.NewAuthUseCase(domain.RoleAdmin, repository.NewAdminRepository(db), hasher, tokens, log)
	catalog := usecase.NewCatalogUseCase(repository.NewCourseRepository(db), cache.NewCourseCache(rdb), log)
	purchases := usecase.NewPurchaseUseCase(repository.NewPurchaseRepository(db))

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := middleware.NewMetrics(registry)

	deps := handlers.RouterDeps{
		UserAuth:       handlers.NewAuthHandler(userAuth),
		AdminAuth:      handlers.NewAuthHandler(adminAuth),
		Courses:        handlers.NewCourseHandler(catalog, images),
		Purchases:      handlers.NewPurchaseHandler(purchases),
		Tokens:         tokens,
		Metrics:        metrics,
		Gatherer:       registry,
		Logger:         log,
		AllowedOrigins: cfg.Origins(),
		Ready:          sqlDB.PingContext,
	}
	if disk != nil {
		deps.UploadDir = disk.Dir()
		deps.UploadPrefix = disk.PublicPrefix()
	}

	srv := &http.Server{
		Addr:              cfg.HTTPPort,
		Handler:           handlers.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 2)

	var health *grpc_server.HealthServer
	if cfg.GRPCPort != "" {
		lis, err := net.Listen("tcp", cfg.GRPCPort)
		if err != nil {
			return fmt.Errorf("grpc listen: %w", err)
		}
		health = grpc_server.NewHealthServer(sqlDB.PingContext, log)
		go health.Watch(ctx, 15*time.Second)
		go func() {
			log.Info().Str("addr", cfg.GRPCPort).Msg("grpc health server running")
			errCh <- health.Serve(lis)
		}()
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPPort).Msg("http server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case err := <-errCh:
		log.Error().Err(err).Msg("server failed")
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if health != nil {
		health.Stop()
	}
	return srv.Shutdown(shutdownCtx)
}
