package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/pageza/pantry/backend/config"
	"github.com/pageza/pantry/backend/internal/api"
	"github.com/pageza/pantry/backend/internal/database"
	"github.com/pageza/pantry/backend/internal/middleware"
	"github.com/pageza/pantry/backend/internal/server"
	"github.com/pageza/pantry/backend/internal/service"
)

func main() {
	log := newLogger()
	defer func() { _ = log.Sync() }()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("failed to load config", zap.Error(err))
	}
	if err := config.ValidateConfig(cfg); err != nil {
		log.Fatal("invalid config", zap.Error(err))
	}

	db, err := database.Open(cfg, log)
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}
	if err := database.RunMigrations(context.Background(), db, log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	activity := service.NewActivityService(db)
	recorder := service.NewRecorder(activity, cfg.AuditQueueSize, log.Named("activity"))

	tokens := service.NewTokenService(cfg.JWTSecret, service.WithTTL(cfg.TokenTTL))
	email := service.NewEmailService(cfg, log.Named("email"))

	deps := api.Deps{
		DB:         db,
		Tokens:     tokens,
		Auth:       service.NewAuthService(db, tokens, email, recorder, log),
		Users:      service.NewUserService(db, recorder),
		Engagement: service.NewEngagementService(db),
		Activity:   activity,
		Recipes:    service.NewRecipeService(db, recorder),
		Shops:      service.NewShopService(db, recorder),
		Log:        log,
	}

	// rate limiting is skipped when Redis is not reachable
	if database.RedisConfigured(cfg) {
		rdb, err := database.NewRedisClient(cfg, log)
		if err != nil {
			log.Warn("rate limiting disabled", zap.Error(err))
		} else {
			defer func() { _ = rdb.Close() }()
			deps.LoginLimiter = middleware.NewLoginRateLimiter(rdb, log)
			deps.ResetLimiter = middleware.NewPasswordResetRateLimiter(rdb, log)
		}
	}

	if cfg.S3BucketName != "" {
		store, err := config.NewS3Config(context.Background(), cfg)
		if err != nil {
			log.Warn("uploads disabled", zap.Error(err))
		} else {
			deps.Uploads = service.NewUploadService(store)
		}
	}

	sweeper, err := service.NewResetTokenSweeper(db, cfg.ResetSweepSchedule, log.Named("sweeper"))
	if err != nil {
		log.Fatal("failed to schedule reset token sweeper", zap.Error(err))
	}
	sweeper.Start()

	srv := server.New(cfg, deps)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			log.Error("server error", zap.Error(err))
		}
	case sig := <-quit:
		log.Info("received signal", zap.String("signal", sig.String()))
	}

	log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	}
	sweeper.Stop(ctx)
	recorder.Close()

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("server stopped")
}

func newLogger() *zap.Logger {
	var (
		log *zap.Logger
		err error
	)
	if config.IsProduction() {
		log, err = zap.NewProduction()
	} else {
		log, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	return log
}
