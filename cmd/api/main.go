// cmd/api/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/your-org/kupipodariday-backend/internal/config"
	"github.com/your-org/kupipodariday-backend/internal/domain/offer"
	"github.com/your-org/kupipodariday-backend/internal/domain/user"
	"github.com/your-org/kupipodariday-backend/internal/domain/wish"
	"github.com/your-org/kupipodariday-backend/internal/domain/wishlist"
	"github.com/your-org/kupipodariday-backend/internal/infrastructure/database/postgres"
	"github.com/your-org/kupipodariday-backend/internal/infrastructure/database/redis"
	"github.com/your-org/kupipodariday-backend/internal/interfaces/http"
	"github.com/your-org/kupipodariday-backend/internal/pkg/email"
	"github.com/your-org/kupipodariday-backend/internal/pkg/logger"
	"github.com/your-org/kupipodariday-backend/internal/pkg/pdf"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLog := logger.New(cfg)
	appLog.Infof("starting %s v%s in %s mode", cfg.App.Name, cfg.App.Version, cfg.App.Environment)

	db, err := postgres.NewConnection(cfg, appLog)
	if err != nil {
		appLog.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()

	// Redis only backs the ranking cache and the rate limiter, so the API
	// keeps serving without it.
	var cache wish.Store
	redisClient, err := redis.NewConnection(cfg, appLog)
	if err != nil {
		appLog.WithError(err).Warn("redis unavailable, ranking cache disabled and rate limiting kept in process")
		redisClient = nil
	} else {
		defer redisClient.Close()
		cache = redisClient
	}

	migration := postgres.NewMigration(db.GetDB(), appLog)
	if err := migration.RunAutoMigrations(); err != nil {
		appLog.WithError(err).Fatal("database migration failed")
	}
	if err := migration.CreateIndexes(); err != nil {
		appLog.WithError(err).Warn("index creation failed")
	}
	if cfg.IsDevelopment() {
		if err := migration.SeedInitialData(); err != nil {
			appLog.WithError(err).Warn("data seeding failed")
		}
		migration.GetTableInfo()
	}

	mailer, err := email.NewEmailService(cfg, appLog)
	if err != nil {
		appLog.WithError(err).Fatal("failed to configure email")
	}

	gormDB := db.GetDB()
	userService := user.NewService(user.NewRepository(gormDB), cfg, mailer, appLog)
	wishService := wish.NewService(
		wish.NewRepository(gormDB),
		userService,
		wish.NewRankingCache(cache, cfg.Redis.CacheTTL, appLog),
		cfg,
		appLog,
	)
	offerService := offer.NewService(offer.NewRepository(gormDB), wishService, cfg, appLog)
	wishlistService := wishlist.NewService(wishlist.NewRepository(gormDB), pdf.NewService(cfg), appLog)

	server := http.NewServer(cfg, appLog, http.Dependencies{
		Users:     userService,
		Wishes:    wishService,
		Offers:    offerService,
		Wishlists: wishlistService,
		Database:  db,
		Cache:     redisClient,
	})

	go func() {
		if err := server.Start(); err != nil {
			appLog.WithError(err).Fatal("failed to start HTTP server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLog.Info("shutting down gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		appLog.WithError(err).Error("failed to shutdown HTTP server gracefully")
	}

	appLog.Info("server shutdown completed")
}
