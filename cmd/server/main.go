package main

import (
	"context"
	"time"

	"github.com/oggyb/storefront/internal/app"
	"github.com/oggyb/storefront/internal/cache"
	"github.com/oggyb/storefront/internal/config"
	"github.com/oggyb/storefront/internal/db"
	"github.com/oggyb/storefront/internal/logger"
	"github.com/oggyb/storefront/internal/server"
	"github.com/oggyb/storefront/internal/service/merch"
)

func main() {
	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L() // slog.Logger pointer

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		return
	}

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(context.Background()); err != nil {
		log.Error("failed to connect to redis", "err", err)
		return
	}

	// Inject logger into app context
	appCtx := app.New(database, redisCache, log)

	if cfg.App.ENV == "development" {
		if err := db.SeedDemoData(database); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	// Background sweep for stale temporary discounts. Housekeeping only:
	// readers already treat expired rows as absent.
	merchSvc := merch.NewMerchService(appCtx)
	go func() {
		ticker := time.NewTicker(cfg.Cleanup.Interval)
		defer ticker.Stop()
		for range ticker.C {
			if _, err := merchSvc.CleanupDiscounts(context.Background()); err != nil {
				log.Error("discount cleanup sweep failed", "err", err)
			}
		}
	}()

	router := server.NewRouter(appCtx)

	addr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	log.Info("starting HTTP server", "addr", addr)

	if err := server.StartHTTPServer(cfg, router); err != nil {
		log.Error("failed to start HTTP server", "err", err)
	}
}
