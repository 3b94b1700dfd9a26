package main

import (
	"github.com/oggyb/storefront/internal/config"
	"github.com/oggyb/storefront/internal/db"
	"github.com/oggyb/storefront/internal/logger"
)

func main() {
	cfg := config.New()
	logger.InitFromConfig(cfg)
	log := logger.L()

	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		return
	}

	if err := db.SeedDemoData(database); err != nil {
		log.Error("failed to seed demo data", "err", err)
		return
	}

	log.Info("demo data seeded")
}
