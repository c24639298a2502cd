package main

import (
	"context"
	"log"
	"os"

	"github.com/GoSim-25-26J-441/docforge-backend/config"
	"github.com/GoSim-25-26J-441/docforge-backend/internal/logging"
	"github.com/GoSim-25-26J-441/docforge-backend/internal/storage/postgres"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: worker migrate")
	}

	switch os.Args[1] {
	case "migrate":
		runMigrate()
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
}

func runMigrate() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Configure(cfg.App.LogLevel, cfg.App.Environment)

	ctx := context.Background()
	db, err := postgres.NewConnection(ctx, &cfg.Database)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	logging.Base().Info("migrations applied")
}
