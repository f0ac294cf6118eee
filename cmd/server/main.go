// Package main implements the entry point for the taskwell API server:
// a single-owner task and project tracker with board lanes, recurring
// tasks, and delimited-text import from external tools.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/taskwell/taskwell-api/internal/config"
	"github.com/taskwell/taskwell-api/internal/platform/logger"
)

func main() {
	migrateCmd := flag.String("migrate", "", "run database migrations (up, down, status) and exit")
	hashPassword := flag.String("hash-password", "", "print the bcrypt hash of the given password and exit")
	flag.Parse()

	if *hashPassword != "" {
		printPasswordHash(*hashPassword)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logg := logger.Setup(cfg.Server.LogLevel)
	logg.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)

	db, err := setupAppDatabase(cfg, logg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if *migrateCmd != "" {
		if err := runMigrations(db, logg, *migrateCmd); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		if err := db.Close(); err != nil {
			logg.Error("error closing database connection", "error", err)
		}
		return
	}

	ctx := context.Background()
	app, err := newApplication(ctx, cfg, logg, db)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
