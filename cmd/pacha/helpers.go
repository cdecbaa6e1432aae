package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"

	"github.com/at-ishikawa/pacha/internal/config"
	"github.com/at-ishikawa/pacha/internal/database"
	"github.com/at-ishikawa/pacha/schemas"
)

// loadEnvFile loads path into the environment if it exists. Variables already set win.
func loadEnvFile(path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	if err := godotenv.Load(path); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
	}
}

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("load config loader: %w", err)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// openStore opens the configured database, waits for it and applies pending migrations.
func openStore(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := database.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := database.WaitReady(ctx, db, cfg.ConnectRetryAttempts); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("database.WaitReady() > %w", err)
	}
	applied, err := database.NewMigrator(db, schemas.Migrations).Up(ctx)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrator.Up() > %w", err)
	}
	if applied > 0 {
		slog.Default().Info("database migrated", "applied", applied)
	}
	return db, nil
}
