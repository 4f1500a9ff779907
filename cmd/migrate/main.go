package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"

	"shopping-list/internal/config"
	"shopping-list/internal/logger"
	"shopping-list/internal/storage"
)

// Создаёт базу (если её нет) и переносит элементы из старой таблицы items.
func main() {
	configPath := flag.String("config", "shopping.toml", "path to TOML config (optional)")
	dbPath := flag.String("db", "", "database file (overrides config)")
	flag.Parse()

	logger.Init("migrate")
	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error(ctx, err, "load config")
		os.Exit(1)
	}
	path := cfg.DatabasePath
	if *dbPath != "" {
		path = *dbPath
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Error(ctx, err, "create database directory", "dir", dir)
			os.Exit(1)
		}
	}

	db, err := storage.NewSQLiteStorage(path)
	if err != nil {
		logger.Error(ctx, err, "open database", "path", path)
		os.Exit(1)
	}
	defer db.Close()
	logger.Info(ctx, "schema is up to date", "path", path)

	moved, err := db.MigrateLegacy(ctx)
	if err != nil {
		logger.Error(ctx, err, "legacy migration failed")
		db.Close()
		os.Exit(1)
	}
	if moved == 0 {
		logger.Info(ctx, "no legacy items to migrate")
		return
	}
	logger.Info(ctx, "migration finished", "items", moved)
}
