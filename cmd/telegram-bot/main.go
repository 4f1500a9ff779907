package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"

	"shopping-list/internal/config"
	"shopping-list/internal/logger"
	"shopping-list/internal/manager"
	"shopping-list/internal/storage"
)

func main() {
	configPath := flag.String("config", "shopping.toml", "path to TOML config (optional)")
	debug := flag.Bool("debug", false, "log Telegram API traffic")
	flag.Parse()

	logger.Init("telegram-bot")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath, *debug); err != nil {
		logger.Error(ctx, err, "bot stopped")
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, debug bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if level, err := logger.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}
	if cfg.TelegramToken == "" {
		return fmt.Errorf("SHOPPING_TELEGRAM_TOKEN is not set")
	}
	if len(cfg.TelegramAllowed) == 0 {
		logger.Warn(ctx, "SHOPPING_TELEGRAM_ALLOWED is empty, every chat can edit the list")
	}

	db, err := storage.NewSQLiteStorage(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()
	logger.Info(ctx, "SQLite storage ready", "path", cfg.DatabasePath)

	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return fmt.Errorf("create bot: %w", err)
	}
	api.Debug = debug
	logger.Info(ctx, "authorized", "bot", api.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates, err := api.GetUpdatesChan(u)
	if err != nil {
		return fmt.Errorf("get updates: %w", err)
	}
	defer api.StopReceivingUpdates()

	bot := NewBot(api, manager.NewItemManager(db, cfg.SortOrder), cfg.TelegramChatAllowed)
	bot.Start(ctx, updates)
	logger.Info(context.Background(), "bot stopped")
	return nil
}
