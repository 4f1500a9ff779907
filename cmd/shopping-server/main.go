package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"shopping-list/internal/auth"
	"shopping-list/internal/config"
	"shopping-list/internal/logger"
	"shopping-list/internal/manager"
	"shopping-list/internal/server"
	"shopping-list/internal/storage"
)

func main() {
	configPath := flag.String("config", "shopping.toml", "path to TOML config (optional)")
	inMemory := flag.Bool("memory", false, "keep items in memory instead of SQLite")
	flag.Parse()

	logger.Init("shopping-server")

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger.SetLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *inMemory); err != nil {
		logger.Error(ctx, err, "server stopped")
		os.Exit(1)
	}
}

func openStorage(ctx context.Context, cfg config.Config, inMemory bool) (storage.Storage, error) {
	if inMemory {
		logger.Warn(ctx, "using in-memory storage, items are lost on restart")
		return storage.NewMemoryStorage(), nil
	}

	db, err := storage.NewSQLiteStorage(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}
	moved, err := db.MigrateLegacy(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("legacy migration: %w", err)
	}
	if moved > 0 {
		logger.Info(ctx, "migrated legacy items", "count", moved)
	}
	logger.Info(ctx, "SQLite storage ready", "path", cfg.DatabasePath)
	return db, nil
}

func run(ctx context.Context, cfg config.Config, inMemory bool) error {
	store, err := openStorage(ctx, cfg, inMemory)
	if err != nil {
		return err
	}
	defer store.Close()

	if cfg.InsecureSecret() {
		logger.Warn(ctx, "SECRET_KEY is not set, sessions are signed with the default key")
	}

	tlsOn := cfg.TLSEnabled()
	if cfg.ForceHTTPS && !tlsOn {
		logger.Warn(ctx, "force_https is on but certificates are missing; run gencert or put a TLS proxy in front",
			"cert", cfg.CertFile, "key", cfg.KeyFile)
	}

	sessions := auth.NewSessions(auth.Options{
		Username:     cfg.Username,
		Password:     cfg.Password,
		Secret:       cfg.SecretKey,
		TTL:          cfg.SessionTTL,
		SecureCookie: tlsOn || cfg.ForceHTTPS,
	})
	im := manager.NewItemManager(store, cfg.SortOrder)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.NewRouter(im, sessions, server.Options{ForceHTTPS: cfg.ForceHTTPS}),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info(gctx, "listening", "addr", cfg.Addr, "tls", tlsOn, "sort_order", string(cfg.SortOrder))
		var err error
		if tlsOn {
			err = srv.ListenAndServeTLS(cfg.CertFile, cfg.KeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info(context.Background(), "shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
