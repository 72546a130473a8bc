package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"autogest/internal/config"
	"autogest/internal/domain/auth"
	"autogest/internal/domain/session"
	"autogest/internal/infrastructure/backend"
	"autogest/internal/infrastructure/cache"
	"autogest/internal/infrastructure/http/console"
	"autogest/internal/infrastructure/storage/badgerkv"
	"autogest/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
		App:         cfg.App.Name,
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := logger.WithLogger(context.Background(), log)
	log.Infow("starting console", "app", cfg.App.Name, "version", cfg.App.Version, "env", cfg.App.Env)

	storage, closeStorage, err := openStorage(cfg.Storage)
	if err != nil {
		log.Fatalw("failed to open session storage", "error", err)
	}
	defer func() {
		if err := closeStorage(); err != nil {
			log.Warnw("failed to close session storage", "error", err)
		}
	}()
	log.Infow("session storage ready", "driver", cfg.Storage.Driver, "path", cfg.Storage.Path)

	store := session.NewManager(storage, session.Keys{
		Token: cfg.Auth.TokenKey,
		User:  cfg.Auth.UserKey,
	})

	// Pages render "Cargando..." until this finishes.
	go func() {
		if s := store.Bootstrap(ctx); s != nil {
			log.Infow("previous session restored", "user_id", s.UserID, "role", s.Role)
		}
	}()

	var catalog *cache.CatalogCache
	client := backend.NewClient(backend.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
		Breaker: backend.BreakerConfig{
			MaxRequests:  cfg.Breaker.MaxRequests,
			Interval:     cfg.Breaker.Interval,
			Timeout:      cfg.Breaker.Timeout,
			MinRequests:  cfg.Breaker.MinRequests,
			FailureRatio: cfg.Breaker.FailureRatio,
		},
	}, store, backend.WithSessionRejectedHook(func(ctx context.Context) {
		catalog.Invalidate(ctx)
		logger.Info(ctx, "operator must log in again")
	}))
	catalog = cache.NewCatalogCache(client, store, cfg.Cache.VehiclesTTL)

	gatewayCfg := auth.DefaultGatewayConfig()
	gatewayCfg.LoginPath = cfg.Auth.LoginPath
	gatewayCfg.PasswordMinLength = cfg.Validation.PasswordMinLength
	gateway := auth.NewGateway(client, store, gatewayCfg)

	router := console.NewRouter(console.RouterConfig{
		Store:     store,
		Gateway:   gateway,
		Catalog:   catalog,
		Backend:   client,
		Logger:    log,
		LoginPath: cfg.Auth.LoginPath,
		AppName:   cfg.App.Name,
		Version:   cfg.App.Version,
		Debug:     !cfg.IsProduction() && cfg.Log.Development,
	})

	port := strconv.Itoa(cfg.App.Port)
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", port, "backend", cfg.API.BaseURL)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

// openStorage opens the configured session storage and returns its closer.
func openStorage(cfg config.StorageConfig) (session.Storage, func() error, error) {
	if cfg.Driver == "memory" {
		return session.NewMemoryStorage(), func() error { return nil }, nil
	}
	s, err := badgerkv.Open(cfg.Path)
	if err != nil {
		return nil, nil, err
	}
	return s, s.Close, nil
}
