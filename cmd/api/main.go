package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nikhilbhutani/promptia/internal/api"
	"github.com/nikhilbhutani/promptia/internal/api/handlers"
	"github.com/nikhilbhutani/promptia/internal/auth"
	"github.com/nikhilbhutani/promptia/internal/cache"
	"github.com/nikhilbhutani/promptia/internal/catalog"
	"github.com/nikhilbhutani/promptia/internal/config"
	"github.com/nikhilbhutani/promptia/internal/generator"
	"github.com/nikhilbhutani/promptia/internal/guardrails"
	"github.com/nikhilbhutani/promptia/internal/kvstore"
	"github.com/nikhilbhutani/promptia/internal/library"
	"github.com/nikhilbhutani/promptia/internal/llm"
	"github.com/nikhilbhutani/promptia/internal/persist"
	"github.com/nikhilbhutani/promptia/internal/queue"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// Redis is optional unless it backs storage or the write queue.
	rdb := kvstore.NewRedisClient(cfg.Redis)
	defer rdb.Close()
	redisUp := rdb.Ping(ctx).Err() == nil
	if !redisUp {
		slog.Warn("redis unavailable, running without shared cache")
	}

	store, closeStore, err := kvstore.Open(ctx, cfg, rdb)
	if err != nil {
		slog.Error("failed to open storage", "backend", cfg.Storage.Backend, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	var writer persist.Writer
	switch cfg.Storage.PersistMode {
	case config.PersistQueue:
		qc := queue.NewClient(cfg.Redis)
		defer qc.Close()
		writer = persist.NewQueueWriter(qc)
	default:
		d := persist.NewDispatcher(store, 256)
		defer d.Close()
		writer = d
	}

	cat, err := catalog.Load()
	if err != nil {
		slog.Error("failed to load catalog", "error", err)
		os.Exit(1)
	}

	l1, err := cache.NewLocal(cfg.Cache.MaxBytes)
	if err != nil {
		slog.Error("failed to create cache", "error", err)
		os.Exit(1)
	}
	defer l1.Close()
	var l2 cache.Backend
	if redisUp {
		l2 = cache.NewRedis(rdb, "promptia:cache:")
	}
	genCache := cache.NewTiered(l1, l2, cfg.Cache.TTL)

	gen := generator.NewService(llm.NewGateway(cfg.LLM), genCache, guardrails.DefaultPipeline(), cfg.Cache.TTL)
	lib := library.NewService(store, writer, cat)

	checks := map[string]handlers.Pinger{"storage": store}
	if redisUp {
		checks["redis"] = handlers.PingFunc(func(ctx context.Context) error { return redisPing(ctx, rdb) })
	}

	router := api.NewRouter(api.Deps{
		Config:    cfg.Server,
		Tokens:    auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		Catalog:   cat,
		Library:   lib,
		Generator: gen,
		Checks:    checks,
	})
	defer router.Close()

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router.Setup(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.LLM.Timeout + 15*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("starting API server",
			"addr", cfg.Addr(),
			"storage", cfg.Storage.Backend,
			"persist_mode", cfg.Storage.PersistMode,
			"llm_provider", cfg.LLM.Provider,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
	}
	slog.Info("server stopped")
}

func redisPing(ctx context.Context, rdb *redis.Client) error {
	return rdb.Ping(ctx).Err()
}
