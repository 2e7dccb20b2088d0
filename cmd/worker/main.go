package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"

	"github.com/nikhilbhutani/promptia/internal/config"
	"github.com/nikhilbhutani/promptia/internal/kvstore"
	"github.com/nikhilbhutani/promptia/internal/persist"
	"github.com/nikhilbhutani/promptia/internal/queue"
)

const concurrency = 10

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.Storage.Backend == kvstore.BackendMemory {
		slog.Error("worker needs a shared storage backend", "backend", cfg.Storage.Backend)
		os.Exit(1)
	}

	rdb := kvstore.NewRedisClient(cfg.Redis)
	defer rdb.Close()

	store, closeStore, err := kvstore.Open(context.Background(), cfg, rdb)
	if err != nil {
		slog.Error("failed to open storage", "backend", cfg.Storage.Backend, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	srv := asynq.NewServer(queue.RedisOpt(cfg.Redis), queue.ServerConfig(concurrency))

	registry := queue.NewHandlersRegistry()
	registry.Register(queue.TypePersistWrite, asynq.HandlerFunc(persist.NewWorker(store).ProcessTask))

	slog.Info("starting worker", "concurrency", concurrency, "storage", cfg.Storage.Backend)
	if err := srv.Run(registry.Mux()); err != nil {
		slog.Error("worker error", "error", err)
		os.Exit(1)
	}
}
