package kvstore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/nikhilbhutani/promptia/internal/config"
	"github.com/nikhilbhutani/promptia/internal/database"
)

func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// Open builds the configured backend. rdb is used by the redis backend and may be nil
// otherwise. The returned close function releases anything Open created.
func Open(ctx context.Context, cfg *config.Config, rdb *redis.Client) (Store, func(), error) {
	switch cfg.Storage.Backend {
	case BackendMemory:
		slog.Warn("using in-memory storage, library data is lost on restart")
		return NewMemory(), func() {}, nil
	case BackendRedis:
		if rdb == nil {
			return nil, nil, fmt.Errorf("redis backend needs a redis client")
		}
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, nil, fmt.Errorf("ping redis: %w", err)
		}
		return NewRedis(rdb), func() {}, nil
	case BackendPostgres:
		pool, err := database.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		if err := database.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("run migrations: %w", err)
		}
		return NewPostgres(pool), pool.Close, nil
	}
	return nil, nil, ValidBackend(cfg.Storage.Backend)
}
