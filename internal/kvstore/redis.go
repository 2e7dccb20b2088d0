package kvstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// setIfNewer writes KEYS[1] and its revision KEYS[2] unless the stored revision is higher.
var setIfNewer = redis.NewScript(`
local cur = tonumber(redis.call('GET', KEYS[2]) or '0') or 0
if cur > tonumber(ARGV[2]) then
	return 0
end
redis.call('SET', KEYS[1], ARGV[1])
redis.call('SET', KEYS[2], ARGV[2])
return 1
`)

func revisionKey(key string) string { return key + ":rev" }

type Redis struct {
	client *redis.Client
}

// NewRedis wraps an existing client. Values are stored without expiry.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *Redis) SetIfNewer(ctx context.Context, key string, rev int64, value []byte) (bool, error) {
	n, err := setIfNewer.Run(ctx, r.client, []string{key, revisionKey(key)}, value, rev).Int()
	if err != nil {
		return false, fmt.Errorf("redis set %s: %w", key, err)
	}
	return n == 1, nil
}

func (r *Redis) Revision(ctx context.Context, key string) (int64, error) {
	raw, err := r.client.Get(ctx, revisionKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get %s: %w", revisionKey(key), err)
	}
	rev, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, nil
	}
	return rev, nil
}

func (r *Redis) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	all := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		all = append(all, k, revisionKey(k))
	}
	return r.client.Del(ctx, all...).Err()
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close is a no-op: the client is owned by the caller.
func (r *Redis) Close() error { return nil }
