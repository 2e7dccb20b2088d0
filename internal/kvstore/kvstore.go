// Package kvstore persists whole JSON collections under string keys.
package kvstore

import (
	"context"
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("kvstore: key not found")

// Store is the persistence surface the library needs: whole values under string keys.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
	// SetIfNewer atomically stores value and rev unless the stored revision is already
	// greater than rev. It reports whether the value was written.
	SetIfNewer(ctx context.Context, key string, rev int64, value []byte) (bool, error)
	// Revision is the revision last written by SetIfNewer, 0 when there is none.
	Revision(ctx context.Context, key string) (int64, error)
	Ping(ctx context.Context) error
	Close() error
}

const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

func ValidBackend(name string) error {
	switch name {
	case BackendMemory, BackendRedis, BackendPostgres:
		return nil
	}
	return fmt.Errorf("unknown storage backend %q", name)
}
