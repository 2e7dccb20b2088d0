package cache

import (
	"context"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// Local is an in-process cache bounded by the total size of its values.
type Local struct {
	c *ristretto.Cache[string, []byte]
}

func NewLocal(maxCostBytes int64) (*Local, error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: maxCostBytes / 100 * 10,
		MaxCost:     maxCostBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Local{c: c}, nil
}

func (l *Local) Get(_ context.Context, key string) ([]byte, bool, error) {
	val, found := l.c.Get(key)
	return val, found, nil
}

// Set stores value and waits for the write buffer to drain so the value is readable
// on return. Values that ristretto rejects are silently dropped.
func (l *Local) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	l.c.SetWithTTL(key, value, int64(len(value)), ttl)
	l.c.Wait()
	return nil
}

func (l *Local) Delete(_ context.Context, key string) error {
	l.c.Del(key)
	return nil
}

func (l *Local) Close() {
	l.c.Close()
}
