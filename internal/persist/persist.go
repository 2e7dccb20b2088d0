// Package persist applies whole-collection writes to a kvstore with retries and a
// read-after-write check.
package persist

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/nikhilbhutani/promptia/internal/kvstore"
)

var (
	ErrVerifyFailed = errors.New("persist: read-after-write mismatch")
	ErrQueueFull    = errors.New("persist: write queue full")
	ErrClosed       = errors.New("persist: writer closed")
)

// Write replaces the value under Key. Seq orders writes to the same key; a write
// older than the stored revision is skipped. Rewriting an equal revision is allowed so
// a redelivered write stays idempotent.
type Write struct {
	Key   string
	Seq   int64
	Value []byte
}

// Writer accepts writes for eventual application.
type Writer interface {
	Write(ctx context.Context, w Write) error
}

const (
	applyAttempts = 5
	applyDelay    = 100 * time.Millisecond
)

// Apply writes w to store, retrying transient failures. The revision check and the
// write happen in one store operation, so concurrent or reordered writes to the same
// key never move it backwards.
func Apply(ctx context.Context, store kvstore.Store, w Write) error {
	err := retry.Do(
		func() error { return applyOnce(ctx, store, w) },
		retry.Context(ctx),
		retry.Attempts(applyAttempts),
		retry.Delay(applyDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return fmt.Errorf("apply %s: %w", w.Key, err)
	}
	return nil
}

func applyOnce(ctx context.Context, store kvstore.Store, w Write) error {
	written, err := store.SetIfNewer(ctx, w.Key, w.Seq, w.Value)
	if err != nil {
		return err
	}
	if !written {
		return nil
	}

	got, err := store.Get(ctx, w.Key)
	if err != nil {
		return fmt.Errorf("read back: %w", err)
	}
	if !bytes.Equal(got, w.Value) {
		// A newer write may have landed in between; that is not a failure.
		if rev, err := store.Revision(ctx, w.Key); err == nil && rev > w.Seq {
			return nil
		}
		return ErrVerifyFailed
	}
	return nil
}

// Sequence hands out increasing write sequence numbers. It starts from the wall clock
// so numbers keep increasing across restarts.
type Sequence struct {
	n atomic.Int64
}

func NewSequence() *Sequence {
	s := &Sequence{}
	s.n.Store(time.Now().UnixNano())
	return s
}

func (s *Sequence) Next() int64 {
	return s.n.Add(1)
}

// Sync applies writes inline.
type Sync struct {
	store kvstore.Store
}

func NewSync(store kvstore.Store) *Sync {
	return &Sync{store: store}
}

func (s *Sync) Write(ctx context.Context, w Write) error {
	return Apply(ctx, s.store, w)
}
