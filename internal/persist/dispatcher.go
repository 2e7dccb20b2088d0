package persist

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nikhilbhutani/promptia/internal/kvstore"
)

// Dispatcher applies writes in FIFO order on a background goroutine.
type Dispatcher struct {
	store   kvstore.Store
	writes  chan Write
	done    chan struct{}
	once    sync.Once
	mu      sync.RWMutex
	closed  bool
	failed  atomic.Int64
	timeout time.Duration
}

func NewDispatcher(store kvstore.Store, buffer int) *Dispatcher {
	d := &Dispatcher{
		store:   store,
		writes:  make(chan Write, buffer),
		done:    make(chan struct{}),
		timeout: 15 * time.Second,
	}
	go d.processLoop()
	return d
}

// Write queues w. It waits up to a second for room in the buffer.
func (d *Dispatcher) Write(ctx context.Context, w Write) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrClosed
	}

	timer := time.NewTimer(time.Second)
	defer timer.Stop()
	select {
	case d.writes <- w:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		slog.Warn("persist queue full, dropping write", "key", w.Key, "seq", w.Seq)
		return ErrQueueFull
	}
}

func (d *Dispatcher) processLoop() {
	defer close(d.done)
	for w := range d.writes {
		d.apply(w)
	}
}

func (d *Dispatcher) apply(w Write) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if err := Apply(ctx, d.store, w); err != nil {
		d.failed.Add(1)
		slog.Error("persist write failed", "key", w.Key, "seq", w.Seq, "error", err)
	}
}

// Failed reports how many writes were given up after retries.
func (d *Dispatcher) Failed() int64 {
	return d.failed.Load()
}

// Close stops accepting writes and waits for queued ones to be applied.
func (d *Dispatcher) Close() {
	d.once.Do(func() {
		d.mu.Lock()
		d.closed = true
		close(d.writes)
		d.mu.Unlock()
	})
	<-d.done
}
