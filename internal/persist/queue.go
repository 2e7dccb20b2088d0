package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/nikhilbhutani/promptia/internal/kvstore"
	"github.com/nikhilbhutani/promptia/internal/queue"
)

type enqueuer interface {
	EnqueuePersistWrite(ctx context.Context, payload queue.PersistWritePayload) error
}

// QueueWriter hands writes to the asynq worker so they survive API restarts.
type QueueWriter struct {
	client enqueuer
}

func NewQueueWriter(client enqueuer) *QueueWriter {
	return &QueueWriter{client: client}
}

func (q *QueueWriter) Write(ctx context.Context, w Write) error {
	return q.client.EnqueuePersistWrite(ctx, queue.PersistWritePayload{
		Key:   w.Key,
		Seq:   w.Seq,
		Value: w.Value,
	})
}

// Worker is the asynq handler for persist:write tasks. A returned error makes asynq
// retry the task.
type Worker struct {
	store kvstore.Store
}

func NewWorker(store kvstore.Store) *Worker {
	return &Worker{store: store}
}

func (w *Worker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.PersistWritePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w: %w", err, asynq.SkipRetry)
	}

	if err := Apply(ctx, w.store, Write{Key: payload.Key, Seq: payload.Seq, Value: payload.Value}); err != nil {
		slog.Warn("persist task failed", "key", payload.Key, "seq", payload.Seq, "error", err)
		return err
	}
	slog.Debug("persist task applied", "key", payload.Key, "seq", payload.Seq)
	return nil
}
