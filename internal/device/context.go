// Package device carries the calling device's identity on the request context.
package device

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const deviceKey contextKey = "device"

func WithID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, deviceKey, id)
}

// IDFromContext returns uuid.Nil when no device is attached.
func IDFromContext(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(deviceKey).(uuid.UUID)
	return id
}
