package queue

import (
	"context"
	"log/slog"
)

// Disabled is a Client used when no Redis is configured. Enqueued tasks are
// logged and dropped.
type Disabled struct{}

var _ Client = Disabled{}

func (Disabled) Enqueue(ctx context.Context, t Task, opts ...EnqueueOption) (string, error) {
	slog.Debug("Queue disabled, dropping task", "type", t.Type)
	return "", nil
}

func (Disabled) Close() error { return nil }
