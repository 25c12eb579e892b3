// Package queue is the background-job port used for delayed Senpai
// triggers and recurring sweeps, with an asynq adapter backed by Redis.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Task is a job type plus an opaque payload.
type Task struct {
	Type    string
	Payload []byte
}

// NewJSONTask encodes payload as JSON.
func NewJSONTask(taskType string, payload any) (Task, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return Task{}, fmt.Errorf("failed to encode %s payload: %w", taskType, err)
	}
	return Task{Type: taskType, Payload: b}, nil
}

// Handler processes a Task. A non-nil error is retried per the task's
// retry budget.
type Handler func(ctx context.Context, task Task) error

// EnqueueOption controls delivery. Zero values mean unspecified.
type EnqueueOption struct {
	Queue     string
	ProcessIn time.Duration
	MaxRetry  int
	// NoRetry disables retries entirely and overrides MaxRetry.
	NoRetry bool
}

// Client enqueues tasks.
type Client interface {
	Enqueue(ctx context.Context, t Task, opts ...EnqueueOption) (id string, err error)
	Close() error
}

// Server runs workers until its context is canceled.
type Server interface {
	Register(taskType string, h Handler)
	Run(ctx context.Context) error
}

// Scheduler enqueues tasks on a cron schedule until its context is canceled.
type Scheduler interface {
	Register(cronspec string, t Task, opts ...EnqueueOption) error
	Run(ctx context.Context) error
}
