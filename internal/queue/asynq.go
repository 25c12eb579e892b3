package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

// ===================== Client =====================

// AsynqClient implements Client on top of asynq and Redis.
type AsynqClient struct {
	client *asynq.Client
}

var _ Client = (*AsynqClient)(nil)

// NewAsynqClient connects to the Redis instance at redisURL.
func NewAsynqClient(redisURL string) (*AsynqClient, error) {
	opt, err := parseRedisURL(redisURL)
	if err != nil {
		return nil, err
	}
	return &AsynqClient{client: asynq.NewClient(opt)}, nil
}

func (a *AsynqClient) Enqueue(ctx context.Context, t Task, opts ...EnqueueOption) (string, error) {
	if t.Type == "" {
		return "", errors.New("asynq: task type is required")
	}
	info, err := a.client.EnqueueContext(ctx, asynq.NewTask(t.Type, t.Payload), toAsynqOptions(opts)...)
	if err != nil {
		return "", fmt.Errorf("asynq: enqueue %s: %w", t.Type, err)
	}
	return info.ID, nil
}

func (a *AsynqClient) Close() error {
	return a.client.Close()
}

// ===================== Server =====================

// AsynqServer implements Server using asynq.
type AsynqServer struct {
	server *asynq.Server
	mux    *asynq.ServeMux
}

var _ Server = (*AsynqServer)(nil)

// NewAsynqServer builds a worker server. queues maps queue names to
// priority weights; nil means {"default": 1}.
func NewAsynqServer(redisURL string, concurrency int, queues map[string]int) (*AsynqServer, error) {
	opt, err := parseRedisURL(redisURL)
	if err != nil {
		return nil, err
	}
	if concurrency <= 0 {
		concurrency = 10
	}
	if len(queues) == 0 {
		queues = map[string]int{"default": 1}
	}

	srv := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues:      queues,
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			slog.Error("Task failed", "type", task.Type(), "error", err)
		}),
	})
	return &AsynqServer{server: srv, mux: asynq.NewServeMux()}, nil
}

func (s *AsynqServer) Register(taskType string, h Handler) {
	s.mux.HandleFunc(taskType, func(ctx context.Context, t *asynq.Task) error {
		return h(ctx, Task{Type: t.Type(), Payload: t.Payload()})
	})
}

// Run starts the workers and blocks until ctx is canceled, then shuts down.
func (s *AsynqServer) Run(ctx context.Context) error {
	if err := s.server.Start(s.mux); err != nil {
		return fmt.Errorf("asynq: start server: %w", err)
	}
	<-ctx.Done()
	s.server.Shutdown()
	return nil
}

// Close stops the workers. It is safe to call on a server that never ran.
func (s *AsynqServer) Close() error {
	s.server.Shutdown()
	return nil
}

// ===================== Scheduler =====================

// AsynqScheduler implements Scheduler using asynq's periodic task scheduler.
// Cron specs are evaluated in UTC.
type AsynqScheduler struct {
	scheduler *asynq.Scheduler
}

var _ Scheduler = (*AsynqScheduler)(nil)

// NewAsynqScheduler builds a scheduler for the Redis instance at redisURL.
func NewAsynqScheduler(redisURL string) (*AsynqScheduler, error) {
	opt, err := parseRedisURL(redisURL)
	if err != nil {
		return nil, err
	}
	s := asynq.NewScheduler(opt, &asynq.SchedulerOpts{
		Location: time.UTC,
		PostEnqueueFunc: func(info *asynq.TaskInfo, err error) {
			if err != nil {
				slog.Error("Scheduled enqueue failed", "error", err)
				return
			}
			slog.Debug("Scheduled task enqueued", "type", info.Type, "id", info.ID)
		},
	})
	return &AsynqScheduler{scheduler: s}, nil
}

func (s *AsynqScheduler) Register(cronspec string, t Task, opts ...EnqueueOption) error {
	id, err := s.scheduler.Register(cronspec, asynq.NewTask(t.Type, t.Payload), toAsynqOptions(opts)...)
	if err != nil {
		return fmt.Errorf("asynq: register %s at %q: %w", t.Type, cronspec, err)
	}
	slog.Info("Registered periodic task", "type", t.Type, "spec", cronspec, "entry_id", id)
	return nil
}

// Run starts the scheduler and blocks until ctx is canceled.
func (s *AsynqScheduler) Run(ctx context.Context) error {
	if err := s.scheduler.Start(); err != nil {
		return fmt.Errorf("asynq: start scheduler: %w", err)
	}
	<-ctx.Done()
	s.scheduler.Shutdown()
	return nil
}

// Close stops the scheduler. It is safe to call on a scheduler that never ran.
func (s *AsynqScheduler) Close() error {
	s.scheduler.Shutdown()
	return nil
}

func parseRedisURL(redisURL string) (asynq.RedisConnOpt, error) {
	if redisURL == "" {
		return nil, errors.New("asynq: redis url is not set")
	}
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("asynq: parse redis url: %w", err)
	}
	return opt, nil
}

// toAsynqOptions maps the first option; callers pass one consolidated value.
func toAsynqOptions(opts []EnqueueOption) []asynq.Option {
	if len(opts) == 0 {
		return nil
	}
	op := opts[0]
	var out []asynq.Option
	if op.ProcessIn > 0 {
		out = append(out, asynq.ProcessIn(op.ProcessIn))
	}
	if op.Queue != "" {
		out = append(out, asynq.Queue(op.Queue))
	}
	switch {
	case op.NoRetry:
		out = append(out, asynq.MaxRetry(0))
	case op.MaxRetry > 0:
		out = append(out, asynq.MaxRetry(op.MaxRetry))
	}
	return out
}
