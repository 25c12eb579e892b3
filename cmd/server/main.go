package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/crewchat/internal/auth"
	"github.com/mmynk/crewchat/internal/config"
	"github.com/mmynk/crewchat/internal/jobs"
	"github.com/mmynk/crewchat/internal/metrics"
	"github.com/mmynk/crewchat/internal/middleware"
	"github.com/mmynk/crewchat/internal/queue"
	"github.com/mmynk/crewchat/internal/senpai"
	"github.com/mmynk/crewchat/internal/service"
	"github.com/mmynk/crewchat/internal/storage/sqlite"
	"github.com/mmynk/crewchat/pkg/api"
	"github.com/mmynk/crewchat/pkg/logging"
)

const workerConcurrency = 4

func main() {
	if err := run(); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Setup(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize SQLite storage
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	tasks, err := startQueue(ctx, cfg, store)
	if err != nil {
		return err
	}
	defer tasks.Close()

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	opts := connect.WithInterceptors(
		metrics.NewInterceptor(),
		middleware.LoggingInterceptor(),
		middleware.RequireAuth(jwtManager, store),
		middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).Interceptor(),
		middleware.ValidationInterceptor(),
	)

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(loggingMiddleware)
	r.Use(corsMiddleware)

	// Register Connect services
	r.Mount(api.NewAuthServiceHandler(service.NewAuthService(auth.NewPasswordAuthenticator(store), store, jwtManager, slog.Default()), opts))
	r.Mount(api.NewGroupServiceHandler(service.NewGroupService(store), opts))
	r.Mount(api.NewChannelServiceHandler(service.NewChannelService(store), opts))
	r.Mount(api.NewMessageServiceHandler(service.NewMessageService(store), opts))
	r.Mount(api.NewReactionServiceHandler(service.NewReactionService(store, tasks), opts))
	r.Mount(api.NewSplitServiceHandler(service.NewSplitService(store), opts))
	r.Mount(api.NewEventServiceHandler(service.NewEventService(store), opts))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           h2c.NewHandler(r, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Connect server starting", "address", srv.Addr, "url", fmt.Sprintf("http://localhost%s", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// startQueue connects the background queue when Redis is configured and
// runs the worker and scheduler until ctx is done. Without Redis, Senpai
// triggers are dropped.
func startQueue(ctx context.Context, cfg *config.Config, store *sqlite.SQLiteStore) (_ queue.Client, err error) {
	if cfg.RedisURL == "" {
		slog.Warn("REDIS_URL not set, background jobs disabled")
		return queue.Disabled{}, nil
	}

	var cleanup closers
	defer func() {
		if err != nil {
			cleanup.close()
		}
	}()

	client, err := queue.NewAsynqClient(cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	cleanup = append(cleanup, client)
	worker, err := queue.NewAsynqServer(cfg.RedisURL, workerConcurrency, nil)
	if err != nil {
		return nil, err
	}
	cleanup = append(cleanup, worker)
	scheduler, err := queue.NewAsynqScheduler(cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	cleanup = append(cleanup, scheduler)

	completer := senpai.NewOpenAIClient(senpai.OpenAIConfig{
		BaseURL:   cfg.OpenAIBaseURL,
		APIKey:    cfg.OpenAIAPIKey,
		Model:     cfg.SenpaiModel,
		MaxTokens: cfg.SenpaiMaxTokens,
		Timeout:   cfg.SenpaiTimeout,
	})
	responder := senpai.NewResponder(store, completer)
	sweeper := senpai.NewSweeper(store, client,
		senpai.WithSampleRate(cfg.SenpaiSampleRate),
		senpai.WithMaxDelay(cfg.SenpaiMaxDelay),
	)
	jobs.Register(worker, responder, sweeper, jobs.NewArchiver(store))
	if err := jobs.Schedule(scheduler, cfg.SenpaiSweepSpec, cfg.ArchiveSpec); err != nil {
		return nil, err
	}

	go func() {
		if err := worker.Run(ctx); err != nil {
			slog.Error("Queue worker stopped", "error", err)
		}
	}()
	go func() {
		if err := scheduler.Run(ctx); err != nil {
			slog.Error("Scheduler stopped", "error", err)
		}
	}()
	slog.Info("Background jobs enabled", "concurrency", workerConcurrency)
	return client, nil
}

// closers releases partially built components, last opened first.
type closers []io.Closer

func (c closers) close() {
	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i].Close(); err != nil {
			slog.Warn("Failed to release queue component", "error", err)
		}
	}
}

// loggingMiddleware logs all incoming requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		slog.Debug("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"remote_addr", r.RemoteAddr,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
