// Package jobs wires background tasks to the queue: Senpai triggers, the
// random Senpai sweep, and the daily event archival.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmynk/crewchat/internal/metrics"
	"github.com/mmynk/crewchat/internal/queue"
	"github.com/mmynk/crewchat/internal/senpai"
	"github.com/mmynk/crewchat/internal/storage"
)

// TaskArchivePastEvents archives event channels that have ended.
const TaskArchivePastEvents = "events:archive_past"

// Default schedules.
const (
	DefaultSweepSpec   = "@every 4h"
	DefaultArchiveSpec = "0 6 * * *"
)

// Archiver closes out finished events.
type Archiver struct {
	store storage.Store
	now   func() time.Time
}

// NewArchiver creates an archiver using the wall clock.
func NewArchiver(store storage.Store) *Archiver {
	return &Archiver{store: store, now: time.Now}
}

// ArchivePastEvents archives every live event channel whose end date, or
// start date when there is no end date, is in the past. It runs as one
// transaction and returns the number of channels archived.
func (a *Archiver) ArchivePastEvents(ctx context.Context) (int, error) {
	now := a.now().UnixMilli()
	archived := 0
	err := a.store.RunInTx(ctx, func(q storage.Queries) error {
		channels, err := q.ListEndedEventChannels(ctx, now)
		if err != nil {
			return err
		}
		for _, ch := range channels {
			if err := q.ArchiveChannel(ctx, ch.ID, now); err != nil {
				return err
			}
		}
		archived = len(channels)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to archive past events: %w", err)
	}

	metrics.ArchivedChannels.Add(float64(archived))
	slog.Info("Archived past events", "count", archived)
	return archived, nil
}

// HandleArchive adapts ArchivePastEvents to a queue handler.
func (a *Archiver) HandleArchive(ctx context.Context, _ queue.Task) error {
	_, err := a.ArchivePastEvents(ctx)
	return err
}

// Register binds every task handler to srv.
func Register(srv queue.Server, responder *senpai.Responder, sweeper *senpai.Sweeper, archiver *Archiver) {
	srv.Register(senpai.TaskRespond, responder.HandleRespond)
	srv.Register(senpai.TaskRandomSweep, sweeper.HandleSweep)
	srv.Register(TaskArchivePastEvents, archiver.HandleArchive)
}

// Schedule registers the recurring tasks. Empty specs fall back to the defaults.
func Schedule(s queue.Scheduler, sweepSpec, archiveSpec string) error {
	if sweepSpec == "" {
		sweepSpec = DefaultSweepSpec
	}
	if archiveSpec == "" {
		archiveSpec = DefaultArchiveSpec
	}
	if err := s.Register(sweepSpec, queue.Task{Type: senpai.TaskRandomSweep}, queue.EnqueueOption{NoRetry: true}); err != nil {
		return err
	}
	return s.Register(archiveSpec, queue.Task{Type: TaskArchivePastEvents}, queue.EnqueueOption{MaxRetry: 3})
}
