package senpai

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/mmynk/crewchat/internal/models"
	"github.com/mmynk/crewchat/internal/queue"
)

// Rand is the randomness the sweeper draws from. *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
	Int64N(n int64) int64
}

type globalRand struct{}

func (globalRand) Float64() float64      { return rand.Float64() }
func (globalRand) Int64N(n int64) int64 { return rand.Int63n(n) }

// GroupLister lists the groups eligible for random triggers.
type GroupLister interface {
	ListSenpaiEnabledGroups(ctx context.Context) ([]*models.Group, error)
}

// Sweeper fires random triggers for a sample of enabled groups.
type Sweeper struct {
	groups     GroupLister
	queue      queue.Client
	rand       Rand
	sampleRate float64
	maxDelay   time.Duration
}

// SweeperOption customizes a Sweeper.
type SweeperOption func(*Sweeper)

// WithRand replaces the global random source.
func WithRand(r Rand) SweeperOption {
	return func(s *Sweeper) { s.rand = r }
}

// WithSampleRate sets the probability that a group fires on a sweep.
func WithSampleRate(p float64) SweeperOption {
	return func(s *Sweeper) { s.sampleRate = p }
}

// WithMaxDelay bounds the random delay before a fired trigger runs.
func WithMaxDelay(d time.Duration) SweeperOption {
	return func(s *Sweeper) { s.maxDelay = d }
}

// NewSweeper defaults to a 0.3 sample rate and delays in [0, 10m).
func NewSweeper(groups GroupLister, client queue.Client, opts ...SweeperOption) *Sweeper {
	s := &Sweeper{
		groups:     groups,
		queue:      client,
		rand:       globalRand{},
		sampleRate: 0.3,
		maxDelay:   10 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RandomSweep schedules a random trigger for each sampled group, each after
// its own random delay. It returns how many triggers were scheduled.
func (s *Sweeper) RandomSweep(ctx context.Context) (int, error) {
	groups, err := s.groups.ListSenpaiEnabledGroups(ctx)
	if err != nil {
		return 0, err
	}

	fired := 0
	for _, g := range groups {
		if s.rand.Float64() > s.sampleRate {
			continue
		}
		var delay time.Duration
		if s.maxDelay > 0 {
			delay = time.Duration(s.rand.Int64N(int64(s.maxDelay)))
		}
		if err := Schedule(ctx, s.queue, g.ID, TriggerRandom, delay); err != nil {
			slog.Error("Failed to schedule random trigger", "group_id", g.ID, "error", err)
			continue
		}
		fired++
	}

	slog.Info("Senpai random sweep done", "groups", len(groups), "scheduled", fired)
	return fired, nil
}

// HandleSweep adapts RandomSweep to a queue handler.
func (s *Sweeper) HandleSweep(ctx context.Context, _ queue.Task) error {
	_, err := s.RandomSweep(ctx)
	return err
}
