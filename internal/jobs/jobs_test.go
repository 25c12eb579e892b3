package jobs

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/crewchat/internal/models"
	"github.com/mmynk/crewchat/internal/queue"
	"github.com/mmynk/crewchat/internal/senpai"
	"github.com/mmynk/crewchat/internal/storage/sqlite"
)

func TestArchivePastEvents(t *testing.T) {
	store, err := sqlite.New(filepath.Join(t.TempDir(), "jobs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	ctx := context.Background()

	owner := models.NewUser("owner@example.com", "Owner", "")
	require.NoError(t, store.CreateUser(ctx, owner))
	group := &models.Group{Name: "Crew", CreatedBy: owner.ID, InviteCode: "CREW0001"}
	require.NoError(t, store.CreateGroup(ctx, group))

	now := time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC)
	day := 24 * time.Hour
	ms := func(t time.Time) int64 { return t.UnixMilli() }

	ended := &models.Channel{GroupID: group.ID, Name: "Ski trip", Type: models.ChannelEvent, CreatedBy: owner.ID,
		EventDate: ms(now.Add(-5 * day)), EventEndDate: ms(now.Add(-2 * day))}
	ongoing := &models.Channel{GroupID: group.ID, Name: "Festival", Type: models.ChannelEvent, CreatedBy: owner.ID,
		EventDate: ms(now.Add(-1 * day)), EventEndDate: ms(now.Add(1 * day))}
	pastNoEnd := &models.Channel{GroupID: group.ID, Name: "Dinner", Type: models.ChannelEvent, CreatedBy: owner.ID,
		EventDate: ms(now.Add(-1 * day))}
	undated := &models.Channel{GroupID: group.ID, Name: "Someday", Type: models.ChannelEvent, CreatedBy: owner.ID}
	hangout := &models.Channel{GroupID: group.ID, Name: "Hangout", Type: models.ChannelHangout, CreatedBy: owner.ID}
	for _, ch := range []*models.Channel{ended, ongoing, pastNoEnd, undated, hangout} {
		require.NoError(t, store.CreateChannel(ctx, ch))
	}

	a := NewArchiver(store)
	a.now = func() time.Time { return now }

	n, err := a.ArchivePastEvents(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	for _, tc := range []struct {
		ch   *models.Channel
		want bool
	}{
		{ended, true},
		{pastNoEnd, true},
		{ongoing, false},
		{undated, false},
		{hangout, false},
	} {
		got, err := store.GetChannel(ctx, tc.ch.ID)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got.IsArchived, tc.ch.Name)
		if tc.want {
			assert.Equal(t, now.UnixMilli(), got.ArchivedAt)
		}
	}

	n, err = a.ArchivePastEvents(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "second run archives nothing")
}

type recordingServer struct {
	handlers map[string]queue.Handler
}

func (s *recordingServer) Register(taskType string, h queue.Handler) {
	s.handlers[taskType] = h
}

func (s *recordingServer) Run(ctx context.Context) error { return nil }

type recordingScheduler struct {
	specs map[string]string
	opts  map[string]queue.EnqueueOption
}

func (s *recordingScheduler) Register(cronspec string, t queue.Task, opts ...queue.EnqueueOption) error {
	s.specs[t.Type] = cronspec
	if len(opts) > 0 {
		s.opts[t.Type] = opts[0]
	}
	return nil
}

func (s *recordingScheduler) Run(ctx context.Context) error { return nil }

func TestRegister(t *testing.T) {
	srv := &recordingServer{handlers: map[string]queue.Handler{}}
	Register(srv, senpai.NewResponder(nil, nil), senpai.NewSweeper(nil, queue.Disabled{}), NewArchiver(nil))

	for _, typ := range []string{senpai.TaskRespond, senpai.TaskRandomSweep, TaskArchivePastEvents} {
		assert.Contains(t, srv.handlers, typ)
	}
}

func TestSchedule(t *testing.T) {
	s := &recordingScheduler{specs: map[string]string{}, opts: map[string]queue.EnqueueOption{}}
	require.NoError(t, Schedule(s, "", ""))

	assert.Equal(t, DefaultSweepSpec, s.specs[senpai.TaskRandomSweep])
	assert.Equal(t, DefaultArchiveSpec, s.specs[TaskArchivePastEvents])
	assert.True(t, s.opts[senpai.TaskRandomSweep].NoRetry)

	require.NoError(t, Schedule(s, "@every 1h", "30 5 * * *"))
	assert.Equal(t, "@every 1h", s.specs[senpai.TaskRandomSweep])
	assert.Equal(t, "30 5 * * *", s.specs[TaskArchivePastEvents])
}
