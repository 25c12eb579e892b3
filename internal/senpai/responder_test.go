package senpai

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/crewchat/internal/apperr"
	"github.com/mmynk/crewchat/internal/models"
)

type fakeStore struct {
	group    *models.Group
	hangout  *models.Channel
	messages []*models.Message
	members  []*models.Member
	memories []*models.SenpaiMemory
	fame     []*models.HallOfFameEntry
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		group:   &models.Group{ID: "g1", Name: "Crew", SenpaiEnabled: true, SenpaiFrequency: models.FrequencyNormal},
		hangout: &models.Channel{ID: "c1", GroupID: "g1", Type: models.ChannelHangout, CreatedBy: "founder"},
		messages: []*models.Message{
			{ID: "m1", ChannelID: "c1", AuthorID: "u1", Body: "so bored"},
		},
		members: []*models.Member{
			{Membership: models.Membership{UserID: "u1"}, DisplayName: "Alice"},
		},
	}
}

func (f *fakeStore) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	if groupID != f.group.ID {
		return nil, apperr.NotFound("group", groupID)
	}
	return f.group, nil
}

func (f *fakeStore) ListMemories(ctx context.Context, groupID string, limit int) ([]*models.SenpaiMemory, error) {
	return f.memories, nil
}

func (f *fakeStore) ListHallOfFame(ctx context.Context, groupID string, limit int) ([]*models.HallOfFameEntry, error) {
	return f.fame, nil
}

func (f *fakeStore) GetHangoutChannel(ctx context.Context, groupID string) (*models.Channel, error) {
	return f.hangout, nil
}

func (f *fakeStore) ListRecentMessages(ctx context.Context, channelID string, limit int) ([]*models.Message, error) {
	return f.messages, nil
}

func (f *fakeStore) ListMembers(ctx context.Context, groupID string) ([]*models.Member, error) {
	return f.members, nil
}

func (f *fakeStore) CreateMessage(ctx context.Context, msg *models.Message) error {
	msg.ID = fmt.Sprintf("m%d", len(f.messages)+1)
	f.messages = append(f.messages, msg)
	return nil
}

type completerFunc func(ctx context.Context, system, user string) (string, error)

func (f completerFunc) Complete(ctx context.Context, system, user string) (string, error) {
	return f(ctx, system, user)
}

func TestResponder_Posts(t *testing.T) {
	store := newFakeStore()
	var gotUser string
	r := NewResponder(store, completerFunc(func(ctx context.Context, system, user string) (string, error) {
		gotUser = user
		return "  <b>touch grass</b> & call me  ", nil
	}))

	msg, err := r.Respond(context.Background(), "g1", TriggerRandom)
	require.NoError(t, err)
	require.NotNil(t, msg)

	assert.Equal(t, "touch grass & call me", msg.Body)
	assert.Equal(t, models.MessageSenpai, msg.MessageType)
	assert.Equal(t, TriggerRandom, msg.SenpaiTrigger)
	assert.Equal(t, "c1", msg.ChannelID)
	assert.Equal(t, "founder", msg.AuthorID)
	assert.Contains(t, gotUser, "[Alice]: so bored")
	assert.Len(t, store.messages, 2)
}

func TestResponder_Skips(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(*fakeStore)
		trigger string
	}{
		{
			name:    "disabled group",
			setup:   func(s *fakeStore) { s.group.SenpaiEnabled = false },
			trigger: TriggerMilestone,
		},
		{
			name:    "quiet group ignores random",
			setup:   func(s *fakeStore) { s.group.SenpaiFrequency = models.FrequencyQuiet },
			trigger: TriggerRandom,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			tt.setup(store)
			called := false
			r := NewResponder(store, completerFunc(func(ctx context.Context, system, user string) (string, error) {
				called = true
				return "hi", nil
			}))

			msg, err := r.Respond(context.Background(), "g1", tt.trigger)
			require.NoError(t, err)
			assert.Nil(t, msg)
			assert.False(t, called)
			assert.Len(t, store.messages, 1)
		})
	}
}

func TestResponder_CompletionFailureIsSwallowed(t *testing.T) {
	store := newFakeStore()
	r := NewResponder(store, completerFunc(func(ctx context.Context, system, user string) (string, error) {
		return "", fmt.Errorf("%w: status 500", apperr.ErrExternalService)
	}))

	msg, err := r.Respond(context.Background(), "g1", TriggerMilestone)
	require.NoError(t, err)
	assert.Nil(t, msg)
	assert.Len(t, store.messages, 1)
}

func TestResponder_MarkupOnlyReplyIsDropped(t *testing.T) {
	store := newFakeStore()
	r := NewResponder(store, completerFunc(func(ctx context.Context, system, user string) (string, error) {
		return "<script>alert(1)</script>", nil
	}))

	msg, err := r.Respond(context.Background(), "g1", TriggerMilestone)
	require.NoError(t, err)
	assert.Nil(t, msg)
	assert.Len(t, store.messages, 1)
}

func TestResponder_UnknownGroup(t *testing.T) {
	r := NewResponder(newFakeStore(), completerFunc(func(ctx context.Context, system, user string) (string, error) {
		return "hi", nil
	}))
	_, err := r.Respond(context.Background(), "nope", TriggerMilestone)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
