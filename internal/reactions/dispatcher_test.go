package reactions

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/crewchat/internal/models"
)

// fakeQueries is an in-memory Queries.
type fakeQueries struct {
	group     *models.Group
	channel   *models.Channel
	reactions []*models.Reaction
	pins      map[string]*models.Pin
	fame      map[string]*models.HallOfFameEntry
	memories  []*models.SenpaiMemory
}

func newFakeQueries(threshold int) *fakeQueries {
	return &fakeQueries{
		group:   &models.Group{ID: "g1", HallOfFameThreshold: threshold},
		channel: &models.Channel{ID: "c1", GroupID: "g1"},
		pins:    map[string]*models.Pin{},
		fame:    map[string]*models.HallOfFameEntry{},
	}
}

func (f *fakeQueries) GetChannel(ctx context.Context, channelID string) (*models.Channel, error) {
	if channelID != f.channel.ID {
		return nil, fmt.Errorf("channel %s not found", channelID)
	}
	return f.channel, nil
}

func (f *fakeQueries) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	return f.group, nil
}

func (f *fakeQueries) CreatePin(ctx context.Context, pin *models.Pin) (bool, error) {
	if _, ok := f.pins[pin.MessageID]; ok {
		return false, nil
	}
	f.pins[pin.MessageID] = pin
	return true, nil
}

func (f *fakeQueries) ListReactionsByMessageEmoji(ctx context.Context, messageID, emoji string) ([]*models.Reaction, error) {
	var out []*models.Reaction
	for _, r := range f.reactions {
		if r.MessageID == messageID && r.Emoji == emoji {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeQueries) HasHallOfFameEntry(ctx context.Context, groupID, messageID string) (bool, error) {
	_, ok := f.fame[messageID]
	return ok, nil
}

func (f *fakeQueries) CreateHallOfFameEntry(ctx context.Context, entry *models.HallOfFameEntry) error {
	f.fame[entry.MessageID] = entry
	return nil
}

func (f *fakeQueries) CreateMemory(ctx context.Context, memory *models.SenpaiMemory) error {
	f.memories = append(f.memories, memory)
	return nil
}

func (f *fakeQueries) react(messageID, userID, emoji string) {
	f.reactions = append(f.reactions, &models.Reaction{MessageID: messageID, UserID: userID, Emoji: emoji})
}

func TestDispatch_Pin(t *testing.T) {
	ctx := context.Background()
	q := newFakeQueries(0)
	msg := &models.Message{ID: "m1", ChannelID: "c1", AuthorID: "author"}

	effects, err := Dispatch(ctx, q, Event{Message: msg, UserID: "u1", Emoji: models.PinEmoji, At: 10})
	require.NoError(t, err)
	assert.True(t, effects.Pinned)

	effects, err = Dispatch(ctx, q, Event{Message: msg, UserID: "u2", Emoji: models.PinEmoji, At: 20})
	require.NoError(t, err)
	assert.False(t, effects.Pinned)

	require.Len(t, q.pins, 1)
	assert.Equal(t, "u1", q.pins["m1"].PinnedBy)
}

func TestDispatch_HallOfFame(t *testing.T) {
	tests := []struct {
		name      string
		threshold int
		reactors  int
		want      bool
	}{
		{name: "below default threshold", threshold: 0, reactors: 4, want: false},
		{name: "at default threshold", threshold: 0, reactors: 5, want: true},
		{name: "custom threshold", threshold: 2, reactors: 2, want: true},
		{name: "below custom threshold", threshold: 3, reactors: 2, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			q := newFakeQueries(tt.threshold)
			msg := &models.Message{ID: "m1", ChannelID: "c1", AuthorID: "author", Body: "iconic"}

			var effects Effects
			for i := 0; i < tt.reactors; i++ {
				user := fmt.Sprintf("u%d", i)
				q.react(msg.ID, user, models.TrophyEmoji)
				var err error
				effects, err = Dispatch(ctx, q, Event{Message: msg, UserID: user, Emoji: models.TrophyEmoji, At: int64(i)})
				require.NoError(t, err)
			}

			assert.Equal(t, tt.want, effects.Enshrined != nil)
			if tt.want {
				assert.Equal(t, tt.reactors, effects.Enshrined.TrophyCount)
				assert.Equal(t, "iconic", effects.Enshrined.Body)
				assert.Equal(t, "g1", effects.Enshrined.GroupID)
			}
		})
	}
}

func TestDispatch_EnshrinesOnce(t *testing.T) {
	ctx := context.Background()
	q := newFakeQueries(1)
	msg := &models.Message{ID: "m1", ChannelID: "c1"}

	q.react(msg.ID, "u1", models.TrophyEmoji)
	first, err := Dispatch(ctx, q, Event{Message: msg, UserID: "u1", Emoji: models.TrophyEmoji})
	require.NoError(t, err)
	require.NotNil(t, first.Enshrined)

	q.react(msg.ID, "u2", models.TrophyEmoji)
	second, err := Dispatch(ctx, q, Event{Message: msg, UserID: "u2", Emoji: models.TrophyEmoji})
	require.NoError(t, err)
	assert.Nil(t, second.Enshrined)
	assert.Len(t, q.fame, 1)
	assert.Len(t, q.memories, 1)
}

func TestDispatch_EnshrineStoresMilestoneMemory(t *testing.T) {
	q := newFakeQueries(1)
	msg := &models.Message{ID: "m1", ChannelID: "c1", Body: strings.Repeat("ha", 150)}

	q.react(msg.ID, "u1", models.TrophyEmoji)
	_, err := Dispatch(context.Background(), q, Event{Message: msg, UserID: "u1", Emoji: models.TrophyEmoji, At: 42})
	require.NoError(t, err)

	require.Len(t, q.memories, 1)
	m := q.memories[0]
	assert.Equal(t, "g1", m.GroupID)
	assert.Equal(t, models.MemoryMilestone, m.MemoryType)
	assert.Equal(t, int64(42), m.CreatedAt)
	assert.Equal(t, 1.0, m.RelevanceScore)
	assert.Contains(t, m.Content, "1 trophies")
	assert.Contains(t, m.Content, "…")
	assert.Less(t, len([]rune(m.Content)), 260)
}

func TestDispatch_OtherEmojiHasNoEffect(t *testing.T) {
	q := newFakeQueries(1)
	effects, err := Dispatch(context.Background(), q, Event{
		Message: &models.Message{ID: "m1", ChannelID: "c1"},
		UserID:  "u1",
		Emoji:   "🔥",
	})
	require.NoError(t, err)
	assert.Equal(t, Effects{}, effects)
	assert.Empty(t, q.pins)
}
