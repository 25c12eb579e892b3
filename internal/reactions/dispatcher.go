package reactions

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mmynk/crewchat/internal/models"
)

// Queries is the subset of storage the dispatcher needs. It is satisfied by
// storage.Queries, so Dispatch can run inside the add-reaction transaction.
type Queries interface {
	GetChannel(ctx context.Context, channelID string) (*models.Channel, error)
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)
	CreatePin(ctx context.Context, pin *models.Pin) (bool, error)
	ListReactionsByMessageEmoji(ctx context.Context, messageID, emoji string) ([]*models.Reaction, error)
	HasHallOfFameEntry(ctx context.Context, groupID, messageID string) (bool, error)
	CreateHallOfFameEntry(ctx context.Context, entry *models.HallOfFameEntry) error
	CreateMemory(ctx context.Context, memory *models.SenpaiMemory) error
}

// Event describes a reaction that was just added.
type Event struct {
	Message *models.Message
	UserID  string
	Emoji   string
	At      int64
}

// Effects reports what a dispatch changed.
type Effects struct {
	Pinned    bool
	Enshrined *models.HallOfFameEntry
}

// Dispatch applies the side effects of a newly added reaction.
// Removing a reaction never undoes them.
func Dispatch(ctx context.Context, q Queries, ev Event) (Effects, error) {
	switch ev.Emoji {
	case models.PinEmoji:
		return pin(ctx, q, ev)
	case models.TrophyEmoji:
		return enshrine(ctx, q, ev)
	default:
		return Effects{}, nil
	}
}

func pin(ctx context.Context, q Queries, ev Event) (Effects, error) {
	created, err := q.CreatePin(ctx, &models.Pin{
		ChannelID: ev.Message.ChannelID,
		MessageID: ev.Message.ID,
		PinnedBy:  ev.UserID,
		PinnedAt:  ev.At,
	})
	if err != nil {
		return Effects{}, fmt.Errorf("failed to pin message: %w", err)
	}
	if created {
		slog.Info("Message pinned", "message_id", ev.Message.ID, "user_id", ev.UserID)
	}
	return Effects{Pinned: created}, nil
}

func enshrine(ctx context.Context, q Queries, ev Event) (Effects, error) {
	msg := ev.Message

	trophies, err := q.ListReactionsByMessageEmoji(ctx, msg.ID, models.TrophyEmoji)
	if err != nil {
		return Effects{}, err
	}
	count := UniqueReactors(trophies)

	channel, err := q.GetChannel(ctx, msg.ChannelID)
	if err != nil {
		return Effects{}, err
	}
	group, err := q.GetGroup(ctx, channel.GroupID)
	if err != nil {
		return Effects{}, err
	}
	if count < group.Threshold() {
		return Effects{}, nil
	}

	exists, err := q.HasHallOfFameEntry(ctx, group.ID, msg.ID)
	if err != nil {
		return Effects{}, err
	}
	if exists {
		return Effects{}, nil
	}

	entry := &models.HallOfFameEntry{
		GroupID:     group.ID,
		MessageID:   msg.ID,
		ChannelID:   msg.ChannelID,
		AuthorID:    msg.AuthorID,
		Body:        msg.Body,
		TrophyCount: count,
		EnshrinedAt: ev.At,
	}
	if err := q.CreateHallOfFameEntry(ctx, entry); err != nil {
		return Effects{}, fmt.Errorf("failed to enshrine message: %w", err)
	}
	if err := q.CreateMemory(ctx, milestoneMemory(entry)); err != nil {
		return Effects{}, fmt.Errorf("failed to remember enshrinement: %w", err)
	}

	slog.Info("Message enshrined", "message_id", msg.ID, "group_id", group.ID, "trophies", count)
	return Effects{Enshrined: entry}, nil
}

// memoryExcerptLen caps how much of an enshrined body is kept as a memory.
const memoryExcerptLen = 200

// milestoneMemory turns a Hall of Fame entry into persona context so Senpai
// can bring it up later.
func milestoneMemory(entry *models.HallOfFameEntry) *models.SenpaiMemory {
	body := []rune(entry.Body)
	if len(body) > memoryExcerptLen {
		body = append(body[:memoryExcerptLen], '…')
	}
	return &models.SenpaiMemory{
		GroupID:        entry.GroupID,
		MemoryType:     models.MemoryMilestone,
		Content:        fmt.Sprintf("Hall of Fame (%d trophies): %q", entry.TrophyCount, string(body)),
		CreatedAt:      entry.EnshrinedAt,
		RelevanceScore: 1.0,
	}
}
