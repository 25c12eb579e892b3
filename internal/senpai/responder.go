package senpai

import (
	"context"
	"html"
	"log/slog"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/mmynk/crewchat/internal/metrics"
	"github.com/mmynk/crewchat/internal/models"
)

// Queries is the storage the responder reads and writes.
type Queries interface {
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)
	ListMemories(ctx context.Context, groupID string, limit int) ([]*models.SenpaiMemory, error)
	ListHallOfFame(ctx context.Context, groupID string, limit int) ([]*models.HallOfFameEntry, error)
	GetHangoutChannel(ctx context.Context, groupID string) (*models.Channel, error)
	ListRecentMessages(ctx context.Context, channelID string, limit int) ([]*models.Message, error)
	ListMembers(ctx context.Context, groupID string) ([]*models.Member, error)
	CreateMessage(ctx context.Context, msg *models.Message) error
}

// Responder answers one trigger for one group.
type Responder struct {
	store     Queries
	completer Completer
	policy    *bluemonday.Policy
}

// NewResponder creates a responder. Completions are stripped of all markup
// before they are posted.
func NewResponder(store Queries, completer Completer) *Responder {
	return &Responder{
		store:     store,
		completer: completer,
		policy:    bluemonday.StrictPolicy(),
	}
}

// Respond posts a senpai message to the group's hangout channel.
//
// It returns (nil, nil) when the group has the persona disabled, the
// frequency gate rejects the trigger, or the completion service fails.
// Those failures are logged and never retried. Storage errors are returned.
func (r *Responder) Respond(ctx context.Context, groupID, trigger string) (*models.Message, error) {
	group, err := r.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.SenpaiEnabled {
		metrics.SenpaiResponses.WithLabelValues(trigger, metrics.SenpaiSkippedDisabled).Inc()
		return nil, nil
	}
	if !ShouldRespond(group.SenpaiFrequency, trigger) {
		slog.Debug("Senpai gated by frequency", "group_id", groupID, "frequency", group.SenpaiFrequency, "trigger", trigger)
		metrics.SenpaiResponses.WithLabelValues(trigger, metrics.SenpaiSkippedFrequency).Inc()
		return nil, nil
	}

	memories, err := r.store.ListMemories(ctx, groupID, MemoryLimit)
	if err != nil {
		return nil, err
	}
	fame, err := r.store.ListHallOfFame(ctx, groupID, HallOfFameLimit)
	if err != nil {
		return nil, err
	}
	hangout, err := r.store.GetHangoutChannel(ctx, groupID)
	if err != nil {
		return nil, err
	}
	recent, err := r.store.ListRecentMessages(ctx, hangout.ID, RecentLimit)
	if err != nil {
		return nil, err
	}
	members, err := r.store.ListMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(members))
	for _, m := range members {
		names[m.UserID] = m.DisplayName
	}

	system := BuildSystemPrompt(PromptInput{
		GroupName:   group.Name,
		Personality: group.SenpaiPersonality,
		Memories:    memories,
		HallOfFame:  fame,
		Trigger:     trigger,
	})
	user := BuildUserPrompt(recent, names, trigger)

	reply, err := r.completer.Complete(ctx, system, user)
	if err != nil {
		slog.Warn("Senpai completion failed", "group_id", groupID, "trigger", trigger, "error", err)
		metrics.SenpaiResponses.WithLabelValues(trigger, metrics.SenpaiFailed).Inc()
		return nil, nil
	}

	body := r.sanitize(reply)
	if body == "" {
		slog.Warn("Senpai completion empty after sanitizing", "group_id", groupID, "trigger", trigger)
		metrics.SenpaiResponses.WithLabelValues(trigger, metrics.SenpaiFailed).Inc()
		return nil, nil
	}

	msg := &models.Message{
		ChannelID:     hangout.ID,
		AuthorID:      hangout.CreatedBy,
		Body:          body,
		MessageType:   models.MessageSenpai,
		SenpaiTrigger: trigger,
	}
	if err := r.store.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}

	slog.Info("Senpai posted", "group_id", groupID, "channel_id", hangout.ID, "trigger", trigger)
	metrics.SenpaiResponses.WithLabelValues(trigger, metrics.SenpaiPosted).Inc()
	return msg, nil
}

// sanitize strips markup and returns plain text.
func (r *Responder) sanitize(s string) string {
	return strings.TrimSpace(html.UnescapeString(r.policy.Sanitize(s)))
}
