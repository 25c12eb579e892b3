package service

import (
	"context"
	"log/slog"
	"time"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/mmynk/crewchat/internal/authz"
	"github.com/mmynk/crewchat/internal/metrics"
	"github.com/mmynk/crewchat/internal/models"
	"github.com/mmynk/crewchat/internal/queue"
	"github.com/mmynk/crewchat/internal/reactions"
	"github.com/mmynk/crewchat/internal/senpai"
	"github.com/mmynk/crewchat/internal/storage"
	"github.com/mmynk/crewchat/pkg/api"
)

// milestoneDelay gives the chat a moment before Senpai reacts to an enshrinement.
const milestoneDelay = 30 * time.Second

// ReactionService implements the Connect ReactionService.
type ReactionService struct {
	store storage.Store
	tasks queue.Client
}

func NewReactionService(store storage.Store, tasks queue.Client) *ReactionService {
	return &ReactionService{store: store, tasks: tasks}
}

func emojiKind(emoji string) string {
	switch emoji {
	case models.PinEmoji:
		return "pin"
	case models.TrophyEmoji:
		return "trophy"
	default:
		return "other"
	}
}

// AddReaction records a reaction and applies its side effects. Adding the
// same reaction twice changes nothing.
func (s *ReactionService) AddReaction(ctx context.Context, req *connect.Request[api.AddReactionRequest]) (*connect.Response[api.AddReactionResponse], error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	msg := req.Msg
	slog.Info("AddReaction request received", "message_id", msg.MessageID, "emoji", msg.Emoji)

	var (
		effects reactions.Effects
		added   bool
		groupID string
		current []*models.Reaction
	)
	err = s.store.RunInTx(ctx, func(q storage.Queries) error {
		m, channel, err := messageAccess(ctx, q, msg.MessageID, user.ID)
		if err != nil {
			return err
		}
		groupID = channel.GroupID

		exists, err := q.HasReaction(ctx, m.ID, user.ID, msg.Emoji)
		if err != nil {
			return err
		}
		if !exists {
			now := models.NowMillis()
			if err := q.CreateReaction(ctx, &models.Reaction{
				MessageID: m.ID,
				UserID:    user.ID,
				Emoji:     msg.Emoji,
				CreatedAt: now,
			}); err != nil {
				return err
			}
			added = true
			effects, err = reactions.Dispatch(ctx, q, reactions.Event{
				Message: m,
				UserID:  user.ID,
				Emoji:   msg.Emoji,
				At:      now,
			})
			if err != nil {
				return err
			}
		}
		current, err = q.ListReactionsByMessage(ctx, m.ID)
		return err
	})
	if err != nil {
		return nil, fail("AddReaction", err, "message_id", msg.MessageID)
	}

	if added {
		metrics.ReactionsAdded.WithLabelValues(emojiKind(msg.Emoji)).Inc()
	}
	if effects.Pinned {
		metrics.Pins.Inc()
	}
	resp := &api.AddReactionResponse{
		Reactions: toAPISummaries(reactions.Aggregate(current)),
		Pinned:    effects.Pinned,
	}
	if effects.Enshrined != nil {
		metrics.Enshrinements.Inc()
		resp.Enshrined = toAPIHallOfFame(effects.Enshrined)
		if err := senpai.Schedule(ctx, s.tasks, groupID, senpai.TriggerMilestone, milestoneDelay); err != nil {
			slog.Error("Failed to schedule milestone trigger", "group_id", groupID, "error", err)
		}
	}
	return connect.NewResponse(resp), nil
}

// RemoveReaction deletes the caller's reaction if present. Pins and Hall of
// Fame entries stay.
func (s *ReactionService) RemoveReaction(ctx context.Context, req *connect.Request[api.RemoveReactionRequest]) (*connect.Response[emptypb.Empty], error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	msg := req.Msg

	err = s.store.RunInTx(ctx, func(q storage.Queries) error {
		if _, _, err := messageAccess(ctx, q, msg.MessageID, user.ID); err != nil {
			return err
		}
		removed, err := q.DeleteReaction(ctx, msg.MessageID, user.ID, msg.Emoji)
		if err != nil {
			return err
		}
		if !removed {
			slog.Debug("RemoveReaction found nothing to remove", "message_id", msg.MessageID, "emoji", msg.Emoji)
		}
		return nil
	})
	if err != nil {
		return nil, fail("RemoveReaction", err, "message_id", msg.MessageID)
	}
	return connect.NewResponse(&emptypb.Empty{}), nil
}

// ListReactions returns a message's reactions grouped by emoji.
func (s *ReactionService) ListReactions(ctx context.Context, req *connect.Request[api.ListReactionsRequest]) (*connect.Response[api.ListReactionsResponse], error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if _, _, err := messageAccess(ctx, s.store, req.Msg.MessageID, user.ID); err != nil {
		return nil, fail("ListReactions", err, "message_id", req.Msg.MessageID)
	}
	rs, err := s.store.ListReactionsByMessage(ctx, req.Msg.MessageID)
	if err != nil {
		return nil, fail("ListReactions", err, "message_id", req.Msg.MessageID)
	}
	return connect.NewResponse(&api.ListReactionsResponse{Reactions: toAPISummaries(reactions.Aggregate(rs))}), nil
}

// ListPins returns a channel's pins, newest first.
func (s *ReactionService) ListPins(ctx context.Context, req *connect.Request[api.ListPinsRequest]) (*connect.Response[api.ListPinsResponse], error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if _, _, err := channelAccess(ctx, s.store, req.Msg.ChannelID, user.ID, models.RoleMember); err != nil {
		return nil, fail("ListPins", err, "channel_id", req.Msg.ChannelID)
	}
	pins, err := s.store.ListPinsByChannel(ctx, req.Msg.ChannelID)
	if err != nil {
		return nil, fail("ListPins", err, "channel_id", req.Msg.ChannelID)
	}
	out := make([]*api.Pin, len(pins))
	for i, p := range pins {
		out[i] = toAPIPin(p)
	}
	return connect.NewResponse(&api.ListPinsResponse{Pins: out}), nil
}

// ListHallOfFame returns a group's enshrined messages, newest first.
func (s *ReactionService) ListHallOfFame(ctx context.Context, req *connect.Request[api.ListHallOfFameRequest]) (*connect.Response[api.ListHallOfFameResponse], error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := authz.Require(ctx, s.store, req.Msg.GroupID, user.ID, models.RoleMember); err != nil {
		return nil, fail("ListHallOfFame", err, "group_id", req.Msg.GroupID)
	}
	entries, err := s.store.ListHallOfFame(ctx, req.Msg.GroupID, req.Msg.Limit)
	if err != nil {
		return nil, fail("ListHallOfFame", err, "group_id", req.Msg.GroupID)
	}
	out := make([]*api.HallOfFameEntry, len(entries))
	for i, e := range entries {
		out[i] = toAPIHallOfFame(e)
	}
	return connect.NewResponse(&api.ListHallOfFameResponse{Entries: out}), nil
}
