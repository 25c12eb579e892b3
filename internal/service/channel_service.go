package service

import (
	"context"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/crewchat/internal/apperr"
	"github.com/mmynk/crewchat/internal/authz"
	"github.com/mmynk/crewchat/internal/models"
	"github.com/mmynk/crewchat/internal/storage"
	"github.com/mmynk/crewchat/pkg/api"
)

// ChannelService implements the Connect ChannelService.
type ChannelService struct {
	store storage.Store
}

func NewChannelService(store storage.Store) *ChannelService {
	return &ChannelService{store: store}
}

func channelName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", apperr.Invalid("channel name cannot be empty")
	}
	return trimmed, nil
}

// CreateChannel creates a top-level channel in a group.
func (s *ChannelService) CreateChannel(ctx context.Context, req *connect.Request[api.CreateChannelRequest]) (*connect.Response[api.ChannelResponse], error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	msg := req.Msg
	slog.Info("CreateChannel request received", "group_id", msg.GroupID, "type", msg.Type)

	name, err := channelName(msg.Name)
	if err != nil {
		return nil, fail("CreateChannel", err)
	}
	typ, err := models.ParseChannelType(msg.Type)
	if err != nil {
		return nil, fail("CreateChannel", apperr.Invalid(err.Error()))
	}

	channel := &models.Channel{
		GroupID:         msg.GroupID,
		Name:            name,
		Icon:            msg.Icon,
		Type:            typ,
		CreatedBy:       user.ID,
		EventDate:       msg.EventDate,
		EventEndDate:    msg.EventEndDate,
		EventLocation:   msg.EventLocation,
		BracketQuestion: msg.BracketQuestion,
	}
	if typ == models.ChannelBracket {
		channel.BracketStatus = models.BracketNominating
	}

	err = s.store.RunInTx(ctx, func(q storage.Queries) error {
		if _, err := authz.Require(ctx, q, msg.GroupID, user.ID, models.RoleMember); err != nil {
			return err
		}
		return q.CreateChannel(ctx, channel)
	})
	if err != nil {
		return nil, fail("CreateChannel", err, "group_id", msg.GroupID)
	}

	slog.Info("Channel created", "channel_id", channel.ID, "group_id", channel.GroupID)
	return connect.NewResponse(&api.ChannelResponse{Channel: toAPIChannel(channel)}), nil
}

// ForkFromMessage starts a new channel from a message. The message records
// the fork and the parent channel gets a system note.
func (s *ChannelService) ForkFromMessage(ctx context.Context, req *connect.Request[api.ForkFromMessageRequest]) (*connect.Response[api.ForkFromMessageResponse], error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	msg := req.Msg
	slog.Info("ForkFromMessage request received", "message_id", msg.MessageID, "type", msg.Type)

	name, err := channelName(msg.Name)
	if err != nil {
		return nil, fail("ForkFromMessage", err)
	}
	typ, err := models.ParseChannelType(msg.Type)
	if err != nil {
		return nil, fail("ForkFromMessage", apperr.Invalid(err.Error()))
	}

	var channel *models.Channel
	var note *models.Message
	err = s.store.RunInTx(ctx, func(q storage.Queries) error {
		source, parent, err := messageAccess(ctx, q, msg.MessageID, user.ID)
		if err != nil {
			return err
		}

		channel = &models.Channel{
			GroupID:         parent.GroupID,
			Name:            name,
			Icon:            msg.Icon,
			Type:            typ,
			CreatedBy:       user.ID,
			ParentChannelID: parent.ID,
			ParentMessageID: source.ID,
			ForkDepth:       parent.ForkDepth + 1,
			EventDate:       msg.EventDate,
			BracketQuestion: msg.BracketQuestion,
		}
		if typ == models.ChannelBracket {
			channel.BracketStatus = models.BracketNominating
		}
		if err := q.CreateChannel(ctx, channel); err != nil {
			return err
		}
		if err := q.SetForkedTo(ctx, source.ID, channel.ID); err != nil {
			return err
		}

		note = &models.Message{
			ChannelID:   parent.ID,
			AuthorID:    user.ID,
			Body:        "Forked to #" + name,
			MessageType: models.MessageSystem,
		}
		return q.CreateMessage(ctx, note)
	})
	if err != nil {
		return nil, fail("ForkFromMessage", err, "message_id", msg.MessageID)
	}

	slog.Info("Channel forked", "channel_id", channel.ID, "parent_channel_id", channel.ParentChannelID, "depth", channel.ForkDepth)
	return connect.NewResponse(&api.ForkFromMessageResponse{
		Channel:       toAPIChannel(channel),
		SystemMessage: toAPIMessage(note),
	}), nil
}

// ListChannels returns a group's channels: hangouts, then events, then brackets.
func (s *ChannelService) ListChannels(ctx context.Context, req *connect.Request[api.ListChannelsRequest]) (*connect.Response[api.ListChannelsResponse], error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	groupID := req.Msg.GroupID

	if _, err := authz.Require(ctx, s.store, groupID, user.ID, models.RoleMember); err != nil {
		return nil, fail("ListChannels", err, "group_id", groupID)
	}
	channels, err := s.store.ListChannelsByGroup(ctx, groupID)
	if err != nil {
		return nil, fail("ListChannels", err, "group_id", groupID)
	}

	out := make([]*api.Channel, len(channels))
	for i, c := range channels {
		out[i] = toAPIChannel(c)
	}
	return connect.NewResponse(&api.ListChannelsResponse{Channels: out}), nil
}

// GetChannel returns one channel.
func (s *ChannelService) GetChannel(ctx context.Context, req *connect.Request[api.GetChannelRequest]) (*connect.Response[api.ChannelResponse], error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	channel, _, err := channelAccess(ctx, s.store, req.Msg.ChannelID, user.ID, models.RoleMember)
	if err != nil {
		return nil, fail("GetChannel", err, "channel_id", req.Msg.ChannelID)
	}
	return connect.NewResponse(&api.ChannelResponse{Channel: toAPIChannel(channel)}), nil
}

// UpdateChannel renames a channel and sets its icon.
func (s *ChannelService) UpdateChannel(ctx context.Context, req *connect.Request[api.UpdateChannelRequest]) (*connect.Response[api.ChannelResponse], error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	msg := req.Msg
	slog.Info("UpdateChannel request received", "channel_id", msg.ChannelID)

	name, err := channelName(msg.Name)
	if err != nil {
		return nil, fail("UpdateChannel", err)
	}

	var channel *models.Channel
	err = s.store.RunInTx(ctx, func(q storage.Queries) error {
		if _, _, err := channelAccess(ctx, q, msg.ChannelID, user.ID, models.RoleMember); err != nil {
			return err
		}
		if err := q.UpdateChannel(ctx, msg.ChannelID, name, strings.TrimSpace(msg.Icon)); err != nil {
			return err
		}
		c, err := q.GetChannel(ctx, msg.ChannelID)
		channel = c
		return err
	})
	if err != nil {
		return nil, fail("UpdateChannel", err, "channel_id", msg.ChannelID)
	}
	return connect.NewResponse(&api.ChannelResponse{Channel: toAPIChannel(channel)}), nil
}

// ArchiveChannel hides a channel from active use. Admin only.
func (s *ChannelService) ArchiveChannel(ctx context.Context, req *connect.Request[api.ArchiveChannelRequest]) (*connect.Response[api.ChannelResponse], error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	channelID := req.Msg.ChannelID
	slog.Info("ArchiveChannel request received", "channel_id", channelID)

	var channel *models.Channel
	err = s.store.RunInTx(ctx, func(q storage.Queries) error {
		if _, _, err := channelAccess(ctx, q, channelID, user.ID, models.RoleAdmin); err != nil {
			return err
		}
		if err := q.ArchiveChannel(ctx, channelID, models.NowMillis()); err != nil {
			return err
		}
		c, err := q.GetChannel(ctx, channelID)
		channel = c
		return err
	})
	if err != nil {
		return nil, fail("ArchiveChannel", err, "channel_id", channelID)
	}
	return connect.NewResponse(&api.ChannelResponse{Channel: toAPIChannel(channel)}), nil
}
