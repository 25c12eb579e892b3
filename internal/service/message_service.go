package service

import (
	"context"
	"log/slog"
	"strings"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/mmynk/crewchat/internal/apperr"
	"github.com/mmynk/crewchat/internal/models"
	"github.com/mmynk/crewchat/internal/reactions"
	"github.com/mmynk/crewchat/internal/storage"
	"github.com/mmynk/crewchat/pkg/api"
)

// MessageService implements the Connect MessageService.
type MessageService struct {
	store storage.Store
}

func NewMessageService(store storage.Store) *MessageService {
	return &MessageService{store: store}
}

// SendMessage posts a message or a thread reply. A reply bumps the parent's
// counter in the same transaction.
func (s *MessageService) SendMessage(ctx context.Context, req *connect.Request[api.SendMessageRequest]) (*connect.Response[api.MessageResponse], error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	msg := req.Msg
	slog.Info("SendMessage request received", "channel_id", msg.ChannelID, "thread_parent_id", msg.ThreadParentID)

	created := &models.Message{
		ChannelID:      msg.ChannelID,
		AuthorID:       user.ID,
		Body:           msg.Body,
		ThreadParentID: msg.ThreadParentID,
		MessageType:    models.MessageText,
	}
	err = s.store.RunInTx(ctx, func(q storage.Queries) error {
		if _, _, err := channelAccess(ctx, q, msg.ChannelID, user.ID, models.RoleMember); err != nil {
			return err
		}
		if msg.ThreadParentID != "" {
			parent, err := q.GetMessage(ctx, msg.ThreadParentID)
			if err != nil {
				return err
			}
			if parent.ChannelID != msg.ChannelID {
				return apperr.Invalid("thread parent belongs to another channel")
			}
			if parent.ThreadParentID != "" {
				return apperr.Invalid("cannot reply to a thread reply")
			}
			if parent.IsDeleted {
				return apperr.Invalid("cannot reply to a deleted message")
			}
		}
		if err := q.CreateMessage(ctx, created); err != nil {
			return err
		}
		if created.ThreadParentID == "" {
			return nil
		}
		return q.AdjustThreadReplyCount(ctx, created.ThreadParentID, 1, created.CreatedAt)
	})
	if err != nil {
		return nil, fail("SendMessage", err, "channel_id", msg.ChannelID)
	}

	return connect.NewResponse(&api.MessageResponse{Message: toAPIMessage(created)}), nil
}

// EditMessage replaces the body of the caller's own message.
func (s *MessageService) EditMessage(ctx context.Context, req *connect.Request[api.EditMessageRequest]) (*connect.Response[api.MessageResponse], error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	msg := req.Msg
	slog.Info("EditMessage request received", "message_id", msg.MessageID)

	var edited *models.Message
	err = s.store.RunInTx(ctx, func(q storage.Queries) error {
		m, _, err := messageAccess(ctx, q, msg.MessageID, user.ID)
		if err != nil {
			return err
		}
		if m.AuthorID != user.ID {
			return apperr.Denied("can only edit your own messages")
		}
		if m.IsDeleted {
			return apperr.NotFound("message", m.ID)
		}
		if err := q.UpdateMessageBody(ctx, m.ID, msg.Body, models.NowMillis()); err != nil {
			return err
		}
		edited, err = q.GetMessage(ctx, m.ID)
		return err
	})
	if err != nil {
		return nil, fail("EditMessage", err, "message_id", msg.MessageID)
	}
	return connect.NewResponse(&api.MessageResponse{Message: toAPIMessage(edited)}), nil
}

// DeleteMessage soft-deletes the caller's own message. Deleting a reply
// decrements the parent's counter; deleting twice is a no-op.
func (s *MessageService) DeleteMessage(ctx context.Context, req *connect.Request[api.DeleteMessageRequest]) (*connect.Response[emptypb.Empty], error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	messageID := req.Msg.MessageID
	slog.Info("DeleteMessage request received", "message_id", messageID)

	err = s.store.RunInTx(ctx, func(q storage.Queries) error {
		m, _, err := messageAccess(ctx, q, messageID, user.ID)
		if err != nil {
			return err
		}
		if m.AuthorID != user.ID {
			return apperr.Denied("can only delete your own messages")
		}
		if m.IsDeleted {
			return nil
		}
		if err := q.SoftDeleteMessage(ctx, m.ID); err != nil {
			return err
		}
		if m.ThreadParentID == "" {
			return nil
		}
		return q.AdjustThreadReplyCount(ctx, m.ThreadParentID, -1, 0)
	})
	if err != nil {
		return nil, fail("DeleteMessage", err, "message_id", messageID)
	}
	return connect.NewResponse(&emptypb.Empty{}), nil
}

// ListMessages pages through a channel's top-level messages, newest first.
func (s *MessageService) ListMessages(ctx context.Context, req *connect.Request[api.ListMessagesRequest]) (*connect.Response[api.ListMessagesResponse], error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	msg := req.Msg
	limit := msg.Limit
	if limit <= 0 {
		limit = api.DefaultPageSize
	}

	if _, _, err := channelAccess(ctx, s.store, msg.ChannelID, user.ID, models.RoleMember); err != nil {
		return nil, fail("ListMessages", err, "channel_id", msg.ChannelID)
	}
	messages, err := s.store.ListTopLevelMessages(ctx, msg.ChannelID, msg.Before, msg.BeforeID, limit)
	if err != nil {
		return nil, fail("ListMessages", err, "channel_id", msg.ChannelID)
	}
	out, err := s.withReactions(ctx, messages)
	if err != nil {
		return nil, fail("ListMessages", err, "channel_id", msg.ChannelID)
	}

	resp := &api.ListMessagesResponse{Messages: out}
	if len(messages) == limit {
		last := messages[len(messages)-1]
		resp.NextCursor, resp.NextCursorID = last.CreatedAt, last.ID
	}
	return connect.NewResponse(resp), nil
}

// GetMessage returns one message with its reactions. Deleted messages are
// still returned, flagged.
func (s *MessageService) GetMessage(ctx context.Context, req *connect.Request[api.GetMessageRequest]) (*connect.Response[api.MessageResponse], error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	m, _, err := messageAccess(ctx, s.store, req.Msg.MessageID, user.ID)
	if err != nil {
		return nil, fail("GetMessage", err, "message_id", req.Msg.MessageID)
	}
	out, err := s.withReactions(ctx, []*models.Message{m})
	if err != nil {
		return nil, fail("GetMessage", err, "message_id", req.Msg.MessageID)
	}
	return connect.NewResponse(&api.MessageResponse{Message: out[0]}), nil
}

// SearchMessages finds live messages in a channel whose body contains the
// query, newest first.
func (s *MessageService) SearchMessages(ctx context.Context, req *connect.Request[api.SearchMessagesRequest]) (*connect.Response[api.SearchMessagesResponse], error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	msg := req.Msg
	term := strings.TrimSpace(msg.Query)
	if term == "" {
		return nil, fail("SearchMessages", apperr.Invalid("query is blank"), "channel_id", msg.ChannelID)
	}
	limit := msg.Limit
	if limit <= 0 {
		limit = api.DefaultPageSize
	}

	if _, _, err := channelAccess(ctx, s.store, msg.ChannelID, user.ID, models.RoleMember); err != nil {
		return nil, fail("SearchMessages", err, "channel_id", msg.ChannelID)
	}
	found, err := s.store.SearchMessages(ctx, msg.ChannelID, term, limit)
	if err != nil {
		return nil, fail("SearchMessages", err, "channel_id", msg.ChannelID)
	}
	out, err := s.withReactions(ctx, found)
	if err != nil {
		return nil, fail("SearchMessages", err, "channel_id", msg.ChannelID)
	}
	slog.Debug("SearchMessages completed", "channel_id", msg.ChannelID, "results", len(out))
	return connect.NewResponse(&api.SearchMessagesResponse{Messages: out}), nil
}

// ListThread returns a message and its live replies, oldest first. The
// parent's counter is corrected if it drifted from the live reply count.
func (s *MessageService) ListThread(ctx context.Context, req *connect.Request[api.ListThreadRequest]) (*connect.Response[api.ListThreadResponse], error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	parentID := req.Msg.MessageID

	var parent *models.Message
	var replies []*models.Message
	err = s.store.RunInTx(ctx, func(q storage.Queries) error {
		p, _, err := messageAccess(ctx, q, parentID, user.ID)
		if err != nil {
			return err
		}
		if p.ThreadParentID != "" {
			return apperr.Invalid("message is a thread reply")
		}
		replies, err = q.ListThread(ctx, p.ID)
		if err != nil {
			return err
		}
		live, err := q.CountLiveReplies(ctx, p.ID)
		if err != nil {
			return err
		}
		if live != p.ThreadReplyCount {
			slog.Warn("Thread reply count drifted", "message_id", p.ID, "stored", p.ThreadReplyCount, "live", live)
			if err := q.SetThreadReplyCount(ctx, p.ID, live); err != nil {
				return err
			}
			p.ThreadReplyCount = live
		}
		parent = p
		return nil
	})
	if err != nil {
		return nil, fail("ListThread", err, "message_id", parentID)
	}

	all, err := s.withReactions(ctx, append([]*models.Message{parent}, replies...))
	if err != nil {
		return nil, fail("ListThread", err, "message_id", parentID)
	}
	return connect.NewResponse(&api.ListThreadResponse{Parent: all[0], Replies: all[1:]}), nil
}

// withReactions converts messages and attaches their reaction summaries.
func (s *MessageService) withReactions(ctx context.Context, messages []*models.Message) ([]*api.Message, error) {
	out := make([]*api.Message, len(messages))
	for i, m := range messages {
		rs, err := s.store.ListReactionsByMessage(ctx, m.ID)
		if err != nil {
			return nil, err
		}
		out[i] = toAPIMessage(m)
		out[i].Reactions = toAPISummaries(reactions.Aggregate(rs))
	}
	return out, nil
}
