// Package service implements the crewchat connect services on top of a
// storage.Store.
package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/crewchat/internal/apperr"
	"github.com/mmynk/crewchat/internal/authz"
	"github.com/mmynk/crewchat/internal/middleware"
	"github.com/mmynk/crewchat/internal/models"
	"github.com/mmynk/crewchat/internal/storage"
)

var errNoUser = errors.New("authorization token required")

// currentUser returns the caller resolved by middleware.RequireAuth.
func currentUser(ctx context.Context) (*models.User, error) {
	user := middleware.GetUser(ctx)
	if user == nil {
		return nil, connect.NewError(connect.CodeUnauthenticated, errNoUser)
	}
	return user, nil
}

// fail logs err under op and converts it to a connect error.
func fail(op string, err error, attrs ...any) error {
	cerr := apperr.ToConnect(err)
	attrs = append(attrs, "error", err)
	if connect.CodeOf(cerr) == connect.CodeInternal {
		slog.Error(op+" failed", attrs...)
	} else {
		slog.Warn(op+" rejected", attrs...)
	}
	return cerr
}

// channelAccess loads a channel and checks that userID belongs to its group
// with at least role min.
func channelAccess(ctx context.Context, q storage.Queries, channelID, userID string, min models.Role) (*models.Channel, *models.Membership, error) {
	channel, err := q.GetChannel(ctx, channelID)
	if err != nil {
		return nil, nil, err
	}
	m, err := authz.Require(ctx, q, channel.GroupID, userID, min)
	if err != nil {
		return nil, nil, err
	}
	return channel, m, nil
}

// messageAccess loads a message and checks that userID belongs to the group
// owning its channel.
func messageAccess(ctx context.Context, q storage.Queries, messageID, userID string) (*models.Message, *models.Channel, error) {
	msg, err := q.GetMessage(ctx, messageID)
	if err != nil {
		return nil, nil, err
	}
	channel, _, err := channelAccess(ctx, q, msg.ChannelID, userID, models.RoleMember)
	if err != nil {
		return nil, nil, err
	}
	return msg, channel, nil
}
