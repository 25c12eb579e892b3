package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/mmynk/crewchat/internal/apperr"
	"github.com/mmynk/crewchat/internal/authz"
	"github.com/mmynk/crewchat/internal/models"
	"github.com/mmynk/crewchat/internal/storage"
	"github.com/mmynk/crewchat/pkg/api"
)

const (
	inviteAlphabet   = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	inviteCodeLength = 8
	inviteAttempts   = 5

	hangoutName = "Hangout"
	hangoutIcon = "💬"
)

// GroupService implements the Connect GroupService
type GroupService struct {
	store storage.Store
}

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.Store) *GroupService {
	return &GroupService{store: store}
}

func newInviteCode() (string, error) {
	var b strings.Builder
	size := big.NewInt(int64(len(inviteAlphabet)))
	for i := 0; i < inviteCodeLength; i++ {
		n, err := rand.Int(rand.Reader, size)
		if err != nil {
			return "", fmt.Errorf("failed to generate invite code: %w", err)
		}
		b.WriteByte(inviteAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// uniqueInviteCode draws codes until one is unused.
func uniqueInviteCode(ctx context.Context, q storage.Queries) (string, error) {
	for i := 0; i < inviteAttempts; i++ {
		code, err := newInviteCode()
		if err != nil {
			return "", err
		}
		_, err = q.GetGroupByInviteCode(ctx, code)
		if errors.Is(err, apperr.ErrNotFound) {
			return code, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", errors.New("could not find an unused invite code")
}

// CreateGroup creates a group owned by the caller, together with its
// Hangout channel.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Msg.Name)
	slog.Info("CreateGroup request received", "name", name, "user_id", user.ID)
	if name == "" {
		return nil, fail("CreateGroup", apperr.Invalid("group name cannot be empty"))
	}

	group := &models.Group{
		Name:                name,
		CreatedBy:           user.ID,
		HallOfFameThreshold: models.DefaultHallOfFameThreshold,
		SenpaiEnabled:       true,
		SenpaiFrequency:     models.FrequencyNormal,
	}
	var hangout *models.Channel
	err = s.store.RunInTx(ctx, func(q storage.Queries) error {
		code, err := uniqueInviteCode(ctx, q)
		if err != nil {
			return err
		}
		group.InviteCode = code
		if err := q.CreateGroup(ctx, group); err != nil {
			return err
		}
		if err := q.CreateMembership(ctx, &models.Membership{
			GroupID: group.ID,
			UserID:  user.ID,
			Role:    models.RoleOwner,
		}); err != nil {
			return err
		}
		hangout = &models.Channel{
			GroupID:   group.ID,
			Name:      hangoutName,
			Icon:      hangoutIcon,
			Type:      models.ChannelHangout,
			CreatedBy: user.ID,
		}
		return q.CreateChannel(ctx, hangout)
	})
	if err != nil {
		return nil, fail("CreateGroup", err)
	}

	slog.Info("Group created", "group_id", group.ID, "invite_code", group.InviteCode)
	return connect.NewResponse(&api.CreateGroupResponse{
		Group:   toAPIGroup(group),
		Hangout: toAPIChannel(hangout),
	}), nil
}

// JoinGroup adds the caller to the group with the given invite code.
// Joining a group twice is a no-op.
func (s *GroupService) JoinGroup(ctx context.Context, req *connect.Request[api.JoinGroupRequest]) (*connect.Response[api.GroupResponse], error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	code := strings.ToUpper(strings.TrimSpace(req.Msg.InviteCode))
	slog.Info("JoinGroup request received", "invite_code", code, "user_id", user.ID)

	var group *models.Group
	err = s.store.RunInTx(ctx, func(q storage.Queries) error {
		g, err := q.GetGroupByInviteCode(ctx, code)
		if err != nil {
			return err
		}
		group = g
		_, err = q.GetMembership(ctx, g.ID, user.ID)
		if err == nil {
			return nil
		}
		if !errors.Is(err, apperr.ErrNotFound) {
			return err
		}
		return q.CreateMembership(ctx, &models.Membership{
			GroupID: g.ID,
			UserID:  user.ID,
			Role:    models.RoleMember,
		})
	})
	if err != nil {
		return nil, fail("JoinGroup", err, "invite_code", code)
	}

	return connect.NewResponse(&api.GroupResponse{Group: toAPIGroup(group)}), nil
}

// GetGroup returns a group and its members.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GroupResponse], error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	groupID := req.Msg.GroupID
	slog.Info("GetGroup request received", "group_id", groupID)

	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, fail("GetGroup", err, "group_id", groupID)
	}
	if _, err := authz.Require(ctx, s.store, groupID, user.ID, models.RoleMember); err != nil {
		return nil, fail("GetGroup", err, "group_id", groupID)
	}
	members, err := s.store.ListMembers(ctx, groupID)
	if err != nil {
		return nil, fail("GetGroup", err, "group_id", groupID)
	}

	return connect.NewResponse(&api.GroupResponse{
		Group:   toAPIGroup(group),
		Members: toAPIMembers(members),
	}), nil
}

// ListGroups returns the caller's groups, newest first.
func (s *GroupService) ListGroups(ctx context.Context, _ *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	groups, err := s.store.ListGroupsForUser(ctx, user.ID)
	if err != nil {
		return nil, fail("ListGroups", err)
	}

	out := make([]*api.Group, len(groups))
	for i, g := range groups {
		out[i] = toAPIGroup(g)
	}
	slog.Info("ListGroups successful", "user_id", user.ID, "count", len(out))
	return connect.NewResponse(&api.ListGroupsResponse{Groups: out}), nil
}

// UpdateHallOfFameThreshold sets the trophy count needed for enshrinement.
func (s *GroupService) UpdateHallOfFameThreshold(ctx context.Context, req *connect.Request[api.UpdateHallOfFameThresholdRequest]) (*connect.Response[api.GroupResponse], error) {
	if req.Msg.Threshold < 1 {
		return nil, fail("UpdateHallOfFameThreshold", apperr.Invalid("threshold must be a positive integer"))
	}
	return s.adminUpdate(ctx, "UpdateHallOfFameThreshold", req.Msg.GroupID, func(q storage.Queries) error {
		return q.UpdateHallOfFameThreshold(ctx, req.Msg.GroupID, req.Msg.Threshold)
	})
}

// UpdateSenpaiSettings changes the group's Senpai persona settings.
func (s *GroupService) UpdateSenpaiSettings(ctx context.Context, req *connect.Request[api.UpdateSenpaiSettingsRequest]) (*connect.Response[api.GroupResponse], error) {
	freq, err := models.ParseFrequency(req.Msg.Frequency)
	if err != nil {
		return nil, fail("UpdateSenpaiSettings", apperr.Invalid(err.Error()))
	}
	personality := strings.TrimSpace(req.Msg.Personality)
	return s.adminUpdate(ctx, "UpdateSenpaiSettings", req.Msg.GroupID, func(q storage.Queries) error {
		return q.UpdateSenpaiSettings(ctx, req.Msg.GroupID, req.Msg.Enabled, freq, personality)
	})
}

// adminUpdate runs update for an admin caller and returns the fresh group.
func (s *GroupService) adminUpdate(ctx context.Context, op, groupID string, update func(q storage.Queries) error) (*connect.Response[api.GroupResponse], error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info(op+" request received", "group_id", groupID, "user_id", user.ID)

	var group *models.Group
	err = s.store.RunInTx(ctx, func(q storage.Queries) error {
		if _, err := q.GetGroup(ctx, groupID); err != nil {
			return err
		}
		if _, err := authz.Require(ctx, q, groupID, user.ID, models.RoleAdmin); err != nil {
			return err
		}
		if err := update(q); err != nil {
			return err
		}
		g, err := q.GetGroup(ctx, groupID)
		group = g
		return err
	})
	if err != nil {
		return nil, fail(op, err, "group_id", groupID)
	}
	return connect.NewResponse(&api.GroupResponse{Group: toAPIGroup(group)}), nil
}

// UpdateMemberRole promotes or demotes a member. Owner only.
func (s *GroupService) UpdateMemberRole(ctx context.Context, req *connect.Request[api.UpdateMemberRoleRequest]) (*connect.Response[emptypb.Empty], error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	msg := req.Msg
	slog.Info("UpdateMemberRole request received", "group_id", msg.GroupID, "target", msg.UserID, "role", msg.Role)

	err = s.store.RunInTx(ctx, func(q storage.Queries) error {
		actor, target, err := actorAndTarget(ctx, q, msg.GroupID, user.ID, msg.UserID)
		if err != nil {
			return err
		}
		if err := authz.CanChangeRole(actor, target, models.Role(msg.Role)); err != nil {
			return err
		}
		return q.UpdateMembershipRole(ctx, msg.GroupID, msg.UserID, models.Role(msg.Role))
	})
	if err != nil {
		return nil, fail("UpdateMemberRole", err, "group_id", msg.GroupID)
	}
	return connect.NewResponse(&emptypb.Empty{}), nil
}

// RemoveMember removes another member from the group.
func (s *GroupService) RemoveMember(ctx context.Context, req *connect.Request[api.RemoveMemberRequest]) (*connect.Response[emptypb.Empty], error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	msg := req.Msg
	slog.Info("RemoveMember request received", "group_id", msg.GroupID, "target", msg.UserID)

	err = s.store.RunInTx(ctx, func(q storage.Queries) error {
		actor, target, err := actorAndTarget(ctx, q, msg.GroupID, user.ID, msg.UserID)
		if err != nil {
			return err
		}
		if err := authz.CanRemoveMember(actor, target); err != nil {
			return err
		}
		return q.DeleteMembership(ctx, msg.GroupID, msg.UserID)
	})
	if err != nil {
		return nil, fail("RemoveMember", err, "group_id", msg.GroupID)
	}
	return connect.NewResponse(&emptypb.Empty{}), nil
}

// LeaveGroup removes the caller from the group. The owner must transfer
// ownership first.
func (s *GroupService) LeaveGroup(ctx context.Context, req *connect.Request[api.LeaveGroupRequest]) (*connect.Response[emptypb.Empty], error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	groupID := req.Msg.GroupID
	slog.Info("LeaveGroup request received", "group_id", groupID, "user_id", user.ID)

	err = s.store.RunInTx(ctx, func(q storage.Queries) error {
		m, err := authz.Require(ctx, q, groupID, user.ID, models.RoleMember)
		if err != nil {
			return err
		}
		if err := authz.CanLeave(m); err != nil {
			return err
		}
		return q.DeleteMembership(ctx, groupID, user.ID)
	})
	if err != nil {
		return nil, fail("LeaveGroup", err, "group_id", groupID)
	}
	return connect.NewResponse(&emptypb.Empty{}), nil
}

// TransferOwnership hands the group to another member. The previous owner
// becomes an admin.
func (s *GroupService) TransferOwnership(ctx context.Context, req *connect.Request[api.TransferOwnershipRequest]) (*connect.Response[emptypb.Empty], error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	msg := req.Msg
	slog.Info("TransferOwnership request received", "group_id", msg.GroupID, "new_owner", msg.NewOwnerID)

	err = s.store.RunInTx(ctx, func(q storage.Queries) error {
		actor, target, err := actorAndTarget(ctx, q, msg.GroupID, user.ID, msg.NewOwnerID)
		if err != nil {
			return err
		}
		if err := authz.CanTransferOwnership(actor, target); err != nil {
			return err
		}
		if err := q.UpdateMembershipRole(ctx, msg.GroupID, user.ID, models.RoleAdmin); err != nil {
			return err
		}
		return q.UpdateMembershipRole(ctx, msg.GroupID, msg.NewOwnerID, models.RoleOwner)
	})
	if err != nil {
		return nil, fail("TransferOwnership", err, "group_id", msg.GroupID)
	}
	slog.Info("Ownership transferred", "group_id", msg.GroupID, "from", user.ID, "to", msg.NewOwnerID)
	return connect.NewResponse(&emptypb.Empty{}), nil
}

// actorAndTarget loads the caller's and the target's memberships.
func actorAndTarget(ctx context.Context, q storage.Queries, groupID, actorID, targetID string) (*models.Membership, *models.Membership, error) {
	actor, err := authz.Require(ctx, q, groupID, actorID, models.RoleMember)
	if err != nil {
		return nil, nil, err
	}
	target, err := q.GetMembership(ctx, groupID, targetID)
	if err != nil {
		return nil, nil, err
	}
	return actor, target, nil
}
