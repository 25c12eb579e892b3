// Package authz enforces group roles: owner > admin > member.
//
// Require resolves the caller's membership and checks its rank. The Can*
// functions layer the management rules on top of plain rank comparison.
package authz

import (
	"context"
	"errors"
	"fmt"

	"github.com/mmynk/crewchat/internal/apperr"
	"github.com/mmynk/crewchat/internal/models"
)

// ErrNotMember is returned when the caller has no membership in the group.
var ErrNotMember = fmt.Errorf("%w: not a member of this group", apperr.ErrPermissionDenied)

// MembershipGetter is implemented by storage.Queries.
type MembershipGetter interface {
	GetMembership(ctx context.Context, groupID, userID string) (*models.Membership, error)
}

// Require returns the caller's membership if its role ranks at least min.
func Require(ctx context.Context, q MembershipGetter, groupID, userID string, min models.Role) (*models.Membership, error) {
	m, err := q.GetMembership(ctx, groupID, userID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, ErrNotMember
	}
	if err != nil {
		return nil, err
	}
	if !m.Role.AtLeast(min) {
		return nil, apperr.Denied(fmt.Sprintf("requires %s role", min))
	}
	return m, nil
}

// CanRemoveMember checks the management path for removing target.
// Admins may remove plain members only; the owner may remove anyone else.
func CanRemoveMember(actor, target *models.Membership) error {
	if actor.UserID == target.UserID {
		return apperr.Denied("cannot remove yourself, leave the group instead")
	}
	if !actor.Role.AtLeast(models.RoleAdmin) {
		return apperr.Denied("requires admin role")
	}
	if target.Role == models.RoleOwner {
		return apperr.Denied("cannot remove the owner")
	}
	if actor.Role == models.RoleAdmin && target.Role != models.RoleMember {
		return apperr.Denied("admins can only remove members")
	}
	return nil
}

// CanChangeRole checks an owner-only role change. Ownership moves only
// through a transfer, so the new role must be admin or member.
func CanChangeRole(actor, target *models.Membership, role models.Role) error {
	if actor.Role != models.RoleOwner {
		return apperr.Denied("only the owner can change roles")
	}
	if actor.UserID == target.UserID {
		return apperr.Denied("cannot change your own role")
	}
	if role != models.RoleAdmin && role != models.RoleMember {
		return apperr.Invalid("role must be admin or member")
	}
	return nil
}

// CanTransferOwnership checks that actor owns the group and target is someone else.
func CanTransferOwnership(actor, target *models.Membership) error {
	if actor.Role != models.RoleOwner {
		return apperr.Denied("only the owner can transfer ownership")
	}
	if actor.UserID == target.UserID {
		return apperr.Invalid("already the owner")
	}
	return nil
}

// CanLeave rejects the owner; ownership must be transferred first.
func CanLeave(m *models.Membership) error {
	if m.Role == models.RoleOwner {
		return apperr.Denied("owner must transfer ownership before leaving")
	}
	return nil
}
