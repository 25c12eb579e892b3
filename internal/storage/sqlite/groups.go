package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mmynk/crewchat/internal/apperr"
	"github.com/mmynk/crewchat/internal/models"
)

const groupColumns = `g.id, g.name, g.created_by, g.created_at, g.invite_code,
	g.hall_of_fame_threshold, g.senpai_enabled, g.senpai_frequency, g.senpai_personality`

// CreateGroup inserts a new group. Memberships and channels are created separately.
func (q *queries) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = newID()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = models.NowMillis()
	}
	if group.SenpaiFrequency == "" {
		group.SenpaiFrequency = models.FrequencyNormal
	}

	query := `
		INSERT INTO groups (id, name, created_by, created_at, invite_code,
			hall_of_fame_threshold, senpai_enabled, senpai_frequency, senpai_personality)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := q.db.ExecContext(ctx, query,
		group.ID,
		group.Name,
		group.CreatedBy,
		group.CreatedAt,
		group.InviteCode,
		nullableInt(int64(group.HallOfFameThreshold)),
		boolToInt(group.SenpaiEnabled),
		string(group.SenpaiFrequency),
		nullable(group.SenpaiPersonality),
	)
	if err != nil {
		return fmt.Errorf("failed to create group: %w", err)
	}

	return nil
}

// GetGroup retrieves a group by ID.
func (q *queries) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM groups g WHERE g.id = ?`
	group, err := scanGroup(q.db.QueryRowContext(ctx, query, groupID))
	if isNoRows(err) {
		return nil, apperr.NotFound("group", groupID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	return group, nil
}

// GetGroupByInviteCode retrieves a group by its invite code.
func (q *queries) GetGroupByInviteCode(ctx context.Context, code string) (*models.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM groups g WHERE g.invite_code = ?`
	group, err := scanGroup(q.db.QueryRowContext(ctx, query, code))
	if isNoRows(err) {
		return nil, apperr.NotFound("invite code", code)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group by invite code: %w", err)
	}
	return group, nil
}

// ListGroupsForUser returns the groups the user belongs to, newest first.
func (q *queries) ListGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error) {
	query := `
		SELECT ` + groupColumns + `
		FROM groups g
		JOIN group_members m ON m.group_id = g.id
		WHERE m.user_id = ?
		ORDER BY g.created_at DESC
	`
	return q.listGroups(ctx, query, userID)
}

// ListSenpaiEnabledGroups returns every group with the persona switched on.
func (q *queries) ListSenpaiEnabledGroups(ctx context.Context) ([]*models.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM groups g WHERE g.senpai_enabled = 1 ORDER BY g.created_at`
	return q.listGroups(ctx, query)
}

func (q *queries) listGroups(ctx context.Context, query string, args ...any) ([]*models.Group, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []*models.Group
	for rows.Next() {
		group, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating groups: %w", err)
	}
	return groups, nil
}

// UpdateHallOfFameThreshold sets the trophy threshold for a group.
func (q *queries) UpdateHallOfFameThreshold(ctx context.Context, groupID string, threshold int) error {
	err := q.execOne(ctx, apperr.NotFound("group", groupID),
		`UPDATE groups SET hall_of_fame_threshold = ? WHERE id = ?`, threshold, groupID)
	if err != nil {
		return fmt.Errorf("failed to update hall of fame threshold: %w", err)
	}
	return nil
}

// UpdateSenpaiSettings replaces the persona settings of a group.
func (q *queries) UpdateSenpaiSettings(ctx context.Context, groupID string, enabled bool, frequency models.Frequency, personality string) error {
	query := `
		UPDATE groups
		SET senpai_enabled = ?, senpai_frequency = ?, senpai_personality = ?
		WHERE id = ?
	`
	err := q.execOne(ctx, apperr.NotFound("group", groupID), query,
		boolToInt(enabled), string(frequency), nullable(personality), groupID)
	if err != nil {
		return fmt.Errorf("failed to update senpai settings: %w", err)
	}
	return nil
}

// CreateMembership adds a user to a group.
func (q *queries) CreateMembership(ctx context.Context, m *models.Membership) error {
	now := models.NowMillis()
	if m.JoinedAt == 0 {
		m.JoinedAt = now
	}
	if m.LastActiveAt == 0 {
		m.LastActiveAt = m.JoinedAt
	}

	query := `
		INSERT INTO group_members (group_id, user_id, role, joined_at, last_active_at)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := q.db.ExecContext(ctx, query, m.GroupID, m.UserID, string(m.Role), m.JoinedAt, m.LastActiveAt)
	if err != nil {
		return fmt.Errorf("failed to create membership: %w", err)
	}
	return nil
}

// GetMembership returns the membership of a user in a group.
func (q *queries) GetMembership(ctx context.Context, groupID, userID string) (*models.Membership, error) {
	query := `
		SELECT group_id, user_id, role, joined_at, last_active_at
		FROM group_members
		WHERE group_id = ? AND user_id = ?
	`
	m := &models.Membership{}
	var role string
	err := q.db.QueryRowContext(ctx, query, groupID, userID).Scan(
		&m.GroupID, &m.UserID, &role, &m.JoinedAt, &m.LastActiveAt,
	)
	if isNoRows(err) {
		return nil, apperr.NotFound("membership", groupID+"/"+userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	m.Role = models.Role(role)
	return m, nil
}

// ListMembers returns the members of a group with their display names,
// ordered by role rank then join time.
func (q *queries) ListMembers(ctx context.Context, groupID string) ([]*models.Member, error) {
	query := `
		SELECT m.group_id, m.user_id, m.role, m.joined_at, m.last_active_at,
			u.display_name, u.username
		FROM group_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.group_id = ?
		ORDER BY CASE m.role WHEN 'owner' THEN 0 WHEN 'admin' THEN 1 ELSE 2 END, m.joined_at
	`
	rows, err := q.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []*models.Member
	for rows.Next() {
		member := &models.Member{}
		var role string
		if err := rows.Scan(
			&member.GroupID, &member.UserID, &role, &member.JoinedAt, &member.LastActiveAt,
			&member.DisplayName, &member.Username,
		); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		member.Role = models.Role(role)
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating members: %w", err)
	}
	return members, nil
}

// UpdateMembershipRole changes a member's role.
func (q *queries) UpdateMembershipRole(ctx context.Context, groupID, userID string, role models.Role) error {
	err := q.execOne(ctx, apperr.NotFound("membership", groupID+"/"+userID),
		`UPDATE group_members SET role = ? WHERE group_id = ? AND user_id = ?`,
		string(role), groupID, userID)
	if err != nil {
		return fmt.Errorf("failed to update membership role: %w", err)
	}
	return nil
}

// DeleteMembership removes a user from a group.
func (q *queries) DeleteMembership(ctx context.Context, groupID, userID string) error {
	err := q.execOne(ctx, apperr.NotFound("membership", groupID+"/"+userID),
		`DELETE FROM group_members WHERE group_id = ? AND user_id = ?`, groupID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete membership: %w", err)
	}
	return nil
}

// rowScanner is implemented by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanGroup(row rowScanner) (*models.Group, error) {
	g := &models.Group{}
	var (
		threshold   sql.NullInt64
		enabled     int
		frequency   string
		personality sql.NullString
	)
	if err := row.Scan(
		&g.ID, &g.Name, &g.CreatedBy, &g.CreatedAt, &g.InviteCode,
		&threshold, &enabled, &frequency, &personality,
	); err != nil {
		return nil, err
	}
	g.HallOfFameThreshold = int(threshold.Int64)
	g.SenpaiEnabled = enabled != 0
	g.SenpaiFrequency = models.Frequency(frequency)
	g.SenpaiPersonality = personality.String
	return g, nil
}
