package sqlite

import (
	"context"
	"fmt"

	"github.com/mmynk/crewchat/internal/models"
)

// HasReaction reports whether the user already reacted with the emoji.
func (q *queries) HasReaction(ctx context.Context, messageID, userID, emoji string) (bool, error) {
	var exists bool
	err := q.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM reactions WHERE message_id = ? AND user_id = ? AND emoji = ?)`,
		messageID, userID, emoji,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check reaction: %w", err)
	}
	return exists, nil
}

// CreateReaction inserts a reaction.
func (q *queries) CreateReaction(ctx context.Context, r *models.Reaction) error {
	if r.ID == "" {
		r.ID = newID()
	}
	if r.CreatedAt == 0 {
		r.CreatedAt = models.NowMillis()
	}
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO reactions (id, message_id, user_id, emoji, created_at) VALUES (?, ?, ?, ?, ?)`,
		r.ID, r.MessageID, r.UserID, r.Emoji, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create reaction: %w", err)
	}
	return nil
}

// DeleteReaction removes a reaction and reports whether one existed.
func (q *queries) DeleteReaction(ctx context.Context, messageID, userID, emoji string) (bool, error) {
	res, err := q.db.ExecContext(ctx,
		`DELETE FROM reactions WHERE message_id = ? AND user_id = ? AND emoji = ?`,
		messageID, userID, emoji,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete reaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete reaction: %w", err)
	}
	return n > 0, nil
}

// ListReactionsByMessage returns a message's reactions in insertion order.
func (q *queries) ListReactionsByMessage(ctx context.Context, messageID string) ([]*models.Reaction, error) {
	return q.listReactions(ctx,
		`SELECT id, message_id, user_id, emoji, created_at FROM reactions
		WHERE message_id = ? ORDER BY created_at, rowid`, messageID)
}

// ListReactionsByMessageEmoji returns one emoji's reactions on a message.
func (q *queries) ListReactionsByMessageEmoji(ctx context.Context, messageID, emoji string) ([]*models.Reaction, error) {
	return q.listReactions(ctx,
		`SELECT id, message_id, user_id, emoji, created_at FROM reactions
		WHERE message_id = ? AND emoji = ? ORDER BY created_at, rowid`, messageID, emoji)
}

func (q *queries) listReactions(ctx context.Context, query string, args ...any) ([]*models.Reaction, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reactions: %w", err)
	}
	defer rows.Close()

	var reactions []*models.Reaction
	for rows.Next() {
		r := &models.Reaction{}
		if err := rows.Scan(&r.ID, &r.MessageID, &r.UserID, &r.Emoji, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan reaction: %w", err)
		}
		reactions = append(reactions, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reactions: %w", err)
	}
	return reactions, nil
}

// CreatePin pins a message. It reports false when the message was already
// pinned, in which case the existing pin is kept.
func (q *queries) CreatePin(ctx context.Context, pin *models.Pin) (bool, error) {
	if pin.ID == "" {
		pin.ID = newID()
	}
	if pin.PinnedAt == 0 {
		pin.PinnedAt = models.NowMillis()
	}
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO pins (id, channel_id, message_id, pinned_by, pinned_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (channel_id, message_id) DO NOTHING`,
		pin.ID, pin.ChannelID, pin.MessageID, pin.PinnedBy, pin.PinnedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to create pin: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to create pin: %w", err)
	}
	return n > 0, nil
}

// ListPinsByChannel returns a channel's pins, most recent first.
func (q *queries) ListPinsByChannel(ctx context.Context, channelID string) ([]*models.Pin, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, channel_id, message_id, pinned_by, pinned_at
		FROM pins WHERE channel_id = ? ORDER BY pinned_at DESC`, channelID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pins: %w", err)
	}
	defer rows.Close()

	var pins []*models.Pin
	for rows.Next() {
		p := &models.Pin{}
		if err := rows.Scan(&p.ID, &p.ChannelID, &p.MessageID, &p.PinnedBy, &p.PinnedAt); err != nil {
			return nil, fmt.Errorf("failed to scan pin: %w", err)
		}
		pins = append(pins, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pins: %w", err)
	}
	return pins, nil
}

// HasHallOfFameEntry reports whether a message is already enshrined in the group.
func (q *queries) HasHallOfFameEntry(ctx context.Context, groupID, messageID string) (bool, error) {
	var exists bool
	err := q.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM hall_of_fame WHERE group_id = ? AND message_id = ?)`,
		groupID, messageID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check hall of fame: %w", err)
	}
	return exists, nil
}

// CreateHallOfFameEntry enshrines a message snapshot.
func (q *queries) CreateHallOfFameEntry(ctx context.Context, e *models.HallOfFameEntry) error {
	if e.ID == "" {
		e.ID = newID()
	}
	if e.EnshrinedAt == 0 {
		e.EnshrinedAt = models.NowMillis()
	}
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO hall_of_fame (id, group_id, message_id, channel_id, author_id, body, trophy_count, enshrined_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.GroupID, e.MessageID, e.ChannelID, e.AuthorID, e.Body, e.TrophyCount, e.EnshrinedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create hall of fame entry: %w", err)
	}
	return nil
}

// ListHallOfFame returns a group's entries, most recent first.
// A limit of zero or less returns all of them.
func (q *queries) ListHallOfFame(ctx context.Context, groupID string, limit int) ([]*models.HallOfFameEntry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, group_id, message_id, channel_id, author_id, body, trophy_count, enshrined_at
		FROM hall_of_fame WHERE group_id = ? ORDER BY enshrined_at DESC LIMIT ?`, groupID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list hall of fame: %w", err)
	}
	defer rows.Close()

	var entries []*models.HallOfFameEntry
	for rows.Next() {
		e := &models.HallOfFameEntry{}
		if err := rows.Scan(&e.ID, &e.GroupID, &e.MessageID, &e.ChannelID, &e.AuthorID,
			&e.Body, &e.TrophyCount, &e.EnshrinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan hall of fame entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating hall of fame: %w", err)
	}
	return entries, nil
}
