package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/mmynk/crewchat/internal/apperr"
	"github.com/mmynk/crewchat/internal/models"
)

const channelColumns = `id, group_id, name, icon, type, created_by, created_at,
	parent_channel_id, parent_message_id, fork_depth, is_archived, archived_at,
	event_date, event_end_date, event_location, bracket_question, bracket_status`

// CreateChannel inserts a new channel.
func (q *queries) CreateChannel(ctx context.Context, ch *models.Channel) error {
	if ch.ID == "" {
		ch.ID = newID()
	}
	if ch.CreatedAt == 0 {
		ch.CreatedAt = models.NowMillis()
	}

	query := `INSERT INTO channels (` + channelColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := q.db.ExecContext(ctx, query,
		ch.ID,
		ch.GroupID,
		ch.Name,
		nullable(ch.Icon),
		string(ch.Type),
		ch.CreatedBy,
		ch.CreatedAt,
		nullable(ch.ParentChannelID),
		nullable(ch.ParentMessageID),
		ch.ForkDepth,
		boolToInt(ch.IsArchived),
		nullableInt(ch.ArchivedAt),
		nullableInt(ch.EventDate),
		nullableInt(ch.EventEndDate),
		nullable(ch.EventLocation),
		nullable(ch.BracketQuestion),
		nullable(ch.BracketStatus),
	)
	if err != nil {
		return fmt.Errorf("failed to create channel: %w", err)
	}
	return nil
}

// GetChannel retrieves a channel by ID.
func (q *queries) GetChannel(ctx context.Context, channelID string) (*models.Channel, error) {
	query := `SELECT ` + channelColumns + ` FROM channels WHERE id = ?`
	ch, err := scanChannel(q.db.QueryRowContext(ctx, query, channelID))
	if isNoRows(err) {
		return nil, apperr.NotFound("channel", channelID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get channel: %w", err)
	}
	return ch, nil
}

// ListChannelsByGroup returns a group's channels: hangouts first, then
// events, then brackets, each by creation time.
func (q *queries) ListChannelsByGroup(ctx context.Context, groupID string) ([]*models.Channel, error) {
	query := `SELECT ` + channelColumns + ` FROM channels WHERE group_id = ? ORDER BY created_at`
	channels, err := q.listChannels(ctx, query, groupID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(channels, func(i, j int) bool {
		return channels[i].Type.SortOrder() < channels[j].Type.SortOrder()
	})
	return channels, nil
}

// GetHangoutChannel returns the oldest hangout channel of a group.
func (q *queries) GetHangoutChannel(ctx context.Context, groupID string) (*models.Channel, error) {
	query := `SELECT ` + channelColumns + `
		FROM channels
		WHERE group_id = ? AND type = 'hangout'
		ORDER BY created_at
		LIMIT 1`
	ch, err := scanChannel(q.db.QueryRowContext(ctx, query, groupID))
	if isNoRows(err) {
		return nil, apperr.NotFound("hangout channel for group", groupID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get hangout channel: %w", err)
	}
	return ch, nil
}

// UpdateChannel replaces a channel's name and icon.
func (q *queries) UpdateChannel(ctx context.Context, channelID, name, icon string) error {
	err := q.execOne(ctx, apperr.NotFound("channel", channelID),
		`UPDATE channels SET name = ?, icon = ? WHERE id = ?`, name, nullable(icon), channelID)
	if err != nil {
		return fmt.Errorf("failed to update channel: %w", err)
	}
	return nil
}

// ArchiveChannel marks a channel archived.
func (q *queries) ArchiveChannel(ctx context.Context, channelID string, at int64) error {
	err := q.execOne(ctx, apperr.NotFound("channel", channelID),
		`UPDATE channels SET is_archived = 1, archived_at = ? WHERE id = ?`, at, channelID)
	if err != nil {
		return fmt.Errorf("failed to archive channel: %w", err)
	}
	return nil
}

// ListEndedEventChannels returns live event channels whose end date, or
// start date when there is no end date, is before the cutoff.
func (q *queries) ListEndedEventChannels(ctx context.Context, before int64) ([]*models.Channel, error) {
	query := `SELECT ` + channelColumns + `
		FROM channels
		WHERE type = 'event'
			AND is_archived = 0
			AND COALESCE(event_end_date, event_date) IS NOT NULL
			AND COALESCE(event_end_date, event_date) < ?
		ORDER BY created_at`
	return q.listChannels(ctx, query, before)
}

func (q *queries) listChannels(ctx context.Context, query string, args ...any) ([]*models.Channel, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}
	defer rows.Close()

	var channels []*models.Channel
	for rows.Next() {
		ch, err := scanChannel(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan channel: %w", err)
		}
		channels = append(channels, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating channels: %w", err)
	}
	return channels, nil
}

func scanChannel(row rowScanner) (*models.Channel, error) {
	ch := &models.Channel{}
	var (
		chType                                       string
		icon, parentChannel, parentMessage, location sql.NullString
		bracketQuestion, bracketStatus               sql.NullString
		archived                                     int
		archivedAt, eventDate, eventEndDate          sql.NullInt64
	)
	if err := row.Scan(
		&ch.ID, &ch.GroupID, &ch.Name, &icon, &chType, &ch.CreatedBy, &ch.CreatedAt,
		&parentChannel, &parentMessage, &ch.ForkDepth, &archived, &archivedAt,
		&eventDate, &eventEndDate, &location, &bracketQuestion, &bracketStatus,
	); err != nil {
		return nil, err
	}
	ch.Icon = icon.String
	ch.Type = models.ChannelType(chType)
	ch.ParentChannelID = parentChannel.String
	ch.ParentMessageID = parentMessage.String
	ch.IsArchived = archived != 0
	ch.ArchivedAt = archivedAt.Int64
	ch.EventDate = eventDate.Int64
	ch.EventEndDate = eventEndDate.Int64
	ch.EventLocation = location.String
	ch.BracketQuestion = bracketQuestion.String
	ch.BracketStatus = bracketStatus.String
	return ch, nil
}
