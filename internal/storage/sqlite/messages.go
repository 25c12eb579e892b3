package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/mmynk/crewchat/internal/apperr"
	"github.com/mmynk/crewchat/internal/models"
)

const messageColumns = `id, channel_id, author_id, body, created_at, edited_at, is_deleted,
	thread_parent_id, thread_reply_count, thread_last_reply_at, forked_to_channel_id,
	message_type, senpai_trigger`

// CreateMessage inserts a new message.
func (q *queries) CreateMessage(ctx context.Context, msg *models.Message) error {
	if msg.ID == "" {
		msg.ID = newID()
	}
	if msg.CreatedAt == 0 {
		msg.CreatedAt = models.NowMillis()
	}
	if msg.MessageType == "" {
		msg.MessageType = models.MessageText
	}

	query := `INSERT INTO messages (` + messageColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := q.db.ExecContext(ctx, query,
		msg.ID,
		msg.ChannelID,
		msg.AuthorID,
		msg.Body,
		msg.CreatedAt,
		nullableInt(msg.EditedAt),
		boolToInt(msg.IsDeleted),
		nullable(msg.ThreadParentID),
		msg.ThreadReplyCount,
		nullableInt(msg.ThreadLastReplyAt),
		nullable(msg.ForkedToChannelID),
		string(msg.MessageType),
		nullable(msg.SenpaiTrigger),
	)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

// GetMessage retrieves a message by ID, deleted or not.
func (q *queries) GetMessage(ctx context.Context, messageID string) (*models.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE id = ?`
	msg, err := scanMessage(q.db.QueryRowContext(ctx, query, messageID))
	if isNoRows(err) {
		return nil, apperr.NotFound("message", messageID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get message: %w", err)
	}
	return msg, nil
}

// ListTopLevelMessages returns live top-level messages older than the
// (before, beforeID) cursor, newest first. Rows sharing the cursor's
// timestamp are ordered by id, so a page boundary never skips them.
// A zero before means no cursor.
func (q *queries) ListTopLevelMessages(ctx context.Context, channelID string, before int64, beforeID string, limit int) ([]*models.Message, error) {
	query := `SELECT ` + messageColumns + `
		FROM messages
		WHERE channel_id = ?
			AND thread_parent_id IS NULL
			AND is_deleted = 0
			AND (? = 0 OR created_at < ? OR (created_at = ? AND id < ?))
		ORDER BY created_at DESC, id DESC
		LIMIT ?`
	return q.listMessages(ctx, query, channelID, before, before, before, beforeID, limit)
}

// likeEscaper escapes LIKE wildcards so search terms match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchMessages returns live messages in a channel, replies included, whose
// body contains term (case-insensitive for ASCII), newest first.
func (q *queries) SearchMessages(ctx context.Context, channelID, term string, limit int) ([]*models.Message, error) {
	if limit <= 0 {
		limit = -1
	}
	query := `SELECT ` + messageColumns + `
		FROM messages
		WHERE channel_id = ?
			AND is_deleted = 0
			AND body LIKE ? ESCAPE '\'
		ORDER BY created_at DESC, id DESC
		LIMIT ?`
	return q.listMessages(ctx, query, channelID, "%"+likeEscaper.Replace(term)+"%", limit)
}

// ListThread returns the live replies to a message, oldest first.
func (q *queries) ListThread(ctx context.Context, parentID string) ([]*models.Message, error) {
	query := `SELECT ` + messageColumns + `
		FROM messages
		WHERE thread_parent_id = ? AND is_deleted = 0
		ORDER BY created_at, id`
	return q.listMessages(ctx, query, parentID)
}

// ListRecentMessages returns the latest live messages of a channel, oldest first.
func (q *queries) ListRecentMessages(ctx context.Context, channelID string, limit int) ([]*models.Message, error) {
	query := `SELECT ` + messageColumns + `
		FROM messages
		WHERE channel_id = ? AND is_deleted = 0
		ORDER BY created_at DESC, id DESC
		LIMIT ?`
	msgs, err := q.listMessages(ctx, query, channelID, limit)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// UpdateMessageBody replaces the body and stamps the edit time.
func (q *queries) UpdateMessageBody(ctx context.Context, messageID, body string, editedAt int64) error {
	err := q.execOne(ctx, apperr.NotFound("message", messageID),
		`UPDATE messages SET body = ?, edited_at = ? WHERE id = ?`, body, editedAt, messageID)
	if err != nil {
		return fmt.Errorf("failed to update message: %w", err)
	}
	return nil
}

// SoftDeleteMessage flags a message deleted and clears its body.
func (q *queries) SoftDeleteMessage(ctx context.Context, messageID string) error {
	err := q.execOne(ctx, apperr.NotFound("message", messageID),
		`UPDATE messages SET is_deleted = 1, body = '' WHERE id = ?`, messageID)
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}

// SetForkedTo records the channel a message was forked into.
func (q *queries) SetForkedTo(ctx context.Context, messageID, channelID string) error {
	err := q.execOne(ctx, apperr.NotFound("message", messageID),
		`UPDATE messages SET forked_to_channel_id = ? WHERE id = ?`, channelID, messageID)
	if err != nil {
		return fmt.Errorf("failed to set forked channel: %w", err)
	}
	return nil
}

// AdjustThreadReplyCount moves the reply counter by delta, never below zero.
// A non-zero lastReplyAt also replaces the last reply time.
func (q *queries) AdjustThreadReplyCount(ctx context.Context, parentID string, delta int, lastReplyAt int64) error {
	query := `
		UPDATE messages
		SET thread_reply_count = MAX(thread_reply_count + ?, 0),
			thread_last_reply_at = COALESCE(?, thread_last_reply_at)
		WHERE id = ?
	`
	err := q.execOne(ctx, apperr.NotFound("message", parentID), query, delta, nullableInt(lastReplyAt), parentID)
	if err != nil {
		return fmt.Errorf("failed to adjust thread reply count: %w", err)
	}
	return nil
}

// SetThreadReplyCount overwrites the reply counter.
func (q *queries) SetThreadReplyCount(ctx context.Context, parentID string, count int) error {
	err := q.execOne(ctx, apperr.NotFound("message", parentID),
		`UPDATE messages SET thread_reply_count = ? WHERE id = ?`, count, parentID)
	if err != nil {
		return fmt.Errorf("failed to set thread reply count: %w", err)
	}
	return nil
}

// CountLiveReplies counts the non-deleted replies to a message.
func (q *queries) CountLiveReplies(ctx context.Context, parentID string) (int, error) {
	var n int
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM messages WHERE thread_parent_id = ? AND is_deleted = 0`, parentID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count replies: %w", err)
	}
	return n, nil
}

func (q *queries) listMessages(ctx context.Context, query string, args ...any) ([]*models.Message, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var msgs []*models.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msgs = append(msgs, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}
	return msgs, nil
}

func scanMessage(row rowScanner) (*models.Message, error) {
	msg := &models.Message{}
	var (
		deleted                         int
		editedAt, lastReplyAt           sql.NullInt64
		threadParent, forkedTo, trigger sql.NullString
		messageType                     string
	)
	if err := row.Scan(
		&msg.ID, &msg.ChannelID, &msg.AuthorID, &msg.Body, &msg.CreatedAt, &editedAt, &deleted,
		&threadParent, &msg.ThreadReplyCount, &lastReplyAt, &forkedTo,
		&messageType, &trigger,
	); err != nil {
		return nil, err
	}
	msg.EditedAt = editedAt.Int64
	msg.IsDeleted = deleted != 0
	msg.ThreadParentID = threadParent.String
	msg.ThreadLastReplyAt = lastReplyAt.Int64
	msg.ForkedToChannelID = forkedTo.String
	msg.MessageType = models.MessageType(messageType)
	msg.SenpaiTrigger = trigger.String
	return msg, nil
}
