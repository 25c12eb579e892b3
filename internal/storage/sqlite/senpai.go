package sqlite

import (
	"context"
	"fmt"

	"github.com/mmynk/crewchat/internal/models"
)

// CreateMemory stores a persona memory.
func (q *queries) CreateMemory(ctx context.Context, m *models.SenpaiMemory) error {
	if m.ID == "" {
		m.ID = newID()
	}
	if m.CreatedAt == 0 {
		m.CreatedAt = models.NowMillis()
	}
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO senpai_memory (id, group_id, memory_type, content, created_at, relevance_score)
		VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, m.GroupID, string(m.MemoryType), m.Content, m.CreatedAt, m.RelevanceScore,
	)
	if err != nil {
		return fmt.Errorf("failed to create memory: %w", err)
	}
	return nil
}

// ListMemories returns a group's memories, most relevant first.
func (q *queries) ListMemories(ctx context.Context, groupID string, limit int) ([]*models.SenpaiMemory, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, group_id, memory_type, content, created_at, relevance_score
		FROM senpai_memory
		WHERE group_id = ?
		ORDER BY relevance_score DESC, created_at DESC
		LIMIT ?`, groupID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list memories: %w", err)
	}
	defer rows.Close()

	var memories []*models.SenpaiMemory
	for rows.Next() {
		m := &models.SenpaiMemory{}
		var memoryType string
		if err := rows.Scan(&m.ID, &m.GroupID, &memoryType, &m.Content, &m.CreatedAt, &m.RelevanceScore); err != nil {
			return nil, fmt.Errorf("failed to scan memory: %w", err)
		}
		m.MemoryType = models.MemoryType(memoryType)
		memories = append(memories, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating memories: %w", err)
	}
	return memories, nil
}
