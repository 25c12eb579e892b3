package sqlite

import (
	"context"
	"fmt"

	"github.com/mmynk/crewchat/internal/apperr"
	"github.com/mmynk/crewchat/internal/models"
)

const userColumns = `id, subject, email, display_name, username, password_hash, created_at`

// CreateUser inserts a new user into the database.
func (q *queries) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = newID()
	}
	if user.Subject == "" {
		user.Subject = "local|" + user.ID
	}
	if user.CreatedAt == 0 {
		user.CreatedAt = models.NowMillis()
	}

	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := q.db.ExecContext(ctx, query,
		user.ID,
		user.Subject,
		user.Email,
		user.DisplayName,
		user.Username,
		user.PasswordHash,
		user.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByID retrieves a user by their ID.
func (q *queries) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return q.getUser(ctx, "id", id)
}

// GetUserBySubject retrieves a user by the identity-provider subject.
func (q *queries) GetUserBySubject(ctx context.Context, subject string) (*models.User, error) {
	return q.getUser(ctx, "subject", subject)
}

// GetUserByEmail retrieves a user by their email address.
func (q *queries) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return q.getUser(ctx, "email", email)
}

// UpdateUserProfile changes a user's display name and username.
func (q *queries) UpdateUserProfile(ctx context.Context, userID, displayName, username string) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE users SET display_name = ?, username = ? WHERE id = ?`,
		displayName, username, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user profile: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update user profile: %w", err)
	}
	if n == 0 {
		return apperr.NotFound("user", userID)
	}
	return nil
}

// getUser looks a user up by one unique column. column is never user input.
func (q *queries) getUser(ctx context.Context, column, value string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + column + ` = ?`

	user := &models.User{}
	err := q.db.QueryRowContext(ctx, query, value).Scan(
		&user.ID,
		&user.Subject,
		&user.Email,
		&user.DisplayName,
		&user.Username,
		&user.PasswordHash,
		&user.CreatedAt,
	)

	if isNoRows(err) {
		return nil, apperr.NotFound("user", value)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by %s: %w", column, err)
	}

	return user, nil
}
