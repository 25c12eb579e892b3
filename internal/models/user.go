package models

import "github.com/google/uuid"

// User represents a registered user account.
type User struct {
	// ID is the internal identifier (UUID format).
	ID string

	// Subject is the opaque identifier issued by the identity provider.
	// Authenticated requests carry it; the core resolves it to this record.
	Subject string

	// Email is the login address (unique).
	Email string

	// DisplayName is shown next to messages.
	DisplayName string

	// Username is the handle used for mentions.
	Username string

	// PasswordHash is the bcrypt hash for local password login.
	PasswordHash string

	// CreatedAt is the epoch-millisecond creation time.
	CreatedAt int64
}

// NewUser creates a user with a fresh ID and subject.
func NewUser(email, displayName, passwordHash string) *User {
	id := uuid.New().String()
	return &User{
		ID:           id,
		Subject:      "local|" + id,
		Email:        email,
		DisplayName:  displayName,
		Username:     email,
		PasswordHash: passwordHash,
		CreatedAt:    NowMillis(),
	}
}
