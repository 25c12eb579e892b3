package models

const (
	// PinEmoji pins the message it is added to.
	PinEmoji = "📌"

	// TrophyEmoji counts toward Hall of Fame enshrinement.
	TrophyEmoji = "🏆"
)

// Reaction is one user's emoji on one message.
// (MessageID, UserID, Emoji) is unique.
type Reaction struct {
	ID        string
	MessageID string
	UserID    string
	Emoji     string
	CreatedAt int64
}

// Pin marks a message as pinned in its channel.
type Pin struct {
	ID        string
	ChannelID string
	MessageID string
	PinnedBy  string
	PinnedAt  int64
}

// HallOfFameEntry is a snapshot of an enshrined message.
// A message is enshrined at most once per group.
type HallOfFameEntry struct {
	ID          string
	GroupID     string
	MessageID   string
	ChannelID   string
	AuthorID    string
	Body        string
	TrophyCount int
	EnshrinedAt int64
}
