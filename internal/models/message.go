package models

// MessageType distinguishes user text from generated messages.
type MessageType string

const (
	MessageText          MessageType = "text"
	MessageSystem        MessageType = "system"
	MessageSenpai        MessageType = "senpai"
	MessageBracketResult MessageType = "bracket_result"
	MessageGameScore     MessageType = "game_score"
	MessageSplitRequest  MessageType = "split_request"
)

// Message is a single post in a channel, optionally a thread reply.
type Message struct {
	ID        string
	ChannelID string
	AuthorID  string
	Body      string
	CreatedAt int64
	EditedAt  int64
	IsDeleted bool

	// ThreadParentID is set on replies.
	ThreadParentID string

	// ThreadReplyCount is the number of live replies pointing at this
	// message. It is adjusted in the same transaction as every reply insert
	// or delete and reconciled against the rows when a thread is listed.
	ThreadReplyCount  int
	ThreadLastReplyAt int64

	ForkedToChannelID string
	MessageType       MessageType

	// SenpaiTrigger records which trigger produced a senpai message.
	SenpaiTrigger string
}
