package models

import "fmt"

// ChannelType is fixed when a channel is created.
type ChannelType string

const (
	ChannelHangout ChannelType = "hangout"
	ChannelEvent   ChannelType = "event"
	ChannelBracket ChannelType = "bracket"
)

// BracketNominating is the status of a freshly created bracket channel.
const BracketNominating = "nominating"

// ParseChannelType validates a channel type.
func ParseChannelType(s string) (ChannelType, error) {
	switch t := ChannelType(s); t {
	case ChannelHangout, ChannelEvent, ChannelBracket:
		return t, nil
	}
	return "", fmt.Errorf("unknown channel type %q", s)
}

// SortOrder places hangouts first, then events, then brackets.
func (t ChannelType) SortOrder() int {
	switch t {
	case ChannelHangout:
		return 0
	case ChannelEvent:
		return 1
	case ChannelBracket:
		return 2
	default:
		return 99
	}
}

// Channel is a conversation space inside a group.
type Channel struct {
	ID        string
	GroupID   string
	Name      string
	Icon      string
	Type      ChannelType
	CreatedBy string
	CreatedAt int64

	// ParentChannelID and ParentMessageID are set when the channel was
	// forked from a message. ForkDepth counts fork generations.
	ParentChannelID string
	ParentMessageID string
	ForkDepth       int

	IsArchived bool
	ArchivedAt int64

	// Event channels only.
	EventDate     int64
	EventEndDate  int64
	EventLocation string

	// Bracket channels only.
	BracketQuestion string
	BracketStatus   string
}
