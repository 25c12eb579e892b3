// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/mmynk/crewchat/internal/models"
)

// Store defines the interface for crewchat storage.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
//
// Lookups that find nothing return an error wrapping apperr.ErrNotFound.
type Store interface {
	Queries

	// RunInTx executes fn as one atomic mutation. Writes made through q are
	// committed together when fn returns nil and discarded otherwise.
	// Concurrent mutations are serialized.
	RunInTx(ctx context.Context, fn func(q Queries) error) error

	// Close releases any resources held by the store.
	Close() error
}

// Queries is every read and write the services need. It is implemented both
// by the store itself (outside a transaction) and by the value handed to
// RunInTx callbacks.
type Queries interface {
	UserQueries
	GroupQueries
	ChannelQueries
	MessageQueries
	ReactionQueries
	SplitQueries
	EventQueries
	SenpaiQueries
}

// UserQueries covers user accounts.
type UserQueries interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserBySubject(ctx context.Context, subject string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUserProfile(ctx context.Context, userID, displayName, username string) error
}

// GroupQueries covers groups and memberships.
type GroupQueries interface {
	CreateGroup(ctx context.Context, group *models.Group) error
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)
	GetGroupByInviteCode(ctx context.Context, code string) (*models.Group, error)
	ListGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error)
	ListSenpaiEnabledGroups(ctx context.Context) ([]*models.Group, error)
	UpdateHallOfFameThreshold(ctx context.Context, groupID string, threshold int) error
	UpdateSenpaiSettings(ctx context.Context, groupID string, enabled bool, frequency models.Frequency, personality string) error

	CreateMembership(ctx context.Context, m *models.Membership) error
	GetMembership(ctx context.Context, groupID, userID string) (*models.Membership, error)
	ListMembers(ctx context.Context, groupID string) ([]*models.Member, error)
	UpdateMembershipRole(ctx context.Context, groupID, userID string, role models.Role) error
	DeleteMembership(ctx context.Context, groupID, userID string) error
}

// ChannelQueries covers channels.
type ChannelQueries interface {
	CreateChannel(ctx context.Context, channel *models.Channel) error
	GetChannel(ctx context.Context, channelID string) (*models.Channel, error)
	ListChannelsByGroup(ctx context.Context, groupID string) ([]*models.Channel, error)
	GetHangoutChannel(ctx context.Context, groupID string) (*models.Channel, error)
	UpdateChannel(ctx context.Context, channelID, name, icon string) error
	ArchiveChannel(ctx context.Context, channelID string, at int64) error
	ListEndedEventChannels(ctx context.Context, before int64) ([]*models.Channel, error)
}

// MessageQueries covers messages and thread counters.
type MessageQueries interface {
	CreateMessage(ctx context.Context, msg *models.Message) error
	GetMessage(ctx context.Context, messageID string) (*models.Message, error)
	// ListTopLevelMessages returns live top-level messages older than the
	// (before, beforeID) cursor, newest first. A zero before means now.
	ListTopLevelMessages(ctx context.Context, channelID string, before int64, beforeID string, limit int) ([]*models.Message, error)
	// SearchMessages returns live messages whose body contains term, newest first.
	SearchMessages(ctx context.Context, channelID, term string, limit int) ([]*models.Message, error)
	ListThread(ctx context.Context, parentID string) ([]*models.Message, error)
	// ListRecentMessages returns the latest live messages, oldest first.
	ListRecentMessages(ctx context.Context, channelID string, limit int) ([]*models.Message, error)
	UpdateMessageBody(ctx context.Context, messageID, body string, editedAt int64) error
	SoftDeleteMessage(ctx context.Context, messageID string) error
	SetForkedTo(ctx context.Context, messageID, channelID string) error
	AdjustThreadReplyCount(ctx context.Context, parentID string, delta int, lastReplyAt int64) error
	SetThreadReplyCount(ctx context.Context, parentID string, count int) error
	CountLiveReplies(ctx context.Context, parentID string) (int, error)
}

// ReactionQueries covers reactions, pins and the Hall of Fame.
type ReactionQueries interface {
	HasReaction(ctx context.Context, messageID, userID, emoji string) (bool, error)
	CreateReaction(ctx context.Context, reaction *models.Reaction) error
	// DeleteReaction reports whether a row was removed.
	DeleteReaction(ctx context.Context, messageID, userID, emoji string) (bool, error)
	ListReactionsByMessage(ctx context.Context, messageID string) ([]*models.Reaction, error)
	ListReactionsByMessageEmoji(ctx context.Context, messageID, emoji string) ([]*models.Reaction, error)

	// CreatePin reports false when the message was already pinned.
	CreatePin(ctx context.Context, pin *models.Pin) (bool, error)
	ListPinsByChannel(ctx context.Context, channelID string) ([]*models.Pin, error)

	HasHallOfFameEntry(ctx context.Context, groupID, messageID string) (bool, error)
	CreateHallOfFameEntry(ctx context.Context, entry *models.HallOfFameEntry) error
	ListHallOfFame(ctx context.Context, groupID string, limit int) ([]*models.HallOfFameEntry, error)
}

// SplitQueries covers splits, items, claims and balances.
type SplitQueries interface {
	CreateSplit(ctx context.Context, split *models.Split) error
	GetSplit(ctx context.Context, splitID string) (*models.Split, error)
	// ListSplitsByChannel returns splits with their items and claims.
	ListSplitsByChannel(ctx context.Context, channelID string) ([]*models.Split, error)
	SetSplitStatusByChannel(ctx context.Context, channelID string, status models.SplitStatus) error

	CreateSplitItem(ctx context.Context, item *models.SplitItem) error
	GetSplitItem(ctx context.Context, itemID string) (*models.SplitItem, error)
	DeleteSplitItem(ctx context.Context, itemID string) error
	// AddItemClaim reports false when the user had already claimed the item.
	AddItemClaim(ctx context.Context, itemID, userID string) (bool, error)
	RemoveItemClaim(ctx context.Context, itemID, userID string) error

	CreateBalance(ctx context.Context, balance *models.SplitBalance) error
	GetBalance(ctx context.Context, balanceID string) (*models.SplitBalance, error)
	ListBalancesByChannel(ctx context.Context, channelID string, paid bool) ([]*models.SplitBalance, error)
	DeleteUnpaidBalancesByChannel(ctx context.Context, channelID string) (int64, error)
	MarkBalancePaid(ctx context.Context, balanceID string, at int64) error
}

// EventQueries covers RSVPs and event logistics.
type EventQueries interface {
	UpsertRsvp(ctx context.Context, rsvp *models.EventRsvp) error
	ListRsvps(ctx context.Context, channelID string) ([]*models.EventRsvp, error)
	ListGoingUserIDs(ctx context.Context, channelID string) ([]string, error)

	CreateChecklistItem(ctx context.Context, item *models.ChecklistItem) error
	GetChecklistItem(ctx context.Context, itemID string) (*models.ChecklistItem, error)
	SetChecklistItemCompleted(ctx context.Context, itemID string, completed bool) error
	ListChecklist(ctx context.Context, channelID string) ([]*models.ChecklistItem, error)

	CreateFlight(ctx context.Context, flight *models.Flight) error
	GetFlight(ctx context.Context, flightID string) (*models.Flight, error)
	ListFlights(ctx context.Context, channelID string) ([]*models.Flight, error)
	SetFlightPassengers(ctx context.Context, flightID string, passengers []string) error
	SetFlightStatus(ctx context.Context, flightID string, status models.BookingStatus) error
	DeleteFlight(ctx context.Context, flightID string) error

	CreateAccommodation(ctx context.Context, acc *models.Accommodation) error
	GetAccommodation(ctx context.Context, accID string) (*models.Accommodation, error)
	ListAccommodations(ctx context.Context, channelID string) ([]*models.Accommodation, error)
	SetAccommodationGuests(ctx context.Context, accID string, guests []string) error
	SetAccommodationStatus(ctx context.Context, accID string, status models.BookingStatus) error
	DeleteAccommodation(ctx context.Context, accID string) error
}

// SenpaiQueries covers persona memories.
type SenpaiQueries interface {
	CreateMemory(ctx context.Context, memory *models.SenpaiMemory) error
	// ListMemories returns the most relevant memories first.
	ListMemories(ctx context.Context, groupID string, limit int) ([]*models.SenpaiMemory, error)
}
