// Package models defines the core domain models for crewchat.
//
// # Models
//
//   - User: an account resolved from the identity provider subject
//   - Group, Membership: a crew and its role-ranked members
//   - Channel, Message: hangout/event/bracket channels and threaded messages
//   - Reaction, Pin, HallOfFameEntry: reactions and their side effects
//   - Split, SplitItem, SplitBalance: bill splitting and settlement output
//   - EventRsvp, ChecklistItem, Flight, Accommodation: event logistics
//   - SenpaiMemory: context fed to the Senpai persona prompt
//
// # Conventions
//
// 1. Monetary amounts are int64 minor currency units (cents).
// 2. Timestamps are epoch milliseconds.
// 3. Roles, statuses and types are closed enumerations; use the Parse
//    functions to turn untrusted strings into values.
// 4. Relationships are ID strings, never pointers.
package models

import "time"

// NowMillis returns the current time as epoch milliseconds.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}
