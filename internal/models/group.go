package models

import "fmt"

// DefaultHallOfFameThreshold applies when a group has no threshold configured.
const DefaultHallOfFameThreshold = 5

// Role is a member's rank inside a group.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Rank orders roles: owner > admin > member. Unknown roles rank 0.
func (r Role) Rank() int {
	switch r {
	case RoleOwner:
		return 3
	case RoleAdmin:
		return 2
	case RoleMember:
		return 1
	default:
		return 0
	}
}

// AtLeast reports whether r ranks at or above min.
func (r Role) AtLeast(min Role) bool {
	return r.Rank() > 0 && r.Rank() >= min.Rank()
}

// ParseRole converts a stored or requested role string into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if r.Rank() == 0 {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Frequency controls how often Senpai speaks up in a group.
type Frequency string

const (
	FrequencyQuiet  Frequency = "quiet"
	FrequencyNormal Frequency = "normal"
	FrequencyChatty Frequency = "chatty"
)

// ParseFrequency validates a frequency tier.
func ParseFrequency(s string) (Frequency, error) {
	switch f := Frequency(s); f {
	case FrequencyQuiet, FrequencyNormal, FrequencyChatty:
		return f, nil
	}
	return "", fmt.Errorf("unknown senpai frequency %q", s)
}

// Group represents a crew of users sharing channels.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group.
	Name string

	// CreatedBy is the user ID of the original creator.
	CreatedBy string

	// CreatedAt is the epoch-millisecond creation time.
	CreatedAt int64

	// InviteCode lets other users join the group.
	InviteCode string

	// HallOfFameThreshold is the number of unique trophy reactors needed to
	// enshrine a message. Zero means DefaultHallOfFameThreshold.
	HallOfFameThreshold int

	// SenpaiEnabled switches the persona on or off.
	SenpaiEnabled bool

	// SenpaiFrequency gates which triggers get a response.
	SenpaiFrequency Frequency

	// SenpaiPersonality is optional free text appended to the prompt.
	SenpaiPersonality string
}

// Threshold returns the effective Hall of Fame threshold.
func (g *Group) Threshold() int {
	if g.HallOfFameThreshold <= 0 {
		return DefaultHallOfFameThreshold
	}
	return g.HallOfFameThreshold
}

// Membership links a user to a group with a role.
// There is at most one membership per (group, user).
type Membership struct {
	GroupID      string
	UserID       string
	Role         Role
	JoinedAt     int64
	LastActiveAt int64
}

// Member is a membership joined with its user for listings.
type Member struct {
	Membership
	DisplayName string
	Username    string
}
