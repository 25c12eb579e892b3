package models

import "fmt"

// SplitStatus tracks a split through claiming, settlement and payment.
type SplitStatus string

const (
	SplitClaiming   SplitStatus = "claiming"
	SplitCalculated SplitStatus = "calculated"
	SplitSettled    SplitStatus = "settled"
)

// ParseSplitStatus validates a stored split status.
func ParseSplitStatus(s string) (SplitStatus, error) {
	switch st := SplitStatus(s); st {
	case SplitClaiming, SplitCalculated, SplitSettled:
		return st, nil
	}
	return "", fmt.Errorf("unknown split status %q", s)
}

// Split represents a bill posted in an event channel.
// The creator is treated as the person who paid.
type Split struct {
	// ID is the unique identifier for the split (UUID format).
	ID string

	// ChannelID and GroupID locate the split.
	ChannelID string
	GroupID   string

	// Name is the human-readable label (e.g., "Friday dinner").
	Name string

	// TotalAmount is the full bill including tax and tip, in cents.
	TotalAmount int64

	// TaxAmount and TipAmount are allocated proportionally to each
	// person's subtotal during settlement.
	TaxAmount int64
	TipAmount int64

	// CreatedBy is the payer; every other share becomes a debt to them.
	CreatedBy string
	CreatedAt int64

	Status SplitStatus

	// Items are the line items, filled by list queries.
	Items []SplitItem
}

// SplitItem represents a single line item on a split.
// Items can be claimed by several users and are then shared evenly.
type SplitItem struct {
	ID      string
	SplitID string
	Name    string

	// Price is the line total in cents.
	Price int64

	// Quantity is informational; Price already covers all units.
	Quantity int

	// ClaimedBy lists the user IDs sharing this item.
	ClaimedBy []string
}

// SplitBalance is a directed, netted debt produced by settlement.
type SplitBalance struct {
	ID         string
	SplitID    string
	ChannelID  string
	GroupID    string
	FromUserID string
	ToUserID   string
	Amount     int64
	IsPaid     bool
	PaidAt     int64
}
