package calculator

import "math"

// PersonSplit represents the calculated share of one split for one person.
type PersonSplit struct {
	// Subtotal is the claimed item share plus any unclaimed remainder share,
	// before tax and tip. Fractional cents are kept.
	Subtotal float64

	// Tax and Tip are the proportional allocations, rounded per person.
	Tax int64
	Tip int64

	// Total is Subtotal + Tax + Tip, still unrounded.
	Total float64
}

// Item represents a single line item on a split.
type Item struct {
	Name      string
	Price     int64
	ClaimedBy []string
}

// SplitForSettlement represents a split with the information needed for settlement.
type SplitForSettlement struct {
	ID          string
	PayerID     string
	TotalAmount int64
	TaxAmount   int64
	TipAmount   int64
	Items       []Item
}

// CalculateShares computes how much each person owes for one split.
//
// Algorithm:
//   - every claimed item is divided evenly among its claimants
//   - remainder = total - tax - tip - claimed prices; if positive it is
//     divided evenly among goingUserIDs
//   - tax and tip are allocated as round(amount × subtotal / totalSubtotal)
//     per person, with no correction of the rounding slack
//
// A split whose total subtotal is zero returns an empty map.
func CalculateShares(split SplitForSettlement, goingUserIDs []string) map[string]*PersonSplit {
	subtotals := make(map[string]float64)
	var claimedTotal int64

	for _, item := range split.Items {
		if len(item.ClaimedBy) == 0 {
			continue
		}
		perPerson := float64(item.Price) / float64(len(item.ClaimedBy))
		for _, userID := range item.ClaimedBy {
			subtotals[userID] += perPerson
		}
		claimedTotal += item.Price
	}

	unclaimed := split.TotalAmount - split.TaxAmount - split.TipAmount - claimedTotal
	if unclaimed > 0 && len(goingUserIDs) > 0 {
		perPerson := float64(unclaimed) / float64(len(goingUserIDs))
		for _, userID := range goingUserIDs {
			subtotals[userID] += perPerson
		}
	}

	var totalSubtotal float64
	for _, amount := range subtotals {
		totalSubtotal += amount
	}

	splits := make(map[string]*PersonSplit, len(subtotals))
	if totalSubtotal <= 0 {
		return splits
	}

	for userID, subtotal := range subtotals {
		proportion := subtotal / totalSubtotal
		tax := roundHalfUp(float64(split.TaxAmount) * proportion)
		tip := roundHalfUp(float64(split.TipAmount) * proportion)
		splits[userID] = &PersonSplit{
			Subtotal: subtotal,
			Tax:      tax,
			Tip:      tip,
			Total:    subtotal + float64(tax) + float64(tip),
		}
	}

	return splits
}

// roundHalfUp rounds to the nearest integer with ties toward +Inf.
func roundHalfUp(x float64) int64 {
	return int64(math.Floor(x + 0.5))
}
