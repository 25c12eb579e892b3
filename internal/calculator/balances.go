package calculator

import "sort"

// DebtEdge represents a debt from one person to another.
type DebtEdge struct {
	From   string // Person who owes
	To     string // Person who is owed
	Amount int64
}

// Payment represents a balance that was already paid.
// It counts as money flowing From -> To and offsets later debts.
type Payment struct {
	FromUserID string
	ToUserID   string
	Amount     int64
}

// Debts accumulates amounts as debts[debtor][creditor].
type Debts map[string]map[string]int64

func (d Debts) add(from, to string, amount int64) {
	if from == to || amount == 0 {
		return
	}
	if _, exists := d[from]; !exists {
		d[from] = make(map[string]int64)
	}
	d[from][to] += amount
}

// AccumulateDebts records every non-payer share of every split as a debt
// to that split's payer. Each share is rounded to whole cents before it is
// added.
func AccumulateDebts(splits []SplitForSettlement, goingUserIDs []string) Debts {
	debts := make(Debts)
	for _, split := range splits {
		for userID, share := range CalculateShares(split, goingUserIDs) {
			if userID == split.PayerID {
				continue
			}
			debts.add(userID, split.PayerID, roundHalfUp(share.Total))
		}
	}
	return debts
}

// NetDebts collapses mutual debts into at most one edge per pair of users.
// For each unordered pair the net amount debt(A→B) − debt(B→A) is emitted in
// whichever direction is positive; equal debts cancel out. Output is sorted
// by debtor then creditor.
func NetDebts(debts Debts) []DebtEdge {
	processed := make(map[[2]string]bool)
	var edges []DebtEdge

	for _, from := range sortedKeys(debts) {
		for _, to := range sortedKeys(debts[from]) {
			key := pairKey(from, to)
			if processed[key] {
				continue
			}
			processed[key] = true

			net := debts[from][to] - debts[to][from]
			switch {
			case net > 0:
				edges = append(edges, DebtEdge{From: from, To: to, Amount: net})
			case net < 0:
				edges = append(edges, DebtEdge{From: to, To: from, Amount: -net})
			}
		}
	}

	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})
	return edges
}

// CalculateSettlement computes the netted debts for all splits of a channel.
//
// Algorithm:
//   - For each split: every non-payer share becomes a debt to the payer
//   - For each payment: the receiver owes the payer the paid amount back,
//     which offsets what is still owed
//   - Net out each pair of users once
func CalculateSettlement(splits []SplitForSettlement, goingUserIDs []string, payments []Payment) []DebtEdge {
	debts := AccumulateDebts(splits, goingUserIDs)
	for _, p := range payments {
		debts.add(p.ToUserID, p.FromUserID, p.Amount)
	}
	return NetDebts(debts)
}

// pairKey orders the two IDs so (a,b) and (b,a) map to the same key.
func pairKey(a, b string) [2]string {
	if b < a {
		a, b = b, a
	}
	return [2]string{a, b}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
