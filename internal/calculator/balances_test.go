package calculator

import (
	"reflect"
	"testing"
)

func TestCalculateSettlement(t *testing.T) {
	tests := []struct {
		name     string
		splits   []SplitForSettlement
		going    []string
		payments []Payment
		want     []DebtEdge
	}{
		{
			name: "reference dinner owed to payer",
			splits: []SplitForSettlement{{
				PayerID:     "P",
				TotalAmount: 10000,
				TaxAmount:   800,
				TipAmount:   1200,
				Items: []Item{
					{Name: "Pizza", Price: 6000, ClaimedBy: []string{"X", "Y"}},
					{Name: "Wine", Price: 2000},
				},
			}},
			going: []string{"X", "Y", "Z"},
			want: []DebtEdge{
				{From: "X", To: "P", Amount: 4584},
				{From: "Y", To: "P", Amount: 4584},
				{From: "Z", To: "P", Amount: 834},
			},
		},
		{
			name: "payer share is not a debt",
			splits: []SplitForSettlement{{
				PayerID:     "Z",
				TotalAmount: 10000,
				TaxAmount:   800,
				TipAmount:   1200,
				Items: []Item{
					{Name: "Pizza", Price: 6000, ClaimedBy: []string{"X", "Y"}},
				},
			}},
			going: []string{"X", "Y", "Z"},
			want: []DebtEdge{
				{From: "X", To: "Z", Amount: 4584},
				{From: "Y", To: "Z", Amount: 4584},
			},
		},
		{
			name: "mutual debts across splits net to one edge",
			splits: []SplitForSettlement{
				{PayerID: "A", TotalAmount: 1000, Items: []Item{{Price: 1000, ClaimedBy: []string{"B"}}}},
				{PayerID: "B", TotalAmount: 400, Items: []Item{{Price: 400, ClaimedBy: []string{"A"}}}},
			},
			want: []DebtEdge{{From: "B", To: "A", Amount: 600}},
		},
		{
			name: "equal mutual debts cancel",
			splits: []SplitForSettlement{
				{PayerID: "A", TotalAmount: 700, Items: []Item{{Price: 700, ClaimedBy: []string{"B"}}}},
				{PayerID: "B", TotalAmount: 700, Items: []Item{{Price: 700, ClaimedBy: []string{"A"}}}},
			},
			want: nil,
		},
		{
			name: "paid balances offset recomputed debts",
			splits: []SplitForSettlement{
				{PayerID: "A", TotalAmount: 1000, Items: []Item{{Price: 1000, ClaimedBy: []string{"B"}}}},
			},
			payments: []Payment{{FromUserID: "B", ToUserID: "A", Amount: 600}},
			want:     []DebtEdge{{From: "B", To: "A", Amount: 400}},
		},
		{
			name: "no splits yields no edges",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateSettlement(tt.splits, tt.going, tt.payments)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("CalculateSettlement() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestNetDebts_OneEdgePerPair(t *testing.T) {
	debts := Debts{
		"A": {"B": 500, "C": 100},
		"B": {"A": 200, "C": 50},
		"C": {"A": 100, "B": 80},
	}

	edges := NetDebts(debts)

	seen := make(map[[2]string]bool)
	for _, e := range edges {
		key := pairKey(e.From, e.To)
		if seen[key] {
			t.Errorf("pair %v emitted twice", key)
		}
		seen[key] = true
		if e.Amount <= 0 {
			t.Errorf("edge %+v has non-positive amount", e)
		}
	}

	want := []DebtEdge{
		{From: "A", To: "B", Amount: 300},
		{From: "C", To: "B", Amount: 30},
	}
	if !reflect.DeepEqual(edges, want) {
		t.Errorf("NetDebts() = %+v, want %+v", edges, want)
	}
}
