package service

import (
	"testing"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/mmynk/crewchat/pkg/api"
)

func claim(t *testing.T, env *testEnv, u testUser, itemID string) *api.SplitItem {
	t.Helper()
	return mustCall[api.SplitItemResponse](t, env, u.Token, api.SplitServiceClaimItemProcedure,
		&api.ItemRequest{ItemID: itemID}).Item
}

func rsvp(t *testing.T, env *testEnv, u testUser, channelID, status string) {
	t.Helper()
	mustCall[api.RsvpResponse](t, env, u.Token, api.EventServiceSetRsvpProcedure,
		&api.SetRsvpRequest{ChannelID: channelID, Status: status})
}

func balanceFrom(balances []*api.Balance, userID string) *api.Balance {
	for _, b := range balances {
		if b.FromUserID == userID {
			return b
		}
	}
	return nil
}

func TestSettlementFlow(t *testing.T) {
	env := setupTestServer(t)
	created, users := env.newGroup(t, "Alice", "Bob", "Carol")
	alice, bob, carol := users[0], users[1], users[2]

	event := mustCall[api.ChannelResponse](t, env, alice.Token, api.ChannelServiceCreateChannelProcedure,
		&api.CreateChannelRequest{GroupID: created.Group.ID, Name: "Dinner", Type: "event"}).Channel
	for _, u := range users {
		rsvp(t, env, u, event.ID, "going")
	}

	split := mustCall[api.SplitResponse](t, env, alice.Token, api.SplitServiceCreateSplitProcedure, &api.CreateSplitRequest{
		ChannelID:   event.ID,
		Name:        "Dinner",
		TotalAmount: 3000,
		Items: []api.NewSplitItem{
			{Name: "Pizza", Price: 1200, Quantity: 1},
			{Name: "Wine", Price: 800, Quantity: 1},
		},
	}).Split
	if split.CreatedBy != alice.ID || split.Status != "claiming" || len(split.Items) != 2 {
		t.Fatalf("split: got %+v", split)
	}
	pizza, wine := split.Items[0].ID, split.Items[1].ID

	claim(t, env, alice, pizza)
	claim(t, env, bob, pizza)
	// Claiming twice is a no-op.
	if item := claim(t, env, bob, pizza); len(item.ClaimedBy) != 2 {
		t.Errorf("pizza claimants: expected 2, got %v", item.ClaimedBy)
	}
	claim(t, env, bob, wine)

	// Pizza 600 each, wine 800 to Bob, and the unclaimed 1000 shared by
	// all three going: Bob 1733.33, Carol 333.33.
	calc := mustCall[api.BalancesResponse](t, env, carol.Token, api.SplitServiceCalculateSettlementProcedure,
		&api.ChannelBalancesRequest{ChannelID: event.ID})
	if len(calc.Balances) != 2 {
		t.Fatalf("balances: expected 2, got %+v", calc.Balances)
	}
	bobOwes, carolOwes := balanceFrom(calc.Balances, bob.ID), balanceFrom(calc.Balances, carol.ID)
	if bobOwes == nil || bobOwes.ToUserID != alice.ID || bobOwes.Amount != 1733 {
		t.Errorf("bob: expected 1733 to alice, got %+v", bobOwes)
	}
	if carolOwes == nil || carolOwes.ToUserID != alice.ID || carolOwes.Amount != 333 {
		t.Errorf("carol: expected 333 to alice, got %+v", carolOwes)
	}

	list := mustCall[api.ListSplitsResponse](t, env, bob.Token, api.SplitServiceListSplitsProcedure,
		&api.ListSplitsRequest{ChannelID: event.ID})
	if list.Splits[0].Status != "calculated" {
		t.Errorf("status after calculation: expected calculated, got %q", list.Splits[0].Status)
	}

	paid := mustCall[api.BalanceResponse](t, env, carol.Token, api.SplitServiceMarkBalancePaidProcedure,
		&api.MarkBalancePaidRequest{BalanceID: carolOwes.ID})
	if !paid.Balance.IsPaid || paid.Balance.PaidAt == 0 {
		t.Errorf("paid balance: got %+v", paid.Balance)
	}

	// Recalculating keeps Carol's payment and only Bob still owes.
	calc = mustCall[api.BalancesResponse](t, env, alice.Token, api.SplitServiceCalculateSettlementProcedure,
		&api.ChannelBalancesRequest{ChannelID: event.ID})
	if len(calc.Balances) != 1 || calc.Balances[0].FromUserID != bob.ID || calc.Balances[0].Amount != 1733 {
		t.Fatalf("recalculated: expected only bob 1733, got %+v", calc.Balances)
	}
	unpaid := mustCall[api.BalancesResponse](t, env, alice.Token, api.SplitServiceListBalancesProcedure,
		&api.ChannelBalancesRequest{ChannelID: event.ID})
	if len(unpaid.Balances) != 1 || unpaid.Balances[0].ID != calc.Balances[0].ID {
		t.Errorf("ListBalances: expected the recalculated row, got %+v", unpaid.Balances)
	}

	mustCall[api.BalanceResponse](t, env, bob.Token, api.SplitServiceMarkBalancePaidProcedure,
		&api.MarkBalancePaidRequest{BalanceID: calc.Balances[0].ID})
	list = mustCall[api.ListSplitsResponse](t, env, bob.Token, api.SplitServiceListSplitsProcedure,
		&api.ListSplitsRequest{ChannelID: event.ID})
	if list.Splits[0].Status != "settled" {
		t.Errorf("status after all paid: expected settled, got %q", list.Splits[0].Status)
	}

	_, err := call[api.SplitItemResponse](env, carol.Token, api.SplitServiceClaimItemProcedure,
		&api.ItemRequest{ItemID: wine})
	expectCode(t, err, connect.CodeInvalidArgument)

	_, err = call[api.SplitItemResponse](env, alice.Token, api.SplitServiceAddItemProcedure,
		&api.AddItemRequest{SplitID: split.ID, Name: "Dessert", Price: 900})
	expectCode(t, err, connect.CodeInvalidArgument)
}

func TestCalculateSettlementWithoutSplits(t *testing.T) {
	env := setupTestServer(t)
	created, users := env.newGroup(t, "Alice")

	_, err := call[api.BalancesResponse](env, users[0].Token, api.SplitServiceCalculateSettlementProcedure,
		&api.ChannelBalancesRequest{ChannelID: created.Hangout.ID})
	expectCode(t, err, connect.CodeNotFound)
}

func TestSplitItems(t *testing.T) {
	env := setupTestServer(t)
	created, users := env.newGroup(t, "Alice", "Bob")
	alice, bob := users[0], users[1]

	split := mustCall[api.SplitResponse](t, env, alice.Token, api.SplitServiceCreateSplitProcedure, &api.CreateSplitRequest{
		ChannelID:   created.Hangout.ID,
		Name:        "Groceries",
		TotalAmount: 1500,
	}).Split

	item := mustCall[api.SplitItemResponse](t, env, bob.Token, api.SplitServiceAddItemProcedure,
		&api.AddItemRequest{SplitID: split.ID, Name: "Cheese", Price: 700, Quantity: 2}).Item
	if item.SplitID != split.ID || item.Price != 700 || len(item.ClaimedBy) != 0 {
		t.Fatalf("item: got %+v", item)
	}
	spare := mustCall[api.SplitItemResponse](t, env, bob.Token, api.SplitServiceAddItemProcedure,
		&api.AddItemRequest{SplitID: split.ID, Name: "Bread", Price: 300}).Item

	claim(t, env, alice, item.ID)
	_, err := call[emptypb.Empty](env, bob.Token, api.SplitServiceDeleteItemProcedure,
		&api.ItemRequest{ItemID: item.ID})
	expectCode(t, err, connect.CodeInvalidArgument)

	unclaimed := mustCall[api.SplitItemResponse](t, env, alice.Token, api.SplitServiceUnclaimItemProcedure,
		&api.ItemRequest{ItemID: item.ID}).Item
	if len(unclaimed.ClaimedBy) != 0 {
		t.Errorf("after unclaim: expected no claimants, got %v", unclaimed.ClaimedBy)
	}

	mustCall[emptypb.Empty](t, env, bob.Token, api.SplitServiceDeleteItemProcedure,
		&api.ItemRequest{ItemID: spare.ID})
	list := mustCall[api.ListSplitsResponse](t, env, alice.Token, api.SplitServiceListSplitsProcedure,
		&api.ListSplitsRequest{ChannelID: created.Hangout.ID})
	if len(list.Splits) != 1 || len(list.Splits[0].Items) != 1 || list.Splits[0].Items[0].ID != item.ID {
		t.Errorf("ListSplits: expected one split with the cheese, got %+v", list.Splits)
	}

	outsider := env.register(t, "Mallory")
	_, err = call[api.SplitItemResponse](env, outsider.Token, api.SplitServiceClaimItemProcedure,
		&api.ItemRequest{ItemID: item.ID})
	expectCode(t, err, connect.CodePermissionDenied)

	_, err = call[api.SplitItemResponse](env, alice.Token, api.SplitServiceClaimItemProcedure,
		&api.ItemRequest{ItemID: "missing"})
	expectCode(t, err, connect.CodeNotFound)
}
