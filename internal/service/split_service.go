package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/mmynk/crewchat/internal/apperr"
	"github.com/mmynk/crewchat/internal/authz"
	"github.com/mmynk/crewchat/internal/calculator"
	"github.com/mmynk/crewchat/internal/metrics"
	"github.com/mmynk/crewchat/internal/models"
	"github.com/mmynk/crewchat/internal/storage"
	"github.com/mmynk/crewchat/pkg/api"
)

// SplitService implements the Connect SplitService.
type SplitService struct {
	store storage.Store
}

// NewSplitService creates a new SplitService with the given storage backend.
func NewSplitService(store storage.Store) *SplitService {
	return &SplitService{store: store}
}

// CreateSplit starts a new bill in a channel. The creator is the payer.
func (s *SplitService) CreateSplit(ctx context.Context, req *connect.Request[api.CreateSplitRequest]) (*connect.Response[api.SplitResponse], error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	msg := req.Msg
	slog.Info("CreateSplit request received",
		"channel_id", msg.ChannelID,
		"total", msg.TotalAmount,
		"items_count", len(msg.Items),
	)

	split := &models.Split{
		ChannelID:   msg.ChannelID,
		Name:        msg.Name,
		TotalAmount: msg.TotalAmount,
		TaxAmount:   msg.TaxAmount,
		TipAmount:   msg.TipAmount,
		CreatedBy:   user.ID,
		Status:      models.SplitClaiming,
		Items:       make([]models.SplitItem, len(msg.Items)),
	}
	for i, item := range msg.Items {
		split.Items[i] = models.SplitItem{Name: item.Name, Price: item.Price, Quantity: item.Quantity}
	}

	err = s.store.RunInTx(ctx, func(q storage.Queries) error {
		channel, _, err := channelAccess(ctx, q, msg.ChannelID, user.ID, models.RoleMember)
		if err != nil {
			return err
		}
		split.GroupID = channel.GroupID
		return q.CreateSplit(ctx, split)
	})
	if err != nil {
		return nil, fail("CreateSplit", err, "channel_id", msg.ChannelID)
	}

	slog.Info("Split created", "split_id", split.ID)
	return connect.NewResponse(&api.SplitResponse{Split: toAPISplit(split)}), nil
}

// AddItem adds a line item to a split.
func (s *SplitService) AddItem(ctx context.Context, req *connect.Request[api.AddItemRequest]) (*connect.Response[api.SplitItemResponse], error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	msg := req.Msg

	item := &models.SplitItem{SplitID: msg.SplitID, Name: msg.Name, Price: msg.Price, Quantity: msg.Quantity}
	err = s.store.RunInTx(ctx, func(q storage.Queries) error {
		split, err := q.GetSplit(ctx, msg.SplitID)
		if err != nil {
			return err
		}
		if _, err := authz.Require(ctx, q, split.GroupID, user.ID, models.RoleMember); err != nil {
			return err
		}
		if split.Status == models.SplitSettled {
			return apperr.Invalid("split is already settled")
		}
		return q.CreateSplitItem(ctx, item)
	})
	if err != nil {
		return nil, fail("AddItem", err, "split_id", msg.SplitID)
	}
	return connect.NewResponse(&api.SplitItemResponse{Item: toAPISplitItem(item)}), nil
}

// itemAccess loads an item and its split and checks membership.
func itemAccess(ctx context.Context, q storage.Queries, itemID, userID string) (*models.SplitItem, *models.Split, error) {
	item, err := q.GetSplitItem(ctx, itemID)
	if err != nil {
		return nil, nil, err
	}
	split, err := q.GetSplit(ctx, item.SplitID)
	if err != nil {
		return nil, nil, err
	}
	if _, err := authz.Require(ctx, q, split.GroupID, userID, models.RoleMember); err != nil {
		return nil, nil, err
	}
	return item, split, nil
}

// ClaimItem adds the caller to an item's claimants. Claiming twice is a no-op.
func (s *SplitService) ClaimItem(ctx context.Context, req *connect.Request[api.ItemRequest]) (*connect.Response[api.SplitItemResponse], error) {
	return s.changeClaim(ctx, "ClaimItem", req.Msg.ItemID, func(q storage.Queries, itemID, userID string) error {
		_, err := q.AddItemClaim(ctx, itemID, userID)
		return err
	})
}

// UnclaimItem removes the caller from an item's claimants.
func (s *SplitService) UnclaimItem(ctx context.Context, req *connect.Request[api.ItemRequest]) (*connect.Response[api.SplitItemResponse], error) {
	return s.changeClaim(ctx, "UnclaimItem", req.Msg.ItemID, func(q storage.Queries, itemID, userID string) error {
		return q.RemoveItemClaim(ctx, itemID, userID)
	})
}

func (s *SplitService) changeClaim(ctx context.Context, op, itemID string, change func(q storage.Queries, itemID, userID string) error) (*connect.Response[api.SplitItemResponse], error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info(op+" request received", "item_id", itemID, "user_id", user.ID)

	var item *models.SplitItem
	err = s.store.RunInTx(ctx, func(q storage.Queries) error {
		_, split, err := itemAccess(ctx, q, itemID, user.ID)
		if err != nil {
			return err
		}
		if split.Status == models.SplitSettled {
			return apperr.Invalid("split is already settled")
		}
		if err := change(q, itemID, user.ID); err != nil {
			return err
		}
		item, err = q.GetSplitItem(ctx, itemID)
		return err
	})
	if err != nil {
		return nil, fail(op, err, "item_id", itemID)
	}
	return connect.NewResponse(&api.SplitItemResponse{Item: toAPISplitItem(item)}), nil
}

// DeleteItem removes a line item nobody has claimed yet.
func (s *SplitService) DeleteItem(ctx context.Context, req *connect.Request[api.ItemRequest]) (*connect.Response[emptypb.Empty], error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	itemID := req.Msg.ItemID

	err = s.store.RunInTx(ctx, func(q storage.Queries) error {
		item, _, err := itemAccess(ctx, q, itemID, user.ID)
		if err != nil {
			return err
		}
		if len(item.ClaimedBy) > 0 {
			return apperr.Invalid("cannot delete a claimed item")
		}
		return q.DeleteSplitItem(ctx, itemID)
	})
	if err != nil {
		return nil, fail("DeleteItem", err, "item_id", itemID)
	}
	return connect.NewResponse(&emptypb.Empty{}), nil
}

// ListSplits returns a channel's splits with their items and claims.
func (s *SplitService) ListSplits(ctx context.Context, req *connect.Request[api.ListSplitsRequest]) (*connect.Response[api.ListSplitsResponse], error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	channelID := req.Msg.ChannelID
	if _, _, err := channelAccess(ctx, s.store, channelID, user.ID, models.RoleMember); err != nil {
		return nil, fail("ListSplits", err, "channel_id", channelID)
	}
	splits, err := s.store.ListSplitsByChannel(ctx, channelID)
	if err != nil {
		return nil, fail("ListSplits", err, "channel_id", channelID)
	}
	out := make([]*api.Split, len(splits))
	for i, sp := range splits {
		out[i] = toAPISplit(sp)
	}
	return connect.NewResponse(&api.ListSplitsResponse{Splits: out}), nil
}

// toCalculatorSplit converts a stored split to calculator format.
func toCalculatorSplit(split *models.Split) calculator.SplitForSettlement {
	items := make([]calculator.Item, len(split.Items))
	for i, item := range split.Items {
		items[i] = calculator.Item{
			Name:      item.Name,
			Price:     item.Price,
			ClaimedBy: item.ClaimedBy,
		}
	}
	return calculator.SplitForSettlement{
		ID:          split.ID,
		PayerID:     split.CreatedBy,
		TotalAmount: split.TotalAmount,
		TaxAmount:   split.TaxAmount,
		TipAmount:   split.TipAmount,
		Items:       items,
	}
}

// CalculateSettlement recomputes who owes whom across every split in a
// channel. Unpaid balances from an earlier run are replaced; paid ones
// count as payments already made.
func (s *SplitService) CalculateSettlement(ctx context.Context, req *connect.Request[api.ChannelBalancesRequest]) (*connect.Response[api.BalancesResponse], error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	channelID := req.Msg.ChannelID
	slog.Info("CalculateSettlement request received", "channel_id", channelID)

	var balances []*models.SplitBalance
	err = s.store.RunInTx(ctx, func(q storage.Queries) error {
		channel, _, err := channelAccess(ctx, q, channelID, user.ID, models.RoleMember)
		if err != nil {
			return err
		}
		splits, err := q.ListSplitsByChannel(ctx, channelID)
		if err != nil {
			return err
		}
		if len(splits) == 0 {
			return apperr.NotFound("splits for channel", channelID)
		}
		going, err := q.ListGoingUserIDs(ctx, channelID)
		if err != nil {
			return err
		}
		paid, err := q.ListBalancesByChannel(ctx, channelID, true)
		if err != nil {
			return err
		}
		removed, err := q.DeleteUnpaidBalancesByChannel(ctx, channelID)
		if err != nil {
			return err
		}

		forCalc := make([]calculator.SplitForSettlement, len(splits))
		for i, sp := range splits {
			forCalc[i] = toCalculatorSplit(sp)
		}
		payments := make([]calculator.Payment, len(paid))
		for i, b := range paid {
			payments[i] = calculator.Payment{FromUserID: b.FromUserID, ToUserID: b.ToUserID, Amount: b.Amount}
		}

		for _, edge := range calculator.CalculateSettlement(forCalc, going, payments) {
			b := &models.SplitBalance{
				SplitID:    splits[0].ID,
				ChannelID:  channelID,
				GroupID:    channel.GroupID,
				FromUserID: edge.From,
				ToUserID:   edge.To,
				Amount:     edge.Amount,
			}
			if err := q.CreateBalance(ctx, b); err != nil {
				return err
			}
			balances = append(balances, b)
		}
		slog.Info("Settlement calculated",
			"channel_id", channelID,
			"splits", len(splits),
			"replaced", removed,
			"balances", len(balances),
		)
		return q.SetSplitStatusByChannel(ctx, channelID, models.SplitCalculated)
	})
	if err != nil {
		return nil, fail("CalculateSettlement", err, "channel_id", channelID)
	}

	metrics.Settlements.Inc()
	metrics.BalanceRows.Add(float64(len(balances)))
	return connect.NewResponse(&api.BalancesResponse{Balances: toAPIBalances(balances)}), nil
}

// ListBalances returns a channel's unpaid balances.
func (s *SplitService) ListBalances(ctx context.Context, req *connect.Request[api.ChannelBalancesRequest]) (*connect.Response[api.BalancesResponse], error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	channelID := req.Msg.ChannelID
	if _, _, err := channelAccess(ctx, s.store, channelID, user.ID, models.RoleMember); err != nil {
		return nil, fail("ListBalances", err, "channel_id", channelID)
	}
	balances, err := s.store.ListBalancesByChannel(ctx, channelID, false)
	if err != nil {
		return nil, fail("ListBalances", err, "channel_id", channelID)
	}
	return connect.NewResponse(&api.BalancesResponse{Balances: toAPIBalances(balances)}), nil
}

// MarkBalancePaid records a balance as paid. Once a channel has no unpaid
// balances left its splits are settled.
func (s *SplitService) MarkBalancePaid(ctx context.Context, req *connect.Request[api.MarkBalancePaidRequest]) (*connect.Response[api.BalanceResponse], error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	balanceID := req.Msg.BalanceID
	slog.Info("MarkBalancePaid request received", "balance_id", balanceID)

	var balance *models.SplitBalance
	err = s.store.RunInTx(ctx, func(q storage.Queries) error {
		b, err := q.GetBalance(ctx, balanceID)
		if err != nil {
			return err
		}
		if _, err := authz.Require(ctx, q, b.GroupID, user.ID, models.RoleMember); err != nil {
			return err
		}
		if !b.IsPaid {
			if err := q.MarkBalancePaid(ctx, balanceID, models.NowMillis()); err != nil {
				return err
			}
		}
		remaining, err := q.ListBalancesByChannel(ctx, b.ChannelID, false)
		if err != nil {
			return err
		}
		if len(remaining) == 0 {
			if err := q.SetSplitStatusByChannel(ctx, b.ChannelID, models.SplitSettled); err != nil {
				return err
			}
		}
		balance, err = q.GetBalance(ctx, balanceID)
		return err
	})
	if err != nil {
		return nil, fail("MarkBalancePaid", err, "balance_id", balanceID)
	}
	return connect.NewResponse(&api.BalanceResponse{Balance: toAPIBalance(balance)}), nil
}
