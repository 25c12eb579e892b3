package api

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"
)

const (
	SplitServiceName = "crewchat.v1.SplitService"

	SplitServiceCreateSplitProcedure         = "/crewchat.v1.SplitService/CreateSplit"
	SplitServiceAddItemProcedure             = "/crewchat.v1.SplitService/AddItem"
	SplitServiceClaimItemProcedure           = "/crewchat.v1.SplitService/ClaimItem"
	SplitServiceUnclaimItemProcedure         = "/crewchat.v1.SplitService/UnclaimItem"
	SplitServiceDeleteItemProcedure          = "/crewchat.v1.SplitService/DeleteItem"
	SplitServiceListSplitsProcedure          = "/crewchat.v1.SplitService/ListSplits"
	SplitServiceCalculateSettlementProcedure = "/crewchat.v1.SplitService/CalculateSettlement"
	SplitServiceListBalancesProcedure        = "/crewchat.v1.SplitService/ListBalances"
	SplitServiceMarkBalancePaidProcedure     = "/crewchat.v1.SplitService/MarkBalancePaid"
)

type NewSplitItem struct {
	Name     string `json:"name" validate:"required,max=100"`
	Price    int64  `json:"price" validate:"min=0"`
	Quantity int    `json:"quantity" validate:"min=0"`
}

type CreateSplitRequest struct {
	ChannelID   string         `json:"channelId" validate:"required"`
	Name        string         `json:"name" validate:"required,max=100"`
	TotalAmount int64          `json:"totalAmount" validate:"min=0"`
	TaxAmount   int64          `json:"taxAmount" validate:"min=0"`
	TipAmount   int64          `json:"tipAmount" validate:"min=0"`
	Items       []NewSplitItem `json:"items" validate:"dive"`
}

type SplitResponse struct {
	Split *Split `json:"split"`
}

type AddItemRequest struct {
	SplitID  string `json:"splitId" validate:"required"`
	Name     string `json:"name" validate:"required,max=100"`
	Price    int64  `json:"price" validate:"min=0"`
	Quantity int    `json:"quantity" validate:"min=0"`
}

type ItemRequest struct {
	ItemID string `json:"itemId" validate:"required"`
}

type SplitItemResponse struct {
	Item *SplitItem `json:"item"`
}

type ListSplitsRequest struct {
	ChannelID string `json:"channelId" validate:"required"`
}

type ListSplitsResponse struct {
	Splits []*Split `json:"splits"`
}

type ChannelBalancesRequest struct {
	ChannelID string `json:"channelId" validate:"required"`
}

type BalancesResponse struct {
	Balances []*Balance `json:"balances"`
}

type MarkBalancePaidRequest struct {
	BalanceID string `json:"balanceId" validate:"required"`
}

type BalanceResponse struct {
	Balance *Balance `json:"balance"`
}

type SplitServiceHandler interface {
	CreateSplit(context.Context, *connect.Request[CreateSplitRequest]) (*connect.Response[SplitResponse], error)
	AddItem(context.Context, *connect.Request[AddItemRequest]) (*connect.Response[SplitItemResponse], error)
	ClaimItem(context.Context, *connect.Request[ItemRequest]) (*connect.Response[SplitItemResponse], error)
	UnclaimItem(context.Context, *connect.Request[ItemRequest]) (*connect.Response[SplitItemResponse], error)
	DeleteItem(context.Context, *connect.Request[ItemRequest]) (*connect.Response[emptypb.Empty], error)
	ListSplits(context.Context, *connect.Request[ListSplitsRequest]) (*connect.Response[ListSplitsResponse], error)
	CalculateSettlement(context.Context, *connect.Request[ChannelBalancesRequest]) (*connect.Response[BalancesResponse], error)
	ListBalances(context.Context, *connect.Request[ChannelBalancesRequest]) (*connect.Response[BalancesResponse], error)
	MarkBalancePaid(context.Context, *connect.Request[MarkBalancePaidRequest]) (*connect.Response[BalanceResponse], error)
}

// NewSplitServiceHandler returns the mount path and handler for svc.
func NewSplitServiceHandler(svc SplitServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	route(mux, SplitServiceCreateSplitProcedure, svc.CreateSplit, opts)
	route(mux, SplitServiceAddItemProcedure, svc.AddItem, opts)
	route(mux, SplitServiceClaimItemProcedure, svc.ClaimItem, opts)
	route(mux, SplitServiceUnclaimItemProcedure, svc.UnclaimItem, opts)
	route(mux, SplitServiceDeleteItemProcedure, svc.DeleteItem, opts)
	route(mux, SplitServiceListSplitsProcedure, svc.ListSplits, opts)
	route(mux, SplitServiceCalculateSettlementProcedure, svc.CalculateSettlement, opts)
	route(mux, SplitServiceListBalancesProcedure, svc.ListBalances, opts)
	route(mux, SplitServiceMarkBalancePaidProcedure, svc.MarkBalancePaid, opts)
	return "/" + SplitServiceName + "/", mux
}
