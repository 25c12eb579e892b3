package api

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"
)

const (
	ReactionServiceName = "crewchat.v1.ReactionService"

	ReactionServiceAddReactionProcedure    = "/crewchat.v1.ReactionService/AddReaction"
	ReactionServiceRemoveReactionProcedure = "/crewchat.v1.ReactionService/RemoveReaction"
	ReactionServiceListReactionsProcedure  = "/crewchat.v1.ReactionService/ListReactions"
	ReactionServiceListPinsProcedure       = "/crewchat.v1.ReactionService/ListPins"
	ReactionServiceListHallOfFameProcedure = "/crewchat.v1.ReactionService/ListHallOfFame"
)

type AddReactionRequest struct {
	MessageID string `json:"messageId" validate:"required"`
	Emoji     string `json:"emoji" validate:"required,max=32"`
}

type AddReactionResponse struct {
	Reactions []ReactionSummary `json:"reactions"`
	Pinned    bool              `json:"pinned"`
	Enshrined *HallOfFameEntry  `json:"enshrined,omitempty"`
}

type RemoveReactionRequest struct {
	MessageID string `json:"messageId" validate:"required"`
	Emoji     string `json:"emoji" validate:"required,max=32"`
}

type ListReactionsRequest struct {
	MessageID string `json:"messageId" validate:"required"`
}

type ListReactionsResponse struct {
	Reactions []ReactionSummary `json:"reactions"`
}

type ListPinsRequest struct {
	ChannelID string `json:"channelId" validate:"required"`
}

type ListPinsResponse struct {
	Pins []*Pin `json:"pins"`
}

type ListHallOfFameRequest struct {
	GroupID string `json:"groupId" validate:"required"`
	Limit   int    `json:"limit" validate:"min=0,max=200"`
}

type ListHallOfFameResponse struct {
	Entries []*HallOfFameEntry `json:"entries"`
}

type ReactionServiceHandler interface {
	AddReaction(context.Context, *connect.Request[AddReactionRequest]) (*connect.Response[AddReactionResponse], error)
	RemoveReaction(context.Context, *connect.Request[RemoveReactionRequest]) (*connect.Response[emptypb.Empty], error)
	ListReactions(context.Context, *connect.Request[ListReactionsRequest]) (*connect.Response[ListReactionsResponse], error)
	ListPins(context.Context, *connect.Request[ListPinsRequest]) (*connect.Response[ListPinsResponse], error)
	ListHallOfFame(context.Context, *connect.Request[ListHallOfFameRequest]) (*connect.Response[ListHallOfFameResponse], error)
}

// NewReactionServiceHandler returns the mount path and handler for svc.
func NewReactionServiceHandler(svc ReactionServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	route(mux, ReactionServiceAddReactionProcedure, svc.AddReaction, opts)
	route(mux, ReactionServiceRemoveReactionProcedure, svc.RemoveReaction, opts)
	route(mux, ReactionServiceListReactionsProcedure, svc.ListReactions, opts)
	route(mux, ReactionServiceListPinsProcedure, svc.ListPins, opts)
	route(mux, ReactionServiceListHallOfFameProcedure, svc.ListHallOfFame, opts)
	return "/" + ReactionServiceName + "/", mux
}
