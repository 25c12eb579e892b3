package api

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"
)

const (
	MessageServiceName = "crewchat.v1.MessageService"

	MessageServiceSendMessageProcedure    = "/crewchat.v1.MessageService/SendMessage"
	MessageServiceEditMessageProcedure    = "/crewchat.v1.MessageService/EditMessage"
	MessageServiceDeleteMessageProcedure  = "/crewchat.v1.MessageService/DeleteMessage"
	MessageServiceListMessagesProcedure   = "/crewchat.v1.MessageService/ListMessages"
	MessageServiceListThreadProcedure     = "/crewchat.v1.MessageService/ListThread"
	MessageServiceGetMessageProcedure     = "/crewchat.v1.MessageService/GetMessage"
	MessageServiceSearchMessagesProcedure = "/crewchat.v1.MessageService/SearchMessages"
)

// DefaultPageSize applies when ListMessagesRequest.Limit is zero.
const DefaultPageSize = 50

type SendMessageRequest struct {
	ChannelID      string `json:"channelId" validate:"required"`
	Body           string `json:"body" validate:"required,max=4000"`
	ThreadParentID string `json:"threadParentId"`
}

type EditMessageRequest struct {
	MessageID string `json:"messageId" validate:"required"`
	Body      string `json:"body" validate:"required,max=4000"`
}

type DeleteMessageRequest struct {
	MessageID string `json:"messageId" validate:"required"`
}

type MessageResponse struct {
	Message *Message `json:"message"`
}

type ListMessagesRequest struct {
	ChannelID string `json:"channelId" validate:"required"`
	// Before and BeforeID come from the previous page's NextCursor and
	// NextCursorID. A zero Before starts from the newest message.
	Before   int64  `json:"before" validate:"min=0"`
	BeforeID string `json:"beforeId"`
	Limit    int    `json:"limit" validate:"min=0,max=200"`
}

type ListMessagesResponse struct {
	Messages []*Message `json:"messages"`
	// NextCursor and NextCursorID identify the oldest returned message.
	// Both are empty when the page was not full.
	NextCursor   int64  `json:"nextCursor,omitempty"`
	NextCursorID string `json:"nextCursorId,omitempty"`
}

type GetMessageRequest struct {
	MessageID string `json:"messageId" validate:"required"`
}

type SearchMessagesRequest struct {
	ChannelID string `json:"channelId" validate:"required"`
	Query     string `json:"query" validate:"required,max=200"`
	Limit     int    `json:"limit" validate:"min=0,max=200"`
}

type SearchMessagesResponse struct {
	Messages []*Message `json:"messages"`
}

type ListThreadRequest struct {
	MessageID string `json:"messageId" validate:"required"`
}

type ListThreadResponse struct {
	Parent  *Message   `json:"parent"`
	Replies []*Message `json:"replies"`
}

type MessageServiceHandler interface {
	SendMessage(context.Context, *connect.Request[SendMessageRequest]) (*connect.Response[MessageResponse], error)
	EditMessage(context.Context, *connect.Request[EditMessageRequest]) (*connect.Response[MessageResponse], error)
	DeleteMessage(context.Context, *connect.Request[DeleteMessageRequest]) (*connect.Response[emptypb.Empty], error)
	ListMessages(context.Context, *connect.Request[ListMessagesRequest]) (*connect.Response[ListMessagesResponse], error)
	ListThread(context.Context, *connect.Request[ListThreadRequest]) (*connect.Response[ListThreadResponse], error)
	GetMessage(context.Context, *connect.Request[GetMessageRequest]) (*connect.Response[MessageResponse], error)
	SearchMessages(context.Context, *connect.Request[SearchMessagesRequest]) (*connect.Response[SearchMessagesResponse], error)
}

// NewMessageServiceHandler returns the mount path and handler for svc.
func NewMessageServiceHandler(svc MessageServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	route(mux, MessageServiceSendMessageProcedure, svc.SendMessage, opts)
	route(mux, MessageServiceEditMessageProcedure, svc.EditMessage, opts)
	route(mux, MessageServiceDeleteMessageProcedure, svc.DeleteMessage, opts)
	route(mux, MessageServiceListMessagesProcedure, svc.ListMessages, opts)
	route(mux, MessageServiceListThreadProcedure, svc.ListThread, opts)
	route(mux, MessageServiceGetMessageProcedure, svc.GetMessage, opts)
	route(mux, MessageServiceSearchMessagesProcedure, svc.SearchMessages, opts)
	return "/" + MessageServiceName + "/", mux
}
