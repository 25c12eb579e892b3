package api

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
)

const (
	ChannelServiceName = "crewchat.v1.ChannelService"

	ChannelServiceCreateChannelProcedure   = "/crewchat.v1.ChannelService/CreateChannel"
	ChannelServiceForkFromMessageProcedure = "/crewchat.v1.ChannelService/ForkFromMessage"
	ChannelServiceListChannelsProcedure    = "/crewchat.v1.ChannelService/ListChannels"
	ChannelServiceGetChannelProcedure      = "/crewchat.v1.ChannelService/GetChannel"
	ChannelServiceUpdateChannelProcedure   = "/crewchat.v1.ChannelService/UpdateChannel"
	ChannelServiceArchiveChannelProcedure  = "/crewchat.v1.ChannelService/ArchiveChannel"
)

type CreateChannelRequest struct {
	GroupID string `json:"groupId" validate:"required"`
	Name    string `json:"name" validate:"required,max=80"`
	Icon    string `json:"icon" validate:"max=16"`
	Type    string `json:"type" validate:"required,oneof=hangout event bracket"`

	EventDate       int64  `json:"eventDate" validate:"min=0"`
	EventEndDate    int64  `json:"eventEndDate" validate:"min=0"`
	EventLocation   string `json:"eventLocation" validate:"max=200"`
	BracketQuestion string `json:"bracketQuestion" validate:"max=280"`
}

type ForkFromMessageRequest struct {
	MessageID string `json:"messageId" validate:"required"`
	Name      string `json:"name" validate:"required,max=80"`
	Icon      string `json:"icon" validate:"max=16"`
	Type      string `json:"type" validate:"required,oneof=hangout event bracket"`

	EventDate       int64  `json:"eventDate" validate:"min=0"`
	BracketQuestion string `json:"bracketQuestion" validate:"max=280"`
}

type ForkFromMessageResponse struct {
	Channel       *Channel `json:"channel"`
	SystemMessage *Message `json:"systemMessage"`
}

type ListChannelsRequest struct {
	GroupID string `json:"groupId" validate:"required"`
}

type ListChannelsResponse struct {
	Channels []*Channel `json:"channels"`
}

type GetChannelRequest struct {
	ChannelID string `json:"channelId" validate:"required"`
}

type UpdateChannelRequest struct {
	ChannelID string `json:"channelId" validate:"required"`
	Name      string `json:"name" validate:"required,max=80"`
	Icon      string `json:"icon" validate:"max=16"`
}

type ArchiveChannelRequest struct {
	ChannelID string `json:"channelId" validate:"required"`
}

type ChannelResponse struct {
	Channel *Channel `json:"channel"`
}

type ChannelServiceHandler interface {
	CreateChannel(context.Context, *connect.Request[CreateChannelRequest]) (*connect.Response[ChannelResponse], error)
	ForkFromMessage(context.Context, *connect.Request[ForkFromMessageRequest]) (*connect.Response[ForkFromMessageResponse], error)
	ListChannels(context.Context, *connect.Request[ListChannelsRequest]) (*connect.Response[ListChannelsResponse], error)
	GetChannel(context.Context, *connect.Request[GetChannelRequest]) (*connect.Response[ChannelResponse], error)
	UpdateChannel(context.Context, *connect.Request[UpdateChannelRequest]) (*connect.Response[ChannelResponse], error)
	ArchiveChannel(context.Context, *connect.Request[ArchiveChannelRequest]) (*connect.Response[ChannelResponse], error)
}

// NewChannelServiceHandler returns the mount path and handler for svc.
func NewChannelServiceHandler(svc ChannelServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	route(mux, ChannelServiceCreateChannelProcedure, svc.CreateChannel, opts)
	route(mux, ChannelServiceForkFromMessageProcedure, svc.ForkFromMessage, opts)
	route(mux, ChannelServiceListChannelsProcedure, svc.ListChannels, opts)
	route(mux, ChannelServiceGetChannelProcedure, svc.GetChannel, opts)
	route(mux, ChannelServiceUpdateChannelProcedure, svc.UpdateChannel, opts)
	route(mux, ChannelServiceArchiveChannelProcedure, svc.ArchiveChannel, opts)
	return "/" + ChannelServiceName + "/", mux
}
