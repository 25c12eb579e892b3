package api

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"
)

const (
	GroupServiceName = "crewchat.v1.GroupService"

	GroupServiceCreateGroupProcedure               = "/crewchat.v1.GroupService/CreateGroup"
	GroupServiceJoinGroupProcedure                 = "/crewchat.v1.GroupService/JoinGroup"
	GroupServiceGetGroupProcedure                  = "/crewchat.v1.GroupService/GetGroup"
	GroupServiceListGroupsProcedure                = "/crewchat.v1.GroupService/ListGroups"
	GroupServiceUpdateHallOfFameThresholdProcedure = "/crewchat.v1.GroupService/UpdateHallOfFameThreshold"
	GroupServiceUpdateSenpaiSettingsProcedure      = "/crewchat.v1.GroupService/UpdateSenpaiSettings"
	GroupServiceUpdateMemberRoleProcedure          = "/crewchat.v1.GroupService/UpdateMemberRole"
	GroupServiceRemoveMemberProcedure              = "/crewchat.v1.GroupService/RemoveMember"
	GroupServiceLeaveGroupProcedure                = "/crewchat.v1.GroupService/LeaveGroup"
	GroupServiceTransferOwnershipProcedure         = "/crewchat.v1.GroupService/TransferOwnership"
)

type CreateGroupRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type CreateGroupResponse struct {
	Group   *Group   `json:"group"`
	Hangout *Channel `json:"hangout"`
}

type JoinGroupRequest struct {
	InviteCode string `json:"inviteCode" validate:"required,alphanum,len=8"`
}

type GetGroupRequest struct {
	GroupID string `json:"groupId" validate:"required"`
}

type GroupResponse struct {
	Group   *Group    `json:"group"`
	Members []*Member `json:"members,omitempty"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []*Group `json:"groups"`
}

type UpdateHallOfFameThresholdRequest struct {
	GroupID   string `json:"groupId" validate:"required"`
	Threshold int    `json:"threshold" validate:"min=1"`
}

type UpdateSenpaiSettingsRequest struct {
	GroupID     string `json:"groupId" validate:"required"`
	Enabled     bool   `json:"enabled"`
	Frequency   string `json:"frequency" validate:"required"`
	Personality string `json:"personality" validate:"max=500"`
}

type UpdateMemberRoleRequest struct {
	GroupID string `json:"groupId" validate:"required"`
	UserID  string `json:"userId" validate:"required"`
	Role    string `json:"role" validate:"required"`
}

type RemoveMemberRequest struct {
	GroupID string `json:"groupId" validate:"required"`
	UserID  string `json:"userId" validate:"required"`
}

type LeaveGroupRequest struct {
	GroupID string `json:"groupId" validate:"required"`
}

type TransferOwnershipRequest struct {
	GroupID    string `json:"groupId" validate:"required"`
	NewOwnerID string `json:"newOwnerId" validate:"required"`
}

type GroupServiceHandler interface {
	CreateGroup(context.Context, *connect.Request[CreateGroupRequest]) (*connect.Response[CreateGroupResponse], error)
	JoinGroup(context.Context, *connect.Request[JoinGroupRequest]) (*connect.Response[GroupResponse], error)
	GetGroup(context.Context, *connect.Request[GetGroupRequest]) (*connect.Response[GroupResponse], error)
	ListGroups(context.Context, *connect.Request[ListGroupsRequest]) (*connect.Response[ListGroupsResponse], error)
	UpdateHallOfFameThreshold(context.Context, *connect.Request[UpdateHallOfFameThresholdRequest]) (*connect.Response[GroupResponse], error)
	UpdateSenpaiSettings(context.Context, *connect.Request[UpdateSenpaiSettingsRequest]) (*connect.Response[GroupResponse], error)
	UpdateMemberRole(context.Context, *connect.Request[UpdateMemberRoleRequest]) (*connect.Response[emptypb.Empty], error)
	RemoveMember(context.Context, *connect.Request[RemoveMemberRequest]) (*connect.Response[emptypb.Empty], error)
	LeaveGroup(context.Context, *connect.Request[LeaveGroupRequest]) (*connect.Response[emptypb.Empty], error)
	TransferOwnership(context.Context, *connect.Request[TransferOwnershipRequest]) (*connect.Response[emptypb.Empty], error)
}

// NewGroupServiceHandler returns the mount path and handler for svc.
func NewGroupServiceHandler(svc GroupServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	route(mux, GroupServiceCreateGroupProcedure, svc.CreateGroup, opts)
	route(mux, GroupServiceJoinGroupProcedure, svc.JoinGroup, opts)
	route(mux, GroupServiceGetGroupProcedure, svc.GetGroup, opts)
	route(mux, GroupServiceListGroupsProcedure, svc.ListGroups, opts)
	route(mux, GroupServiceUpdateHallOfFameThresholdProcedure, svc.UpdateHallOfFameThreshold, opts)
	route(mux, GroupServiceUpdateSenpaiSettingsProcedure, svc.UpdateSenpaiSettings, opts)
	route(mux, GroupServiceUpdateMemberRoleProcedure, svc.UpdateMemberRole, opts)
	route(mux, GroupServiceRemoveMemberProcedure, svc.RemoveMember, opts)
	route(mux, GroupServiceLeaveGroupProcedure, svc.LeaveGroup, opts)
	route(mux, GroupServiceTransferOwnershipProcedure, svc.TransferOwnership, opts)
	return "/" + GroupServiceName + "/", mux
}
