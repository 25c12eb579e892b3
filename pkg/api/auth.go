package api

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"
)

const (
	AuthServiceName = "crewchat.v1.AuthService"

	AuthServiceRegisterProcedure      = "/crewchat.v1.AuthService/Register"
	AuthServiceLoginProcedure         = "/crewchat.v1.AuthService/Login"
	AuthServiceMeProcedure            = "/crewchat.v1.AuthService/Me"
	AuthServiceUpdateProfileProcedure = "/crewchat.v1.AuthService/UpdateProfile"
	AuthServiceGetUserProcedure       = "/crewchat.v1.AuthService/GetUser"
)

// PublicProcedures can be called without a bearer token.
var PublicProcedures = map[string]bool{
	AuthServiceRegisterProcedure: true,
	AuthServiceLoginProcedure:    true,
}

type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	DisplayName string `json:"displayName" validate:"required,max=64"`
	Password    string `json:"password" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type MeResponse struct {
	User *User `json:"user"`
}

type UpdateProfileRequest struct {
	DisplayName string `json:"displayName" validate:"required,max=64"`
	Username    string `json:"username" validate:"required,max=32"`
}

type GetUserRequest struct {
	UserID string `json:"userId" validate:"required"`
}

type UserResponse struct {
	User *User `json:"user"`
}

type AuthServiceHandler interface {
	Register(context.Context, *connect.Request[RegisterRequest]) (*connect.Response[AuthResponse], error)
	Login(context.Context, *connect.Request[LoginRequest]) (*connect.Response[AuthResponse], error)
	Me(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[MeResponse], error)
	UpdateProfile(context.Context, *connect.Request[UpdateProfileRequest]) (*connect.Response[MeResponse], error)
	GetUser(context.Context, *connect.Request[GetUserRequest]) (*connect.Response[UserResponse], error)
}

// NewAuthServiceHandler returns the mount path and handler for svc.
func NewAuthServiceHandler(svc AuthServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	route(mux, AuthServiceRegisterProcedure, svc.Register, opts)
	route(mux, AuthServiceLoginProcedure, svc.Login, opts)
	route(mux, AuthServiceMeProcedure, svc.Me, opts)
	route(mux, AuthServiceUpdateProfileProcedure, svc.UpdateProfile, opts)
	route(mux, AuthServiceGetUserProcedure, svc.GetUser, opts)
	return "/" + AuthServiceName + "/", mux
}
