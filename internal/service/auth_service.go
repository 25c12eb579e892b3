package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/mmynk/crewchat/internal/apperr"
	"github.com/mmynk/crewchat/internal/auth"
	"github.com/mmynk/crewchat/internal/storage"
	"github.com/mmynk/crewchat/pkg/api"
)

// AuthService implements the AuthService RPC interface.
type AuthService struct {
	authenticator auth.Authenticator
	users         storage.UserQueries
	jwtManager    *auth.JWTManager
	logger        *slog.Logger
}

// NewAuthService creates a new authentication service. users backs the
// profile operations.
func NewAuthService(authenticator auth.Authenticator, users storage.UserQueries, jwtManager *auth.JWTManager, logger *slog.Logger) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		users:         users,
		jwtManager:    jwtManager,
		logger:        logger,
	}
}

// Register creates a new user account and returns a session token.
func (s *AuthService) Register(ctx context.Context, req *connect.Request[api.RegisterRequest]) (*connect.Response[api.AuthResponse], error) {
	email := strings.ToLower(strings.TrimSpace(req.Msg.Email))
	displayName := strings.TrimSpace(req.Msg.DisplayName)
	s.logger.Info("Register request", "email", email)

	if email == "" || displayName == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("email and display name are required"))
	}

	user, err := s.authenticator.Register(ctx, email, displayName, req.Msg.Password)
	if err != nil {
		s.logger.Warn("Registration failed", "email", email, "error", err)
		if errors.Is(err, auth.ErrEmailExists) {
			return nil, connect.NewError(connect.CodeAlreadyExists, err)
		}
		return nil, fail("Register", err)
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", user.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	s.logger.Info("User registered successfully", "user_id", user.ID, "email", user.Email)
	return connect.NewResponse(&api.AuthResponse{User: toAPIUser(user), Token: token}), nil
}

// Login authenticates a user and returns a JWT token.
func (s *AuthService) Login(ctx context.Context, req *connect.Request[api.LoginRequest]) (*connect.Response[api.AuthResponse], error) {
	email := strings.ToLower(strings.TrimSpace(req.Msg.Email))
	s.logger.Info("Login request", "email", email)

	user, err := s.authenticator.Authenticate(ctx, email, req.Msg.Password)
	if err != nil {
		s.logger.Warn("Login failed", "email", email, "error", err)
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidCredentials)
		}
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", user.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	s.logger.Info("User logged in successfully", "user_id", user.ID)
	return connect.NewResponse(&api.AuthResponse{User: toAPIUser(user), Token: token}), nil
}

// Me returns the authenticated user.
func (s *AuthService) Me(ctx context.Context, _ *connect.Request[emptypb.Empty]) (*connect.Response[api.MeResponse], error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.MeResponse{User: toAPIUser(user)}), nil
}

// UpdateProfile changes the caller's display name and username. Email and
// password stay as they are.
func (s *AuthService) UpdateProfile(ctx context.Context, req *connect.Request[api.UpdateProfileRequest]) (*connect.Response[api.MeResponse], error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	displayName := strings.TrimSpace(req.Msg.DisplayName)
	username := strings.TrimSpace(req.Msg.Username)
	if displayName == "" || username == "" {
		return nil, fail("UpdateProfile", apperr.Invalid("display name and username are required"), "user_id", user.ID)
	}

	if err := s.users.UpdateUserProfile(ctx, user.ID, displayName, username); err != nil {
		return nil, fail("UpdateProfile", err, "user_id", user.ID)
	}
	updated, err := s.users.GetUserByID(ctx, user.ID)
	if err != nil {
		return nil, fail("UpdateProfile", err, "user_id", user.ID)
	}
	s.logger.Info("Profile updated", "user_id", user.ID)
	return connect.NewResponse(&api.MeResponse{User: toAPIUser(updated)}), nil
}

// GetUser looks up any user by id.
func (s *AuthService) GetUser(ctx context.Context, req *connect.Request[api.GetUserRequest]) (*connect.Response[api.UserResponse], error) {
	if _, err := currentUser(ctx); err != nil {
		return nil, err
	}
	user, err := s.users.GetUserByID(ctx, req.Msg.UserID)
	if err != nil {
		return nil, fail("GetUser", err, "target_user_id", req.Msg.UserID)
	}
	return connect.NewResponse(&api.UserResponse{User: toAPIUser(user)}), nil
}
