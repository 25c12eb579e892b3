package middleware

import (
	"context"
	"errors"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/crewchat/internal/apperr"
	"github.com/mmynk/crewchat/internal/auth"
	"github.com/mmynk/crewchat/internal/models"
	"github.com/mmynk/crewchat/pkg/api"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// userKey is the context key for the authenticated *models.User.
const userKey contextKey = "user"

// UserResolver maps a token subject to a stored user.
type UserResolver interface {
	GetUserBySubject(ctx context.Context, subject string) (*models.User, error)
}

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user *models.User) context.Context {
	if info := callInfoFrom(ctx); info != nil {
		info.userID = user.ID
	}
	return context.WithValue(ctx, userKey, user)
}

// GetUser extracts the authenticated user from the context.
// Returns nil if not found.
func GetUser(ctx context.Context) *models.User {
	user, _ := ctx.Value(userKey).(*models.User)
	return user
}

// GetUserID extracts the user ID from the context.
// Returns empty string if not found.
func GetUserID(ctx context.Context) string {
	if user := GetUser(ctx); user != nil {
		return user.ID
	}
	return ""
}

// RequireAuth returns a middleware that validates JWT tokens and requires authentication.
// It extracts the token from the Authorization header, validates it, resolves
// the token subject to a user and adds that user to the request context.
// Procedures listed in api.PublicProcedures pass through untouched.
func RequireAuth(jwtManager *auth.JWTManager, users UserResolver) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if api.PublicProcedures[req.Spec().Procedure] {
				return next(ctx, req)
			}

			authHeader := req.Header().Get("Authorization")
			if authHeader == "" {
				return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
			}

			tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || tokenString == "" {
				return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidToken)
			}

			claims, err := jwtManager.Validate(tokenString)
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}

			user, err := users.GetUserBySubject(ctx, claims.Subject)
			if err != nil {
				if errors.Is(err, apperr.ErrNotFound) {
					return nil, connect.NewError(connect.CodeNotFound, errors.New("user not found"))
				}
				return nil, connect.NewError(connect.CodeInternal, err)
			}

			return next(WithUser(ctx, user), req)
		}
	}
}
