package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mmynk/crewchat/internal/apperr"
	"github.com/mmynk/crewchat/internal/models"
)

type memoryUsers map[string]*models.User

func (m memoryUsers) CreateUser(ctx context.Context, user *models.User) error {
	m[user.Email] = user
	return nil
}

func (m memoryUsers) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if u, ok := m[email]; ok {
		return u, nil
	}
	return nil, apperr.NotFound("user", email)
}

func TestJWTManager(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Hour)
	user := models.NewUser("alice@example.com", "Alice", "")

	token, err := manager.Generate(user)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	claims, err := manager.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.Subject != user.Subject {
		t.Errorf("Subject = %q, want %q", claims.Subject, user.Subject)
	}
	if claims.Email != user.Email {
		t.Errorf("Email = %q, want %q", claims.Email, user.Email)
	}

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTManager("other-secret", time.Hour)
		if _, err := other.Validate(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("expired", func(t *testing.T) {
		expired := NewJWTManager("test-secret", -time.Minute)
		old, err := expired.Generate(user)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if _, err := manager.Validate(old); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("foreign issuer", func(t *testing.T) {
		foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, &SessionClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "someone-else",
				Subject:   user.Subject,
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})
		signed, err := foreign.SignedString([]byte("test-secret"))
		if err != nil {
			t.Fatalf("SignedString failed: %v", err)
		}
		if _, err := manager.Validate(signed); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("other hmac algorithm", func(t *testing.T) {
		hs512 := jwt.NewWithClaims(jwt.SigningMethodHS512, &SessionClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    tokenIssuer,
				Subject:   user.Subject,
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})
		signed, err := hs512.SignedString([]byte("test-secret"))
		if err != nil {
			t.Fatalf("SignedString failed: %v", err)
		}
		if _, err := manager.Validate(signed); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("tokens are unique", func(t *testing.T) {
		again, err := manager.Generate(user)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		second, err := manager.Validate(again)
		if err != nil {
			t.Fatalf("Validate failed: %v", err)
		}
		if second.ID == "" || second.ID == claims.ID {
			t.Errorf("token ids = %q and %q, want distinct", claims.ID, second.ID)
		}
	})

	t.Run("user without subject", func(t *testing.T) {
		if _, err := manager.Generate(&models.User{ID: "u1"}); err == nil {
			t.Error("expected an error for a user without a subject")
		}
	})
}

func TestPasswordAuthenticator(t *testing.T) {
	ctx := context.Background()
	a := NewPasswordAuthenticator(memoryUsers{})

	if _, err := a.Register(ctx, "bob@example.com", "Bob", "short"); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("expected weak password validation error, got %v", err)
	}

	user, err := a.Register(ctx, "bob@example.com", "Bob", "correct-horse")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.PasswordHash == "correct-horse" {
		t.Error("password stored in plain text")
	}

	if _, err := a.Register(ctx, "bob@example.com", "Bob", "correct-horse"); !errors.Is(err, ErrEmailExists) {
		t.Errorf("expected ErrEmailExists, got %v", err)
	}

	if _, err := a.Authenticate(ctx, "bob@example.com", "correct-horse"); err != nil {
		t.Errorf("Authenticate failed: %v", err)
	}
	if _, err := a.Authenticate(ctx, "bob@example.com", "wrong-password"); !errors.Is(err, apperr.ErrUnauthenticated) {
		t.Errorf("expected unauthenticated, got %v", err)
	}
	if _, err := a.Authenticate(ctx, "nobody@example.com", "whatever1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}
