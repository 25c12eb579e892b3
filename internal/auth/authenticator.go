package auth

import (
	"context"

	"github.com/mmynk/crewchat/internal/models"
)

// Authenticator turns login credentials into crewchat users. The RPC layer
// only sees this interface; PasswordAuthenticator is the built-in one and an
// external identity provider can replace it as long as it hands back users
// with a stable Subject.
type Authenticator interface {
	// Register creates an account. It fails with ErrEmailExists when the
	// address is taken.
	Register(ctx context.Context, email, displayName, credential string) (*models.User, error)

	// Authenticate returns the account for email, or ErrInvalidCredentials.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential rejects a credential before anything is stored.
	ValidateCredential(credential string) error
}
