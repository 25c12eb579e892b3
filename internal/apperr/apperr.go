// Package apperr defines the error taxonomy shared by stores and services.
//
// Stores and domain code wrap these sentinels with fmt.Errorf("...: %w");
// the RPC layer maps them to connect codes with ToConnect.
package apperr

import (
	"errors"
	"fmt"

	"connectrpc.com/connect"
)

var (
	ErrUnauthenticated  = errors.New("not authenticated")
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrValidation       = errors.New("invalid input")

	// ErrExternalService marks failures of the AI completion service.
	// It never reaches end users.
	ErrExternalService = errors.New("external service failure")
)

// NotFound returns an ErrNotFound naming the missing entity.
func NotFound(entity, id string) error {
	return fmt.Errorf("%s not found: %s: %w", entity, id, ErrNotFound)
}

// Denied returns an ErrPermissionDenied with a reason.
func Denied(reason string) error {
	return fmt.Errorf("%s: %w", reason, ErrPermissionDenied)
}

// Invalid returns an ErrValidation with a reason.
func Invalid(reason string) error {
	return fmt.Errorf("%s: %w", reason, ErrValidation)
}

// Code returns the connect code for err.
func Code(err error) connect.Code {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return connect.CodeUnauthenticated
	case errors.Is(err, ErrNotFound):
		return connect.CodeNotFound
	case errors.Is(err, ErrPermissionDenied):
		return connect.CodePermissionDenied
	case errors.Is(err, ErrValidation):
		return connect.CodeInvalidArgument
	case errors.Is(err, ErrExternalService):
		return connect.CodeUnavailable
	default:
		return connect.CodeInternal
	}
}

// ToConnect wraps err in a *connect.Error carrying the mapped code.
// Errors that already are connect errors pass through.
func ToConnect(err error) error {
	if err == nil {
		return nil
	}
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return err
	}
	return connect.NewError(Code(err), err)
}
