package apperr

import (
	"errors"
	"fmt"
	"testing"

	"connectrpc.com/connect"
)

func TestToConnect(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want connect.Code
	}{
		{"unauthenticated", ErrUnauthenticated, connect.CodeUnauthenticated},
		{"not found", NotFound("channel", "c1"), connect.CodeNotFound},
		{"denied", Denied("admins only"), connect.CodePermissionDenied},
		{"invalid", Invalid("empty name"), connect.CodeInvalidArgument},
		{"wrapped twice", fmt.Errorf("load: %w", NotFound("split", "s1")), connect.CodeNotFound},
		{"unknown", errors.New("disk full"), connect.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ToConnect(tt.err)
			var connectErr *connect.Error
			if !errors.As(err, &connectErr) {
				t.Fatalf("expected *connect.Error, got %T", err)
			}
			if connectErr.Code() != tt.want {
				t.Errorf("code = %v, want %v", connectErr.Code(), tt.want)
			}
		})
	}
}

func TestToConnect_PassesThroughConnectErrors(t *testing.T) {
	orig := connect.NewError(connect.CodeResourceExhausted, errors.New("slow down"))
	if got := ToConnect(orig); got != orig {
		t.Errorf("expected the same error back, got %v", got)
	}
	if ToConnect(nil) != nil {
		t.Error("expected nil for nil error")
	}
}
