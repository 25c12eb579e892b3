package middleware

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"connectrpc.com/connect"
	"github.com/go-playground/validator/v10"
)

// ValidationInterceptor checks the validate struct tags of every request
// message and answers InvalidArgument naming the offending fields.
func ValidationInterceptor() connect.UnaryInterceptorFunc {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if err := v.Struct(req.Any()); err != nil {
				var fieldErrs validator.ValidationErrors
				if errors.As(err, &fieldErrs) {
					return nil, connect.NewError(connect.CodeInvalidArgument, describe(fieldErrs))
				}
				// Not a struct; nothing to check.
				var invalid *validator.InvalidValidationError
				if !errors.As(err, &invalid) {
					return nil, connect.NewError(connect.CodeInternal, err)
				}
			}
			return next(ctx, req)
		}
	}
}

func describe(errs validator.ValidationErrors) error {
	parts := make([]string, 0, len(errs))
	for _, fe := range errs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s: %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s: %s", fe.Field(), fe.Tag()))
		}
	}
	return fmt.Errorf("invalid request: %s", strings.Join(parts, "; "))
}
