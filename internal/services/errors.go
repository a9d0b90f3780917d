package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	rabbit "sales-order-service/internal/infra/rabbitmq"
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrWrongDeletePassword = errors.New("wrong delete password")
	ErrNotEditable         = errors.New("not editable")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrDuplicateUsername   = errors.New("username already taken")

	ErrOrderNotFound       = errors.New("order not found")
	ErrProductNotFound     = errors.New("product not found")
	ErrCustomerNotFound    = errors.New("customer not found")
	ErrSalespersonNotFound = errors.New("salesperson not found")
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}

// publish is best-effort; a broker failure never undoes a saved change.
func publish(ctx context.Context, pub rabbit.PublisherInterface, pattern string, evt any) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, pattern, evt); err != nil {
		slog.WarnContext(ctx, "failed to publish event", "pattern", pattern, "err", err)
	}
}
