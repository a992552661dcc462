package usecase

import (
	"context"

	"github.com/fastygo/erp-audit/domain"
)

// ActionLogger records a user action in the activity log. Implementations
// never fail the caller.
type ActionLogger interface {
	LogAction(ctx context.Context, action string, module domain.Module, details string)
}

// NopActionLogger discards every action.
type NopActionLogger struct{}

func (NopActionLogger) LogAction(context.Context, string, domain.Module, string) {}
