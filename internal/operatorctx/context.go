package operatorctx

import (
	"context"
	"strings"
)

type operatorKey struct{}

// DefaultOperator is recorded on inventory and financial rows when the
// request did not name an acting user.
const DefaultOperator = "system"

// WithOperator stores the acting user in the context.
func WithOperator(ctx context.Context, operator string) context.Context {
	return context.WithValue(ctx, operatorKey{}, strings.TrimSpace(operator))
}

// OperatorFromContext returns the acting user, falling back to DefaultOperator.
func OperatorFromContext(ctx context.Context) string {
	if ctx == nil {
		return DefaultOperator
	}
	if value, ok := ctx.Value(operatorKey{}).(string); ok && value != "" {
		return value
	}
	return DefaultOperator
}
