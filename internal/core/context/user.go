// Package context provides request-scoped values extraction.
package context

import (
	"context"
)

// UserContext contains the identity of the operator behind a request.
type UserContext struct {
	UserID      string
	DisplayName string
	Email       string
	Role        string
}

type userContextKey struct{}

// WithUser adds UserContext to context.
func WithUser(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// GetUser returns UserContext from context.
func GetUser(ctx context.Context) *UserContext {
	if v, ok := ctx.Value(userContextKey{}).(*UserContext); ok {
		return v
	}
	return nil
}
