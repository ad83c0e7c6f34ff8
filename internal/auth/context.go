package auth

import (
	"context"
	"errors"
	"time"
)

// ErrUnauthorized is returned by Require when the request carries no valid
// admin session.
var ErrUnauthorized = errors.New("auth: not authenticated")

// Context is the per-request authentication state. It is built once by
// Middleware and passed down explicitly through the request context.
type Context struct {
	Username      string
	Authenticated bool
	IssuedAt      time.Time
	RequestID     string
}

type contextKey struct{}

// WithContext stores ac on ctx.
func WithContext(ctx context.Context, ac Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ac)
}

// FromContext returns the auth context, or an anonymous one when none was set.
func FromContext(ctx context.Context) Context {
	if ctx == nil {
		return Context{}
	}
	ac, _ := ctx.Value(contextKey{}).(Context)
	return ac
}

// Require returns ErrUnauthorized unless ctx belongs to an authenticated admin.
func Require(ctx context.Context) error {
	if !FromContext(ctx).Authenticated {
		return ErrUnauthorized
	}
	return nil
}
