package logging

import (
	"context"
	"maps"

	"github.com/goliatone/go-portfolio/pkg/interfaces"
)

type contextKey string

const contextFieldsKey contextKey = "portfolio.logging.fields"

// RequestIDField is the field name used to correlate entries of one request.
const RequestIDField = "request_id"

// WithFields attaches structured fields when logger implements
// interfaces.FieldsLogger and returns logger unchanged otherwise.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if logger == nil || len(fields) == 0 {
		return logger
	}
	if fl, ok := logger.(interfaces.FieldsLogger); ok {
		return fl.WithFields(maps.Clone(fields))
	}
	return logger
}

// ContextWithFields returns a context carrying structured fields that context
// aware loggers merge into every entry. Fields already on ctx are kept unless
// overridden.
func ContextWithFields(ctx context.Context, fields map[string]any) context.Context {
	if ctx == nil || len(fields) == 0 {
		return ctx
	}

	merged := ContextFields(ctx)
	if merged == nil {
		merged = make(map[string]any, len(fields))
	}
	maps.Copy(merged, fields)
	return context.WithValue(ctx, contextFieldsKey, merged)
}

// ContextFields returns a copy of the fields stored on ctx, or nil.
func ContextFields(ctx context.Context) map[string]any {
	if ctx == nil {
		return nil
	}
	fields, ok := ctx.Value(contextFieldsKey).(map[string]any)
	if !ok || len(fields) == 0 {
		return nil
	}
	return maps.Clone(fields)
}

// RequestID returns the request id stored on ctx by the HTTP middleware.
func RequestID(ctx context.Context) string {
	id, _ := ContextFields(ctx)[RequestIDField].(string)
	return id
}
