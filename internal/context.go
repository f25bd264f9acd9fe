package internal

import (
	"context"
	"time"
)

type ctxKey string

const (
	contextIdentityKey ctxKey = "identity"
	contextTraceKey    ctxKey = "traceID"
)

// Identity is the verified caller extracted from a bearer token.
type Identity struct {
	UserID int64  `json:"user_id"`
	RoleID int64  `json:"role_id"`
	Email  string `json:"email"`
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	id, ok := ctx.Value(contextIdentityKey).(Identity)
	return id, ok
}

func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextIdentityKey, id)
}

func TraceIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if traceID, ok := ctx.Value(contextTraceKey).(string); ok {
		return traceID
	}
	return ""
}

func ContextWithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, contextTraceKey, traceID)
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
