package middleware

import (
	"context"

	"github.com/studiosite/studiosite-backend/pkg/auth"
)

type contextKey string

const (
	ctxBearerIdentity  contextKey = "bearer_identity"
	ctxSessionIdentity contextKey = "session_identity"
	ctxCallerIsAdmin   contextKey = "caller_is_admin"
)

// BearerIdentity returns the identity verified from the Authorization header.
func BearerIdentity(ctx context.Context) *auth.Identity {
	if ctx == nil {
		return nil
	}
	id, _ := ctx.Value(ctxBearerIdentity).(*auth.Identity)
	return id
}

// SessionIdentity returns the identity verified from the session cookie.
func SessionIdentity(ctx context.Context) *auth.Identity {
	if ctx == nil {
		return nil
	}
	id, _ := ctx.Value(ctxSessionIdentity).(*auth.Identity)
	return id
}

// IdentityFromContext merges both channels. The bearer identity wins when both
// resolved; its Source is then reported as both.
func IdentityFromContext(ctx context.Context) *auth.Identity {
	bearer := BearerIdentity(ctx)
	sess := SessionIdentity(ctx)
	switch {
	case bearer != nil && sess != nil:
		merged := *bearer
		merged.Source = auth.SourceBoth
		return &merged
	case bearer != nil:
		return bearer
	default:
		return sess
	}
}

// CallerIsAdmin reports whether an admin guard admitted the request as admin.
func CallerIsAdmin(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	v, _ := ctx.Value(ctxCallerIsAdmin).(bool)
	return v
}

func withBearerIdentity(ctx context.Context, id *auth.Identity) context.Context {
	return context.WithValue(ctx, ctxBearerIdentity, id)
}

func withSessionIdentity(ctx context.Context, id *auth.Identity) context.Context {
	return context.WithValue(ctx, ctxSessionIdentity, id)
}

func withCallerIsAdmin(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxCallerIsAdmin, true)
}

// WithIdentity attaches a bearer identity; controllers' tests use it to skip resolution.
func WithIdentity(ctx context.Context, id *auth.Identity) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return withBearerIdentity(ctx, id)
}
