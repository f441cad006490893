// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values: the executing tenant, the caller's token and user id.
//
// The tenant scope is the switching primitive for all cross-tenant work. A
// switch never mutates shared state: RunAsTenant derives a child context for
// the unit of work, so the caller's context is untouched on every exit path
// and nested switches unwind correctly. Concurrent fan-outs across tenants
// therefore cannot contaminate each other's scope.
//
// Usage in services:
//
//	tenantID := requestcontext.TenantID(ctx)
//	err := requestcontext.RunAsTenant(ctx, "college", func(ctx context.Context) error { ... })
//
// Usage in middleware and tests:
//
//	ctx = requestcontext.WithTenantID(ctx, tenantID)
//	ctx = requestcontext.WithToken(ctx, token)
package requestcontext

import "context"

// Context key types (unexported for encapsulation).
type (
	tenantIDKey  struct{}
	tokenKey     struct{}
	userIDKey    struct{}
	requestIDKey struct{}
)

// Exported context keys for tests that need raw context.WithValue.
var (
	ContextKeyTenantID  = tenantIDKey{}
	ContextKeyToken     = tokenKey{}
	ContextKeyUserID    = userIDKey{}
	ContextKeyRequestID = requestIDKey{}
)

// TenantID retrieves the tenant the current operation executes under.
// Returns "" if not set.
func TenantID(ctx context.Context) string {
	if tenantID, ok := ctx.Value(ContextKeyTenantID).(string); ok {
		return tenantID
	}
	return ""
}

// WithTenantID injects an executing tenant into the context.
func WithTenantID(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, ContextKeyTenantID, tenantID)
}

// Token retrieves the auth token the current operation carries.
func Token(ctx context.Context) string {
	if token, ok := ctx.Value(ContextKeyToken).(string); ok {
		return token
	}
	return ""
}

// WithToken injects an auth token into the context.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, ContextKeyToken, token)
}

// UserID retrieves the acting user's id from the context.
func UserID(ctx context.Context) string {
	if userID, ok := ctx.Value(ContextKeyUserID).(string); ok {
		return userID
	}
	return ""
}

// WithUserID injects the acting user's id into the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ContextKeyUserID, userID)
}

// RequestID retrieves the request correlation id from the context.
func RequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return requestID
	}
	return ""
}

// WithRequestID injects a request correlation id into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// RunAsTenant executes work with the ambient scope rebound to tenantID. The
// rebinding is scoped to the derived context handed to work; errors from work
// propagate unchanged and no retry happens at this layer. Safe to nest: work
// running under tenant A may itself call RunAsTenant for tenant B.
func RunAsTenant(ctx context.Context, tenantID string, work func(ctx context.Context) error) error {
	return work(WithTenantID(ctx, tenantID))
}
