package middleware

import "context"

// ctxKey values are unexported so only this package can write request
// identity onto a context.
type ctxKey uint8

const (
	ctxUserID ctxKey = iota + 1
	ctxRole
	ctxRequestID
)

func withString(ctx context.Context, key ctxKey, value string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, key, value)
}

func stringFrom(ctx context.Context, key ctxKey) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(key).(string)
	return v
}

// WithRequestID stores the request id on the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return withString(ctx, ctxRequestID, requestID)
}

// RequestIDFromContext returns the id assigned by RequestID, if any.
func RequestIDFromContext(ctx context.Context) string { return stringFrom(ctx, ctxRequestID) }

// WithUserID records the authenticated user; set by Auth.
func WithUserID(ctx context.Context, userID string) context.Context {
	return withString(ctx, ctxUserID, userID)
}

func UserIDFromContext(ctx context.Context) string { return stringFrom(ctx, ctxUserID) }

// WithRole records the authenticated role; set by Auth.
func WithRole(ctx context.Context, role string) context.Context {
	return withString(ctx, ctxRole, role)
}

func RoleFromContext(ctx context.Context) string { return stringFrom(ctx, ctxRole) }
