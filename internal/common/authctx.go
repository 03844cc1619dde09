package common

import "context"

type clientIDKey struct{}

// WithClientID stores the authenticated client identifier on the context.
func WithClientID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, clientIDKey{}, id)
}

// ClientIDFromContext extracts the authenticated client identifier if present.
func ClientIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	v, ok := ctx.Value(clientIDKey{}).(string)
	return v, ok && v != ""
}
