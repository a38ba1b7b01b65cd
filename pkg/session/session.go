package session

import "context"

type contextKey struct{}

// Provider resolves the authenticated user id for a request
type Provider interface {
	CurrentUserID(ctx context.Context) (string, bool)
}

// WithUserID returns a context carrying the authenticated user id
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, contextKey{}, userID)
}

// UserID returns the user id stored by WithUserID
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(contextKey{}).(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// ContextProvider reads the user id from the request context
type ContextProvider struct{}

func (ContextProvider) CurrentUserID(ctx context.Context) (string, bool) {
	return UserID(ctx)
}
