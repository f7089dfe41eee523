package domain

import "context"

type userKey struct{}

// WithUserID stores the authenticated numeric user id in the context.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userKey{}, userID)
}

// UserIDFromContext extracts the authenticated user id from the context.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userKey{}).(int64)
	return id, ok && id > 0
}

// RequireUser returns an UnauthenticatedError unless userID identifies a caller.
func RequireUser(userID int64) error {
	if userID <= 0 {
		return ErrUnauthenticated("authentication required")
	}
	return nil
}
