package model

import "context"

type contextKey string

const currentUserKey contextKey = "currentUser"

// WithCurrentUser returns a context carrying the acting user. Hooks read it
// through the statement context.
func WithCurrentUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, currentUserKey, user)
}

// CurrentUser returns the acting user, or nil for anonymous requests.
func CurrentUser(ctx context.Context) *User {
	if ctx == nil {
		return nil
	}
	user, _ := ctx.Value(currentUserKey).(*User)
	return user
}
