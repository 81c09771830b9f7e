package identity

import "context"

type ctxKey string

const userKey ctxKey = "prospecta.user"

// UserInfo is the authenticated principal attached to a request.
type UserInfo struct {
	ID    string
	Email string
}

// WithUser stores the authenticated user in context.
func WithUser(ctx context.Context, user UserInfo) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext extracts the authenticated user if present.
func UserFromContext(ctx context.Context) (UserInfo, bool) {
	val := ctx.Value(userKey)
	if val == nil {
		return UserInfo{}, false
	}
	user, ok := val.(UserInfo)
	return user, ok && user.ID != ""
}
