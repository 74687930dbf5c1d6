package authz

import (
	"context"
	"errors"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
)

type AuthUser struct {
	ID          int64
	ClerkUserID string
	DisplayName string
	Email       string
}

type userContextKey struct{}

func ContextWithUser(ctx context.Context, user *AuthUser) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext retrieves the AuthUser stored in ctx.
// It returns nil if ctx is nil, if no user is stored, or if the stored value has a different type.
func UserFromContext(ctx context.Context) *AuthUser {
	if ctx == nil {
		return nil
	}

	user, ok := ctx.Value(userContextKey{}).(*AuthUser)
	if !ok {
		return nil
	}

	return user
}

// ResolveCaller returns the user ID a request acts as. When requireSession
// is set the session user is authoritative and a differing claimedUserID is
// forbidden. Otherwise the claimed ID is trusted, falling back to the session
// user; zero means no caller could be determined.
func ResolveCaller(ctx context.Context, claimedUserID int64, requireSession bool) (int64, error) {
	user := UserFromContext(ctx)
	if requireSession {
		if user == nil {
			return 0, ErrUnauthenticated
		}
		if claimedUserID != 0 && claimedUserID != user.ID {
			return 0, ErrForbidden
		}
		return user.ID, nil
	}

	if claimedUserID > 0 {
		return claimedUserID, nil
	}
	if user != nil {
		return user.ID, nil
	}
	return 0, nil
}
