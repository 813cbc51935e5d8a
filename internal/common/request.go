package common

import (
	"context"
	"net/http"
	"strings"

	"github.com/soundtrail/backend/internal/entity"
)

type requestUserKey struct{}

// WithRequestUser binds the user resolved from the bearer token to ctx.
func WithRequestUser(ctx context.Context, user *entity.User) context.Context {
	return context.WithValue(ctx, requestUserKey{}, user)
}

func RequestUser(ctx context.Context) *entity.User {
	user, _ := ctx.Value(requestUserKey{}).(*entity.User)
	return user
}

// BearerToken returns the token of an "Authorization: Bearer <token>" header,
// or an empty string.
func BearerToken(req *http.Request) string {
	if req == nil {
		return ""
	}

	auth, token, found := strings.Cut(req.Header.Get("Authorization"), " ")
	if !found || !strings.EqualFold(auth, "Bearer") {
		return ""
	}

	return strings.TrimSpace(token)
}
