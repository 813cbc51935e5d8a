package middleware

import (
	"context"

	"github.com/soundtrail/backend/internal/common"
	"github.com/soundtrail/backend/internal/domain/session"
	"github.com/soundtrail/backend/pkg/errorx"
	"github.com/soundtrail/backend/pkg/router"
	"github.com/soundtrail/backend/pkg/xcontext"
)

// Authenticate resolves the bearer token of the request to the live user.
func Authenticate(verifier *session.Verifier) router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		token := common.BearerToken(xcontext.HTTPRequest(ctx))
		if token == "" {
			return nil, errorx.New(errorx.Unauthenticated, "You need to authenticate before")
		}

		result, err := verifier.Verify(ctx, token)
		if err != nil {
			return nil, err
		}

		ctx = xcontext.WithRequestUserID(ctx, result.User.ID)
		ctx = common.WithRequestUser(ctx, result.User)
		return ctx, nil
	}
}
