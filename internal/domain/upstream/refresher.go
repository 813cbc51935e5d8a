package upstream

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/soundtrail/backend/internal/common"
	"github.com/soundtrail/backend/internal/entity"
	"github.com/soundtrail/backend/internal/repository"
	"github.com/soundtrail/backend/pkg/api"
	"github.com/soundtrail/backend/pkg/api/spotify"
	"github.com/soundtrail/backend/pkg/errorx"
	"github.com/soundtrail/backend/pkg/xcontext"
	"golang.org/x/sync/singleflight"
)

// Refresher renews the provider access token of a user. Concurrent refreshes
// of the same user share one exchange.
type Refresher struct {
	userRepo repository.UserRepository
	endpoint spotify.IEndpoint
	group    singleflight.Group
}

func NewRefresher(userRepo repository.UserRepository, endpoint spotify.IEndpoint) *Refresher {
	return &Refresher{userRepo: userRepo, endpoint: endpoint}
}

// Refresh exchanges the stored provider refresh token, persists the result
// and then updates user in place. A rate limit answer is returned as is so
// the caller can close the window. A rejected refresh token is UpstreamAuth,
// a timeout or a provider failure is Upstream.
//
// The exchange is not bound to the cancellation of ctx: other callers may be
// waiting on it. A caller whose ctx ends stops waiting.
func (r *Refresher) Refresh(ctx context.Context, user *entity.User) error {
	flight := r.group.DoChan(user.ID, func() (any, error) {
		return r.refresh(context.WithoutCancel(ctx), user.ID, user.UpstreamRefreshToken)
	})

	var result singleflight.Result
	select {
	case <-ctx.Done():
		return errorx.Wrap(errorx.Upstream, ctx.Err(), "Spotify authorization renewal was interrupted")
	case result = <-flight:
	}

	if result.Err != nil {
		return result.Err
	}

	if result.Shared {
		xcontext.Logger(ctx).Debugf("Shared upstream refresh of user %s", user.ID)
	}

	tokens := result.Val.(repository.UpstreamTokens)
	user.UpstreamAccessToken = tokens.AccessToken
	user.UpstreamTokenTTL = tokens.TTL
	user.UpstreamTokenIssuedAt = tokens.IssuedAt
	if tokens.RefreshToken != "" {
		user.UpstreamRefreshToken = tokens.RefreshToken
	}

	return nil
}

func (r *Refresher) refresh(
	ctx context.Context, userID, refreshToken string,
) (repository.UpstreamTokens, error) {
	if refreshToken == "" {
		common.PromCounters[common.UpstreamRefreshTotal].WithLabelValues("rejected").Inc()
		return repository.UpstreamTokens{}, errorx.New(errorx.UpstreamAuth,
			"Your Spotify authorization is missing, please log in again")
	}

	if timeout := xcontext.Configs(ctx).Spotify.RequestTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	token, err := r.endpoint.RefreshAccessToken(ctx, refreshToken)
	if err != nil {
		return repository.UpstreamTokens{}, r.classify(ctx, userID, err)
	}

	tokens := repository.UpstreamTokens{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TTL:          token.ExpiresIn,
		IssuedAt:     xcontext.Now(ctx),
	}

	if err := r.userRepo.UpdateUpstreamTokens(ctx, userID, tokens); err != nil {
		common.PromCounters[common.UpstreamRefreshTotal].WithLabelValues("failed").Inc()
		xcontext.Logger(ctx).Errorf("Cannot store upstream token of user %s: %v", userID, err)
		return repository.UpstreamTokens{}, errorx.Wrap(errorx.Internal,
			fmt.Errorf("store upstream token: %w", err), "Request failed")
	}

	common.PromCounters[common.UpstreamRefreshTotal].WithLabelValues("ok").Inc()
	return tokens, nil
}

func (r *Refresher) classify(ctx context.Context, userID string, err error) error {
	if _, ok := api.IsRateLimit(err); ok {
		common.PromCounters[common.UpstreamRefreshTotal].WithLabelValues("rate_limited").Inc()
		return err
	}

	var statusErr *api.StatusError
	rejected := errors.Is(err, api.ErrUnauthorized) ||
		(errors.As(err, &statusErr) && statusErr.Code < http.StatusInternalServerError)
	if rejected {
		common.PromCounters[common.UpstreamRefreshTotal].WithLabelValues("rejected").Inc()
		xcontext.Logger(ctx).Warnf("Upstream rejected refresh token of user %s: %v", userID, err)
		return errorx.Wrap(errorx.UpstreamAuth, err,
			"Cannot renew your Spotify authorization, please log in again")
	}

	common.PromCounters[common.UpstreamRefreshTotal].WithLabelValues("failed").Inc()
	xcontext.Logger(ctx).Warnf("Cannot refresh upstream token of user %s: %v", userID, err)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errorx.Wrap(errorx.Upstream, err, "Spotify did not respond in time")
	}

	return errorx.Wrap(errorx.Upstream, err, "Spotify request failed")
}
