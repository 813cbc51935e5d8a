package upstream

import (
	"context"
	"errors"
	"time"

	"github.com/soundtrail/backend/internal/common"
	"github.com/soundtrail/backend/internal/entity"
	"github.com/soundtrail/backend/pkg/api"
	"github.com/soundtrail/backend/pkg/errorx"
	"github.com/soundtrail/backend/pkg/xcontext"
)

// Caller runs provider requests on behalf of a user, renewing the user's
// provider credential and honoring the provider rate limit.
type Caller struct {
	window    RateLimitWindow
	refresher *Refresher
}

func NewCaller(window RateLimitWindow, refresher *Refresher) *Caller {
	return &Caller{window: window, refresher: refresher}
}

// Call invokes op for user. While a rate limit window is active no request is
// sent. An expired credential is renewed first; a 401 answer renews it and
// retries exactly once. A 429 answer closes the window for the advertised
// delay.
func Call[T any](
	ctx context.Context,
	c *Caller,
	user *entity.User,
	op func(ctx context.Context, accessToken string) (T, error),
) (T, error) {
	var zero T

	now := xcontext.Now(ctx)
	resumeAt, err := c.window.ResumeAt(ctx)
	if err != nil {
		// The window is advisory.
		xcontext.Logger(ctx).Warnf("Cannot read rate limit window: %v", err)
	} else if now.Before(resumeAt) {
		common.PromCounters[common.UpstreamRateLimitedTotal].WithLabelValues("window").Inc()
		return zero, errorx.New(errorx.TooManyRequests,
			"Spotify is rate limiting requests, retry after %s", resumeAt.Sub(now).Round(time.Second))
	}

	if !user.HasValidUpstreamToken(now) {
		if err := c.refresher.Refresh(ctx, user); err != nil {
			return zero, c.handleError(ctx, err)
		}
	}

	result, err := invoke(ctx, user, op)
	if errors.Is(err, api.ErrUnauthorized) {
		xcontext.Logger(ctx).Debugf("Upstream rejected token of user %s, refreshing", user.ID)
		if err := c.refresher.Refresh(ctx, user); err != nil {
			return zero, c.handleError(ctx, err)
		}

		result, err = invoke(ctx, user, op)
		if errors.Is(err, api.ErrUnauthorized) {
			return zero, errorx.Wrap(errorx.UpstreamAuth, err,
				"Spotify rejected your authorization, please log in again")
		}
	}

	if err != nil {
		return zero, c.handleError(ctx, err)
	}

	return result, nil
}

func invoke[T any](
	ctx context.Context,
	user *entity.User,
	op func(ctx context.Context, accessToken string) (T, error),
) (T, error) {
	if timeout := xcontext.Configs(ctx).Spotify.RequestTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	return op(ctx, user.UpstreamAccessToken)
}

func (c *Caller) handleError(ctx context.Context, err error) error {
	var errx errorx.Error
	if errors.As(err, &errx) {
		return err
	}

	if retryAfter, ok := api.IsRateLimit(err); ok {
		common.PromCounters[common.UpstreamRateLimitedTotal].WithLabelValues("upstream").Inc()
		resumeAt := xcontext.Now(ctx).Add(retryAfter)
		if err := c.window.Block(ctx, resumeAt); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot store rate limit window: %v", err)
		}

		return errorx.Wrap(errorx.TooManyRequests, err,
			"Spotify is rate limiting requests, retry after %s", retryAfter)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return errorx.Wrap(errorx.Upstream, err, "Spotify did not respond in time")
	}

	xcontext.Logger(ctx).Warnf("Upstream request failed: %v", err)
	return errorx.Wrap(errorx.Upstream, err, "Spotify request failed")
}
