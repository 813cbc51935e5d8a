package upstream

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/soundtrail/backend/internal/repository"
	"github.com/soundtrail/backend/pkg/api"
	"github.com/soundtrail/backend/pkg/api/spotify"
	"github.com/soundtrail/backend/pkg/errorx"
	"github.com/soundtrail/backend/pkg/testutil"
	"github.com/soundtrail/backend/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

func Test_Refresher_Refresh(t *testing.T) {
	ctx, clock := testutil.WithMockClock(testutil.MockContext())
	testutil.CreateFixtureDb(ctx)
	clock.Advance(time.Hour)

	endpoint := &testutil.MockSpotifyEndpoint{
		RefreshAccessTokenFunc: func(ctx context.Context, refreshToken string) (spotify.Token, error) {
			require.Equal(t, "user2-refresh", refreshToken)
			return spotify.Token{AccessToken: "access", RefreshToken: "rotated", ExpiresIn: 1800}, nil
		},
	}
	refresher := NewRefresher(repository.NewUserRepository(), endpoint)

	user := testutil.User2
	require.NoError(t, refresher.Refresh(ctx, &user))
	require.Equal(t, "access", user.UpstreamAccessToken)
	require.Equal(t, "rotated", user.UpstreamRefreshToken)
	require.Equal(t, 1800, user.UpstreamTokenTTL)
	require.True(t, user.HasValidUpstreamToken(clock.Now()))

	stored, err := repository.NewUserRepository().GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, "access", stored.UpstreamAccessToken)
	require.Equal(t, "rotated", stored.UpstreamRefreshToken)
	require.True(t, stored.UpstreamTokenIssuedAt.Equal(clock.Now()))
}

func Test_Refresher_MissingRefreshToken(t *testing.T) {
	ctx := testutil.MockContext()
	refresher := NewRefresher(repository.NewUserRepository(), &testutil.MockSpotifyEndpoint{})

	user := testutil.User2
	user.UpstreamRefreshToken = ""
	err := refresher.Refresh(ctx, &user)
	require.Equal(t, errorx.UpstreamAuth, errorx.CodeOf(err))
}

func Test_Refresher_CoalescesConcurrentRefreshes(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	endpoint := &testutil.MockSpotifyEndpoint{
		RefreshAccessTokenFunc: func(ctx context.Context, refreshToken string) (spotify.Token, error) {
			if calls.Add(1) == 1 {
				close(started)
			}
			<-release
			return spotify.Token{AccessToken: "shared-access", ExpiresIn: 3600}, nil
		},
	}
	refresher := NewRefresher(repository.NewUserRepository(), endpoint)

	const n = 8
	errs := make([]error, n)
	tokens := make([]string, n)
	wg := sync.WaitGroup{}
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			user := testutil.User2
			errs[i] = refresher.Refresh(ctx, &user)
			tokens[i] = user.UpstreamAccessToken
		}(i)
	}

	<-started
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	require.EqualValues(t, 1, calls.Load())
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		require.Equal(t, "shared-access", tokens[i])
	}
}

func Test_Refresher_CancelledCallerDoesNotFailSharedRefresh(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	var calls atomic.Int32
	var exchangeErr error
	started := make(chan struct{})
	release := make(chan struct{})
	endpoint := &testutil.MockSpotifyEndpoint{
		RefreshAccessTokenFunc: func(ctx context.Context, refreshToken string) (spotify.Token, error) {
			if calls.Add(1) == 1 {
				close(started)
			}
			<-release
			exchangeErr = ctx.Err()
			return spotify.Token{AccessToken: "shared-access", ExpiresIn: 3600}, nil
		},
	}
	refresher := NewRefresher(repository.NewUserRepository(), endpoint)

	firstCtx, cancelFirst := context.WithCancel(ctx)
	defer cancelFirst()
	firstErr := make(chan error, 1)
	go func() {
		user := testutil.User2
		firstErr <- refresher.Refresh(firstCtx, &user)
	}()
	<-started

	second := testutil.User2
	secondErr := make(chan error, 1)
	go func() {
		secondErr <- refresher.Refresh(ctx, &second)
	}()
	time.Sleep(100 * time.Millisecond)

	cancelFirst()
	err := <-firstErr
	require.Equal(t, errorx.Upstream, errorx.CodeOf(err))
	require.ErrorIs(t, err, context.Canceled)

	close(release)
	require.NoError(t, <-secondErr)
	require.NoError(t, exchangeErr)
	require.EqualValues(t, 1, calls.Load())
	require.Equal(t, "shared-access", second.UpstreamAccessToken)

	stored, err := repository.NewUserRepository().GetByID(ctx, second.ID)
	require.NoError(t, err)
	require.Equal(t, "shared-access", stored.UpstreamAccessToken)
}

func Test_Refresher_Failures(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want errorx.Code
	}{
		{name: "refresh token rejected", err: api.ErrUnauthorized, want: errorx.UpstreamAuth},
		{name: "client error", err: &api.StatusError{Code: 403, Body: "forbidden"}, want: errorx.UpstreamAuth},
		{name: "provider failure", err: &api.StatusError{Code: 503, Body: "down"}, want: errorx.Upstream},
		{name: "deadline", err: context.DeadlineExceeded, want: errorx.Upstream},
		{name: "network", err: errors.New("connection reset"), want: errorx.Upstream},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			ctx := testutil.MockContext()
			testutil.CreateFixtureDb(ctx)

			endpoint := &testutil.MockSpotifyEndpoint{
				RefreshAccessTokenFunc: func(ctx context.Context, refreshToken string) (spotify.Token, error) {
					return spotify.Token{}, tt.err
				},
			}
			refresher := NewRefresher(repository.NewUserRepository(), endpoint)

			user := testutil.User2
			err := refresher.Refresh(ctx, &user)
			require.Equal(t, tt.want, errorx.CodeOf(err))
			require.ErrorIs(t, err, tt.err)
			require.Equal(t, "user2-access", user.UpstreamAccessToken)
		})
	}
}

func Test_Refresher_RateLimited(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	endpoint := &testutil.MockSpotifyEndpoint{
		RefreshAccessTokenFunc: func(ctx context.Context, refreshToken string) (spotify.Token, error) {
			return spotify.Token{}, &api.RateLimitError{RetryAfter: 7 * time.Second}
		},
	}
	refresher := NewRefresher(repository.NewUserRepository(), endpoint)

	user := testutil.User2
	retryAfter, ok := api.IsRateLimit(refresher.Refresh(ctx, &user))
	require.True(t, ok)
	require.Equal(t, 7*time.Second, retryAfter)
}

func Test_Refresher_Timeout(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	cfg := xcontext.Configs(ctx)
	cfg.Spotify.RequestTimeout = 20 * time.Millisecond
	ctx = xcontext.WithConfigs(ctx, cfg)

	endpoint := &testutil.MockSpotifyEndpoint{
		RefreshAccessTokenFunc: func(ctx context.Context, refreshToken string) (spotify.Token, error) {
			<-ctx.Done()
			return spotify.Token{}, ctx.Err()
		},
	}
	refresher := NewRefresher(repository.NewUserRepository(), endpoint)

	user := testutil.User2
	err := refresher.Refresh(ctx, &user)
	require.Equal(t, errorx.Upstream, errorx.CodeOf(err))
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
