package cron

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/soundtrail/backend/internal/domain/upstream"
	"github.com/soundtrail/backend/internal/entity"
	"github.com/soundtrail/backend/internal/repository"
	"github.com/soundtrail/backend/pkg/api"
	"github.com/soundtrail/backend/pkg/api/spotify"
	"github.com/soundtrail/backend/pkg/testutil"
	"github.com/soundtrail/backend/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

func newListeningHistoryJobForTest(ctx context.Context, endpoint spotify.IEndpoint) *ListeningHistoryCronJob {
	userRepo := repository.NewUserRepository()
	caller := upstream.NewCaller(upstream.NewMemoryWindow(), upstream.NewRefresher(userRepo, endpoint))
	return NewListeningHistoryCronJob(
		userRepo,
		repository.NewListeningHistoryRepository(),
		caller,
		endpoint,
		xcontext.Configs(ctx).Cron,
	)
}

func play(trackID string, playedAt time.Time) spotify.PlayHistory {
	return spotify.PlayHistory{
		Track: spotify.Track{
			ID:      trackID,
			Name:    "Track " + trackID,
			Artists: []spotify.Artist{{Name: "A"}, {Name: "B"}},
			Album:   spotify.Album{Name: "Album"},
		},
		PlayedAt: playedAt,
		Context:  &spotify.PlaybackContext{Type: "album", URI: "spotify:album:1"},
	}
}

func countHistories(t *testing.T, ctx context.Context, userID string) int64 {
	t.Helper()
	var count int64
	require.NoError(t, xcontext.DB(ctx).Model(&entity.ListeningHistory{}).
		Where("user_id=?", userID).Count(&count).Error)
	return count
}

func Test_ListeningHistoryCronJob_Do(t *testing.T) {
	ctx, _ := testutil.WithMockClock(testutil.MockContext())
	testutil.CreateFixtureDb(ctx)

	mutex := sync.Mutex{}
	afters := map[string][]time.Time{}
	endpoint := &testutil.MockSpotifyEndpoint{
		RefreshAccessTokenFunc: func(ctx context.Context, refreshToken string) (spotify.Token, error) {
			return spotify.Token{AccessToken: "renewed-" + refreshToken, ExpiresIn: 3600}, nil
		},
		GetRecentlyPlayedFunc: func(
			ctx context.Context, accessToken string, after time.Time, limit int,
		) ([]spotify.PlayHistory, error) {
			mutex.Lock()
			defer mutex.Unlock()
			afters[accessToken] = append(afters[accessToken], after)

			return []spotify.PlayHistory{
				play("t2", testutil.FixtureTime.Add(-time.Minute)),
				play("t1", testutil.FixtureTime.Add(-5*time.Minute)),
			}, nil
		},
	}

	job := newListeningHistoryJobForTest(ctx, endpoint)
	job.Do(ctx)

	require.EqualValues(t, 2, countHistories(t, ctx, testutil.User1.ID))
	require.EqualValues(t, 2, countHistories(t, ctx, testutil.User2.ID))

	latest, err := repository.NewListeningHistoryRepository().GetLatest(ctx, testutil.User1.ID)
	require.NoError(t, err)
	require.Equal(t, "t2", latest.TrackID)
	require.Equal(t, "A, B", latest.ArtistName)
	require.Equal(t, "spotify:album:1", latest.ContextURI)

	// The second run asks only for newer plays and stores nothing twice.
	job.Do(ctx)
	require.EqualValues(t, 2, countHistories(t, ctx, testutil.User1.ID))

	require.Len(t, afters["user1-access"], 2)
	require.True(t, afters["user1-access"][0].IsZero())
	require.True(t, afters["user1-access"][1].Equal(testutil.FixtureTime.Add(-time.Minute)))
	require.Len(t, afters["renewed-user2-refresh"], 2)
}

func Test_ListeningHistoryCronJob_CursorFromDatabase(t *testing.T) {
	ctx, _ := testutil.WithMockClock(testutil.MockContext())
	testutil.CreateFixtureDb(ctx)

	stored := testutil.FixtureTime.Add(-10 * time.Minute)
	require.NoError(t, repository.NewListeningHistoryRepository().CreateMany(ctx, []entity.ListeningHistory{
		{Base: entity.Base{ID: "h1"}, UserID: testutil.User1.ID, PlayedAt: stored, TrackID: "t0"},
	}))

	var after time.Time
	endpoint := &testutil.MockSpotifyEndpoint{
		GetRecentlyPlayedFunc: func(
			ctx context.Context, accessToken string, a time.Time, limit int,
		) ([]spotify.PlayHistory, error) {
			after = a
			require.Equal(t, 50, limit)
			return nil, nil
		},
	}

	job := newListeningHistoryJobForTest(ctx, endpoint)
	user := testutil.User1
	job.syncUser(ctx, &user)
	require.True(t, after.Equal(stored))
}

func Test_ListeningHistoryCronJob_SkipsRateLimited(t *testing.T) {
	ctx, _ := testutil.WithMockClock(testutil.MockContext())
	testutil.CreateFixtureDb(ctx)

	mutex := sync.Mutex{}
	calls := 0
	endpoint := &testutil.MockSpotifyEndpoint{
		RefreshAccessTokenFunc: func(ctx context.Context, refreshToken string) (spotify.Token, error) {
			return spotify.Token{AccessToken: "renewed", ExpiresIn: 3600}, nil
		},
		GetRecentlyPlayedFunc: func(
			ctx context.Context, accessToken string, after time.Time, limit int,
		) ([]spotify.PlayHistory, error) {
			mutex.Lock()
			defer mutex.Unlock()
			calls++
			return nil, &api.RateLimitError{RetryAfter: time.Minute}
		},
	}

	job := newListeningHistoryJobForTest(ctx, endpoint)
	job.Do(ctx)
	require.EqualValues(t, 0, countHistories(t, ctx, testutil.User1.ID))
	require.EqualValues(t, 0, countHistories(t, ctx, testutil.User2.ID))

	// The window is closed now, so the next cycle sends nothing.
	before := calls
	job.Do(ctx)
	require.Equal(t, before, calls)
}
