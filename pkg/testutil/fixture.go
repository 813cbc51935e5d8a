package testutil

import (
	"context"
	"time"

	"github.com/soundtrail/backend/internal/entity"
	"github.com/soundtrail/backend/pkg/xcontext"
)

var FixtureTime = time.Date(2023, 5, 1, 10, 0, 0, 0, time.UTC)

var (
	// User1 holds an upstream token valid for one hour after FixtureTime.
	User1 = entity.User{
		Base:                  entity.Base{ID: "user1"},
		ProviderUserID:        "spotify-user1",
		Email:                 "user1@example.com",
		DisplayName:           "User One",
		ProfilePictureURL:     "https://i.scdn.co/image/user1",
		HasPremium:            true,
		UpstreamAccessToken:   "user1-access",
		UpstreamRefreshToken:  "user1-refresh",
		UpstreamTokenIssuedAt: FixtureTime,
		UpstreamTokenTTL:      3600,
	}

	// User2 holds an upstream token that expired before FixtureTime.
	User2 = entity.User{
		Base:                  entity.Base{ID: "user2"},
		ProviderUserID:        "spotify-user2",
		Email:                 "user2@example.com",
		DisplayName:           "User Two",
		UpstreamAccessToken:   "user2-access",
		UpstreamRefreshToken:  "user2-refresh",
		UpstreamTokenIssuedAt: FixtureTime.Add(-2 * time.Hour),
		UpstreamTokenTTL:      3600,
	}

	Users = []entity.User{User1, User2}
)

// CreateFixtureDb inserts copies of the fixture users.
func CreateFixtureDb(ctx context.Context) {
	for _, u := range Users {
		user := u
		if err := xcontext.DB(ctx).Create(&user).Error; err != nil {
			panic(err)
		}
	}
}
