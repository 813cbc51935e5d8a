package repository

import (
	"testing"
	"time"

	"github.com/soundtrail/backend/internal/entity"
	"github.com/soundtrail/backend/pkg/testutil"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type UserTestSuite struct {
	suite.Suite
}

func TestUserSuite(t *testing.T) {
	suite.Run(t, new(UserTestSuite))
}

func (suite *UserTestSuite) TestUpsert() {
	t := suite.T()
	ctx := testutil.MockContext()
	userRepo := NewUserRepository()

	issuedAt := testutil.FixtureTime
	err := userRepo.Upsert(ctx, &entity.User{
		Base:                  entity.Base{ID: "id1"},
		ProviderUserID:        "spotify-1",
		DisplayName:           "Alice",
		UpstreamAccessToken:   "access-1",
		UpstreamRefreshToken:  "refresh-1",
		UpstreamTokenIssuedAt: issuedAt,
		UpstreamTokenTTL:      3600,
	})
	require.NoError(t, err)

	// Login again with the same provider identity keeps the id.
	err = userRepo.Upsert(ctx, &entity.User{
		Base:                  entity.Base{ID: "id2"},
		ProviderUserID:        "spotify-1",
		DisplayName:           "Alice B",
		HasPremium:            true,
		UpstreamAccessToken:   "access-2",
		UpstreamRefreshToken:  "refresh-2",
		UpstreamTokenIssuedAt: issuedAt.Add(time.Hour),
		UpstreamTokenTTL:      1800,
	})
	require.NoError(t, err)

	user, err := userRepo.GetByProviderUserID(ctx, "spotify-1")
	require.NoError(t, err)
	require.Equal(t, "id1", user.ID)
	require.Equal(t, "Alice B", user.DisplayName)
	require.True(t, user.HasPremium)
	require.Equal(t, "access-2", user.UpstreamAccessToken)
	require.Equal(t, "refresh-2", user.UpstreamRefreshToken)
	require.Equal(t, 1800, user.UpstreamTokenTTL)
	require.True(t, issuedAt.Add(time.Hour).Equal(user.UpstreamTokenIssuedAt))

	_, err = userRepo.GetByID(ctx, "id2")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	users, err := userRepo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
}

func (suite *UserTestSuite) TestUpdateUpstreamTokens() {
	t := suite.T()
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	userRepo := NewUserRepository()

	issuedAt := testutil.FixtureTime.Add(time.Minute)
	err := userRepo.UpdateUpstreamTokens(ctx, testutil.User1.ID, UpstreamTokens{
		AccessToken: "new-access",
		TTL:         60,
		IssuedAt:    issuedAt,
	})
	require.NoError(t, err)

	user, err := userRepo.GetByID(ctx, testutil.User1.ID)
	require.NoError(t, err)
	require.Equal(t, "new-access", user.UpstreamAccessToken)
	require.Equal(t, testutil.User1.UpstreamRefreshToken, user.UpstreamRefreshToken)
	require.Equal(t, 60, user.UpstreamTokenTTL)
	require.True(t, issuedAt.Equal(user.UpstreamTokenIssuedAt))

	// A rotated upstream refresh token replaces the stored one.
	err = userRepo.UpdateUpstreamTokens(ctx, testutil.User1.ID, UpstreamTokens{
		AccessToken:  "newer-access",
		RefreshToken: "new-refresh",
		TTL:          60,
		IssuedAt:     issuedAt,
	})
	require.NoError(t, err)

	user, err = userRepo.GetByID(ctx, testutil.User1.ID)
	require.NoError(t, err)
	require.Equal(t, "new-refresh", user.UpstreamRefreshToken)

	err = userRepo.UpdateUpstreamTokens(ctx, "unknown", UpstreamTokens{AccessToken: "x", IssuedAt: issuedAt})
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
