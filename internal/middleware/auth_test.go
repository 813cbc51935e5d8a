package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/soundtrail/backend/internal/common"
	"github.com/soundtrail/backend/internal/domain/session"
	"github.com/soundtrail/backend/internal/repository"
	"github.com/soundtrail/backend/pkg/errorx"
	"github.com/soundtrail/backend/pkg/testutil"
	"github.com/soundtrail/backend/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

func Test_Authenticate(t *testing.T) {
	ctx, _ := testutil.WithMockClock(testutil.MockContext())
	testutil.CreateFixtureDb(ctx)

	pair, err := session.NewIssuer(repository.NewRefreshTokenRepository()).Issue(ctx, &testutil.User1)
	require.NoError(t, err)

	middleware := Authenticate(session.NewVerifier(repository.NewUserRepository()))

	req := httptest.NewRequest("GET", "/user/me", nil)
	_, err = middleware(xcontext.WithHTTPRequest(ctx, req))
	require.Equal(t, errorx.Unauthenticated, errorx.CodeOf(err))

	req.Header.Set("Authorization", "Bearer invalid")
	_, err = middleware(xcontext.WithHTTPRequest(ctx, req))
	require.Equal(t, errorx.Unauthenticated, errorx.CodeOf(err))

	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	authCtx, err := middleware(xcontext.WithHTTPRequest(ctx, req))
	require.NoError(t, err)
	require.Equal(t, testutil.User1.ID, xcontext.RequestUserID(authCtx))
	require.Equal(t, testutil.User1.UpstreamAccessToken, common.RequestUser(authCtx).UpstreamAccessToken)
}
