package session

import (
	"testing"
	"time"

	"github.com/soundtrail/backend/internal/entity"
	"github.com/soundtrail/backend/internal/model"
	"github.com/soundtrail/backend/internal/repository"
	"github.com/soundtrail/backend/pkg/authenticator"
	"github.com/soundtrail/backend/pkg/errorx"
	"github.com/soundtrail/backend/pkg/testutil"
	"github.com/soundtrail/backend/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

func Test_Verifier_Verify(t *testing.T) {
	ctx, clock, issuer := newIssuerContext(t)
	verifier := NewVerifier(repository.NewUserRepository())

	pair, err := issuer.Issue(ctx, &testutil.User1)
	require.NoError(t, err)

	// The stored user is returned, not the snapshot inside the token.
	require.NoError(t, xcontext.DB(ctx).Model(&entity.User{}).
		Where("id=?", testutil.User1.ID).Update("display_name", "Renamed").Error)

	result, err := verifier.Verify(ctx, pair.AccessToken)
	require.NoError(t, err)
	require.True(t, result.OK())
	require.Equal(t, testutil.User1.ID, result.User.ID)
	require.Equal(t, "Renamed", result.User.DisplayName)
	require.Equal(t, testutil.User1.DisplayName, result.Claims.DisplayName)

	// Still valid at the exact expiry.
	clock.Advance(time.Minute)
	_, err = verifier.Verify(ctx, pair.AccessToken)
	require.NoError(t, err)

	clock.Advance(time.Millisecond)
	result, err = verifier.Verify(ctx, pair.AccessToken)
	require.Equal(t, errorx.Unauthenticated, errorx.CodeOf(err))
	require.False(t, result.OK())
	require.Equal(t, ReasonExpired, result.Reason)
}

func Test_Verifier_Verify_LongExpire(t *testing.T) {
	ctx, _, _ := newIssuerContext(t)
	verifier := NewVerifier(repository.NewUserRepository())
	now := xcontext.Now(ctx)

	bearer, err := xcontext.TokenEngine(ctx).Generate(now.Add(time.Minute), model.AccessToken{
		ID:         testutil.User1.ID,
		LongExpire: now.UnixMilli() - 1,
	})
	require.NoError(t, err)

	result, err := verifier.Verify(ctx, bearer)
	require.Equal(t, errorx.Unauthenticated, errorx.CodeOf(err))
	require.Equal(t, ReasonExpired, result.Reason)
}

func Test_Verifier_Verify_Invalid(t *testing.T) {
	ctx, _, issuer := newIssuerContext(t)
	verifier := NewVerifier(repository.NewUserRepository())

	result, err := verifier.Verify(ctx, "garbage")
	require.Equal(t, errorx.Unauthenticated, errorx.CodeOf(err))
	require.Equal(t, ReasonInvalid, result.Reason)

	otherCtx := xcontext.WithTokenEngine(ctx, authenticator.NewTokenEngine("other-secret"))
	pair, err := issuer.Issue(otherCtx, &testutil.User1)
	require.NoError(t, err)

	result, err = verifier.Verify(ctx, pair.AccessToken)
	require.Equal(t, errorx.Unauthenticated, errorx.CodeOf(err))
	require.Equal(t, ReasonInvalid, result.Reason)
}

func Test_Verifier_Verify_Stale(t *testing.T) {
	ctx, _, issuer := newIssuerContext(t)
	verifier := NewVerifier(repository.NewUserRepository())

	pair, err := issuer.Issue(ctx, &entity.User{Base: entity.Base{ID: "deleted-user"}})
	require.NoError(t, err)

	result, err := verifier.Verify(ctx, pair.AccessToken)
	require.Equal(t, errorx.Unauthenticated, errorx.CodeOf(err))
	require.Equal(t, ReasonStale, result.Reason)
}
