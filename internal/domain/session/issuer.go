package session

import (
	"context"
	"errors"

	"github.com/soundtrail/backend/internal/entity"
	"github.com/soundtrail/backend/internal/model"
	"github.com/soundtrail/backend/internal/repository"
	"github.com/soundtrail/backend/pkg/crypto"
	"github.com/soundtrail/backend/pkg/errorx"
	"github.com/soundtrail/backend/pkg/xcontext"
	"gorm.io/gorm"
)

// Pair is the credential pair handed to a client after login or refresh.
type Pair struct {
	AccessToken  string
	RefreshToken string
}

// Issuer mints bearer tokens and manages the single refresh token of each
// user.
type Issuer struct {
	refreshTokenRepo repository.RefreshTokenRepository
}

func NewIssuer(refreshTokenRepo repository.RefreshTokenRepository) *Issuer {
	return &Issuer{refreshTokenRepo: refreshTokenRepo}
}

// Issue starts a new session chain for user. The refresh token is stored
// before any bearer is signed.
func (i *Issuer) Issue(ctx context.Context, user *entity.User) (*Pair, error) {
	cfg := xcontext.Configs(ctx).Auth
	now := xcontext.Now(ctx)

	claims := model.AccessToken{
		ID:                user.ID,
		ProviderUserID:    user.ProviderUserID,
		DisplayName:       user.DisplayName,
		ProfilePictureURL: user.ProfilePictureURL,
		HasPremium:        user.HasPremium,
		LongExpire:        now.AddDate(0, cfg.LongExpirationMonths, 0).UnixMilli(),
	}

	return i.issue(ctx, claims)
}

// Rotate exchanges a refresh token for a new pair. The bearer may be past its
// short expiry but must carry a valid signature. The new bearer keeps the
// long expiry and the profile snapshot of the old one.
func (i *Issuer) Rotate(ctx context.Context, bearer, refreshToken string) (*Pair, error) {
	var claims model.AccessToken
	if _, err := xcontext.TokenEngine(ctx).Parse(bearer, &claims); err != nil {
		xcontext.Logger(ctx).Debugf("Cannot parse bearer on refresh: %v", err)
		return nil, errorx.New(errorx.Unauthenticated, "Invalid access token")
	}

	if xcontext.Now(ctx).UnixMilli() > claims.LongExpire {
		return nil, errorx.New(errorx.SessionExpired, "Your session has expired, please log in again")
	}

	stored, err := i.refreshTokenRepo.Get(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.InvalidRefreshToken, "Invalid refresh token")
		}

		xcontext.Logger(ctx).Errorf("Cannot get refresh token of user %s: %v", claims.ID, err)
		return nil, errorx.Unknown
	}

	if !crypto.Equal(stored.Token, refreshToken) {
		return nil, errorx.New(errorx.InvalidRefreshToken, "Invalid refresh token")
	}

	return i.issue(ctx, claims)
}

// Revoke removes the refresh token of the user. Revoking twice is not an
// error.
func (i *Issuer) Revoke(ctx context.Context, userID string) error {
	if err := i.refreshTokenRepo.Delete(ctx, userID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot delete refresh token of user %s: %v", userID, err)
		return errorx.Unknown
	}

	return nil
}

func (i *Issuer) issue(ctx context.Context, claims model.AccessToken) (*Pair, error) {
	refreshToken, err := crypto.GenerateRandomString()
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot generate refresh token: %v", err)
		return nil, errorx.Unknown
	}

	if err := i.refreshTokenRepo.Upsert(ctx, claims.ID, refreshToken); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot store refresh token of user %s: %v", claims.ID, err)
		return nil, errorx.Unknown
	}

	expiresAt := xcontext.Now(ctx).Add(xcontext.Configs(ctx).Auth.AccessToken.Expiration)
	accessToken, err := xcontext.TokenEngine(ctx).Generate(expiresAt, claims)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot generate access token: %v", err)
		return nil, errorx.Unknown
	}

	return &Pair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
