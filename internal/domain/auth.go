package domain

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/soundtrail/backend/internal/common"
	"github.com/soundtrail/backend/internal/domain/session"
	"github.com/soundtrail/backend/internal/entity"
	"github.com/soundtrail/backend/internal/model"
	"github.com/soundtrail/backend/internal/repository"
	"github.com/soundtrail/backend/pkg/api"
	"github.com/soundtrail/backend/pkg/api/spotify"
	"github.com/soundtrail/backend/pkg/errorx"
	"github.com/soundtrail/backend/pkg/xcontext"
)

type AuthDomain interface {
	Authorize(context.Context, *model.AuthorizeRequest) (*model.AuthorizeResponse, error)
	Refresh(context.Context, *model.RefreshTokenRequest) (*model.RefreshTokenResponse, error)
	Logout(context.Context, *model.LogoutRequest) (*model.LogoutResponse, error)
	GetAuthorizationURL(context.Context, *model.GetAuthorizationURLRequest) (*model.GetAuthorizationURLResponse, error)
}

type authDomain struct {
	userRepo        repository.UserRepository
	issuer          *session.Issuer
	spotifyEndpoint spotify.IEndpoint
}

func NewAuthDomain(
	userRepo repository.UserRepository,
	issuer *session.Issuer,
	spotifyEndpoint spotify.IEndpoint,
) AuthDomain {
	return &authDomain{
		userRepo:        userRepo,
		issuer:          issuer,
		spotifyEndpoint: spotifyEndpoint,
	}
}

func (d *authDomain) Authorize(
	ctx context.Context, req *model.AuthorizeRequest,
) (*model.AuthorizeResponse, error) {
	if req.Code == "" {
		return nil, errorx.New(errorx.BadRequest, "Missing authorization code")
	}

	if req.State != xcontext.Configs(ctx).Spotify.State {
		return nil, errorx.New(errorx.BadRequest, "Invalid state")
	}

	authorization, err := d.exchange(ctx, req.Code)
	if err != nil {
		return nil, err
	}

	profile := authorization.Profile
	err = d.userRepo.Upsert(ctx, &entity.User{
		Base:                  entity.Base{ID: uuid.NewString()},
		ProviderUserID:        profile.ID,
		Email:                 profile.Email,
		DisplayName:           profile.DisplayName,
		ProfilePictureURL:     profile.ProfilePictureURL,
		HasPremium:            profile.HasPremium,
		UpstreamAccessToken:   authorization.Token.AccessToken,
		UpstreamRefreshToken:  authorization.Token.RefreshToken,
		UpstreamTokenIssuedAt: xcontext.Now(ctx),
		UpstreamTokenTTL:      authorization.Token.ExpiresIn,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot upsert user %s: %v", profile.ID, err)
		return nil, errorx.Unknown
	}

	// The upsert keeps the id of a returning user, so read it back.
	user, err := d.userRepo.GetByProviderUserID(ctx, profile.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get user %s: %v", profile.ID, err)
		return nil, errorx.Unknown
	}

	pair, err := d.issuer.Issue(ctx, user)
	if err != nil {
		return nil, err
	}

	return &model.AuthorizeResponse{
		JWTToken:     pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

func (d *authDomain) exchange(ctx context.Context, code string) (spotify.Authorization, error) {
	if timeout := xcontext.Configs(ctx).Spotify.RequestTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	authorization, err := d.spotifyEndpoint.ExchangeAuthorizationCode(ctx, code)
	if err == nil {
		return authorization, nil
	}

	xcontext.Logger(ctx).Warnf("Cannot exchange authorization code: %v", err)
	if retryAfter, ok := api.IsRateLimit(err); ok {
		return spotify.Authorization{}, errorx.Wrap(errorx.TooManyRequests, err,
			"Spotify is rate limiting requests, retry after %s", retryAfter)
	}

	if errors.Is(err, api.ErrUnauthorized) {
		return spotify.Authorization{}, errorx.Wrap(errorx.UpstreamAuth, err,
			"Spotify rejected the authorization code")
	}

	return spotify.Authorization{}, errorx.Wrap(errorx.Upstream, err, "Cannot authorize with Spotify")
}

func (d *authDomain) Refresh(
	ctx context.Context, req *model.RefreshTokenRequest,
) (*model.RefreshTokenResponse, error) {
	bearer := common.BearerToken(xcontext.HTTPRequest(ctx))
	if bearer == "" {
		return nil, errorx.New(errorx.BadRequest, "No bearer token in header")
	}

	if req.RefreshToken == "" {
		return nil, errorx.New(errorx.BadRequest, "Missing refresh token")
	}

	pair, err := d.issuer.Rotate(ctx, bearer, req.RefreshToken)
	if err != nil {
		return nil, err
	}

	return &model.RefreshTokenResponse{
		JWTToken:     pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

func (d *authDomain) Logout(
	ctx context.Context, req *model.LogoutRequest,
) (*model.LogoutResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	if userID == "" {
		return nil, errorx.New(errorx.Unauthenticated, "Unauthenticated")
	}

	if err := d.issuer.Revoke(ctx, userID); err != nil {
		return nil, err
	}

	return &model.LogoutResponse{}, nil
}

func (d *authDomain) GetAuthorizationURL(
	ctx context.Context, req *model.GetAuthorizationURLRequest,
) (*model.GetAuthorizationURLResponse, error) {
	url := d.spotifyEndpoint.AuthorizationURL(xcontext.Configs(ctx).Spotify.State)
	return &model.GetAuthorizationURLResponse{URL: url}, nil
}
