package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/soundtrail/backend/config"
	"github.com/soundtrail/backend/pkg/api"
	"github.com/soundtrail/backend/pkg/authenticator"
	"github.com/soundtrail/backend/pkg/xcontext"
	"golang.org/x/oauth2"
)

type Endpoint struct {
	oauth2            *authenticator.OAuth2Config
	apiGenerator      api.Generator
	defaultRetryAfter time.Duration
}

func New(oauth2Cfg *authenticator.OAuth2Config, cfg config.OAuth2Config) *Endpoint {
	return &Endpoint{
		oauth2:            oauth2Cfg,
		apiGenerator:      api.NewGenerator(cfg.APIEndpoint),
		defaultRetryAfter: cfg.DefaultRetryAfter,
	}
}

func (e *Endpoint) AuthorizationURL(state string) string {
	return e.oauth2.AuthCodeURL(state)
}

func (e *Endpoint) ExchangeAuthorizationCode(ctx context.Context, code string) (Authorization, error) {
	token, err := e.oauth2.Exchange(e.oauth2Context(ctx), code)
	if err != nil {
		return Authorization{}, e.wrapTokenError(err)
	}

	t := toToken(ctx, token)
	profile, err := e.GetMe(ctx, t.AccessToken)
	if err != nil {
		return Authorization{}, err
	}

	return Authorization{Token: t, Profile: profile}, nil
}

func (e *Endpoint) RefreshAccessToken(ctx context.Context, refreshToken string) (Token, error) {
	source := e.oauth2.TokenSource(e.oauth2Context(ctx), &oauth2.Token{RefreshToken: refreshToken})
	token, err := source.Token()
	if err != nil {
		return Token{}, e.wrapTokenError(err)
	}

	t := toToken(ctx, token)
	if t.RefreshToken == refreshToken {
		t.RefreshToken = ""
	}

	return t, nil
}

func (e *Endpoint) GetMe(ctx context.Context, accessToken string) (Profile, error) {
	resp, err := e.apiGenerator.New("/me").GET(ctx, api.OAuth2("Bearer", accessToken))
	if err != nil {
		return Profile{}, err
	}

	if err := api.CheckResponse(resp, e.defaultRetryAfter); err != nil {
		return Profile{}, err
	}

	body, err := resp.JSON()
	if err != nil {
		return Profile{}, err
	}

	var m me
	if err := body.Decode(&m); err != nil {
		return Profile{}, err
	}

	if m.ID == "" {
		return Profile{}, errors.New("missing user id in profile")
	}

	return m.toProfile(), nil
}

// GetCurrentlyPlaying returns nil when nothing is playing.
func (e *Endpoint) GetCurrentlyPlaying(ctx context.Context, accessToken string) (*CurrentlyPlaying, error) {
	resp, err := e.apiGenerator.New("/me/player/currently-playing").GET(ctx, api.OAuth2("Bearer", accessToken))
	if err != nil {
		return nil, err
	}

	if err := api.CheckResponse(resp, e.defaultRetryAfter); err != nil {
		return nil, err
	}

	if resp.Code == http.StatusNoContent {
		return nil, nil
	}

	body, err := resp.JSON()
	if err != nil {
		return nil, err
	}

	var playing CurrentlyPlaying
	if err := body.Decode(&playing); err != nil {
		return nil, err
	}

	return &playing, nil
}

func (e *Endpoint) GetPlaylist(ctx context.Context, accessToken, id string) (*Playlist, error) {
	resp, err := e.apiGenerator.New("/playlists/%s", id).GET(ctx, api.OAuth2("Bearer", accessToken))
	if err != nil {
		return nil, err
	}

	if err := api.CheckResponse(resp, e.defaultRetryAfter); err != nil {
		return nil, err
	}

	body, err := resp.JSON()
	if err != nil {
		return nil, err
	}

	var playlist Playlist
	if err := body.Decode(&playlist); err != nil {
		return nil, err
	}

	return &playlist, nil
}

// GetRecentlyPlayed returns the tracks played strictly after the given time,
// newest first.
func (e *Endpoint) GetRecentlyPlayed(
	ctx context.Context, accessToken string, after time.Time, limit int,
) ([]PlayHistory, error) {
	query := api.Parameter{"limit": strconv.Itoa(limit)}
	if !after.IsZero() {
		query["after"] = strconv.FormatInt(after.UnixMilli(), 10)
	}

	resp, err := e.apiGenerator.New("/me/player/recently-played").
		Query(query).
		GET(ctx, api.OAuth2("Bearer", accessToken))
	if err != nil {
		return nil, err
	}

	if err := api.CheckResponse(resp, e.defaultRetryAfter); err != nil {
		return nil, err
	}

	body, err := resp.JSON()
	if err != nil {
		return nil, err
	}

	items, err := body.GetArray("items")
	if err != nil {
		return nil, err
	}

	histories := make([]PlayHistory, 0, len(items))
	for _, item := range items {
		var history PlayHistory
		if err := item.Decode(&history); err != nil {
			return nil, err
		}
		histories = append(histories, history)
	}

	return histories, nil
}

func (e *Endpoint) oauth2Context(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, xcontext.HTTPClient(ctx))
}

func (e *Endpoint) wrapTokenError(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if !errors.As(err, &retrieveErr) || retrieveErr.Response == nil {
		return err
	}

	switch retrieveErr.Response.StatusCode {
	case http.StatusTooManyRequests:
		return &api.RateLimitError{
			RetryAfter: api.ParseRetryAfter(retrieveErr.Response.Header, e.defaultRetryAfter),
		}
	case http.StatusBadRequest, http.StatusUnauthorized:
		// invalid_grant and invalid_client both mean the user must authorize again.
		return fmt.Errorf("%w: %s", api.ErrUnauthorized, string(retrieveErr.Body))
	default:
		return &api.StatusError{Code: retrieveErr.Response.StatusCode, Body: string(retrieveErr.Body)}
	}
}

func toToken(ctx context.Context, token *oauth2.Token) Token {
	t := Token{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
	}

	switch v := token.Extra("expires_in").(type) {
	case float64:
		t.ExpiresIn = int(v)
	case int64:
		t.ExpiresIn = int(v)
	case string:
		t.ExpiresIn, _ = strconv.Atoi(v)
	}

	if t.ExpiresIn == 0 && !token.Expiry.IsZero() {
		t.ExpiresIn = int(token.Expiry.Sub(xcontext.Now(ctx)).Seconds())
	}

	return t
}
