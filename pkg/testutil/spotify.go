package testutil

import (
	"context"
	"time"

	"github.com/soundtrail/backend/pkg/api/spotify"
)

type MockSpotifyEndpoint struct {
	AuthorizationURLFunc          func(state string) string
	ExchangeAuthorizationCodeFunc func(ctx context.Context, code string) (spotify.Authorization, error)
	RefreshAccessTokenFunc        func(ctx context.Context, refreshToken string) (spotify.Token, error)
	GetMeFunc                     func(ctx context.Context, accessToken string) (spotify.Profile, error)
	GetCurrentlyPlayingFunc       func(ctx context.Context, accessToken string) (*spotify.CurrentlyPlaying, error)
	GetPlaylistFunc               func(ctx context.Context, accessToken, id string) (*spotify.Playlist, error)
	GetRecentlyPlayedFunc         func(ctx context.Context, accessToken string, after time.Time, limit int) ([]spotify.PlayHistory, error)
}

func (m *MockSpotifyEndpoint) AuthorizationURL(state string) string {
	if m.AuthorizationURLFunc != nil {
		return m.AuthorizationURLFunc(state)
	}

	return "https://accounts.spotify.com/authorize?state=" + state
}

func (m *MockSpotifyEndpoint) ExchangeAuthorizationCode(ctx context.Context, code string) (spotify.Authorization, error) {
	if m.ExchangeAuthorizationCodeFunc != nil {
		return m.ExchangeAuthorizationCodeFunc(ctx, code)
	}

	panic("not implemented")
}

func (m *MockSpotifyEndpoint) RefreshAccessToken(ctx context.Context, refreshToken string) (spotify.Token, error) {
	if m.RefreshAccessTokenFunc != nil {
		return m.RefreshAccessTokenFunc(ctx, refreshToken)
	}

	panic("not implemented")
}

func (m *MockSpotifyEndpoint) GetMe(ctx context.Context, accessToken string) (spotify.Profile, error) {
	if m.GetMeFunc != nil {
		return m.GetMeFunc(ctx, accessToken)
	}

	panic("not implemented")
}

func (m *MockSpotifyEndpoint) GetCurrentlyPlaying(ctx context.Context, accessToken string) (*spotify.CurrentlyPlaying, error) {
	if m.GetCurrentlyPlayingFunc != nil {
		return m.GetCurrentlyPlayingFunc(ctx, accessToken)
	}

	panic("not implemented")
}

func (m *MockSpotifyEndpoint) GetPlaylist(ctx context.Context, accessToken, id string) (*spotify.Playlist, error) {
	if m.GetPlaylistFunc != nil {
		return m.GetPlaylistFunc(ctx, accessToken, id)
	}

	panic("not implemented")
}

func (m *MockSpotifyEndpoint) GetRecentlyPlayed(
	ctx context.Context, accessToken string, after time.Time, limit int,
) ([]spotify.PlayHistory, error) {
	if m.GetRecentlyPlayedFunc != nil {
		return m.GetRecentlyPlayedFunc(ctx, accessToken, after, limit)
	}

	panic("not implemented")
}
