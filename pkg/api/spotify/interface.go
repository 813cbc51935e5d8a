package spotify

import (
	"context"
	"time"
)

type IEndpoint interface {
	AuthorizationURL(state string) string
	ExchangeAuthorizationCode(ctx context.Context, code string) (Authorization, error)
	RefreshAccessToken(ctx context.Context, refreshToken string) (Token, error)
	GetMe(ctx context.Context, accessToken string) (Profile, error)
	GetCurrentlyPlaying(ctx context.Context, accessToken string) (*CurrentlyPlaying, error)
	GetPlaylist(ctx context.Context, accessToken, id string) (*Playlist, error)
	GetRecentlyPlayed(ctx context.Context, accessToken string, after time.Time, limit int) ([]PlayHistory, error)
}
