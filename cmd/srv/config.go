package main

import (
	"time"

	"github.com/soundtrail/backend/config"
	"github.com/urfave/cli/v2"
)

// overrideConfigs writes every flag set on the command line or through its
// environment variable over cfg.
func overrideConfigs(cctx *cli.Context, cfg *config.Configs) {
	setString(cctx, "env", &cfg.Env)
	setString(cctx, "log-level", &cfg.LogLevel)

	setString(cctx, "port", &cfg.ApiServer.Port)
	if cctx.IsSet("allowed-origins") {
		cfg.ApiServer.AllowedOrigins = cctx.StringSlice("allowed-origins")
	}

	setString(cctx, "db-driver", &cfg.Database.Driver)
	setString(cctx, "db-host", &cfg.Database.Host)
	setString(cctx, "db-port", &cfg.Database.Port)
	setString(cctx, "db-user", &cfg.Database.User)
	setString(cctx, "db-password", &cfg.Database.Password)
	setString(cctx, "db-name", &cfg.Database.Database)

	setString(cctx, "jwt-secret", &cfg.Auth.TokenSecret)
	setDuration(cctx, "jwt-short-exp", &cfg.Auth.AccessToken.Expiration)
	if cctx.IsSet("jwt-long-exp-months") {
		cfg.Auth.LongExpirationMonths = cctx.Int("jwt-long-exp-months")
	}

	setString(cctx, "spotify-client-id", &cfg.Spotify.ClientID)
	setString(cctx, "spotify-client-secret", &cfg.Spotify.ClientSecret)
	setString(cctx, "spotify-callback", &cfg.Spotify.RedirectURL)
	setString(cctx, "spotify-state", &cfg.Spotify.State)
	setString(cctx, "spotify-issuer", &cfg.Spotify.Issuer)
	setDuration(cctx, "spotify-timeout", &cfg.Spotify.RequestTimeout)

	if cctx.IsSet("redis-enable") {
		cfg.Redis.Enable = cctx.Bool("redis-enable")
	}
	setString(cctx, "redis-addr", &cfg.Redis.Addr)

	setDuration(cctx, "cron-interval", &cfg.Cron.ListeningHistoryInterval)
}

func setString(cctx *cli.Context, name string, dst *string) {
	if cctx.IsSet(name) {
		*dst = cctx.String(name)
	}
}

func setDuration(cctx *cli.Context, name string, dst *time.Duration) {
	if cctx.IsSet(name) {
		*dst = cctx.Duration(name)
	}
}
