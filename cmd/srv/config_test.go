package main

import (
	"testing"
	"time"

	"github.com/soundtrail/backend/config"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func Test_overrideConfigs(t *testing.T) {
	cfg := config.Default()

	app := cli.NewApp()
	app.Flags = flags()
	app.Action = func(cctx *cli.Context) error {
		overrideConfigs(cctx, &cfg)
		return nil
	}

	err := app.Run([]string{
		"soundtrail",
		"--jwt-secret", "secret",
		"--jwt-short-exp", "30s",
		"--jwt-long-exp-months", "3",
		"--spotify-state", "state",
		"--db-driver", "sqlite",
		"--redis-enable",
	})
	require.NoError(t, err)

	require.Equal(t, "secret", cfg.Auth.TokenSecret)
	require.Equal(t, 30*time.Second, cfg.Auth.AccessToken.Expiration)
	require.Equal(t, 3, cfg.Auth.LongExpirationMonths)
	require.Equal(t, "state", cfg.Spotify.State)
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.True(t, cfg.Redis.Enable)

	// Unset flags keep the loaded values.
	require.Equal(t, time.Minute, cfg.Cron.ListeningHistoryInterval)
}
