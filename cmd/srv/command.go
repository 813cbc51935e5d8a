package main

import (
	"github.com/urfave/cli/v2"
)

func (s *srv) loadApp() {
	s.app = cli.NewApp()
	s.app.Action = cli.ShowAppHelp
	s.app.Name = "soundtrail"
	s.app.Usage = "Spotify listening dashboard backend"
	s.app.Flags = flags()
	s.app.Before = s.loadConfig
	s.app.Commands = []*cli.Command{
		{
			Action:      s.startApi,
			Name:        "api",
			Usage:       "Start service api",
			Category:    "Api",
			Description: `Serves the auth, user and dashboard apis.`,
		},
		{
			Action:      s.startCron,
			Name:        "cron",
			Usage:       "Start cron jobs",
			Category:    "Worker",
			Description: `Polls the listening history of every user.`,
		},
		{
			Action:      s.startMigrate,
			Name:        "migrate",
			Usage:       "Migrate the database",
			Category:    "Database",
			Description: `Applies every pending database migration and exits.`,
		},
	}
}

func flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "config", Usage: "path of a TOML config file", EnvVars: []string{"CONFIG_FILE"}},
		&cli.StringFlag{Name: "env", Usage: "environment, local enables error causes", EnvVars: []string{"ENV"}},
		&cli.StringFlag{Name: "log-level", EnvVars: []string{"LOG_LEVEL"}},

		&cli.StringFlag{Name: "port", EnvVars: []string{"PORT"}},
		&cli.StringSliceFlag{Name: "allowed-origins", EnvVars: []string{"ALLOWED_ORIGINS"}},

		&cli.StringFlag{Name: "db-driver", Usage: "mysql or sqlite", EnvVars: []string{"DB_DRIVER"}},
		&cli.StringFlag{Name: "db-host", EnvVars: []string{"DB_HOST"}},
		&cli.StringFlag{Name: "db-port", EnvVars: []string{"DB_PORT"}},
		&cli.StringFlag{Name: "db-user", EnvVars: []string{"DB_USER"}},
		&cli.StringFlag{Name: "db-password", EnvVars: []string{"DB_PASSWORD"}},
		&cli.StringFlag{Name: "db-name", EnvVars: []string{"DB_NAME"}},

		&cli.StringFlag{Name: "jwt-secret", EnvVars: []string{"JWT_SECRET"}},
		&cli.DurationFlag{Name: "jwt-short-exp", Usage: "lifetime of an access token", EnvVars: []string{"JWT_SHORT_EXP"}},
		&cli.IntFlag{Name: "jwt-long-exp-months", Usage: "lifetime of a session", EnvVars: []string{"JWT_LONG_EXP_MONTHS"}},

		&cli.StringFlag{Name: "spotify-client-id", EnvVars: []string{"SPOTIFY_CLIENT_ID"}},
		&cli.StringFlag{Name: "spotify-client-secret", EnvVars: []string{"SPOTIFY_CLIENT_SECRET"}},
		&cli.StringFlag{Name: "spotify-callback", EnvVars: []string{"SPOTIFY_CALLBACK"}},
		&cli.StringFlag{Name: "spotify-state", EnvVars: []string{"SPOTIFY_STATE"}},
		&cli.StringFlag{Name: "spotify-issuer", Usage: "enables OpenID endpoint discovery", EnvVars: []string{"SPOTIFY_ISSUER"}},
		&cli.DurationFlag{Name: "spotify-timeout", EnvVars: []string{"SPOTIFY_TIMEOUT"}},

		&cli.BoolFlag{Name: "redis-enable", EnvVars: []string{"REDIS_ENABLE"}},
		&cli.StringFlag{Name: "redis-addr", EnvVars: []string{"REDIS_ADDR"}},

		&cli.DurationFlag{Name: "cron-interval", EnvVars: []string{"CRON_INTERVAL"}},
	}
}
