package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

type Configs struct {
	Env      string `toml:"env"`
	LogLevel string `toml:"log_level"`

	Database  DatabaseConfigs `toml:"database"`
	ApiServer ServerConfigs   `toml:"api_server"`
	Auth      AuthConfigs     `toml:"auth"`
	Spotify   OAuth2Config    `toml:"spotify"`
	Redis     RedisConfigs    `toml:"redis"`
	Cron      CronConfigs     `toml:"cron"`
}

// IsLocal reports whether the service runs in a developer environment.
func (c Configs) IsLocal() bool {
	return c.Env == "local"
}

type DatabaseConfigs struct {
	Driver   string `toml:"driver"`
	Host     string `toml:"host"`
	Port     string `toml:"port"`
	Database string `toml:"database"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	LogLevel string `toml:"log_level"`
}

func (d *DatabaseConfigs) ConnectionString() string {
	if d.Driver == "sqlite" {
		return d.Database
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
	)
}

type ServerConfigs struct {
	Host           string   `toml:"host"`
	Port           string   `toml:"port"`
	AllowedOrigins []string `toml:"allowed_origins"`
	MaxLimit       int      `toml:"max_limit"`
	DefaultLimit   int      `toml:"default_limit"`
}

type AuthConfigs struct {
	TokenSecret  string       `toml:"token_secret"`
	AccessToken  TokenConfigs `toml:"access_token"`
	RefreshToken TokenConfigs `toml:"refresh_token"`

	// LongExpirationMonths bounds the lifetime of a whole refresh chain.
	LongExpirationMonths int `toml:"long_expiration_months"`
}

type TokenConfigs struct {
	Name       string        `toml:"name"`
	Expiration time.Duration `toml:"expiration"`
}

type OAuth2Config struct {
	Name         string `toml:"name"`
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURL  string `toml:"redirect_url"`

	// Issuer enables endpoint discovery through the OpenID configuration
	// document. AuthURL and TokenURL are used when it is empty.
	Issuer      string   `toml:"issuer"`
	AuthURL     string   `toml:"auth_url"`
	TokenURL    string   `toml:"token_url"`
	APIEndpoint string   `toml:"api_endpoint"`
	Scopes      []string `toml:"scopes"`

	// State is the anti-forgery value embedded in the authorization url and
	// compared verbatim on authorize.
	State string `toml:"state"`

	RequestTimeout    time.Duration `toml:"request_timeout"`
	DefaultRetryAfter time.Duration `toml:"default_retry_after"`
}

type RedisConfigs struct {
	Enable bool   `toml:"enable"`
	Addr   string `toml:"addr"`
}

type CronConfigs struct {
	ListeningHistoryInterval time.Duration `toml:"listening_history_interval"`
	ListeningHistoryLimit    int           `toml:"listening_history_limit"`
	MaxConcurrentUsers       int           `toml:"max_concurrent_users"`
}

// Default returns the configuration used when neither a file nor a flag sets
// a value.
func Default() Configs {
	return Configs{
		Env:      "local",
		LogLevel: "info",
		Database: DatabaseConfigs{
			Driver:   "mysql",
			Host:     "localhost",
			Port:     "3306",
			Database: "soundtrail",
			User:     "root",
			LogLevel: "error",
		},
		ApiServer: ServerConfigs{
			Port:           "8080",
			AllowedOrigins: []string{"*"},
			MaxLimit:       50,
			DefaultLimit:   20,
		},
		Auth: AuthConfigs{
			AccessToken: TokenConfigs{
				Name:       "access_token",
				Expiration: 15 * time.Minute,
			},
			RefreshToken: TokenConfigs{
				Name: "refresh_token",
			},
			LongExpirationMonths: 6,
		},
		Spotify: OAuth2Config{
			Name:        "spotify",
			AuthURL:     "https://accounts.spotify.com/authorize",
			TokenURL:    "https://accounts.spotify.com/api/token",
			APIEndpoint: "https://api.spotify.com/v1",
			Scopes: []string{
				"user-read-private",
				"user-read-email",
				"user-read-currently-playing",
				"user-read-recently-played",
			},
			RequestTimeout:    10 * time.Second,
			DefaultRetryAfter: 5 * time.Second,
		},
		Redis: RedisConfigs{
			Addr: "localhost:6379",
		},
		Cron: CronConfigs{
			ListeningHistoryInterval: time.Minute,
			ListeningHistoryLimit:    50,
			MaxConcurrentUsers:       4,
		},
	}
}

// Load reads a TOML file on top of the default configuration. An empty path
// returns the defaults.
func Load(path string) (Configs, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Configs{}, fmt.Errorf("cannot decode config file %s: %w", path, err)
	}

	return cfg, nil
}

// Validate reports the first setting the service cannot run without.
func (c Configs) Validate() error {
	switch {
	case c.Auth.TokenSecret == "":
		return errors.New("auth.token_secret is required")
	case c.Auth.AccessToken.Expiration <= 0:
		return errors.New("auth.access_token.expiration must be positive")
	case c.Auth.LongExpirationMonths <= 0:
		return errors.New("auth.long_expiration_months must be positive")
	case c.Spotify.ClientID == "" || c.Spotify.ClientSecret == "":
		return errors.New("spotify client credentials are required")
	case c.Spotify.State == "":
		return errors.New("spotify.state is required")
	}

	return nil
}
