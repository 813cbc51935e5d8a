package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	err := os.WriteFile(path, []byte(`
env = "prod"

[auth]
token_secret = "secret"
long_expiration_months = 3

[auth.access_token]
expiration = "5m"

[spotify]
client_id = "client"
state = "fixed-state"
request_timeout = "3s"
`), 0600)
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "prod", cfg.Env)
	require.False(t, cfg.IsLocal())
	require.Equal(t, "secret", cfg.Auth.TokenSecret)
	require.Equal(t, 3, cfg.Auth.LongExpirationMonths)
	require.Equal(t, 5*time.Minute, cfg.Auth.AccessToken.Expiration)
	require.Equal(t, "access_token", cfg.Auth.AccessToken.Name)
	require.Equal(t, "client", cfg.Spotify.ClientID)
	require.Equal(t, "fixed-state", cfg.Spotify.State)
	require.Equal(t, 3*time.Second, cfg.Spotify.RequestTimeout)

	// Values absent from the file keep their defaults.
	require.Equal(t, "https://api.spotify.com/v1", cfg.Spotify.APIEndpoint)
	require.Equal(t, time.Minute, cfg.Cron.ListeningHistoryInterval)
}

func TestLoad_NoFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}

func TestDatabaseConfigs_ConnectionString(t *testing.T) {
	d := DatabaseConfigs{User: "u", Password: "p", Host: "h", Port: "1", Database: "db"}
	require.Equal(t, "u:p@tcp(h:1)/db?charset=utf8mb4&parseTime=True&loc=Local", d.ConnectionString())

	d.Driver = "sqlite"
	require.Equal(t, "db", d.ConnectionString())
}

func TestValidate(t *testing.T) {
	valid := Default()
	valid.Auth.TokenSecret = "secret"
	valid.Spotify.ClientID = "client"
	valid.Spotify.ClientSecret = "client-secret"
	valid.Spotify.State = "state"
	require.NoError(t, valid.Validate())

	testCases := []struct {
		name   string
		modify func(cfg *Configs)
	}{
		{name: "no secret", modify: func(cfg *Configs) { cfg.Auth.TokenSecret = "" }},
		{name: "no access expiration", modify: func(cfg *Configs) { cfg.Auth.AccessToken.Expiration = 0 }},
		{name: "no long expiration", modify: func(cfg *Configs) { cfg.Auth.LongExpirationMonths = 0 }},
		{name: "no client secret", modify: func(cfg *Configs) { cfg.Spotify.ClientSecret = "" }},
		{name: "no state", modify: func(cfg *Configs) { cfg.Spotify.State = "" }},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.modify(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}
