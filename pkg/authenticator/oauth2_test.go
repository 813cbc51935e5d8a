package authenticator_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/soundtrail/backend/config"
	"github.com/soundtrail/backend/pkg/authenticator"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestNewOAuth2Config_StaticEndpoint(t *testing.T) {
	cfg, err := authenticator.NewOAuth2Config(context.Background(), config.OAuth2Config{
		Name:         "spotify",
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURL:  "https://example.com/callback",
		AuthURL:      "https://accounts.example.com/authorize",
		TokenURL:     "https://accounts.example.com/api/token",
		Scopes:       []string{"user-read-private"},
	})
	require.NoError(t, err)

	require.Equal(t, "spotify", cfg.Name)
	require.Equal(t, "https://accounts.example.com/api/token", cfg.Endpoint.TokenURL)
	require.Equal(t, oauth2.AuthStyleInHeader, cfg.Endpoint.AuthStyle)
	require.Equal(t, []string{"user-read-private"}, cfg.Scopes)
}

func TestNewOAuth2Config_Discovery(t *testing.T) {
	var issuer string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/.well-known/openid-configuration", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(map[string]any{
			"issuer":                 issuer,
			"authorization_endpoint": issuer + "/authorize",
			"token_endpoint":         issuer + "/token",
			"jwks_uri":               issuer + "/jwks",
		}))
	}))
	defer server.Close()
	issuer = server.URL

	cfg, err := authenticator.NewOAuth2Config(context.Background(), config.OAuth2Config{
		Issuer:   issuer,
		AuthURL:  "https://ignored.example.com/authorize",
		TokenURL: "https://ignored.example.com/token",
	})
	require.NoError(t, err)
	require.Equal(t, issuer+"/authorize", cfg.Endpoint.AuthURL)
	require.Equal(t, issuer+"/token", cfg.Endpoint.TokenURL)
}
