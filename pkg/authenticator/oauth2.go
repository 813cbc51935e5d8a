package authenticator

import (
	"context"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/soundtrail/backend/config"
	"golang.org/x/oauth2"
)

type OAuth2Config struct {
	oauth2.Config

	Name string
}

// NewOAuth2Config builds the oauth2 client configuration of a provider. When
// the provider publishes an OpenID configuration document (cfg.Issuer), its
// endpoints are discovered from it.
func NewOAuth2Config(ctx context.Context, cfg config.OAuth2Config) (*OAuth2Config, error) {
	endpoint := oauth2.Endpoint{
		AuthURL:   cfg.AuthURL,
		TokenURL:  cfg.TokenURL,
		AuthStyle: oauth2.AuthStyleInHeader,
	}

	if cfg.Issuer != "" {
		provider, err := oidc.NewProvider(ctx, cfg.Issuer)
		if err != nil {
			return nil, err
		}

		endpoint = provider.Endpoint()
	}

	return &OAuth2Config{
		Name: cfg.Name,
		Config: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     endpoint,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
		},
	}, nil
}
