package config

import (
	"os"
)

type AuthConfig struct {
	JwksUrl string
	Enabled bool
}

func GetAuthConfig() (*AuthConfig, error) {
	jwksUrl := os.Getenv("JWKS_URL")
	if jwksUrl == "" {
		return &AuthConfig{}, nil
	}

	return &AuthConfig{
		JwksUrl: jwksUrl,
		Enabled: true,
	}, nil
}
