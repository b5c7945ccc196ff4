package config

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Addr:             ":8080",
		OIDCIssuer:       "https://login.example.com",
		OIDCClientID:     "client-id",
		OIDCClientSecret: "client-secret",
		OIDCRedirectURI:  "https://apps.example.com/auth/infomaniak/callback",
		OIDCScopes:       "openid profile email",
		AuthSecret:       "auth-secret",
	}
}

func TestValidate_OK(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, Validate(&cfg))
}

func TestValidate_MissingRequired(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"issuer", func(c *Config) { c.OIDCIssuer = "" }, "OIDC_ISSUER"},
		{"client id", func(c *Config) { c.OIDCClientID = "" }, "OIDC_CLIENT_ID"},
		{"client secret", func(c *Config) { c.OIDCClientSecret = "" }, "OIDC_CLIENT_SECRET"},
		{"redirect uri", func(c *Config) { c.OIDCRedirectURI = "" }, "OIDC_REDIRECT_URI"},
		{"auth secret", func(c *Config) { c.AuthSecret = "" }, "AUTH_SECRET"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := Validate(&cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate_MalformedURLs(t *testing.T) {
	cfg := validConfig()
	cfg.OIDCRedirectURI = "not-a-url"
	err := Validate(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OIDC_REDIRECT_URI")

	cfg = validConfig()
	cfg.OIDCIssuer = "://bad"
	err = Validate(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OIDC_ISSUER")
}

func TestValidate_PostgRESTKeyRequired(t *testing.T) {
	cfg := validConfig()
	cfg.PostgRESTURL = "https://rest.example.com"
	err := Validate(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POSTGREST_API_KEY")
}

func TestSecret_Redaction(t *testing.T) {
	s := Secret("super-secret")
	assert.Equal(t, "***", s.String())

	data, err := json.Marshal(struct {
		Key Secret `json:"key"`
	}{Key: s})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "super-secret")

	assert.Equal(t, "", Secret("").String())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("OIDC_ISSUER", "https://login.example.com")
	t.Setenv("OIDC_CLIENT_ID", "client-id")
	t.Setenv("OIDC_CLIENT_SECRET", "client-secret")
	t.Setenv("OIDC_REDIRECT_URI", "https://apps.example.com/auth/infomaniak/callback")
	t.Setenv("AUTH_SECRET", "auth-secret")
	t.Setenv("DEV_LOGIN", "true")
	t.Setenv("ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.DevLogin)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, []string{"openid", "profile", "email"}, cfg.Scopes())
	assert.Equal(t, ":8080", cfg.Addr)
}

func TestLoad_FailsFastWithoutOIDC(t *testing.T) {
	t.Setenv("OIDC_ISSUER", "")
	t.Setenv("OIDC_CLIENT_ID", "")
	t.Setenv("OIDC_CLIENT_SECRET", "")
	t.Setenv("OIDC_REDIRECT_URI", "")
	t.Setenv("AUTH_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required configuration")
}
