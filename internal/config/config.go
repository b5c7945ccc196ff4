package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Secret is a string type that redacts itself when printed
type Secret string

// String implements fmt.Stringer to redact the secret
func (s Secret) String() string {
	if s == "" {
		return ""
	}
	return "***"
}

// MarshalJSON implements json.Marshaler to prevent secrets in JSON logs
func (s Secret) MarshalJSON() ([]byte, error) {
	if s == "" {
		return json.Marshal("")
	}
	return json.Marshal("***")
}

// Config is the environment-driven configuration for builder-front.
// OIDC settings are required; a missing issuer, client id, client secret,
// or redirect URI is a startup failure, not a first-login failure.
type Config struct {
	Addr string `env:"ADDR" envDefault:":8080"`
	Env  string `env:"ENV" envDefault:"development"`

	OIDCIssuer       string `env:"OIDC_ISSUER"`
	OIDCClientID     string `env:"OIDC_CLIENT_ID"`
	OIDCClientSecret Secret `env:"OIDC_CLIENT_SECRET"`
	OIDCRedirectURI  string `env:"OIDC_REDIRECT_URI"`
	OIDCScopes       string `env:"OIDC_SCOPES" envDefault:"openid profile email"`

	// AuthSecret keys the session cookie encryption and the return-to
	// cookie signature. It doubles as the dev login shared secret.
	AuthSecret Secret `env:"AUTH_SECRET"`

	DevLogin        bool   `env:"DEV_LOGIN"`
	DefaultDevEmail string `env:"DEFAULT_DEV_EMAIL" envDefault:"hello@sitesmith.dev"`

	PostgRESTURL    string `env:"POSTGREST_URL"`
	PostgRESTAPIKey Secret `env:"POSTGREST_API_KEY"`
}

// Load parses the environment and validates the result
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing environment: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks the resolved configuration
func Validate(cfg *Config) error {
	var missing []string
	if cfg.OIDCIssuer == "" {
		missing = append(missing, "OIDC_ISSUER")
	}
	if cfg.OIDCClientID == "" {
		missing = append(missing, "OIDC_CLIENT_ID")
	}
	if cfg.OIDCClientSecret == "" {
		missing = append(missing, "OIDC_CLIENT_SECRET")
	}
	if cfg.OIDCRedirectURI == "" {
		missing = append(missing, "OIDC_REDIRECT_URI")
	}
	if cfg.AuthSecret == "" {
		missing = append(missing, "AUTH_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	if u, err := url.Parse(cfg.OIDCIssuer); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("OIDC_ISSUER must be an absolute URL, got %q", cfg.OIDCIssuer)
	}
	if u, err := url.Parse(cfg.OIDCRedirectURI); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("OIDC_REDIRECT_URI must be an absolute URL, got %q", cfg.OIDCRedirectURI)
	}

	if cfg.PostgRESTURL != "" && cfg.PostgRESTAPIKey == "" {
		return fmt.Errorf("POSTGREST_API_KEY is required when POSTGREST_URL is set")
	}

	return nil
}

// IsProduction reports whether the process runs in production mode.
// Production forces https request origins and Secure cookies.
func (c Config) IsProduction() bool {
	return strings.ToLower(c.Env) == "production"
}

// Scopes returns the requested OIDC scopes as a list
func (c Config) Scopes() []string {
	return strings.Fields(c.OIDCScopes)
}
