package oidc

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"github.com/sitesmith/builder-front/internal/log"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

// Profile is the normalized identity returned by the provider, regardless
// of whether a value came from ID-token claims or the userinfo endpoint.
// Userinfo values take precedence when present.
type Profile struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	Name          string `json:"name,omitempty"`
	Picture       string `json:"picture,omitempty"`
	EmailVerified bool   `json:"email_verified,omitempty"`
}

// Config configures the relying-party client
type Config struct {
	IssuerURL    string
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Scopes       []string
}

// Client is the OIDC relying-party adapter: discovery, authorization-URL
// construction, code exchange, and profile retrieval.
//
// Discovery runs lazily on first use and the result is cached for the
// process lifetime; a provider-side key rotation requires a restart.
// Concurrent first calls are collapsed to a single network request.
type Client struct {
	cfg        Config
	httpClient *http.Client
	provider   atomic.Pointer[gooidc.Provider]
	group      singleflight.Group
}

// New creates a client. No network call happens until the first flow.
func New(cfg Config) *Client {
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{gooidc.ScopeOpenID, "profile", "email"}
	}
	cfg.Scopes = scopes
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// discover returns the cached provider metadata, fetching it on first use
func (c *Client) discover(ctx context.Context) (*gooidc.Provider, error) {
	if p := c.provider.Load(); p != nil {
		return p, nil
	}

	v, err, _ := c.group.Do("discovery", func() (any, error) {
		if p := c.provider.Load(); p != nil {
			return p, nil
		}
		p, err := gooidc.NewProvider(gooidc.ClientContext(ctx, c.httpClient), c.cfg.IssuerURL)
		if err != nil {
			return nil, fmt.Errorf("%w: discovery failed: %v", ErrProviderUnavailable, err)
		}
		c.provider.Store(p)
		log.LogDebugWithFields("oidc", "Discovered provider configuration", map[string]any{
			"issuer": c.cfg.IssuerURL,
		})
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*gooidc.Provider), nil
}

func (c *Client) oauth2Config(p *gooidc.Provider) oauth2.Config {
	return oauth2.Config{
		ClientID:     c.cfg.ClientID,
		ClientSecret: c.cfg.ClientSecret,
		RedirectURL:  c.cfg.RedirectURI,
		Endpoint:     p.Endpoint(),
		Scopes:       c.cfg.Scopes,
	}
}

// AuthorizationURL builds the provider authorization URL for an attempt.
// The URL embeds state, nonce, the S256 code challenge, redirect_uri, and
// the configured scopes. Deterministic; no network call beyond discovery.
func (c *Client) AuthorizationURL(ctx context.Context, attempt LoginAttempt) (string, error) {
	p, err := c.discover(ctx)
	if err != nil {
		return "", err
	}
	conf := c.oauth2Config(p)
	return conf.AuthCodeURL(attempt.State,
		gooidc.Nonce(attempt.Nonce),
		oauth2.S256ChallengeOption(attempt.CodeVerifier),
	), nil
}

// idTokenClaims is the subset of ID-token / userinfo claims we consume
type idTokenClaims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// Exchange validates the callback against the stored attempt, exchanges
// the authorization code using the stored PKCE verifier, verifies the
// ID token (signature, audience, nonce), and resolves the user profile.
//
// Userinfo augmentation is best effort: a failure there is logged and the
// ID-token claims stand alone. A missing email after both sources is a
// hard failure - an empty-string identity must never reach the user store.
func (c *Client) Exchange(ctx context.Context, callback *url.URL, attempt LoginAttempt) (*Profile, error) {
	query := callback.Query()

	if errCode := query.Get("error"); errCode != "" {
		return nil, fmt.Errorf("%w: provider returned %q: %s", ErrExchange, errCode, query.Get("error_description"))
	}

	if subtle.ConstantTimeCompare([]byte(query.Get("state")), []byte(attempt.State)) != 1 {
		return nil, fmt.Errorf("%w: state mismatch", ErrExchange)
	}

	code := query.Get("code")
	if code == "" {
		return nil, fmt.Errorf("%w: missing authorization code", ErrExchange)
	}

	p, err := c.discover(ctx)
	if err != nil {
		return nil, err
	}

	conf := c.oauth2Config(p)
	token, err := conf.Exchange(gooidc.ClientContext(ctx, c.httpClient), code,
		oauth2.VerifierOption(attempt.CodeVerifier))
	if err != nil {
		return nil, fmt.Errorf("%w: token exchange failed: %v", ErrExchange, err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, fmt.Errorf("%w: no ID token in token response", ErrExchange)
	}

	idToken, err := p.VerifierContext(gooidc.ClientContext(ctx, c.httpClient),
		&gooidc.Config{ClientID: c.cfg.ClientID}).Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("%w: ID token verification failed: %v", ErrExchange, err)
	}

	if subtle.ConstantTimeCompare([]byte(idToken.Nonce), []byte(attempt.Nonce)) != 1 {
		return nil, fmt.Errorf("%w: nonce mismatch", ErrExchange)
	}

	var claims idTokenClaims
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("%w: failed to parse ID token claims: %v", ErrExchange, err)
	}

	profile := &Profile{
		Sub:           idToken.Subject,
		Email:         claims.Email,
		Name:          claims.Name,
		Picture:       claims.Picture,
		EmailVerified: claims.EmailVerified,
	}
	c.augmentFromUserInfo(ctx, p, token, profile)

	if profile.Email == "" {
		return nil, fmt.Errorf("%w: provider supplied no email in claims or userinfo", ErrExchange)
	}

	return profile, nil
}

// userInfoClaims mirrors idTokenClaims with presence tracked where a
// false value is meaningful: userinfo saying "not verified" must win
// over an ID-token claim saying the opposite.
type userInfoClaims struct {
	Email         string `json:"email"`
	EmailVerified *bool  `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// augmentFromUserInfo overlays userinfo values onto the claim-derived
// profile. Never fatal.
func (c *Client) augmentFromUserInfo(ctx context.Context, p *gooidc.Provider, token *oauth2.Token, profile *Profile) {
	userInfo, err := p.UserInfo(gooidc.ClientContext(ctx, c.httpClient), oauth2.StaticTokenSource(token))
	if err != nil {
		log.LogWarnWithFields("oidc", "Failed to fetch userinfo, using ID token claims only", map[string]any{
			"error": err.Error(),
		})
		return
	}

	var claims userInfoClaims
	if err := userInfo.Claims(&claims); err != nil {
		log.LogWarnWithFields("oidc", "Failed to parse userinfo claims, using ID token claims only", map[string]any{
			"error": err.Error(),
		})
		return
	}

	if claims.Email != "" {
		profile.Email = claims.Email
	}
	if claims.Name != "" {
		profile.Name = claims.Name
	}
	if claims.Picture != "" {
		profile.Picture = claims.Picture
	}
	if claims.EmailVerified != nil {
		profile.EmailVerified = *claims.EmailVerified
	}
}
