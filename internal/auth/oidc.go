package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// DefaultExchangeTimeout bounds the authorization-code exchange when the
// configuration doesn't set one.
const DefaultExchangeTimeout = 10 * time.Second

// OIDCConfig holds OpenID Connect (OIDC) configuration for authentication.
type OIDCConfig struct {
	// ProviderURL is the OIDC provider's discovery URL (e.g., "https://accounts.google.com").
	ProviderURL string
	// ClientID is the OAuth2 client identifier.
	ClientID string
	// ClientSecret is the OAuth2 client secret.
	ClientSecret string
	// RedirectURL is the OAuth2 callback URL where the provider redirects after authentication.
	RedirectURL string
	// Scopes are the OAuth2 scopes to request (default: ["openid", "profile", "email"]).
	Scopes []string
	// EndSessionURL overrides the provider's logout endpoint. If empty, the
	// endpoint advertised in the discovery document is used, falling back to
	// "<issuer>/oidc/logout".
	EndSessionURL string
	// ExchangeTimeout is the upper bound for the code exchange round-trip.
	ExchangeTimeout time.Duration
}

// Identity is the claim set resolved from a successful authorization-code
// exchange. Subject is always non-empty; the remaining fields are optional.
type Identity struct {
	Subject     string
	Email       string
	DisplayName string
	PictureURL  string
}

// OIDCProvider handles OIDC authentication.
type OIDCProvider struct {
	config   *OIDCConfig
	provider *oidc.Provider
	verifier *oidc.IDTokenVerifier
	oauth2   oauth2.Config
}

// NewOIDCProvider creates a new OIDC provider. It performs provider discovery
// against the configured issuer, so it needs network access at startup.
func NewOIDCProvider(ctx context.Context, config *OIDCConfig) (*OIDCProvider, error) {
	provider, err := oidc.NewProvider(ctx, config.ProviderURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create OIDC provider: %w", err)
	}

	verifier := provider.Verifier(&oidc.Config{
		ClientID: config.ClientID,
	})

	scopes := config.Scopes
	if len(scopes) == 0 {
		scopes = []string{oidc.ScopeOpenID, "profile", "email"}
	}

	oauth2Config := oauth2.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		RedirectURL:  config.RedirectURL,
		Endpoint:     provider.Endpoint(),
		Scopes:       scopes,
	}

	return &OIDCProvider{
		config:   config,
		provider: provider,
		verifier: verifier,
		oauth2:   oauth2Config,
	}, nil
}

// GenerateStateToken generates a random state token for CSRF protection
// of the authorization request.
func GenerateStateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return base64.URLEncoding.EncodeToString(b), nil
}

// AuthCodeURL returns the OIDC authorization URL with state token.
// No local state is mutated; each call starts a fresh provider-side transaction.
func (p *OIDCProvider) AuthCodeURL(state string) string {
	return p.oauth2.AuthCodeURL(state)
}

// Exchange swaps the authorization code for a token, verifies the ID token
// and resolves the identity claims. The round-trip is bounded by the
// configured exchange timeout; authorization codes are single-use so a failed
// exchange is never retried here.
//
// Exchange performs no persistence: the caller decides what to do with the
// returned Identity, so a failure at any step commits nothing.
func (p *OIDCProvider) Exchange(ctx context.Context, code string) (*Identity, error) {
	timeout := p.config.ExchangeTimeout
	if timeout == 0 {
		timeout = DefaultExchangeTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// Exchange code for token
	oauth2Token, err := p.oauth2.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange token: %w", err)
	}

	// Extract ID token
	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		return nil, ErrNoIDToken
	}

	// Verify ID token
	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("failed to verify ID token: %w", err)
	}

	var claims struct {
		Sub        string `json:"sub"`
		Email      string `json:"email"`
		Name       string `json:"name"`
		GivenName  string `json:"given_name"`
		FamilyName string `json:"family_name"`
		Picture    string `json:"picture"`
	}

	if err = idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("failed to parse claims: %w", err)
	}

	if claims.Sub == "" {
		return nil, ErrMissingSubject
	}

	identity := &Identity{
		Subject:     claims.Sub,
		Email:       claims.Email,
		DisplayName: claims.Name,
		PictureURL:  claims.Picture,
	}

	if identity.DisplayName == "" {
		identity.DisplayName = strings.TrimSpace(claims.GivenName + " " + claims.FamilyName)
	}

	// Some providers keep profile claims out of the ID token. Enrichment via
	// the UserInfo endpoint is best effort: the subject is already resolved.
	if identity.Email == "" || identity.DisplayName == "" || identity.PictureURL == "" {
		p.enrichFromUserInfo(ctx, oauth2Token, identity)
	}

	return identity, nil
}

// enrichFromUserInfo fills empty Identity fields from the UserInfo endpoint.
func (p *OIDCProvider) enrichFromUserInfo(ctx context.Context, token *oauth2.Token, identity *Identity) {
	userInfo, err := p.provider.UserInfo(ctx, oauth2.StaticTokenSource(token))
	if err != nil {
		return
	}

	var claims struct {
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}

	if err := userInfo.Claims(&claims); err != nil {
		return
	}

	if identity.Email == "" {
		identity.Email = claims.Email
	}

	if identity.DisplayName == "" {
		identity.DisplayName = claims.Name
	}

	if identity.PictureURL == "" {
		identity.PictureURL = claims.Picture
	}
}

// EndSessionURL constructs the provider's logout URL with the client_id and
// returnTo query parameters. Preference order: configured override, the
// end_session_endpoint advertised by the provider, then "<issuer>/oidc/logout".
func (p *OIDCProvider) EndSessionURL(returnTo string) string {
	endpoint := p.config.EndSessionURL

	if endpoint == "" {
		var claims struct {
			EndSessionEndpoint string `json:"end_session_endpoint"`
		}

		if err := p.provider.Claims(&claims); err == nil && claims.EndSessionEndpoint != "" {
			endpoint = claims.EndSessionEndpoint
		}
	}

	if endpoint == "" {
		endpoint = strings.TrimSuffix(p.config.ProviderURL, "/") + "/oidc/logout"
	}

	params := url.Values{}
	params.Set("client_id", p.config.ClientID)
	params.Set("returnTo", returnTo)

	return endpoint + "?" + params.Encode()
}
