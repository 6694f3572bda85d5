package config

import (
	"time"

	"github.com/GoProfilePortal/GoProfilePortal/internal/logger"
)

// Session settings for the signed session cookie.
type Session struct {
	ExpiryTime time.Duration
}

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	Auth      Auth
	DB        DB
	Log       logger.Log
	Title     string
	Webserver Webserver
}

// Auth groups the authentication settings.
type Auth struct {
	OIDC OIDCAuth
}

// OIDCAuth implements the OpenID Connect provider settings.
type OIDCAuth struct {
	ProviderURL     string        // issuer / discovery URL of the identity provider
	ClientID        string        // OAuth2 client identifier
	ClientSecret    string        // OAuth2 client secret
	RedirectURL     string        // registered callback URL
	Scopes          []string      // requested scopes, default: openid profile email
	EndSessionURL   string        // optional override for the provider logout endpoint
	ExchangeTimeout time.Duration // upper bound for the authorization-code exchange
}

// Webserver implement webserver settings.
type Webserver struct {
	BrowseStatic   bool    // enable static file browsing (for development purposes only)
	CleanPath      bool    // use clean path middleware to allow multi slash requests
	DisableRecover bool    // disable recover middleware
	Domain         string  // domain name for the webserver
	Port           int     // listening port for the webserver
	ShutDownTime   int     // wait time for shutdown
	URL            string  // base url for the webserver
	SessionSecret  string  // secret used to sign the session cookie
	Session        Session // session settings
}
