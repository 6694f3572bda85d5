// Package oidc provides handlers for the OpenID Connect (OIDC) login flow.
//
// This package implements the OAuth2/OIDC authorization-code flow against an
// external identity provider such as Keycloak, Okta, Auth0 or Azure AD.
//
// The flow includes:
//   - Login initiation with single-use state tokens
//   - Authorization callback handling with ID token verification
//   - Automatic user creation/update from OIDC claims
//   - Signed session cookie creation
//
// Example usage:
//
//	// Initialize OIDC handler
//	oidc.Handler.Init(app, cfg, db, provider, codec)
//
//	// Users can then access:
//	// GET /login    - Initiate OIDC login flow
//	// GET /callback - Handle provider callback
package oidc
