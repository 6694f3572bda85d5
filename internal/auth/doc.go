// Package auth implements the OpenID Connect authentication flow against an
// external identity provider.
//
// The OIDCProvider type drives the three steps of the authorization-code
// flow:
//   - AuthCodeURL builds the authorization redirect for the login handler.
//   - Exchange swaps the callback code for a verified ID token and resolves
//     the identity claims (subject, email, display name, picture), fetching
//     the UserInfo endpoint when the ID token omits profile claims.
//   - EndSessionURL builds the provider logout redirect.
//
// The package is deliberately persistence-free: Exchange returns an Identity
// value and the web handlers own all session and user-record mutations. If
// the exchange or the token verification fails, nothing has been committed
// anywhere.
//
// Example usage:
//
//	provider, err := auth.NewOIDCProvider(ctx, &auth.OIDCConfig{
//	    ProviderURL: "https://idp.example.com",
//	    ClientID:    "my-client",
//	    RedirectURL: "https://app.example.com/callback",
//	})
//
//	state, _ := auth.GenerateStateToken()
//	redirectTo := provider.AuthCodeURL(state)
//
//	// later, in the callback:
//	identity, err := provider.Exchange(ctx, code)
package auth
