package auth

import "errors"

var (
	// ErrNoIDToken is returned when the OAuth2 token response doesn't contain an ID token.
	// This typically indicates a misconfigured OIDC provider or an incomplete authentication flow.
	ErrNoIDToken = errors.New("no id_token in token response")

	// ErrMissingSubject is returned when the resolved claim set has no subject claim.
	// A token without a subject cannot be reconciled with a local user account.
	ErrMissingSubject = errors.New("no subject claim in token")
)
