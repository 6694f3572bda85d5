package config

import (
	"errors"
)

var (
	// ErrEmptyURL error if config webserver.URL is empty.
	ErrEmptyURL = errors.New("toml config webserver.url can not be empty")

	// ErrWebServerPortCanNotBeZero error if config webserver listening port is 0.
	ErrWebServerPortCanNotBeZero = errors.New("toml config webserver.port listening port can not be 0")

	// ErrSessionSecretTooShort error if the session signing secret is shorter than MinSessionSecretLen bytes.
	ErrSessionSecretTooShort = errors.New("toml config webserver.sessionsecret must be at least 32 bytes")

	// ErrOIDCProviderURLEmpty error if the OIDC provider URL is missing.
	ErrOIDCProviderURLEmpty = errors.New("toml config auth.oidc.providerurl can not be empty")

	// ErrOIDCClientIDEmpty error if the OIDC client id is missing.
	ErrOIDCClientIDEmpty = errors.New("toml config auth.oidc.clientid can not be empty")

	// ErrOIDCRedirectURLEmpty error if the OIDC redirect URL is missing.
	ErrOIDCRedirectURLEmpty = errors.New("toml config auth.oidc.redirecturl can not be empty")
)
