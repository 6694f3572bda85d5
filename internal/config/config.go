// Package config handles input from etc/*.toml files
package config

import (
	"bytes"
	"encoding/json"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/BurntSushi/toml"
)

const (
	// MinSessionSecretLen is the minimum byte length of the session signing secret.
	MinSessionSecretLen = 32

	// DefaultExchangeTimeout bounds the OIDC authorization-code exchange.
	DefaultExchangeTimeout = 10 * time.Second

	// DefaultSessionExpiry is the session cookie lifetime if none is configured.
	DefaultSessionExpiry = 12 * time.Hour
)

// ReadConfig from config file.
func ReadConfig(path string) (Config, error) {
	var (
		c             Config
		JSONConfigEnv string
		err           error
	)

	// Read main configuration
	if path == "" {
		path = "./etc/"
	}

	if _, err = toml.DecodeFile(path+"main.toml", &c); err != nil {
		return Config{}, errors.Wrap(err, "failed to read main config file")
	}

	// override it from env
	JSONConfigEnv = os.Getenv("GO_PROFILE_PORTAL_CONFIG_JSON")

	if JSONConfigEnv != "" {
		c, err = decodeAndMergeConfig(c, JSONConfigEnv)
		if err != nil {
			return c, err
		}
	}

	return c, validate(&c)
}

func decodeAndMergeConfig(c Config, configAsJSON string) (Config, error) {
	err := json.Unmarshal([]byte(configAsJSON), &c)
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to read main config file")
	}

	return c, nil
}

// DumpConfig config as TOML String.
func DumpConfig(c Config) (string, error) {
	var buffer bytes.Buffer
	t := toml.NewEncoder(&buffer)

	if err := t.Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// DumpConfigJSON config as JSON String.
func DumpConfigJSON(c Config) (string, error) {
	var buffer bytes.Buffer
	j := json.NewEncoder(&buffer)
	j.SetIndent("", "  ")

	if err := j.Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// validate minimal config settings needed to run the portal.
// The session signing secret and the OIDC client settings belong to the
// authentication trust boundary and are checked at startup, not at first use.
func validate(c *Config) error {
	invalidErrMessage := "invalid config"

	// validate webserver listening port
	if c.Webserver.Port == 0 {
		return errors.Wrap(ErrWebServerPortCanNotBeZero, invalidErrMessage)
	}

	if c.Webserver.URL == "" {
		return errors.Wrap(ErrEmptyURL, invalidErrMessage)
	}

	if len(c.Webserver.SessionSecret) < MinSessionSecretLen {
		return errors.Wrap(ErrSessionSecretTooShort, invalidErrMessage)
	}

	if c.Auth.OIDC.ProviderURL == "" {
		return errors.Wrap(ErrOIDCProviderURLEmpty, invalidErrMessage)
	}

	if c.Auth.OIDC.ClientID == "" {
		return errors.Wrap(ErrOIDCClientIDEmpty, invalidErrMessage)
	}

	if c.Auth.OIDC.RedirectURL == "" {
		return errors.Wrap(ErrOIDCRedirectURLEmpty, invalidErrMessage)
	}

	if c.Webserver.ShutDownTime == 0 {
		c.Webserver.ShutDownTime = 5 // set default of 5 seconds
	}

	if c.Auth.OIDC.ExchangeTimeout == 0 {
		c.Auth.OIDC.ExchangeTimeout = DefaultExchangeTimeout
	}

	if c.Webserver.Session.ExpiryTime == 0 {
		c.Webserver.Session.ExpiryTime = DefaultSessionExpiry
	}

	if c.DB.GormEngine == "" {
		c.DB.GormEngine = GormEngineSQLite
	}

	if c.DB.GormEngine == GormEngineSQLite && c.DB.Name == "" {
		c.DB.Name = "portal.db"
	}

	return nil
}
