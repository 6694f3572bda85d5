// Package session implements the signed, client-carried session cookie.
//
// The whole session record travels inside one cookie as an HMAC-SHA256
// signed blob, so no request ever needs a session-store round-trip and no
// cross-request session state lives in process memory. The server trusts the
// cookie content only after the signature verifies; anything malformed or
// forged degrades to an anonymous session instead of raising an error.
package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// CookieName is the name of the session cookie.
const CookieName = "session"

// Data represents the session record carried in the signed cookie.
// A non-empty Subject means the request is authenticated; an empty record is
// an anonymous session.
type Data struct {
	// Subject is the external-identity subject claim from the provider.
	Subject string `json:"sub,omitempty"`
	// Email as last received from the identity provider.
	Email string `json:"email,omitempty"`
	// DisplayName as last received from the identity provider.
	DisplayName string `json:"name,omitempty"`
	// PictureURL as last received from the identity provider.
	PictureURL string `json:"picture,omitempty"`
	// CSRFToken is the per-session anti-forgery token. The field is reserved
	// for the csrf package; nothing else may write it.
	CSRFToken string `json:"csrf,omitempty"`
}

// IsAuthenticated reports whether the record represents a logged-in user.
func (d *Data) IsAuthenticated() bool {
	return d.Subject != ""
}

// Codec encodes session records into signed opaque strings and back.
// The signing secret is process-wide configuration loaded once at startup;
// rotating it invalidates every outstanding session.
type Codec struct {
	secret []byte
}

// NewCodec creates a codec signing with the given secret.
func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret)}
}

// Encode serializes and signs the record. The result is
// base64url(json) + "." + base64url(hmac-sha256).
func (c *Codec) Encode(data *Data) (string, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return "", err
	}

	encoded := base64.RawURLEncoding.EncodeToString(payload)

	return encoded + "." + c.sign(encoded), nil
}

// Decode verifies and deserializes a raw cookie value.
// Any verification failure (wrong shape, bad encoding, forged or stale
// signature, broken payload) yields an anonymous record, never an error:
// cookie staleness must not turn into a user-visible failure.
func (c *Codec) Decode(raw string) Data {
	encoded, signature, found := strings.Cut(raw, ".")
	if !found {
		return Data{}
	}

	if !hmac.Equal([]byte(c.sign(encoded)), []byte(signature)) {
		return Data{}
	}

	payload, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return Data{}
	}

	var data Data
	if err := json.Unmarshal(payload, &data); err != nil {
		return Data{}
	}

	return data
}

func (c *Codec) sign(encoded string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(encoded))

	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// Cookie builds the session cookie carrying an encoded record.
// Secure is dropped in dev mode so plain-http localhost setups keep working.
func Cookie(value string, expiry time.Duration, devMode bool) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     CookieName,
		Value:    value,
		MaxAge:   int(expiry.Seconds()),
		Secure:   !devMode,
		HTTPOnly: true,
		SameSite: "Lax",
	}
}

// ClearCookie builds an expired session cookie.
func ClearCookie(devMode bool) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     CookieName,
		Value:    "",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
		Secure:   !devMode,
		HTTPOnly: true,
		SameSite: "Lax",
	}
}
