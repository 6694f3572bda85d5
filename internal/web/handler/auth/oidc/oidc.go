package oidc

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoProfilePortal/GoProfilePortal/internal/auth"
	"github.com/GoProfilePortal/GoProfilePortal/internal/config"
	usercontroller "github.com/GoProfilePortal/GoProfilePortal/internal/db/controller/user"
	"github.com/GoProfilePortal/GoProfilePortal/internal/web/handler"
	"github.com/GoProfilePortal/GoProfilePortal/internal/web/handler/profile"
	"github.com/GoProfilePortal/GoProfilePortal/internal/web/session"
)

const (
	// LoginPath is the path to initiate OIDC login.
	LoginPath = handler.RootPath + "login"

	// CallbackPath is the path for the OIDC callback.
	CallbackPath = handler.RootPath + "callback"

	// stateExpiry bounds how long an authorization request may stay pending.
	stateExpiry = 5 * time.Minute
)

// Service is the OIDC handler service.
type Service struct {
	handler.Service
	cfg          *config.Config
	db           *gorm.DB
	oidcProvider *auth.OIDCProvider
	codec        *session.Codec

	stateMu    sync.Mutex
	stateStore map[string]time.Time
}

// Handler is the OIDC handler.
var Handler = Service{}

// Init initializes the OIDC handler. A nil provider keeps the routes
// registered but answering 503, so a temporarily unreachable identity
// provider doesn't take the whole portal down at startup.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, provider *auth.OIDCProvider, codec *session.Codec) {
	if app == nil || cfg == nil || db == nil || codec == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.db = db
	s.oidcProvider = provider
	s.codec = codec
	s.stateStore = make(map[string]time.Time)

	app.Get(LoginPath, s.Login)
	app.Get(CallbackPath, s.Callback)

	// Drop expired pending states in the background.
	go s.cleanupStates()
}

// Login initiates the OIDC login flow. Nothing is mutated locally except the
// pending state entry; every call starts a fresh provider-side transaction.
func (s *Service) Login(c *fiber.Ctx) error {
	if s.oidcProvider == nil {
		return c.Status(fiber.StatusServiceUnavailable).SendString("OIDC authentication is not available")
	}

	state, err := auth.GenerateStateToken()
	if err != nil {
		log.Error().Err(err).Msg("failed to generate state token")
		return c.Status(fiber.StatusInternalServerError).SendString("Internal server error")
	}

	s.stateMu.Lock()
	s.stateStore[state] = time.Now().Add(stateExpiry)
	s.stateMu.Unlock()

	return c.Redirect(s.oidcProvider.AuthCodeURL(state))
}

// Callback handles the OIDC callback: it validates the state, exchanges the
// code, reconciles the user account and writes a fresh session cookie.
// Nothing is persisted unless the exchange fully succeeds.
func (s *Service) Callback(c *fiber.Ctx) error {
	if s.oidcProvider == nil {
		return c.Status(fiber.StatusServiceUnavailable).SendString("OIDC authentication is not available")
	}

	code := c.Query("code")
	state := c.Query("state")

	if code == "" || state == "" {
		log.Error().Msg("missing code or state in OIDC callback")
		return c.Status(fiber.StatusBadRequest).SendString("Invalid callback parameters")
	}

	if !s.consumeState(state) {
		log.Error().Msg("invalid or expired state token in OIDC callback")
		return c.Status(fiber.StatusBadRequest).SendString("Invalid state token")
	}

	identity, err := s.oidcProvider.Exchange(c.Context(), code)
	if err != nil {
		log.Error().Err(err).Msg("OIDC authentication failed")
		return c.Status(fiber.StatusUnauthorized).SendString("Authentication failed")
	}

	// Reconcile the account: insert on first sight, refresh email otherwise.
	if _, err = usercontroller.UpsertBySubject(s.db, identity.Subject, identity.Email); err != nil {
		log.Error().Err(err).Str("subject", identity.Subject).Msg("failed to reconcile user")
		return c.Status(fiber.StatusInternalServerError).SendString("Internal server error")
	}

	encoded, err := s.codec.Encode(&session.Data{
		Subject:     identity.Subject,
		Email:       identity.Email,
		DisplayName: identity.DisplayName,
		PictureURL:  identity.PictureURL,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to encode session")
		return c.Status(fiber.StatusInternalServerError).SendString("Internal server error")
	}

	c.Cookie(session.Cookie(encoded, s.cfg.Webserver.Session.ExpiryTime, s.cfg.DevMode))

	log.Info().Str("subject", identity.Subject).Msg("user logged in successfully via OIDC")

	return c.Redirect(profile.Path)
}

// consumeState removes the pending state entry and reports whether it was
// known and unexpired. States are single-use.
func (s *Service) consumeState(state string) bool {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	expiration, exists := s.stateStore[state]
	if !exists {
		return false
	}

	delete(s.stateStore, state)

	return time.Now().Before(expiration)
}

// cleanupStates periodically removes expired state tokens.
func (s *Service) cleanupStates() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()

		s.stateMu.Lock()
		for state, expiration := range s.stateStore {
			if now.After(expiration) {
				delete(s.stateStore, state)
			}
		}
		s.stateMu.Unlock()
	}
}
