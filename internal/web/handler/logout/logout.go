package logout

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/GoProfilePortal/GoProfilePortal/internal/auth"
	"github.com/GoProfilePortal/GoProfilePortal/internal/config"
	"github.com/GoProfilePortal/GoProfilePortal/internal/web/handler"
	"github.com/GoProfilePortal/GoProfilePortal/internal/web/session"
)

// Path is the logout path.
const Path = handler.RootPath + "logout"

// Service is the logout handler service.
type Service struct {
	handler.Service
	cfg          *config.Config
	oidcProvider *auth.OIDCProvider
}

// Handler is the logout handler.
var Handler = Service{}

// Init initializes the logout handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, provider *auth.OIDCProvider) {
	if app == nil || cfg == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.oidcProvider = provider

	app.Get(Path, s.Logout)
	app.Post(Path, s.Logout)
}

// Logout clears the session cookie and sends the user to the provider's
// end-session endpoint. The cookie is cleared unconditionally, so repeating
// the request for an already logged-out user is harmless.
func (s *Service) Logout(c *fiber.Ctx) error {
	c.Cookie(session.ClearCookie(s.cfg.DevMode))

	if data := handler.SessionFromLocals(c); data.IsAuthenticated() {
		log.Info().Str("subject", data.Subject).Msg("user logged out")
	}

	if s.oidcProvider == nil {
		return c.Redirect(handler.RootPath)
	}

	return c.Redirect(s.oidcProvider.EndSessionURL(s.cfg.Webserver.URL))
}
