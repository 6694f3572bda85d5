// Package index provides the landing page handler.
package index

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoProfilePortal/GoProfilePortal/internal/config"
	usercontroller "github.com/GoProfilePortal/GoProfilePortal/internal/db/controller/user"
	"github.com/GoProfilePortal/GoProfilePortal/internal/web/handler"
)

const (
	// Path is the path to the landing page.
	Path = handler.RootPath

	// TemplateName is the name of the landing page template.
	TemplateName = "index"
)

// Service is the index handler service.
type Service struct {
	handler.Service
	cfg *config.Config
	db  *gorm.DB
}

// Handler is the index handler.
var Handler = Service{}

// Init initializes the index handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.db = db

	app.Get(Path, s.Get)
}

// Get handles the landing page rendering. The page is public; authenticated
// visitors get a greeting with their display name, anonymous visitors get a
// login link.
func (s *Service) Get(c *fiber.Ctx) error {
	data := handler.SessionFromLocals(c)

	displayName := data.DisplayName

	// Self-chosen names from the directory take precedence over whatever
	// the identity provider reported at login time.
	if data.IsAuthenticated() {
		if user, err := usercontroller.GetBySubject(s.db, data.Subject); err == nil {
			if name := user.FullName(); name != "" {
				displayName = name
			}
		}
	}

	return c.Render(TemplateName, fiber.Map{
		"Title":         s.cfg.Title,
		"Authenticated": data.IsAuthenticated(),
		"DisplayName":   displayName,
		"Email":         data.Email,
	}, handler.BaseLayout)
}
