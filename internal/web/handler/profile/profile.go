// Package profile provides the profile page and profile update handlers.
package profile

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoProfilePortal/GoProfilePortal/internal/config"
	usercontroller "github.com/GoProfilePortal/GoProfilePortal/internal/db/controller/user"
	"github.com/GoProfilePortal/GoProfilePortal/internal/db/models"
	"github.com/GoProfilePortal/GoProfilePortal/internal/web/csrf"
	"github.com/GoProfilePortal/GoProfilePortal/internal/web/handler"
	"github.com/GoProfilePortal/GoProfilePortal/internal/web/session"
)

const (
	// Path is the path to the profile page.
	Path = handler.RootPath + "profile"

	// UpdatePath is the path for profile form submissions.
	UpdatePath = Path + "/update"

	// TemplateName is the name of the profile template.
	TemplateName = "profile"
)

// UpdateForm holds the profile form fields.
type UpdateForm struct {
	FirstName string `form:"first_name" validate:"required,max=100"`
	LastName  string `form:"last_name"  validate:"required,max=100"`
}

// Service is the profile handler service.
type Service struct {
	handler.Service
	cfg      *config.Config
	db       *gorm.DB
	codec    *session.Codec
	validate *validator.Validate
}

// Handler is the profile handler.
var Handler = Service{}

// Init initializes the profile handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, codec *session.Codec) {
	if app == nil || cfg == nil || db == nil || codec == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.db = db
	s.codec = codec
	s.validate = validator.New()

	app.Get(Path, handler.RequireSession, s.Get)
	app.Post(UpdatePath, handler.RequireSession, s.Post)
}

// Get handles the profile page rendering. The form token is minted here on
// first render and then carried in the session cookie, so reloading the page
// keeps the same token.
func (s *Service) Get(c *fiber.Ctx) error {
	data := handler.SessionFromLocals(c)

	token, created := csrf.GetOrCreate(&data)
	if created {
		if err := s.reissueSession(c, &data); err != nil {
			log.Error().Err(err).Msg("failed to re-issue session with form token")
			return c.Status(fiber.StatusInternalServerError).SendString("Internal server error")
		}
	}

	user, err := usercontroller.GetBySubject(s.db, data.Subject)
	if err != nil {
		if !errors.Is(err, usercontroller.ErrUserNotFound) {
			log.Error().Err(err).Str("subject", data.Subject).Msg("failed to load user")
			return c.Status(fiber.StatusInternalServerError).SendString("Internal server error")
		}

		user = &models.User{}
	}

	return c.Render(TemplateName, fiber.Map{
		"Title":         s.cfg.Title,
		"Authenticated": true,
		"Email":         data.Email,
		"DisplayName":   data.DisplayName,
		"PictureURL":    data.PictureURL,
		"FirstName":     user.FirstName,
		"LastName":      user.LastName,
		"CSRFField":     csrf.FormField,
		"CSRFToken":     token,
		"UpdatePath":    UpdatePath,
	}, handler.BaseLayout)
}

// Post handles the profile form submission. The form token is checked before
// anything touches the database.
func (s *Service) Post(c *fiber.Ctx) error {
	data := handler.SessionFromLocals(c)

	if err := csrf.Validate(&data, c.FormValue(csrf.FormField)); err != nil {
		log.Warn().Str("subject", data.Subject).Msg("rejected profile update with invalid form token")
		return c.Status(fiber.StatusForbidden).SendString("Invalid form token")
	}

	form := new(UpdateForm)
	if err := c.BodyParser(form); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Invalid form data")
	}

	if err := s.validate.Struct(form); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("First and last name are required")
	}

	user, err := usercontroller.UpdateNames(s.db, data.Subject, data.Email, form.FirstName, form.LastName)
	if err != nil {
		log.Error().Err(err).Str("subject", data.Subject).Msg("failed to update profile")
		return c.Status(fiber.StatusInternalServerError).SendString("Internal server error")
	}

	// Reflect the new name in the session so pages render it without a
	// directory lookup.
	data.DisplayName = user.FullName()
	if err = s.reissueSession(c, &data); err != nil {
		log.Error().Err(err).Msg("failed to re-issue session after profile update")
		return c.Status(fiber.StatusInternalServerError).SendString("Internal server error")
	}

	log.Info().Str("subject", data.Subject).Msg("profile updated")

	return c.Redirect(Path, fiber.StatusSeeOther)
}

func (s *Service) reissueSession(c *fiber.Ctx, data *session.Data) error {
	encoded, err := s.codec.Encode(data)
	if err != nil {
		return err
	}

	c.Cookie(session.Cookie(encoded, s.cfg.Webserver.Session.ExpiryTime, s.cfg.DevMode))

	return nil
}
