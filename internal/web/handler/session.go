package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/GoProfilePortal/GoProfilePortal/internal/web/session"
)

// sessionLocalsKey is where the decoded session record lives in fiber locals.
const sessionLocalsKey = "session"

// SessionToLocals stores the decoded session record on the request context.
// Called once per request by the session middleware.
func SessionToLocals(c *fiber.Ctx, data session.Data) {
	c.Locals(sessionLocalsKey, data)
}

// SessionFromLocals returns the request's session record. Requests that
// carried no (or an unverifiable) cookie get an anonymous record.
func SessionFromLocals(c *fiber.Ctx) session.Data {
	if data, ok := c.Locals(sessionLocalsKey).(session.Data); ok {
		return data
	}

	return session.Data{}
}

// RequireSession rejects anonymous requests with 401. It assumes the session
// middleware already ran.
func RequireSession(c *fiber.Ctx) error {
	data := SessionFromLocals(c)
	if !data.IsAuthenticated() {
		return fiber.NewError(fiber.StatusUnauthorized, "Login required")
	}

	return c.Next()
}

// SessionMiddleware decodes the session cookie on every request and stores
// the result in locals. Requests without a valid cookie proceed anonymously.
func SessionMiddleware(codec *session.Codec) fiber.Handler {
	return func(c *fiber.Ctx) error {
		SessionToLocals(c, codec.Decode(c.Cookies(session.CookieName)))

		return c.Next()
	}
}
