package middleware

import (
	"cryptoapp-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const userLocal = "user"

// RequireAuth ensures a user is in the session. Returns 401 with standard error format if not.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := c.Locals(userLocal)
		if user == nil {
			return response.Unauthorized(c, "Unauthorized")
		}
		c.Locals("auth", user)
		return c.Next()
	}
}

// GetUser returns the session user from Locals (nil if not logged in).
func GetUser(c *fiber.Ctx) interface{} {
	return c.Locals(userLocal)
}

// CurrentUser extracts the typed session user. ok is false when the session
// holds no usable user.
func CurrentUser(c *fiber.Ctx) (SessionUser, bool) {
	m, ok := c.Locals(userLocal).(map[string]interface{})
	if !ok {
		return SessionUser{}, false
	}
	id, _ := m["user_id"].(string)
	email, _ := m["email"].(string)
	if id == "" {
		return SessionUser{}, false
	}
	if _, err := uuid.Parse(id); err != nil {
		return SessionUser{}, false
	}
	return SessionUser{UserID: id, Email: email}, true
}
