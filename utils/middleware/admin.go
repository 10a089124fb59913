package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/nstclasses/tutor-api/model"
	"github.com/nstclasses/tutor-api/utils/response"
)

// RequireAdmin middleware ensures the authenticated user has the admin role.
// Runs after Required, which loads the user into context.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := GetUser(c)
		if !ok || user == nil {
			return response.Unauthorized(c, "Authentication required")
		}

		if user.Role != model.RoleAdmin {
			return response.Forbidden(c, "Admin access required")
		}

		return c.Next()
	}
}
