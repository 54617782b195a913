package handlers

import (
	applog "souqnest/internal/log"
	"souqnest/internal/services"

	"github.com/gofiber/fiber/v2"
)

// RequireAdmin guards the admin JSON API: 401 without a session user, 403
// for anyone but a SUPER_ADMIN.
func RequireAdmin(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := ensureSID(c)
		u, err := auth.CurrentUser(sid)
		if err != nil || u == nil {
			applog.Security(c, "access.denied.admin", map[string]any{"reason": "anonymous"})
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Please log in."})
		}
		if !auth.IsAdmin(u) {
			applog.Security(c, "access.denied.admin", map[string]any{"user_id": u.ID, "role": u.Role})
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": msgDenied})
		}
		c.Locals("user", u)
		return c.Next()
	}
}
