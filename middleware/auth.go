// middleware/auth.go
package middleware

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// UserContextMiddleware extracts the caller identity and roles the Gateway
// attached. The engine only ever consumes this as a boolean gate — the
// session store itself lives elsewhere.
func UserContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Get("X-User-ID")
		rolesStr := c.Get("X-User-Roles")

		var roles []string
		if rolesStr != "" {
			for _, r := range strings.Split(rolesStr, ",") {
				r = strings.TrimSpace(r)
				if r != "" {
					roles = append(roles, r)
				}
			}
		}

		c.Locals("user_id", userID)
		c.Locals("user_roles", roles)

		return c.Next()
	}
}

// RequireSuperAdmin rejects callers without the super-admin role before any
// computation runs.
func RequireSuperAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		roles, _ := c.Locals("user_roles").([]string)
		for _, r := range roles {
			if r == "super-admin" {
				return c.Next()
			}
		}
		userID, _ := c.Locals("user_id").(string)
		log.Printf("🚫 [AUTH] User %q denied super-admin route: %s", userID, c.Path())
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "super-admin role required",
		})
	}
}
