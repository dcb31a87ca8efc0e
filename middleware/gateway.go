// middleware/gateway.go
package middleware

import (
	"log"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// GatewayAuthMiddleware verifies that the request came through the Gateway.
// The shared token arrives either as "Authorization: Bearer <token>" or, for
// service-to-service calls, in X-Service-Token.
func GatewayAuthMiddleware() fiber.Handler {
	expectedToken := os.Getenv("ARC_SERVICE_TOKEN")
	if expectedToken == "" {
		log.Fatal("❌ ARC_SERVICE_TOKEN is not set — service cannot authenticate Gateway")
	}

	return func(c *fiber.Ctx) error {
		token := c.Get("X-Service-Token")
		if token == "" {
			// Fall back to the Authorization header, with or without prefix
			token = strings.TrimPrefix(c.Get("Authorization"), "Bearer ")
		}
		if token == "" {
			log.Printf("🚫 [GATEWAY_AUTH] No gateway token on %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "gateway authentication token missing",
			})
		}
		if token != expectedToken {
			log.Printf("❌ [GATEWAY_AUTH] Invalid gateway token on %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid gateway authentication token",
			})
		}
		return c.Next()
	}
}
