package middleware

import (
	"crypto/subtle"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/problemdock/ProblemDock/internal/pkg/env"
)

// SweepKeyAuth guards maintenance endpoints meant for external schedulers.
// The caller must present the configured shared secret; responses reveal
// nothing beyond the key being invalid.
func SweepKeyAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		secret := strings.TrimSpace(env.GetEnv("SPONSOR_SWEEP_API_KEY", ""))
		if secret == "" {
			log.Print("sweep key middleware: SPONSOR_SWEEP_API_KEY is not configured")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Invalid key"})
		}

		key := extractAPIKeyFromHeader(c)
		if key == "" || subtle.ConstantTimeCompare([]byte(key), []byte(secret)) != 1 {
			log.Printf("sweep key middleware: rejected request from %s", c.IP())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Invalid key"})
		}

		return c.Next()
	}
}

func extractAPIKeyFromHeader(c *fiber.Ctx) string {
	apiKey := strings.TrimSpace(c.Get("X-API-Key"))
	if apiKey != "" {
		return apiKey
	}
	auth := strings.TrimSpace(c.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}
