package auth

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
)

// HeaderName is the request header that carries the API key.
const HeaderName = "X-API-Key"

// Config holds configuration for the API key guard.
type Config struct {
	// ApiKey is the expected key. Empty disables the guard.
	ApiKey string
	// Skip lists path prefixes served without a key.
	Skip []string
}

// New creates the API key middleware.
func New(cfg Config) fiber.Handler {
	expected := []byte(cfg.ApiKey)

	return func(c *fiber.Ctx) error {
		if cfg.ApiKey == "" {
			return c.Next()
		}
		for _, prefix := range cfg.Skip {
			if len(c.Path()) >= len(prefix) && c.Path()[:len(prefix)] == prefix {
				return c.Next()
			}
		}

		key := c.Get(HeaderName)
		if key == "" {
			key = c.Query("api_key")
		}
		if subtle.ConstantTimeCompare([]byte(key), expected) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid or missing api key"})
		}
		return c.Next()
	}
}
