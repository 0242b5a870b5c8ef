package middleware

import (
	"crypto/subtle"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	config "github.com/maheshrc27/postpilot/configs"
)

// KeyMiddleware protects the internal posts API with a static key. The
// content pipeline is the only expected caller.
type KeyMiddleware struct {
	cfg config.Config
}

func NewKeyMiddleware(cfg config.Config) *KeyMiddleware {
	return &KeyMiddleware{cfg: cfg}
}

func (m *KeyMiddleware) RequireKey() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if m.cfg.APIKey == "" {
			slog.Error("API_KEY is not configured; rejecting internal API request")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		key := c.Get("X-API-Key")
		if key == "" {
			key = c.Query("api_key")
		}

		if subtle.ConstantTimeCompare([]byte(key), []byte(m.cfg.APIKey)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		return c.Next()
	}
}
