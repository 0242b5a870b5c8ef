package middleware

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	twilioclient "github.com/twilio/twilio-go/client"

	config "github.com/maheshrc27/postpilot/configs"
	"github.com/maheshrc27/postpilot/internal/transfer"
)

// SignatureMiddleware authenticates inbound Twilio webhooks. The signature
// header covers the full request URL plus the form parameters, computed with
// the account auth token. Requests that fail validation get a generic 403
// and never reach command parsing; the detail stays in the server log.
type SignatureMiddleware struct {
	cfg config.Config
}

func NewSignatureMiddleware(cfg config.Config) *SignatureMiddleware {
	return &SignatureMiddleware{cfg: cfg}
}

func (m *SignatureMiddleware) ValidateSignature() fiber.Handler {
	validator := twilioclient.NewRequestValidator(m.cfg.TwilioAuthToken)

	return func(c *fiber.Ctx) error {
		// Explicit opt-out for local development without a public URL.
		if !m.cfg.ValidateSignature {
			return c.Next()
		}

		// A missing auth token is a hard rejection, never a silent bypass.
		if m.cfg.TwilioAuthToken == "" {
			slog.Error("signature validation enabled but TWILIO_AUTH_TOKEN is not set")
			return rejectTwiML(c)
		}

		signature := c.Get("X-Twilio-Signature")
		if signature == "" {
			slog.Warn("webhook request missing signature header", "ip", c.IP())
			return rejectTwiML(c)
		}

		params := make(map[string]string)
		c.Request().PostArgs().VisitAll(func(key, value []byte) {
			params[string(key)] = string(value)
		})

		if !validator.Validate(m.requestURL(c), params, signature) {
			slog.Warn("webhook signature validation failed", "ip", c.IP(), "url", m.requestURL(c))
			return rejectTwiML(c)
		}

		return c.Next()
	}
}

// requestURL rebuilds the URL Twilio signed. Behind a reverse proxy the
// scheme and host seen locally differ from the public ones, so a configured
// public base URL wins over what the request carries.
func (m *SignatureMiddleware) requestURL(c *fiber.Ctx) string {
	if m.cfg.PublicBaseURL != "" {
		return m.cfg.PublicBaseURL + c.OriginalURL()
	}
	return c.BaseURL() + c.OriginalURL()
}

func rejectTwiML(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "text/xml")
	return c.Status(fiber.StatusForbidden).SendString(transfer.EmptyTwiML)
}
