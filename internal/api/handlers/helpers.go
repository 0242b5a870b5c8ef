package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/maheshrc27/postpilot/internal/transfer"
)

// ackTwiML sends the empty acknowledgement Twilio expects. A 200 here only
// means "request accepted"; the command outcome arrives out of band.
func ackTwiML(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "text/xml")
	return c.Status(fiber.StatusOK).SendString(transfer.EmptyTwiML)
}
