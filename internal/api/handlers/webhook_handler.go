package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

// CommandEnqueuer schedules an inbound command for async processing.
type CommandEnqueuer interface {
	EnqueueCommand(from, body string) error
}

// WebhookHandler terminates inbound WhatsApp messages. The transport expects
// a fast synchronous reply, so the handler acks immediately and the command
// is processed after the response goes out; any human-visible outcome is
// delivered through a separate outbound message.
type WebhookHandler struct {
	enqueuer CommandEnqueuer
}

func NewWebhookHandler(enqueuer CommandEnqueuer) *WebhookHandler {
	return &WebhookHandler{enqueuer: enqueuer}
}

func (h *WebhookHandler) Incoming(c *fiber.Ctx) error {
	from := c.FormValue("From")
	body := c.FormValue("Body")

	if err := h.enqueuer.EnqueueCommand(from, body); err != nil {
		// The ack still goes out; Twilio retrying the webhook would only
		// duplicate the command once the queue recovers.
		slog.Error("failed to enqueue inbound command", "from", from, "error", err)
	}

	return ackTwiML(c)
}
