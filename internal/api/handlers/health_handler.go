package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/maheshrc27/postpilot/internal/service"
)

type HealthHandler struct {
	queue     service.ApprovalService
	startedAt time.Time
}

func NewHealthHandler(queue service.ApprovalService) *HealthHandler {
	return &HealthHandler{queue: queue, startedAt: time.Now()}
}

// Healthz reports liveness and storage reachability.
func (h *HealthHandler) Healthz(c *fiber.Ctx) error {
	posts, err := h.queue.ListPending(c.Context())
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "degraded",
			"error":  err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "ok",
		"pending": len(posts),
		"uptime":  time.Since(h.startedAt).Round(time.Second).String(),
	})
}
