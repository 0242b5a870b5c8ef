package jobs

import (
	"context"
	"log/slog"

	"github.com/maheshrc27/postpilot/internal/service"
)

// CleanupJob removes posts older than the retention window, whatever their
// status. Scheduled hourly from main and run once at process start.
type CleanupJob struct {
	queue service.ApprovalService
}

func NewCleanupJob(queue service.ApprovalService) *CleanupJob {
	return &CleanupJob{queue: queue}
}

func (c *CleanupJob) CleanupExpired() {
	ctx := context.Background()

	if _, err := c.queue.CleanupExpired(ctx); err != nil {
		slog.Error("retention cleanup failed", "error", err)
	}
}
