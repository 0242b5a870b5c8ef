package service

import (
	"context"

	"github.com/maheshrc27/postpilot/internal/models"
)

// Publisher is the consumed capability that posts approved content to
// LinkedIn. It polls for approved records through the queue and marks them
// published; the implementation lives outside this service.
type Publisher interface {
	Publish(ctx context.Context, post *models.PostRecord) error
}
