package repository

import (
	"context"
	"time"

	"github.com/maheshrc27/postpilot/internal/models"
)

// PostRepository persists approval-queue post records. Two backends exist:
// a flat-file store (one JSON document per record) and postgres. Business
// logic never branches on which one it got.
type PostRepository interface {
	// Create assigns the next ID, stamps CreatedAt/ExpiresAt if unset, and
	// persists the record. IDs are monotonic and never reused, even after
	// Remove.
	Create(ctx context.Context, post *models.PostRecord) (int64, error)
	// GetByID returns (nil, nil) when no record exists.
	GetByID(ctx context.Context, id int64) (*models.PostRecord, error)
	// ListByStatus returns records in CreatedAt ascending order.
	ListByStatus(ctx context.Context, status string) ([]*models.PostRecord, error)
	UpdateStatus(ctx context.Context, status string, postID int64) error
	MarkNotified(ctx context.Context, postID int64, at time.Time) error
	MarkTimeoutNotified(ctx context.Context, postID int64, at time.Time) error
	Remove(ctx context.Context, id int64) error
	// CleanupExpired deletes every record created before cutoff, regardless
	// of status, and reports how many were removed. Safe to run repeatedly.
	CleanupExpired(ctx context.Context, cutoff time.Time) (int, error)
}
