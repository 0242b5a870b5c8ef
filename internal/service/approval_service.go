package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/maheshrc27/postpilot/internal/models"
	"github.com/maheshrc27/postpilot/internal/repository"
)

// ApprovalService owns the post lifecycle: it assigns IDs, persists new
// records as pending, and is the single choke point through which every
// component (webhook dispatcher, timeout sweeper, publisher) touches storage.
type ApprovalService interface {
	Enqueue(ctx context.Context, content json.RawMessage, imagePath string, notify bool) (*models.PostRecord, error)
	Get(ctx context.Context, id int64) (*models.PostRecord, error)
	// UpdateStatus checks only that the record exists. The pending-only guard
	// belongs to callers that need idempotency semantics; the command
	// dispatcher performs it explicitly before calling this.
	UpdateStatus(ctx context.Context, id int64, status string) (*models.PostRecord, error)
	ListPending(ctx context.Context) ([]*models.PostRecord, error)
	Remove(ctx context.Context, id int64) error
	MarkTimeoutNotified(ctx context.Context, id int64, at time.Time) error
	// CleanupExpired removes every record older than the retention window,
	// regardless of status. Idempotent.
	CleanupExpired(ctx context.Context) (int, error)
}

type approvalService struct {
	pr        repository.PostRepository
	notifier  Notifier
	retention time.Duration
}

func NewApprovalService(pr repository.PostRepository, notifier Notifier, retention time.Duration) ApprovalService {
	return &approvalService{
		pr:        pr,
		notifier:  notifier,
		retention: retention,
	}
}

func (s *approvalService) Enqueue(ctx context.Context, content json.RawMessage, imagePath string, notify bool) (*models.PostRecord, error) {
	if len(content) == 0 {
		return nil, fmt.Errorf("content cannot be empty")
	}

	now := time.Now().UTC()
	post := &models.PostRecord{
		Status:    models.PostStatusPending,
		Content:   content,
		ImagePath: imagePath,
		CreatedAt: now,
		ExpiresAt: now.Add(s.retention),
	}

	id, err := s.pr.Create(ctx, post)
	if err != nil {
		return nil, fmt.Errorf("error creating post: %w", err)
	}
	post.ID = id

	if notify {
		// A failed send must not roll back the record: the operator can
		// still discover it with "list" and approve it.
		if err := s.notifier.Send(ctx, FormatApprovalRequest(post), mediaURL(post)); err != nil {
			slog.Error("approval request notification failed", "post_id", id, "error", err)
		} else {
			sentAt := time.Now().UTC()
			if err := s.pr.MarkNotified(ctx, id, sentAt); err != nil {
				return nil, fmt.Errorf("error stamping notified_at: %w", err)
			}
			post.NotifiedAt = &sentAt
		}
	}

	return post, nil
}

func (s *approvalService) Get(ctx context.Context, id int64) (*models.PostRecord, error) {
	post, err := s.pr.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting post %d: %w", id, err)
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	return post, nil
}

func (s *approvalService) UpdateStatus(ctx context.Context, id int64, status string) (*models.PostRecord, error) {
	post, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.pr.UpdateStatus(ctx, status, id); err != nil {
		return nil, fmt.Errorf("error updating post %d: %w", id, err)
	}
	post.Status = status
	return post, nil
}

func (s *approvalService) ListPending(ctx context.Context) ([]*models.PostRecord, error) {
	posts, err := s.pr.ListByStatus(ctx, models.PostStatusPending)
	if err != nil {
		return nil, fmt.Errorf("error listing pending posts: %w", err)
	}
	return posts, nil
}

func (s *approvalService) Remove(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.pr.Remove(ctx, id); err != nil {
		return fmt.Errorf("error removing post %d: %w", id, err)
	}
	return nil
}

func (s *approvalService) MarkTimeoutNotified(ctx context.Context, id int64, at time.Time) error {
	if err := s.pr.MarkTimeoutNotified(ctx, id, at); err != nil {
		return fmt.Errorf("error stamping timeout_notified_at for post %d: %w", id, err)
	}
	return nil
}

func (s *approvalService) CleanupExpired(ctx context.Context) (int, error) {
	cutoff := time.Now().UTC().Add(-s.retention)
	removed, err := s.pr.CleanupExpired(ctx, cutoff)
	if err != nil {
		return removed, fmt.Errorf("error cleaning up expired posts: %w", err)
	}
	if removed > 0 {
		slog.Info("expired posts removed", "count", removed)
	}
	return removed, nil
}

// mediaURL returns the image path when it is usable as a message attachment.
// Twilio only accepts public URLs, not local file paths.
func mediaURL(post *models.PostRecord) string {
	if post.ImagePath == "" {
		return ""
	}
	if strings.HasPrefix(post.ImagePath, "http") {
		return post.ImagePath
	}
	return ""
}
