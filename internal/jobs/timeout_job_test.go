package jobs

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/maheshrc27/postpilot/internal/models"
	"github.com/maheshrc27/postpilot/internal/repository"
	"github.com/maheshrc27/postpilot/internal/service"
)

type fixture struct {
	repo     repository.PostRepository
	queue    service.ApprovalService
	notifier *service.MockNotifier
	sweeper  *TimeoutSweeper
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo, err := repository.NewFileRepository(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileRepository: %v", err)
	}
	notifier := service.NewMockNotifier()
	queue := service.NewApprovalService(repo, notifier, 7*24*time.Hour)
	sweeper := NewTimeoutSweeper(queue, notifier, 60*time.Minute, 5*time.Minute)
	return &fixture{repo: repo, queue: queue, notifier: notifier, sweeper: sweeper}
}

// pendingPost creates a pending record, backdating notified_at when
// notifiedAgo is non-zero.
func (f *fixture) pendingPost(t *testing.T, notifiedAgo time.Duration) int64 {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()

	id, err := f.repo.Create(ctx, &models.PostRecord{
		Status:    models.PostStatusPending,
		Content:   json.RawMessage(`{"caption":"waiting"}`),
		CreatedAt: now,
		ExpiresAt: now.Add(7 * 24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if notifiedAgo > 0 {
		if err := f.repo.MarkNotified(ctx, id, now.Add(-notifiedAgo)); err != nil {
			t.Fatalf("MarkNotified: %v", err)
		}
	}
	return id
}

func TestSweepRespectsThreshold(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.pendingPost(t, 30*time.Minute)
	lateID := f.pendingPost(t, 65*time.Minute)

	count, err := f.sweeper.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if count != 1 {
		t.Errorf("flagged %d posts, want 1", count)
	}

	sent := f.notifier.Sent()
	if len(sent) != 1 {
		t.Fatalf("sent %d alerts, want 1", len(sent))
	}
	if !strings.Contains(sent[0].Body, "still pending") {
		t.Errorf("alert body = %q", sent[0].Body)
	}

	post, err := f.repo.GetByID(ctx, lateID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if post.TimeoutNotifiedAt == nil {
		t.Error("TimeoutNotifiedAt not stamped after confirmed send")
	}
	if post.Status != models.PostStatusPending {
		t.Errorf("sweep changed status to %q; a timeout is not a transition", post.Status)
	}
}

func TestSweepIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.pendingPost(t, 65*time.Minute)

	if _, err := f.sweeper.Sweep(ctx); err != nil {
		t.Fatalf("first Sweep: %v", err)
	}
	count, err := f.sweeper.Sweep(ctx)
	if err != nil {
		t.Fatalf("second Sweep: %v", err)
	}
	if count != 0 {
		t.Errorf("second sweep flagged %d posts, want 0", count)
	}
	if len(f.notifier.Sent()) != 1 {
		t.Errorf("sent %d alerts across two sweeps, want exactly 1", len(f.notifier.Sent()))
	}
}

func TestSweepSkipsUnnotifiedPosts(t *testing.T) {
	f := newFixture(t)

	// Initial notification never confirmed sent: nothing to time out.
	f.pendingPost(t, 0)

	count, err := f.sweeper.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if count != 0 {
		t.Errorf("flagged %d posts, want 0", count)
	}
}

func TestSweepRetriesAfterFailedSend(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id := f.pendingPost(t, 65*time.Minute)

	f.notifier.FailSends = true
	count, err := f.sweeper.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if count != 0 {
		t.Errorf("flagged %d posts despite failed send, want 0", count)
	}

	post, _ := f.repo.GetByID(ctx, id)
	if post.TimeoutNotifiedAt != nil {
		t.Error("TimeoutNotifiedAt stamped without a confirmed send")
	}

	// Next sweep retries and succeeds.
	f.notifier.FailSends = false
	count, err = f.sweeper.Sweep(ctx)
	if err != nil {
		t.Fatalf("retry Sweep: %v", err)
	}
	if count != 1 {
		t.Errorf("retry sweep flagged %d posts, want 1", count)
	}
}

func TestStartStopIdempotent(t *testing.T) {
	f := newFixture(t)

	f.sweeper.Start()
	f.sweeper.Start()
	if !f.sweeper.Running() {
		t.Error("sweeper not running after Start")
	}

	f.sweeper.Stop()
	if f.sweeper.Running() {
		t.Error("sweeper still running after Stop")
	}
	// Stopping again must not panic or block.
	f.sweeper.Stop()

	// Restart after stop works.
	f.sweeper.Start()
	if !f.sweeper.Running() {
		t.Error("sweeper not running after restart")
	}
	f.sweeper.Stop()
}
