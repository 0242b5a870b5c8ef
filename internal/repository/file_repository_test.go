package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/maheshrc27/postpilot/internal/models"
)

func newTestRepo(t *testing.T) PostRepository {
	t.Helper()
	repo, err := NewFileRepository(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileRepository: %v", err)
	}
	return repo
}

func newPendingPost(createdAt time.Time) *models.PostRecord {
	return &models.PostRecord{
		Status:    models.PostStatusPending,
		Content:   json.RawMessage(`{"caption":"hello"}`),
		CreatedAt: createdAt,
		ExpiresAt: createdAt.Add(7 * 24 * time.Hour),
	}
}

func TestCreateAssignsMonotonicIDs(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	var prev int64
	for i := 0; i < 5; i++ {
		id, err := repo.Create(ctx, newPendingPost(now))
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if id <= prev {
			t.Fatalf("id %d not greater than previous %d", id, prev)
		}
		prev = id
	}

	// Removing the newest record must not free its ID for reuse.
	if err := repo.Remove(ctx, prev); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	id, err := repo.Create(ctx, newPendingPost(now))
	if err != nil {
		t.Fatalf("Create after Remove: %v", err)
	}
	if id <= prev-1 {
		t.Errorf("id %d after removing %d reuses an old ID", id, prev)
	}
}

func TestGetByIDMissingReturnsNil(t *testing.T) {
	repo := newTestRepo(t)

	post, err := repo.GetByID(context.Background(), 99)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if post != nil {
		t.Errorf("GetByID(99) = %+v, want nil", post)
	}
}

func TestListByStatusOrdering(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour)

	for i := 0; i < 3; i++ {
		if _, err := repo.Create(ctx, newPendingPost(base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	// A non-pending record must not show up.
	id, err := repo.Create(ctx, newPendingPost(base.Add(10*time.Minute)))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.UpdateStatus(ctx, models.PostStatusApproved, id); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	posts, err := repo.ListByStatus(ctx, models.PostStatusPending)
	if err != nil {
		t.Fatalf("ListByStatus: %v", err)
	}
	if len(posts) != 3 {
		t.Fatalf("got %d pending posts, want 3", len(posts))
	}
	for i := 1; i < len(posts); i++ {
		if posts[i].CreatedAt.Before(posts[i-1].CreatedAt) {
			t.Errorf("posts out of order: %v before %v", posts[i].CreatedAt, posts[i-1].CreatedAt)
		}
	}
}

func TestMarkNotifiedPersists(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.Create(ctx, newPendingPost(time.Now().UTC()))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	at := time.Now().UTC().Truncate(time.Second)
	if err := repo.MarkNotified(ctx, id, at); err != nil {
		t.Fatalf("MarkNotified: %v", err)
	}
	if err := repo.MarkTimeoutNotified(ctx, id, at.Add(time.Hour)); err != nil {
		t.Fatalf("MarkTimeoutNotified: %v", err)
	}

	post, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if post.NotifiedAt == nil || !post.NotifiedAt.Equal(at) {
		t.Errorf("NotifiedAt = %v, want %v", post.NotifiedAt, at)
	}
	if post.TimeoutNotifiedAt == nil || !post.TimeoutNotifiedAt.Equal(at.Add(time.Hour)) {
		t.Errorf("TimeoutNotifiedAt = %v, want %v", post.TimeoutNotifiedAt, at.Add(time.Hour))
	}
}

func TestCleanupExpired(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	oldID, err := repo.Create(ctx, newPendingPost(now.Add(-8*24*time.Hour)))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	freshID, err := repo.Create(ctx, newPendingPost(now.Add(-24*time.Hour)))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	removed, err := repo.CleanupExpired(ctx, now.Add(-7*24*time.Hour))
	if err != nil {
		t.Fatalf("CleanupExpired: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}

	if post, _ := repo.GetByID(ctx, oldID); post != nil {
		t.Errorf("post %d survived cleanup", oldID)
	}
	if post, _ := repo.GetByID(ctx, freshID); post == nil {
		t.Errorf("post %d was removed but is only a day old", freshID)
	}

	// Running the sweep again is a no-op.
	removed, err = repo.CleanupExpired(ctx, now.Add(-7*24*time.Hour))
	if err != nil {
		t.Fatalf("CleanupExpired second run: %v", err)
	}
	if removed != 0 {
		t.Errorf("second sweep removed %d records, want 0", removed)
	}
}
