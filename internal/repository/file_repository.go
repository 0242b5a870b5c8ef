package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/maheshrc27/postpilot/internal/models"
)

// fileRepository stores one JSON document per record at <dir>/<id>.json.
// The directory listing is the source of truth for ID allocation: the next
// ID is max(existing)+1, so IDs stay monotonic even after removals leave
// gaps. The mutex serializes the read-max/write-new window within this
// process; the single-operator usage pattern makes cross-process races a
// non-concern here.
type fileRepository struct {
	dir string
	mu  sync.RWMutex
}

func NewFileRepository(dir string) (PostRepository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create queue dir: %w", err)
	}
	return &fileRepository{dir: dir}, nil
}

func (r *fileRepository) Create(ctx context.Context, post *models.PostRecord) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}
	if post.ExpiresAt.IsZero() {
		post.ExpiresAt = post.CreatedAt.Add(7 * 24 * time.Hour)
	}

	id, err := r.nextID()
	if err != nil {
		return 0, err
	}
	post.ID = id

	if err := r.write(post); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *fileRepository) GetByID(ctx context.Context, id int64) (*models.PostRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.read(id)
}

func (r *fileRepository) ListByStatus(ctx context.Context, status string) ([]*models.PostRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all, err := r.readAll()
	if err != nil {
		return nil, err
	}

	var posts []*models.PostRecord
	for _, post := range all {
		if post.Status == status {
			posts = append(posts, post)
		}
	}

	sort.Slice(posts, func(i, j int) bool {
		if posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].ID < posts[j].ID
		}
		return posts[i].CreatedAt.Before(posts[j].CreatedAt)
	})
	return posts, nil
}

func (r *fileRepository) UpdateStatus(ctx context.Context, status string, postID int64) error {
	return r.update(postID, func(post *models.PostRecord) {
		post.Status = status
	})
}

func (r *fileRepository) MarkNotified(ctx context.Context, postID int64, at time.Time) error {
	return r.update(postID, func(post *models.PostRecord) {
		post.NotifiedAt = &at
	})
}

func (r *fileRepository) MarkTimeoutNotified(ctx context.Context, postID int64, at time.Time) error {
	return r.update(postID, func(post *models.PostRecord) {
		post.TimeoutNotifiedAt = &at
	})
}

func (r *fileRepository) Remove(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := os.Remove(r.path(id))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (r *fileRepository) CleanupExpired(ctx context.Context, cutoff time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all, err := r.readAll()
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, post := range all {
		if post.CreatedAt.Before(cutoff) {
			if err := os.Remove(r.path(post.ID)); err != nil && !os.IsNotExist(err) {
				return removed, err
			}
			removed++
		}
	}
	return removed, nil
}

func (r *fileRepository) path(id int64) string {
	return filepath.Join(r.dir, fmt.Sprintf("%d.json", id))
}

// nextID scans the directory for the highest numeric filename. Callers must
// hold the write lock.
func (r *fileRepository) nextID() (int64, error) {
	ids, err := r.listIDs()
	if err != nil {
		return 0, err
	}
	var max int64
	for _, id := range ids {
		if id > max {
			max = id
		}
	}
	return max + 1, nil
}

func (r *fileRepository) listIDs() ([]int64, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, err
	}

	var ids []int64
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimSuffix(name, ".json"), 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *fileRepository) read(id int64) (*models.PostRecord, error) {
	data, err := os.ReadFile(r.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var post models.PostRecord
	if err := json.Unmarshal(data, &post); err != nil {
		return nil, fmt.Errorf("decode post %d: %w", id, err)
	}
	return &post, nil
}

func (r *fileRepository) readAll() ([]*models.PostRecord, error) {
	ids, err := r.listIDs()
	if err != nil {
		return nil, err
	}

	posts := make([]*models.PostRecord, 0, len(ids))
	for _, id := range ids {
		post, err := r.read(id)
		if err != nil {
			return nil, err
		}
		if post != nil {
			posts = append(posts, post)
		}
	}
	return posts, nil
}

func (r *fileRepository) write(post *models.PostRecord) error {
	data, err := json.MarshalIndent(post, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(r.path(post.ID), data, 0o644)
}

func (r *fileRepository) update(id int64, mutate func(*models.PostRecord)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	post, err := r.read(id)
	if err != nil {
		return err
	}
	if post == nil {
		return fmt.Errorf("post %d does not exist", id)
	}

	mutate(post)
	return r.write(post)
}
