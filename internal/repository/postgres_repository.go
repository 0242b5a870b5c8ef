package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/maheshrc27/postpilot/internal/models"
)

type postgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) PostRepository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, post *models.PostRecord) (int64, error) {
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}
	if post.ExpiresAt.IsZero() {
		post.ExpiresAt = post.CreatedAt.Add(7 * 24 * time.Hour)
	}

	query := `
		INSERT INTO posts (status, content, image_path, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, post.Status, []byte(post.Content), post.ImagePath, post.CreatedAt, post.ExpiresAt).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	post.ID = id
	return id, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*models.PostRecord, error) {
	query := `SELECT id, status, content, image_path, created_at, notified_at, timeout_notified_at, expires_at FROM posts WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	post, err := scanPost(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return post, nil
}

func (r *postgresRepository) ListByStatus(ctx context.Context, status string) ([]*models.PostRecord, error) {
	query := `SELECT id, status, content, image_path, created_at, notified_at, timeout_notified_at, expires_at FROM posts WHERE status = $1 ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, status)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.PostRecord
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

func (r *postgresRepository) UpdateStatus(ctx context.Context, status string, postID int64) error {
	query := `UPDATE posts SET status = $1 WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, status, postID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postgresRepository) MarkNotified(ctx context.Context, postID int64, at time.Time) error {
	query := `UPDATE posts SET notified_at = $1 WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, at, postID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postgresRepository) MarkTimeoutNotified(ctx context.Context, postID int64, at time.Time) error {
	query := `UPDATE posts SET timeout_notified_at = $1 WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, at, postID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postgresRepository) Remove(ctx context.Context, id int64) error {
	query := `DELETE FROM posts WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postgresRepository) CleanupExpired(ctx context.Context, cutoff time.Time) (int, error) {
	query := `DELETE FROM posts WHERE created_at < $1`
	res, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*models.PostRecord, error) {
	var post models.PostRecord
	var content []byte
	var imagePath sql.NullString
	var notifiedAt, timeoutNotifiedAt sql.NullTime

	err := row.Scan(&post.ID, &post.Status, &content, &imagePath, &post.CreatedAt, &notifiedAt, &timeoutNotifiedAt, &post.ExpiresAt)
	if err != nil {
		return nil, err
	}

	post.Content = content
	if imagePath.Valid {
		post.ImagePath = imagePath.String
	}
	if notifiedAt.Valid {
		t := notifiedAt.Time
		post.NotifiedAt = &t
	}
	if timeoutNotifiedAt.Valid {
		t := timeoutNotifiedAt.Time
		post.TimeoutNotifiedAt = &t
	}
	return &post, nil
}
