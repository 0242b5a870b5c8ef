package models

import (
	"encoding/json"
	"time"
)

// PostRecord is a generated LinkedIn post waiting in the approval queue.
// Content is opaque to the queue; only the producing pipeline and the
// notification formatter interpret it.
type PostRecord struct {
	ID                int64           `db:"id" json:"id"`
	Status            string          `db:"status" json:"status"`
	Content           json.RawMessage `db:"content" json:"content"`
	ImagePath         string          `db:"image_path" json:"image_path,omitempty"`
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`
	NotifiedAt        *time.Time      `db:"notified_at" json:"notified_at,omitempty"`
	TimeoutNotifiedAt *time.Time      `db:"timeout_notified_at" json:"timeout_notified_at,omitempty"`
	ExpiresAt         time.Time       `db:"expires_at" json:"expires_at"`
}

const (
	PostStatusPending   = "pending"
	PostStatusApproved  = "approved"
	PostStatusRejected  = "rejected"
	PostStatusPublished = "published"
	PostStatusExpired   = "expired"
)
