package models

import (
	"database/sql"
	"time"
)

// PublishedPost is one delivery of one content item to one linked account.
// Status only ever moves forward: scheduled -> publishing -> published|failed.
type PublishedPost struct {
	ID             int64          `db:"id" json:"id"`
	ContentID      int64          `db:"content_id" json:"content_id"`
	AccountID      int64          `db:"account_id" json:"account_id"`
	Platform       string         `db:"platform" json:"platform"`
	PostText       string         `db:"post_text" json:"post_text"`
	MediaURLs      []string       `db:"media_urls" json:"media_urls"`
	Status         string         `db:"status" json:"status"`
	ScheduledFor   time.Time      `db:"scheduled_for" json:"scheduled_for"`
	PublishedAt    sql.NullTime   `db:"published_at" json:"published_at"`
	PlatformPostID sql.NullString `db:"platform_post_id" json:"platform_post_id"`
	ErrorMessage   sql.NullString `db:"error_message" json:"error_message"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

const (
	PostStatusScheduled  = "scheduled"
	PostStatusPublishing = "publishing"
	PostStatusPublished  = "published"
	PostStatusFailed     = "failed"
)

// IsTerminal reports whether no further status transition is allowed.
func IsTerminal(status string) bool {
	return status == PostStatusPublished || status == PostStatusFailed
}
