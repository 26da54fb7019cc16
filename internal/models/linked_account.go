package models

import (
	"database/sql"
	"time"
)

const (
	PlatformTwitter   = "twitter"
	PlatformFacebook  = "facebook"
	PlatformLinkedin  = "linkedin"
	PlatformInstagram = "instagram"
	PlatformTiktok    = "tiktok"
)

// LinkedAccount ties one application user to one external platform account.
// Reconnecting the same (user, platform, account name) rotates the stored
// tokens instead of creating a second row.
type LinkedAccount struct {
	ID             int64             `db:"id" json:"id"`
	UserID         int64             `db:"user_id" json:"user_id"`
	Platform       string            `db:"platform" json:"platform"`
	AccountID      string            `db:"account_id" json:"account_id"`
	AccountName    string            `db:"account_name" json:"account_name"`
	ProfilePicture string            `db:"profile_picture_url" json:"profile_picture"`
	AccessToken    string            `db:"access_token" json:"-"`
	RefreshToken   string            `db:"refresh_token" json:"-"`
	TokenExpiresAt sql.NullTime      `db:"token_expires_at" json:"token_expires_at"`
	IsActive       bool              `db:"is_active" json:"is_active"`
	Metadata       map[string]string `db:"metadata" json:"metadata"`
	CreatedAt      time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time         `db:"updated_at" json:"updated_at"`
}

// MetadataPageID carries the Facebook Page id captured at connect time.
// The Facebook and Instagram publishers need it to address the feed edge.
const (
	MetadataPageID    = "page_id"
	MetadataPersonURN = "person_urn"
)
