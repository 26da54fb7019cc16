package transfer

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type CustomClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

type PublishNowRequest struct {
	ContentID    int64   `json:"content_id"`
	AccountIDs   []int64 `json:"account_ids"`
	OverrideText string  `json:"override_text"`
	MediaURLs    []string `json:"media_urls"`
}

type ScheduleRequest struct {
	ContentID    int64     `json:"content_id"`
	AccountIDs   []int64   `json:"account_ids"`
	ScheduledFor time.Time `json:"scheduled_for"`
	CustomText   string    `json:"custom_text"`
	MediaURLs    []string  `json:"media_urls"`
}

// AccountResult is the per-account outcome of one fan-out batch.
type AccountResult struct {
	PostID       int64  `json:"post_id"`
	AccountID    int64  `json:"account_id"`
	Platform     string `json:"platform"`
	AccountName  string `json:"account_name"`
	Status       string `json:"status"`
	ExternalID   string `json:"external_id,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

type PublishReport struct {
	Successful int             `json:"successful"`
	Failed     int             `json:"failed"`
	Results    []AccountResult `json:"results"`
}

type GenerateRequest struct {
	Prompt string `json:"prompt"`
	Title  string `json:"title"`
}

type GeneratedText struct {
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata"`
}

type PostMetrics struct {
	Likes    int `json:"likes"`
	Comments int `json:"comments"`
	Shares   int `json:"shares"`
}

type PostAnalytics struct {
	PostID   int64       `json:"post_id"`
	Platform string      `json:"platform"`
	Metrics  PostMetrics `json:"metrics"`
}

type AnalyticsReport struct {
	TotalLikes    int             `json:"total_likes"`
	TotalComments int             `json:"total_comments"`
	TotalShares   int             `json:"total_shares"`
	Posts         []PostAnalytics `json:"posts"`
}
