package platforms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/postwavehq/postwave/internal/transfer"
)

type FacebookAdapter struct {
	accessToken string
	pageID      string
	BaseURL     string
}

func NewFacebookAdapter(accessToken, pageID string) *FacebookAdapter {
	return &FacebookAdapter{
		accessToken: accessToken,
		pageID:      pageID,
		BaseURL:     "https://graph.facebook.com/v18.0",
	}
}

// Publish posts to the page feed edge. Facebook wants the token inside the
// body, not in a header.
func (a *FacebookAdapter) Publish(ctx context.Context, text string, _ []string) *PublishResult {
	if a.pageID == "" {
		return publishFailure("no facebook page linked to this account")
	}

	payload := map[string]string{
		"message":      text,
		"access_token": a.accessToken,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return publishFailure("error marshalling payload: %v", err)
	}

	endpoint := fmt.Sprintf("%s/%s/feed", a.BaseURL, a.pageID)
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewBuffer(body))
	if err != nil {
		return publishFailure("error creating request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return publishFailure("facebook request failed: %v", err)
	}
	defer resp.Body.Close()

	var result transfer.FacebookPostResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return publishFailure("error parsing facebook response: %v", err)
	}

	if result.Error != nil {
		return publishFailure("%s", result.Error.Message)
	}
	if result.ID == "" {
		return publishFailure("no post id returned from facebook")
	}

	return &PublishResult{Success: true, ExternalID: result.ID}
}

func (a *FacebookAdapter) Metrics(ctx context.Context, externalID string) (*transfer.PostMetrics, error) {
	endpoint := fmt.Sprintf(
		"%s/%s?fields=shares,likes.summary(true),comments.summary(true)&access_token=%s",
		a.BaseURL, externalID, url.QueryEscape(a.accessToken),
	)
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code from facebook: %d", resp.StatusCode)
	}

	var result transfer.FacebookMetricsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	return &transfer.PostMetrics{
		Likes:    result.Likes.Summary.TotalCount,
		Comments: result.Comments.Summary.TotalCount,
		Shares:   result.Shares.Count,
	}, nil
}
