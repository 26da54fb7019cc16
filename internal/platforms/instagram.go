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

type InstagramAdapter struct {
	accessToken string
	igAccountID string
	BaseURL     string
}

func NewInstagramAdapter(accessToken, igAccountID string) *InstagramAdapter {
	return &InstagramAdapter{
		accessToken: accessToken,
		igAccountID: igAccountID,
		BaseURL:     "https://graph.facebook.com/v18.0",
	}
}

// Publish runs Instagram's two-phase flow: create a media container, then
// publish it by creation id. Instagram has no text-only posts, so a missing
// media URL fails before any request is made, and a container failure
// short-circuits before the publish call.
func (a *InstagramAdapter) Publish(ctx context.Context, text string, mediaURLs []string) *PublishResult {
	if len(mediaURLs) == 0 || mediaURLs[0] == "" {
		return publishFailure("instagram requires an image url")
	}

	container, result := a.createContainer(ctx, text, mediaURLs[0])
	if result != nil {
		return result
	}

	return a.publishContainer(ctx, container)
}

func (a *InstagramAdapter) createContainer(ctx context.Context, caption, imageURL string) (string, *PublishResult) {
	payload := map[string]string{
		"caption":      caption,
		"image_url":    imageURL,
		"access_token": a.accessToken,
	}
	result, failure := a.postJSON(ctx, fmt.Sprintf("%s/%s/media", a.BaseURL, a.igAccountID), payload)
	if failure != nil {
		return "", failure
	}
	if result.ID == "" {
		return "", publishFailure("no container id returned from instagram")
	}
	return result.ID, nil
}

func (a *InstagramAdapter) publishContainer(ctx context.Context, creationID string) *PublishResult {
	payload := map[string]string{
		"creation_id":  creationID,
		"access_token": a.accessToken,
	}
	result, failure := a.postJSON(ctx, fmt.Sprintf("%s/%s/media_publish", a.BaseURL, a.igAccountID), payload)
	if failure != nil {
		return failure
	}
	if result.ID == "" {
		return publishFailure("no media id returned from instagram")
	}
	return &PublishResult{Success: true, ExternalID: result.ID}
}

func (a *InstagramAdapter) postJSON(ctx context.Context, endpoint string, payload map[string]string) (*transfer.InstagramContainerResponse, *PublishResult) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, publishFailure("error marshalling payload: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewBuffer(body))
	if err != nil {
		return nil, publishFailure("error creating request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, publishFailure("instagram request failed: %v", err)
	}
	defer resp.Body.Close()

	var result transfer.InstagramContainerResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, publishFailure("error parsing instagram response: %v", err)
	}
	if result.Error != nil {
		return nil, publishFailure("%s", result.Error.Message)
	}
	return &result, nil
}

func (a *InstagramAdapter) Metrics(ctx context.Context, externalID string) (*transfer.PostMetrics, error) {
	endpoint := fmt.Sprintf(
		"%s/%s?fields=like_count,comments_count&access_token=%s",
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
		return nil, fmt.Errorf("unexpected status code from instagram: %d", resp.StatusCode)
	}

	var result transfer.InstagramMetricsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	return &transfer.PostMetrics{
		Likes:    result.LikeCount,
		Comments: result.CommentsCount,
	}, nil
}
