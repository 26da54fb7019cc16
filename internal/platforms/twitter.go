package platforms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/postwavehq/postwave/internal/transfer"
)

type TwitterAdapter struct {
	accessToken string
	BaseURL     string
}

func NewTwitterAdapter(accessToken string) *TwitterAdapter {
	return &TwitterAdapter{
		accessToken: accessToken,
		BaseURL:     "https://api.twitter.com",
	}
}

func (a *TwitterAdapter) Publish(ctx context.Context, text string, _ []string) *PublishResult {
	body, err := json.Marshal(transfer.TwitterTweetRequest{Text: text})
	if err != nil {
		return publishFailure("error marshalling tweet: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", a.BaseURL+"/2/tweets", bytes.NewBuffer(body))
	if err != nil {
		return publishFailure("error creating request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return publishFailure("twitter request failed: %v", err)
	}
	defer resp.Body.Close()

	var result transfer.TwitterTweetResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return publishFailure("error parsing twitter response: %v", err)
	}

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		msg := result.Detail
		if msg == "" {
			msg = fmt.Sprintf("unexpected status code from twitter: %d", resp.StatusCode)
		}
		return publishFailure("%s", msg)
	}
	if result.Data.ID == "" {
		return publishFailure("no tweet id returned from twitter")
	}

	return &PublishResult{Success: true, ExternalID: result.Data.ID}
}

func (a *TwitterAdapter) Metrics(ctx context.Context, externalID string) (*transfer.PostMetrics, error) {
	endpoint := fmt.Sprintf("%s/2/tweets/%s?tweet.fields=public_metrics", a.BaseURL, externalID)
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+a.accessToken)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code from twitter: %d", resp.StatusCode)
	}

	var result transfer.TwitterMetricsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	return &transfer.PostMetrics{
		Likes:    result.Data.PublicMetrics.LikeCount,
		Comments: result.Data.PublicMetrics.ReplyCount,
		Shares:   result.Data.PublicMetrics.RetweetCount,
	}, nil
}
