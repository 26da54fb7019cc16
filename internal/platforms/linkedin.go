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

type LinkedinAdapter struct {
	accessToken string
	personURN   string
	BaseURL     string
}

func NewLinkedinAdapter(accessToken, personURN string) *LinkedinAdapter {
	return &LinkedinAdapter{
		accessToken: accessToken,
		personURN:   personURN,
		BaseURL:     "https://api.linkedin.com",
	}
}

// Publish creates a UGC post. LinkedIn requires the author URN and the
// Restli protocol version header on every write.
func (a *LinkedinAdapter) Publish(ctx context.Context, text string, _ []string) *PublishResult {
	if a.personURN == "" {
		return publishFailure("no person urn stored for this account")
	}

	payload := transfer.LinkedinPostRequest{
		Author:         a.personURN,
		LifecycleState: "PUBLISHED",
		SpecificContent: map[string]transfer.LinkedinShareContent{
			"com.linkedin.ugc.ShareContent": {
				ShareCommentary:    transfer.LinkedinShareCommentary{Text: text},
				ShareMediaCategory: "NONE",
			},
		},
		Visibility: map[string]string{
			"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC",
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return publishFailure("error marshalling payload: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", a.BaseURL+"/v2/ugcPosts", bytes.NewBuffer(body))
	if err != nil {
		return publishFailure("error creating request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.accessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Restli-Protocol-Version", "2.0.0")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return publishFailure("linkedin request failed: %v", err)
	}
	defer resp.Body.Close()

	var result transfer.LinkedinPostResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return publishFailure("error parsing linkedin response: %v", err)
	}

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		msg := result.Message
		if msg == "" {
			msg = fmt.Sprintf("unexpected status code from linkedin: %d", resp.StatusCode)
		}
		return publishFailure("%s", msg)
	}
	if result.ID == "" {
		return publishFailure("no post id returned from linkedin")
	}

	return &PublishResult{Success: true, ExternalID: result.ID}
}

func (a *LinkedinAdapter) Metrics(ctx context.Context, externalID string) (*transfer.PostMetrics, error) {
	endpoint := fmt.Sprintf("%s/v2/socialActions/%s", a.BaseURL, externalID)
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
		return nil, fmt.Errorf("unexpected status code from linkedin: %d", resp.StatusCode)
	}

	var result transfer.LinkedinMetricsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	return &transfer.PostMetrics{
		Likes:    result.LikesSummary.TotalLikes,
		Comments: result.CommentsSummary.TotalComments,
	}, nil
}
