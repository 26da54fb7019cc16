package platforms

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/postwavehq/postwave/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolverKnownPlatforms(t *testing.T) {
	resolver := NewResolver()

	tests := []struct {
		platform string
		metadata map[string]string
	}{
		{models.PlatformTwitter, nil},
		{models.PlatformFacebook, map[string]string{models.MetadataPageID: "page-1"}},
		{models.PlatformLinkedin, map[string]string{models.MetadataPersonURN: "urn:li:person:abc"}},
		{models.PlatformInstagram, nil},
	}
	for _, tc := range tests {
		account := &models.LinkedAccount{Platform: tc.platform, AccountID: "acc", Metadata: tc.metadata}
		adapter, err := resolver.Resolve(account, "token")
		require.NoError(t, err, tc.platform)
		require.NotNil(t, adapter, tc.platform)
	}
}

func TestResolverTiktokIsUnsupported(t *testing.T) {
	resolver := NewResolver()

	account := &models.LinkedAccount{Platform: models.PlatformTiktok, AccountID: "acc"}
	_, err := resolver.Resolve(account, "token")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPublishingUnsupported)
}

func TestResolverUnknownPlatform(t *testing.T) {
	resolver := NewResolver()

	_, err := resolver.Resolve(&models.LinkedAccount{Platform: "mastodon"}, "token")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrPublishingUnsupported)
}

func TestTwitterAdapterPublish(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/2/tweets", r.URL.Path)
		assert.Equal(t, "Bearer tw-token", r.Header.Get("Authorization"))

		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "hello world", payload["text"])

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]string{"id": "tweet-1"},
		})
	}))
	defer server.Close()

	adapter := NewTwitterAdapter("tw-token")
	adapter.BaseURL = server.URL

	result := adapter.Publish(context.Background(), "hello world", nil)
	require.True(t, result.Success, result.ErrorMessage)
	assert.Equal(t, "tweet-1", result.ExternalID)
}

func TestTwitterAdapterPublishRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]string{"detail": "You are not permitted to perform this action."})
	}))
	defer server.Close()

	adapter := NewTwitterAdapter("tw-token")
	adapter.BaseURL = server.URL

	result := adapter.Publish(context.Background(), "hello", nil)
	assert.False(t, result.Success)
	assert.Equal(t, "You are not permitted to perform this action.", result.ErrorMessage)
}

func TestFacebookAdapterPublish(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/page-1/feed", r.URL.Path)

		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "page update", payload["message"])
		assert.Equal(t, "fb-token", payload["access_token"])

		json.NewEncoder(w).Encode(map[string]string{"id": "page-1_post-9"})
	}))
	defer server.Close()

	adapter := NewFacebookAdapter("fb-token", "page-1")
	adapter.BaseURL = server.URL

	result := adapter.Publish(context.Background(), "page update", nil)
	require.True(t, result.Success, result.ErrorMessage)
	assert.Equal(t, "page-1_post-9", result.ExternalID)
}

func TestFacebookAdapterWithoutPageFails(t *testing.T) {
	adapter := NewFacebookAdapter("fb-token", "")

	result := adapter.Publish(context.Background(), "text", nil)
	assert.False(t, result.Success)
	assert.Contains(t, result.ErrorMessage, "no facebook page")
}

func TestLinkedinAdapterPublish(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v2/ugcPosts", r.URL.Path)
		assert.Equal(t, "2.0.0", r.Header.Get("X-Restli-Protocol-Version"))
		assert.Equal(t, "Bearer li-token", r.Header.Get("Authorization"))

		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "urn:li:person:abc", payload["author"])

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"id": "urn:li:share:77"})
	}))
	defer server.Close()

	adapter := NewLinkedinAdapter("li-token", "urn:li:person:abc")
	adapter.BaseURL = server.URL

	result := adapter.Publish(context.Background(), "professional update", nil)
	require.True(t, result.Success, result.ErrorMessage)
	assert.Equal(t, "urn:li:share:77", result.ExternalID)
}

func TestInstagramAdapterTwoPhasePublish(t *testing.T) {
	var phases []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))

		switch {
		case strings.HasSuffix(r.URL.Path, "/media"):
			phases = append(phases, "container")
			assert.Equal(t, "https://cdn.example.com/img.jpg", payload["image_url"])
			json.NewEncoder(w).Encode(map[string]string{"id": "container-5"})
		case strings.HasSuffix(r.URL.Path, "/media_publish"):
			phases = append(phases, "publish")
			assert.Equal(t, "container-5", payload["creation_id"])
			json.NewEncoder(w).Encode(map[string]string{"id": "media-6"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	adapter := NewInstagramAdapter("ig-token", "ig-acc")
	adapter.BaseURL = server.URL

	result := adapter.Publish(context.Background(), "caption", []string{"https://cdn.example.com/img.jpg"})
	require.True(t, result.Success, result.ErrorMessage)
	assert.Equal(t, "media-6", result.ExternalID)
	assert.Equal(t, []string{"container", "publish"}, phases)
}

func TestInstagramAdapterContainerFailureShortCircuits(t *testing.T) {
	var publishCalled bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/media_publish") {
			publishCalled = true
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]interface{}{"message": "Invalid image URL", "code": 100},
		})
	}))
	defer server.Close()

	adapter := NewInstagramAdapter("ig-token", "ig-acc")
	adapter.BaseURL = server.URL

	result := adapter.Publish(context.Background(), "caption", []string{"https://bad.example.com/x"})
	assert.False(t, result.Success)
	assert.Equal(t, "Invalid image URL", result.ErrorMessage)
	assert.False(t, publishCalled)
}

func TestInstagramAdapterRequiresMedia(t *testing.T) {
	adapter := NewInstagramAdapter("ig-token", "ig-acc")

	result := adapter.Publish(context.Background(), "caption", nil)
	assert.False(t, result.Success)
	assert.Contains(t, result.ErrorMessage, "image url")
}

func TestTwitterAdapterMetrics(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/2/tweets/tweet-1", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{
				"public_metrics": map[string]int{
					"like_count":    10,
					"reply_count":   2,
					"retweet_count": 3,
				},
			},
		})
	}))
	defer server.Close()

	adapter := NewTwitterAdapter("tw-token")
	adapter.BaseURL = server.URL

	metrics, err := adapter.Metrics(context.Background(), "tweet-1")
	require.NoError(t, err)
	assert.Equal(t, 10, metrics.Likes)
	assert.Equal(t, 2, metrics.Comments)
	assert.Equal(t, 3, metrics.Shares)
}
