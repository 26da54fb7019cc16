package oauth

import (
	"net/url"
	"strings"
	"testing"

	config "github.com/postwavehq/postwave/configs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() config.Config {
	return config.Config{
		Twitter:   config.PlatformCredentials{ClientID: "tw-id", ClientSecret: "tw-secret"},
		Facebook:  config.PlatformCredentials{ClientID: "fb-id", ClientSecret: "fb-secret"},
		LinkedIn:  config.PlatformCredentials{ClientID: "li-id", ClientSecret: "li-secret"},
		Instagram: config.PlatformCredentials{ClientID: "fb-id", ClientSecret: "fb-secret"},
		Tiktok:    config.PlatformCredentials{ClientID: "tt-key", ClientSecret: "tt-secret"},
	}
}

func TestResolveKnownPlatforms(t *testing.T) {
	cfg := testConfig()

	for _, platform := range []string{"twitter", "facebook", "linkedin", "instagram", "tiktok"} {
		provider, err := Resolve(cfg, platform, "https://api.example.com/auth/"+platform+"/callback")
		require.NoError(t, err, platform)
		require.NotNil(t, provider, platform)
	}
}

func TestResolveIsCaseInsensitive(t *testing.T) {
	provider, err := Resolve(testConfig(), "Twitter", "https://api.example.com/cb")
	require.NoError(t, err)
	assert.IsType(t, &TwitterProvider{}, provider)
}

func TestResolveUnknownPlatform(t *testing.T) {
	_, err := Resolve(testConfig(), "myspace", "https://api.example.com/cb")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedPlatform)
}

func TestAuthorizationURLCarriesState(t *testing.T) {
	cfg := testConfig()
	redirectURI := "https://api.example.com/auth/twitter/callback"

	for _, platform := range Platforms() {
		provider, err := Resolve(cfg, platform, redirectURI)
		require.NoError(t, err)

		authURL, _ := provider.AuthorizationURL("state-abc123")

		parsed, err := url.Parse(authURL)
		require.NoError(t, err, platform)

		query := parsed.Query()
		assert.Equal(t, []string{"state-abc123"}, query["state"], platform)
		assert.Len(t, query["redirect_uri"], 1, platform)
	}
}

func TestTwitterAuthorizationURLUsesPKCE(t *testing.T) {
	provider := NewTwitterProvider(config.PlatformCredentials{ClientID: "tw-id"}, "https://api.example.com/cb")

	authURL, verifier := provider.AuthorizationURL("st")
	require.NotEmpty(t, verifier)

	parsed, err := url.Parse(authURL)
	require.NoError(t, err)

	query := parsed.Query()
	assert.Equal(t, "S256", query.Get("code_challenge_method"))
	assert.NotEmpty(t, query.Get("code_challenge"))
	// the challenge is derived, never the raw verifier
	assert.NotEqual(t, verifier, query.Get("code_challenge"))
}

func TestProvidersWithoutPKCEReturnNoVerifier(t *testing.T) {
	cfg := testConfig()

	for _, platform := range []string{"facebook", "linkedin", "instagram", "tiktok"} {
		provider, err := Resolve(cfg, platform, "https://api.example.com/cb")
		require.NoError(t, err)

		_, verifier := provider.AuthorizationURL("st")
		assert.Empty(t, verifier, platform)
	}
}

func TestTiktokAuthorizationURLUsesClientKey(t *testing.T) {
	provider := NewTiktokProvider(config.PlatformCredentials{ClientID: "tt-key"}, "https://api.example.com/cb")

	authURL, _ := provider.AuthorizationURL("st")

	parsed, err := url.Parse(authURL)
	require.NoError(t, err)
	assert.Equal(t, "tt-key", parsed.Query().Get("client_key"))
	assert.False(t, strings.Contains(authURL, "client_id="))
}
