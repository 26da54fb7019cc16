package oauth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	config "github.com/postwavehq/postwave/configs"
)

var (
	// ErrUnsupportedPlatform is returned for any platform string outside the
	// known set. The request is not retryable.
	ErrUnsupportedPlatform = errors.New("unsupported platform")

	// ErrInvalidState is returned when a callback carries a state that was
	// never issued, already consumed, expired, or issued to another user.
	ErrInvalidState = errors.New("invalid oauth state")
)

// ExchangeError wraps an upstream failure during code exchange or identity
// resolution. Authorization codes are single-use, so callers must restart the
// connect flow rather than retry.
type ExchangeError struct {
	Platform string
	Status   int
	Err      error
}

func (e *ExchangeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s oauth exchange failed (status %d): %v", e.Platform, e.Status, e.Err)
	}
	return fmt.Sprintf("%s oauth exchange failed (status %d)", e.Platform, e.Status)
}

func (e *ExchangeError) Unwrap() error { return e.Err }

// TokenResult is the normalized outcome of a code exchange. ExpiresIn is in
// seconds; zero means the provider did not report a lifetime and the token is
// treated as non-expiring until a call fails with an auth error.
type TokenResult struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

// Identity is the platform profile resolved with a fresh access token.
// Metadata carries provider-specific extras (page id, person URN) that the
// publishers need later.
type Identity struct {
	AccountID      string
	AccountName    string
	ProfilePicture string
	Metadata       map[string]string
}

// Provider is the uniform contract every platform flow implements. The code
// verifier returned by AuthorizationURL is empty for providers without PKCE;
// when present it must be stored with the state and passed back to
// ExchangeCode.
type Provider interface {
	AuthorizationURL(state string) (url string, codeVerifier string)
	ExchangeCode(ctx context.Context, code, codeVerifier string) (*TokenResult, error)
	FetchIdentity(ctx context.Context, accessToken string) (*Identity, error)
}

type providerFactory func(cfg config.Config, redirectURI string) Provider

var providers = map[string]providerFactory{
	"twitter":   func(cfg config.Config, uri string) Provider { return NewTwitterProvider(cfg.Twitter, uri) },
	"facebook":  func(cfg config.Config, uri string) Provider { return NewFacebookProvider(cfg.Facebook, uri) },
	"linkedin":  func(cfg config.Config, uri string) Provider { return NewLinkedinProvider(cfg.LinkedIn, uri) },
	"instagram": func(cfg config.Config, uri string) Provider { return NewInstagramProvider(cfg.Instagram, uri) },
	"tiktok":    func(cfg config.Config, uri string) Provider { return NewTiktokProvider(cfg.Tiktok, uri) },
}

// Resolve maps a platform name to its provider. The lookup is a table so new
// platforms only add an entry here, never a branch at call sites.
func Resolve(cfg config.Config, platform, redirectURI string) (Provider, error) {
	factory, ok := providers[strings.ToLower(platform)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedPlatform, platform)
	}
	return factory(cfg, redirectURI), nil
}

// Platforms lists the supported platform names.
func Platforms() []string {
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	return names
}
