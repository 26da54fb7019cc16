package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	config "github.com/postwavehq/postwave/configs"
	"github.com/postwavehq/postwave/internal/models"
	"github.com/postwavehq/postwave/internal/transfer"
	"golang.org/x/oauth2"
)

// TwitterProvider implements the OAuth2 + PKCE (S256) flow. The code
// verifier travels through the state store between the two phases.
type TwitterProvider struct {
	conf        *oauth2.Config
	IdentityURL string
}

func NewTwitterProvider(creds config.PlatformCredentials, redirectURI string) *TwitterProvider {
	return &TwitterProvider{
		conf: &oauth2.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			RedirectURL:  redirectURI,
			Scopes:       []string{"tweet.read", "tweet.write", "users.read", "offline.access"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  "https://twitter.com/i/oauth2/authorize",
				TokenURL: "https://api.twitter.com/2/oauth2/token",
			},
		},
		IdentityURL: "https://api.twitter.com/2/users/me",
	}
}

func (p *TwitterProvider) AuthorizationURL(state string) (string, string) {
	verifier := oauth2.GenerateVerifier()
	url := p.conf.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier))
	return url, verifier
}

func (p *TwitterProvider) ExchangeCode(ctx context.Context, code, codeVerifier string) (*TokenResult, error) {
	token, err := p.conf.Exchange(ctx, code, oauth2.VerifierOption(codeVerifier))
	if err != nil {
		return nil, wrapExchangeErr(models.PlatformTwitter, err)
	}
	return tokenResultFromOauth2(token), nil
}

func (p *TwitterProvider) FetchIdentity(ctx context.Context, accessToken string) (*Identity, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", p.IdentityURL+"?user.fields=profile_image_url", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, &ExchangeError{Platform: models.PlatformTwitter, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ExchangeError{Platform: models.PlatformTwitter, Status: resp.StatusCode}
	}

	var envelope transfer.TwitterUserResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, &ExchangeError{Platform: models.PlatformTwitter, Err: err}
	}
	if envelope.Data.ID == "" {
		return nil, &ExchangeError{Platform: models.PlatformTwitter, Err: errors.New("no user in response")}
	}

	return &Identity{
		AccountID:      envelope.Data.ID,
		AccountName:    envelope.Data.Username,
		ProfilePicture: envelope.Data.ProfileImageURL,
	}, nil
}

func tokenResultFromOauth2(token *oauth2.Token) *TokenResult {
	result := &TokenResult{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
	}
	if v := token.Extra("expires_in"); v != nil {
		switch n := v.(type) {
		case float64:
			result.ExpiresIn = int64(n)
		case int64:
			result.ExpiresIn = n
		case json.Number:
			if parsed, err := n.Int64(); err == nil {
				result.ExpiresIn = parsed
			}
		}
	}
	return result
}

func wrapExchangeErr(platform string, err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
		return &ExchangeError{
			Platform: platform,
			Status:   retrieveErr.Response.StatusCode,
			Err:      fmt.Errorf("token endpoint rejected code: %s", retrieveErr.ErrorCode),
		}
	}
	return &ExchangeError{Platform: platform, Err: err}
}
