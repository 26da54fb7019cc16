package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	config "github.com/postwavehq/postwave/configs"
	"github.com/postwavehq/postwave/internal/models"
	"github.com/postwavehq/postwave/internal/transfer"
)

// TiktokProvider exchanges the code with client_key/client_secret in the
// form body and reads identity out of the nested data.user envelope.
type TiktokProvider struct {
	clientKey    string
	clientSecret string
	redirectURI  string

	AuthURL     string
	TokenURL    string
	IdentityURL string
}

func NewTiktokProvider(creds config.PlatformCredentials, redirectURI string) *TiktokProvider {
	return &TiktokProvider{
		clientKey:    creds.ClientID,
		clientSecret: creds.ClientSecret,
		redirectURI:  redirectURI,
		AuthURL:      "https://www.tiktok.com/v2/auth/authorize",
		TokenURL:     "https://open.tiktokapis.com/v2/oauth/token/",
		IdentityURL:  "https://open.tiktokapis.com/v2/user/info/",
	}
}

func (p *TiktokProvider) AuthorizationURL(state string) (string, string) {
	params := url.Values{}
	params.Set("client_key", p.clientKey)
	params.Set("redirect_uri", p.redirectURI)
	params.Set("state", state)
	params.Set("scope", "user.info.basic,video.upload,video.publish")
	params.Set("response_type", "code")
	return fmt.Sprintf("%s?%s", p.AuthURL, params.Encode()), ""
}

func (p *TiktokProvider) ExchangeCode(ctx context.Context, code, _ string) (*TokenResult, error) {
	data := url.Values{}
	data.Set("client_key", p.clientKey)
	data.Set("client_secret", p.clientSecret)
	data.Set("code", code)
	data.Set("grant_type", "authorization_code")
	data.Set("redirect_uri", p.redirectURI)

	req, err := http.NewRequestWithContext(ctx, "POST", p.TokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, &ExchangeError{Platform: models.PlatformTiktok, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ExchangeError{Platform: models.PlatformTiktok, Status: resp.StatusCode}
	}

	var tokenResp transfer.TiktokTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return nil, &ExchangeError{Platform: models.PlatformTiktok, Err: err}
	}
	if tokenResp.AccessToken == "" {
		return nil, &ExchangeError{Platform: models.PlatformTiktok, Err: errors.New("empty access token")}
	}

	return &TokenResult{
		AccessToken:  tokenResp.AccessToken,
		RefreshToken: tokenResp.RefreshToken,
		ExpiresIn:    tokenResp.ExpiresIn,
	}, nil
}

func (p *TiktokProvider) FetchIdentity(ctx context.Context, accessToken string) (*Identity, error) {
	endpoint := p.IdentityURL + "?fields=open_id,avatar_url,display_name,username"
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, &ExchangeError{Platform: models.PlatformTiktok, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ExchangeError{Platform: models.PlatformTiktok, Status: resp.StatusCode}
	}

	var envelope transfer.TiktokUserResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, &ExchangeError{Platform: models.PlatformTiktok, Err: err}
	}
	user := envelope.Data.User
	if user.OpenID == "" {
		return nil, &ExchangeError{Platform: models.PlatformTiktok, Err: errors.New("no user in response")}
	}

	name := user.DisplayName
	if name == "" {
		name = user.Username
	}

	return &Identity{
		AccountID:      user.OpenID,
		AccountName:    name,
		ProfilePicture: user.AvatarURL,
	}, nil
}
