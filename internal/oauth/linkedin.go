package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	config "github.com/postwavehq/postwave/configs"
	"github.com/postwavehq/postwave/internal/models"
	"github.com/postwavehq/postwave/internal/transfer"
	"golang.org/x/oauth2"
)

// LinkedinProvider is a standard authorization-code flow with an
// OpenID-style userinfo endpoint for identity.
type LinkedinProvider struct {
	conf        *oauth2.Config
	IdentityURL string
}

func NewLinkedinProvider(creds config.PlatformCredentials, redirectURI string) *LinkedinProvider {
	return &LinkedinProvider{
		conf: &oauth2.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			RedirectURL:  redirectURI,
			Scopes:       []string{"openid", "profile", "w_member_social"},
			Endpoint: oauth2.Endpoint{
				AuthURL:   "https://www.linkedin.com/oauth/v2/authorization",
				TokenURL:  "https://www.linkedin.com/oauth/v2/accessToken",
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		IdentityURL: "https://api.linkedin.com/v2/userinfo",
	}
}

func (p *LinkedinProvider) AuthorizationURL(state string) (string, string) {
	return p.conf.AuthCodeURL(state), ""
}

func (p *LinkedinProvider) ExchangeCode(ctx context.Context, code, _ string) (*TokenResult, error) {
	token, err := p.conf.Exchange(ctx, code)
	if err != nil {
		return nil, wrapExchangeErr(models.PlatformLinkedin, err)
	}
	return tokenResultFromOauth2(token), nil
}

func (p *LinkedinProvider) FetchIdentity(ctx context.Context, accessToken string) (*Identity, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", p.IdentityURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, &ExchangeError{Platform: models.PlatformLinkedin, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ExchangeError{Platform: models.PlatformLinkedin, Status: resp.StatusCode}
	}

	var info transfer.LinkedinUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, &ExchangeError{Platform: models.PlatformLinkedin, Err: err}
	}
	if info.Sub == "" {
		return nil, &ExchangeError{Platform: models.PlatformLinkedin, Err: errors.New("no subject in userinfo")}
	}

	return &Identity{
		AccountID:      info.Sub,
		AccountName:    info.Name,
		ProfilePicture: info.Picture,
		Metadata: map[string]string{
			models.MetadataPersonURN: "urn:li:person:" + info.Sub,
		},
	}, nil
}
