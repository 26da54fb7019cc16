package oauth

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	config "github.com/postwavehq/postwave/configs"
	"github.com/postwavehq/postwave/internal/models"
	"github.com/postwavehq/postwave/internal/transfer"
)

// InstagramProvider rides the Facebook dialog and code exchange but resolves
// identity through a two-hop lookup: the user's managed pages, then the
// instagram business account connected to the first page. Either hop missing
// fails the connect; a half-linked account is never stored.
type InstagramProvider struct {
	fb *FacebookProvider
}

func NewInstagramProvider(creds config.PlatformCredentials, redirectURI string) *InstagramProvider {
	fb := NewFacebookProvider(creds, redirectURI)
	fb.scopes = "instagram_basic,instagram_content_publish,pages_read_engagement,pages_show_list"
	return &InstagramProvider{fb: fb}
}

// Facebook is exposed so tests can point the underlying graph endpoints at a
// fake server.
func (p *InstagramProvider) Facebook() *FacebookProvider { return p.fb }

func (p *InstagramProvider) AuthorizationURL(state string) (string, string) {
	return p.fb.AuthorizationURL(state)
}

func (p *InstagramProvider) ExchangeCode(ctx context.Context, code, codeVerifier string) (*TokenResult, error) {
	result, err := p.fb.ExchangeCode(ctx, code, codeVerifier)
	if err != nil {
		return nil, rebrandExchangeErr(err)
	}
	return result, nil
}

func (p *InstagramProvider) FetchIdentity(ctx context.Context, accessToken string) (*Identity, error) {
	var user transfer.FacebookUser
	endpoint := fmt.Sprintf("%s/me?fields=id,name,picture&access_token=%s", p.fb.GraphURL, url.QueryEscape(accessToken))
	if err := p.fb.getJSON(ctx, endpoint, &user); err != nil {
		return nil, rebrandExchangeErr(err)
	}

	pageID, err := p.fb.firstPageID(ctx, accessToken, user.ID)
	if err != nil {
		return nil, rebrandExchangeErr(err)
	}
	if pageID == "" {
		return nil, &ExchangeError{Platform: models.PlatformInstagram, Err: errors.New("no facebook page linked to this account")}
	}

	var page transfer.FacebookPageIGResponse
	endpoint = fmt.Sprintf("%s/%s?fields=instagram_business_account&access_token=%s", p.fb.GraphURL, pageID, url.QueryEscape(accessToken))
	if err := p.fb.getJSON(ctx, endpoint, &page); err != nil {
		return nil, rebrandExchangeErr(err)
	}
	if page.InstagramBusinessAccount.ID == "" {
		return nil, &ExchangeError{Platform: models.PlatformInstagram, Err: errors.New("page has no connected instagram business account")}
	}

	return &Identity{
		AccountID:      page.InstagramBusinessAccount.ID,
		AccountName:    user.Name,
		ProfilePicture: user.Picture.Data.URL,
		Metadata: map[string]string{
			models.MetadataPageID: pageID,
		},
	}, nil
}

func rebrandExchangeErr(err error) error {
	var exchangeErr *ExchangeError
	if errors.As(err, &exchangeErr) {
		return &ExchangeError{
			Platform: models.PlatformInstagram,
			Status:   exchangeErr.Status,
			Err:      exchangeErr.Err,
		}
	}
	return err
}
