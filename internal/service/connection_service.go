package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	config "github.com/postwavehq/postwave/configs"
	"github.com/postwavehq/postwave/internal/limits"
	"github.com/postwavehq/postwave/internal/models"
	"github.com/postwavehq/postwave/internal/oauth"
	"github.com/postwavehq/postwave/internal/repository"
	"github.com/postwavehq/postwave/pkg/utils"
)

type ConnectionService interface {
	BeginConnect(ctx context.Context, userID int64, platform string) (string, error)
	CompleteConnect(ctx context.Context, platform, code, state string, observedUserID int64) (*models.LinkedAccount, error)
	List(ctx context.Context, userID int64) ([]*models.LinkedAccount, error)
	Disconnect(ctx context.Context, userID, accountID int64, hardDelete bool) error
}

type connectionService struct {
	cfg      config.Config
	states   *oauth.StateStore
	accounts repository.LinkedAccountRepository
	quota    QuotaService

	// seam for tests; defaults to the production registry
	resolveProvider func(platform string) (oauth.Provider, error)
}

func NewConnectionService(
	cfg config.Config,
	states *oauth.StateStore,
	accounts repository.LinkedAccountRepository,
	quota QuotaService) ConnectionService {
	s := &connectionService{
		cfg:      cfg,
		states:   states,
		accounts: accounts,
		quota:    quota,
	}
	s.resolveProvider = func(platform string) (oauth.Provider, error) {
		return oauth.Resolve(cfg, platform, s.redirectURI(platform))
	}
	return s
}

func (s *connectionService) redirectURI(platform string) string {
	return fmt.Sprintf("%s/auth/%s/callback", s.cfg.BaseURL, platform)
}

// BeginConnect issues a single-use state bound to the user and returns the
// platform's authorization URL. For PKCE platforms the code verifier rides
// along in the state record, never in the redirect.
func (s *connectionService) BeginConnect(ctx context.Context, userID int64, platform string) (string, error) {
	if userID == 0 {
		return "", errors.New("user id is not valid")
	}

	if err := s.quota.Enforce(ctx, userID, limits.LimitSocialAccounts); err != nil {
		return "", err
	}

	provider, err := s.resolveProvider(platform)
	if err != nil {
		return "", err
	}

	record := oauth.StateRecord{UserID: userID, Platform: platform}

	state, err := s.states.Issue(ctx, record)
	if err != nil {
		return "", err
	}

	authURL, verifier := provider.AuthorizationURL(state)
	if verifier != "" {
		record.CodeVerifier = verifier
		if err := s.states.Update(ctx, state, record); err != nil {
			return "", err
		}
	}

	return authURL, nil
}

// CompleteConnect verifies and consumes the callback state, exchanges the
// code, resolves the platform identity and upserts the linked account.
func (s *connectionService) CompleteConnect(ctx context.Context, platform, code, state string, observedUserID int64) (*models.LinkedAccount, error) {
	if code == "" {
		return nil, errors.New("authorization code is empty")
	}

	record, err := s.states.Consume(ctx, state)
	if err != nil {
		return nil, err
	}
	if record.Platform != platform {
		return nil, oauth.ErrInvalidState
	}
	if observedUserID != 0 && observedUserID != record.UserID {
		return nil, oauth.ErrInvalidState
	}

	provider, err := s.resolveProvider(platform)
	if err != nil {
		return nil, err
	}

	token, err := provider.ExchangeCode(ctx, code, record.CodeVerifier)
	if err != nil {
		return nil, err
	}

	identity, err := provider.FetchIdentity(ctx, token.AccessToken)
	if err != nil {
		return nil, err
	}

	encryptedAccessToken, err := utils.Encrypt([]byte(token.AccessToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return nil, err
	}

	var encryptedRefreshToken string
	if token.RefreshToken != "" {
		encryptedRefreshToken, err = utils.Encrypt([]byte(token.RefreshToken), []byte(s.cfg.SecretKey))
		if err != nil {
			return nil, err
		}
	}

	account := &models.LinkedAccount{
		UserID:         record.UserID,
		Platform:       platform,
		AccountID:      identity.AccountID,
		AccountName:    identity.AccountName,
		ProfilePicture: identity.ProfilePicture,
		AccessToken:    encryptedAccessToken,
		RefreshToken:   encryptedRefreshToken,
		TokenExpiresAt: tokenExpiry(token.ExpiresIn),
		IsActive:       true,
		Metadata:       identity.Metadata,
	}
	if account.Metadata == nil {
		account.Metadata = map[string]string{}
	}

	id, err := s.accounts.Upsert(ctx, nil, account)
	if err != nil {
		return nil, fmt.Errorf("error saving linked account: %w", err)
	}
	account.ID = id

	return account, nil
}

func (s *connectionService) List(ctx context.Context, userID int64) ([]*models.LinkedAccount, error) {
	if userID == 0 {
		err := errors.New("user id is not valid")
		slog.Info(err.Error())
		return nil, err
	}

	accounts, err := s.accounts.ListInfoByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error getting linked accounts")
	}
	return accounts, nil
}

// Disconnect deactivates (or deletes) the local record. The platform-side
// grant is left alone; revoking it is the user's action in the platform UI.
func (s *connectionService) Disconnect(ctx context.Context, userID, accountID int64, hardDelete bool) error {
	if userID == 0 || accountID == 0 {
		return errors.New("user id or account id is not valid")
	}

	owned, err := s.accounts.CheckByUserID(ctx, accountID, userID)
	if err != nil {
		return err
	}
	if !owned {
		return errors.New("linked account doesn't exist")
	}

	if hardDelete {
		return s.accounts.Remove(ctx, accountID)
	}
	return s.accounts.Deactivate(ctx, accountID)
}

// tokenExpiry computes now + expires_in. A zero lifetime means the provider
// did not report one; the token is treated as non-expiring until a call
// fails with an auth error.
func tokenExpiry(expiresIn int64) sql.NullTime {
	if expiresIn <= 0 {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: time.Now().Add(time.Duration(expiresIn) * time.Second), Valid: true}
}
