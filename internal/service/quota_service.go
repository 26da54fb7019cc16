package service

import (
	"context"
	"fmt"
	"time"

	"github.com/postwavehq/postwave/internal/limits"
	"github.com/postwavehq/postwave/internal/repository"
)

// QuotaExceededError is returned before any side effect when a tier cap is
// hit. Check carries the numbers and the suggested upgrade tier.
type QuotaExceededError struct {
	Kind  limits.LimitKind
	Check limits.UsageCheck
}

func (e *QuotaExceededError) Error() string {
	if e.Check.UpgradeRequired != "" {
		return fmt.Sprintf("%s limit reached (%d of %d); upgrade to %s",
			e.Kind, e.Check.Current, e.Check.Limit, limits.DisplayName(e.Check.UpgradeRequired))
	}
	return fmt.Sprintf("%s limit reached (%d of %d)", e.Kind, e.Check.Current, e.Check.Limit)
}

type QuotaService interface {
	CheckLimit(ctx context.Context, userID int64, kind limits.LimitKind) (limits.UsageCheck, error)
	Enforce(ctx context.Context, userID int64, kind limits.LimitKind) error
	CheckFeature(ctx context.Context, userID int64, feature limits.Feature) (limits.FeatureCheck, error)
}

type quotaService struct {
	subs     repository.SubscriptionRepository
	accounts repository.LinkedAccountRepository
	contents repository.ContentRepository
}

func NewQuotaService(
	subs repository.SubscriptionRepository,
	accounts repository.LinkedAccountRepository,
	contents repository.ContentRepository) QuotaService {
	return &quotaService{
		subs:     subs,
		accounts: accounts,
		contents: contents,
	}
}

func (s *quotaService) CheckLimit(ctx context.Context, userID int64, kind limits.LimitKind) (limits.UsageCheck, error) {
	tier, err := s.subs.GetTierByUserID(ctx, userID)
	if err != nil {
		return limits.UsageCheck{}, err
	}

	usage, err := s.currentUsage(ctx, userID, kind)
	if err != nil {
		return limits.UsageCheck{}, err
	}

	return limits.CheckLimit(tier, kind, usage), nil
}

func (s *quotaService) Enforce(ctx context.Context, userID int64, kind limits.LimitKind) error {
	check, err := s.CheckLimit(ctx, userID, kind)
	if err != nil {
		return err
	}
	if !check.Allowed {
		return &QuotaExceededError{Kind: kind, Check: check}
	}
	return nil
}

func (s *quotaService) CheckFeature(ctx context.Context, userID int64, feature limits.Feature) (limits.FeatureCheck, error) {
	tier, err := s.subs.GetTierByUserID(ctx, userID)
	if err != nil {
		return limits.FeatureCheck{}, err
	}
	return limits.CheckFeature(tier, feature), nil
}

func (s *quotaService) currentUsage(ctx context.Context, userID int64, kind limits.LimitKind) (int, error) {
	switch kind {
	case limits.LimitSocialAccounts:
		return s.accounts.CountActiveByUserID(ctx, userID)
	case limits.LimitDailyGenerations:
		now := time.Now()
		midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		return s.contents.CountGeneratedSince(ctx, userID, midnight)
	default:
		return 0, nil
	}
}
