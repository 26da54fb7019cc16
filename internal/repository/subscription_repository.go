package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/postwavehq/postwave/internal/limits"
	"github.com/postwavehq/postwave/internal/models"
)

type SubscriptionRepository interface {
	GetByUserID(ctx context.Context, userID int64) (*models.Subscription, error)
	GetTierByUserID(ctx context.Context, userID int64) (string, error)
}

type subscriptionRepository struct {
	db *sql.DB
}

func NewSubscriptionRepository(db *sql.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) GetByUserID(ctx context.Context, userID int64) (*models.Subscription, error) {
	query := `
		SELECT id, user_id, subscription_id, tier, subscription_end_date, status, created_at, updated_at
		FROM subscriptions
		WHERE user_id = $1 AND status = 'active'
		ORDER BY subscription_end_date DESC
		LIMIT 1`
	row := r.db.QueryRowContext(ctx, query, userID)

	var sub models.Subscription
	err := row.Scan(&sub.ID, &sub.UserID, &sub.SubscriptionID, &sub.Tier,
		&sub.SubscriptionEndDate, &sub.Status, &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &sub, nil
}

// GetTierByUserID resolves the user's active tier; users without an active
// subscription are on the free plan.
func (r *subscriptionRepository) GetTierByUserID(ctx context.Context, userID int64) (string, error) {
	sub, err := r.GetByUserID(ctx, userID)
	if err != nil {
		return "", err
	}
	if sub == nil || sub.Tier == "" {
		return limits.TierFree, nil
	}
	return sub.Tier, nil
}
