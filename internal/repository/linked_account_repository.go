package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"

	"github.com/lib/pq"
	"github.com/postwavehq/postwave/internal/models"
)

type LinkedAccountRepository interface {
	Upsert(ctx context.Context, tx *sql.Tx, account *models.LinkedAccount) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.LinkedAccount, error)
	ListActiveByIDs(ctx context.Context, userID int64, ids []int64) ([]*models.LinkedAccount, error)
	ListInfoByUserID(ctx context.Context, userID int64) ([]*models.LinkedAccount, error)
	CountActiveByUserID(ctx context.Context, userID int64) (int, error)
	CheckByUserID(ctx context.Context, accountID, userID int64) (bool, error)
	Deactivate(ctx context.Context, id int64) error
	Remove(ctx context.Context, id int64) error
}

type linkedAccountRepository struct {
	db *sql.DB
}

func NewLinkedAccountRepository(db *sql.DB) LinkedAccountRepository {
	return &linkedAccountRepository{db: db}
}

// Upsert inserts or, when the (user, platform, account name) triple already
// exists, rotates the stored tokens on the existing row. Reconnecting never
// duplicates an account.
func (r *linkedAccountRepository) Upsert(ctx context.Context, tx *sql.Tx, account *models.LinkedAccount) (int64, error) {
	metadata, err := json.Marshal(account.Metadata)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	query := `
		INSERT INTO linked_accounts(
			user_id,
			platform,
			account_id,
			account_name,
			profile_picture_url,
			access_token,
			refresh_token,
			token_expires_at,
			is_active,
			metadata
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE, $9)
		ON CONFLICT (user_id, platform, account_name) DO UPDATE SET
			account_id = EXCLUDED.account_id,
			profile_picture_url = EXCLUDED.profile_picture_url,
			access_token = EXCLUDED.access_token,
			refresh_token = COALESCE(NULLIF(EXCLUDED.refresh_token, ''), linked_accounts.refresh_token),
			token_expires_at = EXCLUDED.token_expires_at,
			is_active = TRUE,
			metadata = EXCLUDED.metadata,
			updated_at = CURRENT_TIMESTAMP
		RETURNING id
	`

	args := []interface{}{
		account.UserID,
		account.Platform,
		account.AccountID,
		account.AccountName,
		account.ProfilePicture,
		account.AccessToken,
		account.RefreshToken,
		account.TokenExpiresAt,
		metadata,
	}

	var id int64
	if tx != nil {
		err = tx.QueryRowContext(ctx, query, args...).Scan(&id)
	} else {
		err = r.db.QueryRowContext(ctx, query, args...).Scan(&id)
	}
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *linkedAccountRepository) GetByID(ctx context.Context, id int64) (*models.LinkedAccount, error) {
	query := `
		SELECT id, user_id, platform, account_id, account_name, profile_picture_url,
			access_token, refresh_token, token_expires_at, is_active, metadata, created_at, updated_at
		FROM linked_accounts WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	account, err := scanLinkedAccount(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return account, nil
}

func (r *linkedAccountRepository) ListActiveByIDs(ctx context.Context, userID int64, ids []int64) ([]*models.LinkedAccount, error) {
	query := `
		SELECT id, user_id, platform, account_id, account_name, profile_picture_url,
			access_token, refresh_token, token_expires_at, is_active, metadata, created_at, updated_at
		FROM linked_accounts
		WHERE user_id = $1 AND is_active = TRUE AND id = ANY($2)`

	rows, err := r.db.QueryContext(ctx, query, userID, pq.Array(ids))
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var accounts []*models.LinkedAccount
	for rows.Next() {
		account, err := scanLinkedAccount(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

func (r *linkedAccountRepository) ListInfoByUserID(ctx context.Context, userID int64) ([]*models.LinkedAccount, error) {
	query := `
		SELECT id, platform, account_name, profile_picture_url, is_active
		FROM linked_accounts WHERE user_id = $1 AND is_active = TRUE`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var accounts []*models.LinkedAccount
	for rows.Next() {
		var account models.LinkedAccount
		err := rows.Scan(&account.ID, &account.Platform, &account.AccountName, &account.ProfilePicture, &account.IsActive)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		accounts = append(accounts, &account)
	}
	return accounts, rows.Err()
}

func (r *linkedAccountRepository) CountActiveByUserID(ctx context.Context, userID int64) (int, error) {
	query := `SELECT COUNT(*) FROM linked_accounts WHERE user_id = $1 AND is_active = TRUE`

	var count int
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return count, nil
}

func (r *linkedAccountRepository) CheckByUserID(ctx context.Context, accountID, userID int64) (bool, error) {
	query := `SELECT 1 FROM linked_accounts WHERE id = $1 AND user_id = $2`

	var result int
	err := r.db.QueryRowContext(ctx, query, accountID, userID).Scan(&result)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}
	return result == 1, nil
}

func (r *linkedAccountRepository) Deactivate(ctx context.Context, id int64) error {
	query := `UPDATE linked_accounts SET is_active = FALSE, updated_at = CURRENT_TIMESTAMP WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *linkedAccountRepository) Remove(ctx context.Context, id int64) error {
	query := `DELETE FROM linked_accounts WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanLinkedAccount(row rowScanner) (*models.LinkedAccount, error) {
	var account models.LinkedAccount
	var metadata []byte
	err := row.Scan(&account.ID, &account.UserID, &account.Platform, &account.AccountID,
		&account.AccountName, &account.ProfilePicture, &account.AccessToken, &account.RefreshToken,
		&account.TokenExpiresAt, &account.IsActive, &metadata, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &account.Metadata); err != nil {
			slog.Info(err.Error())
		}
	}
	if account.Metadata == nil {
		account.Metadata = map[string]string{}
	}
	return &account, nil
}
