package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/lib/pq"
	"github.com/postwavehq/postwave/internal/models"
)

type PublishedPostRepository interface {
	Create(ctx context.Context, tx *sql.Tx, post *models.PublishedPost) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.PublishedPost, error)
	GetByIDForUser(ctx context.Context, id, userID int64) (*models.PublishedPost, error)
	ListByUserID(ctx context.Context, userID int64, status string) ([]*models.PublishedPost, error)
	ListDueScheduled(ctx context.Context, before time.Time) ([]*models.PublishedPost, error)
	ClaimForPublishing(ctx context.Context, id int64) (bool, error)
	MarkPublished(ctx context.Context, id int64, externalID string, publishedAt time.Time) error
	MarkFailed(ctx context.Context, id int64, errorMessage string) error
	Remove(ctx context.Context, id int64) error
}

type publishedPostRepository struct {
	db *sql.DB
}

func NewPublishedPostRepository(db *sql.DB) PublishedPostRepository {
	return &publishedPostRepository{db: db}
}

const publishedPostColumns = `
	id, content_id, account_id, platform, post_text, media_urls, status,
	scheduled_for, published_at, platform_post_id, error_message, created_at, updated_at`

func (r *publishedPostRepository) Create(ctx context.Context, tx *sql.Tx, post *models.PublishedPost) (int64, error) {
	query := `
		INSERT INTO published_posts (content_id, account_id, platform, post_text, media_urls, status, scheduled_for)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	args := []interface{}{
		post.ContentID,
		post.AccountID,
		post.Platform,
		post.PostText,
		pq.Array(post.MediaURLs),
		post.Status,
		post.ScheduledFor,
	}

	var id int64
	var err error
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

func (r *publishedPostRepository) GetByID(ctx context.Context, id int64) (*models.PublishedPost, error) {
	query := `SELECT` + publishedPostColumns + ` FROM published_posts WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *publishedPostRepository) GetByIDForUser(ctx context.Context, id, userID int64) (*models.PublishedPost, error) {
	query := `
		SELECT p.id, p.content_id, p.account_id, p.platform, p.post_text, p.media_urls, p.status,
			p.scheduled_for, p.published_at, p.platform_post_id, p.error_message, p.created_at, p.updated_at
		FROM published_posts p
		JOIN contents c ON c.id = p.content_id
		WHERE p.id = $1 AND c.user_id = $2`
	return r.getOne(ctx, query, id, userID)
}

func (r *publishedPostRepository) getOne(ctx context.Context, query string, args ...interface{}) (*models.PublishedPost, error) {
	row := r.db.QueryRowContext(ctx, query, args...)

	post, err := scanPublishedPost(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return post, nil
}

func (r *publishedPostRepository) ListByUserID(ctx context.Context, userID int64, status string) ([]*models.PublishedPost, error) {
	query := `
		SELECT p.id, p.content_id, p.account_id, p.platform, p.post_text, p.media_urls, p.status,
			p.scheduled_for, p.published_at, p.platform_post_id, p.error_message, p.created_at, p.updated_at
		FROM published_posts p
		JOIN contents c ON c.id = p.content_id
		WHERE c.user_id = $1`
	args := []interface{}{userID}

	if status != "" {
		query += ` AND p.status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY p.scheduled_for ASC`

	return r.list(ctx, query, args...)
}

func (r *publishedPostRepository) ListDueScheduled(ctx context.Context, before time.Time) ([]*models.PublishedPost, error) {
	query := `SELECT` + publishedPostColumns + `
		FROM published_posts
		WHERE status = $1 AND scheduled_for <= $2`
	return r.list(ctx, query, models.PostStatusScheduled, before)
}

func (r *publishedPostRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.PublishedPost, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.PublishedPost
	for rows.Next() {
		post, err := scanPublishedPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

// ClaimForPublishing moves a SCHEDULED post to PUBLISHING. The status check
// and the transition are one conditional update, so of two concurrent
// callers exactly one wins the claim.
func (r *publishedPostRepository) ClaimForPublishing(ctx context.Context, id int64) (bool, error) {
	query := `
		UPDATE published_posts
		SET status = $1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2 AND status = $3`
	result, err := r.db.ExecContext(ctx, query, models.PostStatusPublishing, id, models.PostStatusScheduled)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	return affected == 1, nil
}

func (r *publishedPostRepository) MarkPublished(ctx context.Context, id int64, externalID string, publishedAt time.Time) error {
	query := `
		UPDATE published_posts
		SET status = $1, published_at = $2, platform_post_id = $3, updated_at = CURRENT_TIMESTAMP
		WHERE id = $4 AND status = $5`
	return r.transition(ctx, query, models.PostStatusPublished, publishedAt, externalID, id, models.PostStatusPublishing)
}

func (r *publishedPostRepository) MarkFailed(ctx context.Context, id int64, errorMessage string) error {
	query := `
		UPDATE published_posts
		SET status = $1, error_message = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $3 AND status = $4`
	return r.transition(ctx, query, models.PostStatusFailed, errorMessage, id, models.PostStatusPublishing)
}

func (r *publishedPostRepository) transition(ctx context.Context, query string, args ...interface{}) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	if affected != 1 {
		slog.Info("post status transition affected no rows")
		return sql.ErrNoRows
	}
	return nil
}

func (r *publishedPostRepository) Remove(ctx context.Context, id int64) error {
	query := `DELETE FROM published_posts WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func scanPublishedPost(row rowScanner) (*models.PublishedPost, error) {
	var post models.PublishedPost
	err := row.Scan(&post.ID, &post.ContentID, &post.AccountID, &post.Platform, &post.PostText,
		pq.Array(&post.MediaURLs), &post.Status, &post.ScheduledFor, &post.PublishedAt,
		&post.PlatformPostID, &post.ErrorMessage, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &post, nil
}
