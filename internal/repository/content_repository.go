package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/postwavehq/postwave/internal/models"
)

type ContentRepository interface {
	Create(ctx context.Context, tx *sql.Tx, content *models.Content) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Content, error)
	GetByIDForUser(ctx context.Context, id, userID int64) (*models.Content, error)
	ListByUserID(ctx context.Context, userID int64) ([]*models.Content, error)
	CountGeneratedSince(ctx context.Context, userID int64, since time.Time) (int, error)
}

type contentRepository struct {
	db *sql.DB
}

func NewContentRepository(db *sql.DB) ContentRepository {
	return &contentRepository{db: db}
}

func (r *contentRepository) Create(ctx context.Context, tx *sql.Tx, content *models.Content) (int64, error) {
	query := `
		INSERT INTO contents (user_id, title, body, generated)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	var id int64
	var err error
	if tx != nil {
		err = tx.QueryRowContext(ctx, query, content.UserID, content.Title, content.Body, content.Generated).Scan(&id)
	} else {
		err = r.db.QueryRowContext(ctx, query, content.UserID, content.Title, content.Body, content.Generated).Scan(&id)
	}
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *contentRepository) GetByID(ctx context.Context, id int64) (*models.Content, error) {
	query := `SELECT id, user_id, title, body, generated, created_at, updated_at FROM contents WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *contentRepository) GetByIDForUser(ctx context.Context, id, userID int64) (*models.Content, error) {
	query := `SELECT id, user_id, title, body, generated, created_at, updated_at FROM contents WHERE id = $1 AND user_id = $2`
	return r.getOne(ctx, query, id, userID)
}

func (r *contentRepository) getOne(ctx context.Context, query string, args ...interface{}) (*models.Content, error) {
	row := r.db.QueryRowContext(ctx, query, args...)

	var content models.Content
	err := row.Scan(&content.ID, &content.UserID, &content.Title, &content.Body,
		&content.Generated, &content.CreatedAt, &content.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return &content, nil
}

func (r *contentRepository) ListByUserID(ctx context.Context, userID int64) ([]*models.Content, error) {
	query := `SELECT id, user_id, title, body, generated, created_at, updated_at FROM contents WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var contents []*models.Content
	for rows.Next() {
		var content models.Content
		err := rows.Scan(&content.ID, &content.UserID, &content.Title, &content.Body,
			&content.Generated, &content.CreatedAt, &content.UpdatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		contents = append(contents, &content)
	}
	return contents, rows.Err()
}

func (r *contentRepository) CountGeneratedSince(ctx context.Context, userID int64, since time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM contents WHERE user_id = $1 AND generated = TRUE AND created_at >= $2`

	var count int
	if err := r.db.QueryRowContext(ctx, query, userID, since).Scan(&count); err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return count, nil
}
