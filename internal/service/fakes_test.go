package service

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/postwavehq/postwave/internal/models"
	"github.com/postwavehq/postwave/internal/platforms"
	"github.com/postwavehq/postwave/internal/transfer"
)

func toNullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}

type fakeAccountRepo struct {
	mu       sync.Mutex
	nextID   int64
	accounts map[int64]*models.LinkedAccount
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: map[int64]*models.LinkedAccount{}}
}

func (r *fakeAccountRepo) add(account *models.LinkedAccount) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	account.ID = r.nextID
	copied := *account
	r.accounts[account.ID] = &copied
	return account.ID
}

func (r *fakeAccountRepo) Upsert(_ context.Context, _ *sql.Tx, account *models.LinkedAccount) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, existing := range r.accounts {
		if existing.UserID == account.UserID && existing.Platform == account.Platform && existing.AccountName == account.AccountName {
			copied := *account
			copied.ID = id
			r.accounts[id] = &copied
			return id, nil
		}
	}

	r.nextID++
	copied := *account
	copied.ID = r.nextID
	r.accounts[copied.ID] = &copied
	return copied.ID, nil
}

func (r *fakeAccountRepo) GetByID(_ context.Context, id int64) (*models.LinkedAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[id]
	if !ok {
		return nil, nil
	}
	copied := *account
	return &copied, nil
}

func (r *fakeAccountRepo) ListActiveByIDs(_ context.Context, userID int64, ids []int64) ([]*models.LinkedAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	wanted := map[int64]bool{}
	for _, id := range ids {
		wanted[id] = true
	}

	var out []*models.LinkedAccount
	for _, account := range r.accounts {
		if wanted[account.ID] && account.UserID == userID && account.IsActive {
			copied := *account
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeAccountRepo) ListInfoByUserID(_ context.Context, userID int64) ([]*models.LinkedAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*models.LinkedAccount
	for _, account := range r.accounts {
		if account.UserID == userID && account.IsActive {
			copied := *account
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeAccountRepo) CountActiveByUserID(_ context.Context, userID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, account := range r.accounts {
		if account.UserID == userID && account.IsActive {
			count++
		}
	}
	return count, nil
}

func (r *fakeAccountRepo) CheckByUserID(_ context.Context, accountID, userID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[accountID]
	return ok && account.UserID == userID, nil
}

func (r *fakeAccountRepo) Deactivate(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if account, ok := r.accounts[id]; ok {
		account.IsActive = false
	}
	return nil
}

func (r *fakeAccountRepo) Remove(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.accounts, id)
	return nil
}

type fakeContentRepo struct {
	mu       sync.Mutex
	nextID   int64
	contents map[int64]*models.Content
}

func newFakeContentRepo() *fakeContentRepo {
	return &fakeContentRepo{contents: map[int64]*models.Content{}}
}

func (r *fakeContentRepo) Create(_ context.Context, _ *sql.Tx, content *models.Content) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	copied := *content
	copied.ID = r.nextID
	copied.CreatedAt = time.Now()
	r.contents[copied.ID] = &copied
	return copied.ID, nil
}

func (r *fakeContentRepo) GetByID(_ context.Context, id int64) (*models.Content, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	content, ok := r.contents[id]
	if !ok {
		return nil, nil
	}
	copied := *content
	return &copied, nil
}

func (r *fakeContentRepo) GetByIDForUser(_ context.Context, id, userID int64) (*models.Content, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	content, ok := r.contents[id]
	if !ok || content.UserID != userID {
		return nil, nil
	}
	copied := *content
	return &copied, nil
}

func (r *fakeContentRepo) ListByUserID(_ context.Context, userID int64) ([]*models.Content, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*models.Content
	for _, content := range r.contents {
		if content.UserID == userID {
			copied := *content
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeContentRepo) CountGeneratedSince(_ context.Context, userID int64, since time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, content := range r.contents {
		if content.UserID == userID && content.Generated && !content.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

type fakePostRepo struct {
	mu       sync.Mutex
	nextID   int64
	posts    map[int64]*models.PublishedPost
	contents *fakeContentRepo
}

func newFakePostRepo(contents *fakeContentRepo) *fakePostRepo {
	return &fakePostRepo{posts: map[int64]*models.PublishedPost{}, contents: contents}
}

func (r *fakePostRepo) Create(_ context.Context, _ *sql.Tx, post *models.PublishedPost) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	copied := *post
	copied.ID = r.nextID
	copied.CreatedAt = time.Now()
	r.posts[copied.ID] = &copied
	return copied.ID, nil
}

func (r *fakePostRepo) GetByID(_ context.Context, id int64) (*models.PublishedPost, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	post, ok := r.posts[id]
	if !ok {
		return nil, nil
	}
	copied := *post
	return &copied, nil
}

func (r *fakePostRepo) GetByIDForUser(ctx context.Context, id, userID int64) (*models.PublishedPost, error) {
	post, err := r.GetByID(ctx, id)
	if err != nil || post == nil {
		return nil, err
	}

	content, err := r.contents.GetByID(ctx, post.ContentID)
	if err != nil || content == nil || content.UserID != userID {
		return nil, err
	}
	return post, nil
}

func (r *fakePostRepo) ListByUserID(ctx context.Context, userID int64, status string) ([]*models.PublishedPost, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*models.PublishedPost
	for _, post := range r.posts {
		content := r.contents.contents[post.ContentID]
		if content == nil || content.UserID != userID {
			continue
		}
		if status != "" && post.Status != status {
			continue
		}
		copied := *post
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakePostRepo) ListDueScheduled(_ context.Context, before time.Time) ([]*models.PublishedPost, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*models.PublishedPost
	for _, post := range r.posts {
		if post.Status == models.PostStatusScheduled && !post.ScheduledFor.After(before) {
			copied := *post
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakePostRepo) ClaimForPublishing(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	post, ok := r.posts[id]
	if !ok || post.Status != models.PostStatusScheduled {
		return false, nil
	}
	post.Status = models.PostStatusPublishing
	return true, nil
}

func (r *fakePostRepo) MarkPublished(_ context.Context, id int64, externalID string, publishedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	post, ok := r.posts[id]
	if !ok || post.Status != models.PostStatusPublishing {
		return sql.ErrNoRows
	}
	post.Status = models.PostStatusPublished
	post.PlatformPostID = sql.NullString{String: externalID, Valid: true}
	post.PublishedAt = sql.NullTime{Time: publishedAt, Valid: true}
	return nil
}

func (r *fakePostRepo) MarkFailed(_ context.Context, id int64, errorMessage string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	post, ok := r.posts[id]
	if !ok || post.Status != models.PostStatusPublishing {
		return sql.ErrNoRows
	}
	post.Status = models.PostStatusFailed
	post.ErrorMessage = sql.NullString{String: errorMessage, Valid: true}
	return nil
}

func (r *fakePostRepo) Remove(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.posts, id)
	return nil
}

type fakeSubscriptionRepo struct {
	tier string
}

func (r *fakeSubscriptionRepo) GetByUserID(context.Context, int64) (*models.Subscription, error) {
	return &models.Subscription{Tier: r.tier}, nil
}

func (r *fakeSubscriptionRepo) GetTierByUserID(context.Context, int64) (string, error) {
	return r.tier, nil
}

type fakeAdapter struct {
	mu      sync.Mutex
	calls   int
	result  *platforms.PublishResult
	metrics *transfer.PostMetrics
}

func (a *fakeAdapter) Publish(context.Context, string, []string) *platforms.PublishResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	return a.result
}

func (a *fakeAdapter) Metrics(context.Context, string) (*transfer.PostMetrics, error) {
	return a.metrics, nil
}

type fakeResolver struct {
	mu       sync.Mutex
	adapters map[int64]*fakeAdapter
	err      error
	tokens   map[int64]string
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{adapters: map[int64]*fakeAdapter{}, tokens: map[int64]string{}}
}

func (r *fakeResolver) Resolve(account *models.LinkedAccount, accessToken string) (platforms.Adapter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return nil, r.err
	}
	r.tokens[account.ID] = accessToken
	adapter, ok := r.adapters[account.ID]
	if !ok {
		adapter = &fakeAdapter{result: &platforms.PublishResult{Success: true, ExternalID: "ext"}}
		r.adapters[account.ID] = adapter
	}
	return adapter, nil
}

type enqueued struct {
	postID int64
	runAt  time.Time
}

type fakeEnqueuer struct {
	mu    sync.Mutex
	tasks []enqueued
}

func (e *fakeEnqueuer) EnqueuePost(postID int64, runAt time.Time) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tasks = append(e.tasks, enqueued{postID: postID, runAt: runAt})
	return nil
}
