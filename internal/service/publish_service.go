package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	config "github.com/postwavehq/postwave/configs"
	"github.com/postwavehq/postwave/internal/models"
	"github.com/postwavehq/postwave/internal/platforms"
	"github.com/postwavehq/postwave/internal/repository"
	"github.com/postwavehq/postwave/internal/transfer"
	"github.com/postwavehq/postwave/pkg/utils"
)

// ErrPostNotFound is returned when a post id does not resolve to a post the
// caller owns.
var ErrPostNotFound = errors.New("post not found")

// AllAccountsFailedError is returned by PublishNow when not a single account
// accepted the post. Partial failure is reported in the PublishReport instead.
type AllAccountsFailedError struct {
	Results []transfer.AccountResult
}

func (e *AllAccountsFailedError) Error() string {
	msgs := make([]string, 0, len(e.Results))
	for _, r := range e.Results {
		msgs = append(msgs, fmt.Sprintf("%s/%s: %s", r.Platform, r.AccountName, r.ErrorMessage))
	}
	return "publishing failed for all accounts: " + strings.Join(msgs, "; ")
}

// Enqueuer hands a scheduled post to the delayed task queue.
type Enqueuer interface {
	EnqueuePost(postID int64, runAt time.Time) error
}

type PublishService interface {
	PublishNow(ctx context.Context, userID int64, req *transfer.PublishNowRequest) (*transfer.PublishReport, error)
	Schedule(ctx context.Context, userID int64, req *transfer.ScheduleRequest) ([]*models.PublishedPost, error)
	PublishScheduled(ctx context.Context, postID int64) error
	List(ctx context.Context, userID int64, status string) ([]*models.PublishedPost, error)
	Remove(ctx context.Context, userID, postID int64) (string, error)
	Metrics(ctx context.Context, userID, postID int64) (*transfer.PostMetrics, error)
	Analytics(ctx context.Context, userID int64) (*transfer.AnalyticsReport, error)
}

type publishService struct {
	cfg      config.Config
	posts    repository.PublishedPostRepository
	accounts repository.LinkedAccountRepository
	contents repository.ContentRepository
	resolver platforms.Resolver
	queue    Enqueuer
}

func NewPublishService(
	cfg config.Config,
	posts repository.PublishedPostRepository,
	accounts repository.LinkedAccountRepository,
	contents repository.ContentRepository,
	resolver platforms.Resolver,
	queue Enqueuer) PublishService {
	return &publishService{
		cfg:      cfg,
		posts:    posts,
		accounts: accounts,
		contents: contents,
		resolver: resolver,
		queue:    queue,
	}
}

// PublishNow fans the content out to every requested account concurrently.
// One goroutine per account; a failing account never cancels its siblings.
// Every account ends in a terminal row, and only when all of them fail does
// the call itself return an error.
func (s *publishService) PublishNow(ctx context.Context, userID int64, req *transfer.PublishNowRequest) (*transfer.PublishReport, error) {
	text, accounts, missing, err := s.prepareBatch(ctx, userID, req.ContentID, req.AccountIDs, req.OverrideText)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	results := make([]transfer.AccountResult, 0, len(req.AccountIDs))
	results = append(results, missing...)

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, account := range accounts {
		post := &models.PublishedPost{
			ContentID:    req.ContentID,
			AccountID:    account.ID,
			Platform:     account.Platform,
			PostText:     text,
			MediaURLs:    req.MediaURLs,
			Status:       models.PostStatusPublishing,
			ScheduledFor: now,
		}
		postID, err := s.posts.Create(ctx, nil, post)
		if err != nil {
			return nil, fmt.Errorf("error creating post record: %w", err)
		}

		wg.Add(1)
		go func(account *models.LinkedAccount, postID int64) {
			defer wg.Done()
			result := s.publishOne(ctx, postID, account, text, req.MediaURLs)
			mu.Lock()
			results = append(results, result)
			mu.Unlock()
		}(account, postID)
	}
	wg.Wait()

	report := &transfer.PublishReport{Results: results}
	for _, r := range results {
		if r.Status == models.PostStatusPublished {
			report.Successful++
		} else {
			report.Failed++
		}
	}

	if report.Successful == 0 && len(results) > 0 {
		return report, &AllAccountsFailedError{Results: results}
	}
	return report, nil
}

// Schedule records one SCHEDULED row per account and enqueues a delayed
// delivery task for each. No platform call happens here.
func (s *publishService) Schedule(ctx context.Context, userID int64, req *transfer.ScheduleRequest) ([]*models.PublishedPost, error) {
	if req.ScheduledFor.Before(time.Now()) {
		return nil, errors.New("scheduled time must be in the future")
	}

	text, accounts, missing, err := s.prepareBatch(ctx, userID, req.ContentID, req.AccountIDs, req.CustomText)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("linked account %d not found or inactive", missing[0].AccountID)
	}

	posts := make([]*models.PublishedPost, 0, len(accounts))
	for _, account := range accounts {
		post := &models.PublishedPost{
			ContentID:    req.ContentID,
			AccountID:    account.ID,
			Platform:     account.Platform,
			PostText:     text,
			MediaURLs:    req.MediaURLs,
			Status:       models.PostStatusScheduled,
			ScheduledFor: req.ScheduledFor,
		}
		postID, err := s.posts.Create(ctx, nil, post)
		if err != nil {
			return nil, fmt.Errorf("error creating scheduled post: %w", err)
		}
		post.ID = postID
		posts = append(posts, post)

		if s.queue != nil {
			if err := s.queue.EnqueuePost(postID, req.ScheduledFor); err != nil {
				slog.Error("failed to enqueue scheduled post", "post_id", postID, "error", err)
			}
		}
	}
	return posts, nil
}

// PublishScheduled delivers one scheduled post. The claim is a conditional
// update, so a duplicate task delivery or a racing sweep finds the post
// already claimed and does nothing.
func (s *publishService) PublishScheduled(ctx context.Context, postID int64) error {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return ErrPostNotFound
	}

	claimed, err := s.posts.ClaimForPublishing(ctx, postID)
	if err != nil {
		return err
	}
	if !claimed {
		slog.Info("scheduled post not claimable, skipping", "post_id", postID, "status", post.Status)
		return nil
	}

	account, err := s.accounts.GetByID(ctx, post.AccountID)
	if err != nil {
		return err
	}
	if account == nil || !account.IsActive {
		return s.posts.MarkFailed(ctx, postID, "linked account not found or inactive")
	}

	result := s.publishOne(ctx, postID, account, post.PostText, post.MediaURLs)
	if result.Status == models.PostStatusFailed {
		slog.Info("scheduled post failed", "post_id", postID, "error", result.ErrorMessage)
	}
	return nil
}

func (s *publishService) List(ctx context.Context, userID int64, status string) ([]*models.PublishedPost, error) {
	if userID == 0 {
		return nil, errors.New("user id is not valid")
	}
	return s.posts.ListByUserID(ctx, userID, status)
}

// Remove deletes the local post record. A PUBLISHED post stays live on the
// platform, so the caller gets a warning back. A post mid-flight cannot be
// removed.
func (s *publishService) Remove(ctx context.Context, userID, postID int64) (string, error) {
	post, err := s.posts.GetByIDForUser(ctx, postID, userID)
	if err != nil {
		return "", err
	}
	if post == nil {
		return "", ErrPostNotFound
	}
	if post.Status == models.PostStatusPublishing {
		return "", errors.New("post is currently being published")
	}

	if err := s.posts.Remove(ctx, postID); err != nil {
		return "", err
	}

	if post.Status == models.PostStatusPublished {
		return "post removed locally; the copy on " + post.Platform + " is not deleted", nil
	}
	return "", nil
}

// Metrics fetches engagement numbers for a published post from its platform.
func (s *publishService) Metrics(ctx context.Context, userID, postID int64) (*transfer.PostMetrics, error) {
	post, err := s.posts.GetByIDForUser(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	if post.Status != models.PostStatusPublished || !post.PlatformPostID.Valid {
		return nil, errors.New("post has no platform metrics")
	}

	account, err := s.accounts.GetByID(ctx, post.AccountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, errors.New("linked account doesn't exist")
	}

	token, err := utils.Decrypt(account.AccessToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return nil, err
	}

	adapter, err := s.resolver.Resolve(account, token)
	if err != nil {
		return nil, err
	}
	return adapter.Metrics(ctx, post.PlatformPostID.String)
}

// Analytics aggregates engagement numbers over every published post of the
// user. Posts whose platform call fails are left out of the totals instead of
// failing the whole report.
func (s *publishService) Analytics(ctx context.Context, userID int64) (*transfer.AnalyticsReport, error) {
	posts, err := s.posts.ListByUserID(ctx, userID, models.PostStatusPublished)
	if err != nil {
		return nil, err
	}

	report := &transfer.AnalyticsReport{Posts: []transfer.PostAnalytics{}}
	for _, post := range posts {
		if !post.PlatformPostID.Valid {
			continue
		}

		account, err := s.accounts.GetByID(ctx, post.AccountID)
		if err != nil || account == nil {
			continue
		}

		token, err := utils.Decrypt(account.AccessToken, []byte(s.cfg.SecretKey))
		if err != nil {
			continue
		}

		adapter, err := s.resolver.Resolve(account, token)
		if err != nil {
			continue
		}

		metrics, err := adapter.Metrics(ctx, post.PlatformPostID.String)
		if err != nil {
			slog.Info("failed to fetch post metrics", "post_id", post.ID, "error", err)
			continue
		}

		report.TotalLikes += metrics.Likes
		report.TotalComments += metrics.Comments
		report.TotalShares += metrics.Shares
		report.Posts = append(report.Posts, transfer.PostAnalytics{
			PostID:   post.ID,
			Platform: post.Platform,
			Metrics:  *metrics,
		})
	}
	return report, nil
}

// prepareBatch validates content ownership, resolves the post text and loads
// the requested accounts. IDs that do not resolve to an active account owned
// by the user come back as failed results instead of aborting the batch.
func (s *publishService) prepareBatch(ctx context.Context, userID, contentID int64, accountIDs []int64, overrideText string) (string, []*models.LinkedAccount, []transfer.AccountResult, error) {
	if userID == 0 {
		return "", nil, nil, errors.New("user id is not valid")
	}
	if len(accountIDs) == 0 {
		return "", nil, nil, errors.New("no accounts selected")
	}

	content, err := s.contents.GetByIDForUser(ctx, contentID, userID)
	if err != nil {
		return "", nil, nil, err
	}
	if content == nil {
		return "", nil, nil, errors.New("content doesn't exist")
	}

	text := overrideText
	if text == "" {
		text = content.Body
	}
	if text == "" {
		return "", nil, nil, errors.New("post text is empty")
	}

	accounts, err := s.accounts.ListActiveByIDs(ctx, userID, accountIDs)
	if err != nil {
		return "", nil, nil, err
	}

	found := make(map[int64]bool, len(accounts))
	for _, a := range accounts {
		found[a.ID] = true
	}
	var missing []transfer.AccountResult
	for _, id := range accountIDs {
		if !found[id] {
			missing = append(missing, transfer.AccountResult{
				AccountID:    id,
				Status:       models.PostStatusFailed,
				ErrorMessage: "linked account not found or inactive",
			})
		}
	}
	return text, accounts, missing, nil
}

// publishOne delivers one post already in PUBLISHING to its platform and
// moves it to a terminal state. It never returns an error; every outcome is
// recorded on the row and reflected in the result.
func (s *publishService) publishOne(ctx context.Context, postID int64, account *models.LinkedAccount, text string, mediaURLs []string) transfer.AccountResult {
	result := transfer.AccountResult{
		PostID:      postID,
		AccountID:   account.ID,
		Platform:    account.Platform,
		AccountName: account.AccountName,
	}

	fail := func(message string) transfer.AccountResult {
		result.Status = models.PostStatusFailed
		result.ErrorMessage = message
		if err := s.posts.MarkFailed(ctx, postID, message); err != nil {
			slog.Error("failed to mark post failed", "post_id", postID, "error", err)
		}
		return result
	}

	if account.TokenExpiresAt.Valid && account.TokenExpiresAt.Time.Before(time.Now()) {
		return fail("access token expired; reconnect the account")
	}

	token, err := utils.Decrypt(account.AccessToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return fail("could not decrypt access token")
	}

	adapter, err := s.resolver.Resolve(account, token)
	if err != nil {
		return fail(err.Error())
	}

	published := adapter.Publish(ctx, text, mediaURLs)
	if !published.Success {
		return fail(published.ErrorMessage)
	}

	if err := s.posts.MarkPublished(ctx, postID, published.ExternalID, time.Now()); err != nil {
		slog.Error("failed to mark post published", "post_id", postID, "error", err)
	}
	result.Status = models.PostStatusPublished
	result.ExternalID = published.ExternalID
	return result
}
