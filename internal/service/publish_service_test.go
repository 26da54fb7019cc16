package service

import (
	"context"
	"testing"
	"time"

	config "github.com/postwavehq/postwave/configs"
	"github.com/postwavehq/postwave/internal/models"
	"github.com/postwavehq/postwave/internal/platforms"
	"github.com/postwavehq/postwave/internal/transfer"
	"github.com/postwavehq/postwave/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecretKey = "0123456789abcdef0123456789abcdef"

type publishFixture struct {
	accounts *fakeAccountRepo
	contents *fakeContentRepo
	posts    *fakePostRepo
	resolver *fakeResolver
	queue    *fakeEnqueuer
	svc      PublishService
}

func newPublishFixture(t *testing.T) *publishFixture {
	t.Helper()

	accounts := newFakeAccountRepo()
	contents := newFakeContentRepo()
	posts := newFakePostRepo(contents)
	resolver := newFakeResolver()
	queue := &fakeEnqueuer{}

	cfg := config.Config{SecretKey: testSecretKey}
	svc := NewPublishService(cfg, posts, accounts, contents, resolver, queue)

	return &publishFixture{
		accounts: accounts,
		contents: contents,
		posts:    posts,
		resolver: resolver,
		queue:    queue,
		svc:      svc,
	}
}

func (f *publishFixture) addAccount(t *testing.T, userID int64, platform string) int64 {
	t.Helper()

	token, err := utils.Encrypt([]byte("platform-token"), []byte(testSecretKey))
	require.NoError(t, err)

	return f.accounts.add(&models.LinkedAccount{
		UserID:      userID,
		Platform:    platform,
		AccountID:   "ext-acc",
		AccountName: platform + "-user",
		AccessToken: token,
		IsActive:    true,
	})
}

func (f *publishFixture) addContent(t *testing.T, userID int64, body string) int64 {
	t.Helper()

	id, err := f.contents.Create(context.Background(), nil, &models.Content{UserID: userID, Body: body})
	require.NoError(t, err)
	return id
}

func TestPublishNowFanOut(t *testing.T) {
	f := newPublishFixture(t)
	ctx := context.Background()

	contentID := f.addContent(t, 1, "hello")
	twID := f.addAccount(t, 1, models.PlatformTwitter)
	fbID := f.addAccount(t, 1, models.PlatformFacebook)
	liID := f.addAccount(t, 1, models.PlatformLinkedin)

	f.resolver.adapters[twID] = &fakeAdapter{result: &platforms.PublishResult{Success: true, ExternalID: "tw-1"}}
	f.resolver.adapters[fbID] = &fakeAdapter{result: &platforms.PublishResult{Success: false, ErrorMessage: "rate limited"}}
	f.resolver.adapters[liID] = &fakeAdapter{result: &platforms.PublishResult{Success: true, ExternalID: "li-1"}}

	report, err := f.svc.PublishNow(ctx, 1, &transfer.PublishNowRequest{
		ContentID:  contentID,
		AccountIDs: []int64{twID, fbID, liID},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Successful)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Results, 3)

	// every account ends in a terminal row
	for _, result := range report.Results {
		post, err := f.posts.GetByID(ctx, result.PostID)
		require.NoError(t, err)
		require.NotNil(t, post)
		assert.True(t, models.IsTerminal(post.Status), post.Status)

		if result.AccountID == fbID {
			assert.Equal(t, models.PostStatusFailed, post.Status)
			assert.Equal(t, "rate limited", post.ErrorMessage.String)
		}
	}
}

func TestPublishNowAllAccountsFail(t *testing.T) {
	f := newPublishFixture(t)

	contentID := f.addContent(t, 1, "hello")
	twID := f.addAccount(t, 1, models.PlatformTwitter)
	fbID := f.addAccount(t, 1, models.PlatformFacebook)

	f.resolver.adapters[twID] = &fakeAdapter{result: &platforms.PublishResult{Success: false, ErrorMessage: "bad token"}}
	f.resolver.adapters[fbID] = &fakeAdapter{result: &platforms.PublishResult{Success: false, ErrorMessage: "bad token"}}

	report, err := f.svc.PublishNow(context.Background(), 1, &transfer.PublishNowRequest{
		ContentID:  contentID,
		AccountIDs: []int64{twID, fbID},
	})
	require.Error(t, err)

	var allFailed *AllAccountsFailedError
	require.ErrorAs(t, err, &allFailed)
	assert.Len(t, allFailed.Results, 2)
	require.NotNil(t, report)
	assert.Equal(t, 0, report.Successful)
	assert.Equal(t, 2, report.Failed)
}

func TestPublishNowUnknownAccountDoesNotCancelSiblings(t *testing.T) {
	f := newPublishFixture(t)

	contentID := f.addContent(t, 1, "hello")
	twID := f.addAccount(t, 1, models.PlatformTwitter)

	report, err := f.svc.PublishNow(context.Background(), 1, &transfer.PublishNowRequest{
		ContentID:  contentID,
		AccountIDs: []int64{twID, 999},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Successful)
	assert.Equal(t, 1, report.Failed)

	for _, result := range report.Results {
		if result.AccountID == 999 {
			assert.Equal(t, models.PostStatusFailed, result.Status)
			assert.Contains(t, result.ErrorMessage, "not found or inactive")
		}
	}
}

func TestPublishNowExpiredTokenFails(t *testing.T) {
	f := newPublishFixture(t)

	contentID := f.addContent(t, 1, "hello")
	twID := f.addAccount(t, 1, models.PlatformTwitter)

	f.accounts.mu.Lock()
	f.accounts.accounts[twID].TokenExpiresAt.Valid = true
	f.accounts.accounts[twID].TokenExpiresAt.Time = time.Now().Add(-time.Hour)
	f.accounts.mu.Unlock()

	report, err := f.svc.PublishNow(context.Background(), 1, &transfer.PublishNowRequest{
		ContentID:  contentID,
		AccountIDs: []int64{twID},
	})
	require.Error(t, err)
	require.Len(t, report.Results, 1)
	assert.Contains(t, report.Results[0].ErrorMessage, "expired")
}

func TestPublishNowContentOwnership(t *testing.T) {
	f := newPublishFixture(t)

	contentID := f.addContent(t, 2, "someone else's content")
	twID := f.addAccount(t, 1, models.PlatformTwitter)

	_, err := f.svc.PublishNow(context.Background(), 1, &transfer.PublishNowRequest{
		ContentID:  contentID,
		AccountIDs: []int64{twID},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "content")
}

func TestScheduleCreatesRowsAndEnqueues(t *testing.T) {
	f := newPublishFixture(t)
	ctx := context.Background()

	contentID := f.addContent(t, 1, "hello")
	twID := f.addAccount(t, 1, models.PlatformTwitter)
	fbID := f.addAccount(t, 1, models.PlatformFacebook)

	scheduledFor := time.Now().Add(2 * time.Hour)
	posts, err := f.svc.Schedule(ctx, 1, &transfer.ScheduleRequest{
		ContentID:    contentID,
		AccountIDs:   []int64{twID, fbID},
		ScheduledFor: scheduledFor,
	})
	require.NoError(t, err)
	require.Len(t, posts, 2)

	for _, post := range posts {
		assert.Equal(t, models.PostStatusScheduled, post.Status)
		stored, err := f.posts.GetByID(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, models.PostStatusScheduled, stored.Status)
	}

	require.Len(t, f.queue.tasks, 2)
	for _, task := range f.queue.tasks {
		assert.WithinDuration(t, scheduledFor, task.runAt, time.Second)
	}

	// adapters are never touched at schedule time
	for _, adapter := range f.resolver.adapters {
		assert.Zero(t, adapter.calls)
	}
}

func TestSchedulePastTimeRejected(t *testing.T) {
	f := newPublishFixture(t)

	contentID := f.addContent(t, 1, "hello")
	twID := f.addAccount(t, 1, models.PlatformTwitter)

	_, err := f.svc.Schedule(context.Background(), 1, &transfer.ScheduleRequest{
		ContentID:    contentID,
		AccountIDs:   []int64{twID},
		ScheduledFor: time.Now().Add(-time.Minute),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "future")
}

func TestPublishScheduledDeliversOnce(t *testing.T) {
	f := newPublishFixture(t)
	ctx := context.Background()

	contentID := f.addContent(t, 1, "hello")
	twID := f.addAccount(t, 1, models.PlatformTwitter)

	adapter := &fakeAdapter{result: &platforms.PublishResult{Success: true, ExternalID: "tw-9"}}
	f.resolver.adapters[twID] = adapter

	postID, err := f.posts.Create(ctx, nil, &models.PublishedPost{
		ContentID:    contentID,
		AccountID:    twID,
		Platform:     models.PlatformTwitter,
		PostText:     "hello",
		Status:       models.PostStatusScheduled,
		ScheduledFor: time.Now().Add(-time.Minute),
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.PublishScheduled(ctx, postID))

	post, err := f.posts.GetByID(ctx, postID)
	require.NoError(t, err)
	assert.Equal(t, models.PostStatusPublished, post.Status)
	assert.Equal(t, "tw-9", post.PlatformPostID.String)
	assert.Equal(t, 1, adapter.calls)

	// a duplicate task delivery finds the post claimed and does nothing
	require.NoError(t, f.svc.PublishScheduled(ctx, postID))
	assert.Equal(t, 1, adapter.calls)
}

func TestPublishScheduledUnknownPost(t *testing.T) {
	f := newPublishFixture(t)

	err := f.svc.PublishScheduled(context.Background(), 404)
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestRemovePublishedPostWarns(t *testing.T) {
	f := newPublishFixture(t)
	ctx := context.Background()

	contentID := f.addContent(t, 1, "hello")
	postID, err := f.posts.Create(ctx, nil, &models.PublishedPost{
		ContentID: contentID,
		AccountID: 1,
		Platform:  models.PlatformTwitter,
		Status:    models.PostStatusPublished,
	})
	require.NoError(t, err)

	warning, err := f.svc.Remove(ctx, 1, postID)
	require.NoError(t, err)
	assert.Contains(t, warning, "not deleted")

	post, err := f.posts.GetByID(ctx, postID)
	require.NoError(t, err)
	assert.Nil(t, post)
}

func TestRemoveMidFlightPostRefused(t *testing.T) {
	f := newPublishFixture(t)
	ctx := context.Background()

	contentID := f.addContent(t, 1, "hello")
	postID, err := f.posts.Create(ctx, nil, &models.PublishedPost{
		ContentID: contentID,
		AccountID: 1,
		Platform:  models.PlatformTwitter,
		Status:    models.PostStatusPublishing,
	})
	require.NoError(t, err)

	_, err = f.svc.Remove(ctx, 1, postID)
	require.Error(t, err)

	post, err := f.posts.GetByID(ctx, postID)
	require.NoError(t, err)
	require.NotNil(t, post)
}

func TestRemovePostOwnership(t *testing.T) {
	f := newPublishFixture(t)
	ctx := context.Background()

	contentID := f.addContent(t, 2, "not yours")
	postID, err := f.posts.Create(ctx, nil, &models.PublishedPost{
		ContentID: contentID,
		AccountID: 1,
		Platform:  models.PlatformTwitter,
		Status:    models.PostStatusScheduled,
	})
	require.NoError(t, err)

	_, err = f.svc.Remove(ctx, 1, postID)
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestPostMetrics(t *testing.T) {
	f := newPublishFixture(t)
	ctx := context.Background()

	contentID := f.addContent(t, 1, "hello")
	twID := f.addAccount(t, 1, models.PlatformTwitter)

	f.resolver.adapters[twID] = &fakeAdapter{
		result:  &platforms.PublishResult{Success: true},
		metrics: &transfer.PostMetrics{Likes: 5, Comments: 1, Shares: 2},
	}

	postID, err := f.posts.Create(ctx, nil, &models.PublishedPost{
		ContentID:      contentID,
		AccountID:      twID,
		Platform:       models.PlatformTwitter,
		Status:         models.PostStatusPublished,
		PlatformPostID: toNullString("tw-1"),
	})
	require.NoError(t, err)

	metrics, err := f.svc.Metrics(ctx, 1, postID)
	require.NoError(t, err)
	assert.Equal(t, 5, metrics.Likes)
	assert.Equal(t, 1, metrics.Comments)
	assert.Equal(t, 2, metrics.Shares)

	// the adapter saw the decrypted token
	assert.Equal(t, "platform-token", f.resolver.tokens[twID])
}

func TestAnalyticsAggregatesPublishedPosts(t *testing.T) {
	f := newPublishFixture(t)
	ctx := context.Background()

	contentID := f.addContent(t, 1, "hello")
	twID := f.addAccount(t, 1, models.PlatformTwitter)
	liID := f.addAccount(t, 1, models.PlatformLinkedin)

	f.resolver.adapters[twID] = &fakeAdapter{metrics: &transfer.PostMetrics{Likes: 5, Comments: 1, Shares: 2}}
	f.resolver.adapters[liID] = &fakeAdapter{metrics: &transfer.PostMetrics{Likes: 3, Comments: 4}}

	for accountID, platform := range map[int64]string{twID: models.PlatformTwitter, liID: models.PlatformLinkedin} {
		_, err := f.posts.Create(ctx, nil, &models.PublishedPost{
			ContentID:      contentID,
			AccountID:      accountID,
			Platform:       platform,
			Status:         models.PostStatusPublished,
			PlatformPostID: toNullString("ext-" + platform),
		})
		require.NoError(t, err)
	}
	// a failed post contributes nothing
	_, err := f.posts.Create(ctx, nil, &models.PublishedPost{
		ContentID: contentID,
		AccountID: twID,
		Platform:  models.PlatformTwitter,
		Status:    models.PostStatusFailed,
	})
	require.NoError(t, err)

	report, err := f.svc.Analytics(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 8, report.TotalLikes)
	assert.Equal(t, 5, report.TotalComments)
	assert.Equal(t, 2, report.TotalShares)
	assert.Len(t, report.Posts, 2)
}
