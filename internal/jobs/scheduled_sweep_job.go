package job

import (
	"context"
	"log/slog"
	"time"

	"github.com/postwavehq/postwave/internal/repository"
	"github.com/postwavehq/postwave/internal/service"
)

// ScheduledSweepJob re-enqueues scheduled posts whose delivery time has
// passed without a task firing, typically after a worker outage. Posts whose
// original task does arrive later are protected by the publishing claim.
type ScheduledSweepJob struct {
	posts repository.PublishedPostRepository
	queue service.Enqueuer
}

func NewScheduledSweepJob(posts repository.PublishedPostRepository, queue service.Enqueuer) *ScheduledSweepJob {
	return &ScheduledSweepJob{posts: posts, queue: queue}
}

func (c *ScheduledSweepJob) Sweep() {
	ctx := context.Background()

	posts, err := c.posts.ListDueScheduled(ctx, time.Now())
	if err != nil {
		slog.Info(err.Error())
		return
	}

	for _, post := range posts {
		if err := c.queue.EnqueuePost(post.ID, time.Now()); err != nil {
			slog.Info("failed to re-enqueue overdue post", "post_id", post.ID, "error", err)
		}
	}
}
