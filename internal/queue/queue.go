package queue

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

// Client wraps the asynq client as the publish service's Enqueuer.
type Client struct {
	asynq *asynq.Client
}

func NewClient(asynqClient *asynq.Client) *Client {
	return &Client{asynq: asynqClient}
}

// EnqueuePost schedules a delivery task to run at runAt. Times already in
// the past run immediately.
func (c *Client) EnqueuePost(postID int64, runAt time.Time) error {
	taskPayload, err := json.Marshal(PublishPostPayload{PostID: postID})
	if err != nil {
		return err
	}

	task := asynq.NewTask(TaskTypePublishPost, taskPayload)

	delay := time.Until(runAt)
	if delay < 0 {
		delay = 0
	}

	_, err = c.asynq.Enqueue(task, asynq.ProcessIn(delay))
	if err != nil {
		return err
	}

	slog.Info("delivery task enqueued", "post_id", postID, "run_at", runAt)
	return nil
}
