package queue

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"
)

// HandlePublishPostTask delivers one scheduled post. The claim inside
// PublishScheduled makes duplicate deliveries harmless.
func (j *Queue) HandlePublishPostTask(ctx context.Context, task *asynq.Task) error {
	var payload PublishPostPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	return j.ps.PublishScheduled(ctx, payload.PostID)
}
