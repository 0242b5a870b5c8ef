package queue

import (
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
)

// EnqueueCommand schedules an inbound command for asynchronous processing.
// Commands are not retried by asynq: re-running an approve after a partial
// failure would surface a confusing "already approved" reply, and the
// command service already reports failures to the operator itself.
func (c *Client) EnqueueCommand(from, body string) error {
	taskPayload, err := json.Marshal(ProcessCommandPayload{From: from, Body: body})
	if err != nil {
		return err
	}

	task := asynq.NewTask(TaskTypeProcessCommand, taskPayload, asynq.MaxRetry(0))

	if _, err := c.asynq.Enqueue(task); err != nil {
		return err
	}

	slog.Info("command task enqueued", "from", from)
	return nil
}
