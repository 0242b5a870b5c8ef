package queue

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
)

func (q *Queue) HandleProcessCommandTask(ctx context.Context, task *asynq.Task) error {
	var payload ProcessCommandPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	// HandleMessage reports its own failures to the operator; logging here
	// is for the server-side trail only.
	if err := q.cs.HandleMessage(ctx, payload.From, payload.Body); err != nil {
		slog.Error("command processing failed", "from", payload.From, "error", err)
	}

	return nil
}
