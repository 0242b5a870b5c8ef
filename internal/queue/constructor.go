package queue

import (
	"github.com/hibiken/asynq"

	"github.com/maheshrc27/postpilot/internal/service"
)

// Queue holds the asynq task handlers for inbound WhatsApp commands. The
// webhook acks synchronously and pushes the real work here.
type Queue struct {
	cs service.CommandService
}

func NewQueue(cs service.CommandService) *Queue {
	return &Queue{cs: cs}
}

const TaskTypeProcessCommand = "command:process"

type ProcessCommandPayload struct {
	From string `json:"from"`
	Body string `json:"body"`
}

// Client wraps the asynq producer so HTTP handlers depend on a narrow
// enqueue surface instead of the asynq client itself.
type Client struct {
	asynq *asynq.Client
}

func NewClient(asynqClient *asynq.Client) *Client {
	return &Client{asynq: asynqClient}
}
