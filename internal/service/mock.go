package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// MockNotifier is a Notifier for local development and tests. It records
// every message instead of sending it, and can be told to fail.
type MockNotifier struct {
	mu        sync.Mutex
	Messages  []MockMessage
	FailSends bool
}

type MockMessage struct {
	Body     string
	MediaURL string
}

func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

func (m *MockNotifier) Send(ctx context.Context, body string, mediaURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailSends {
		return errors.New("mock send failure")
	}

	slog.Info("MOCK WHATSAPP", "body_length", len(body), "media_url", mediaURL)
	m.Messages = append(m.Messages, MockMessage{Body: body, MediaURL: mediaURL})
	return nil
}

// Sent returns a snapshot of recorded messages.
func (m *MockNotifier) Sent() []MockMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockMessage, len(m.Messages))
	copy(out, m.Messages)
	return out
}

// LastMessage returns the most recent message, or an empty one.
func (m *MockNotifier) LastMessage() MockMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Messages) == 0 {
		return MockMessage{}
	}
	return m.Messages[len(m.Messages)-1]
}
