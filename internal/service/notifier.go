package service

import "context"

// Notifier delivers a message to the operator's WhatsApp. Delivery retries
// live behind this boundary; callers only care whether the send ultimately
// succeeded, because that decides whether notified_at / timeout_notified_at
// get stamped.
type Notifier interface {
	Send(ctx context.Context, body string, mediaURL string) error
}
