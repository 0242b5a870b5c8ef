package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/maheshrc27/postpilot/internal/service"
)

// TimeoutSweeper escalates pending posts that have waited past the response
// deadline. The clock starts at notified_at, not created_at: a post whose
// approval request never went out has nothing to time out yet. A sweep never
// changes status: a timed-out post stays pending and fully actionable; the
// alert is an escalation, not a transition.
type TimeoutSweeper struct {
	queue    service.ApprovalService
	notifier service.Notifier
	timeout  time.Duration
	interval time.Duration

	mu   sync.Mutex
	stop chan struct{}
}

func NewTimeoutSweeper(queue service.ApprovalService, notifier service.Notifier, timeout, interval time.Duration) *TimeoutSweeper {
	return &TimeoutSweeper{
		queue:    queue,
		notifier: notifier,
		timeout:  timeout,
		interval: interval,
	}
}

// Start launches the periodic sweep, running one immediately. Calling Start
// on a running sweeper is a no-op.
func (s *TimeoutSweeper) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		return
	}
	s.stop = make(chan struct{})
	go s.run(s.stop)
}

// Stop halts the periodic sweep. Stopping a stopped sweeper is a no-op.
func (s *TimeoutSweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop == nil {
		return
	}
	close(s.stop)
	s.stop = nil
}

// Running reports whether the periodic sweep is active.
func (s *TimeoutSweeper) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stop != nil
}

func (s *TimeoutSweeper) run(stop chan struct{}) {
	if _, err := s.Sweep(context.Background()); err != nil {
		slog.Error("timeout sweep failed", "error", err)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if _, err := s.Sweep(context.Background()); err != nil {
				slog.Error("timeout sweep failed", "error", err)
			}
		}
	}
}

// Sweep scans pending posts once and returns how many were flagged. The
// timeout_notified_at stamp is written only after a confirmed send, so a
// failed alert is retried on the next sweep and a delivered one is never
// repeated.
func (s *TimeoutSweeper) Sweep(ctx context.Context) (int, error) {
	posts, err := s.queue.ListPending(ctx)
	if err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	timedOut := 0

	for _, post := range posts {
		if post.NotifiedAt == nil {
			// Initial approval request never confirmed sent.
			continue
		}
		if post.TimeoutNotifiedAt != nil {
			// Already alerted once.
			continue
		}

		waited := now.Sub(*post.NotifiedAt)
		if waited < s.timeout {
			continue
		}

		if err := s.notifier.Send(ctx, service.FormatTimeoutAlert(post, waited), ""); err != nil {
			slog.Error("timeout alert send failed", "post_id", post.ID, "error", err)
			continue
		}
		if err := s.queue.MarkTimeoutNotified(ctx, post.ID, now); err != nil {
			slog.Error("timeout stamp failed", "post_id", post.ID, "error", err)
			continue
		}
		timedOut++
	}

	if timedOut > 0 {
		slog.Info("timeout sweep flagged posts", "count", timedOut)
	}
	return timedOut, nil
}
