package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/maheshrc27/postpilot/internal/commands"
	"github.com/maheshrc27/postpilot/internal/models"
)

// CommandService routes parsed operator commands to the approval queue and
// replies over WhatsApp. Every path that a human command can reach ends in a
// reply; silent failure is treated as a defect.
type CommandService interface {
	HandleMessage(ctx context.Context, from, body string) error
}

type commandService struct {
	queue     ApprovalService
	notifier  Notifier
	startedAt time.Time
}

func NewCommandService(queue ApprovalService, notifier Notifier) CommandService {
	return &commandService{
		queue:     queue,
		notifier:  notifier,
		startedAt: time.Now(),
	}
}

func (s *commandService) HandleMessage(ctx context.Context, from, body string) error {
	slog.Info("inbound command", "from", from, "body", body)

	cmd, err := commands.Parse(body)
	if err != nil {
		// The parser's error text is the reply.
		return s.reply(ctx, err.Error())
	}

	switch cmd.Kind {
	case commands.KindApprove:
		return s.decide(ctx, cmd.ID, models.PostStatusApproved)
	case commands.KindReject:
		return s.decide(ctx, cmd.ID, models.PostStatusRejected)
	case commands.KindApproveAll:
		return s.decideAll(ctx, models.PostStatusApproved)
	case commands.KindRejectAll:
		return s.decideAll(ctx, models.PostStatusRejected)
	case commands.KindList:
		return s.list(ctx)
	case commands.KindStatus:
		return s.status(ctx)
	case commands.KindView:
		return s.view(ctx, cmd.ID)
	default:
		return s.reply(ctx, fmt.Sprintf("Unsupported command %q.", cmd.Kind))
	}
}

// decide transitions one pending post. The pending-only guard lives here,
// not in the queue: a second "yes 4" must come back as "already approved"
// without touching the record again.
func (s *commandService) decide(ctx context.Context, id int64, status string) error {
	post, err := s.queue.Get(ctx, id)
	if errors.Is(err, ErrPostNotFound) {
		return s.reply(ctx, fmt.Sprintf("Post #%d was not found. Reply \"list\" to see pending posts.", id))
	}
	if err != nil {
		return s.replyError(ctx, err)
	}

	if post.Status != models.PostStatusPending {
		return s.reply(ctx, fmt.Sprintf("Post #%d is already %s.", id, post.Status))
	}

	updated, err := s.queue.UpdateStatus(ctx, id, status)
	if err != nil {
		return s.replyError(ctx, err)
	}
	return s.reply(ctx, FormatConfirmation(updated))
}

// decideAll operates on the pending snapshot taken at invocation time and
// sends one aggregate confirmation. Transitions apply sequentially; a
// mid-batch failure is reported per record, not rolled back.
func (s *commandService) decideAll(ctx context.Context, status string) error {
	posts, err := s.queue.ListPending(ctx)
	if err != nil {
		return s.replyError(ctx, err)
	}
	if len(posts) == 0 {
		return s.reply(ctx, "No posts are pending approval, nothing to do.")
	}

	var done, failed []int64
	for _, post := range posts {
		if _, err := s.queue.UpdateStatus(ctx, post.ID, status); err != nil {
			slog.Error("batch status update failed", "post_id", post.ID, "error", err)
			failed = append(failed, post.ID)
			continue
		}
		done = append(done, post.ID)
	}

	return s.reply(ctx, FormatBatchConfirmation(status, done, failed))
}

func (s *commandService) list(ctx context.Context) error {
	posts, err := s.queue.ListPending(ctx)
	if err != nil {
		return s.replyError(ctx, err)
	}
	return s.reply(ctx, FormatPendingList(posts))
}

func (s *commandService) status(ctx context.Context) error {
	posts, err := s.queue.ListPending(ctx)
	if err != nil {
		return s.replyError(ctx, err)
	}
	return s.reply(ctx, FormatStatus(len(posts), time.Since(s.startedAt)))
}

func (s *commandService) view(ctx context.Context, id int64) error {
	post, err := s.queue.Get(ctx, id)
	if errors.Is(err, ErrPostNotFound) {
		return s.reply(ctx, fmt.Sprintf("Post #%d was not found. Reply \"list\" to see pending posts.", id))
	}
	if err != nil {
		return s.replyError(ctx, err)
	}
	return s.replyWithMedia(ctx, FormatPreview(post), mediaURL(post))
}

func (s *commandService) reply(ctx context.Context, body string) error {
	return s.replyWithMedia(ctx, body, "")
}

func (s *commandService) replyWithMedia(ctx context.Context, body, media string) error {
	if err := s.notifier.Send(ctx, body, media); err != nil {
		return fmt.Errorf("error sending reply: %w", err)
	}
	return nil
}

func (s *commandService) replyError(ctx context.Context, cause error) error {
	slog.Error("command failed", "error", cause)
	if err := s.reply(ctx, "Something went wrong handling that command. Please try again."); err != nil {
		return err
	}
	return cause
}
