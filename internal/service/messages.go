package service

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/maheshrc27/postpilot/internal/models"
	"github.com/maheshrc27/postpilot/internal/transfer"
	"github.com/maheshrc27/postpilot/pkg/utils"
)

// previewLimit caps caption previews so the message stays under the
// transport's body size limit.
const previewLimit = 1200

// FormatApprovalRequest is the message sent when a new post enters the queue.
func FormatApprovalRequest(post *models.PostRecord) string {
	content := decodeContent(post)

	var b strings.Builder
	fmt.Fprintf(&b, "📝 New LinkedIn post #%d awaiting approval", post.ID)
	if content.Topic != "" {
		fmt.Fprintf(&b, "\nTopic: %s", content.Topic)
	}
	b.WriteString("\n\n")
	b.WriteString(utils.Truncate(content.Caption, previewLimit))
	if len(content.Hashtags) > 0 {
		b.WriteString("\n\n")
		b.WriteString(strings.Join(content.Hashtags, " "))
	}
	fmt.Fprintf(&b, "\n\nReply \"yes %d\" to approve or \"no %d\" to reject.", post.ID, post.ID)
	return b.String()
}

// FormatTimeoutAlert is the escalation message the sweeper sends when a
// pending post has waited past the response deadline.
func FormatTimeoutAlert(post *models.PostRecord, waited time.Duration) string {
	content := decodeContent(post)

	var b strings.Builder
	fmt.Fprintf(&b, "⏰ Post #%d has been waiting %s for a decision", post.ID, waited.Round(time.Minute))
	if content.Topic != "" {
		fmt.Fprintf(&b, " (%s)", content.Topic)
	}
	fmt.Fprintf(&b, ".\nIt is still pending. Reply \"yes %d\" or \"no %d\".", post.ID, post.ID)
	return b.String()
}

func FormatConfirmation(post *models.PostRecord) string {
	switch post.Status {
	case models.PostStatusApproved:
		return fmt.Sprintf("✅ Post #%d approved. It will be published shortly.", post.ID)
	case models.PostStatusRejected:
		return fmt.Sprintf("❌ Post #%d rejected.", post.ID)
	default:
		return fmt.Sprintf("Post #%d is now %s.", post.ID, post.Status)
	}
}

func FormatBatchConfirmation(status string, ids []int64, failed []int64) string {
	var b strings.Builder
	verb := "approved"
	if status == models.PostStatusRejected {
		verb = "rejected"
	}
	fmt.Fprintf(&b, "%d post(s) %s: %s", len(ids), verb, joinIDs(ids))
	if len(failed) > 0 {
		fmt.Fprintf(&b, "\n⚠️ Could not update: %s", joinIDs(failed))
	}
	return b.String()
}

func FormatPendingList(posts []*models.PostRecord) string {
	if len(posts) == 0 {
		return `No posts are pending approval. New posts will show up here automatically.`
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d post(s) pending approval:\n", len(posts))
	for _, post := range posts {
		content := decodeContent(post)
		title := content.Topic
		if title == "" {
			title = utils.Truncate(content.Caption, 60)
		}
		fmt.Fprintf(&b, "\n#%d - %s", post.ID, title)
	}
	b.WriteString("\n\nReply with a post ID to preview it.")
	return b.String()
}

func FormatStatus(pending int, uptime time.Duration) string {
	return fmt.Sprintf("🟢 Queue is running.\nPending posts: %d\nUptime: %s", pending, uptime.Round(time.Second))
}

// FormatPreview is the single-post view for a bare-ID command. Works for any
// status; the approve/reject hint only shows while the post is still pending.
func FormatPreview(post *models.PostRecord) string {
	content := decodeContent(post)

	var b strings.Builder
	fmt.Fprintf(&b, "Post #%d [%s]", post.ID, post.Status)
	if content.Topic != "" {
		fmt.Fprintf(&b, "\nTopic: %s", content.Topic)
	}
	b.WriteString("\n\n")
	b.WriteString(utils.Truncate(content.Caption, previewLimit))
	if len(content.Hashtags) > 0 {
		b.WriteString("\n\n")
		b.WriteString(strings.Join(content.Hashtags, " "))
	}
	if post.Status == models.PostStatusPending {
		fmt.Fprintf(&b, "\n\nReply \"yes %d\" to approve or \"no %d\" to reject.", post.ID, post.ID)
	}
	return b.String()
}

// decodeContent reads the opaque payload for display purposes only. The
// queue itself never depends on this succeeding.
func decodeContent(post *models.PostRecord) transfer.PostContent {
	var content transfer.PostContent
	if err := json.Unmarshal(post.Content, &content); err != nil {
		content.Caption = string(post.Content)
	}
	return content
}

func joinIDs(ids []int64) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("#%d", id))
	}
	return strings.Join(parts, ", ")
}
