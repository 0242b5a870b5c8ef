package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/maheshrc27/postpilot/internal/service"
	"github.com/maheshrc27/postpilot/internal/transfer"
)

// PostHandler is the internal API the content pipeline calls to enqueue
// generated posts, and the operator's scripts use to inspect the queue.
type PostHandler struct {
	queue service.ApprovalService
	media *service.MediaService
}

func NewPostHandler(queue service.ApprovalService, media *service.MediaService) *PostHandler {
	return &PostHandler{queue: queue, media: media}
}

func (h *PostHandler) CreatePost(c *fiber.Ctx) error {
	var pc transfer.PostCreation
	if err := c.BodyParser(&pc); err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse json",
		})
	}

	if strings.TrimSpace(pc.Caption) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "caption cannot be empty",
		})
	}

	imagePath := pc.ImagePath
	if imagePath != "" && !strings.HasPrefix(imagePath, "http") && h.media.Enabled() {
		url, err := h.media.UploadImage(c.Context(), imagePath)
		if err != nil {
			slog.Error("image upload failed, queueing without media", "path", imagePath, "error", err)
		} else {
			imagePath = url
		}
	}

	content, err := json.Marshal(transfer.PostContent{
		Caption:  pc.Caption,
		Topic:    pc.Topic,
		Hashtags: pc.Hashtags,
		Template: pc.Template,
		Theme:    pc.Theme,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	notify := true
	if pc.Notify != nil {
		notify = *pc.Notify
	}

	post, err := h.queue.Enqueue(c.Context(), content, imagePath, notify)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(post)
}

func (h *PostHandler) ListPosts(c *fiber.Ctx) error {
	postID := c.QueryInt("id", 0)

	if postID != 0 {
		post, err := h.queue.Get(c.Context(), int64(postID))
		if errors.Is(err, service.ErrPostNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Post not found",
			})
		}
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Unable to get post",
			})
		}
		return c.Status(fiber.StatusOK).JSON(post)
	}

	posts, err := h.queue.ListPending(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to list posts",
		})
	}

	return c.Status(fiber.StatusOK).JSON(posts)
}

func (h *PostHandler) RemovePost(c *fiber.Ctx) error {
	postID := c.QueryInt("id", 0)
	if postID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "id is required",
		})
	}

	err := h.queue.Remove(c.Context(), int64(postID))
	if errors.Is(err, service.ErrPostNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Post not found",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to remove post",
		})
	}

	return c.SendStatus(fiber.StatusOK)
}
