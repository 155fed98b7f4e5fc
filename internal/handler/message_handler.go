package handler

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/scholaris-io/scholaris-api/internal/dto"
	"github.com/scholaris-io/scholaris-api/internal/service"
	"github.com/scholaris-io/scholaris-api/internal/utils"
)

// MessageHandler exposes direct messaging between users of one school.
type MessageHandler struct {
	service service.MessageService
	logger  zerolog.Logger
}

// NewMessageHandler constructs the handler.
func NewMessageHandler(service service.MessageService, logger zerolog.Logger) *MessageHandler {
	return &MessageHandler{
		service: service,
		logger:  logger.With().Str("component", "message_handler").Logger(),
	}
}

// Register wires the messaging routes.
func (h *MessageHandler) Register(router fiber.Router) {
	router.Get("/", h.inbox)
	router.Get("/sent", h.sent)
	router.Get("/unread-count", h.unreadCount)
	router.Post("/", h.send)
	router.Get("/:id", h.detail)
	router.Delete("/:id", h.delete)
	router.Patch("/:id/star", h.star)
}

func (h *MessageHandler) inbox(c *fiber.Ctx) error {
	return h.listBox(c, h.service.Inbox, "inbox retrieved")
}

func (h *MessageHandler) sent(c *fiber.Ctx) error {
	return h.listBox(c, h.service.Sent, "sent messages retrieved")
}

func (h *MessageHandler) listBox(c *fiber.Ctx, list func(ctx context.Context, scope service.Scope, query dto.MessageListQuery) ([]dto.MessageResponse, int64, int, error), message string) error {
	var query dto.MessageListQuery
	if err := c.QueryParser(&query); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	items, total, page, err := list(c.UserContext(), scopeFromContext(c), query)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list messages")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list messages")
	}

	return utils.SendPaged(c, message, items, utils.NewPageMeta(page, service.MessagePageSize, total))
}

func (h *MessageHandler) send(c *fiber.Ctx) error {
	var payload dto.MessageSendRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	message, err := h.service.Send(c.UserContext(), scopeFromContext(c), payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrMessageToSelf):
			return utils.SendError(c, fiber.StatusBadRequest, "cannot send a message to yourself")
		case errors.Is(err, service.ErrMessageEmptyBody):
			return utils.SendError(c, fiber.StatusBadRequest, "message body is empty after sanitization")
		case errors.Is(err, service.ErrRecipientNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "recipient not found")
		case errors.Is(err, service.ErrInvalidParentThread):
			return utils.SendError(c, fiber.StatusBadRequest, "parent message is not part of your conversations")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to send message")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to send message")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "message sent", message)
}

func (h *MessageHandler) detail(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid message id")
	}

	message, err := h.service.Detail(c.UserContext(), scopeFromContext(c), id)
	if err != nil {
		if errors.Is(err, service.ErrMessageNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "message not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load message")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load message")
	}

	return utils.SendSuccess(c, "message retrieved", message)
}

func (h *MessageHandler) delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid message id")
	}

	if err := h.service.Delete(c.UserContext(), scopeFromContext(c), id); err != nil {
		if errors.Is(err, service.ErrMessageNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "message not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to delete message")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete message")
	}

	return utils.SendSuccess(c, "message deleted", nil)
}

func (h *MessageHandler) star(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid message id")
	}

	starred := true
	switch strings.ToLower(strings.TrimSpace(c.Query("starred", "true"))) {
	case "false", "0":
		starred = false
	}

	message, err := h.service.ToggleStar(c.UserContext(), scopeFromContext(c), id, starred)
	if err != nil {
		if errors.Is(err, service.ErrMessageNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "message not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to update message star")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to update message star")
	}

	return utils.SendSuccess(c, "message updated", message)
}

func (h *MessageHandler) unreadCount(c *fiber.Ctx) error {
	count, err := h.service.UnreadCount(c.UserContext(), scopeFromContext(c))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to count unread messages")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to count unread messages")
	}

	return utils.SendSuccess(c, "unread count retrieved", fiber.Map{"unread": count})
}
