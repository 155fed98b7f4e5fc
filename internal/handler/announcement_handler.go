package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/scholaris-io/scholaris-api/internal/dto"
	"github.com/scholaris-io/scholaris-api/internal/middleware"
	"github.com/scholaris-io/scholaris-api/internal/service"
	"github.com/scholaris-io/scholaris-api/internal/utils"
)

// AnnouncementHandler exposes the announcement feed and its management.
type AnnouncementHandler struct {
	service service.AnnouncementService
	logger  zerolog.Logger
}

// NewAnnouncementHandler constructs the handler.
func NewAnnouncementHandler(service service.AnnouncementService, logger zerolog.Logger) *AnnouncementHandler {
	return &AnnouncementHandler{
		service: service,
		logger:  logger.With().Str("component", "announcement_handler").Logger(),
	}
}

// Register wires the announcement routes. Reads are open to every role; the
// mutating routes are restricted to staff.
func (h *AnnouncementHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
	router.Get("/:id", h.get)

	manage := middleware.RequireAction(middleware.ActionManageAnnouncements)
	router.Post("/", manage, h.create)
	router.Put("/:id", manage, h.update)
	router.Delete("/:id", manage, h.delete)
}

func (h *AnnouncementHandler) list(c *fiber.Ctx) error {
	var query dto.AnnouncementListQuery
	if err := c.QueryParser(&query); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	items, total, page, err := h.service.ListVisible(c.UserContext(), scopeFromContext(c), query)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list announcements")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list announcements")
	}

	return utils.SendPaged(c, "announcements retrieved", items, utils.NewPageMeta(page, service.AnnouncementPageSize, total))
}

func (h *AnnouncementHandler) get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid announcement id")
	}

	announcement, err := h.service.Get(c.UserContext(), scopeFromContext(c), id)
	if err != nil {
		if errors.Is(err, service.ErrAnnouncementNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "announcement not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load announcement")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load announcement")
	}

	return utils.SendSuccess(c, "announcement retrieved", announcement)
}

func (h *AnnouncementHandler) create(c *fiber.Ctx) error {
	var payload dto.AnnouncementCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	announcement, err := h.service.Create(c.UserContext(), scopeFromContext(c), payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrAnnouncementEmptyBody):
			return utils.SendError(c, fiber.StatusBadRequest, "announcement body is empty after sanitization")
		case errors.Is(err, service.ErrAnnouncementClassGroups):
			return utils.SendError(c, fiber.StatusBadRequest, "one or more class groups do not belong to this school")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to create announcement")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to create announcement")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "announcement created", announcement)
}

func (h *AnnouncementHandler) update(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid announcement id")
	}

	var payload dto.AnnouncementUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	announcement, err := h.service.Update(c.UserContext(), scopeFromContext(c), id, payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrAnnouncementNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "announcement not found")
		case errors.Is(err, service.ErrAnnouncementEmptyBody):
			return utils.SendError(c, fiber.StatusBadRequest, "announcement body is empty after sanitization")
		case errors.Is(err, service.ErrAnnouncementClassGroups):
			return utils.SendError(c, fiber.StatusBadRequest, "one or more class groups do not belong to this school")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to update announcement")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to update announcement")
	}

	return utils.SendSuccess(c, "announcement updated", announcement)
}

func (h *AnnouncementHandler) delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid announcement id")
	}

	if err := h.service.Delete(c.UserContext(), scopeFromContext(c), id); err != nil {
		if errors.Is(err, service.ErrAnnouncementNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "announcement not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to delete announcement")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete announcement")
	}

	return utils.SendSuccess(c, "announcement deleted", nil)
}
