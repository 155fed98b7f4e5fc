package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/scholaris-io/scholaris-api/internal/service"
	"github.com/scholaris-io/scholaris-api/internal/utils"
)

// SchoolHandler serves the current tenant's profile and structure.
type SchoolHandler struct {
	service service.SchoolService
	logger  zerolog.Logger
}

// NewSchoolHandler constructs the handler.
func NewSchoolHandler(service service.SchoolService, logger zerolog.Logger) *SchoolHandler {
	return &SchoolHandler{
		service: service,
		logger:  logger.With().Str("component", "school_handler").Logger(),
	}
}

// Register wires the school routes.
func (h *SchoolHandler) Register(router fiber.Router) {
	router.Get("/", h.profile)
	router.Get("/classes", h.classGroups)
	router.Get("/subjects", h.subjects)
}

func (h *SchoolHandler) profile(c *fiber.Ctx) error {
	profile, err := h.service.Profile(c.UserContext(), scopeFromContext(c))
	if err != nil {
		if errors.Is(err, service.ErrSchoolNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "school not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load school profile")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load school profile")
	}

	return utils.SendSuccess(c, "school profile retrieved", profile)
}

func (h *SchoolHandler) classGroups(c *fiber.Ctx) error {
	groups, err := h.service.ClassGroups(c.UserContext(), scopeFromContext(c))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list class groups")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list class groups")
	}

	return utils.SendSuccess(c, "class groups retrieved", groups)
}

func (h *SchoolHandler) subjects(c *fiber.Ctx) error {
	subjects, err := h.service.Subjects(c.UserContext(), scopeFromContext(c))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list subjects")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list subjects")
	}

	return utils.SendSuccess(c, "subjects retrieved", subjects)
}
