package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/scholaris-io/scholaris-api/internal/dto"
	"github.com/scholaris-io/scholaris-api/internal/grading"
	"github.com/scholaris-io/scholaris-api/internal/middleware"
	"github.com/scholaris-io/scholaris-api/internal/service"
	"github.com/scholaris-io/scholaris-api/internal/utils"
)

// ExamHandler exposes the exam lifecycle, marks entry and result reports.
type ExamHandler struct {
	service service.ExamService
	logger  zerolog.Logger
}

// NewExamHandler constructs the handler.
func NewExamHandler(service service.ExamService, logger zerolog.Logger) *ExamHandler {
	return &ExamHandler{
		service: service,
		logger:  logger.With().Str("component", "exam_handler").Logger(),
	}
}

// Register wires the exam routes. Lifecycle operations are admin only, marks
// entry is open to teachers, reports to staff, and a student's own result
// sheet to everyone.
func (h *ExamHandler) Register(router fiber.Router) {
	manage := middleware.RequireAction(middleware.ActionManageExams)
	marks := middleware.RequireAction(middleware.ActionEnterMarks)
	reports := middleware.RequireAction(middleware.ActionViewAllResults)

	router.Get("/", h.list)
	router.Post("/", manage, h.create)
	router.Get("/:id", h.get)
	router.Put("/:id", manage, h.update)
	router.Delete("/:id", manage, h.delete)
	router.Post("/:id/marks", marks, h.enterMarks)
	router.Get("/:id/my-results", h.studentResults)
	router.Get("/:id/statistics", reports, h.statistics)
	router.Get("/:id/report", reports, h.classReport)
}

func (h *ExamHandler) list(c *fiber.Ctx) error {
	var query dto.ExamListQuery
	if err := c.QueryParser(&query); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	items, total, page, err := h.service.List(c.UserContext(), scopeFromContext(c), query)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list exams")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list exams")
	}

	return utils.SendPaged(c, "exams retrieved", items, utils.NewPageMeta(page, service.ExamPageSize, total))
}

func (h *ExamHandler) get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid exam id")
	}

	exam, err := h.service.Get(c.UserContext(), scopeFromContext(c), id)
	if err != nil {
		if errors.Is(err, service.ErrExamNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "exam not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load exam")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load exam")
	}

	return utils.SendSuccess(c, "exam retrieved", exam)
}

func (h *ExamHandler) create(c *fiber.Ctx) error {
	var payload dto.ExamCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	exam, err := h.service.Create(c.UserContext(), scopeFromContext(c), payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrExamInvalidWindow):
			return utils.SendError(c, fiber.StatusBadRequest, "exam end date must not precede start date")
		case errors.Is(err, service.ErrExamClassGroups):
			return utils.SendError(c, fiber.StatusBadRequest, "one or more class groups do not belong to this school")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to create exam")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to create exam")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "exam created", exam)
}

func (h *ExamHandler) update(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid exam id")
	}

	var payload dto.ExamUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	exam, err := h.service.Update(c.UserContext(), scopeFromContext(c), id, payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrExamNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "exam not found")
		case errors.Is(err, service.ErrExamInvalidWindow):
			return utils.SendError(c, fiber.StatusBadRequest, "exam end date must not precede start date")
		case errors.Is(err, service.ErrExamClassGroups):
			return utils.SendError(c, fiber.StatusBadRequest, "one or more class groups do not belong to this school")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to update exam")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to update exam")
	}

	return utils.SendSuccess(c, "exam updated", exam)
}

func (h *ExamHandler) delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid exam id")
	}

	if err := h.service.Delete(c.UserContext(), scopeFromContext(c), id); err != nil {
		if errors.Is(err, service.ErrExamNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "exam not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to delete exam")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete exam")
	}

	return utils.SendSuccess(c, "exam deleted", nil)
}

func (h *ExamHandler) enterMarks(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid exam id")
	}

	var payload dto.MarksEntryRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	results, err := h.service.EnterMarks(c.UserContext(), scopeFromContext(c), id, payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrExamNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "exam not found")
		case errors.Is(err, service.ErrSubjectNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "subject not found")
		case errors.Is(err, service.ErrStudentNotInScope):
			return utils.SendError(c, fiber.StatusBadRequest, "one or more students are not in the selected class and section")
		case errors.Is(err, grading.ErrMarksOutOfRange):
			return utils.SendError(c, fiber.StatusBadRequest, "marks outside the subject's range")
		case errors.Is(err, grading.ErrInvalidScheme):
			return utils.SendError(c, fiber.StatusConflict, "subject has an invalid marking scheme")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to enter marks")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to enter marks")
	}

	return utils.SendSuccess(c, "marks recorded", results)
}

func (h *ExamHandler) studentResults(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid exam id")
	}

	report, err := h.service.StudentResults(c.UserContext(), scopeFromContext(c), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExamNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "exam not found")
		case errors.Is(err, service.ErrResultsNotPublished):
			return utils.SendError(c, fiber.StatusForbidden, "results are not published yet")
		case errors.Is(err, service.ErrStudentRecordMissing):
			return utils.SendError(c, fiber.StatusNotFound, "student record not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load student results")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load student results")
	}

	return utils.SendSuccess(c, "results retrieved", report)
}

func (h *ExamHandler) statistics(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid exam id")
	}

	stats, err := h.service.Statistics(c.UserContext(), scopeFromContext(c), id)
	if err != nil {
		if errors.Is(err, service.ErrExamNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "exam not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to aggregate exam statistics")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to aggregate exam statistics")
	}

	return utils.SendSuccess(c, "statistics retrieved", stats)
}

func (h *ExamHandler) classReport(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid exam id")
	}

	classGroupID, err := parseQueryInt(c, "class_group_id")
	if err != nil || classGroupID <= 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "class_group_id is required")
	}
	sectionID, err := parseQueryInt(c, "section_id")
	if err != nil || sectionID < 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid section_id")
	}

	report, err := h.service.ClassReport(c.UserContext(), scopeFromContext(c), id, uint(classGroupID), uint(sectionID))
	if err != nil {
		if errors.Is(err, service.ErrExamNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "exam not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to build class report")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to build class report")
	}

	return utils.SendSuccess(c, "class report retrieved", report)
}
