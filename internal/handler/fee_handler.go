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

// FeeHandler exposes fee structures, payments and balances.
type FeeHandler struct {
	service service.FeeService
	logger  zerolog.Logger
}

// NewFeeHandler constructs the handler.
func NewFeeHandler(service service.FeeService, logger zerolog.Logger) *FeeHandler {
	return &FeeHandler{
		service: service,
		logger:  logger.With().Str("component", "fee_handler").Logger(),
	}
}

// Register wires the fee routes.
func (h *FeeHandler) Register(router fiber.Router) {
	manage := middleware.RequireAction(middleware.ActionManageFees)
	record := middleware.RequireAction(middleware.ActionRecordPayments)

	router.Get("/structures", h.structures)
	router.Post("/structures", manage, h.createStructure)
	router.Post("/payments", record, h.recordPayment)
	router.Get("/students/:id/summary", h.studentSummary)
	router.Get("/students/:id/payments", h.studentPayments)
}

func (h *FeeHandler) structures(c *fiber.Ctx) error {
	structures, err := h.service.Structures(c.UserContext(), scopeFromContext(c))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list fee structures")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list fee structures")
	}

	return utils.SendSuccess(c, "fee structures retrieved", structures)
}

func (h *FeeHandler) createStructure(c *fiber.Ctx) error {
	var payload dto.FeeStructureCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	structure, err := h.service.CreateStructure(c.UserContext(), scopeFromContext(c), payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to create fee structure")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to create fee structure")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "fee structure created", structure)
}

func (h *FeeHandler) recordPayment(c *fiber.Ctx) error {
	var payload dto.FeePaymentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	payment, err := h.service.RecordPayment(c.UserContext(), scopeFromContext(c), payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrStudentNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "student not found")
		case errors.Is(err, service.ErrFeeStructureNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "fee structure not found")
		case errors.Is(err, service.ErrOverpayment):
			return utils.SendError(c, fiber.StatusConflict, "payment exceeds the outstanding balance")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to record payment")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to record payment")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "payment recorded", payment)
}

func (h *FeeHandler) studentSummary(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid student id")
	}

	summary, err := h.service.StudentSummary(c.UserContext(), scopeFromContext(c), id)
	if err != nil {
		if errors.Is(err, service.ErrStudentNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "student not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to build fee summary")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to build fee summary")
	}

	return utils.SendSuccess(c, "fee summary retrieved", summary)
}

func (h *FeeHandler) studentPayments(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid student id")
	}

	payments, err := h.service.Payments(c.UserContext(), scopeFromContext(c), id)
	if err != nil {
		if errors.Is(err, service.ErrStudentNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "student not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list payments")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list payments")
	}

	return utils.SendSuccess(c, "payments retrieved", payments)
}
