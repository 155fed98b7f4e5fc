package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/scholaris-io/scholaris-api/internal/dto"
	"github.com/scholaris-io/scholaris-api/internal/models"
	"github.com/scholaris-io/scholaris-api/internal/repository"
)

// Fee service sentinels.
var (
	ErrFeeStructureNotFound = errors.New("fee structure not found")
	ErrOverpayment          = errors.New("payment exceeds the outstanding balance")
)

// FeeSummaryItem is one fee line in a student's balance sheet.
type FeeSummaryItem struct {
	Structure   dto.FeeStructureResponse `json:"structure"`
	TotalPaid   float64                  `json:"total_paid"`
	Outstanding float64                  `json:"outstanding"`
	PaidDisplay string                   `json:"paid_display"`
	DueDisplay  string                   `json:"due_display"`
}

// FeeService covers fee structures, payments and balances.
type FeeService interface {
	Structures(ctx context.Context, scope Scope) ([]dto.FeeStructureResponse, error)
	CreateStructure(ctx context.Context, scope Scope, payload dto.FeeStructureCreateRequest) (dto.FeeStructureResponse, error)
	RecordPayment(ctx context.Context, scope Scope, payload dto.FeePaymentCreateRequest) (dto.FeePaymentResponse, error)
	StudentSummary(ctx context.Context, scope Scope, studentID uint) ([]FeeSummaryItem, error)
	Payments(ctx context.Context, scope Scope, studentID uint) ([]dto.FeePaymentResponse, error)
}

type feeService struct {
	fees           repository.FeeRepository
	students       repository.StudentRepository
	currencySymbol string
	validator      *validator.Validate
	logger         zerolog.Logger
	now            func() time.Time
}

// NewFeeService constructs the fee service. currencySymbol is substituted
// into every monetary display string.
func NewFeeService(fees repository.FeeRepository, students repository.StudentRepository, currencySymbol string, validate *validator.Validate, logger zerolog.Logger) FeeService {
	if currencySymbol == "" {
		currencySymbol = "GH₵"
	}
	return &feeService{
		fees:           fees,
		students:       students,
		currencySymbol: currencySymbol,
		validator:      validate,
		logger:         logger.With().Str("component", "fee_service").Logger(),
		now:            time.Now,
	}
}

func (s *feeService) Structures(ctx context.Context, scope Scope) ([]dto.FeeStructureResponse, error) {
	structures, err := s.fees.Structures(ctx, scope.SchoolID, scope.AcademicYearID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.FeeStructureResponse, 0, len(structures))
	for _, structure := range structures {
		out = append(out, dto.NewFeeStructureResponse(structure, s.display(structure.Amount)))
	}
	return out, nil
}

func (s *feeService) CreateStructure(ctx context.Context, scope Scope, payload dto.FeeStructureCreateRequest) (dto.FeeStructureResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.FeeStructureResponse{}, err
	}

	frequency := payload.Frequency
	if frequency == "" {
		frequency = models.FrequencyTermly
	}

	structure := models.FeeStructure{
		SchoolID:       scope.SchoolID,
		AcademicYearID: scope.AcademicYearID,
		ClassGroupID:   payload.ClassGroupID,
		Name:           payload.Name,
		FeeType:        payload.FeeType,
		Amount:         payload.Amount,
		Frequency:      frequency,
		DueDate:        payload.DueDate,
		Description:    payload.Description,
		IsActive:       true,
	}
	if err := s.fees.CreateStructure(ctx, &structure); err != nil {
		return dto.FeeStructureResponse{}, err
	}
	s.logger.Info().Uint("fee_structure_id", structure.ID).Str("fee_type", structure.FeeType).Msg("fee structure created")
	return dto.NewFeeStructureResponse(structure, s.display(structure.Amount)), nil
}

// RecordPayment stores a completed payment and rejects amounts above the
// outstanding balance for that fee.
func (s *feeService) RecordPayment(ctx context.Context, scope Scope, payload dto.FeePaymentCreateRequest) (dto.FeePaymentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.FeePaymentResponse{}, err
	}

	student, err := s.students.FindByID(ctx, scope.SchoolID, payload.StudentID)
	if err != nil {
		return dto.FeePaymentResponse{}, ErrStudentNotFound
	}

	structure, err := s.fees.FindStructure(ctx, scope.SchoolID, payload.FeeStructureID)
	if err != nil {
		return dto.FeePaymentResponse{}, ErrFeeStructureNotFound
	}

	paid, err := s.fees.TotalPaid(ctx, student.ID, structure.ID)
	if err != nil {
		return dto.FeePaymentResponse{}, err
	}
	if paid+payload.AmountPaid > structure.Amount {
		return dto.FeePaymentResponse{}, ErrOverpayment
	}

	collectedBy := scope.UserID
	now := s.now()
	payment := models.FeePayment{
		SchoolID:       scope.SchoolID,
		StudentID:      student.ID,
		FeeStructureID: structure.ID,
		AmountPaid:     payload.AmountPaid,
		PaymentDate:    now,
		PaymentMethod:  payload.PaymentMethod,
		PaymentStatus:  models.PaymentStatusCompleted,
		ReceiptNumber:  fmt.Sprintf("RCP-%d-%d", scope.SchoolID, now.UnixNano()),
		CollectedByID:  &collectedBy,
	}
	if err := s.fees.CreatePayment(ctx, &payment); err != nil {
		return dto.FeePaymentResponse{}, err
	}
	payment.FeeStructure = structure

	s.logger.Info().
		Uint("student_id", student.ID).
		Uint("fee_structure_id", structure.ID).
		Str("receipt", payment.ReceiptNumber).
		Msg("fee payment recorded")
	return dto.NewFeePaymentResponse(payment, s.display(payment.AmountPaid)), nil
}

// StudentSummary lists every fee applying to the student's class with the
// amount paid and outstanding per fee.
func (s *feeService) StudentSummary(ctx context.Context, scope Scope, studentID uint) ([]FeeSummaryItem, error) {
	student, err := s.students.FindByID(ctx, scope.SchoolID, studentID)
	if err != nil {
		return nil, ErrStudentNotFound
	}

	structures, err := s.fees.StructuresForClassGroup(ctx, scope.SchoolID, scope.AcademicYearID, student.ClassGroupID)
	if err != nil {
		return nil, err
	}

	items := make([]FeeSummaryItem, 0, len(structures))
	for _, structure := range structures {
		paid, err := s.fees.TotalPaid(ctx, student.ID, structure.ID)
		if err != nil {
			return nil, err
		}
		outstanding := structure.Amount - paid
		if outstanding < 0 {
			outstanding = 0
		}
		items = append(items, FeeSummaryItem{
			Structure:   dto.NewFeeStructureResponse(structure, s.display(structure.Amount)),
			TotalPaid:   paid,
			Outstanding: outstanding,
			PaidDisplay: s.display(paid),
			DueDisplay:  s.display(outstanding),
		})
	}
	return items, nil
}

func (s *feeService) Payments(ctx context.Context, scope Scope, studentID uint) ([]dto.FeePaymentResponse, error) {
	student, err := s.students.FindByID(ctx, scope.SchoolID, studentID)
	if err != nil {
		return nil, ErrStudentNotFound
	}

	payments, err := s.fees.PaymentsByStudent(ctx, scope.SchoolID, student.ID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.FeePaymentResponse, 0, len(payments))
	for _, payment := range payments {
		out = append(out, dto.NewFeePaymentResponse(payment, s.display(payment.AmountPaid)))
	}
	return out, nil
}

func (s *feeService) display(amount float64) string {
	return fmt.Sprintf("%s%.2f", s.currencySymbol, amount)
}
