package dto

import (
	"time"

	"github.com/scholaris-io/scholaris-api/internal/models"
)

// FeeStructureCreateRequest defines a fee for a year and optional class group.
type FeeStructureCreateRequest struct {
	Name         string    `json:"name" validate:"required,min=3,max=100"`
	FeeType      string    `json:"fee_type" validate:"required,oneof=tuition admission examination library transport miscellaneous"`
	Amount       float64   `json:"amount" validate:"required,gt=0"`
	Frequency    string    `json:"frequency" validate:"omitempty,oneof=one_time monthly termly annually"`
	DueDate      time.Time `json:"due_date" validate:"required"`
	ClassGroupID *uint     `json:"class_group_id"`
	Description  string    `json:"description" validate:"omitempty,max=2000"`
}

// FeePaymentCreateRequest records a payment against a fee structure.
type FeePaymentCreateRequest struct {
	StudentID      uint    `json:"student_id" validate:"required"`
	FeeStructureID uint    `json:"fee_structure_id" validate:"required"`
	AmountPaid     float64 `json:"amount_paid" validate:"required,gt=0"`
	PaymentMethod  string  `json:"payment_method" validate:"required,oneof=cash card bank_transfer mobile_payment"`
}

// FeeStructureResponse is the serialized representation of a fee structure.
type FeeStructureResponse struct {
	ID           uint      `json:"id"`
	Name         string    `json:"name"`
	FeeType      string    `json:"fee_type"`
	Amount       float64   `json:"amount"`
	Display      string    `json:"display"`
	Frequency    string    `json:"frequency"`
	DueDate      time.Time `json:"due_date"`
	ClassGroupID *uint     `json:"class_group_id,omitempty"`
	Description  string    `json:"description,omitempty"`
}

// NewFeeStructureResponse converts a model into a DTO. Display is the amount
// rendered with the school's currency symbol.
func NewFeeStructureResponse(structure models.FeeStructure, display string) FeeStructureResponse {
	return FeeStructureResponse{
		ID:           structure.ID,
		Name:         structure.Name,
		FeeType:      structure.FeeType,
		Amount:       structure.Amount,
		Display:      display,
		Frequency:    structure.Frequency,
		DueDate:      structure.DueDate,
		ClassGroupID: structure.ClassGroupID,
		Description:  structure.Description,
	}
}

// FeePaymentResponse is the serialized representation of a fee payment.
type FeePaymentResponse struct {
	ID             uint      `json:"id"`
	StudentID      uint      `json:"student_id"`
	FeeStructureID uint      `json:"fee_structure_id"`
	FeeName        string    `json:"fee_name,omitempty"`
	AmountPaid     float64   `json:"amount_paid"`
	Display        string    `json:"display"`
	PaymentDate    time.Time `json:"payment_date"`
	PaymentMethod  string    `json:"payment_method"`
	PaymentStatus  string    `json:"payment_status"`
	ReceiptNumber  string    `json:"receipt_number,omitempty"`
}

// NewFeePaymentResponse converts a model into a DTO.
func NewFeePaymentResponse(payment models.FeePayment, display string) FeePaymentResponse {
	response := FeePaymentResponse{
		ID:             payment.ID,
		StudentID:      payment.StudentID,
		FeeStructureID: payment.FeeStructureID,
		AmountPaid:     payment.AmountPaid,
		Display:        display,
		PaymentDate:    payment.PaymentDate,
		PaymentMethod:  payment.PaymentMethod,
		PaymentStatus:  payment.PaymentStatus,
		ReceiptNumber:  payment.ReceiptNumber,
	}
	if payment.FeeStructure.ID != 0 {
		response.FeeName = payment.FeeStructure.Name
	}
	return response
}
