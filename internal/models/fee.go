package models

import "time"

// Fee types and payment lifecycle values.
const (
	FeeTypeTuition       = "tuition"
	FeeTypeAdmission     = "admission"
	FeeTypeExamination   = "examination"
	FeeTypeLibrary       = "library"
	FeeTypeTransport     = "transport"
	FeeTypeMiscellaneous = "miscellaneous"

	FrequencyOneTime  = "one_time"
	FrequencyMonthly  = "monthly"
	FrequencyTermly   = "termly"
	FrequencyAnnually = "annually"

	PaymentMethodCash          = "cash"
	PaymentMethodCard          = "card"
	PaymentMethodBankTransfer  = "bank_transfer"
	PaymentMethodMobilePayment = "mobile_payment"

	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
	PaymentStatusRefunded  = "refunded"
)

// FeeStructure defines a fee applicable to a class group (or the whole
// school when ClassGroupID is nil) for one academic year.
type FeeStructure struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	SchoolID       uint      `gorm:"index:idx_fee_school_year;not null" json:"school_id"`
	AcademicYearID uint      `gorm:"index:idx_fee_school_year;not null" json:"academic_year_id"`
	ClassGroupID   *uint     `gorm:"index" json:"class_group_id,omitempty"`
	Name           string    `gorm:"size:100;not null" json:"name"`
	FeeType        string    `gorm:"size:20;not null" json:"fee_type"`
	Amount         float64   `gorm:"not null" json:"amount"`
	Frequency      string    `gorm:"size:20;not null;default:termly" json:"frequency"`
	DueDate        time.Time `json:"due_date"`
	Description    string    `gorm:"type:text" json:"description,omitempty"`
	IsActive       bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// FeePayment records a payment made against a fee structure.
type FeePayment struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	SchoolID       uint      `gorm:"index;not null" json:"school_id"`
	StudentID      uint      `gorm:"index;not null" json:"student_id"`
	FeeStructureID uint      `gorm:"index;not null" json:"fee_structure_id"`
	AmountPaid     float64   `gorm:"not null" json:"amount_paid"`
	PaymentDate    time.Time `json:"payment_date"`
	PaymentMethod  string    `gorm:"size:20;not null" json:"payment_method"`
	PaymentStatus  string    `gorm:"size:20;not null;default:completed" json:"payment_status"`
	ReceiptNumber  string    `gorm:"size:50;index" json:"receipt_number"`
	CollectedByID  *uint     `json:"collected_by_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	FeeStructure FeeStructure `json:"fee_structure,omitempty"`
}
