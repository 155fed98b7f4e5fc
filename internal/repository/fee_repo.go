package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/scholaris-io/scholaris-api/internal/models"
)

// FeeRepository handles persistence for fee structures and payments.
type FeeRepository interface {
	Structures(ctx context.Context, schoolID, academicYearID uint) ([]models.FeeStructure, error)
	StructuresForClassGroup(ctx context.Context, schoolID, academicYearID uint, classGroupID uint) ([]models.FeeStructure, error)
	FindStructure(ctx context.Context, schoolID, id uint) (models.FeeStructure, error)
	CreateStructure(ctx context.Context, structure *models.FeeStructure) error
	UpdateStructure(ctx context.Context, structure *models.FeeStructure) error
	CreatePayment(ctx context.Context, payment *models.FeePayment) error
	PaymentsByStudent(ctx context.Context, schoolID, studentID uint) ([]models.FeePayment, error)
	TotalPaid(ctx context.Context, studentID, feeStructureID uint) (float64, error)
}

type feeRepository struct {
	db *gorm.DB
}

// NewFeeRepository constructs a repository backed by GORM.
func NewFeeRepository(db *gorm.DB) FeeRepository {
	return &feeRepository{db: db}
}

func (r *feeRepository) Structures(ctx context.Context, schoolID, academicYearID uint) ([]models.FeeStructure, error) {
	query := r.db.WithContext(ctx).
		Where("school_id = ? AND is_active = ?", schoolID, true)
	if academicYearID != 0 {
		query = query.Where("academic_year_id = ?", academicYearID)
	}

	var structures []models.FeeStructure
	if err := query.Order("due_date").Find(&structures).Error; err != nil {
		return nil, err
	}
	return structures, nil
}

// StructuresForClassGroup returns fees applying to a class group: those bound
// to the group plus school-wide ones (nil class_group_id).
func (r *feeRepository) StructuresForClassGroup(ctx context.Context, schoolID, academicYearID uint, classGroupID uint) ([]models.FeeStructure, error) {
	var structures []models.FeeStructure
	if err := r.db.WithContext(ctx).
		Where("school_id = ? AND academic_year_id = ? AND is_active = ?", schoolID, academicYearID, true).
		Where("class_group_id IS NULL OR class_group_id = ?", classGroupID).
		Order("due_date").
		Find(&structures).Error; err != nil {
		return nil, err
	}
	return structures, nil
}

func (r *feeRepository) FindStructure(ctx context.Context, schoolID, id uint) (models.FeeStructure, error) {
	var structure models.FeeStructure
	if err := r.db.WithContext(ctx).
		Where("school_id = ? AND id = ?", schoolID, id).
		First(&structure).Error; err != nil {
		return models.FeeStructure{}, err
	}
	return structure, nil
}

func (r *feeRepository) CreateStructure(ctx context.Context, structure *models.FeeStructure) error {
	return r.db.WithContext(ctx).Create(structure).Error
}

func (r *feeRepository) UpdateStructure(ctx context.Context, structure *models.FeeStructure) error {
	return r.db.WithContext(ctx).Save(structure).Error
}

func (r *feeRepository) CreatePayment(ctx context.Context, payment *models.FeePayment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *feeRepository) PaymentsByStudent(ctx context.Context, schoolID, studentID uint) ([]models.FeePayment, error) {
	var payments []models.FeePayment
	if err := r.db.WithContext(ctx).
		Preload("FeeStructure").
		Where("school_id = ? AND student_id = ?", schoolID, studentID).
		Order("payment_date DESC").
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *feeRepository) TotalPaid(ctx context.Context, studentID, feeStructureID uint) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).Model(&models.FeePayment{}).
		Where("student_id = ? AND fee_structure_id = ? AND payment_status = ?", studentID, feeStructureID, models.PaymentStatusCompleted).
		Select("COALESCE(SUM(amount_paid), 0)").
		Scan(&total).Error
	return total, err
}
