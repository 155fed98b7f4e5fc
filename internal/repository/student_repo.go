package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/scholaris-io/scholaris-api/internal/models"
)

// StudentFilter narrows student list queries.
type StudentFilter struct {
	ClassGroupID uint
	SectionID    uint
	Search       string
	Page         int
	PageSize     int
}

// StudentRepository handles persistence for student records.
type StudentRepository interface {
	FindByID(ctx context.Context, schoolID, id uint) (models.Student, error)
	FindByUserID(ctx context.Context, userID uint) (models.Student, error)
	List(ctx context.Context, schoolID uint, filter StudentFilter) ([]models.Student, int64, error)
	ListByClassSection(ctx context.Context, schoolID, classGroupID, sectionID uint) ([]models.Student, error)
	ListByClassGroups(ctx context.Context, schoolID uint, classGroupIDs []uint) ([]models.Student, error)
	CountBySection(ctx context.Context, sectionID uint) (int64, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
}

type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository constructs a repository backed by GORM.
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) FindByID(ctx context.Context, schoolID, id uint) (models.Student, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("school_id = ? AND id = ?", schoolID, id).
		First(&student).Error; err != nil {
		return models.Student{}, err
	}
	return student, nil
}

func (r *studentRepository) FindByUserID(ctx context.Context, userID uint) (models.Student, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&student).Error; err != nil {
		return models.Student{}, err
	}
	return student, nil
}

func (r *studentRepository) List(ctx context.Context, schoolID uint, filter StudentFilter) ([]models.Student, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Student{}).
		Where("students.school_id = ? AND students.is_active = ?", schoolID, true)

	if filter.ClassGroupID != 0 {
		query = query.Where("students.class_group_id = ?", filter.ClassGroupID)
	}
	if filter.SectionID != 0 {
		query = query.Where("students.section_id = ?", filter.SectionID)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Joins("JOIN users ON users.id = students.user_id").
			Where("users.first_name LIKE ? OR users.last_name LIKE ? OR students.admission_number LIKE ?", pattern, pattern, pattern)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var students []models.Student
	if err := query.Preload("User").Order("students.admission_number").Find(&students).Error; err != nil {
		return nil, 0, err
	}
	return students, total, nil
}

func (r *studentRepository) ListByClassSection(ctx context.Context, schoolID, classGroupID, sectionID uint) ([]models.Student, error) {
	var students []models.Student
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("school_id = ? AND class_group_id = ? AND section_id = ? AND is_active = ?", schoolID, classGroupID, sectionID, true).
		Order("admission_number").
		Find(&students).Error; err != nil {
		return nil, err
	}
	return students, nil
}

func (r *studentRepository) ListByClassGroups(ctx context.Context, schoolID uint, classGroupIDs []uint) ([]models.Student, error) {
	if len(classGroupIDs) == 0 {
		return nil, nil
	}

	var students []models.Student
	if err := r.db.WithContext(ctx).
		Where("school_id = ? AND class_group_id IN ? AND is_active = ?", schoolID, classGroupIDs, true).
		Find(&students).Error; err != nil {
		return nil, err
	}
	return students, nil
}

func (r *studentRepository) CountBySection(ctx context.Context, sectionID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Student{}).
		Where("section_id = ? AND is_active = ?", sectionID, true).
		Count(&count).Error
	return count, err
}

func (r *studentRepository) Create(ctx context.Context, student *models.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

func (r *studentRepository) Update(ctx context.Context, student *models.Student) error {
	return r.db.WithContext(ctx).Save(student).Error
}
