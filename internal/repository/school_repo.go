package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/scholaris-io/scholaris-api/internal/models"
)

// SchoolRepository exposes persistence helpers for tenant records and the
// class/section/academic-year hierarchy beneath them.
type SchoolRepository interface {
	FindByID(ctx context.Context, id uint) (models.School, error)
	FindBySubdomain(ctx context.Context, subdomain string) (models.School, error)
	ActiveAcademicYear(ctx context.Context, schoolID uint) (models.AcademicYear, error)
	EnsureAcademicYear(ctx context.Context, year *models.AcademicYear) (created bool, err error)
	ActivateAcademicYear(ctx context.Context, schoolID, yearID uint) error
	ClassGroups(ctx context.Context, schoolID uint, academicYearID uint) ([]models.ClassGroup, error)
	ClassGroupsByIDs(ctx context.Context, schoolID uint, ids []uint) ([]models.ClassGroup, error)
	EnsureClassGroup(ctx context.Context, group *models.ClassGroup) (created bool, err error)
	EnsureSection(ctx context.Context, section *models.Section) (created bool, err error)
	SectionsByClassGroup(ctx context.Context, classGroupID uint) ([]models.Section, error)
	Subjects(ctx context.Context, schoolID uint) ([]models.Subject, error)
	FindSubject(ctx context.Context, schoolID, id uint) (models.Subject, error)
}

type schoolRepository struct {
	db *gorm.DB
}

// NewSchoolRepository constructs the repository implementation.
func NewSchoolRepository(db *gorm.DB) SchoolRepository {
	return &schoolRepository{db: db}
}

func (r *schoolRepository) FindByID(ctx context.Context, id uint) (models.School, error) {
	var school models.School
	if err := r.db.WithContext(ctx).First(&school, id).Error; err != nil {
		return models.School{}, err
	}
	return school, nil
}

func (r *schoolRepository) FindBySubdomain(ctx context.Context, subdomain string) (models.School, error) {
	var school models.School
	if err := r.db.WithContext(ctx).
		Where("subdomain = ? AND is_active = ?", subdomain, true).
		First(&school).Error; err != nil {
		return models.School{}, err
	}
	return school, nil
}

func (r *schoolRepository) ActiveAcademicYear(ctx context.Context, schoolID uint) (models.AcademicYear, error) {
	var year models.AcademicYear
	if err := r.db.WithContext(ctx).
		Where("school_id = ? AND is_active = ?", schoolID, true).
		First(&year).Error; err != nil {
		return models.AcademicYear{}, err
	}
	return year, nil
}

func (r *schoolRepository) EnsureAcademicYear(ctx context.Context, year *models.AcademicYear) (bool, error) {
	var existing models.AcademicYear
	err := r.db.WithContext(ctx).
		Where("school_id = ? AND year = ?", year.SchoolID, year.Year).
		First(&existing).Error
	if err == nil {
		*year = existing
		return false, nil
	}
	if err != gorm.ErrRecordNotFound {
		return false, err
	}

	if err := r.db.WithContext(ctx).Create(year).Error; err != nil {
		return false, err
	}
	return true, nil
}

// ActivateAcademicYear marks one year active and deactivates every other
// year of the same school in a single transaction, preserving the
// one-active-year-per-school invariant.
func (r *schoolRepository) ActivateAcademicYear(ctx context.Context, schoolID, yearID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.AcademicYear{}).
			Where("school_id = ? AND id <> ?", schoolID, yearID).
			Update("is_active", false).Error; err != nil {
			return err
		}
		return tx.Model(&models.AcademicYear{}).
			Where("school_id = ? AND id = ?", schoolID, yearID).
			Update("is_active", true).Error
	})
}

func (r *schoolRepository) ClassGroups(ctx context.Context, schoolID uint, academicYearID uint) ([]models.ClassGroup, error) {
	query := r.db.WithContext(ctx).Where("school_id = ?", schoolID)
	if academicYearID != 0 {
		query = query.Where("academic_year_id = ?", academicYearID)
	}

	var groups []models.ClassGroup
	if err := query.Order("name").Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *schoolRepository) ClassGroupsByIDs(ctx context.Context, schoolID uint, ids []uint) ([]models.ClassGroup, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var groups []models.ClassGroup
	if err := r.db.WithContext(ctx).
		Where("school_id = ? AND id IN ?", schoolID, ids).
		Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *schoolRepository) EnsureClassGroup(ctx context.Context, group *models.ClassGroup) (bool, error) {
	var existing models.ClassGroup
	err := r.db.WithContext(ctx).
		Where("school_id = ? AND academic_year_id = ? AND name = ?", group.SchoolID, group.AcademicYearID, group.Name).
		First(&existing).Error
	if err == nil {
		*group = existing
		return false, nil
	}
	if err != gorm.ErrRecordNotFound {
		return false, err
	}

	if err := r.db.WithContext(ctx).Create(group).Error; err != nil {
		return false, err
	}
	return true, nil
}

func (r *schoolRepository) EnsureSection(ctx context.Context, section *models.Section) (bool, error) {
	var existing models.Section
	err := r.db.WithContext(ctx).
		Where("class_group_id = ? AND name = ?", section.ClassGroupID, section.Name).
		First(&existing).Error
	if err == nil {
		*section = existing
		return false, nil
	}
	if err != gorm.ErrRecordNotFound {
		return false, err
	}

	if err := r.db.WithContext(ctx).Create(section).Error; err != nil {
		return false, err
	}
	return true, nil
}

func (r *schoolRepository) SectionsByClassGroup(ctx context.Context, classGroupID uint) ([]models.Section, error) {
	var sections []models.Section
	if err := r.db.WithContext(ctx).
		Where("class_group_id = ?", classGroupID).
		Order("name").
		Find(&sections).Error; err != nil {
		return nil, err
	}
	return sections, nil
}

func (r *schoolRepository) Subjects(ctx context.Context, schoolID uint) ([]models.Subject, error) {
	var subjects []models.Subject
	if err := r.db.WithContext(ctx).
		Where("school_id = ? AND is_active = ?", schoolID, true).
		Order("name").
		Find(&subjects).Error; err != nil {
		return nil, err
	}
	return subjects, nil
}

func (r *schoolRepository) FindSubject(ctx context.Context, schoolID, id uint) (models.Subject, error) {
	var subject models.Subject
	if err := r.db.WithContext(ctx).
		Where("school_id = ? AND id = ?", schoolID, id).
		First(&subject).Error; err != nil {
		return models.Subject{}, err
	}
	return subject, nil
}
