package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/scholaris-io/scholaris-api/internal/models"
)

// ExamFilter narrows exam list queries.
type ExamFilter struct {
	AcademicYearID uint
	ExamType       string
	Search         string
	Page           int
	PageSize       int
}

// ResultScope selects exam results for statistics and marks entry.
type ResultScope struct {
	ExamID       uint
	SubjectID    uint
	ClassGroupID uint
	SectionID    uint
}

// ExamRepository handles persistence for exams and exam results.
type ExamRepository interface {
	List(ctx context.Context, schoolID uint, filter ExamFilter) ([]models.Exam, int64, error)
	FindByID(ctx context.Context, schoolID, id uint) (models.Exam, error)
	Create(ctx context.Context, exam *models.Exam, classGroups []models.ClassGroup) error
	Update(ctx context.Context, exam *models.Exam, classGroups []models.ClassGroup) error
	Delete(ctx context.Context, schoolID, id uint) error
	Results(ctx context.Context, scope ResultScope) ([]models.ExamResult, error)
	ResultsByStudent(ctx context.Context, examID, studentID uint) ([]models.ExamResult, error)
	SaveResults(ctx context.Context, results []models.ExamResult) error
}

type examRepository struct {
	db *gorm.DB
}

// NewExamRepository constructs a repository backed by GORM.
func NewExamRepository(db *gorm.DB) ExamRepository {
	return &examRepository{db: db}
}

func (r *examRepository) List(ctx context.Context, schoolID uint, filter ExamFilter) ([]models.Exam, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Exam{}).
		Where("school_id = ?", schoolID)

	if filter.AcademicYearID != 0 {
		query = query.Where("academic_year_id = ?", filter.AcademicYearID)
	}
	if filter.ExamType != "" {
		query = query.Where("exam_type = ?", filter.ExamType)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name LIKE ? OR description LIKE ?", pattern, pattern)
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

	var exams []models.Exam
	if err := query.Preload("ClassGroups").Order("start_date DESC").Find(&exams).Error; err != nil {
		return nil, 0, err
	}
	return exams, total, nil
}

func (r *examRepository) FindByID(ctx context.Context, schoolID, id uint) (models.Exam, error) {
	var exam models.Exam
	if err := r.db.WithContext(ctx).
		Preload("ClassGroups").
		Where("school_id = ? AND id = ?", schoolID, id).
		First(&exam).Error; err != nil {
		return models.Exam{}, err
	}
	return exam, nil
}

func (r *examRepository) Create(ctx context.Context, exam *models.Exam, classGroups []models.ClassGroup) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("ClassGroups").Create(exam).Error; err != nil {
			return err
		}
		return tx.Model(exam).Association("ClassGroups").Replace(classGroups)
	})
}

func (r *examRepository) Update(ctx context.Context, exam *models.Exam, classGroups []models.ClassGroup) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("ClassGroups").Save(exam).Error; err != nil {
			return err
		}
		if classGroups == nil {
			return nil
		}
		return tx.Model(exam).Association("ClassGroups").Replace(classGroups)
	})
}

func (r *examRepository) Delete(ctx context.Context, schoolID, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("school_id = ? AND id = ?", schoolID, id).Delete(&models.Exam{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("exam_id = ?", id).Delete(&models.ExamResult{}).Error
	})
}

func (r *examRepository) Results(ctx context.Context, scope ResultScope) ([]models.ExamResult, error) {
	query := r.db.WithContext(ctx).Model(&models.ExamResult{}).
		Preload("Student").Preload("Student.User").Preload("Subject").
		Where("exam_results.exam_id = ?", scope.ExamID)

	if scope.SubjectID != 0 {
		query = query.Where("exam_results.subject_id = ?", scope.SubjectID)
	}
	if scope.ClassGroupID != 0 || scope.SectionID != 0 {
		query = query.Joins("JOIN students ON students.id = exam_results.student_id")
		if scope.ClassGroupID != 0 {
			query = query.Where("students.class_group_id = ?", scope.ClassGroupID)
		}
		if scope.SectionID != 0 {
			query = query.Where("students.section_id = ?", scope.SectionID)
		}
	}

	var results []models.ExamResult
	if err := query.Order("exam_results.student_id, exam_results.subject_id").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *examRepository) ResultsByStudent(ctx context.Context, examID, studentID uint) ([]models.ExamResult, error) {
	var results []models.ExamResult
	if err := r.db.WithContext(ctx).
		Preload("Subject").
		Where("exam_id = ? AND student_id = ?", examID, studentID).
		Order("subject_id").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// SaveResults writes a batch of results for one marks-entry submission in a
// single transaction: either every row in the scope lands, or none do, so
// stored grades never drift from stored marks. Existing (exam, student,
// subject) rows are overwritten, which makes concurrent entry last-write-wins.
func (r *examRepository) SaveResults(ctx context.Context, results []models.ExamResult) error {
	if len(results) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range results {
			if err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "exam_id"}, {Name: "student_id"}, {Name: "subject_id"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"marks_obtained", "max_marks", "grade", "percentage",
					"is_passed", "is_absent", "remarks", "entered_by_id", "updated_at",
				}),
			}).Create(&results[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
