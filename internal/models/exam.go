package models

import "time"

// Exam types.
const (
	ExamTypeUnitTest   = "unit_test"
	ExamTypeMidTerm    = "mid_term"
	ExamTypeFinal      = "final"
	ExamTypeQuarterly  = "quarterly"
	ExamTypeHalfYearly = "half_yearly"
	ExamTypeAnnual     = "annual"
	ExamTypeEntrance   = "entrance"
	ExamTypePlacement  = "placement"
)

// Exam is scheduled for one academic year and applies to a set of class
// groups. Invariant: EndDate >= StartDate, validated on write.
type Exam struct {
	ID                    uint       `gorm:"primaryKey" json:"id"`
	SchoolID              uint       `gorm:"index:idx_exam_school_year;not null" json:"school_id"`
	AcademicYearID        uint       `gorm:"index:idx_exam_school_year;not null" json:"academic_year_id"`
	Name                  string     `gorm:"size:200;not null" json:"name"`
	ExamType              string     `gorm:"size:20;not null" json:"exam_type"`
	Description           string     `gorm:"type:text" json:"description,omitempty"`
	StartDate             time.Time  `gorm:"index" json:"start_date"`
	EndDate               time.Time  `json:"end_date"`
	ResultDeclarationDate *time.Time `json:"result_declaration_date,omitempty"`
	IsResultPublished     bool       `gorm:"not null;default:false" json:"is_result_published"`
	IsActive              bool       `gorm:"not null;default:true" json:"is_active"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`

	ClassGroups []ClassGroup `gorm:"many2many:exam_class_groups" json:"class_groups,omitempty"`
}

// IsOngoing reports whether now falls inside the exam window.
func (e Exam) IsOngoing(now time.Time) bool {
	return !now.Before(e.StartDate) && !now.After(e.EndDate)
}

// ExamResult stores the marks for one (exam, student, subject) triple.
// MarksObtained is nil when the student was absent. Grade and IsPassed are
// derived by the grading engine on every save, never entered directly.
type ExamResult struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	ExamID        uint       `gorm:"uniqueIndex:idx_result_triple;not null" json:"exam_id"`
	StudentID     uint       `gorm:"uniqueIndex:idx_result_triple;index;not null" json:"student_id"`
	SubjectID     uint       `gorm:"uniqueIndex:idx_result_triple;not null" json:"subject_id"`
	MarksObtained *float64   `json:"marks_obtained,omitempty"`
	MaxMarks      uint       `gorm:"not null;default:100" json:"max_marks"`
	Grade         string     `gorm:"size:2" json:"grade,omitempty"`
	Percentage    float64    `json:"percentage"`
	IsPassed      bool       `gorm:"not null;default:false" json:"is_passed"`
	IsAbsent      bool       `gorm:"not null;default:false" json:"is_absent"`
	Remarks       string     `gorm:"type:text" json:"remarks,omitempty"`
	EnteredByID   *uint      `json:"entered_by_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	Student Student `json:"student,omitempty"`
	Subject Subject `json:"subject,omitempty"`
}
