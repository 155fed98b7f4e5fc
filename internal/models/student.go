package models

import "time"

// Student extends a User with role=student. One student record per user,
// placed in a class group and section for one academic year.
type Student struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	SchoolID        uint      `gorm:"index;not null" json:"school_id"`
	AcademicYearID  uint      `gorm:"index;not null" json:"academic_year_id"`
	ClassGroupID    uint      `gorm:"index:idx_student_class_section;not null" json:"class_group_id"`
	SectionID       uint      `gorm:"index:idx_student_class_section;not null" json:"section_id"`
	AdmissionNumber string    `gorm:"size:50;index" json:"admission_number"`
	RollNumber      string    `gorm:"size:20" json:"roll_number,omitempty"`
	AdmissionDate   time.Time `json:"admission_date"`
	IsActive        bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	User User `json:"user,omitempty"`
}
