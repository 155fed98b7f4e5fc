package models

import (
	"time"

	"gorm.io/datatypes"
)

// School is the tenant boundary. Every other entity belongs to exactly one
// school, directly or through the academic year and class hierarchy.
type School struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	Name      string            `gorm:"size:200;not null" json:"name"`
	Subdomain string            `gorm:"size:50;uniqueIndex;not null" json:"subdomain"`
	Email     string            `gorm:"size:255" json:"email"`
	Phone     string            `gorm:"size:20" json:"phone"`
	Settings  datatypes.JSONMap `gorm:"type:json" json:"settings,omitempty"`
	IsActive  bool              `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// AcademicYear belongs to a school. At most one year per school is active at
// any time; activation deactivates the others inside one transaction.
type AcademicYear struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SchoolID  uint      `gorm:"not null;uniqueIndex:idx_school_year;index:idx_year_school_active" json:"school_id"`
	Year      string    `gorm:"size:20;not null;uniqueIndex:idx_school_year" json:"year"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	IsActive  bool      `gorm:"not null;default:false;index:idx_year_school_active" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ClassGroup is a grade level within a school year (e.g. "Class 4", "JHS 2").
type ClassGroup struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	SchoolID       uint      `gorm:"index;not null" json:"school_id"`
	AcademicYearID uint      `gorm:"index;not null" json:"academic_year_id"`
	Name           string    `gorm:"size:50;not null" json:"name"`
	Description    string    `gorm:"type:text" json:"description,omitempty"`
	ClassTeacherID *uint     `json:"class_teacher_id,omitempty"`
	IsActive       bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	Sections []Section `json:"sections,omitempty"`
}

// Section subdivides a class group. Capacity is a soft limit checked on
// enrolment, not a database constraint.
type Section struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ClassGroupID uint      `gorm:"index;not null" json:"class_group_id"`
	Name         string    `gorm:"size:20;not null" json:"name"`
	Capacity     uint      `gorm:"not null;default:30" json:"capacity"`
	RoomNumber   string    `gorm:"size:20" json:"room_number,omitempty"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Subject carries the marking scheme used by the grading engine.
// Invariant: PassingMarks <= TotalMarks, validated on write.
type Subject struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SchoolID     uint      `gorm:"index;not null" json:"school_id"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	Code         string    `gorm:"size:20;index;not null" json:"code"`
	Description  string    `gorm:"type:text" json:"description,omitempty"`
	TotalMarks   uint      `gorm:"not null;default:100" json:"total_marks"`
	PassingMarks uint      `gorm:"not null;default:40" json:"passing_marks"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
