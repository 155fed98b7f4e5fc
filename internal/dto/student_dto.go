package dto

import (
	"time"

	"github.com/scholaris-io/scholaris-api/internal/models"
)

// StudentCreateRequest enrols a new student together with their account.
type StudentCreateRequest struct {
	Username      string `json:"username" validate:"required,min=3,max=150"`
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required,min=6,max=128"`
	FirstName     string `json:"first_name" validate:"required,max=150"`
	LastName      string `json:"last_name" validate:"required,max=150"`
	Phone         string `json:"phone" validate:"omitempty,max=20"`
	ClassGroupID  uint   `json:"class_group_id" validate:"required"`
	SectionID     uint   `json:"section_id" validate:"required"`
	RollNumber    string `json:"roll_number" validate:"omitempty,max=20"`
	AdmissionDate string `json:"admission_date" validate:"omitempty,datetime=2006-01-02"`
}

// StudentUpdateRequest moves a student or edits their record.
type StudentUpdateRequest struct {
	ClassGroupID *uint   `json:"class_group_id" validate:"omitempty"`
	SectionID    *uint   `json:"section_id" validate:"omitempty"`
	RollNumber   *string `json:"roll_number" validate:"omitempty,max=20"`
	IsActive     *bool   `json:"is_active"`
}

// StudentListQuery filters the student roster.
type StudentListQuery struct {
	ClassGroupID uint   `query:"class_group_id"`
	SectionID    uint   `query:"section_id"`
	Search       string `query:"search" validate:"omitempty,max=100"`
	Page         int    `query:"page" validate:"omitempty,min=1"`
}

// StudentResponse is the serialized representation of a student.
type StudentResponse struct {
	ID              uint      `json:"id"`
	UserID          uint      `json:"user_id"`
	FullName        string    `json:"full_name"`
	Email           string    `json:"email"`
	AdmissionNumber string    `json:"admission_number"`
	RollNumber      string    `json:"roll_number,omitempty"`
	ClassGroupID    uint      `json:"class_group_id"`
	SectionID       uint      `json:"section_id"`
	AdmissionDate   time.Time `json:"admission_date"`
	IsActive        bool      `json:"is_active"`
}

// NewStudentResponse converts a model into a DTO. The User association must
// be preloaded for the name and email fields.
func NewStudentResponse(student models.Student) StudentResponse {
	return StudentResponse{
		ID:              student.ID,
		UserID:          student.UserID,
		FullName:        student.User.FullName(),
		Email:           student.User.Email,
		AdmissionNumber: student.AdmissionNumber,
		RollNumber:      student.RollNumber,
		ClassGroupID:    student.ClassGroupID,
		SectionID:       student.SectionID,
		AdmissionDate:   student.AdmissionDate,
		IsActive:        student.IsActive,
	}
}

// NewStudentResponseSlice converts a slice of models into DTOs.
func NewStudentResponseSlice(students []models.Student) []StudentResponse {
	out := make([]StudentResponse, 0, len(students))
	for _, student := range students {
		out = append(out, NewStudentResponse(student))
	}
	return out
}
