package dto

import (
	"time"

	"github.com/scholaris-io/scholaris-api/internal/models"
)

// SchoolResponse is the serialized representation of the current tenant.
type SchoolResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Subdomain string `json:"subdomain"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// NewSchoolResponse converts a model into a DTO.
func NewSchoolResponse(school models.School) SchoolResponse {
	return SchoolResponse{
		ID:        school.ID,
		Name:      school.Name,
		Subdomain: school.Subdomain,
		Email:     school.Email,
		Phone:     school.Phone,
	}
}

// SchoolProfileResponse bundles the tenant profile served to authenticated
// members of a school.
type SchoolProfileResponse struct {
	School       SchoolResponse       `json:"school"`
	AcademicYear AcademicYearResponse `json:"academic_year"`
	ClassGroups  []ClassGroupResponse `json:"class_groups"`
	Subjects     []SubjectResponse    `json:"subjects"`
}

// AcademicYearResponse describes one academic year.
type AcademicYearResponse struct {
	ID        uint      `json:"id"`
	Year      string    `json:"year"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	IsActive  bool      `json:"is_active"`
}

// NewAcademicYearResponse converts a model into a DTO.
func NewAcademicYearResponse(year models.AcademicYear) AcademicYearResponse {
	return AcademicYearResponse{
		ID:        year.ID,
		Year:      year.Year,
		StartDate: year.StartDate,
		EndDate:   year.EndDate,
		IsActive:  year.IsActive,
	}
}

// ClassGroupResponse describes a class group with its sections when preloaded.
type ClassGroupResponse struct {
	ID       uint              `json:"id"`
	Name     string            `json:"name"`
	Sections []SectionResponse `json:"sections,omitempty"`
}

// SectionResponse describes a section of a class group.
type SectionResponse struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Capacity uint   `json:"capacity"`
}

// NewClassGroupResponse converts a model into a DTO.
func NewClassGroupResponse(group models.ClassGroup) ClassGroupResponse {
	response := ClassGroupResponse{ID: group.ID, Name: group.Name}
	for _, section := range group.Sections {
		response.Sections = append(response.Sections, SectionResponse{ID: section.ID, Name: section.Name, Capacity: section.Capacity})
	}
	return response
}

// NewClassGroupResponseSlice converts a slice of models into DTOs.
func NewClassGroupResponseSlice(groups []models.ClassGroup) []ClassGroupResponse {
	out := make([]ClassGroupResponse, 0, len(groups))
	for _, group := range groups {
		out = append(out, NewClassGroupResponse(group))
	}
	return out
}

// SubjectResponse describes a subject and its marking scheme.
type SubjectResponse struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	Code         string `json:"code"`
	TotalMarks   uint   `json:"total_marks"`
	PassingMarks uint   `json:"passing_marks"`
}

// NewSubjectResponse converts a model into a DTO.
func NewSubjectResponse(subject models.Subject) SubjectResponse {
	return SubjectResponse{
		ID:           subject.ID,
		Name:         subject.Name,
		Code:         subject.Code,
		TotalMarks:   subject.TotalMarks,
		PassingMarks: subject.PassingMarks,
	}
}

// NewSubjectResponseSlice converts a slice of models into DTOs.
func NewSubjectResponseSlice(subjects []models.Subject) []SubjectResponse {
	out := make([]SubjectResponse, 0, len(subjects))
	for _, subject := range subjects {
		out = append(out, NewSubjectResponse(subject))
	}
	return out
}
