package dto

import (
	"time"

	"github.com/scholaris-io/scholaris-api/internal/models"
)

// ExamCreateRequest schedules a new exam.
type ExamCreateRequest struct {
	Name                  string     `json:"name" validate:"required,min=3,max=200"`
	ExamType              string     `json:"exam_type" validate:"required,oneof=unit_test mid_term final quarterly half_yearly annual entrance placement"`
	Description           string     `json:"description" validate:"omitempty,max=2000"`
	StartDate             time.Time  `json:"start_date" validate:"required"`
	EndDate               time.Time  `json:"end_date" validate:"required"`
	ResultDeclarationDate *time.Time `json:"result_declaration_date"`
	ClassGroupIDs         []uint     `json:"class_group_ids" validate:"required,min=1,dive,required"`
}

// ExamUpdateRequest edits an exam. Nil fields are left unchanged.
type ExamUpdateRequest struct {
	Name                  *string    `json:"name" validate:"omitempty,min=3,max=200"`
	Description           *string    `json:"description" validate:"omitempty,max=2000"`
	StartDate             *time.Time `json:"start_date"`
	EndDate               *time.Time `json:"end_date"`
	ResultDeclarationDate *time.Time `json:"result_declaration_date"`
	IsResultPublished     *bool      `json:"is_result_published"`
	ClassGroupIDs         []uint     `json:"class_group_ids" validate:"omitempty,dive,required"`
}

// ExamListQuery filters the exam list.
type ExamListQuery struct {
	ExamType string `query:"exam_type" validate:"omitempty,oneof=unit_test mid_term final quarterly half_yearly annual entrance placement"`
	Search   string `query:"search" validate:"omitempty,max=100"`
	Page     int    `query:"page" validate:"omitempty,min=1"`
}

// ExamResponse is the serialized representation of an exam.
type ExamResponse struct {
	ID                    uint                 `json:"id"`
	Name                  string               `json:"name"`
	ExamType              string               `json:"exam_type"`
	Description           string               `json:"description,omitempty"`
	StartDate             time.Time            `json:"start_date"`
	EndDate               time.Time            `json:"end_date"`
	ResultDeclarationDate *time.Time           `json:"result_declaration_date,omitempty"`
	IsResultPublished     bool                 `json:"is_result_published"`
	IsOngoing             bool                 `json:"is_ongoing"`
	ClassGroups           []ClassGroupResponse `json:"class_groups,omitempty"`
}

// NewExamResponse converts a model into a DTO.
func NewExamResponse(exam models.Exam, now time.Time) ExamResponse {
	return ExamResponse{
		ID:                    exam.ID,
		Name:                  exam.Name,
		ExamType:              exam.ExamType,
		Description:           exam.Description,
		StartDate:             exam.StartDate,
		EndDate:               exam.EndDate,
		ResultDeclarationDate: exam.ResultDeclarationDate,
		IsResultPublished:     exam.IsResultPublished,
		IsOngoing:             exam.IsOngoing(now),
		ClassGroups:           NewClassGroupResponseSlice(exam.ClassGroups),
	}
}

// NewExamResponseSlice converts a slice of models into DTOs.
func NewExamResponseSlice(exams []models.Exam, now time.Time) []ExamResponse {
	out := make([]ExamResponse, 0, len(exams))
	for _, exam := range exams {
		out = append(out, NewExamResponse(exam, now))
	}
	return out
}

// MarkEntry is one student's marks for one subject inside a bulk submission.
type MarkEntry struct {
	StudentID     uint     `json:"student_id" validate:"required"`
	MarksObtained *float64 `json:"marks_obtained" validate:"omitempty,min=0"`
	IsAbsent      bool     `json:"is_absent"`
	Remarks       string   `json:"remarks" validate:"omitempty,max=500"`
}

// MarksEntryRequest submits marks for one (exam, subject, class, section)
// scope in a single transaction.
type MarksEntryRequest struct {
	SubjectID    uint        `json:"subject_id" validate:"required"`
	ClassGroupID uint        `json:"class_group_id" validate:"required"`
	SectionID    uint        `json:"section_id" validate:"required"`
	Entries      []MarkEntry `json:"entries" validate:"required,min=1,dive"`
}

// ExamResultResponse is one graded row of an exam.
type ExamResultResponse struct {
	ID            uint     `json:"id"`
	StudentID     uint     `json:"student_id"`
	StudentName   string   `json:"student_name,omitempty"`
	SubjectID     uint     `json:"subject_id"`
	SubjectName   string   `json:"subject_name,omitempty"`
	MarksObtained *float64 `json:"marks_obtained,omitempty"`
	MaxMarks      uint     `json:"max_marks"`
	Grade         string   `json:"grade,omitempty"`
	Percentage    float64  `json:"percentage"`
	IsPassed      bool     `json:"is_passed"`
	IsAbsent      bool     `json:"is_absent"`
	Remarks       string   `json:"remarks,omitempty"`
}

// NewExamResultResponse converts a model into a DTO, using the Student and
// Subject associations when preloaded.
func NewExamResultResponse(result models.ExamResult) ExamResultResponse {
	response := ExamResultResponse{
		ID:            result.ID,
		StudentID:     result.StudentID,
		SubjectID:     result.SubjectID,
		MarksObtained: result.MarksObtained,
		MaxMarks:      result.MaxMarks,
		Grade:         result.Grade,
		Percentage:    result.Percentage,
		IsPassed:      result.IsPassed,
		IsAbsent:      result.IsAbsent,
		Remarks:       result.Remarks,
	}
	if result.Student.ID != 0 {
		response.StudentName = result.Student.User.FullName()
	}
	if result.Subject.ID != 0 {
		response.SubjectName = result.Subject.Name
	}
	return response
}

// NewExamResultResponseSlice converts a slice of models into DTOs.
func NewExamResultResponseSlice(results []models.ExamResult) []ExamResultResponse {
	out := make([]ExamResultResponse, 0, len(results))
	for _, result := range results {
		out = append(out, NewExamResultResponse(result))
	}
	return out
}

// SubjectStatistics summarises one subject's results inside an exam.
type SubjectStatistics struct {
	SubjectID      uint    `json:"subject_id"`
	SubjectName    string  `json:"subject_name"`
	Total          int     `json:"total"`
	Passed         int     `json:"passed"`
	Failed         int     `json:"failed"`
	Absent         int     `json:"absent"`
	AverageMarks   float64 `json:"average_marks"`
	PassPercentage float64 `json:"pass_percentage"`
}

// ExamStatisticsResponse aggregates an exam's results per subject.
type ExamStatisticsResponse struct {
	ExamID   uint                `json:"exam_id"`
	ExamName string              `json:"exam_name"`
	Subjects []SubjectStatistics `json:"subjects"`
}

// StudentExamReport is a student's full result sheet for one exam.
type StudentExamReport struct {
	ExamID         uint                 `json:"exam_id"`
	ExamName       string               `json:"exam_name"`
	StudentID      uint                 `json:"student_id"`
	StudentName    string               `json:"student_name"`
	Results        []ExamResultResponse `json:"results"`
	TotalObtained  float64              `json:"total_obtained"`
	TotalMaximum   uint                 `json:"total_maximum"`
	OverallPercent float64              `json:"overall_percent"`
	OverallGrade   string               `json:"overall_grade"`
	AllPassed      bool                 `json:"all_passed"`
}

// ClassReportRow is one student's aggregate line in a class report.
type ClassReportRow struct {
	StudentID       uint    `json:"student_id"`
	StudentName     string  `json:"student_name"`
	AdmissionNumber string  `json:"admission_number"`
	TotalObtained   float64 `json:"total_obtained"`
	TotalMaximum    uint    `json:"total_maximum"`
	OverallPercent  float64 `json:"overall_percent"`
	OverallGrade    string  `json:"overall_grade"`
	SubjectsPassed  int     `json:"subjects_passed"`
	SubjectsFailed  int     `json:"subjects_failed"`
	Rank            int     `json:"rank"`
}

// ClassReportResponse ranks a class group's students by overall percentage.
type ClassReportResponse struct {
	ExamID       uint             `json:"exam_id"`
	ExamName     string           `json:"exam_name"`
	ClassGroupID uint             `json:"class_group_id"`
	SectionID    uint             `json:"section_id,omitempty"`
	Rows         []ClassReportRow `json:"rows"`
}
