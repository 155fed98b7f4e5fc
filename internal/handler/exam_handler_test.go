package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/scholaris-io/scholaris-api/internal/dto"
	"github.com/scholaris-io/scholaris-api/internal/handler"
	"github.com/scholaris-io/scholaris-api/internal/models"
	"github.com/scholaris-io/scholaris-api/internal/service"
)

type mockExamService struct {
	service.ExamService

	created  dto.ExamResponse
	marks    []dto.ExamResultResponse
	marksErr error
	report   dto.StudentExamReport
	repErr   error
}

func (m *mockExamService) Create(_ context.Context, _ service.Scope, payload dto.ExamCreateRequest) (dto.ExamResponse, error) {
	m.created = dto.ExamResponse{ID: 3, Name: payload.Name}
	return m.created, nil
}

func (m *mockExamService) EnterMarks(_ context.Context, _ service.Scope, _ uint, _ dto.MarksEntryRequest) ([]dto.ExamResultResponse, error) {
	if m.marksErr != nil {
		return nil, m.marksErr
	}
	return m.marks, nil
}

func (m *mockExamService) StudentResults(_ context.Context, _ service.Scope, _ uint) (dto.StudentExamReport, error) {
	if m.repErr != nil {
		return dto.StudentExamReport{}, m.repErr
	}
	return m.report, nil
}

func newExamApp(svc *mockExamService, role string) *fiber.App {
	app := fiber.New()
	group := app.Group("/api/v1/exams", withScope(1, role, 1, 3))
	handler.NewExamHandler(svc, testLogger()).Register(group)
	return app
}

func marksPayload(t *testing.T) *bytes.Reader {
	t.Helper()
	marks := 80.0
	payload, err := json.Marshal(dto.MarksEntryRequest{
		SubjectID:    20,
		ClassGroupID: 10,
		SectionID:    100,
		Entries:      []dto.MarkEntry{{StudentID: 5, MarksObtained: &marks}},
	})
	require.NoError(t, err)
	return bytes.NewReader(payload)
}

func examPayload(t *testing.T) *bytes.Reader {
	t.Helper()
	payload, err := json.Marshal(dto.ExamCreateRequest{
		Name:          "Term 1 Exam",
		ExamType:      models.ExamTypeMidTerm,
		StartDate:     time.Now(),
		EndDate:       time.Now().Add(48 * time.Hour),
		ClassGroupIDs: []uint{10},
	})
	require.NoError(t, err)
	return bytes.NewReader(payload)
}

func TestExamHandler_CreateAsTeacher(t *testing.T) {
	svc := &mockExamService{}
	app := newExamApp(svc, models.RoleTeacher)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/exams/", examPayload(t))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body struct {
		Data dto.ExamResponse `json:"data"`
	}
	decodeResponse(t, resp, &body)
	require.Equal(t, "Term 1 Exam", body.Data.Name)
}

func TestExamHandler_CreateForbiddenForStudents(t *testing.T) {
	svc := &mockExamService{}
	app := newExamApp(svc, models.RoleStudent)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/exams/", examPayload(t))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestExamHandler_EnterMarksAsTeacher(t *testing.T) {
	svc := &mockExamService{marks: []dto.ExamResultResponse{{StudentID: 5, Grade: "A"}}}
	app := newExamApp(svc, models.RoleTeacher)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/exams/1/marks", marksPayload(t))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Success bool                     `json:"success"`
		Data    []dto.ExamResultResponse `json:"data"`
	}
	decodeResponse(t, resp, &body)
	require.True(t, body.Success)
	require.Len(t, body.Data, 1)
	require.Equal(t, "A", body.Data[0].Grade)
}

func TestExamHandler_EnterMarksForbiddenForStudents(t *testing.T) {
	svc := &mockExamService{}
	app := newExamApp(svc, models.RoleStudent)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/exams/1/marks", marksPayload(t))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestExamHandler_EnterMarksOutOfScope(t *testing.T) {
	svc := &mockExamService{marksErr: service.ErrStudentNotInScope}
	app := newExamApp(svc, models.RoleTeacher)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/exams/1/marks", marksPayload(t))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestExamHandler_StudentResultsUnpublished(t *testing.T) {
	svc := &mockExamService{repErr: service.ErrResultsNotPublished}
	app := newExamApp(svc, models.RoleStudent)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/exams/1/my-results", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestExamHandler_StudentResultsSuccess(t *testing.T) {
	svc := &mockExamService{report: dto.StudentExamReport{ExamID: 1, OverallGrade: "B+"}}
	app := newExamApp(svc, models.RoleStudent)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/exams/1/my-results", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Data dto.StudentExamReport `json:"data"`
	}
	decodeResponse(t, resp, &body)
	require.Equal(t, "B+", body.Data.OverallGrade)
}

func TestExamHandler_StatisticsRequiresStaff(t *testing.T) {
	svc := &mockExamService{}
	app := newExamApp(svc, models.RoleParent)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/exams/1/statistics", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
