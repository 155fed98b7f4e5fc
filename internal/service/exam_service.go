package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/scholaris-io/scholaris-api/internal/dto"
	"github.com/scholaris-io/scholaris-api/internal/grading"
	"github.com/scholaris-io/scholaris-api/internal/models"
	"github.com/scholaris-io/scholaris-api/internal/observability"
	"github.com/scholaris-io/scholaris-api/internal/repository"
)

// Exam service sentinels. Cross-tenant lookups surface as ErrExamNotFound so
// existence never leaks across schools.
var (
	ErrExamNotFound         = errors.New("exam not found")
	ErrExamInvalidWindow    = errors.New("exam end date must not precede start date")
	ErrExamClassGroups      = errors.New("one or more class groups do not belong to this school")
	ErrSubjectNotFound      = errors.New("subject not found")
	ErrStudentNotInScope    = errors.New("one or more students are not in the selected class and section")
	ErrResultsNotPublished  = errors.New("results not published")
	ErrStudentRecordMissing = errors.New("student record not found")
)

// Scope identifies the tenant and viewer for every exam operation.
type Scope struct {
	SchoolID       uint
	AcademicYearID uint
	UserID         uint
	Role           string
}

// ExamService covers exam lifecycle, marks entry and result statistics.
type ExamService interface {
	List(ctx context.Context, scope Scope, query dto.ExamListQuery) ([]dto.ExamResponse, int64, int, error)
	Get(ctx context.Context, scope Scope, id uint) (dto.ExamResponse, error)
	Create(ctx context.Context, scope Scope, payload dto.ExamCreateRequest) (dto.ExamResponse, error)
	Update(ctx context.Context, scope Scope, id uint, payload dto.ExamUpdateRequest) (dto.ExamResponse, error)
	Delete(ctx context.Context, scope Scope, id uint) error
	EnterMarks(ctx context.Context, scope Scope, examID uint, payload dto.MarksEntryRequest) ([]dto.ExamResultResponse, error)
	StudentResults(ctx context.Context, scope Scope, examID uint) (dto.StudentExamReport, error)
	Statistics(ctx context.Context, scope Scope, examID uint) (dto.ExamStatisticsResponse, error)
	ClassReport(ctx context.Context, scope Scope, examID, classGroupID, sectionID uint) (dto.ClassReportResponse, error)
}

type examService struct {
	exams         repository.ExamRepository
	schools       repository.SchoolRepository
	students      repository.StudentRepository
	notifications NotificationService
	validator     *validator.Validate
	logger        zerolog.Logger
	tracer        trace.Tracer
	now           func() time.Time
}

// NewExamService constructs the exam service. notifications may be nil, in
// which case publishing results produces no notifications.
func NewExamService(exams repository.ExamRepository, schools repository.SchoolRepository, students repository.StudentRepository, notifications NotificationService, validate *validator.Validate, logger zerolog.Logger) ExamService {
	return &examService{
		exams:         exams,
		schools:       schools,
		students:      students,
		notifications: notifications,
		validator:     validate,
		logger:        logger.With().Str("component", "exam_service").Logger(),
		tracer:        otel.Tracer("github.com/scholaris-io/scholaris-api/internal/service/exam"),
		now:           time.Now,
	}
}

func (s *examService) List(ctx context.Context, scope Scope, query dto.ExamListQuery) ([]dto.ExamResponse, int64, int, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, 0, 0, err
	}

	page := maxInt(query.Page, 1)
	filter := repository.ExamFilter{
		AcademicYearID: scope.AcademicYearID,
		ExamType:       query.ExamType,
		Search:         query.Search,
		Page:           page,
		PageSize:       ExamPageSize,
	}

	exams, total, err := s.exams.List(ctx, scope.SchoolID, filter)
	if err != nil {
		return nil, 0, 0, err
	}
	return dto.NewExamResponseSlice(exams, s.now()), total, page, nil
}

func (s *examService) Get(ctx context.Context, scope Scope, id uint) (dto.ExamResponse, error) {
	exam, err := s.exams.FindByID(ctx, scope.SchoolID, id)
	if err != nil {
		return dto.ExamResponse{}, ErrExamNotFound
	}
	return dto.NewExamResponse(exam, s.now()), nil
}

func (s *examService) Create(ctx context.Context, scope Scope, payload dto.ExamCreateRequest) (dto.ExamResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ExamResponse{}, err
	}
	if payload.EndDate.Before(payload.StartDate) {
		return dto.ExamResponse{}, ErrExamInvalidWindow
	}

	groups, err := s.schools.ClassGroupsByIDs(ctx, scope.SchoolID, payload.ClassGroupIDs)
	if err != nil {
		return dto.ExamResponse{}, err
	}
	if len(groups) != len(payload.ClassGroupIDs) {
		return dto.ExamResponse{}, ErrExamClassGroups
	}

	exam := models.Exam{
		SchoolID:              scope.SchoolID,
		AcademicYearID:        scope.AcademicYearID,
		Name:                  payload.Name,
		ExamType:              payload.ExamType,
		Description:           payload.Description,
		StartDate:             payload.StartDate,
		EndDate:               payload.EndDate,
		ResultDeclarationDate: payload.ResultDeclarationDate,
		IsActive:              true,
	}
	if err := s.exams.Create(ctx, &exam, groups); err != nil {
		return dto.ExamResponse{}, err
	}

	s.logger.Info().Uint("exam_id", exam.ID).Uint("school_id", scope.SchoolID).Msg("exam created")
	exam.ClassGroups = groups
	return dto.NewExamResponse(exam, s.now()), nil
}

func (s *examService) Update(ctx context.Context, scope Scope, id uint, payload dto.ExamUpdateRequest) (dto.ExamResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ExamResponse{}, err
	}

	exam, err := s.exams.FindByID(ctx, scope.SchoolID, id)
	if err != nil {
		return dto.ExamResponse{}, ErrExamNotFound
	}
	wasPublished := exam.IsResultPublished

	if payload.Name != nil {
		exam.Name = *payload.Name
	}
	if payload.Description != nil {
		exam.Description = *payload.Description
	}
	if payload.StartDate != nil {
		exam.StartDate = *payload.StartDate
	}
	if payload.EndDate != nil {
		exam.EndDate = *payload.EndDate
	}
	if payload.ResultDeclarationDate != nil {
		exam.ResultDeclarationDate = payload.ResultDeclarationDate
	}
	if payload.IsResultPublished != nil {
		exam.IsResultPublished = *payload.IsResultPublished
	}
	if exam.EndDate.Before(exam.StartDate) {
		return dto.ExamResponse{}, ErrExamInvalidWindow
	}

	var groups []models.ClassGroup
	if payload.ClassGroupIDs != nil {
		groups, err = s.schools.ClassGroupsByIDs(ctx, scope.SchoolID, payload.ClassGroupIDs)
		if err != nil {
			return dto.ExamResponse{}, err
		}
		if len(groups) != len(payload.ClassGroupIDs) {
			return dto.ExamResponse{}, ErrExamClassGroups
		}
	}

	if err := s.exams.Update(ctx, &exam, groups); err != nil {
		return dto.ExamResponse{}, err
	}
	if groups != nil {
		exam.ClassGroups = groups
	}

	if !wasPublished && exam.IsResultPublished {
		s.notifyResultsPublished(ctx, scope, exam)
	}
	return dto.NewExamResponse(exam, s.now()), nil
}

// notifyResultsPublished tells every student holding a result for the exam
// that their sheet is available. Best effort: publication itself already
// succeeded, so failures here are logged and not surfaced.
func (s *examService) notifyResultsPublished(ctx context.Context, scope Scope, exam models.Exam) {
	if s.notifications == nil {
		return
	}

	results, err := s.exams.Results(ctx, repository.ResultScope{ExamID: exam.ID})
	if err != nil {
		s.logger.Warn().Err(err).Uint("exam_id", exam.ID).Msg("failed to load results for publication notice")
		return
	}

	seen := make(map[uint]struct{}, len(results))
	notifications := make([]models.Notification, 0, len(results))
	for _, result := range results {
		userID := result.Student.UserID
		if userID == 0 {
			continue
		}
		if _, ok := seen[userID]; ok {
			continue
		}
		seen[userID] = struct{}{}
		notifications = append(notifications, models.Notification{
			RecipientID: userID,
			SchoolID:    scope.SchoolID,
			Type:        models.NotificationTypeResult,
			Title:       "Results published",
			Message:     fmt.Sprintf("Results for %s are now available", exam.Name),
			ActionURL:   fmt.Sprintf("/api/v1/exams/%d/my-results", exam.ID),
		})
	}

	if err := s.notifications.PublishBatch(ctx, notifications); err != nil {
		s.logger.Warn().Err(err).Uint("exam_id", exam.ID).Msg("failed to notify students of published results")
	}
}

func (s *examService) Delete(ctx context.Context, scope Scope, id uint) error {
	if err := s.exams.Delete(ctx, scope.SchoolID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrExamNotFound
		}
		return err
	}
	s.logger.Info().Uint("exam_id", id).Uint("school_id", scope.SchoolID).Msg("exam deleted with its results")
	return nil
}

// EnterMarks grades and stores a bulk marks submission. The grade, percentage
// and pass flag of every row are recomputed here from the subject's marking
// scheme; client-sent grades are never trusted. All rows land in a single
// transaction and re-submissions overwrite earlier rows (last write wins).
func (s *examService) EnterMarks(ctx context.Context, scope Scope, examID uint, payload dto.MarksEntryRequest) ([]dto.ExamResultResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, err
	}

	spanCtx, span := s.tracer.Start(ctx, "exams.enter_marks", trace.WithAttributes(
		attribute.Int("exam.id", int(examID)),
		attribute.Int("exam.subject_id", int(payload.SubjectID)),
		attribute.Int("exam.entries", len(payload.Entries)),
	))
	defer span.End()

	exam, err := s.exams.FindByID(spanCtx, scope.SchoolID, examID)
	if err != nil {
		return nil, ErrExamNotFound
	}

	subject, err := s.schools.FindSubject(spanCtx, scope.SchoolID, payload.SubjectID)
	if err != nil {
		return nil, ErrSubjectNotFound
	}

	students, err := s.students.ListByClassSection(spanCtx, scope.SchoolID, payload.ClassGroupID, payload.SectionID)
	if err != nil {
		return nil, err
	}
	inScope := make(map[uint]struct{}, len(students))
	for _, student := range students {
		inScope[student.ID] = struct{}{}
	}

	enteredBy := scope.UserID
	results := make([]models.ExamResult, 0, len(payload.Entries))
	for _, entry := range payload.Entries {
		if _, ok := inScope[entry.StudentID]; !ok {
			return nil, ErrStudentNotInScope
		}

		marks := 0.0
		if entry.MarksObtained != nil {
			marks = *entry.MarksObtained
		}
		outcome, err := grading.Compute(marks, entry.IsAbsent, subject.TotalMarks, subject.PassingMarks)
		if err != nil {
			return nil, err
		}

		result := models.ExamResult{
			ExamID:      exam.ID,
			StudentID:   entry.StudentID,
			SubjectID:   subject.ID,
			MaxMarks:    subject.TotalMarks,
			Grade:       outcome.Grade,
			Percentage:  outcome.Percentage,
			IsPassed:    outcome.IsPassed,
			IsAbsent:    outcome.IsAbsent,
			Remarks:     entry.Remarks,
			EnteredByID: &enteredBy,
		}
		if !entry.IsAbsent {
			result.MarksObtained = entry.MarksObtained
		}
		results = append(results, result)
	}

	if err := s.exams.SaveResults(spanCtx, results); err != nil {
		span.RecordError(err)
		return nil, err
	}

	observability.MarksEntries().Add(float64(len(results)))
	s.logger.Info().
		Uint("exam_id", exam.ID).
		Uint("subject_id", subject.ID).
		Int("rows", len(results)).
		Msg("marks entered")

	return dto.NewExamResultResponseSlice(results), nil
}

// StudentResults returns the viewer's own result sheet. Students see nothing
// until the exam's results are published; staff can always preview.
func (s *examService) StudentResults(ctx context.Context, scope Scope, examID uint) (dto.StudentExamReport, error) {
	exam, err := s.exams.FindByID(ctx, scope.SchoolID, examID)
	if err != nil {
		return dto.StudentExamReport{}, ErrExamNotFound
	}

	if scope.Role == models.RoleStudent && !exam.IsResultPublished {
		return dto.StudentExamReport{}, ErrResultsNotPublished
	}

	student, err := s.students.FindByUserID(ctx, scope.UserID)
	if err != nil || student.SchoolID != scope.SchoolID {
		return dto.StudentExamReport{}, ErrStudentRecordMissing
	}

	results, err := s.exams.ResultsByStudent(ctx, exam.ID, student.ID)
	if err != nil {
		return dto.StudentExamReport{}, err
	}

	report := dto.StudentExamReport{
		ExamID:      exam.ID,
		ExamName:    exam.Name,
		StudentID:   student.ID,
		StudentName: student.User.FullName(),
		Results:     dto.NewExamResultResponseSlice(results),
		AllPassed:   len(results) > 0,
	}
	for _, result := range results {
		report.TotalMaximum += result.MaxMarks
		if result.MarksObtained != nil {
			report.TotalObtained += *result.MarksObtained
		}
		if !result.IsPassed {
			report.AllPassed = false
		}
	}
	if report.TotalMaximum > 0 {
		report.OverallPercent = report.TotalObtained / float64(report.TotalMaximum) * 100
		report.OverallGrade = grading.Letter(report.OverallPercent)
	}
	return report, nil
}

// Statistics aggregates an exam's results per subject. Absent students are
// excluded from averages and from the pass-percentage denominator.
func (s *examService) Statistics(ctx context.Context, scope Scope, examID uint) (dto.ExamStatisticsResponse, error) {
	exam, err := s.exams.FindByID(ctx, scope.SchoolID, examID)
	if err != nil {
		return dto.ExamStatisticsResponse{}, ErrExamNotFound
	}

	results, err := s.exams.Results(ctx, repository.ResultScope{ExamID: exam.ID})
	if err != nil {
		return dto.ExamStatisticsResponse{}, err
	}

	type bucket struct {
		name    string
		samples []grading.Sample
	}
	buckets := make(map[uint]*bucket)
	order := make([]uint, 0)
	for _, result := range results {
		b, ok := buckets[result.SubjectID]
		if !ok {
			b = &bucket{name: result.Subject.Name}
			buckets[result.SubjectID] = b
			order = append(order, result.SubjectID)
		}
		sample := grading.Sample{IsAbsent: result.IsAbsent, IsPassed: result.IsPassed}
		if result.MarksObtained != nil {
			sample.Marks = *result.MarksObtained
		}
		b.samples = append(b.samples, sample)
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	response := dto.ExamStatisticsResponse{ExamID: exam.ID, ExamName: exam.Name}
	for _, subjectID := range order {
		b := buckets[subjectID]
		summary := grading.Summarize(b.samples)
		response.Subjects = append(response.Subjects, dto.SubjectStatistics{
			SubjectID:      subjectID,
			SubjectName:    b.name,
			Total:          summary.Total,
			Passed:         summary.Passed,
			Failed:         summary.Failed,
			Absent:         summary.Absent,
			AverageMarks:   summary.AverageMarks,
			PassPercentage: summary.PassPercentage,
		})
	}
	return response, nil
}

// ClassReport ranks the students of one class group (optionally one section)
// by overall percentage across all subjects of the exam.
func (s *examService) ClassReport(ctx context.Context, scope Scope, examID, classGroupID, sectionID uint) (dto.ClassReportResponse, error) {
	exam, err := s.exams.FindByID(ctx, scope.SchoolID, examID)
	if err != nil {
		return dto.ClassReportResponse{}, ErrExamNotFound
	}

	results, err := s.exams.Results(ctx, repository.ResultScope{ExamID: exam.ID, ClassGroupID: classGroupID, SectionID: sectionID})
	if err != nil {
		return dto.ClassReportResponse{}, err
	}

	rows := make(map[uint]*dto.ClassReportRow)
	order := make([]uint, 0)
	for _, result := range results {
		row, ok := rows[result.StudentID]
		if !ok {
			row = &dto.ClassReportRow{
				StudentID:       result.StudentID,
				StudentName:     result.Student.User.FullName(),
				AdmissionNumber: result.Student.AdmissionNumber,
			}
			rows[result.StudentID] = row
			order = append(order, result.StudentID)
		}
		row.TotalMaximum += result.MaxMarks
		if result.MarksObtained != nil {
			row.TotalObtained += *result.MarksObtained
		}
		if result.IsPassed {
			row.SubjectsPassed++
		} else {
			row.SubjectsFailed++
		}
	}

	report := dto.ClassReportResponse{ExamID: exam.ID, ExamName: exam.Name, ClassGroupID: classGroupID, SectionID: sectionID}
	for _, studentID := range order {
		row := rows[studentID]
		if row.TotalMaximum > 0 {
			row.OverallPercent = row.TotalObtained / float64(row.TotalMaximum) * 100
			row.OverallGrade = grading.Letter(row.OverallPercent)
		}
		report.Rows = append(report.Rows, *row)
	}

	sort.SliceStable(report.Rows, func(i, j int) bool {
		return report.Rows[i].OverallPercent > report.Rows[j].OverallPercent
	})
	for i := range report.Rows {
		report.Rows[i].Rank = i + 1
	}
	return report, nil
}
