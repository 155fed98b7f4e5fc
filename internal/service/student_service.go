package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/scholaris-io/scholaris-api/internal/dto"
	"github.com/scholaris-io/scholaris-api/internal/models"
	"github.com/scholaris-io/scholaris-api/internal/repository"
)

// Student service sentinels.
var (
	ErrStudentNotFound = errors.New("student not found")
	ErrSectionNotFound = errors.New("section not found in this school")
	ErrSectionFull     = errors.New("section is at capacity")
)

// StudentService covers enrolment and roster management.
type StudentService interface {
	List(ctx context.Context, scope Scope, query dto.StudentListQuery) ([]dto.StudentResponse, int64, int, error)
	Get(ctx context.Context, scope Scope, id uint) (dto.StudentResponse, error)
	Create(ctx context.Context, scope Scope, payload dto.StudentCreateRequest) (dto.StudentResponse, error)
	Update(ctx context.Context, scope Scope, id uint, payload dto.StudentUpdateRequest) (dto.StudentResponse, error)
}

type studentService struct {
	students  repository.StudentRepository
	users     repository.UserRepository
	schools   repository.SchoolRepository
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewStudentService constructs the student service.
func NewStudentService(students repository.StudentRepository, users repository.UserRepository, schools repository.SchoolRepository, validate *validator.Validate, logger zerolog.Logger) StudentService {
	return &studentService{
		students:  students,
		users:     users,
		schools:   schools,
		validator: validate,
		logger:    logger.With().Str("component", "student_service").Logger(),
		now:       time.Now,
	}
}

func (s *studentService) List(ctx context.Context, scope Scope, query dto.StudentListQuery) ([]dto.StudentResponse, int64, int, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, 0, 0, err
	}
	page := maxInt(query.Page, 1)
	students, total, err := s.students.List(ctx, scope.SchoolID, repository.StudentFilter{
		ClassGroupID: query.ClassGroupID,
		SectionID:    query.SectionID,
		Search:       query.Search,
		Page:         page,
		PageSize:     StudentPageSize,
	})
	if err != nil {
		return nil, 0, 0, err
	}
	return dto.NewStudentResponseSlice(students), total, page, nil
}

func (s *studentService) Get(ctx context.Context, scope Scope, id uint) (dto.StudentResponse, error) {
	student, err := s.students.FindByID(ctx, scope.SchoolID, id)
	if err != nil {
		return dto.StudentResponse{}, ErrStudentNotFound
	}
	return dto.NewStudentResponse(student), nil
}

// Create enrols a student: one account plus one student record, placed in a
// class and section of the active academic year. Admission numbers are
// generated per school and year, never taken from the client.
func (s *studentService) Create(ctx context.Context, scope Scope, payload dto.StudentCreateRequest) (dto.StudentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.StudentResponse{}, err
	}

	if err := s.checkPlacement(ctx, scope.SchoolID, payload.ClassGroupID, payload.SectionID); err != nil {
		return dto.StudentResponse{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return dto.StudentResponse{}, err
	}

	schoolID := scope.SchoolID
	user := models.User{
		SchoolID:     &schoolID,
		Username:     strings.ToLower(strings.TrimSpace(payload.Username)),
		Email:        strings.ToLower(strings.TrimSpace(payload.Email)),
		PasswordHash: string(hash),
		FirstName:    strings.TrimSpace(payload.FirstName),
		LastName:     strings.TrimSpace(payload.LastName),
		Phone:        payload.Phone,
		Role:         models.RoleStudent,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		return dto.StudentResponse{}, err
	}

	admissionDate := s.now()
	if payload.AdmissionDate != "" {
		if parsed, err := time.Parse("2006-01-02", payload.AdmissionDate); err == nil {
			admissionDate = parsed
		}
	}

	student := models.Student{
		UserID:          user.ID,
		SchoolID:        scope.SchoolID,
		AcademicYearID:  scope.AcademicYearID,
		ClassGroupID:    payload.ClassGroupID,
		SectionID:       payload.SectionID,
		AdmissionNumber: s.admissionNumber(scope.SchoolID, user.ID, admissionDate),
		RollNumber:      payload.RollNumber,
		AdmissionDate:   admissionDate,
		IsActive:        true,
	}
	if err := s.students.Create(ctx, &student); err != nil {
		return dto.StudentResponse{}, err
	}

	student.User = user
	s.logger.Info().Uint("student_id", student.ID).Str("admission_number", student.AdmissionNumber).Msg("student enrolled")
	return dto.NewStudentResponse(student), nil
}

func (s *studentService) Update(ctx context.Context, scope Scope, id uint, payload dto.StudentUpdateRequest) (dto.StudentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.StudentResponse{}, err
	}

	student, err := s.students.FindByID(ctx, scope.SchoolID, id)
	if err != nil {
		return dto.StudentResponse{}, ErrStudentNotFound
	}

	classGroupID := student.ClassGroupID
	sectionID := student.SectionID
	if payload.ClassGroupID != nil {
		classGroupID = *payload.ClassGroupID
	}
	if payload.SectionID != nil {
		sectionID = *payload.SectionID
	}
	if classGroupID != student.ClassGroupID || sectionID != student.SectionID {
		if err := s.checkPlacement(ctx, scope.SchoolID, classGroupID, sectionID); err != nil {
			return dto.StudentResponse{}, err
		}
		student.ClassGroupID = classGroupID
		student.SectionID = sectionID
	}
	if payload.RollNumber != nil {
		student.RollNumber = *payload.RollNumber
	}
	if payload.IsActive != nil {
		student.IsActive = *payload.IsActive
	}

	if err := s.students.Update(ctx, &student); err != nil {
		return dto.StudentResponse{}, err
	}
	return dto.NewStudentResponse(student), nil
}

// checkPlacement verifies the class/section pair belongs to the school and
// the section has room. Capacity is a soft limit: it guards enrolment but
// existing members are never evicted.
func (s *studentService) checkPlacement(ctx context.Context, schoolID, classGroupID, sectionID uint) error {
	groups, err := s.schools.ClassGroupsByIDs(ctx, schoolID, []uint{classGroupID})
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		return ErrSectionNotFound
	}

	sections, err := s.schools.SectionsByClassGroup(ctx, classGroupID)
	if err != nil {
		return err
	}
	var section *models.Section
	for i := range sections {
		if sections[i].ID == sectionID {
			section = &sections[i]
			break
		}
	}
	if section == nil {
		return ErrSectionNotFound
	}

	count, err := s.students.CountBySection(ctx, sectionID)
	if err != nil {
		return err
	}
	if section.Capacity > 0 && count >= int64(section.Capacity) {
		return ErrSectionFull
	}
	return nil
}

func (s *studentService) admissionNumber(schoolID, userID uint, admitted time.Time) string {
	return fmt.Sprintf("SCH%d-%d-%04d", schoolID, admitted.Year(), userID)
}
