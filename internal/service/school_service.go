package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/scholaris-io/scholaris-api/internal/dto"
	"github.com/scholaris-io/scholaris-api/internal/repository"
)

// ErrSchoolNotFound indicates the scoped school no longer resolves.
var ErrSchoolNotFound = errors.New("school not found")

// SchoolService exposes the current tenant's profile: the school record, its
// active academic year and the class and subject structure beneath it.
type SchoolService interface {
	Profile(ctx context.Context, scope Scope) (dto.SchoolProfileResponse, error)
	ClassGroups(ctx context.Context, scope Scope) ([]dto.ClassGroupResponse, error)
	Subjects(ctx context.Context, scope Scope) ([]dto.SubjectResponse, error)
}

type schoolService struct {
	schools repository.SchoolRepository
	logger  zerolog.Logger
}

// NewSchoolService constructs the school service.
func NewSchoolService(schools repository.SchoolRepository, logger zerolog.Logger) SchoolService {
	return &schoolService{
		schools: schools,
		logger:  logger.With().Str("component", "school_service").Logger(),
	}
}

func (s *schoolService) Profile(ctx context.Context, scope Scope) (dto.SchoolProfileResponse, error) {
	school, err := s.schools.FindByID(ctx, scope.SchoolID)
	if err != nil {
		return dto.SchoolProfileResponse{}, ErrSchoolNotFound
	}

	year, err := s.schools.ActiveAcademicYear(ctx, scope.SchoolID)
	if err != nil {
		return dto.SchoolProfileResponse{}, err
	}

	groups, err := s.ClassGroups(ctx, scope)
	if err != nil {
		return dto.SchoolProfileResponse{}, err
	}

	subjects, err := s.Subjects(ctx, scope)
	if err != nil {
		return dto.SchoolProfileResponse{}, err
	}

	return dto.SchoolProfileResponse{
		School:       dto.NewSchoolResponse(school),
		AcademicYear: dto.NewAcademicYearResponse(year),
		ClassGroups:  groups,
		Subjects:     subjects,
	}, nil
}

func (s *schoolService) ClassGroups(ctx context.Context, scope Scope) ([]dto.ClassGroupResponse, error) {
	groups, err := s.schools.ClassGroups(ctx, scope.SchoolID, scope.AcademicYearID)
	if err != nil {
		return nil, err
	}

	out := make([]dto.ClassGroupResponse, 0, len(groups))
	for _, group := range groups {
		sections, err := s.schools.SectionsByClassGroup(ctx, group.ID)
		if err != nil {
			return nil, err
		}
		group.Sections = sections
		out = append(out, dto.NewClassGroupResponse(group))
	}
	return out, nil
}

func (s *schoolService) Subjects(ctx context.Context, scope Scope) ([]dto.SubjectResponse, error) {
	subjects, err := s.schools.Subjects(ctx, scope.SchoolID)
	if err != nil {
		return nil, err
	}
	return dto.NewSubjectResponseSlice(subjects), nil
}
