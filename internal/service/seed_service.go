package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/scholaris-io/scholaris-api/internal/models"
	"github.com/scholaris-io/scholaris-api/internal/repository"
)

// ErrSeedSchoolNotFound indicates the school identifier passed to the seeder
// does not resolve to an existing school.
var ErrSeedSchoolNotFound = errors.New("school not found")

// Default structure seeded for Ghanaian basic schools.
var (
	seedClassNames = []string{
		"Creche", "Nursery 1", "Nursery 2", "KG 1", "KG 2",
		"Class 1", "Class 2", "Class 3", "Class 4", "Class 5", "Class 6",
		"JHS 1", "JHS 2", "JHS 3",
	}
	seedSectionNames = []string{"A", "B", "C"}
)

// SeedReport summarises what the seeder created versus found in place.
type SeedReport struct {
	SchoolID        uint
	AcademicYear    string
	YearCreated     bool
	ClassesCreated  int
	SectionsCreated int
}

// SeedService provisions a school's academic-year, class and section
// structure. Every step is idempotent: re-running against a seeded school
// creates nothing and reports zero.
type SeedService interface {
	SeedSchool(ctx context.Context, schoolIdentifier string, yearOverride string) (SeedReport, error)
}

type seedService struct {
	schools repository.SchoolRepository
	logger  zerolog.Logger
	now     func() time.Time
}

// NewSeedService constructs the seed service.
func NewSeedService(schools repository.SchoolRepository, logger zerolog.Logger) SeedService {
	return &seedService{
		schools: schools,
		logger:  logger.With().Str("component", "seed_service").Logger(),
		now:     time.Now,
	}
}

func (s *seedService) SeedSchool(ctx context.Context, schoolIdentifier string, yearOverride string) (SeedReport, error) {
	school, err := s.schools.FindBySubdomain(ctx, schoolIdentifier)
	if err != nil {
		return SeedReport{}, ErrSeedSchoolNotFound
	}

	yearLabel := yearOverride
	start := s.now()
	if yearLabel == "" {
		// Academic years run September to August; before September the
		// current year still belongs to the previous label.
		startYear := start.Year()
		if start.Month() < time.September {
			startYear--
		}
		yearLabel = fmt.Sprintf("%d-%d", startYear, startYear+1)
	}

	year := models.AcademicYear{
		SchoolID:  school.ID,
		Year:      yearLabel,
		StartDate: time.Date(start.Year(), time.September, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(start.Year()+1, time.August, 31, 0, 0, 0, 0, time.UTC),
	}
	yearCreated, err := s.schools.EnsureAcademicYear(ctx, &year)
	if err != nil {
		return SeedReport{}, err
	}
	if yearCreated {
		if err := s.schools.ActivateAcademicYear(ctx, school.ID, year.ID); err != nil {
			return SeedReport{}, err
		}
	}

	report := SeedReport{SchoolID: school.ID, AcademicYear: year.Year, YearCreated: yearCreated}
	for _, className := range seedClassNames {
		group := models.ClassGroup{
			SchoolID:       school.ID,
			AcademicYearID: year.ID,
			Name:           className,
			IsActive:       true,
		}
		groupCreated, err := s.schools.EnsureClassGroup(ctx, &group)
		if err != nil {
			return report, err
		}
		if groupCreated {
			report.ClassesCreated++
		}

		for _, sectionName := range seedSectionNames {
			section := models.Section{
				ClassGroupID: group.ID,
				Name:         sectionName,
				Capacity:     30,
				IsActive:     true,
			}
			sectionCreated, err := s.schools.EnsureSection(ctx, &section)
			if err != nil {
				return report, err
			}
			if sectionCreated {
				report.SectionsCreated++
			}
		}
	}

	s.logger.Info().
		Uint("school_id", school.ID).
		Str("academic_year", year.Year).
		Int("classes_created", report.ClassesCreated).
		Int("sections_created", report.SectionsCreated).
		Msg("school structure seeded")
	return report, nil
}
