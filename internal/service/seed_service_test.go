package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/scholaris-io/scholaris-api/internal/models"
	"github.com/scholaris-io/scholaris-api/internal/repository"
)

type seedSchoolRepoStub struct {
	repository.SchoolRepository

	school       models.School
	years        []models.AcademicYear
	groups       []models.ClassGroup
	sections     []models.Section
	activeYearID uint
}

func (s *seedSchoolRepoStub) FindBySubdomain(_ context.Context, subdomain string) (models.School, error) {
	if s.school.Subdomain != subdomain {
		return models.School{}, gorm.ErrRecordNotFound
	}
	return s.school, nil
}

func (s *seedSchoolRepoStub) EnsureAcademicYear(_ context.Context, year *models.AcademicYear) (bool, error) {
	for _, existing := range s.years {
		if existing.SchoolID == year.SchoolID && existing.Year == year.Year {
			*year = existing
			return false, nil
		}
	}
	year.ID = uint(len(s.years) + 1)
	s.years = append(s.years, *year)
	return true, nil
}

func (s *seedSchoolRepoStub) ActivateAcademicYear(_ context.Context, schoolID, yearID uint) error {
	s.activeYearID = yearID
	return nil
}

func (s *seedSchoolRepoStub) EnsureClassGroup(_ context.Context, group *models.ClassGroup) (bool, error) {
	for _, existing := range s.groups {
		if existing.SchoolID == group.SchoolID && existing.AcademicYearID == group.AcademicYearID && existing.Name == group.Name {
			*group = existing
			return false, nil
		}
	}
	group.ID = uint(len(s.groups) + 1)
	s.groups = append(s.groups, *group)
	return true, nil
}

func (s *seedSchoolRepoStub) EnsureSection(_ context.Context, section *models.Section) (bool, error) {
	for _, existing := range s.sections {
		if existing.ClassGroupID == section.ClassGroupID && existing.Name == section.Name {
			*section = existing
			return false, nil
		}
	}
	section.ID = uint(len(s.sections) + 1)
	s.sections = append(s.sections, *section)
	return true, nil
}

func TestSeedSchoolCreatesFullStructure(t *testing.T) {
	schools := &seedSchoolRepoStub{school: models.School{ID: 1, Name: "Sunrise Academy", Subdomain: "sunrise"}}
	svc := NewSeedService(schools, testLogger())

	report, err := svc.SeedSchool(context.Background(), "sunrise", "2025-2026")
	require.NoError(t, err)
	require.Equal(t, uint(1), report.SchoolID)
	require.Equal(t, "2025-2026", report.AcademicYear)
	require.True(t, report.YearCreated)
	require.Equal(t, 14, report.ClassesCreated)
	require.Equal(t, 42, report.SectionsCreated)
	require.Equal(t, schools.years[0].ID, schools.activeYearID, "a newly created year becomes the active one")
}

func TestSeedSchoolIsIdempotent(t *testing.T) {
	schools := &seedSchoolRepoStub{school: models.School{ID: 1, Name: "Sunrise Academy", Subdomain: "sunrise"}}
	svc := NewSeedService(schools, testLogger())

	_, err := svc.SeedSchool(context.Background(), "sunrise", "2025-2026")
	require.NoError(t, err)

	report, err := svc.SeedSchool(context.Background(), "sunrise", "2025-2026")
	require.NoError(t, err)
	require.False(t, report.YearCreated)
	require.Zero(t, report.ClassesCreated)
	require.Zero(t, report.SectionsCreated)
	require.Len(t, schools.groups, 14)
	require.Len(t, schools.sections, 42)
}

func TestSeedSchoolUnknownSubdomain(t *testing.T) {
	schools := &seedSchoolRepoStub{school: models.School{ID: 1, Subdomain: "sunrise"}}
	svc := NewSeedService(schools, testLogger())

	_, err := svc.SeedSchool(context.Background(), "nowhere", "")
	require.ErrorIs(t, err, ErrSeedSchoolNotFound)
}
