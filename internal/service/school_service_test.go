package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scholaris-io/scholaris-api/internal/models"
)

func newSchoolFixture() (*schoolRepoStub, SchoolService) {
	repo := &schoolRepoStub{
		school: models.School{ID: 1, Name: "Accra Model School", Subdomain: "accra-model", IsActive: true},
		year:   models.AcademicYear{ID: 3, SchoolID: 1, Year: "2025-2026", IsActive: true},
		groups: map[uint]models.ClassGroup{
			10: {ID: 10, SchoolID: 1, AcademicYearID: 3, Name: "Class 4"},
			11: {ID: 11, SchoolID: 1, AcademicYearID: 2, Name: "Class 4"},
			12: {ID: 12, SchoolID: 2, AcademicYearID: 3, Name: "Class 4"},
		},
		sections: []models.Section{
			{ID: 100, ClassGroupID: 10, Name: "A", Capacity: 30},
			{ID: 101, ClassGroupID: 10, Name: "B", Capacity: 30},
		},
		subjects: map[uint]models.Subject{
			20: {ID: 20, SchoolID: 1, Name: "Mathematics", Code: "MATH", TotalMarks: 100, PassingMarks: 40, IsActive: true},
			21: {ID: 21, SchoolID: 1, Name: "Science", Code: "SCI", TotalMarks: 100, PassingMarks: 40, IsActive: false},
		},
	}
	return repo, NewSchoolService(repo, testLogger())
}

func TestSchoolProfile(t *testing.T) {
	_, svc := newSchoolFixture()
	scope := Scope{SchoolID: 1, AcademicYearID: 3}

	profile, err := svc.Profile(context.Background(), scope)
	require.NoError(t, err)

	require.Equal(t, "accra-model", profile.School.Subdomain)
	require.Equal(t, "2025-2026", profile.AcademicYear.Year)
	require.True(t, profile.AcademicYear.IsActive)

	// Only the current year's class group of this school, with its sections.
	require.Len(t, profile.ClassGroups, 1)
	require.Equal(t, uint(10), profile.ClassGroups[0].ID)
	require.Len(t, profile.ClassGroups[0].Sections, 2)

	// Inactive subjects stay out of the profile.
	require.Len(t, profile.Subjects, 1)
	require.Equal(t, "MATH", profile.Subjects[0].Code)
}

func TestSchoolProfileUnknownSchool(t *testing.T) {
	_, svc := newSchoolFixture()

	_, err := svc.Profile(context.Background(), Scope{SchoolID: 9, AcademicYearID: 3})
	require.ErrorIs(t, err, ErrSchoolNotFound)
}
