package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/scholaris-io/scholaris-api/internal/models"
)

func TestSchoolRepositoryActivateAcademicYearKeepsOneActive(t *testing.T) {
	db := setupTestDB(t, &models.School{}, &models.AcademicYear{})
	repo := NewSchoolRepository(db)

	first := models.AcademicYear{SchoolID: 1, Year: "2024-2025", IsActive: true}
	second := models.AcademicYear{SchoolID: 1, Year: "2025-2026"}
	other := models.AcademicYear{SchoolID: 2, Year: "2024-2025", IsActive: true}
	require.NoError(t, db.Create(&first).Error)
	require.NoError(t, db.Create(&second).Error)
	require.NoError(t, db.Create(&other).Error)

	require.NoError(t, repo.ActivateAcademicYear(context.Background(), 1, second.ID))

	active, err := repo.ActiveAcademicYear(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, "2025-2026", active.Year)

	var count int64
	require.NoError(t, db.Model(&models.AcademicYear{}).Where("school_id = ? AND is_active = ?", 1, true).Count(&count).Error)
	require.Equal(t, int64(1), count)

	// Activation must not reach into another school's years.
	otherActive, err := repo.ActiveAcademicYear(context.Background(), 2)
	require.NoError(t, err)
	require.Equal(t, other.ID, otherActive.ID)
}

func TestSchoolRepositoryEnsureAcademicYearIsIdempotent(t *testing.T) {
	db := setupTestDB(t, &models.AcademicYear{})
	repo := NewSchoolRepository(db)

	year := models.AcademicYear{SchoolID: 1, Year: "2025-2026", StartDate: time.Now()}
	created, err := repo.EnsureAcademicYear(context.Background(), &year)
	require.NoError(t, err)
	require.True(t, created)
	require.NotZero(t, year.ID)

	again := models.AcademicYear{SchoolID: 1, Year: "2025-2026"}
	created, err = repo.EnsureAcademicYear(context.Background(), &again)
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, year.ID, again.ID, "second call returns the existing row")
}

func TestSchoolRepositoryEnsureClassGroupAndSection(t *testing.T) {
	db := setupTestDB(t, &models.ClassGroup{}, &models.Section{})
	repo := NewSchoolRepository(db)

	group := models.ClassGroup{SchoolID: 1, AcademicYearID: 1, Name: "JHS 2", IsActive: true}
	created, err := repo.EnsureClassGroup(context.Background(), &group)
	require.NoError(t, err)
	require.True(t, created)

	duplicate := models.ClassGroup{SchoolID: 1, AcademicYearID: 1, Name: "JHS 2"}
	created, err = repo.EnsureClassGroup(context.Background(), &duplicate)
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, group.ID, duplicate.ID)

	section := models.Section{ClassGroupID: group.ID, Name: "A", Capacity: 30, IsActive: true}
	created, err = repo.EnsureSection(context.Background(), &section)
	require.NoError(t, err)
	require.True(t, created)

	sections, err := repo.SectionsByClassGroup(context.Background(), group.ID)
	require.NoError(t, err)
	require.Len(t, sections, 1)
}

func TestSchoolRepositoryFindBySubdomainSkipsInactive(t *testing.T) {
	db := setupTestDB(t, &models.School{})
	repo := NewSchoolRepository(db)

	active := models.School{Name: "Accra Academy", Subdomain: "accra", IsActive: true}
	dormant := models.School{Name: "Closed School", Subdomain: "closed", IsActive: false}
	require.NoError(t, db.Create(&active).Error)
	require.NoError(t, db.Create(&dormant).Error)

	found, err := repo.FindBySubdomain(context.Background(), "accra")
	require.NoError(t, err)
	require.Equal(t, active.ID, found.ID)

	_, err = repo.FindBySubdomain(context.Background(), "closed")
	require.Error(t, err)
}
