package repository

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/scholaris-io/scholaris-api/internal/models"
)

// setupTestDB opens an isolated in-memory database named after the test, so
// tests in this package never see each other's rows.
func setupTestDB(t *testing.T, entities ...interface{}) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(entities...))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, schoolID uint, username, role string) models.User {
	t.Helper()
	sid := schoolID
	user := models.User{
		SchoolID:     &sid,
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		FirstName:    username,
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedStudent(t *testing.T, db *gorm.DB, schoolID, yearID, classGroupID, sectionID uint, username, admission string) models.Student {
	t.Helper()
	user := seedUser(t, db, schoolID, username, models.RoleStudent)
	student := models.Student{
		UserID:          user.ID,
		SchoolID:        schoolID,
		AcademicYearID:  yearID,
		ClassGroupID:    classGroupID,
		SectionID:       sectionID,
		AdmissionNumber: admission,
		IsActive:        true,
	}
	require.NoError(t, db.Create(&student).Error)
	return student
}
