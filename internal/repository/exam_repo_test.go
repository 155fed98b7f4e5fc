package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/scholaris-io/scholaris-api/internal/models"
)

func TestExamRepositoryFindByIDIsSchoolScoped(t *testing.T) {
	db := setupTestDB(t, &models.Exam{}, &models.ClassGroup{})
	repo := NewExamRepository(db)

	exam := models.Exam{SchoolID: 1, AcademicYearID: 1, Name: "Mid Term", ExamType: models.ExamTypeMidTerm, StartDate: time.Now(), EndDate: time.Now().Add(48 * time.Hour)}
	require.NoError(t, db.Create(&exam).Error)

	found, err := repo.FindByID(context.Background(), 1, exam.ID)
	require.NoError(t, err)
	require.Equal(t, "Mid Term", found.Name)

	_, err = repo.FindByID(context.Background(), 2, exam.ID)
	require.Error(t, err, "another school must not see the exam")
}

func TestExamRepositoryListFiltersAndPaginates(t *testing.T) {
	db := setupTestDB(t, &models.Exam{}, &models.ClassGroup{})
	repo := NewExamRepository(db)

	now := time.Now()
	for i, seed := range []struct {
		name     string
		examType string
	}{
		{"First Term Final", models.ExamTypeFinal},
		{"Unit Test One", models.ExamTypeUnitTest},
		{"Unit Test Two", models.ExamTypeUnitTest},
	} {
		exam := models.Exam{
			SchoolID:       1,
			AcademicYearID: 1,
			Name:           seed.name,
			ExamType:       seed.examType,
			StartDate:      now.Add(time.Duration(i) * 24 * time.Hour),
			EndDate:        now.Add(time.Duration(i+2) * 24 * time.Hour),
		}
		require.NoError(t, db.Create(&exam).Error)
	}

	exams, total, err := repo.List(context.Background(), 1, ExamFilter{ExamType: models.ExamTypeUnitTest, PageSize: 30})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, exams, 2)
	require.Equal(t, "Unit Test Two", exams[0].Name, "latest start date first")

	paged, total, err := repo.List(context.Background(), 1, ExamFilter{Page: 2, PageSize: 2})
	require.NoError(t, err)
	require.Equal(t, int64(3), total)
	require.Len(t, paged, 1)

	none, _, err := repo.List(context.Background(), 99, ExamFilter{PageSize: 30})
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestExamRepositorySaveResultsUpsertsOnTriple(t *testing.T) {
	db := setupTestDB(t, &models.Exam{}, &models.ExamResult{}, &models.Student{}, &models.Subject{}, &models.User{})
	repo := NewExamRepository(db)

	marks := 72.0
	first := models.ExamResult{ExamID: 1, StudentID: 5, SubjectID: 3, MarksObtained: &marks, MaxMarks: 100, Grade: "B+", Percentage: 72, IsPassed: true}
	require.NoError(t, repo.SaveResults(context.Background(), []models.ExamResult{first}))

	corrected := 88.0
	second := models.ExamResult{ExamID: 1, StudentID: 5, SubjectID: 3, MarksObtained: &corrected, MaxMarks: 100, Grade: "A", Percentage: 88, IsPassed: true}
	require.NoError(t, repo.SaveResults(context.Background(), []models.ExamResult{second}))

	var stored []models.ExamResult
	require.NoError(t, db.Where("exam_id = ?", 1).Find(&stored).Error)
	require.Len(t, stored, 1, "re-entry must overwrite, not duplicate")
	require.Equal(t, "A", stored[0].Grade)
	require.NotNil(t, stored[0].MarksObtained)
	require.Equal(t, 88.0, *stored[0].MarksObtained)
}

func TestExamRepositorySaveResultsOverwritesAbsentRow(t *testing.T) {
	db := setupTestDB(t, &models.ExamResult{})
	repo := NewExamRepository(db)

	marks := 40.0
	entered := models.ExamResult{ExamID: 2, StudentID: 9, SubjectID: 1, MarksObtained: &marks, MaxMarks: 100, Grade: "C", Percentage: 40, IsPassed: true}
	require.NoError(t, repo.SaveResults(context.Background(), []models.ExamResult{entered}))

	absent := models.ExamResult{ExamID: 2, StudentID: 9, SubjectID: 1, MarksObtained: nil, MaxMarks: 100, IsAbsent: true}
	require.NoError(t, repo.SaveResults(context.Background(), []models.ExamResult{absent}))

	var stored models.ExamResult
	require.NoError(t, db.Where("exam_id = ? AND student_id = ? AND subject_id = ?", 2, 9, 1).First(&stored).Error)
	require.True(t, stored.IsAbsent)
	require.Nil(t, stored.MarksObtained)
	require.False(t, stored.IsPassed)
}

func TestExamRepositoryDeleteRemovesResults(t *testing.T) {
	db := setupTestDB(t, &models.Exam{}, &models.ExamResult{}, &models.ClassGroup{})
	repo := NewExamRepository(db)

	exam := models.Exam{SchoolID: 1, AcademicYearID: 1, Name: "Annual", ExamType: models.ExamTypeAnnual, StartDate: time.Now(), EndDate: time.Now()}
	require.NoError(t, db.Create(&exam).Error)
	marks := 55.0
	require.NoError(t, db.Create(&models.ExamResult{ExamID: exam.ID, StudentID: 1, SubjectID: 1, MarksObtained: &marks, MaxMarks: 100}).Error)

	require.NoError(t, repo.Delete(context.Background(), 1, exam.ID))

	var count int64
	require.NoError(t, db.Model(&models.ExamResult{}).Where("exam_id = ?", exam.ID).Count(&count).Error)
	require.Zero(t, count)

	require.Error(t, repo.Delete(context.Background(), 1, exam.ID), "second delete should report not found")
}

func TestExamRepositoryResultsFiltersByScope(t *testing.T) {
	db := setupTestDB(t, &models.ExamResult{}, &models.Student{}, &models.Subject{}, &models.User{})
	repo := NewExamRepository(db)

	classA := seedStudent(t, db, 1, 1, 10, 100, "ama", "ADM-001")
	classB := seedStudent(t, db, 1, 1, 20, 200, "kofi", "ADM-002")

	for _, studentID := range []uint{classA.ID, classB.ID} {
		marks := 60.0
		require.NoError(t, db.Create(&models.ExamResult{ExamID: 7, StudentID: studentID, SubjectID: 3, MarksObtained: &marks, MaxMarks: 100}).Error)
	}

	scoped, err := repo.Results(context.Background(), ResultScope{ExamID: 7, ClassGroupID: 10})
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	require.Equal(t, classA.ID, scoped[0].StudentID)

	all, err := repo.Results(context.Background(), ResultScope{ExamID: 7})
	require.NoError(t, err)
	require.Len(t, all, 2)
}
