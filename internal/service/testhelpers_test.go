package service

import (
	"context"
	"io"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/scholaris-io/scholaris-api/internal/models"
	"github.com/scholaris-io/scholaris-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func testValidator() *validator.Validate {
	return validator.New()
}

// schoolRepoStub serves the class hierarchy lookups services depend on.
// Unimplemented methods panic through the embedded interface.
type schoolRepoStub struct {
	repository.SchoolRepository

	school   models.School
	year     models.AcademicYear
	subjects map[uint]models.Subject
	groups   map[uint]models.ClassGroup
	sections []models.Section
}

func (s *schoolRepoStub) FindByID(_ context.Context, id uint) (models.School, error) {
	if s.school.ID != id {
		return models.School{}, gorm.ErrRecordNotFound
	}
	return s.school, nil
}

func (s *schoolRepoStub) ActiveAcademicYear(_ context.Context, schoolID uint) (models.AcademicYear, error) {
	if s.year.SchoolID != schoolID {
		return models.AcademicYear{}, gorm.ErrRecordNotFound
	}
	return s.year, nil
}

func (s *schoolRepoStub) ClassGroups(_ context.Context, schoolID uint, academicYearID uint) ([]models.ClassGroup, error) {
	var out []models.ClassGroup
	for _, group := range s.groups {
		if group.SchoolID != schoolID {
			continue
		}
		if academicYearID != 0 && group.AcademicYearID != academicYearID {
			continue
		}
		out = append(out, group)
	}
	return out, nil
}

func (s *schoolRepoStub) Subjects(_ context.Context, schoolID uint) ([]models.Subject, error) {
	var out []models.Subject
	for _, subject := range s.subjects {
		if subject.SchoolID == schoolID && subject.IsActive {
			out = append(out, subject)
		}
	}
	return out, nil
}

func (s *schoolRepoStub) FindSubject(_ context.Context, schoolID, id uint) (models.Subject, error) {
	subject, ok := s.subjects[id]
	if !ok || subject.SchoolID != schoolID {
		return models.Subject{}, gorm.ErrRecordNotFound
	}
	return subject, nil
}

func (s *schoolRepoStub) ClassGroupsByIDs(_ context.Context, schoolID uint, ids []uint) ([]models.ClassGroup, error) {
	var out []models.ClassGroup
	for _, id := range ids {
		if group, ok := s.groups[id]; ok && group.SchoolID == schoolID {
			out = append(out, group)
		}
	}
	return out, nil
}

func (s *schoolRepoStub) SectionsByClassGroup(_ context.Context, classGroupID uint) ([]models.Section, error) {
	var out []models.Section
	for _, section := range s.sections {
		if section.ClassGroupID == classGroupID {
			out = append(out, section)
		}
	}
	return out, nil
}

// studentRepoStub serves roster lookups keyed by student and user ID.
type studentRepoStub struct {
	repository.StudentRepository

	students     []models.Student
	sectionCount int64
	created      []models.Student
}

func (s *studentRepoStub) ListByClassSection(_ context.Context, schoolID, classGroupID, sectionID uint) ([]models.Student, error) {
	var out []models.Student
	for _, student := range s.students {
		if student.SchoolID == schoolID && student.ClassGroupID == classGroupID && student.SectionID == sectionID {
			out = append(out, student)
		}
	}
	return out, nil
}

func (s *studentRepoStub) FindByUserID(_ context.Context, userID uint) (models.Student, error) {
	for _, student := range s.students {
		if student.UserID == userID {
			return student, nil
		}
	}
	return models.Student{}, gorm.ErrRecordNotFound
}

func (s *studentRepoStub) FindByID(_ context.Context, schoolID, id uint) (models.Student, error) {
	for _, student := range s.students {
		if student.ID == id && student.SchoolID == schoolID {
			return student, nil
		}
	}
	return models.Student{}, gorm.ErrRecordNotFound
}

func (s *studentRepoStub) CountBySection(_ context.Context, _ uint) (int64, error) {
	return s.sectionCount, nil
}

func (s *studentRepoStub) Create(_ context.Context, student *models.Student) error {
	student.ID = uint(len(s.created) + 1)
	s.created = append(s.created, *student)
	return nil
}

func (s *studentRepoStub) Update(_ context.Context, student *models.Student) error {
	for i := range s.students {
		if s.students[i].ID == student.ID {
			s.students[i] = *student
		}
	}
	return nil
}

// userRepoStub serves account lookups.
type userRepoStub struct {
	repository.UserRepository

	users   map[uint]models.User
	created []models.User
}

func (u *userRepoStub) FindByID(_ context.Context, id uint) (models.User, error) {
	user, ok := u.users[id]
	if !ok {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (u *userRepoStub) FindInSchool(_ context.Context, schoolID, id uint) (models.User, error) {
	user, ok := u.users[id]
	if !ok || user.SchoolID == nil || *user.SchoolID != schoolID || !user.IsActive {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (u *userRepoStub) FindByLogin(_ context.Context, login string) (models.User, error) {
	for _, user := range u.users {
		if (user.Username == login || user.Email == login) && user.IsActive {
			return user, nil
		}
	}
	return models.User{}, gorm.ErrRecordNotFound
}

func (u *userRepoStub) Create(_ context.Context, user *models.User) error {
	user.ID = uint(len(u.users) + len(u.created) + 1)
	u.created = append(u.created, *user)
	return nil
}
