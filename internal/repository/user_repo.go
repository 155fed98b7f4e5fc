package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/scholaris-io/scholaris-api/internal/models"
)

// UserRepository handles persistence for user accounts.
type UserRepository interface {
	FindByID(ctx context.Context, id uint) (models.User, error)
	FindByLogin(ctx context.Context, usernameOrEmail string) (models.User, error)
	FindInSchool(ctx context.Context, schoolID, id uint) (models.User, error)
	Create(ctx context.Context, user *models.User) error
	ListBySchoolAndRoles(ctx context.Context, schoolID uint, roles []string) ([]models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository constructs a repository backed by GORM.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *userRepository) FindByLogin(ctx context.Context, usernameOrEmail string) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).
		Where("(username = ? OR email = ?) AND is_active = ?", usernameOrEmail, usernameOrEmail, true).
		First(&user).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *userRepository) FindInSchool(ctx context.Context, schoolID, id uint) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).
		Where("school_id = ? AND id = ? AND is_active = ?", schoolID, id, true).
		First(&user).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) ListBySchoolAndRoles(ctx context.Context, schoolID uint, roles []string) ([]models.User, error) {
	query := r.db.WithContext(ctx).
		Where("school_id = ? AND is_active = ?", schoolID, true)
	if len(roles) > 0 {
		query = query.Where("role IN ?", roles)
	}

	var users []models.User
	if err := query.Order("last_name, first_name").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
