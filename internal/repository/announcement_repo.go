package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/scholaris-io/scholaris-api/internal/models"
)

// AnnouncementFilter narrows announcement listings.
type AnnouncementFilter struct {
	Priority string
	Audience string
	Page     int
	PageSize int
}

// AnnouncementRepository handles persistence for school announcements.
type AnnouncementRepository interface {
	List(ctx context.Context, schoolID uint, filter AnnouncementFilter) ([]models.Announcement, int64, error)
	FindByID(ctx context.Context, schoolID, id uint) (models.Announcement, error)
	Create(ctx context.Context, announcement *models.Announcement, classGroups []models.ClassGroup) error
	Update(ctx context.Context, announcement *models.Announcement, classGroups []models.ClassGroup) error
	Delete(ctx context.Context, schoolID, id uint) error
}

type announcementRepository struct {
	db *gorm.DB
}

// NewAnnouncementRepository constructs a repository backed by GORM.
func NewAnnouncementRepository(db *gorm.DB) AnnouncementRepository {
	return &announcementRepository{db: db}
}

// List returns every announcement of the school matching the filter, newest
// first. Visibility windows and audience matching are per-viewer concerns and
// are applied by the service layer.
func (r *announcementRepository) List(ctx context.Context, schoolID uint, filter AnnouncementFilter) ([]models.Announcement, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Announcement{}).
		Where("school_id = ?", schoolID)

	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}
	if filter.Audience != "" {
		query = query.Where("target_audience = ?", filter.Audience)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var announcements []models.Announcement
	if err := query.
		Preload("TargetClassGroups").
		Order("is_pinned DESC, publish_date DESC").
		Find(&announcements).Error; err != nil {
		return nil, 0, err
	}
	return announcements, total, nil
}

func (r *announcementRepository) FindByID(ctx context.Context, schoolID, id uint) (models.Announcement, error) {
	var announcement models.Announcement
	if err := r.db.WithContext(ctx).
		Preload("TargetClassGroups").
		Where("school_id = ? AND id = ?", schoolID, id).
		First(&announcement).Error; err != nil {
		return models.Announcement{}, err
	}
	return announcement, nil
}

func (r *announcementRepository) Create(ctx context.Context, announcement *models.Announcement, classGroups []models.ClassGroup) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("TargetClassGroups").Create(announcement).Error; err != nil {
			return err
		}
		if len(classGroups) == 0 {
			return nil
		}
		return tx.Model(announcement).Association("TargetClassGroups").Replace(classGroups)
	})
}

func (r *announcementRepository) Update(ctx context.Context, announcement *models.Announcement, classGroups []models.ClassGroup) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("TargetClassGroups").Save(announcement).Error; err != nil {
			return err
		}
		if classGroups == nil {
			return nil
		}
		return tx.Model(announcement).Association("TargetClassGroups").Replace(classGroups)
	})
}

func (r *announcementRepository) Delete(ctx context.Context, schoolID, id uint) error {
	result := r.db.WithContext(ctx).
		Where("school_id = ? AND id = ?", schoolID, id).
		Delete(&models.Announcement{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
