package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/scholaris-io/scholaris-api/internal/models"
)

// Message box statuses accepted by Inbox and Sent filters.
const (
	MessageStatusUnread  = "unread"
	MessageStatusRead    = "read"
	MessageStatusStarred = "starred"
)

// MessageFilter narrows inbox and sent listings.
type MessageFilter struct {
	Status   string
	Search   string
	Page     int
	PageSize int
}

// MessageRepository handles persistence for direct messages.
type MessageRepository interface {
	Inbox(ctx context.Context, recipientID uint, filter MessageFilter) ([]models.Message, int64, error)
	Sent(ctx context.Context, senderID uint, filter MessageFilter) ([]models.Message, int64, error)
	FindByID(ctx context.Context, id uint) (models.Message, error)
	Replies(ctx context.Context, parentID uint) ([]models.Message, error)
	Create(ctx context.Context, message *models.Message) error
	Update(ctx context.Context, message *models.Message) error
	UnreadCount(ctx context.Context, recipientID uint) (int64, error)
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository constructs a repository backed by GORM.
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Inbox(ctx context.Context, recipientID uint, filter MessageFilter) ([]models.Message, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("recipient_id = ? AND is_deleted_by_recipient = ?", recipientID, false)

	switch filter.Status {
	case MessageStatusUnread:
		query = query.Where("is_read = ?", false)
	case MessageStatusRead:
		query = query.Where("is_read = ?", true)
	case MessageStatusStarred:
		query = query.Where("is_starred = ?", true)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("subject LIKE ? OR body LIKE ?", pattern, pattern)
	}

	return r.page(query.Preload("Sender"), filter)
}

func (r *messageRepository) Sent(ctx context.Context, senderID uint, filter MessageFilter) ([]models.Message, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("sender_id = ? AND is_deleted_by_sender = ?", senderID, false)

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("subject LIKE ? OR body LIKE ?", pattern, pattern)
	}

	return r.page(query.Preload("Recipient"), filter)
}

func (r *messageRepository) page(query *gorm.DB, filter MessageFilter) ([]models.Message, int64, error) {
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

	var messages []models.Message
	if err := query.Order("created_at DESC").Find(&messages).Error; err != nil {
		return nil, 0, err
	}
	return messages, total, nil
}

func (r *messageRepository) FindByID(ctx context.Context, id uint) (models.Message, error) {
	var message models.Message
	if err := r.db.WithContext(ctx).
		Preload("Sender").Preload("Recipient").
		First(&message, id).Error; err != nil {
		return models.Message{}, err
	}
	return message, nil
}

func (r *messageRepository) Replies(ctx context.Context, parentID uint) ([]models.Message, error) {
	var replies []models.Message
	if err := r.db.WithContext(ctx).
		Preload("Sender").
		Where("parent_message_id = ?", parentID).
		Order("created_at").
		Find(&replies).Error; err != nil {
		return nil, err
	}
	return replies, nil
}

func (r *messageRepository) Create(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *messageRepository) Update(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Save(message).Error
}

func (r *messageRepository) UnreadCount(ctx context.Context, recipientID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("recipient_id = ? AND is_read = ? AND is_deleted_by_recipient = ?", recipientID, false, false).
		Count(&count).Error
	return count, err
}
