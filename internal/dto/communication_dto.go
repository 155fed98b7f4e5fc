package dto

import (
	"time"

	"github.com/scholaris-io/scholaris-api/internal/models"
)

// AnnouncementCreateRequest publishes a notice to an audience.
type AnnouncementCreateRequest struct {
	Title         string     `json:"title" validate:"required,min=3,max=200"`
	Body          string     `json:"body" validate:"required,min=1,max=20000"`
	Priority      string     `json:"priority" validate:"omitempty,oneof=low normal high urgent"`
	Audience      string     `json:"audience" validate:"omitempty,oneof=all students parents teachers staff specific_classes"`
	ClassGroupIDs []uint     `json:"class_group_ids" validate:"omitempty,dive,required"`
	IsPublished   bool       `json:"is_published"`
	PublishDate   *time.Time `json:"publish_date"`
	ExpiryDate    *time.Time `json:"expiry_date"`
	IsPinned      bool       `json:"is_pinned"`
}

// AnnouncementUpdateRequest edits a notice. Nil fields are left unchanged.
type AnnouncementUpdateRequest struct {
	Title         *string    `json:"title" validate:"omitempty,min=3,max=200"`
	Body          *string    `json:"body" validate:"omitempty,min=1,max=20000"`
	Priority      *string    `json:"priority" validate:"omitempty,oneof=low normal high urgent"`
	Audience      *string    `json:"audience" validate:"omitempty,oneof=all students parents teachers staff specific_classes"`
	ClassGroupIDs []uint     `json:"class_group_ids" validate:"omitempty,dive,required"`
	IsPublished   *bool      `json:"is_published"`
	PublishDate   *time.Time `json:"publish_date"`
	ExpiryDate    *time.Time `json:"expiry_date"`
	IsPinned      *bool      `json:"is_pinned"`
}

// AnnouncementListQuery filters the announcement feed.
type AnnouncementListQuery struct {
	Priority string `query:"priority" validate:"omitempty,oneof=low normal high urgent"`
	Page     int    `query:"page" validate:"omitempty,min=1"`
}

// AnnouncementResponse is the serialized representation of an announcement.
type AnnouncementResponse struct {
	ID            uint       `json:"id"`
	Title         string     `json:"title"`
	Body          string     `json:"body"`
	Priority      string     `json:"priority"`
	Audience      string     `json:"audience"`
	ClassGroupIDs []uint     `json:"class_group_ids,omitempty"`
	IsPublished   bool       `json:"is_published"`
	PublishDate   *time.Time `json:"publish_date,omitempty"`
	ExpiryDate    *time.Time `json:"expiry_date,omitempty"`
	IsPinned      bool       `json:"is_pinned"`
	CreatedAt     time.Time  `json:"created_at"`
}

// NewAnnouncementResponse converts a model into a DTO.
func NewAnnouncementResponse(announcement models.Announcement) AnnouncementResponse {
	response := AnnouncementResponse{
		ID:          announcement.ID,
		Title:       announcement.Title,
		Body:        announcement.Body,
		Priority:    announcement.Priority,
		Audience:    announcement.TargetAudience,
		IsPublished: announcement.IsPublished,
		PublishDate: announcement.PublishDate,
		ExpiryDate:  announcement.ExpiryDate,
		IsPinned:    announcement.IsPinned,
		CreatedAt:   announcement.CreatedAt,
	}
	for _, group := range announcement.TargetClassGroups {
		response.ClassGroupIDs = append(response.ClassGroupIDs, group.ID)
	}
	return response
}

// NewAnnouncementResponseSlice converts a slice of models into DTOs.
func NewAnnouncementResponseSlice(announcements []models.Announcement) []AnnouncementResponse {
	out := make([]AnnouncementResponse, 0, len(announcements))
	for _, announcement := range announcements {
		out = append(out, NewAnnouncementResponse(announcement))
	}
	return out
}

// MessageSendRequest sends a direct message to another user of the school.
type MessageSendRequest struct {
	RecipientID     uint   `json:"recipient_id" validate:"required"`
	Subject         string `json:"subject" validate:"required,min=1,max=200"`
	Body            string `json:"body" validate:"required,min=1,max=20000"`
	ParentMessageID *uint  `json:"parent_message_id"`
}

// MessageListQuery filters the inbox or sent box.
type MessageListQuery struct {
	Status string `query:"status" validate:"omitempty,oneof=unread read starred"`
	Search string `query:"search" validate:"omitempty,max=100"`
	Page   int    `query:"page" validate:"omitempty,min=1"`
}

// MessageResponse is the serialized representation of a message.
type MessageResponse struct {
	ID              uint              `json:"id"`
	SenderID        uint              `json:"sender_id"`
	SenderName      string            `json:"sender_name,omitempty"`
	RecipientID     uint              `json:"recipient_id"`
	RecipientName   string            `json:"recipient_name,omitempty"`
	Subject         string            `json:"subject"`
	Body            string            `json:"body"`
	ParentMessageID *uint             `json:"parent_message_id,omitempty"`
	IsRead          bool              `json:"is_read"`
	ReadAt          *time.Time        `json:"read_at,omitempty"`
	IsStarred       bool              `json:"is_starred"`
	CreatedAt       time.Time         `json:"created_at"`
	Replies         []MessageResponse `json:"replies,omitempty"`
}

// NewMessageResponse converts a model into a DTO, using the Sender and
// Recipient associations when preloaded.
func NewMessageResponse(message models.Message) MessageResponse {
	response := MessageResponse{
		ID:              message.ID,
		SenderID:        message.SenderID,
		RecipientID:     message.RecipientID,
		Subject:         message.Subject,
		Body:            message.Body,
		ParentMessageID: message.ParentMessageID,
		IsRead:          message.IsRead,
		ReadAt:          message.ReadAt,
		IsStarred:       message.IsStarred,
		CreatedAt:       message.CreatedAt,
	}
	if message.Sender.ID != 0 {
		response.SenderName = message.Sender.FullName()
	}
	if message.Recipient.ID != 0 {
		response.RecipientName = message.Recipient.FullName()
	}
	return response
}

// NewMessageResponseSlice converts a slice of models into DTOs.
func NewMessageResponseSlice(messages []models.Message) []MessageResponse {
	out := make([]MessageResponse, 0, len(messages))
	for _, message := range messages {
		out = append(out, NewMessageResponse(message))
	}
	return out
}

// NotificationListQuery filters the notification feed.
type NotificationListQuery struct {
	UnreadOnly bool   `query:"unread_only"`
	Type       string `query:"type" validate:"omitempty,oneof=announcement message attendance fee exam result system"`
	Page       int    `query:"page" validate:"omitempty,min=1"`
}

// NotificationResponse is the serialized representation of a notification.
type NotificationResponse struct {
	ID        uint       `json:"id"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	ActionURL string     `json:"action_url,omitempty"`
	IsRead    bool       `json:"is_read"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// NewNotificationResponse converts a model into a DTO.
func NewNotificationResponse(notification models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        notification.ID,
		Type:      notification.Type,
		Title:     notification.Title,
		Message:   notification.Message,
		ActionURL: notification.ActionURL,
		IsRead:    notification.IsRead,
		ReadAt:    notification.ReadAt,
		CreatedAt: notification.CreatedAt,
	}
}

// NewNotificationResponseSlice converts a slice of models into DTOs.
func NewNotificationResponseSlice(notifications []models.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(notifications))
	for _, notification := range notifications {
		out = append(out, NewNotificationResponse(notification))
	}
	return out
}
