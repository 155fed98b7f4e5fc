package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/scholaris-io/scholaris-api/internal/dto"
	"github.com/scholaris-io/scholaris-api/internal/models"
	"github.com/scholaris-io/scholaris-api/internal/observability"
	"github.com/scholaris-io/scholaris-api/internal/repository"
)

// Message service sentinels. A message a viewer may not see reports not
// found, never forbidden.
var (
	ErrMessageNotFound     = errors.New("message not found")
	ErrRecipientNotFound   = errors.New("recipient not found")
	ErrMessageToSelf       = errors.New("cannot send a message to yourself")
	ErrMessageEmptyBody    = errors.New("message body empty after sanitization")
	ErrInvalidParentThread = errors.New("parent message is not part of your conversations")
)

// MessageService covers direct messaging between users of one school.
type MessageService interface {
	Send(ctx context.Context, scope Scope, payload dto.MessageSendRequest) (dto.MessageResponse, error)
	Inbox(ctx context.Context, scope Scope, query dto.MessageListQuery) ([]dto.MessageResponse, int64, int, error)
	Sent(ctx context.Context, scope Scope, query dto.MessageListQuery) ([]dto.MessageResponse, int64, int, error)
	Detail(ctx context.Context, scope Scope, id uint) (dto.MessageResponse, error)
	Delete(ctx context.Context, scope Scope, id uint) error
	ToggleStar(ctx context.Context, scope Scope, id uint, starred bool) (dto.MessageResponse, error)
	UnreadCount(ctx context.Context, scope Scope) (int64, error)
}

type messageService struct {
	messages      repository.MessageRepository
	users         repository.UserRepository
	notifications NotificationService
	validator     *validator.Validate
	logger        zerolog.Logger
	sanitizer     *bluemonday.Policy
}

// NewMessageService constructs the message service.
func NewMessageService(messages repository.MessageRepository, users repository.UserRepository, notifications NotificationService, validate *validator.Validate, logger zerolog.Logger) MessageService {
	return &messageService{
		messages:      messages,
		users:         users,
		notifications: notifications,
		validator:     validate,
		logger:        logger.With().Str("component", "message_service").Logger(),
		sanitizer:     bluemonday.StrictPolicy(),
	}
}

// Send delivers a message to another user of the same school and raises a
// notification for the recipient. The notification is best effort: a failure
// there never rolls the message back.
func (s *messageService) Send(ctx context.Context, scope Scope, payload dto.MessageSendRequest) (dto.MessageResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.MessageResponse{}, err
	}
	if payload.RecipientID == scope.UserID {
		return dto.MessageResponse{}, ErrMessageToSelf
	}

	recipient, err := s.users.FindInSchool(ctx, scope.SchoolID, payload.RecipientID)
	if err != nil {
		return dto.MessageResponse{}, ErrRecipientNotFound
	}

	body := strings.TrimSpace(s.sanitizer.Sanitize(payload.Body))
	if body == "" {
		return dto.MessageResponse{}, ErrMessageEmptyBody
	}

	if payload.ParentMessageID != nil {
		parent, err := s.messages.FindByID(ctx, *payload.ParentMessageID)
		if err != nil || !participant(parent, scope.UserID) || parent.SchoolID != scope.SchoolID {
			return dto.MessageResponse{}, ErrInvalidParentThread
		}
	}

	message := models.Message{
		SchoolID:        scope.SchoolID,
		SenderID:        scope.UserID,
		RecipientID:     recipient.ID,
		Subject:         strings.TrimSpace(payload.Subject),
		Body:            body,
		ParentMessageID: payload.ParentMessageID,
	}
	if err := s.messages.Create(ctx, &message); err != nil {
		return dto.MessageResponse{}, err
	}

	observability.MessagesSent().Inc()
	s.logger.Info().Uint("message_id", message.ID).Uint("recipient_id", recipient.ID).Msg("message sent")

	if s.notifications != nil {
		sender, err := s.users.FindByID(ctx, scope.UserID)
		senderName := "Someone"
		if err == nil {
			senderName = sender.FullName()
		}
		if _, err := s.notifications.Publish(ctx, models.Notification{
			RecipientID: recipient.ID,
			SchoolID:    scope.SchoolID,
			Type:        models.NotificationTypeMessage,
			Title:       "New message",
			Message:     fmt.Sprintf("%s sent you a message: %s", senderName, message.Subject),
			ActionURL:   fmt.Sprintf("/api/v1/messages/%d", message.ID),
		}); err != nil {
			s.logger.Warn().Err(err).Uint("message_id", message.ID).Msg("failed to notify recipient")
		}
	}

	return dto.NewMessageResponse(message), nil
}

func (s *messageService) Inbox(ctx context.Context, scope Scope, query dto.MessageListQuery) ([]dto.MessageResponse, int64, int, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, 0, 0, err
	}
	page := maxInt(query.Page, 1)
	messages, total, err := s.messages.Inbox(ctx, scope.UserID, repository.MessageFilter{
		Status:   query.Status,
		Search:   query.Search,
		Page:     page,
		PageSize: MessagePageSize,
	})
	if err != nil {
		return nil, 0, 0, err
	}
	return dto.NewMessageResponseSlice(messages), total, page, nil
}

func (s *messageService) Sent(ctx context.Context, scope Scope, query dto.MessageListQuery) ([]dto.MessageResponse, int64, int, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, 0, 0, err
	}
	page := maxInt(query.Page, 1)
	messages, total, err := s.messages.Sent(ctx, scope.UserID, repository.MessageFilter{
		Search:   query.Search,
		Page:     page,
		PageSize: MessagePageSize,
	})
	if err != nil {
		return nil, 0, 0, err
	}
	return dto.NewMessageResponseSlice(messages), total, page, nil
}

// Detail returns one message with its replies. Viewing as the recipient
// marks the message read; the transition is one way and keeps the first
// read timestamp.
func (s *messageService) Detail(ctx context.Context, scope Scope, id uint) (dto.MessageResponse, error) {
	message, err := s.visibleMessage(ctx, scope, id)
	if err != nil {
		return dto.MessageResponse{}, err
	}

	if message.RecipientID == scope.UserID && !message.IsRead {
		now := time.Now()
		message.IsRead = true
		message.ReadAt = &now
		if err := s.messages.Update(ctx, &message); err != nil {
			s.logger.Warn().Err(err).Uint("message_id", message.ID).Msg("failed to mark message read")
		}
	}

	response := dto.NewMessageResponse(message)
	if replies, err := s.messages.Replies(ctx, message.ID); err == nil {
		response.Replies = dto.NewMessageResponseSlice(replies)
	}
	return response, nil
}

// Delete hides the viewer's copy only. The row survives even when both
// parties have deleted it.
func (s *messageService) Delete(ctx context.Context, scope Scope, id uint) error {
	message, err := s.visibleMessage(ctx, scope, id)
	if err != nil {
		return err
	}

	switch scope.UserID {
	case message.SenderID:
		message.IsDeletedBySender = true
	case message.RecipientID:
		message.IsDeletedByRecipient = true
	}
	return s.messages.Update(ctx, &message)
}

// ToggleStar sets the star to the requested state. Repeating a request is a
// no-op, so retries cannot flip the flag back.
func (s *messageService) ToggleStar(ctx context.Context, scope Scope, id uint, starred bool) (dto.MessageResponse, error) {
	message, err := s.visibleMessage(ctx, scope, id)
	if err != nil {
		return dto.MessageResponse{}, err
	}

	if message.IsStarred != starred {
		message.IsStarred = starred
		if err := s.messages.Update(ctx, &message); err != nil {
			return dto.MessageResponse{}, err
		}
	}
	return dto.NewMessageResponse(message), nil
}

func (s *messageService) UnreadCount(ctx context.Context, scope Scope) (int64, error) {
	return s.messages.UnreadCount(ctx, scope.UserID)
}

// visibleMessage loads a message and applies the viewer predicate: the
// viewer must be a participant, in the same school, and must not have
// deleted their copy.
func (s *messageService) visibleMessage(ctx context.Context, scope Scope, id uint) (models.Message, error) {
	message, err := s.messages.FindByID(ctx, id)
	if err != nil {
		return models.Message{}, ErrMessageNotFound
	}
	if message.SchoolID != scope.SchoolID || !participant(message, scope.UserID) {
		return models.Message{}, ErrMessageNotFound
	}
	if message.SenderID == scope.UserID && message.IsDeletedBySender {
		return models.Message{}, ErrMessageNotFound
	}
	if message.RecipientID == scope.UserID && message.IsDeletedByRecipient {
		return models.Message{}, ErrMessageNotFound
	}
	return message, nil
}

func participant(message models.Message, userID uint) bool {
	return message.SenderID == userID || message.RecipientID == userID
}
