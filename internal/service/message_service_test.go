package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/scholaris-io/scholaris-api/internal/dto"
	"github.com/scholaris-io/scholaris-api/internal/models"
	"github.com/scholaris-io/scholaris-api/internal/repository"
)

type messageRepoStub struct {
	repository.MessageRepository

	messages []models.Message
	updates  int
}

func (m *messageRepoStub) FindByID(_ context.Context, id uint) (models.Message, error) {
	for _, message := range m.messages {
		if message.ID == id {
			return message, nil
		}
	}
	return models.Message{}, gorm.ErrRecordNotFound
}

func (m *messageRepoStub) Replies(_ context.Context, parentID uint) ([]models.Message, error) {
	var out []models.Message
	for _, message := range m.messages {
		if message.ParentMessageID != nil && *message.ParentMessageID == parentID {
			out = append(out, message)
		}
	}
	return out, nil
}

func (m *messageRepoStub) Create(_ context.Context, message *models.Message) error {
	message.ID = uint(len(m.messages) + 1)
	m.messages = append(m.messages, *message)
	return nil
}

func (m *messageRepoStub) Update(_ context.Context, message *models.Message) error {
	m.updates++
	for i := range m.messages {
		if m.messages[i].ID == message.ID {
			m.messages[i] = *message
		}
	}
	return nil
}

type notificationPublisherStub struct {
	NotificationService

	published []models.Notification
}

func (n *notificationPublisherStub) Publish(_ context.Context, notification models.Notification) (dto.NotificationResponse, error) {
	n.published = append(n.published, notification)
	return dto.NewNotificationResponse(notification), nil
}

func (n *notificationPublisherStub) PublishBatch(_ context.Context, notifications []models.Notification) error {
	n.published = append(n.published, notifications...)
	return nil
}

func newMessageService(repo *messageRepoStub, notifications *notificationPublisherStub) MessageService {
	schoolID := uint(1)
	otherSchoolID := uint(2)
	users := &userRepoStub{users: map[uint]models.User{
		1: {ID: 1, SchoolID: &schoolID, Username: "ama", FirstName: "Ama", LastName: "Mensah", IsActive: true},
		2: {ID: 2, SchoolID: &schoolID, Username: "kofi", FirstName: "Kofi", LastName: "Boateng", IsActive: true},
		3: {ID: 3, SchoolID: &otherSchoolID, Username: "efua", FirstName: "Efua", LastName: "Owusu", IsActive: true},
	}}
	var publisher NotificationService
	if notifications != nil {
		publisher = notifications
	}
	return NewMessageService(repo, users, publisher, testValidator(), testLogger())
}

func TestMessageSendNotifiesRecipient(t *testing.T) {
	repo := &messageRepoStub{}
	notifications := &notificationPublisherStub{}
	svc := newMessageService(repo, notifications)

	sent, err := svc.Send(context.Background(), Scope{SchoolID: 1, UserID: 1}, dto.MessageSendRequest{
		RecipientID: 2,
		Subject:     "Homework",
		Body:        "Please check the homework <b>today</b>.",
	})
	require.NoError(t, err)
	require.Equal(t, uint(1), sent.SenderID)
	require.Equal(t, uint(2), sent.RecipientID)
	require.NotContains(t, sent.Body, "<b>")

	require.Len(t, notifications.published, 1)
	require.Equal(t, uint(2), notifications.published[0].RecipientID)
	require.Equal(t, models.NotificationTypeMessage, notifications.published[0].Type)
	require.Contains(t, notifications.published[0].Message, "Ama Mensah")
}

func TestMessageSendRejectsSelfAndCrossSchool(t *testing.T) {
	svc := newMessageService(&messageRepoStub{}, nil)

	_, err := svc.Send(context.Background(), Scope{SchoolID: 1, UserID: 1}, dto.MessageSendRequest{
		RecipientID: 1, Subject: "hi", Body: "hi",
	})
	require.ErrorIs(t, err, ErrMessageToSelf)

	_, err = svc.Send(context.Background(), Scope{SchoolID: 1, UserID: 1}, dto.MessageSendRequest{
		RecipientID: 3, Subject: "hi", Body: "hi",
	})
	require.ErrorIs(t, err, ErrRecipientNotFound)
}

func TestMessageSendValidatesParentThread(t *testing.T) {
	parentID := uint(1)
	repo := &messageRepoStub{messages: []models.Message{
		{ID: 1, SchoolID: 1, SenderID: 7, RecipientID: 8, Subject: "private", Body: "x"},
	}}
	svc := newMessageService(repo, nil)

	_, err := svc.Send(context.Background(), Scope{SchoolID: 1, UserID: 1}, dto.MessageSendRequest{
		RecipientID:     2,
		Subject:         "Re: private",
		Body:            "reply",
		ParentMessageID: &parentID,
	})
	require.ErrorIs(t, err, ErrInvalidParentThread)
}

func TestMessageDetailMarksReadOnce(t *testing.T) {
	firstRead := time.Now().Add(-time.Hour)
	repo := &messageRepoStub{messages: []models.Message{
		{ID: 1, SchoolID: 1, SenderID: 1, RecipientID: 2, Subject: "a", Body: "x"},
		{ID: 2, SchoolID: 1, SenderID: 1, RecipientID: 2, Subject: "b", Body: "x", IsRead: true, ReadAt: &firstRead},
	}}
	svc := newMessageService(repo, nil)
	scope := Scope{SchoolID: 1, UserID: 2}

	detail, err := svc.Detail(context.Background(), scope, 1)
	require.NoError(t, err)
	require.True(t, detail.IsRead)
	require.NotNil(t, detail.ReadAt)
	require.Equal(t, 1, repo.updates)

	// Already-read messages keep their original timestamp untouched.
	detail, err = svc.Detail(context.Background(), scope, 2)
	require.NoError(t, err)
	require.Equal(t, 1, repo.updates)
	require.Equal(t, firstRead.Unix(), detail.ReadAt.Unix())
}

func TestMessageDetailIncludesReplies(t *testing.T) {
	parentID := uint(1)
	repo := &messageRepoStub{messages: []models.Message{
		{ID: 1, SchoolID: 1, SenderID: 1, RecipientID: 2, Subject: "thread", Body: "x", IsRead: true},
		{ID: 2, SchoolID: 1, SenderID: 2, RecipientID: 1, Subject: "Re: thread", Body: "y", ParentMessageID: &parentID},
	}}
	svc := newMessageService(repo, nil)

	detail, err := svc.Detail(context.Background(), Scope{SchoolID: 1, UserID: 1}, 1)
	require.NoError(t, err)
	require.Len(t, detail.Replies, 1)
	require.Equal(t, "Re: thread", detail.Replies[0].Subject)
}

func TestMessageDeleteHidesOnlyOwnCopy(t *testing.T) {
	repo := &messageRepoStub{messages: []models.Message{
		{ID: 1, SchoolID: 1, SenderID: 1, RecipientID: 2, Subject: "a", Body: "x", IsRead: true},
	}}
	svc := newMessageService(repo, nil)

	require.NoError(t, svc.Delete(context.Background(), Scope{SchoolID: 1, UserID: 1}, 1))
	require.True(t, repo.messages[0].IsDeletedBySender)
	require.False(t, repo.messages[0].IsDeletedByRecipient)

	// The sender can no longer see it, the recipient still can.
	_, err := svc.Detail(context.Background(), Scope{SchoolID: 1, UserID: 1}, 1)
	require.ErrorIs(t, err, ErrMessageNotFound)
	_, err = svc.Detail(context.Background(), Scope{SchoolID: 1, UserID: 2}, 1)
	require.NoError(t, err)
}

func TestMessageVisibilityPredicate(t *testing.T) {
	repo := &messageRepoStub{messages: []models.Message{
		{ID: 1, SchoolID: 1, SenderID: 1, RecipientID: 2, Subject: "a", Body: "x"},
	}}
	svc := newMessageService(repo, nil)

	// Non-participants and other schools both report not found.
	_, err := svc.Detail(context.Background(), Scope{SchoolID: 1, UserID: 9}, 1)
	require.ErrorIs(t, err, ErrMessageNotFound)
	_, err = svc.Detail(context.Background(), Scope{SchoolID: 2, UserID: 1}, 1)
	require.ErrorIs(t, err, ErrMessageNotFound)
}

func TestMessageToggleStarIsIdempotent(t *testing.T) {
	repo := &messageRepoStub{messages: []models.Message{
		{ID: 1, SchoolID: 1, SenderID: 1, RecipientID: 2, Subject: "a", Body: "x", IsRead: true},
	}}
	svc := newMessageService(repo, nil)
	scope := Scope{SchoolID: 1, UserID: 1}

	starred, err := svc.ToggleStar(context.Background(), scope, 1, true)
	require.NoError(t, err)
	require.True(t, starred.IsStarred)
	require.Equal(t, 1, repo.updates)

	// Repeating the same desired state writes nothing.
	starred, err = svc.ToggleStar(context.Background(), scope, 1, true)
	require.NoError(t, err)
	require.True(t, starred.IsStarred)
	require.Equal(t, 1, repo.updates)
}
