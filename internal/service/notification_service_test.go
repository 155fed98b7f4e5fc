package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/scholaris-io/scholaris-api/internal/dto"
	"github.com/scholaris-io/scholaris-api/internal/models"
	"github.com/scholaris-io/scholaris-api/internal/repository"
)

type notificationRepoStub struct {
	repository.NotificationRepository

	notifications []models.Notification
}

func (n *notificationRepoStub) Create(_ context.Context, notification *models.Notification) error {
	notification.ID = uint(len(n.notifications) + 1)
	notification.CreatedAt = time.Now()
	n.notifications = append(n.notifications, *notification)
	return nil
}

func (n *notificationRepoStub) CreateBatch(_ context.Context, notifications []models.Notification) error {
	for i := range notifications {
		notifications[i].ID = uint(len(n.notifications) + 1)
		n.notifications = append(n.notifications, notifications[i])
	}
	return nil
}

func (n *notificationRepoStub) FindByID(_ context.Context, recipientID, id uint) (models.Notification, error) {
	for _, notification := range n.notifications {
		if notification.ID == id && notification.RecipientID == recipientID {
			return notification, nil
		}
	}
	return models.Notification{}, gorm.ErrRecordNotFound
}

func (n *notificationRepoStub) MarkRead(_ context.Context, recipientID, id uint) error {
	for i := range n.notifications {
		if n.notifications[i].ID == id && n.notifications[i].RecipientID == recipientID {
			if !n.notifications[i].IsRead {
				now := time.Now()
				n.notifications[i].IsRead = true
				n.notifications[i].ReadAt = &now
			}
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func receiveNotification(t *testing.T, ch <-chan dto.NotificationResponse) dto.NotificationResponse {
	t.Helper()
	select {
	case notification := <-ch:
		return notification
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for notification")
		return dto.NotificationResponse{}
	}
}

func TestNotificationPublishReachesSubscriber(t *testing.T) {
	repo := &notificationRepoStub{}
	svc := NewNotificationService(repo, nil, "", nil, testLogger())

	ch, cancel := svc.Subscribe(7)
	defer cancel()

	published, err := svc.Publish(context.Background(), models.Notification{
		RecipientID: 7,
		SchoolID:    1,
		Type:        models.NotificationTypeExam,
		Title:       "Results out",
		Message:     "Term 1 results are published",
	})
	require.NoError(t, err)
	require.NotZero(t, published.ID)
	require.Len(t, repo.notifications, 1)

	received := receiveNotification(t, ch)
	require.Equal(t, published.ID, received.ID)
	require.Equal(t, "Results out", received.Title)
}

func TestNotificationSubscribersAreIsolatedByRecipient(t *testing.T) {
	svc := NewNotificationService(&notificationRepoStub{}, nil, "", nil, testLogger())

	mine, cancelMine := svc.Subscribe(7)
	defer cancelMine()
	theirs, cancelTheirs := svc.Subscribe(8)
	defer cancelTheirs()

	_, err := svc.Publish(context.Background(), models.Notification{
		RecipientID: 7,
		Type:        models.NotificationTypeSystem,
		Title:       "mine only",
		Message:     "x",
	})
	require.NoError(t, err)

	receiveNotification(t, mine)
	select {
	case notification := <-theirs:
		t.Fatalf("unexpected notification for other recipient: %+v", notification)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestNotificationFanOutAcrossNodes(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	publisher := NewNotificationService(&notificationRepoStub{}, client, "scholaris", nil, testLogger())
	consumer := NewNotificationService(&notificationRepoStub{}, client, "scholaris", nil, testLogger())
	consumer.Start(ctx)

	// Give the consumer's subscription a moment to attach.
	require.Eventually(t, func() bool {
		return client.PubSubNumSub(ctx, "scholaris:notifications").Val()["scholaris:notifications"] > 0
	}, 2*time.Second, 10*time.Millisecond)

	ch, cleanup := consumer.Subscribe(7)
	defer cleanup()

	_, err = publisher.Publish(ctx, models.Notification{
		RecipientID: 7,
		Type:        models.NotificationTypeMessage,
		Title:       "cross node",
		Message:     "x",
	})
	require.NoError(t, err)

	received := receiveNotification(t, ch)
	require.Equal(t, "cross node", received.Title)
}

func TestNotificationMarkReadScopedToRecipient(t *testing.T) {
	repo := &notificationRepoStub{notifications: []models.Notification{
		{ID: 1, RecipientID: 7, Type: models.NotificationTypeFee, Title: "fees due", Message: "x"},
	}}
	svc := NewNotificationService(repo, nil, "", nil, testLogger())

	read, err := svc.MarkRead(context.Background(), Scope{UserID: 7}, 1)
	require.NoError(t, err)
	require.True(t, read.IsRead)
	require.NotNil(t, read.ReadAt)

	_, err = svc.MarkRead(context.Background(), Scope{UserID: 8}, 1)
	require.ErrorIs(t, err, ErrNotificationNotFound)
}

func TestNotificationPublishBatch(t *testing.T) {
	repo := &notificationRepoStub{}
	svc := NewNotificationService(repo, nil, "", nil, testLogger())

	err := svc.PublishBatch(context.Background(), []models.Notification{
		{RecipientID: 7, Type: models.NotificationTypeAnnouncement, Title: "a", Message: "x"},
		{RecipientID: 8, Type: models.NotificationTypeAnnouncement, Title: "a", Message: "x"},
	})
	require.NoError(t, err)
	require.Len(t, repo.notifications, 2)
}
