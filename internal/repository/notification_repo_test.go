package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/scholaris-io/scholaris-api/internal/models"
)

func TestNotificationRepositoryMarkReadIsIdempotent(t *testing.T) {
	db := setupTestDB(t, &models.Notification{})
	repo := NewNotificationRepository(db)

	notification := models.Notification{RecipientID: 4, SchoolID: 1, Type: models.NotificationTypeMessage, Title: "New message", Message: "You have mail"}
	require.NoError(t, repo.Create(context.Background(), &notification))

	require.NoError(t, repo.MarkRead(context.Background(), 4, notification.ID))

	var after models.Notification
	require.NoError(t, db.First(&after, notification.ID).Error)
	require.True(t, after.IsRead)
	require.NotNil(t, after.ReadAt)
	firstReadAt := *after.ReadAt

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, repo.MarkRead(context.Background(), 4, notification.ID))

	require.NoError(t, db.First(&after, notification.ID).Error)
	require.NotNil(t, after.ReadAt)
	require.Equal(t, firstReadAt.Unix(), after.ReadAt.Unix(), "re-marking must keep the original read time")

	require.Error(t, repo.MarkRead(context.Background(), 4, notification.ID+100), "unknown id should report not found")
	require.Error(t, repo.MarkRead(context.Background(), 99, notification.ID), "another recipient must not mark it read")
}

func TestNotificationRepositoryMarkAllRead(t *testing.T) {
	db := setupTestDB(t, &models.Notification{})
	repo := NewNotificationRepository(db)

	batch := []models.Notification{
		{RecipientID: 7, SchoolID: 1, Type: models.NotificationTypeAnnouncement, Title: "A", Message: "a"},
		{RecipientID: 7, SchoolID: 1, Type: models.NotificationTypeExam, Title: "B", Message: "b"},
		{RecipientID: 8, SchoolID: 1, Type: models.NotificationTypeExam, Title: "C", Message: "c"},
	}
	require.NoError(t, repo.CreateBatch(context.Background(), batch))

	affected, err := repo.MarkAllRead(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, int64(2), affected)

	count, err := repo.UnreadCount(context.Background(), 7)
	require.NoError(t, err)
	require.Zero(t, count)

	count, err = repo.UnreadCount(context.Background(), 8)
	require.NoError(t, err)
	require.Equal(t, int64(1), count, "other recipients stay unread")
}

func TestNotificationRepositoryListFiltersAndPaginates(t *testing.T) {
	db := setupTestDB(t, &models.Notification{})
	repo := NewNotificationRepository(db)

	for i := 0; i < 3; i++ {
		n := models.Notification{RecipientID: 2, SchoolID: 1, Type: models.NotificationTypeResult, Title: "Result", Message: "published"}
		require.NoError(t, repo.Create(context.Background(), &n))
	}
	readOne := models.Notification{RecipientID: 2, SchoolID: 1, Type: models.NotificationTypeSystem, Title: "Sys", Message: "s", IsRead: true}
	require.NoError(t, repo.Create(context.Background(), &readOne))

	unread, total, err := repo.ListByRecipient(context.Background(), 2, NotificationFilter{UnreadOnly: true, PageSize: 30})
	require.NoError(t, err)
	require.Equal(t, int64(3), total)
	require.Len(t, unread, 3)

	typed, total, err := repo.ListByRecipient(context.Background(), 2, NotificationFilter{Type: models.NotificationTypeSystem, PageSize: 30})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, "Sys", typed[0].Title)

	paged, total, err := repo.ListByRecipient(context.Background(), 2, NotificationFilter{Page: 2, PageSize: 3})
	require.NoError(t, err)
	require.Equal(t, int64(4), total)
	require.Len(t, paged, 1)
}

func TestNotificationRepositoryDeleteScopedToRecipient(t *testing.T) {
	db := setupTestDB(t, &models.Notification{})
	repo := NewNotificationRepository(db)

	notification := models.Notification{RecipientID: 3, SchoolID: 1, Type: models.NotificationTypeFee, Title: "Fee due", Message: "pay up"}
	require.NoError(t, repo.Create(context.Background(), &notification))

	require.Error(t, repo.Delete(context.Background(), 5, notification.ID), "only the recipient may delete")
	require.NoError(t, repo.Delete(context.Background(), 3, notification.ID))
	require.Error(t, repo.Delete(context.Background(), 3, notification.ID))
}
