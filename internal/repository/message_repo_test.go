package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scholaris-io/scholaris-api/internal/models"
)

func TestMessageRepositoryInboxHidesRecipientDeleted(t *testing.T) {
	db := setupTestDB(t, &models.Message{}, &models.User{})
	repo := NewMessageRepository(db)

	sender := seedUser(t, db, 1, "teacher1", models.RoleTeacher)
	recipient := seedUser(t, db, 1, "student1", models.RoleStudent)

	visible := models.Message{SchoolID: 1, SenderID: sender.ID, RecipientID: recipient.ID, Subject: "Homework", Body: "Due Friday"}
	hidden := models.Message{SchoolID: 1, SenderID: sender.ID, RecipientID: recipient.ID, Subject: "Old", Body: "Gone", IsDeletedByRecipient: true}
	require.NoError(t, db.Create(&visible).Error)
	require.NoError(t, db.Create(&hidden).Error)

	inbox, total, err := repo.Inbox(context.Background(), recipient.ID, MessageFilter{PageSize: 20})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Len(t, inbox, 1)
	require.Equal(t, "Homework", inbox[0].Subject)

	// The sender's copy is untouched by the recipient-side delete.
	sent, total, err := repo.Sent(context.Background(), sender.ID, MessageFilter{PageSize: 20})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, sent, 2)
}

func TestMessageRepositorySentHidesSenderDeleted(t *testing.T) {
	db := setupTestDB(t, &models.Message{}, &models.User{})
	repo := NewMessageRepository(db)

	sender := seedUser(t, db, 1, "admin1", models.RoleAdmin)
	recipient := seedUser(t, db, 1, "parent1", models.RoleParent)

	kept := models.Message{SchoolID: 1, SenderID: sender.ID, RecipientID: recipient.ID, Subject: "Fees", Body: "Reminder"}
	dropped := models.Message{SchoolID: 1, SenderID: sender.ID, RecipientID: recipient.ID, Subject: "Draft", Body: "Oops", IsDeletedBySender: true}
	require.NoError(t, db.Create(&kept).Error)
	require.NoError(t, db.Create(&dropped).Error)

	sent, total, err := repo.Sent(context.Background(), sender.ID, MessageFilter{PageSize: 20})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, "Fees", sent[0].Subject)

	inbox, _, err := repo.Inbox(context.Background(), recipient.ID, MessageFilter{PageSize: 20})
	require.NoError(t, err)
	require.Len(t, inbox, 2, "sender-side delete must not hide the recipient copy")
}

func TestMessageRepositoryInboxStatusFilters(t *testing.T) {
	db := setupTestDB(t, &models.Message{}, &models.User{})
	repo := NewMessageRepository(db)

	sender := seedUser(t, db, 1, "teacher2", models.RoleTeacher)
	recipient := seedUser(t, db, 1, "student2", models.RoleStudent)

	unread := models.Message{SchoolID: 1, SenderID: sender.ID, RecipientID: recipient.ID, Subject: "New", Body: "unread"}
	read := models.Message{SchoolID: 1, SenderID: sender.ID, RecipientID: recipient.ID, Subject: "Seen", Body: "read", IsRead: true}
	starred := models.Message{SchoolID: 1, SenderID: sender.ID, RecipientID: recipient.ID, Subject: "Keep", Body: "starred", IsRead: true, IsStarred: true}
	require.NoError(t, db.Create(&unread).Error)
	require.NoError(t, db.Create(&read).Error)
	require.NoError(t, db.Create(&starred).Error)

	got, total, err := repo.Inbox(context.Background(), recipient.ID, MessageFilter{Status: MessageStatusUnread, PageSize: 20})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, "New", got[0].Subject)

	got, total, err = repo.Inbox(context.Background(), recipient.ID, MessageFilter{Status: MessageStatusRead, PageSize: 20})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)

	got, total, err = repo.Inbox(context.Background(), recipient.ID, MessageFilter{Status: MessageStatusStarred, PageSize: 20})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, "Keep", got[0].Subject)

	count, err := repo.UnreadCount(context.Background(), recipient.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}

func TestMessageRepositoryReplies(t *testing.T) {
	db := setupTestDB(t, &models.Message{}, &models.User{})
	repo := NewMessageRepository(db)

	a := seedUser(t, db, 1, "usera", models.RoleTeacher)
	b := seedUser(t, db, 1, "userb", models.RoleParent)

	root := models.Message{SchoolID: 1, SenderID: a.ID, RecipientID: b.ID, Subject: "Meeting", Body: "Thursday?"}
	require.NoError(t, repo.Create(context.Background(), &root))

	reply := models.Message{SchoolID: 1, SenderID: b.ID, RecipientID: a.ID, Subject: "Re: Meeting", Body: "Works", ParentMessageID: &root.ID}
	require.NoError(t, repo.Create(context.Background(), &reply))

	replies, err := repo.Replies(context.Background(), root.ID)
	require.NoError(t, err)
	require.Len(t, replies, 1)
	require.Equal(t, "Re: Meeting", replies[0].Subject)
}
