package models

import "time"

// Announcement priorities, lowest to highest.
const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Announcement target audiences.
const (
	AudienceAll             = "all"
	AudienceStudents        = "students"
	AudienceParents         = "parents"
	AudienceTeachers        = "teachers"
	AudienceStaff           = "staff"
	AudienceSpecificClasses = "specific_classes"
)

// PriorityRank maps a priority to its sort weight (urgent sorts first).
func PriorityRank(priority string) int {
	switch priority {
	case PriorityUrgent:
		return 3
	case PriorityHigh:
		return 2
	case PriorityNormal:
		return 1
	default:
		return 0
	}
}

// Announcement is a school-wide or audience-targeted notice. Visibility is a
// predicate over the publish window evaluated at read time, never stored.
type Announcement struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	SchoolID       uint       `gorm:"index:idx_announcement_school_published;not null" json:"school_id"`
	Title          string     `gorm:"size:200;not null" json:"title"`
	Body           string     `gorm:"type:text;not null" json:"body"`
	Priority       string     `gorm:"size:10;not null;default:normal" json:"priority"`
	TargetAudience string     `gorm:"size:20;not null;default:all;index" json:"target_audience"`
	CreatedByID    *uint      `json:"created_by_id,omitempty"`
	IsPublished    bool       `gorm:"not null;default:false;index:idx_announcement_school_published" json:"is_published"`
	PublishDate    *time.Time `json:"publish_date,omitempty"`
	ExpiryDate     *time.Time `json:"expiry_date,omitempty"`
	IsPinned       bool       `gorm:"not null;default:false" json:"is_pinned"`
	CreatedAt      time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	TargetClassGroups []ClassGroup `gorm:"many2many:announcement_class_groups" json:"target_class_groups,omitempty"`
}

// IsVisibleAt evaluates the publish window portion of the visibility
// predicate. Audience matching is layered on top by the service.
func (a Announcement) IsVisibleAt(now time.Time) bool {
	if !a.IsPublished {
		return false
	}
	if a.PublishDate != nil && a.PublishDate.After(now) {
		return false
	}
	if a.ExpiryDate != nil && !a.ExpiryDate.After(now) {
		return false
	}
	return true
}

// Message is a direct message between two users of the same school. Each
// party hides its own copy through an independent soft-delete flag; the row
// is retained even when both flags are set.
type Message struct {
	ID                   uint       `gorm:"primaryKey" json:"id"`
	SchoolID             uint       `gorm:"index;not null" json:"school_id"`
	SenderID             uint       `gorm:"index:idx_message_sender;not null" json:"sender_id"`
	RecipientID          uint       `gorm:"index:idx_message_recipient;not null" json:"recipient_id"`
	Subject              string     `gorm:"size:200;not null" json:"subject"`
	Body                 string     `gorm:"type:text;not null" json:"body"`
	ParentMessageID      *uint      `gorm:"index" json:"parent_message_id,omitempty"`
	IsRead               bool       `gorm:"not null;default:false;index:idx_message_recipient" json:"is_read"`
	ReadAt               *time.Time `json:"read_at,omitempty"`
	IsStarred            bool       `gorm:"not null;default:false" json:"is_starred"`
	IsDeletedBySender    bool       `gorm:"not null;default:false;index:idx_message_sender" json:"is_deleted_by_sender"`
	IsDeletedByRecipient bool       `gorm:"not null;default:false;index:idx_message_recipient" json:"is_deleted_by_recipient"`
	CreatedAt            time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`

	Sender    User `json:"sender,omitempty"`
	Recipient User `json:"recipient,omitempty"`
}

// Notification types.
const (
	NotificationTypeAnnouncement = "announcement"
	NotificationTypeMessage      = "message"
	NotificationTypeAttendance   = "attendance"
	NotificationTypeFee          = "fee"
	NotificationTypeExam         = "exam"
	NotificationTypeResult       = "result"
	NotificationTypeSystem       = "system"
)

// Notification is created as a side effect of other entities' lifecycle
// events. After creation only the read state changes, or the row is deleted.
type Notification struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	RecipientID uint       `gorm:"index:idx_notification_recipient_read;not null" json:"recipient_id"`
	SchoolID    uint       `gorm:"index" json:"school_id"`
	Type        string     `gorm:"size:20;not null" json:"type"`
	Title       string     `gorm:"size:200;not null" json:"title"`
	Message     string     `gorm:"type:text;not null" json:"message"`
	ActionURL   string     `gorm:"size:500" json:"action_url,omitempty"`
	IsRead      bool       `gorm:"not null;default:false;index:idx_notification_recipient_read" json:"is_read"`
	ReadAt      *time.Time `json:"read_at,omitempty"`
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
}
