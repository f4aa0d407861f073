package models

import "time"

// NotificationType classifies how a notification is presented.
type NotificationType string

// Supported notification types.
const (
	NotificationTypeInfo    NotificationType = "info"
	NotificationTypeUrgent  NotificationType = "urgent"
	NotificationTypeSuccess NotificationType = "success"
	NotificationTypeWarning NotificationType = "warning"
)

// Valid reports whether the type is one of the supported values.
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationTypeInfo, NotificationTypeUrgent, NotificationTypeSuccess, NotificationTypeWarning:
		return true
	}
	return false
}

// NotificationAudience describes who a notification was addressed to.
type NotificationAudience string

// Audience kinds.
const (
	NotificationAudienceBroadcast NotificationAudience = "broadcast"
	NotificationAudienceTargeted  NotificationAudience = "targeted"
)

// NotificationSource records which flow produced a notification.
type NotificationSource string

// Notification sources.
const (
	NotificationSourceManual         NotificationSource = "manual"
	NotificationSourceBatchAtRisk    NotificationSource = "batch_at_risk"
	NotificationSourceDoubtSubmitted NotificationSource = "doubt_submitted"
)

// Notification is an immutable dispatch record. Targeted notifications keep
// the exact recipient list resolved at send time.
type Notification struct {
	ID             uint                    `gorm:"primaryKey" json:"id"`
	Title          string                  `gorm:"size:512;not null" json:"title"`
	Type           NotificationType        `gorm:"size:16;not null" json:"type"`
	Audience       NotificationAudience    `gorm:"size:16;index;not null" json:"audience"`
	Source         NotificationSource      `gorm:"size:32;not null" json:"source"`
	SenderID       uint                    `gorm:"index;uniqueIndex:idx_notification_sender_key" json:"sender_id"`
	IdempotencyKey *string                 `gorm:"size:128;uniqueIndex:idx_notification_sender_key" json:"idempotency_key,omitempty"`
	TargetCount    int                     `gorm:"not null;default:0" json:"target_count"`
	Fallback       bool                    `gorm:"not null;default:false" json:"fallback"`
	DoubtID        *uint                   `json:"doubt_id,omitempty"`
	CourseID       *uint                   `json:"course_id,omitempty"`
	CreatedAt      time.Time               `gorm:"index" json:"created_at"`
	Recipients     []NotificationRecipient `json:"recipients,omitempty"`
}

// NotificationRecipient is one user a targeted notification was addressed to.
type NotificationRecipient struct {
	ID             uint `gorm:"primaryKey" json:"id"`
	NotificationID uint `gorm:"index;not null" json:"notification_id"`
	RecipientID    uint `gorm:"index;not null" json:"recipient_id"`
}

// RecipientIDs flattens the recipient rows into user ids.
func (n Notification) RecipientIDs() []uint {
	ids := make([]uint, 0, len(n.Recipients))
	for _, recipient := range n.Recipients {
		ids = append(ids, recipient.RecipientID)
	}
	return ids
}
