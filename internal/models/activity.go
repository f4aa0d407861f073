package models

import (
	"time"

	"gorm.io/datatypes"
)

// ActivityLog is the audit trail for faculty and administrator actions.
type ActivityLog struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	ActorID    uint              `gorm:"index;not null" json:"actor_id"`
	ActorRole  string            `gorm:"size:32;not null" json:"actor_role"`
	Action     string            `gorm:"size:64;index;not null" json:"action"`
	EntityType string            `gorm:"size:64;not null" json:"entity_type"`
	EntityID   *uint             `json:"entity_id"`
	Metadata   datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt  time.Time         `gorm:"index" json:"created_at"`
}

// Audit actions recorded by the services.
const (
	ActionDoubtResolved         = "doubt.resolved"
	ActionDoubtAnswered         = "doubt.answered"
	ActionNotificationSent      = "notification.sent"
	ActionNotificationBatchSent = "notification.batch_sent"
	ActionSettingsUpdated       = "settings.updated"
	ActionCourseCreated         = "course.created"
	ActionCourseDeleted         = "course.deleted"
)
