package dto

import (
	"time"

	"github.com/noah-isme/manan-api/internal/models"
)

// NotificationSendRequest is a faculty request to publish a notification.
// Without an explicit audience an empty RecipientIDs list means broadcast.
type NotificationSendRequest struct {
	Title          string `json:"title" validate:"required,max=512"`
	Type           string `json:"type" validate:"omitempty,oneof=info urgent success warning"`
	Audience       string `json:"audience" validate:"omitempty,oneof=broadcast targeted"`
	RecipientIDs   []uint `json:"recipient_ids" validate:"omitempty,max=5000,dive,required"`
	IdempotencyKey string `json:"idempotency_key" validate:"omitempty,max=128"`
}

// BatchNotifyRequest asks for one notification addressed to at-risk students.
type BatchNotifyRequest struct {
	Title          string `json:"title" validate:"required,max=512"`
	Type           string `json:"type" validate:"omitempty,oneof=info urgent success warning"`
	IdempotencyKey string `json:"idempotency_key" validate:"omitempty,max=128"`
}

// NotificationResponse is the serialized form of a dispatch record.
type NotificationResponse struct {
	ID           uint                        `json:"id"`
	Title        string                      `json:"title"`
	Type         models.NotificationType     `json:"type"`
	Audience     models.NotificationAudience `json:"audience"`
	Source       models.NotificationSource   `json:"source"`
	SenderID     uint                        `json:"sender_id"`
	TargetCount  int                         `json:"target_count"`
	RecipientIDs []uint                      `json:"recipient_ids,omitempty"`
	Fallback     bool                        `json:"fallback"`
	DoubtID      *uint                       `json:"doubt_id,omitempty"`
	CourseID     *uint                       `json:"course_id,omitempty"`
	CreatedAt    time.Time                   `json:"created_at"`
}

// SendNotificationResponse wraps a created (or replayed) notification.
type SendNotificationResponse struct {
	Notification NotificationResponse `json:"notification"`
	Replayed     bool                 `json:"replayed"`
}

// BatchNotifyResponse reports the resolved audience of a batch dispatch.
type BatchNotifyResponse struct {
	Notification NotificationResponse `json:"notification"`
	TargetCount  int                  `json:"target_count"`
	Fallback     bool                 `json:"fallback"`
	Replayed     bool                 `json:"replayed"`
}

// NotificationListResponse is a page of notifications.
type NotificationListResponse struct {
	Items      []NotificationResponse `json:"items"`
	Pagination PaginationMeta         `json:"pagination"`
}

// NewNotificationResponse converts a model into a DTO.
func NewNotificationResponse(model models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:           model.ID,
		Title:        model.Title,
		Type:         model.Type,
		Audience:     model.Audience,
		Source:       model.Source,
		SenderID:     model.SenderID,
		TargetCount:  model.TargetCount,
		RecipientIDs: model.RecipientIDs(),
		Fallback:     model.Fallback,
		DoubtID:      model.DoubtID,
		CourseID:     model.CourseID,
		CreatedAt:    model.CreatedAt,
	}
}

// NewNotificationResponseSlice converts a slice to DTOs.
func NewNotificationResponseSlice(items []models.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(items))
	for _, item := range items {
		out = append(out, NewNotificationResponse(item))
	}
	return out
}
