package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/manan-api/internal/models"
)

// NotificationRepository persists dispatch records and their recipients.
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	FindByIdempotencyKey(ctx context.Context, senderID uint, key string) (models.Notification, error)
	ListBySender(ctx context.Context, senderID uint, page, pageSize int) ([]models.Notification, int64, error)
	ListFeed(ctx context.Context, recipientID uint, limit, offset int) ([]models.Notification, error)
	ListAddressed(ctx context.Context, recipientID uint, limit, offset int) ([]models.Notification, error)
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository constructs the repository.
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

// Create stores the notification and its recipient rows atomically.
func (r *notificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		recipients := notification.Recipients
		if err := tx.Omit("Recipients").Create(notification).Error; err != nil {
			return err
		}
		if len(recipients) == 0 {
			return nil
		}

		for i := range recipients {
			recipients[i].NotificationID = notification.ID
		}
		if err := tx.CreateInBatches(&recipients, 500).Error; err != nil {
			return err
		}
		notification.Recipients = recipients
		return nil
	})
}

func (r *notificationRepository) FindByIdempotencyKey(ctx context.Context, senderID uint, key string) (models.Notification, error) {
	var notification models.Notification
	err := r.db.WithContext(ctx).
		Preload("Recipients").
		Where("sender_id = ? AND idempotency_key = ?", senderID, key).
		First(&notification).Error
	if err != nil {
		return models.Notification{}, err
	}
	return notification, nil
}

func (r *notificationRepository) ListBySender(ctx context.Context, senderID uint, page, pageSize int) ([]models.Notification, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Notification{}).Where("sender_id = ?", senderID)

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if pageSize > 0 {
		if page <= 0 {
			page = 1
		}
		query = query.Offset((page - 1) * pageSize).Limit(pageSize)
	}

	var notifications []models.Notification
	if err := query.Preload("Recipients").Order("created_at DESC").Order("id DESC").Find(&notifications).Error; err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}

// ListFeed returns broadcasts plus every notification addressed to the user.
func (r *notificationRepository) ListFeed(ctx context.Context, recipientID uint, limit, offset int) ([]models.Notification, error) {
	return r.listFor(ctx, recipientID, true, limit, offset)
}

// ListAddressed returns only the notifications naming the user as a recipient.
func (r *notificationRepository) ListAddressed(ctx context.Context, recipientID uint, limit, offset int) ([]models.Notification, error) {
	return r.listFor(ctx, recipientID, false, limit, offset)
}

func (r *notificationRepository) listFor(ctx context.Context, recipientID uint, withBroadcast bool, limit, offset int) ([]models.Notification, error) {
	addressed := r.db.Model(&models.NotificationRecipient{}).
		Select("notification_id").
		Where("recipient_id = ?", recipientID)

	query := r.db.WithContext(ctx)
	if withBroadcast {
		query = query.Where("audience = ? OR id IN (?)", string(models.NotificationAudienceBroadcast), addressed)
	} else {
		query = query.Where("id IN (?)", addressed)
	}
	query = query.Order("created_at DESC").Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var notifications []models.Notification
	if err := query.Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}
