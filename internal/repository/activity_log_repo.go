package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/manan-api/internal/models"
)

// ActivityLogFilter narrows audit trail queries. Zero values match everything.
type ActivityLogFilter struct {
	Page       int
	PageSize   int
	ActorID    *uint
	Action     string
	EntityType string
	EntityID   *uint
	Since      *time.Time
	Until      *time.Time
}

// scope applies the filter's predicates without paging.
func (f ActivityLogFilter) scope(db *gorm.DB) *gorm.DB {
	if f.ActorID != nil {
		db = db.Where("actor_id = ?", *f.ActorID)
	}
	if f.Action != "" {
		db = db.Where("action = ?", f.Action)
	}
	if f.EntityType != "" {
		db = db.Where("entity_type = ?", f.EntityType)
	}
	if f.EntityID != nil {
		db = db.Where("entity_id = ?", *f.EntityID)
	}
	if f.Since != nil {
		db = db.Where("created_at >= ?", *f.Since)
	}
	if f.Until != nil {
		db = db.Where("created_at < ?", *f.Until)
	}
	return db
}

// ActivityLogRepository stores the append-only audit trail of faculty and
// admin mutations.
type ActivityLogRepository interface {
	Create(ctx context.Context, entry *models.ActivityLog) error
	List(ctx context.Context, filter ActivityLogFilter) ([]models.ActivityLog, int64, error)
}

type activityLogRepository struct {
	db *gorm.DB
}

// NewActivityLogRepository constructs the activity log repository.
func NewActivityLogRepository(db *gorm.DB) ActivityLogRepository {
	return &activityLogRepository{db: db}
}

func (r *activityLogRepository) Create(ctx context.Context, entry *models.ActivityLog) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *activityLogRepository) List(ctx context.Context, filter ActivityLogFilter) ([]models.ActivityLog, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.ActivityLog{}).Scopes(filter.scope)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	entries := make([]models.ActivityLog, 0)
	if total == 0 {
		return entries, 0, nil
	}

	page := base.Session(&gorm.Session{}).Order("created_at DESC, id DESC")
	if filter.PageSize > 0 {
		offset := 0
		if filter.Page > 1 {
			offset = (filter.Page - 1) * filter.PageSize
		}
		page = page.Offset(offset).Limit(filter.PageSize)
	}

	if err := page.Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
