package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/manan-api/internal/models"
)

// ErrDoubtNotOpen is returned when a conditional transition finds the doubt
// already resolved.
var ErrDoubtNotOpen = errors.New("doubt is not open")

// DoubtRepository persists doubt tickets.
type DoubtRepository interface {
	Create(ctx context.Context, doubt *models.Doubt) error
	GetByID(ctx context.Context, id uint) (models.Doubt, error)
	ListByStudent(ctx context.Context, studentID uint, courseID *uint) ([]models.Doubt, error)
	ListOpenByTeacher(ctx context.Context, teacherID uint) ([]models.Doubt, error)
	CountOpenByTeacher(ctx context.Context, teacherID uint) (int64, error)
	Resolve(ctx context.Context, id, resolvedBy uint, answer *string, resolvedAt time.Time) (models.Doubt, error)
	Answer(ctx context.Context, id uint, answer string, answeredAt time.Time) (models.Doubt, error)
}

type doubtRepository struct {
	db *gorm.DB
}

// NewDoubtRepository constructs a GORM-backed doubt repository.
func NewDoubtRepository(db *gorm.DB) DoubtRepository {
	return &doubtRepository{db: db}
}

func (r *doubtRepository) Create(ctx context.Context, doubt *models.Doubt) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Course").Create(doubt).Error; err != nil {
			return err
		}

		return tx.Model(&models.Course{}).
			Where("id = ?", doubt.CourseID).
			UpdateColumn("doubts_count", gorm.Expr("doubts_count + ?", 1)).
			Error
	})
}

func (r *doubtRepository) GetByID(ctx context.Context, id uint) (models.Doubt, error) {
	var doubt models.Doubt
	if err := r.db.WithContext(ctx).Preload("Course").First(&doubt, id).Error; err != nil {
		return models.Doubt{}, err
	}
	return doubt, nil
}

func (r *doubtRepository) ListByStudent(ctx context.Context, studentID uint, courseID *uint) ([]models.Doubt, error) {
	query := r.db.WithContext(ctx).
		Preload("Course").
		Where("student_id = ?", studentID)
	if courseID != nil {
		query = query.Where("course_id = ?", *courseID)
	}

	var doubts []models.Doubt
	if err := query.Order("created_at DESC").Order("id DESC").Find(&doubts).Error; err != nil {
		return nil, err
	}
	return doubts, nil
}

func (r *doubtRepository) ListOpenByTeacher(ctx context.Context, teacherID uint) ([]models.Doubt, error) {
	var doubts []models.Doubt
	err := r.openByTeacher(ctx, teacherID).
		Preload("Course").
		Order("doubts.created_at DESC").
		Order("doubts.id DESC").
		Find(&doubts).Error
	if err != nil {
		return nil, err
	}
	return doubts, nil
}

func (r *doubtRepository) CountOpenByTeacher(ctx context.Context, teacherID uint) (int64, error) {
	var count int64
	err := r.openByTeacher(ctx, teacherID).Count(&count).Error
	return count, err
}

func (r *doubtRepository) openByTeacher(ctx context.Context, teacherID uint) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.Doubt{}).
		Joins("JOIN courses ON courses.id = doubts.course_id").
		Where("courses.teacher_id = ?", teacherID).
		Where("doubts.status = ?", string(models.DoubtStatusOpen))
}

// Resolve performs the open -> resolved transition as a single conditional
// UPDATE so that concurrent callers cannot both succeed.
func (r *doubtRepository) Resolve(ctx context.Context, id, resolvedBy uint, answer *string, resolvedAt time.Time) (models.Doubt, error) {
	updates := map[string]interface{}{
		"status":      string(models.DoubtStatusResolved),
		"resolved_at": resolvedAt,
		"resolved_by": resolvedBy,
		"updated_at":  resolvedAt,
	}
	if answer != nil {
		updates["faculty_answer"] = *answer
	}

	if err := r.transitionOpen(ctx, id, updates); err != nil {
		return models.Doubt{}, err
	}
	return r.GetByID(ctx, id)
}

func (r *doubtRepository) Answer(ctx context.Context, id uint, answer string, answeredAt time.Time) (models.Doubt, error) {
	updates := map[string]interface{}{
		"faculty_answer": answer,
		"updated_at":     answeredAt,
	}

	if err := r.transitionOpen(ctx, id, updates); err != nil {
		return models.Doubt{}, err
	}
	return r.GetByID(ctx, id)
}

func (r *doubtRepository) transitionOpen(ctx context.Context, id uint, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&models.Doubt{}).
		Where("id = ? AND status = ?", id, string(models.DoubtStatusOpen)).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Doubt{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return gorm.ErrRecordNotFound
	}
	return ErrDoubtNotOpen
}
