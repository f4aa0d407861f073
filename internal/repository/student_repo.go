package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/manan-api/internal/models"
)

// StudentRepository reads the student directory.
type StudentRepository interface {
	GetByID(ctx context.Context, id uint) (models.Student, error)
	List(ctx context.Context, teacherID *uint) ([]models.Student, error)
	UpdateMetrics(ctx context.Context, id uint, metrics models.AcademicMetrics) (models.Student, error)
}

type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository constructs the student repository.
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) GetByID(ctx context.Context, id uint) (models.Student, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).First(&student, id).Error; err != nil {
		return models.Student{}, err
	}
	return student, nil
}

// List returns every student, or only those enrolled in the teacher's courses.
func (r *studentRepository) List(ctx context.Context, teacherID *uint) ([]models.Student, error) {
	query := r.db.WithContext(ctx).Model(&models.Student{})
	if teacherID != nil {
		enrolled := r.db.Model(&models.Enrollment{}).
			Select("enrollments.student_id").
			Joins("JOIN courses ON courses.id = enrollments.course_id").
			Where("courses.teacher_id = ?", *teacherID)
		query = query.Where("id IN (?)", enrolled)
	}

	var students []models.Student
	if err := query.Order("name ASC").Order("id ASC").Find(&students).Error; err != nil {
		return nil, err
	}
	return students, nil
}

func (r *studentRepository) UpdateMetrics(ctx context.Context, id uint, metrics models.AcademicMetrics) (models.Student, error) {
	updates := map[string]interface{}{}
	if metrics.AttendancePercent != nil {
		updates["attendance_percent"] = *metrics.AttendancePercent
	}
	if metrics.CGPA != nil {
		updates["cgpa"] = *metrics.CGPA
	}

	if len(updates) > 0 {
		result := r.db.WithContext(ctx).Model(&models.Student{}).Where("id = ?", id).Updates(updates)
		if result.Error != nil {
			return models.Student{}, result.Error
		}
		if result.RowsAffected == 0 {
			return models.Student{}, gorm.ErrRecordNotFound
		}
	}

	return r.GetByID(ctx, id)
}
