package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/manan-api/internal/models"
)

// CourseRepository is the course directory and its enrollment relation.
type CourseRepository interface {
	Create(ctx context.Context, course *models.Course) error
	GetByID(ctx context.Context, id uint) (models.Course, error)
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, teacherID *uint) ([]models.Course, error)
	CountByTeacher(ctx context.Context, teacherID uint) (int64, error)
	CountStudentsByTeacher(ctx context.Context, teacherID uint) (int64, error)
	Enroll(ctx context.Context, courseID, studentID uint) (bool, error)
	IsEnrolled(ctx context.Context, courseID, studentID uint) (bool, error)
	OwnsStudent(ctx context.Context, teacherID, studentID uint) (bool, error)
}

type courseRepository struct {
	db *gorm.DB
}

// NewCourseRepository constructs the course repository.
func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) Create(ctx context.Context, course *models.Course) error {
	return r.db.WithContext(ctx).Create(course).Error
}

func (r *courseRepository) GetByID(ctx context.Context, id uint) (models.Course, error) {
	var course models.Course
	if err := r.db.WithContext(ctx).First(&course, id).Error; err != nil {
		return models.Course{}, err
	}
	return course, nil
}

func (r *courseRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("course_id = ?", id).Delete(&models.Doubt{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", id).Delete(&models.Enrollment{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Course{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *courseRepository) List(ctx context.Context, teacherID *uint) ([]models.Course, error) {
	query := r.db.WithContext(ctx).Model(&models.Course{})
	if teacherID != nil {
		query = query.Where("teacher_id = ?", *teacherID)
	}

	var courses []models.Course
	if err := query.Order("created_at DESC").Order("id DESC").Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *courseRepository) CountByTeacher(ctx context.Context, teacherID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Course{}).Where("teacher_id = ?", teacherID).Count(&count).Error
	return count, err
}

func (r *courseRepository) CountStudentsByTeacher(ctx context.Context, teacherID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Joins("JOIN courses ON courses.id = enrollments.course_id").
		Where("courses.teacher_id = ?", teacherID).
		Distinct("enrollments.student_id").
		Count(&count).Error
	return count, err
}

// Enroll registers the student and reports whether a new row was created.
func (r *courseRepository) Enroll(ctx context.Context, courseID, studentID uint) (bool, error) {
	enrollment := models.Enrollment{CourseID: courseID, StudentID: studentID}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&enrollment)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *courseRepository) IsEnrolled(ctx context.Context, courseID, studentID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("course_id = ? AND student_id = ?", courseID, studentID).
		Count(&count).Error
	return count > 0, err
}

func (r *courseRepository) OwnsStudent(ctx context.Context, teacherID, studentID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Joins("JOIN courses ON courses.id = enrollments.course_id").
		Where("courses.teacher_id = ? AND enrollments.student_id = ?", teacherID, studentID).
		Count(&count).Error
	return count > 0, err
}
