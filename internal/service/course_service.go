package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/manan-api/internal/dto"
	"github.com/noah-isme/manan-api/internal/models"
	"github.com/noah-isme/manan-api/internal/repository"
)

// CourseService manages the course directory and enrollments.
type CourseService interface {
	Create(ctx context.Context, actor ActivityActor, payload dto.CourseCreateRequest) (dto.CourseResponse, error)
	Delete(ctx context.Context, actor ActivityActor, courseID uint) error
	List(ctx context.Context, teacherID *uint) ([]dto.CourseResponse, error)
	Enroll(ctx context.Context, actor ActivityActor, courseID uint) (dto.EnrollmentResponse, error)
}

type courseService struct {
	courses   repository.CourseRepository
	students  repository.StudentRepository
	stats     StatsRefresher
	recorder  ActivityRecorder
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewCourseService constructs the course service.
func NewCourseService(courses repository.CourseRepository, students repository.StudentRepository, stats StatsRefresher, recorder ActivityRecorder, validate *validator.Validate, logger zerolog.Logger) CourseService {
	return &courseService{
		courses:   courses,
		students:  students,
		stats:     stats,
		recorder:  recorder,
		validator: validate,
		sanitizer: bluemonday.UGCPolicy(),
		logger:    logger.With().Str("component", "course_service").Logger(),
	}
}

func (s *courseService) Create(ctx context.Context, actor ActivityActor, payload dto.CourseCreateRequest) (dto.CourseResponse, error) {
	if !actor.IsFaculty() {
		return dto.CourseResponse{}, ErrForbidden
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.CourseResponse{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	title := strings.TrimSpace(payload.Title)
	if title == "" {
		return dto.CourseResponse{}, fmt.Errorf("%w: title is empty", ErrValidation)
	}

	course := models.Course{
		Title:       title,
		Description: strings.TrimSpace(s.sanitizer.Sanitize(payload.Description)),
		TeacherID:   actor.ID,
		TeacherName: strings.TrimSpace(payload.TeacherName),
	}
	if err := s.courses.Create(ctx, &course); err != nil {
		return dto.CourseResponse{}, err
	}

	courseID := course.ID
	audit(ctx, s.recorder, s.logger, ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     models.ActionCourseCreated,
		EntityType: "course",
		EntityID:   &courseID,
		Metadata:   map[string]interface{}{"title": course.Title},
	})
	refreshStats(ctx, s.stats, s.logger, course.TeacherID)

	return dto.NewCourseResponse(course), nil
}

func (s *courseService) Delete(ctx context.Context, actor ActivityActor, courseID uint) error {
	course, err := s.courses.GetByID(ctx, courseID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrCourseNotFound
	}
	if err != nil {
		return err
	}

	if !actor.IsAdmin() && (actor.Role != RoleTeacher || course.TeacherID != actor.ID) {
		return ErrForbidden
	}

	if err := s.courses.Delete(ctx, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCourseNotFound
		}
		return err
	}

	audit(ctx, s.recorder, s.logger, ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     models.ActionCourseDeleted,
		EntityType: "course",
		EntityID:   &courseID,
		Metadata:   map[string]interface{}{"title": course.Title, "teacher_id": course.TeacherID},
	})
	refreshStats(ctx, s.stats, s.logger, course.TeacherID)

	return nil
}

func (s *courseService) List(ctx context.Context, teacherID *uint) ([]dto.CourseResponse, error) {
	courses, err := s.courses.List(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	return dto.NewCourseResponseSlice(courses), nil
}

func (s *courseService) Enroll(ctx context.Context, actor ActivityActor, courseID uint) (dto.EnrollmentResponse, error) {
	if actor.Role != RoleStudent {
		return dto.EnrollmentResponse{}, ErrForbidden
	}

	course, err := s.courses.GetByID(ctx, courseID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.EnrollmentResponse{}, ErrCourseNotFound
	}
	if err != nil {
		return dto.EnrollmentResponse{}, err
	}

	if _, err := s.students.GetByID(ctx, actor.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EnrollmentResponse{}, ErrStudentNotFound
		}
		return dto.EnrollmentResponse{}, err
	}

	created, err := s.courses.Enroll(ctx, course.ID, actor.ID)
	if err != nil {
		return dto.EnrollmentResponse{}, err
	}
	if created {
		refreshStats(ctx, s.stats, s.logger, course.TeacherID)
	}

	return dto.EnrollmentResponse{CourseID: course.ID, StudentID: actor.ID, Created: created}, nil
}
