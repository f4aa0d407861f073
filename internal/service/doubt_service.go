package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/manan-api/internal/dto"
	"github.com/noah-isme/manan-api/internal/models"
	"github.com/noah-isme/manan-api/internal/observability"
	"github.com/noah-isme/manan-api/internal/repository"
)

// DoubtAlertNotifier tells the course teacher about a new doubt.
type DoubtAlertNotifier interface {
	NotifyDoubtSubmitted(ctx context.Context, doubt models.Doubt, course models.Course) error
}

// DoubtService manages the doubt ledger.
type DoubtService interface {
	Submit(ctx context.Context, actor ActivityActor, payload dto.DoubtCreateRequest) (dto.DoubtResponse, error)
	ListByStudent(ctx context.Context, studentID uint, courseID *uint) ([]dto.DoubtResponse, error)
	ListOpenByTeacher(ctx context.Context, teacherID uint) ([]dto.DoubtResponse, error)
	Resolve(ctx context.Context, actor ActivityActor, doubtID uint, payload dto.DoubtResolveRequest) (dto.DoubtResponse, error)
	Answer(ctx context.Context, actor ActivityActor, doubtID uint, payload dto.DoubtAnswerRequest) (dto.DoubtResponse, error)
}

type doubtService struct {
	doubts    repository.DoubtRepository
	courses   repository.CourseRepository
	stats     StatsRefresher
	notifier  DoubtAlertNotifier
	recorder  ActivityRecorder
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewDoubtService constructs the doubt service. stats, notifier and recorder
// are optional follow-ups.
func NewDoubtService(
	doubts repository.DoubtRepository,
	courses repository.CourseRepository,
	stats StatsRefresher,
	notifier DoubtAlertNotifier,
	recorder ActivityRecorder,
	validate *validator.Validate,
	logger zerolog.Logger,
) DoubtService {
	return &doubtService{
		doubts:    doubts,
		courses:   courses,
		stats:     stats,
		notifier:  notifier,
		recorder:  recorder,
		validator: validate,
		logger:    logger.With().Str("component", "doubt_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/manan-api/internal/service/doubt"),
		now:       time.Now,
	}
}

func (s *doubtService) Submit(ctx context.Context, actor ActivityActor, payload dto.DoubtCreateRequest) (dto.DoubtResponse, error) {
	if actor.Role != RoleStudent {
		return dto.DoubtResponse{}, ErrForbidden
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.DoubtResponse{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	question := strings.TrimSpace(payload.Question)
	if question == "" {
		return dto.DoubtResponse{}, fmt.Errorf("%w: question is empty", ErrValidation)
	}

	course, err := s.courses.GetByID(ctx, payload.CourseID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.DoubtResponse{}, ErrCourseNotFound
	}
	if err != nil {
		return dto.DoubtResponse{}, err
	}

	enrolled, err := s.courses.IsEnrolled(ctx, course.ID, actor.ID)
	if err != nil {
		return dto.DoubtResponse{}, err
	}
	if !enrolled {
		return dto.DoubtResponse{}, fmt.Errorf("%w: not enrolled in course", ErrForbidden)
	}

	doubt := models.Doubt{
		StudentID: actor.ID,
		CourseID:  course.ID,
		Question:  question,
		Status:    models.DoubtStatusOpen,
	}
	if err := s.doubts.Create(ctx, &doubt); err != nil {
		return dto.DoubtResponse{}, err
	}
	doubt.Course = course

	observability.DoubtsSubmitted().Inc()
	s.logger.Info().
		Uint("doubt_id", doubt.ID).
		Uint("course_id", course.ID).
		Uint("student_id", actor.ID).
		Msg("doubt submitted")

	refreshStats(ctx, s.stats, s.logger, course.TeacherID)
	if s.notifier != nil {
		if err := s.notifier.NotifyDoubtSubmitted(ctx, doubt, course); err != nil {
			s.logger.Warn().Err(err).Uint("doubt_id", doubt.ID).Msg("failed to alert course teacher")
		}
	}

	return dto.NewDoubtResponse(doubt), nil
}

func (s *doubtService) ListByStudent(ctx context.Context, studentID uint, courseID *uint) ([]dto.DoubtResponse, error) {
	doubts, err := s.doubts.ListByStudent(ctx, studentID, courseID)
	if err != nil {
		return nil, err
	}
	return dto.NewDoubtResponseSlice(doubts), nil
}

func (s *doubtService) ListOpenByTeacher(ctx context.Context, teacherID uint) ([]dto.DoubtResponse, error) {
	doubts, err := s.doubts.ListOpenByTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	return dto.NewDoubtResponseSlice(doubts), nil
}

func (s *doubtService) Resolve(ctx context.Context, actor ActivityActor, doubtID uint, payload dto.DoubtResolveRequest) (dto.DoubtResponse, error) {
	spanCtx, span := s.tracer.Start(ctx, "doubts.resolve", trace.WithAttributes(
		attribute.Int64("doubt.id", int64(doubtID)),
		attribute.Int64("actor.id", int64(actor.ID)),
	))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		return dto.DoubtResponse{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	doubt, err := s.authorize(spanCtx, actor, doubtID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return dto.DoubtResponse{}, err
	}

	var answer *string
	if cleaned := strings.TrimSpace(payload.Answer); cleaned != "" {
		answer = &cleaned
	}

	resolved, err := s.doubts.Resolve(spanCtx, doubtID, actor.ID, answer, s.now().UTC())
	switch {
	case errors.Is(err, repository.ErrDoubtNotOpen):
		observability.DoubtsResolved().WithLabelValues("conflict").Inc()
		span.SetStatus(codes.Error, "already resolved")
		return dto.DoubtResponse{}, ErrDoubtAlreadyResolved
	case errors.Is(err, gorm.ErrRecordNotFound):
		observability.DoubtsResolved().WithLabelValues("not_found").Inc()
		return dto.DoubtResponse{}, ErrDoubtNotFound
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, "resolve failed")
		return dto.DoubtResponse{}, err
	}

	observability.DoubtsResolved().WithLabelValues("resolved").Inc()
	audit(spanCtx, s.recorder, s.logger, ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     models.ActionDoubtResolved,
		EntityType: "doubt",
		EntityID:   &resolved.ID,
		Metadata: map[string]interface{}{
			"course_id":  resolved.CourseID,
			"student_id": resolved.StudentID,
			"answered":   resolved.FacultyAnswer != nil,
		},
	})
	refreshStats(spanCtx, s.stats, s.logger, doubt.Course.TeacherID)

	return dto.NewDoubtResponse(resolved), nil
}

func (s *doubtService) Answer(ctx context.Context, actor ActivityActor, doubtID uint, payload dto.DoubtAnswerRequest) (dto.DoubtResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.DoubtResponse{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	answer := strings.TrimSpace(payload.Answer)
	if answer == "" {
		return dto.DoubtResponse{}, fmt.Errorf("%w: answer is empty", ErrValidation)
	}

	if _, err := s.authorize(ctx, actor, doubtID); err != nil {
		return dto.DoubtResponse{}, err
	}

	answered, err := s.doubts.Answer(ctx, doubtID, answer, s.now().UTC())
	switch {
	case errors.Is(err, repository.ErrDoubtNotOpen):
		return dto.DoubtResponse{}, ErrDoubtAlreadyResolved
	case errors.Is(err, gorm.ErrRecordNotFound):
		return dto.DoubtResponse{}, ErrDoubtNotFound
	case err != nil:
		return dto.DoubtResponse{}, err
	}

	audit(ctx, s.recorder, s.logger, ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     models.ActionDoubtAnswered,
		EntityType: "doubt",
		EntityID:   &answered.ID,
		Metadata:   map[string]interface{}{"course_id": answered.CourseID},
	})

	return dto.NewDoubtResponse(answered), nil
}

// authorize loads the doubt and checks that the actor owns its course.
func (s *doubtService) authorize(ctx context.Context, actor ActivityActor, doubtID uint) (models.Doubt, error) {
	if !actor.IsFaculty() {
		return models.Doubt{}, ErrForbidden
	}

	doubt, err := s.doubts.GetByID(ctx, doubtID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Doubt{}, ErrDoubtNotFound
	}
	if err != nil {
		return models.Doubt{}, err
	}

	if !actor.IsAdmin() && doubt.Course.TeacherID != actor.ID {
		return models.Doubt{}, fmt.Errorf("%w: course belongs to another teacher", ErrForbidden)
	}
	return doubt, nil
}
