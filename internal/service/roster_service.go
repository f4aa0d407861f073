package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/manan-api/internal/dto"
	"github.com/noah-isme/manan-api/internal/models"
	"github.com/noah-isme/manan-api/internal/repository"
)

// RosterService classifies students for faculty views and lets students
// maintain their own academic metrics.
type RosterService interface {
	ListClassified(ctx context.Context, actor ActivityActor) (dto.RosterResponse, error)
	GetClassified(ctx context.Context, actor ActivityActor, studentID uint) (dto.ClassifiedStudentResponse, error)
	UpdateOwnMetrics(ctx context.Context, actor ActivityActor, payload dto.StudentMetricsUpdateRequest) (dto.ClassifiedStudentResponse, error)
}

type rosterService struct {
	students  repository.StudentRepository
	courses   repository.CourseRepository
	settings  RiskSettingsProvider
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewRosterService constructs the roster service.
func NewRosterService(students repository.StudentRepository, courses repository.CourseRepository, settings RiskSettingsProvider, validate *validator.Validate, logger zerolog.Logger) RosterService {
	return &rosterService{
		students:  students,
		courses:   courses,
		settings:  settings,
		validator: validate,
		logger:    logger.With().Str("component", "roster_service").Logger(),
		now:       time.Now,
	}
}

// ListClassified returns the actor's students with their tiers. Settings are
// read on every call so that a saved threshold applies immediately.
func (s *rosterService) ListClassified(ctx context.Context, actor ActivityActor) (dto.RosterResponse, error) {
	if !actor.IsFaculty() {
		return dto.RosterResponse{}, ErrForbidden
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return dto.RosterResponse{}, err
	}

	students, err := s.students.List(ctx, teacherScope(actor))
	if err != nil {
		return dto.RosterResponse{}, err
	}

	counts := map[models.RiskTier]int{
		models.RiskTierSafe:     0,
		models.RiskTierWarning:  0,
		models.RiskTierAtRisk:   0,
		models.RiskTierCritical: 0,
	}
	rows := make([]dto.ClassifiedStudentResponse, 0, len(students))
	atRisk := 0
	for _, student := range students {
		tier := ClassifyRisk(student.Metrics(), settings)
		counts[tier]++
		if tier.NeedsAttention() {
			atRisk++
		}
		rows = append(rows, dto.NewClassifiedStudentResponse(student, tier))
	}

	return dto.RosterResponse{
		Students:     rows,
		TierCounts:   counts,
		AtRiskCount:  atRisk,
		Thresholds:   dto.NewRiskSettingsResponse(settings),
		ClassifiedAt: s.now().UTC(),
	}, nil
}

// GetClassified returns one student with their tier. Teachers only see
// students enrolled in one of their courses.
func (s *rosterService) GetClassified(ctx context.Context, actor ActivityActor, studentID uint) (dto.ClassifiedStudentResponse, error) {
	if !actor.IsFaculty() {
		return dto.ClassifiedStudentResponse{}, ErrForbidden
	}

	student, err := s.students.GetByID(ctx, studentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.ClassifiedStudentResponse{}, ErrStudentNotFound
	}
	if err != nil {
		return dto.ClassifiedStudentResponse{}, err
	}

	if !actor.IsAdmin() {
		owns, err := s.courses.OwnsStudent(ctx, actor.ID, studentID)
		if err != nil {
			return dto.ClassifiedStudentResponse{}, err
		}
		if !owns {
			return dto.ClassifiedStudentResponse{}, fmt.Errorf("%w: student is not enrolled in your courses", ErrForbidden)
		}
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return dto.ClassifiedStudentResponse{}, err
	}

	return dto.NewClassifiedStudentResponse(student, ClassifyRisk(student.Metrics(), settings)), nil
}

func (s *rosterService) UpdateOwnMetrics(ctx context.Context, actor ActivityActor, payload dto.StudentMetricsUpdateRequest) (dto.ClassifiedStudentResponse, error) {
	if actor.Role != RoleStudent {
		return dto.ClassifiedStudentResponse{}, ErrForbidden
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.ClassifiedStudentResponse{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if payload.AttendancePercent == nil && payload.CGPA == nil {
		return dto.ClassifiedStudentResponse{}, fmt.Errorf("%w: no metrics supplied", ErrValidation)
	}

	student, err := s.students.UpdateMetrics(ctx, actor.ID, models.AcademicMetrics{
		AttendancePercent: payload.AttendancePercent,
		CGPA:              payload.CGPA,
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.ClassifiedStudentResponse{}, ErrStudentNotFound
	}
	if err != nil {
		return dto.ClassifiedStudentResponse{}, err
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return dto.ClassifiedStudentResponse{}, err
	}

	return dto.NewClassifiedStudentResponse(student, ClassifyRisk(student.Metrics(), settings)), nil
}
