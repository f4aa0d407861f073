package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/manan-api/internal/dto"
	"github.com/noah-isme/manan-api/internal/observability"
	"github.com/noah-isme/manan-api/internal/repository"
)

// StatsRefresher recomputes a teacher's dashboard counters.
type StatsRefresher interface {
	Recompute(ctx context.Context, teacherID uint) (dto.FacultyStatsResponse, error)
}

// StatsService serves the faculty dashboard counters.
type StatsService interface {
	StatsRefresher
	Get(ctx context.Context, teacherID uint) (dto.FacultyStatsResponse, error)
}

type statsService struct {
	courses  repository.CourseRepository
	doubts   repository.DoubtRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
	tracer   trace.Tracer
	now      func() time.Time
}

// NewStatsService constructs the stats aggregator.
func NewStatsService(courses repository.CourseRepository, doubts repository.DoubtRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) StatsService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &statsService{
		courses:  courses,
		doubts:   doubts,
		cache:    cache,
		cacheTTL: ttl,
		logger:   logger.With().Str("component", "stats_service").Logger(),
		tracer:   otel.Tracer("github.com/noah-isme/manan-api/internal/service/stats"),
		now:      time.Now,
	}
}

func statsCacheKey(teacherID uint) string {
	return fmt.Sprintf("stats:teacher:%d", teacherID)
}

func (s *statsService) Get(ctx context.Context, teacherID uint) (dto.FacultyStatsResponse, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, statsCacheKey(teacherID)).Result()
		if err == nil {
			var response dto.FacultyStatsResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				observability.StatsRecompute().WithLabelValues("hit").Inc()
				response.CacheHit = true
				return response, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("failed to read stats cache")
		}
	}

	observability.StatsRecompute().WithLabelValues("miss").Inc()
	return s.compute(ctx, teacherID)
}

func (s *statsService) Recompute(ctx context.Context, teacherID uint) (dto.FacultyStatsResponse, error) {
	observability.StatsRecompute().WithLabelValues("refresh").Inc()
	return s.compute(ctx, teacherID)
}

func (s *statsService) compute(ctx context.Context, teacherID uint) (dto.FacultyStatsResponse, error) {
	spanCtx, span := s.tracer.Start(ctx, "stats.recompute", trace.WithAttributes(
		attribute.Int64("teacher.id", int64(teacherID)),
	))
	defer span.End()

	students, err := s.courses.CountStudentsByTeacher(spanCtx, teacherID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "count students")
		return dto.FacultyStatsResponse{}, err
	}

	courses, err := s.courses.CountByTeacher(spanCtx, teacherID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "count courses")
		return dto.FacultyStatsResponse{}, err
	}

	unsolved, err := s.doubts.CountOpenByTeacher(spanCtx, teacherID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "count doubts")
		return dto.FacultyStatsResponse{}, err
	}

	response := dto.FacultyStatsResponse{
		TeacherID:      teacherID,
		TotalStudents:  students,
		ActiveCourses:  courses,
		UnsolvedDoubts: unsolved,
		GeneratedAt:    s.now().UTC(),
	}

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(spanCtx, statsCacheKey(teacherID), payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Uint("teacher_id", teacherID).Msg("failed to store stats cache")
			}
		}
	}

	return response, nil
}

// refreshStats recomputes stats after a mutation. Failures are logged only.
func refreshStats(ctx context.Context, stats StatsRefresher, logger zerolog.Logger, teacherID uint) {
	if stats == nil || teacherID == 0 {
		return
	}
	if _, err := stats.Recompute(ctx, teacherID); err != nil {
		logger.Warn().Err(err).Uint("teacher_id", teacherID).Msg("failed to refresh faculty stats")
	}
}
