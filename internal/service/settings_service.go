package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/manan-api/internal/dto"
	"github.com/noah-isme/manan-api/internal/models"
	"github.com/noah-isme/manan-api/internal/repository"
)

const (
	settingsCacheKey   = "settings:risk"
	settingsVersionKey = "settings:risk:version"
)

// RiskSettingsProvider returns the thresholds used for classification.
type RiskSettingsProvider interface {
	Get(ctx context.Context) (models.RiskSettings, error)
}

// SettingsService manages the institution-wide risk thresholds and platform flags.
type SettingsService interface {
	RiskSettingsProvider
	Current(ctx context.Context) (dto.RiskSettingsResponse, error)
	Save(ctx context.Context, actor ActivityActor, payload dto.RiskSettingsRequest) (dto.RiskSettingsResponse, error)
	PlatformStatus(ctx context.Context) (dto.PlatformStatusResponse, error)
}

type settingsService struct {
	repo      repository.SettingsRepository
	cache     *redis.Client
	cacheTTL  time.Duration
	validator *validator.Validate
	recorder  ActivityRecorder
	logger    zerolog.Logger
	now       func() time.Time
}

// NewSettingsService constructs the settings service. The cache is optional.
func NewSettingsService(repo repository.SettingsRepository, cache *redis.Client, ttl time.Duration, validate *validator.Validate, recorder ActivityRecorder, logger zerolog.Logger) SettingsService {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &settingsService{
		repo:      repo,
		cache:     cache,
		cacheTTL:  ttl,
		validator: validate,
		recorder:  recorder,
		logger:    logger.With().Str("component", "settings_service").Logger(),
		now:       time.Now,
	}
}

func (s *settingsService) Get(ctx context.Context) (models.RiskSettings, error) {
	key := s.cacheKey(ctx)
	if key != "" {
		cached, err := s.cache.Get(ctx, key).Result()
		if err == nil {
			var settings models.RiskSettings
			if unmarshalErr := json.Unmarshal([]byte(cached), &settings); unmarshalErr == nil {
				return settings, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("failed to read settings cache")
		}
	}

	settings, err := s.repo.Get(ctx)
	if err != nil {
		return models.RiskSettings{}, err
	}

	if key != "" {
		s.store(ctx, key, settings)
	}

	return settings, nil
}

// cacheKey names the cache entry for the current settings version. Save bumps
// the version, so an entry written by a read that raced a save is never
// served again.
func (s *settingsService) cacheKey(ctx context.Context) string {
	if s.cache == nil {
		return ""
	}
	version, err := s.cache.Get(ctx, settingsVersionKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		s.logger.Warn().Err(err).Msg("failed to read settings cache version")
		return ""
	}
	return versionedSettingsKey(version)
}

func (s *settingsService) store(ctx context.Context, key string, settings models.RiskSettings) {
	payload, err := json.Marshal(settings)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to store settings cache")
	}
}

func versionedSettingsKey(version int64) string {
	return fmt.Sprintf("%s:v%d", settingsCacheKey, version)
}

func (s *settingsService) Current(ctx context.Context) (dto.RiskSettingsResponse, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return dto.RiskSettingsResponse{}, err
	}
	return dto.NewRiskSettingsResponse(settings), nil
}

func (s *settingsService) Save(ctx context.Context, actor ActivityActor, payload dto.RiskSettingsRequest) (dto.RiskSettingsResponse, error) {
	if !actor.IsAdmin() {
		return dto.RiskSettingsResponse{}, ErrForbidden
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.RiskSettingsResponse{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	updatedBy := actor.ID
	settings := models.RiskSettings{
		ID:                  models.RiskSettingsID,
		AttendanceThreshold: *payload.AttendanceThreshold,
		CGPAThreshold:       *payload.CGPAThreshold,
		MaintenanceMode:     payload.MaintenanceMode,
		ExamMode:            payload.ExamMode,
		UpdatedBy:           &updatedBy,
		UpdatedAt:           s.now().UTC(),
	}

	if err := s.repo.Save(ctx, &settings); err != nil {
		return dto.RiskSettingsResponse{}, err
	}

	if s.cache != nil {
		version, err := s.cache.Incr(ctx, settingsVersionKey).Result()
		if err != nil {
			s.logger.Warn().Err(err).Msg("failed to bump settings cache version")
		} else {
			s.store(ctx, versionedSettingsKey(version), settings)
		}
	}

	entityID := settings.ID
	audit(ctx, s.recorder, s.logger, ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     models.ActionSettingsUpdated,
		EntityType: "settings",
		EntityID:   &entityID,
		Metadata: map[string]interface{}{
			"attendance_threshold": settings.AttendanceThreshold,
			"cgpa_threshold":       settings.CGPAThreshold,
			"maintenance_mode":     settings.MaintenanceMode,
			"exam_mode":            settings.ExamMode,
		},
	})

	s.logger.Info().
		Uint("admin_id", actor.ID).
		Float64("attendance_threshold", settings.AttendanceThreshold).
		Float64("cgpa_threshold", settings.CGPAThreshold).
		Bool("maintenance_mode", settings.MaintenanceMode).
		Msg("risk settings saved")

	return dto.NewRiskSettingsResponse(settings), nil
}

func (s *settingsService) PlatformStatus(ctx context.Context) (dto.PlatformStatusResponse, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return dto.PlatformStatusResponse{}, err
	}
	return dto.PlatformStatusResponse{
		MaintenanceMode: settings.MaintenanceMode,
		ExamMode:        settings.ExamMode,
	}, nil
}
