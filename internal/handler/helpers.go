package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/manan-api/internal/middleware"
	"github.com/noah-isme/manan-api/internal/service"
	"github.com/noah-isme/manan-api/internal/utils"
)

const idempotencyHeader = "Idempotency-Key"

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	return strconv.Atoi(value)
}

func parseOptionalQueryUint(c *fiber.Ctx, key string) (*uint, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil || parsed == 0 {
		return nil, fmt.Errorf("invalid %s", key)
	}
	id := uint(parsed)
	return &id, nil
}

// parseOptionalQueryTime reads an RFC 3339 timestamp such as
// 2026-03-01T00:00:00Z.
func parseOptionalQueryTime(c *fiber.Ctx, key string) (*time.Time, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s, expected RFC 3339", key)
	}
	parsed = parsed.UTC()
	return &parsed, nil
}

func parseUintParam(c *fiber.Ctx, key string) (uint, error) {
	parsed, err := strconv.ParseUint(c.Params(key), 10, 64)
	if err != nil || parsed == 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return uint(parsed), nil
}

func userIDFromContext(c *fiber.Ctx) uint {
	switch id := c.Locals("user_id").(type) {
	case uint:
		return id
	case int:
		if id > 0 {
			return uint(id)
		}
	}
	return 0
}

func userRoleFromContext(c *fiber.Ctx) string {
	if role, ok := c.Locals("user_role").(string); ok {
		return strings.ToLower(strings.TrimSpace(role))
	}
	return ""
}

func actorFromContext(c *fiber.Ctx) service.ActivityActor {
	return service.ActivityActor{
		ID:   userIDFromContext(c),
		Role: userRoleFromContext(c),
	}
}

func withRequestContext(c *fiber.Ctx) context.Context {
	ctx := c.UserContext()
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

func idempotencyKey(c *fiber.Ctx, fromBody string) string {
	if key := strings.TrimSpace(fromBody); key != "" {
		return key
	}
	return strings.TrimSpace(c.Get(idempotencyHeader))
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}

func validationDetails(err error) map[string]string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}
	details := make(map[string]string, len(validationErrors))
	for _, fieldErr := range validationErrors {
		details[strings.ToLower(fieldErr.Field())] = fieldErr.Tag()
	}
	return details
}

// respondError maps service sentinels onto HTTP statuses. Anything unknown is
// logged and reported as a generic 500.
func respondError(c *fiber.Ctx, logger zerolog.Logger, err error, action string) error {
	switch {
	case errors.Is(err, service.ErrValidation) || isValidationError(err):
		if details := validationDetails(err); details != nil {
			return utils.Fail(c, fiber.StatusBadRequest, "validation failed", details)
		}
		return utils.Fail(c, fiber.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, service.ErrDoubtNotFound),
		errors.Is(err, service.ErrCourseNotFound),
		errors.Is(err, service.ErrStudentNotFound):
		return utils.Fail(c, fiber.StatusNotFound, err.Error(), nil)
	case errors.Is(err, service.ErrDoubtAlreadyResolved),
		errors.Is(err, service.ErrIdempotencyKeyReused):
		return utils.Fail(c, fiber.StatusConflict, err.Error(), nil)
	case errors.Is(err, service.ErrForbidden):
		return utils.Fail(c, fiber.StatusForbidden, err.Error(), nil)
	case errors.Is(err, service.ErrNoRecipients):
		return utils.Fail(c, fiber.StatusUnprocessableEntity, err.Error(), nil)
	}

	requestLogger(logger, c).Error().Err(err).Msg(action)
	return utils.Fail(c, fiber.StatusInternalServerError, "internal server error", nil)
}

// facultyTarget picks whose dashboard a faculty request reads. Admins may look
// at another teacher through ?teacher_id=, everyone else sees their own.
func facultyTarget(c *fiber.Ctx) (uint, error) {
	actor := actorFromContext(c)
	if actor.IsAdmin() {
		teacherID, err := parseOptionalQueryUint(c, "teacher_id")
		if err != nil {
			return 0, err
		}
		if teacherID != nil {
			return *teacherID, nil
		}
	}
	return actor.ID, nil
}
