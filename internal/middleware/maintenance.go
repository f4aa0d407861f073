package middleware

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/manan-api/internal/dto"
	"github.com/noah-isme/manan-api/internal/utils"
)

// PlatformStatusReader exposes the platform flags.
type PlatformStatusReader interface {
	PlatformStatus(ctx context.Context) (dto.PlatformStatusResponse, error)
}

// Maintenance rejects mutating student requests while maintenance mode is
// on. Faculty and read-only requests always pass. If the flags cannot be
// read the request is let through.
func Maintenance(status PlatformStatusReader, logger zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if status == nil || normalizeRoleValue(c.Locals("user_role")) != "student" {
			return c.Next()
		}

		switch c.Method() {
		case fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions:
			return c.Next()
		}

		flags, err := status.PlatformStatus(c.UserContext())
		if err != nil {
			logger.Warn().Err(err).Str("correlation_id", GetCorrelationID(c)).Msg("failed to read platform status")
			return c.Next()
		}
		if flags.MaintenanceMode {
			return utils.Fail(c, fiber.StatusServiceUnavailable, "platform is under maintenance", nil)
		}

		return c.Next()
	}
}
