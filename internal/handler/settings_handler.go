package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/manan-api/internal/dto"
	"github.com/noah-isme/manan-api/internal/service"
	"github.com/noah-isme/manan-api/internal/utils"
)

// SettingsHandler manages risk thresholds and platform flags.
type SettingsHandler struct {
	service service.SettingsService
	logger  zerolog.Logger
}

// NewSettingsHandler constructs a settings handler.
func NewSettingsHandler(service service.SettingsService, logger zerolog.Logger) *SettingsHandler {
	return &SettingsHandler{
		service: service,
		logger:  logger.With().Str("component", "settings_handler").Logger(),
	}
}

// RegisterAdminRoutes binds the settings routes.
func (h *SettingsHandler) RegisterAdminRoutes(router fiber.Router) {
	router.Get("/settings", h.get)
	router.Put("/settings", h.save)
}

// Register binds the status route under a /platform group.
func (h *SettingsHandler) Register(router fiber.Router) {
	router.Get("/status", h.status)
}

func (h *SettingsHandler) get(c *fiber.Ctx) error {
	settings, err := h.service.Current(withRequestContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to load settings")
	}
	return utils.SendSuccess(c, "settings", settings)
}

func (h *SettingsHandler) save(c *fiber.Ctx) error {
	var payload dto.RiskSettingsRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	settings, err := h.service.Save(withRequestContext(c), actorFromContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to save settings")
	}

	return utils.SendSuccess(c, "settings saved", settings)
}

func (h *SettingsHandler) status(c *fiber.Ctx) error {
	status, err := h.service.PlatformStatus(withRequestContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to read platform status")
	}
	return utils.SendSuccess(c, "platform status", status)
}
