package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/manan-api/internal/dto"
	"github.com/noah-isme/manan-api/internal/service"
	"github.com/noah-isme/manan-api/internal/utils"
)

// ActivityHandler exposes the admin audit trail.
type ActivityHandler struct {
	service service.ActivityService
	logger  zerolog.Logger
}

// NewActivityHandler constructs the handler.
func NewActivityHandler(service service.ActivityService, logger zerolog.Logger) *ActivityHandler {
	return &ActivityHandler{
		service: service,
		logger:  logger.With().Str("component", "activity_handler").Logger(),
	}
}

// RegisterAdminRoutes attaches activity routes to the admin group.
func (h *ActivityHandler) RegisterAdminRoutes(router fiber.Router) {
	router.Get("/activity", h.list)
}

func (h *ActivityHandler) list(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}

	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page size")
	}

	actorID, err := parseOptionalQueryUint(c, "actor_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid actor id")
	}

	entityID, err := parseOptionalQueryUint(c, "entity_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid entity id")
	}

	since, err := parseOptionalQueryTime(c, "since")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	until, err := parseOptionalQueryTime(c, "until")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	req := dto.ActivityListRequest{
		Page:       page,
		PageSize:   pageSize,
		Action:     c.Query("action"),
		EntityType: c.Query("entity_type"),
		Since:      since,
		Until:      until,
	}
	if actorID != nil {
		req.ActorID = *actorID
	}
	if entityID != nil {
		req.EntityID = *entityID
	}

	response, err := h.service.List(withRequestContext(c), actorFromContext(c), req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to list activity logs")
	}

	return utils.OK(c, response.Items, "activity logs", response.Pagination)
}
