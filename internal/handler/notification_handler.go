package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/manan-api/internal/dto"
	"github.com/noah-isme/manan-api/internal/service"
	"github.com/noah-isme/manan-api/internal/utils"
)

// NotificationHandler serves faculty dispatch endpoints and the student feed.
type NotificationHandler struct {
	service service.NotificationService
	logger  zerolog.Logger
}

// NewNotificationHandler constructs a notification handler.
func NewNotificationHandler(service service.NotificationService, logger zerolog.Logger) *NotificationHandler {
	return &NotificationHandler{
		service: service,
		logger:  logger.With().Str("component", "notification_handler").Logger(),
	}
}

// RegisterFacultyRoutes binds send, batch, history and inbox routes.
func (h *NotificationHandler) RegisterFacultyRoutes(router fiber.Router) {
	router.Post("/notifications", h.send)
	router.Post("/notifications/batch-at-risk", h.batchAtRisk)
	router.Get("/notifications", h.history)
	router.Get("/notifications/inbox", h.inbox)
}

// RegisterStudentRoutes binds the feed route under a /notifications group.
func (h *NotificationHandler) RegisterStudentRoutes(router fiber.Router) {
	router.Get("/feed", h.feed)
}

func (h *NotificationHandler) send(c *fiber.Ctx) error {
	var payload dto.NotificationSendRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	payload.IdempotencyKey = idempotencyKey(c, payload.IdempotencyKey)

	response, err := h.service.Send(withRequestContext(c), actorFromContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to send notification")
	}

	if response.Replayed {
		return utils.SendSuccess(c, "notification already sent", response)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "notification sent", response)
}

func (h *NotificationHandler) batchAtRisk(c *fiber.Ctx) error {
	var payload dto.BatchNotifyRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	payload.IdempotencyKey = idempotencyKey(c, payload.IdempotencyKey)

	response, err := h.service.BatchNotifyAtRisk(withRequestContext(c), actorFromContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to notify at-risk students")
	}

	if response.Replayed {
		return utils.SendSuccess(c, "batch already sent", response)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "batch sent", response)
}

func (h *NotificationHandler) history(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page_size")
	}

	response, err := h.service.History(withRequestContext(c), actorFromContext(c), page, pageSize)
	if err != nil {
		return respondError(c, h.logger, err, "failed to list notifications")
	}

	return utils.OK(c, response.Items, "notifications", response.Pagination)
}

func (h *NotificationHandler) feed(c *fiber.Ctx) error {
	studentID := userIDFromContext(c)
	if studentID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}
	offset, err := parseQueryInt(c, "offset")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid offset")
	}

	items, err := h.service.Feed(withRequestContext(c), studentID, limit, offset)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load feed")
	}

	return utils.OK(c, items, "feed", fiber.Map{"limit": limit, "offset": offset, "count": len(items)})
}

func (h *NotificationHandler) inbox(c *fiber.Ctx) error {
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}
	offset, err := parseQueryInt(c, "offset")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid offset")
	}

	items, err := h.service.Inbox(withRequestContext(c), actorFromContext(c), limit, offset)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load inbox")
	}

	return utils.OK(c, items, "inbox", fiber.Map{"limit": limit, "offset": offset, "count": len(items)})
}
