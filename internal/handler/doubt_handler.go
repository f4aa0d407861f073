package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/manan-api/internal/dto"
	"github.com/noah-isme/manan-api/internal/service"
	"github.com/noah-isme/manan-api/internal/utils"
)

// DoubtHandler exposes doubt submission for students and the resolution
// workflow for faculty.
type DoubtHandler struct {
	service service.DoubtService
	logger  zerolog.Logger
}

// NewDoubtHandler constructs a handler instance.
func NewDoubtHandler(service service.DoubtService, logger zerolog.Logger) *DoubtHandler {
	return &DoubtHandler{
		service: service,
		logger:  logger.With().Str("component", "doubt_handler").Logger(),
	}
}

// RegisterStudentRoutes binds the student routes under a /doubts group. Extra handlers run in front
// of submission only, which is where the rate limiter goes.
func (h *DoubtHandler) RegisterStudentRoutes(router fiber.Router, submitGuards ...fiber.Handler) {
	submit := append(append([]fiber.Handler{}, submitGuards...), h.submit)
	router.Post("/", submit...)
	router.Get("/mine", h.listMine)
}

// RegisterFacultyRoutes binds the faculty routes.
func (h *DoubtHandler) RegisterFacultyRoutes(router fiber.Router) {
	router.Get("/doubts", h.listOpen)
	router.Patch("/doubts/:id/answer", h.answer)
	router.Put("/doubts/:id/resolve", h.resolve)
}

func (h *DoubtHandler) submit(c *fiber.Ctx) error {
	actor := actorFromContext(c)
	if actor.ID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	var payload dto.DoubtCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.Submit(withRequestContext(c), actor, payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to submit doubt")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "doubt submitted", response)
}

func (h *DoubtHandler) listMine(c *fiber.Ctx) error {
	studentID := userIDFromContext(c)
	if studentID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	courseID, err := parseOptionalQueryUint(c, "course_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	doubts, err := h.service.ListByStudent(withRequestContext(c), studentID, courseID)
	if err != nil {
		return respondError(c, h.logger, err, "failed to list doubts")
	}

	return utils.OK(c, doubts, "doubts", fiber.Map{"count": len(doubts)})
}

func (h *DoubtHandler) listOpen(c *fiber.Ctx) error {
	teacherID, err := facultyTarget(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	if teacherID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	doubts, err := h.service.ListOpenByTeacher(withRequestContext(c), teacherID)
	if err != nil {
		return respondError(c, h.logger, err, "failed to list open doubts")
	}

	return utils.OK(c, doubts, "open doubts", fiber.Map{"count": len(doubts)})
}

func (h *DoubtHandler) answer(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.DoubtAnswerRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.Answer(withRequestContext(c), actorFromContext(c), id, payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to answer doubt")
	}

	return utils.SendSuccess(c, "doubt answered", response)
}

func (h *DoubtHandler) resolve(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.DoubtResolveRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&payload); err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
		}
	}

	response, err := h.service.Resolve(withRequestContext(c), actorFromContext(c), id, payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to resolve doubt")
	}

	return utils.SendSuccess(c, "doubt resolved", response)
}
