package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/manan-api/internal/dto"
	"github.com/noah-isme/manan-api/internal/middleware"
	"github.com/noah-isme/manan-api/internal/service"
	"github.com/noah-isme/manan-api/internal/utils"
)

// CourseHandler serves the course catalogue and enrollment.
type CourseHandler struct {
	service service.CourseService
	logger  zerolog.Logger
}

// NewCourseHandler constructs a course handler.
func NewCourseHandler(service service.CourseService, logger zerolog.Logger) *CourseHandler {
	return &CourseHandler{
		service: service,
		logger:  logger.With().Str("component", "course_handler").Logger(),
	}
}

// Register binds the catalogue routes under a /courses group. Listing is
// open to any authenticated user.
func (h *CourseHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
	router.Post("/:id/enroll", middleware.WithAuth(h.enroll, middleware.AuthOptions{Role: middleware.AuthRoleStudent}))
}

// RegisterFacultyRoutes binds course management routes.
func (h *CourseHandler) RegisterFacultyRoutes(router fiber.Router) {
	router.Post("/courses", h.create)
	router.Delete("/courses/:id", h.delete)
}

func (h *CourseHandler) list(c *fiber.Ctx) error {
	teacherID, err := parseOptionalQueryUint(c, "teacher_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	courses, err := h.service.List(withRequestContext(c), teacherID)
	if err != nil {
		return respondError(c, h.logger, err, "failed to list courses")
	}

	return utils.OK(c, courses, "courses", fiber.Map{"count": len(courses)})
}

func (h *CourseHandler) enroll(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	response, err := h.service.Enroll(withRequestContext(c), actorFromContext(c), courseID)
	if err != nil {
		return respondError(c, h.logger, err, "failed to enroll")
	}

	if response.Created {
		return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "enrolled", response)
	}
	return utils.SendSuccess(c, "already enrolled", response)
}

func (h *CourseHandler) create(c *fiber.Ctx) error {
	var payload dto.CourseCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.Create(withRequestContext(c), actorFromContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to create course")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "course created", response)
}

func (h *CourseHandler) delete(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(withRequestContext(c), actorFromContext(c), courseID); err != nil {
		return respondError(c, h.logger, err, "failed to delete course")
	}

	return utils.SendSuccess(c, "course deleted", nil)
}
