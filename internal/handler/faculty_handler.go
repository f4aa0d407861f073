package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/manan-api/internal/dto"
	"github.com/noah-isme/manan-api/internal/service"
	"github.com/noah-isme/manan-api/internal/utils"
)

// FacultyHandler serves dashboard stats and the risk-classified roster.
type FacultyHandler struct {
	stats  service.StatsService
	roster service.RosterService
	logger zerolog.Logger
}

// NewFacultyHandler constructs the faculty dashboard handler.
func NewFacultyHandler(stats service.StatsService, roster service.RosterService, logger zerolog.Logger) *FacultyHandler {
	return &FacultyHandler{
		stats:  stats,
		roster: roster,
		logger: logger.With().Str("component", "faculty_handler").Logger(),
	}
}

// RegisterFacultyRoutes binds the dashboard routes.
func (h *FacultyHandler) RegisterFacultyRoutes(router fiber.Router) {
	router.Get("/stats", h.getStats)
	router.Get("/students", h.listStudents)
	router.Get("/students/:id", h.getStudent)
}

// RegisterStudentRoutes binds the self-service metrics route under a
// /students group.
func (h *FacultyHandler) RegisterStudentRoutes(router fiber.Router) {
	router.Put("/me/metrics", h.updateMetrics)
}

func (h *FacultyHandler) getStats(c *fiber.Ctx) error {
	teacherID, err := facultyTarget(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	if teacherID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	stats, err := h.stats.Get(withRequestContext(c), teacherID)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load stats")
	}

	return utils.OK(c, stats, "stats", fiber.Map{"cache_hit": stats.CacheHit})
}

func (h *FacultyHandler) listStudents(c *fiber.Ctx) error {
	roster, err := h.roster.ListClassified(withRequestContext(c), actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to classify students")
	}

	return utils.SendSuccess(c, "students", roster)
}

func (h *FacultyHandler) getStudent(c *fiber.Ctx) error {
	studentID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	student, err := h.roster.GetClassified(withRequestContext(c), actorFromContext(c), studentID)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load student")
	}

	return utils.SendSuccess(c, "student", student)
}

func (h *FacultyHandler) updateMetrics(c *fiber.Ctx) error {
	actor := actorFromContext(c)
	if actor.ID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	var payload dto.StudentMetricsUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.roster.UpdateOwnMetrics(withRequestContext(c), actor, payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to update metrics")
	}

	return utils.SendSuccess(c, "metrics updated", response)
}
