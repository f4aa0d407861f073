package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/manan-api/internal/config"
	"github.com/noah-isme/manan-api/internal/handler"
	"github.com/noah-isme/manan-api/internal/middleware"
	"github.com/noah-isme/manan-api/internal/service"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	DoubtHandler        *handler.DoubtHandler
	NotificationHandler *handler.NotificationHandler
	FacultyHandler      *handler.FacultyHandler
	CourseHandler       *handler.CourseHandler
	SettingsHandler     *handler.SettingsHandler
	ActivityHandler     *handler.ActivityHandler
	HealthProbes        []handler.HealthProbe
	MetricsHandler      fiber.Handler
	JWTMiddleware       fiber.Handler
	Maintenance         fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.HealthProbes...))
	if deps.MetricsHandler != nil {
		api.Get("/metrics", deps.MetricsHandler)
	}

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}
	maintenance := deps.Maintenance
	if maintenance == nil {
		maintenance = func(c *fiber.Ctx) error { return c.Next() }
	}

	studentOnly := middleware.RequireRole(service.RoleStudent)
	facultyOnly := middleware.RequireRole(service.RoleTeacher, service.RoleAdmin)
	adminOnly := middleware.RequireRole(service.RoleAdmin)

	if deps.SettingsHandler != nil {
		deps.SettingsHandler.Register(api.Group("/platform", jwtMiddleware))
	}

	// Student surface
	if deps.DoubtHandler != nil {
		doubts := api.Group("/doubts", jwtMiddleware, studentOnly, maintenance)
		deps.DoubtHandler.RegisterStudentRoutes(doubts, middleware.RateLimit("doubts", cfg.DoubtsPerMinute, time.Minute))
	}
	if deps.NotificationHandler != nil {
		deps.NotificationHandler.RegisterStudentRoutes(api.Group("/notifications", jwtMiddleware, studentOnly))
	}
	if deps.FacultyHandler != nil {
		deps.FacultyHandler.RegisterStudentRoutes(api.Group("/students", jwtMiddleware, studentOnly, maintenance))
	}
	if deps.CourseHandler != nil {
		deps.CourseHandler.Register(api.Group("/courses", jwtMiddleware, maintenance))
	}

	// Faculty surface
	faculty := api.Group("/faculty", jwtMiddleware, facultyOnly)
	if deps.CourseHandler != nil {
		deps.CourseHandler.RegisterFacultyRoutes(faculty)
	}
	if deps.DoubtHandler != nil {
		deps.DoubtHandler.RegisterFacultyRoutes(faculty)
	}
	if deps.FacultyHandler != nil {
		deps.FacultyHandler.RegisterFacultyRoutes(faculty)
	}
	if deps.NotificationHandler != nil {
		deps.NotificationHandler.RegisterFacultyRoutes(faculty)
	}

	// Admin surface
	admin := api.Group("/admin", jwtMiddleware, adminOnly)
	if deps.SettingsHandler != nil {
		deps.SettingsHandler.RegisterAdminRoutes(admin)
	}
	if deps.ActivityHandler != nil {
		deps.ActivityHandler.RegisterAdminRoutes(admin)
	}
}
