package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campuslane/learning-service/internal/api/http/handlers"
	"github.com/campuslane/learning-service/internal/auth"
	"github.com/campuslane/learning-service/internal/domain"
	apperrors "github.com/campuslane/learning-service/pkg/util"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Courses        *handlers.CoursesHandler
	Assignments    *handlers.AssignmentsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	authenticated := cfg.AuthMiddleware.Handle
	adminOnly := auth.RequireRoles(domain.RoleAdmin)
	facultyOrAdmin := auth.RequireRoles(domain.RoleFaculty, domain.RoleAdmin)
	studentOnly := auth.RequireRoles(domain.RoleStudent)
	ownerOrAdmin := auth.RequireOwnerOrAdmin("id")

	api := app.Group("/api")

	api.Get("/health", cfg.Health.Live)
	api.Get("/health/ready", cfg.Health.Ready)
	api.Get("/metrics", authenticated, adminOnly, cfg.Health.Metrics)

	authGroup := api.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Get("/me", authenticated, cfg.Auth.Me)
	authGroup.Put("/password", authenticated, cfg.Auth.ChangePassword)

	// Auth is attached per route; unmatched paths fall through to the 404 handler.
	users := api.Group("/users")
	users.Get("/course/:courseId/students", authenticated, facultyOrAdmin, cfg.Users.CourseStudents)
	users.Get("/:id/dashboard", authenticated, ownerOrAdmin, cfg.Users.Dashboard)
	users.Post("/", authenticated, adminOnly, cfg.Users.Create)
	users.Get("/", authenticated, adminOnly, cfg.Users.List)
	users.Get("/:id", authenticated, ownerOrAdmin, cfg.Users.Get)
	users.Put("/:id", authenticated, ownerOrAdmin, cfg.Users.Update)
	users.Delete("/:id", authenticated, adminOnly, cfg.Users.Delete)

	courses := api.Group("/courses")
	courses.Get("/", authenticated, cfg.Courses.List)
	courses.Get("/:id", authenticated, cfg.Courses.Get)
	courses.Post("/", authenticated, facultyOrAdmin, cfg.Courses.Create)
	courses.Put("/:id", authenticated, cfg.Courses.Update)
	courses.Post("/:id/enroll", authenticated, studentOnly, cfg.Courses.Enroll)
	courses.Delete("/:id/enroll", authenticated, studentOnly, cfg.Courses.Unenroll)
	courses.Delete("/:id", authenticated, adminOnly, cfg.Courses.Delete)

	assignments := api.Group("/assignments")
	assignments.Get("/", authenticated, cfg.Assignments.List)
	assignments.Get("/course/:courseId", authenticated, cfg.Assignments.ListForCourse)
	assignments.Get("/:id", authenticated, cfg.Assignments.Get)
	assignments.Post("/", authenticated, facultyOrAdmin, cfg.Assignments.Create)
	assignments.Post("/:id/submit", authenticated, studentOnly, cfg.Assignments.Submit)
	assignments.Put("/:id/submissions/:submissionId/grade", authenticated, facultyOrAdmin, cfg.Assignments.Grade)
	assignments.Delete("/:id", authenticated, facultyOrAdmin, cfg.Assignments.Delete)

	app.Use(func(c *fiber.Ctx) error {
		return apperrors.NewNotFound("Route", nil)
	})
}
