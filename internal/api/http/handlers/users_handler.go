package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campuslane/learning-service/internal/api/dto"
	"github.com/campuslane/learning-service/internal/auth"
	"github.com/campuslane/learning-service/internal/service"
)

// UsersHandler exposes account management and dashboards.
type UsersHandler struct {
	users     *service.UserService
	validator *dto.Validator
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService, validator *dto.Validator) *UsersHandler {
	return &UsersHandler{users: userService, validator: validator}
}

// Dashboard handles GET /api/users/:id/dashboard.
func (h *UsersHandler) Dashboard(c *fiber.Ctx) error {
	dashboard, err := h.users.Dashboard(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dashboard)
}

// Create handles POST /api/users.
func (h *UsersHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateUserRequest
	if err := bindBody(c, h.validator, &req); err != nil {
		return err
	}
	user, err := h.users.Create(c.UserContext(), service.CreateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		Profile:  req.Profile,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User created successfully",
		"user":    user,
	})
}

// List handles GET /api/users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	var query dto.UserListQuery
	if err := bindQuery(c, h.validator, &query); err != nil {
		return err
	}
	users, err := h.users.List(c.UserContext(), query.Filter())
	if err != nil {
		return err
	}
	return c.JSON(dto.UserListResponse{Users: users})
}

// Get handles GET /api/users/:id.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	user, err := h.users.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.UserResponse{User: user})
}

// Update handles PUT /api/users/:id.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	identity, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	var req dto.UpdateUserRequest
	if err := bindBody(c, h.validator, &req); err != nil {
		return err
	}
	user, err := h.users.Update(c.UserContext(), identity, c.Params("id"), service.UpdateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Role:     req.Role,
		IsActive: req.IsActive,
		Profile:  req.Profile,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "User updated successfully",
		"user":    user,
	})
}

// Delete handles DELETE /api/users/:id.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	identity, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	if err := h.users.Delete(c.UserContext(), identity, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "User deleted successfully"})
}

// CourseStudents handles GET /api/users/course/:courseId/students.
func (h *UsersHandler) CourseStudents(c *fiber.Ctx) error {
	identity, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	students, err := h.users.CourseStudents(c.UserContext(), identity, c.Params("courseId"))
	if err != nil {
		return err
	}
	return c.JSON(dto.StudentListResponse{Students: students})
}
