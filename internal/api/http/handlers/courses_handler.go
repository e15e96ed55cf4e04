package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campuslane/learning-service/internal/api/dto"
	"github.com/campuslane/learning-service/internal/auth"
	"github.com/campuslane/learning-service/internal/service"
)

// CoursesHandler manages course and enrollment endpoints.
type CoursesHandler struct {
	courses   *service.CourseService
	validator *dto.Validator
}

// NewCoursesHandler constructs handler.
func NewCoursesHandler(courseService *service.CourseService, validator *dto.Validator) *CoursesHandler {
	return &CoursesHandler{courses: courseService, validator: validator}
}

// List handles GET /api/courses.
func (h *CoursesHandler) List(c *fiber.Ctx) error {
	var query dto.CourseListQuery
	if err := bindQuery(c, h.validator, &query); err != nil {
		return err
	}
	courses, err := h.courses.List(c.UserContext(), query.Filter())
	if err != nil {
		return err
	}
	return c.JSON(dto.CourseListResponse{Courses: courses})
}

// Get handles GET /api/courses/:id.
func (h *CoursesHandler) Get(c *fiber.Ctx) error {
	course, err := h.courses.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.CourseResponse{Course: course})
}

// Create handles POST /api/courses.
func (h *CoursesHandler) Create(c *fiber.Ctx) error {
	identity, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	var req dto.CreateCourseRequest
	if err := bindBody(c, h.validator, &req); err != nil {
		return err
	}
	course, err := h.courses.Create(c.UserContext(), identity, service.CreateCourseInput{
		Title:       req.Title,
		Code:        req.Code,
		Description: req.Description,
		Department:  req.Department,
		Credits:     req.Credits,
		Semester:    req.Semester,
		Year:        req.Year,
		Schedule:    req.Schedule,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.CourseResponse{Message: "Course created successfully", Course: course})
}

// Update handles PUT /api/courses/:id.
func (h *CoursesHandler) Update(c *fiber.Ctx) error {
	identity, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	var req dto.UpdateCourseRequest
	if err := bindBody(c, h.validator, &req); err != nil {
		return err
	}
	course, err := h.courses.Update(c.UserContext(), identity, c.Params("id"), service.UpdateCourseInput{
		Title:       req.Title,
		Description: req.Description,
		Department:  req.Department,
		Credits:     req.Credits,
		Semester:    req.Semester,
		Year:        req.Year,
		Schedule:    req.Schedule,
		IsActive:    req.IsActive,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.CourseResponse{Message: "Course updated successfully", Course: course})
}

// Enroll handles POST /api/courses/:id/enroll.
func (h *CoursesHandler) Enroll(c *fiber.Ctx) error {
	identity, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	course, err := h.courses.Enroll(c.UserContext(), identity, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.CourseResponse{Message: "Successfully enrolled in course", Course: course})
}

// Unenroll handles DELETE /api/courses/:id/enroll.
func (h *CoursesHandler) Unenroll(c *fiber.Ctx) error {
	identity, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	if err := h.courses.Unenroll(c.UserContext(), identity, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Successfully unenrolled from course"})
}

// Delete handles DELETE /api/courses/:id.
func (h *CoursesHandler) Delete(c *fiber.Ctx) error {
	if err := h.courses.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Course deleted successfully"})
}
