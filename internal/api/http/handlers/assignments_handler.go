package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campuslane/learning-service/internal/api/dto"
	"github.com/campuslane/learning-service/internal/auth"
	"github.com/campuslane/learning-service/internal/service"
)

// AssignmentsHandler manages coursework, submission and grading endpoints.
type AssignmentsHandler struct {
	assignments *service.AssignmentService
	validator   *dto.Validator
}

// NewAssignmentsHandler constructs handler.
func NewAssignmentsHandler(assignmentService *service.AssignmentService, validator *dto.Validator) *AssignmentsHandler {
	return &AssignmentsHandler{assignments: assignmentService, validator: validator}
}

// List handles GET /api/assignments.
func (h *AssignmentsHandler) List(c *fiber.Ctx) error {
	identity, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	assignments, err := h.assignments.ListForIdentity(c.UserContext(), identity)
	if err != nil {
		return err
	}
	return c.JSON(dto.AssignmentListResponse{Assignments: assignments})
}

// ListForCourse handles GET /api/assignments/course/:courseId.
func (h *AssignmentsHandler) ListForCourse(c *fiber.Ctx) error {
	identity, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	assignments, err := h.assignments.ListForCourse(c.UserContext(), identity, c.Params("courseId"))
	if err != nil {
		return err
	}
	return c.JSON(dto.AssignmentListResponse{Assignments: assignments})
}

// Get handles GET /api/assignments/:id.
func (h *AssignmentsHandler) Get(c *fiber.Ctx) error {
	identity, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	assignment, err := h.assignments.Get(c.UserContext(), identity, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.AssignmentResponse{Assignment: assignment})
}

// Create handles POST /api/assignments.
func (h *AssignmentsHandler) Create(c *fiber.Ctx) error {
	identity, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	var req dto.CreateAssignmentRequest
	if err := bindBody(c, h.validator, &req); err != nil {
		return err
	}
	assignment, err := h.assignments.Create(c.UserContext(), identity, service.CreateAssignmentInput{
		Title:       req.Title,
		Description: req.Description,
		CourseID:    req.CourseID,
		Type:        req.Type,
		TotalPoints: *req.TotalPoints,
		DueDate:     req.DueDate.UTC(),
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.AssignmentResponse{
		Message:    "Assignment created successfully",
		Assignment: assignment,
	})
}

// Submit handles POST /api/assignments/:id/submit.
func (h *AssignmentsHandler) Submit(c *fiber.Ctx) error {
	identity, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	var req dto.SubmitAssignmentRequest
	if err := bindBody(c, h.validator, &req); err != nil {
		return err
	}
	submission, err := h.assignments.Submit(c.UserContext(), identity, c.Params("id"), service.SubmitInput{
		Content:     req.Content,
		Attachments: req.Attachments,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.SubmissionResponse{Message: "Assignment submitted successfully", Submission: submission})
}

// Grade handles PUT /api/assignments/:id/submissions/:submissionId/grade.
func (h *AssignmentsHandler) Grade(c *fiber.Ctx) error {
	identity, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	var req dto.GradeSubmissionRequest
	if err := bindBody(c, h.validator, &req); err != nil {
		return err
	}
	submission, err := h.assignments.Grade(c.UserContext(), identity, c.Params("id"), c.Params("submissionId"), service.GradeInput{
		Points:   *req.Points,
		Feedback: req.Feedback,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.SubmissionResponse{Message: "Submission graded successfully", Submission: submission})
}

// Delete handles DELETE /api/assignments/:id.
func (h *AssignmentsHandler) Delete(c *fiber.Ctx) error {
	identity, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	if err := h.assignments.Delete(c.UserContext(), identity, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Assignment deleted successfully"})
}
