package dto

import (
	"time"

	"github.com/campuslane/learning-service/internal/domain"
)

// CreateAssignmentRequest payload for new assignments.
type CreateAssignmentRequest struct {
	Title       string                `json:"title" validate:"required,max=200"`
	Description *string               `json:"description"`
	CourseID    string                `json:"courseId" validate:"required,uuid"`
	Type        domain.AssignmentType `json:"type" validate:"required,oneof=Homework Quiz Project Exam Lab"`
	TotalPoints *int                  `json:"totalPoints" validate:"required,min=0"`
	DueDate     *time.Time            `json:"dueDate" validate:"required"`
}

// SubmitAssignmentRequest payload for a student submission.
type SubmitAssignmentRequest struct {
	Content     string   `json:"content"`
	Attachments []string `json:"attachments" validate:"omitempty,dive,required"`
}

// GradeSubmissionRequest payload for grading.
type GradeSubmissionRequest struct {
	Points   *int    `json:"points" validate:"required,min=0"`
	Feedback *string `json:"feedback"`
}

// AssignmentResponse wraps a single assignment.
type AssignmentResponse struct {
	Message    string             `json:"message,omitempty"`
	Assignment *domain.Assignment `json:"assignment"`
}

// AssignmentListResponse wraps an assignment listing.
type AssignmentListResponse struct {
	Assignments []domain.Assignment `json:"assignments"`
}

// SubmissionResponse wraps a single submission.
type SubmissionResponse struct {
	Message    string             `json:"message"`
	Submission *domain.Submission `json:"submission"`
}
