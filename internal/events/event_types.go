package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/campuslane/learning-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventCourseEnrolled      EventType = "course_enrolled"
	EventCourseUnenrolled    EventType = "course_unenrolled"
	EventAssignmentCreated   EventType = "assignment_created"
	EventAssignmentSubmitted EventType = "assignment_submitted"
	EventSubmissionGraded    EventType = "submission_graded"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	UserID string      `json:"user_id"`
	Role   domain.Role `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	CourseID  string    `json:"course_id"`
	Actor     Actor     `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// New stamps an event with a fresh id and the current time.
func New(eventType EventType, courseID string, actor *domain.Identity, payload any) Event {
	event := Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		CourseID:  courseID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
	if actor != nil {
		event.Actor = Actor{UserID: actor.ID, Role: actor.Role}
	}
	return event
}

// EnrollmentPayload payload.
type EnrollmentPayload struct {
	StudentID  string `json:"student_id"`
	CourseCode string `json:"course_code"`
}

// AssignmentCreatedPayload payload.
type AssignmentCreatedPayload struct {
	AssignmentID string                `json:"assignment_id"`
	Title        string                `json:"title"`
	Type         domain.AssignmentType `json:"type"`
	DueDate      time.Time             `json:"due_date"`
}

// AssignmentSubmittedPayload payload.
type AssignmentSubmittedPayload struct {
	AssignmentID string                  `json:"assignment_id"`
	SubmissionID string                  `json:"submission_id"`
	StudentID    string                  `json:"student_id"`
	Status       domain.SubmissionStatus `json:"status"`
}

// SubmissionGradedPayload payload.
type SubmissionGradedPayload struct {
	AssignmentID string `json:"assignment_id"`
	SubmissionID string `json:"submission_id"`
	StudentID    string `json:"student_id"`
	Points       int    `json:"points"`
	TotalPoints  int    `json:"total_points"`
}
