package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/campuslane/learning-service/internal/auth"
	"github.com/campuslane/learning-service/internal/domain"
	"github.com/campuslane/learning-service/internal/events"
	"github.com/campuslane/learning-service/internal/repository"
)

// AssignmentService coordinates coursework, submissions and grading.
type AssignmentService struct {
	assignments repository.AssignmentRepository
	courses     repository.CourseRepository
	events      publisher
	now         func() time.Time
}

// AssignmentDependencies bundles collaborators for the assignment service.
type AssignmentDependencies struct {
	AssignmentRepo repository.AssignmentRepository
	CourseRepo     repository.CourseRepository
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
	Now            func() time.Time
}

// CreateAssignmentInput describes assignment creation payload.
type CreateAssignmentInput struct {
	Title       string
	Description *string
	CourseID    string
	Type        domain.AssignmentType
	TotalPoints int
	DueDate     time.Time
}

// SubmitInput is a student's answer.
type SubmitInput struct {
	Content     string
	Attachments []string
}

// GradeInput is an instructor's evaluation.
type GradeInput struct {
	Points   int
	Feedback *string
}

// NewAssignmentService constructs the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &AssignmentService{
		assignments: deps.AssignmentRepo,
		courses:     deps.CourseRepo,
		events:      newPublisher(deps.Dispatcher, deps.Logger),
		now:         now,
	}
}

// ListForIdentity returns the active assignments visible to the caller, by due date.
// Students see their enrolled courses, faculty their own assignments and admins everything.
func (s *AssignmentService) ListForIdentity(ctx context.Context, identity *domain.Identity) ([]domain.Assignment, error) {
	filter := domain.AssignmentFilter{ActiveOnly: true}
	switch identity.Role {
	case domain.RoleStudent:
		filter.EnrolledStudentID = &identity.ID
	case domain.RoleFaculty:
		filter.InstructorID = &identity.ID
	case domain.RoleAdmin:
	default:
		return []domain.Assignment{}, nil
	}
	return s.list(ctx, filter)
}

// ListForCourse returns a course's active assignments to enrolled students, its instructor and admins.
func (s *AssignmentService) ListForCourse(ctx context.Context, identity *domain.Identity, courseID string) ([]domain.Assignment, error) {
	course, err := s.loadCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeCourseMember(ctx, identity, course.ID, course.InstructorID); err != nil {
		return nil, err
	}
	return s.list(ctx, domain.AssignmentFilter{CourseID: &course.ID, ActiveOnly: true})
}

// Get loads an assignment with the submissions the caller may see.
func (s *AssignmentService) Get(ctx context.Context, identity *domain.Identity, id string) (*domain.Assignment, error) {
	assignment, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeCourseMember(ctx, identity, assignment.CourseID, assignment.InstructorID); err != nil {
		return nil, err
	}

	var studentFilter *string
	if auth.AuthorizeOwnerOrAdmin(identity, assignment.InstructorID) != nil {
		studentFilter = &identity.ID
	}
	submissions, err := s.assignments.ListSubmissions(ctx, assignment.ID, studentFilter)
	if err != nil {
		return nil, err
	}
	if submissions == nil {
		submissions = []domain.Submission{}
	}
	assignment.Submissions = submissions
	return assignment, nil
}

// Create adds an assignment to a course taught by the caller.
func (s *AssignmentService) Create(ctx context.Context, identity *domain.Identity, input CreateAssignmentInput) (*domain.Assignment, error) {
	course, err := s.loadCourse(ctx, input.CourseID)
	if err != nil {
		return nil, err
	}
	if err := auth.AuthorizeOwnerOrAdmin(identity, course.InstructorID); err != nil {
		return nil, err
	}

	assignment := &domain.Assignment{
		Title:        strings.TrimSpace(input.Title),
		Description:  input.Description,
		CourseID:     course.ID,
		InstructorID: identity.ID,
		Type:         input.Type,
		TotalPoints:  input.TotalPoints,
		DueDate:      input.DueDate,
		IsActive:     true,
	}
	if err := s.assignments.Create(ctx, assignment); err != nil {
		return nil, err
	}

	s.events.publish(ctx, events.New(events.EventAssignmentCreated, course.ID, identity, events.AssignmentCreatedPayload{
		AssignmentID: assignment.ID,
		Title:        assignment.Title,
		Type:         assignment.Type,
		DueDate:      assignment.DueDate,
	}))
	return s.load(ctx, assignment.ID)
}

// Submit records the calling student's single submission. Submissions after the due date are late.
func (s *AssignmentService) Submit(ctx context.Context, identity *domain.Identity, id string, input SubmitInput) (*domain.Submission, error) {
	assignment, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	enrolled, err := s.courses.IsEnrolled(ctx, assignment.CourseID, identity.ID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, ErrNotEnrolled
	}

	existing, err := s.assignments.ListSubmissions(ctx, assignment.ID, &identity.ID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, ErrAlreadySubmitted
	}

	now := s.now().UTC()
	status := domain.SubmissionSubmitted
	if now.After(assignment.DueDate) {
		status = domain.SubmissionLate
	}
	attachments := input.Attachments
	if attachments == nil {
		attachments = []string{}
	}
	submission := &domain.Submission{
		AssignmentID: assignment.ID,
		StudentID:    identity.ID,
		SubmittedAt:  now,
		Content:      strings.TrimSpace(input.Content),
		Attachments:  attachments,
		Status:       status,
	}
	if err := s.assignments.CreateSubmission(ctx, submission); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadySubmitted
		}
		return nil, err
	}

	s.events.publish(ctx, events.New(events.EventAssignmentSubmitted, assignment.CourseID, identity, events.AssignmentSubmittedPayload{
		AssignmentID: assignment.ID,
		SubmissionID: submission.ID,
		StudentID:    identity.ID,
		Status:       status,
	}))
	return submission, nil
}

// Grade scores a submission. Only the assignment's instructor or an admin may grade.
func (s *AssignmentService) Grade(ctx context.Context, identity *domain.Identity, id, submissionID string, input GradeInput) (*domain.Submission, error) {
	assignment, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.AuthorizeOwnerOrAdmin(identity, assignment.InstructorID); err != nil {
		return nil, err
	}
	submission, err := s.loadSubmission(ctx, assignment.ID, submissionID)
	if err != nil {
		return nil, err
	}
	if input.Points > assignment.TotalPoints {
		return nil, ErrPointsExceedTotal
	}

	grade := domain.Grade{
		Points:   input.Points,
		Feedback: input.Feedback,
		GradedBy: identity.ID,
		GradedAt: s.now().UTC(),
	}
	if err := s.assignments.GradeSubmission(ctx, submission.ID, grade); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("Submission")
		}
		return nil, err
	}

	s.events.publish(ctx, events.New(events.EventSubmissionGraded, assignment.CourseID, identity, events.SubmissionGradedPayload{
		AssignmentID: assignment.ID,
		SubmissionID: submission.ID,
		StudentID:    submission.StudentID,
		Points:       grade.Points,
		TotalPoints:  assignment.TotalPoints,
	}))
	return s.loadSubmission(ctx, assignment.ID, submission.ID)
}

// Delete removes an assignment for its instructor or an admin.
func (s *AssignmentService) Delete(ctx context.Context, identity *domain.Identity, id string) error {
	assignment, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := auth.AuthorizeOwnerOrAdmin(identity, assignment.InstructorID); err != nil {
		return err
	}
	if err := s.assignments.Delete(ctx, assignment.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return notFound("Assignment")
		}
		return err
	}
	return nil
}

// authorizeCourseMember allows admins, the instructor and enrolled students.
func (s *AssignmentService) authorizeCourseMember(ctx context.Context, identity *domain.Identity, courseID, instructorID string) error {
	if auth.AuthorizeOwnerOrAdmin(identity, instructorID) == nil {
		return nil
	}
	enrolled, err := s.courses.IsEnrolled(ctx, courseID, identity.ID)
	if err != nil {
		return err
	}
	if !enrolled {
		return auth.ErrNotOwner
	}
	return nil
}

func (s *AssignmentService) list(ctx context.Context, filter domain.AssignmentFilter) ([]domain.Assignment, error) {
	assignments, err := s.assignments.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if assignments == nil {
		assignments = []domain.Assignment{}
	}
	return assignments, nil
}

func (s *AssignmentService) load(ctx context.Context, id string) (*domain.Assignment, error) {
	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("Assignment")
		}
		return nil, err
	}
	return assignment, nil
}

func (s *AssignmentService) loadCourse(ctx context.Context, id string) (*domain.Course, error) {
	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("Course")
		}
		return nil, err
	}
	return course, nil
}

func (s *AssignmentService) loadSubmission(ctx context.Context, assignmentID, submissionID string) (*domain.Submission, error) {
	submission, err := s.assignments.GetSubmission(ctx, assignmentID, submissionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("Submission")
		}
		return nil, err
	}
	return submission, nil
}
