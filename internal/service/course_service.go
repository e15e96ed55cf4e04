package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/campuslane/learning-service/internal/auth"
	"github.com/campuslane/learning-service/internal/domain"
	"github.com/campuslane/learning-service/internal/events"
	"github.com/campuslane/learning-service/internal/repository"
)

// CourseService coordinates course and enrollment workflows.
type CourseService struct {
	courses     repository.CourseRepository
	assignments repository.AssignmentRepository
	events      publisher
}

// CourseDependencies bundles collaborators for the course service.
type CourseDependencies struct {
	CourseRepo     repository.CourseRepository
	AssignmentRepo repository.AssignmentRepository
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
}

// CreateCourseInput describes course creation payload.
type CreateCourseInput struct {
	Title       string
	Code        string
	Description *string
	Department  string
	Credits     int
	Semester    domain.Semester
	Year        int
	Schedule    []domain.ScheduleEntry
}

// UpdateCourseInput carries the fields to change; nil fields are left alone.
type UpdateCourseInput struct {
	Title       *string
	Description *string
	Department  *string
	Credits     *int
	Semester    *domain.Semester
	Year        *int
	Schedule    []domain.ScheduleEntry
	IsActive    *bool
}

// CourseDetail is a course with its roster and coursework.
type CourseDetail struct {
	domain.Course
	EnrolledStudents []domain.Enrollment `json:"enrolledStudents"`
	Assignments      []domain.Assignment `json:"assignments"`
}

// NewCourseService constructs the service.
func NewCourseService(deps CourseDependencies) *CourseService {
	return &CourseService{
		courses:     deps.CourseRepo,
		assignments: deps.AssignmentRepo,
		events:      newPublisher(deps.Dispatcher, deps.Logger),
	}
}

// List returns active courses newest first.
func (s *CourseService) List(ctx context.Context, filter domain.CourseFilter) ([]domain.Course, error) {
	courses, err := s.courses.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if courses == nil {
		courses = []domain.Course{}
	}
	return courses, nil
}

// Get loads a course with enrollments and assignments.
func (s *CourseService) Get(ctx context.Context, id string) (*CourseDetail, error) {
	course, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	roster, err := s.courses.ListEnrollments(ctx, course.ID)
	if err != nil {
		return nil, err
	}
	coursework, err := s.assignments.List(ctx, domain.AssignmentFilter{CourseID: &course.ID})
	if err != nil {
		return nil, err
	}

	detail := &CourseDetail{Course: *course, EnrolledStudents: roster, Assignments: coursework}
	if detail.EnrolledStudents == nil {
		detail.EnrolledStudents = []domain.Enrollment{}
	}
	if detail.Assignments == nil {
		detail.Assignments = []domain.Assignment{}
	}
	return detail, nil
}

// Create adds a course taught by the caller.
func (s *CourseService) Create(ctx context.Context, identity *domain.Identity, input CreateCourseInput) (*domain.Course, error) {
	schedule := input.Schedule
	if schedule == nil {
		schedule = []domain.ScheduleEntry{}
	}
	course := &domain.Course{
		Title:        strings.TrimSpace(input.Title),
		Code:         strings.ToUpper(strings.TrimSpace(input.Code)),
		Description:  input.Description,
		InstructorID: identity.ID,
		Department:   strings.TrimSpace(input.Department),
		Credits:      input.Credits,
		Semester:     input.Semester,
		Year:         input.Year,
		Schedule:     schedule,
		IsActive:     true,
	}
	if err := s.courses.Create(ctx, course); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrCourseCodeExists
		}
		return nil, err
	}
	return s.load(ctx, course.ID)
}

// Update applies a partial change for the course instructor or an admin.
func (s *CourseService) Update(ctx context.Context, identity *domain.Identity, id string, input UpdateCourseInput) (*domain.Course, error) {
	course, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.AuthorizeOwnerOrAdmin(identity, course.InstructorID); err != nil {
		return nil, err
	}

	if input.Title != nil {
		course.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		course.Description = input.Description
	}
	if input.Department != nil {
		course.Department = strings.TrimSpace(*input.Department)
	}
	if input.Credits != nil {
		course.Credits = *input.Credits
	}
	if input.Semester != nil {
		course.Semester = *input.Semester
	}
	if input.Year != nil {
		course.Year = *input.Year
	}
	if input.Schedule != nil {
		course.Schedule = input.Schedule
	}
	if input.IsActive != nil {
		course.IsActive = *input.IsActive
	}

	if err := s.courses.Update(ctx, course); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("Course")
		}
		return nil, err
	}
	return s.load(ctx, course.ID)
}

// Enroll adds the calling student to an active course.
func (s *CourseService) Enroll(ctx context.Context, identity *domain.Identity, id string) (*domain.Course, error) {
	course, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !course.IsActive {
		return nil, ErrCourseInactive
	}

	if _, err := s.courses.Enroll(ctx, course.ID, identity.ID); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyEnrolled
		}
		return nil, err
	}

	s.events.publish(ctx, events.New(events.EventCourseEnrolled, course.ID, identity, events.EnrollmentPayload{
		StudentID:  identity.ID,
		CourseCode: course.Code,
	}))
	return s.load(ctx, course.ID)
}

// Unenroll removes the calling student from a course. Removing a missing enrollment succeeds.
func (s *CourseService) Unenroll(ctx context.Context, identity *domain.Identity, id string) error {
	course, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	if err := s.courses.Unenroll(ctx, course.ID, identity.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return err
	}

	s.events.publish(ctx, events.New(events.EventCourseUnenrolled, course.ID, identity, events.EnrollmentPayload{
		StudentID:  identity.ID,
		CourseCode: course.Code,
	}))
	return nil
}

// Delete removes a course along with its enrollments and assignments.
func (s *CourseService) Delete(ctx context.Context, id string) error {
	if err := s.courses.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return notFound("Course")
		}
		return err
	}
	return nil
}

func (s *CourseService) load(ctx context.Context, id string) (*domain.Course, error) {
	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("Course")
		}
		return nil, err
	}
	return course, nil
}
