package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/campuslane/learning-service/internal/auth"
	"github.com/campuslane/learning-service/internal/config"
	"github.com/campuslane/learning-service/internal/domain"
	"github.com/campuslane/learning-service/internal/repository"
)

const upcomingAssignmentsLimit = 5

// UserService manages accounts on behalf of admins and account owners.
type UserService struct {
	users       repository.UserRepository
	courses     repository.CourseRepository
	assignments repository.AssignmentRepository
	bcryptCost  int
	now         func() time.Time
}

// UserDependencies bundles repositories for the user service.
type UserDependencies struct {
	UserRepo       repository.UserRepository
	CourseRepo     repository.CourseRepository
	AssignmentRepo repository.AssignmentRepository
}

// CreateUserInput is the admin account creation payload.
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
	Profile  domain.Profile
}

// UpdateUserInput carries the fields to change; nil fields are left alone.
type UpdateUserInput struct {
	Name     *string
	Email    *string
	Role     *domain.Role
	IsActive *bool
	Profile  domain.Profile
}

// DashboardStats summarizes a student's progress.
type DashboardStats struct {
	CurrentLevel     int `json:"currentLevel"`
	XP               int `json:"xp"`
	Streak           int `json:"streak"`
	TotalCourses     int `json:"totalCourses"`
	CompletedCourses int `json:"completedCourses"`
}

// Dashboard aggregates a user's courses and upcoming work.
type Dashboard struct {
	User            *domain.User        `json:"user"`
	EnrolledCourses []domain.Enrollment `json:"enrolledCourses"`
	Assignments     []domain.Assignment `json:"assignments"`
	Stats           DashboardStats      `json:"stats"`
}

// NewUserService constructs the service.
func NewUserService(cfg config.AuthConfig, deps UserDependencies) *UserService {
	return &UserService{
		users:       deps.UserRepo,
		courses:     deps.CourseRepo,
		assignments: deps.AssignmentRepo,
		bcryptCost:  cfg.BcryptCost,
		now:         time.Now,
	}
}

// Create adds an account with any role.
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	email := NormalizeEmail(input.Email)
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	profile := input.Profile
	if profile == nil {
		profile = domain.Profile{}
	}
	user := &domain.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         input.Role,
		IsActive:     true,
		Profile:      profile,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

// List returns accounts newest first.
func (s *UserService) List(ctx context.Context, filter domain.UserFilter) ([]domain.User, error) {
	users, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}

// Get loads one account.
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("User")
		}
		return nil, err
	}
	return user, nil
}

// Update applies a partial change. Only admins may change role or active state.
func (s *UserService) Update(ctx context.Context, identity *domain.Identity, id string, input UpdateUserInput) (*domain.User, error) {
	if (input.Role != nil || input.IsActive != nil) && !identity.IsAdmin() {
		return nil, auth.ErrInsufficientRole
	}

	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		user.Name = strings.TrimSpace(*input.Name)
	}
	if input.Email != nil {
		email := NormalizeEmail(*input.Email)
		if email != user.Email {
			other, err := s.users.GetByEmail(ctx, email)
			switch {
			case err == nil && other.ID != user.ID:
				return nil, ErrEmailTaken
			case err != nil && !errors.Is(err, pgx.ErrNoRows):
				return nil, err
			}
			user.Email = email
		}
	}
	if input.Role != nil {
		user.Role = *input.Role
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}
	if len(input.Profile) > 0 {
		merged := make(domain.Profile, len(user.Profile)+len(input.Profile))
		for k, v := range user.Profile {
			merged[k] = v
		}
		for k, v := range input.Profile {
			merged[k] = v
		}
		user.Profile = merged
	}

	if err := s.users.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrEmailTaken
		case errors.Is(err, pgx.ErrNoRows):
			return nil, notFound("User")
		}
		return nil, err
	}
	return user, nil
}

// Delete removes an account other than the caller's own.
func (s *UserService) Delete(ctx context.Context, identity *domain.Identity, id string) error {
	if identity.Owns(id) {
		return ErrCannotDeleteSelf
	}
	if err := s.users.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return notFound("User")
		case errors.Is(err, repository.ErrReferenced):
			return ErrUserHasCourses
		}
		return err
	}
	return nil
}

// Dashboard summarizes the user's enrollments and the next assignments due.
func (s *UserService) Dashboard(ctx context.Context, id string) (*Dashboard, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	enrollments, err := s.courses.ListStudentEnrollments(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if enrollments == nil {
		enrollments = []domain.Enrollment{}
	}

	now := s.now()
	upcoming, err := s.assignments.List(ctx, domain.AssignmentFilter{
		EnrolledStudentID: &user.ID,
		ActiveOnly:        true,
		DueFrom:           &now,
		Limit:             upcomingAssignmentsLimit,
	})
	if err != nil {
		return nil, err
	}
	if upcoming == nil {
		upcoming = []domain.Assignment{}
	}

	completed := 0
	for _, enrollment := range enrollments {
		if enrollment.Grade != nil {
			completed++
		}
	}

	return &Dashboard{
		User:            user,
		EnrolledCourses: enrollments,
		Assignments:     upcoming,
		Stats: DashboardStats{
			CurrentLevel:     user.Level,
			XP:               user.XP,
			Streak:           user.Streak,
			TotalCourses:     len(enrollments),
			CompletedCourses: completed,
		},
	}, nil
}

// CourseStudents lists a course roster for its instructor or an admin.
func (s *UserService) CourseStudents(ctx context.Context, identity *domain.Identity, courseID string) ([]domain.Enrollment, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("Course")
		}
		return nil, err
	}
	if err := auth.AuthorizeOwnerOrAdmin(identity, course.InstructorID); err != nil {
		return nil, err
	}

	roster, err := s.courses.ListEnrollments(ctx, course.ID)
	if err != nil {
		return nil, err
	}
	if roster == nil {
		roster = []domain.Enrollment{}
	}
	return roster, nil
}
