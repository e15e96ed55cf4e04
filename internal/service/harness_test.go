package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campuslane/learning-service/internal/auth"
	"github.com/campuslane/learning-service/internal/config"
	"github.com/campuslane/learning-service/internal/domain"
	"github.com/campuslane/learning-service/internal/events"
	"github.com/campuslane/learning-service/internal/ratelimit"
	"github.com/campuslane/learning-service/internal/repository"
	"github.com/campuslane/learning-service/internal/repository/memory"
	apperrors "github.com/campuslane/learning-service/pkg/util"
)

type harness struct {
	store       *memory.Store
	users       repository.UserRepository
	courses     repository.CourseRepository
	assignments repository.AssignmentRepository
	tokens      *auth.TokenManager
	now         time.Time

	mu        sync.Mutex
	published []events.Event

	auth       *AuthService
	userSvc    *UserService
	courseSvc  *CourseService
	assignSvc  *AssignmentService
	authConfig config.AuthConfig
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store := memory.NewStore(func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) })
	h := &harness{
		store:       store,
		users:       memory.NewUserRepository(store),
		courses:     memory.NewCourseRepository(store),
		assignments: memory.NewAssignmentRepository(store),
		tokens:      auth.NewTokenManager("test-secret", time.Hour),
		now:         time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
		authConfig: config.AuthConfig{
			BcryptCost:         4,
			LoginMaxAttempts:   3,
			LoginWindowMinutes: 15,
		},
	}

	dispatcher := events.NewInMemoryDispatcher()
	dispatcher.SubscribeAll(func(_ context.Context, e events.Event) error {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.published = append(h.published, e)
		return nil
	})

	h.auth = NewAuthService(h.authConfig, AuthDependencies{
		UserRepo:     h.users,
		TokenManager: h.tokens,
		Limiter:      ratelimit.NewMemoryLimiter(ratelimit.MemoryConfig{}),
		Logger:       zap.NewNop(),
	})
	h.userSvc = NewUserService(h.authConfig, UserDependencies{
		UserRepo:       h.users,
		CourseRepo:     h.courses,
		AssignmentRepo: h.assignments,
	})
	h.userSvc.now = func() time.Time { return h.now }
	h.courseSvc = NewCourseService(CourseDependencies{
		CourseRepo:     h.courses,
		AssignmentRepo: h.assignments,
		Dispatcher:     dispatcher,
	})
	h.assignSvc = NewAssignmentService(AssignmentDependencies{
		AssignmentRepo: h.assignments,
		CourseRepo:     h.courses,
		Dispatcher:     dispatcher,
		Now:            func() time.Time { return h.now },
	})
	return h
}

// account stores a user directly and returns its identity.
func (h *harness) account(t *testing.T, name, email, password string, role domain.Role) *domain.Identity {
	t.Helper()
	hash, err := auth.HashPassword(password, h.authConfig.BcryptCost)
	require.NoError(t, err)
	user := &domain.User{Name: name, Email: email, PasswordHash: hash, Role: role, IsActive: true, Profile: domain.Profile{}}
	require.NoError(t, h.users.Create(context.Background(), user))
	return &domain.Identity{ID: user.ID, Role: role, Active: true}
}

func (h *harness) course(t *testing.T, instructor *domain.Identity, code string) *domain.Course {
	t.Helper()
	course, err := h.courseSvc.Create(context.Background(), instructor, CreateCourseInput{
		Title:      "Course " + code,
		Code:       code,
		Department: "Physics",
		Credits:    3,
		Semester:   domain.SemesterFall,
		Year:       2026,
	})
	require.NoError(t, err)
	return course
}

func (h *harness) eventTypes() []events.EventType {
	h.mu.Lock()
	defer h.mu.Unlock()
	types := make([]events.EventType, 0, len(h.published))
	for _, e := range h.published {
		types = append(types, e.Type)
	}
	return types
}

func assertDomainError(t *testing.T, err error, want *apperrors.DomainError) {
	t.Helper()
	var got *apperrors.DomainError
	require.ErrorAs(t, err, &got)
	assert.Equal(t, want.Code, got.Code)
	assert.Equal(t, want.Message, got.Message)
	assert.Equal(t, want.HTTPStatus, got.HTTPStatus)
}
