package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campuslane/learning-service/internal/api/dto"
	"github.com/campuslane/learning-service/internal/api/http/handlers"
	"github.com/campuslane/learning-service/internal/auth"
	"github.com/campuslane/learning-service/internal/config"
	"github.com/campuslane/learning-service/internal/domain"
	"github.com/campuslane/learning-service/internal/events"
	"github.com/campuslane/learning-service/internal/observability"
	"github.com/campuslane/learning-service/internal/persistence"
	"github.com/campuslane/learning-service/internal/ratelimit"
	"github.com/campuslane/learning-service/internal/repository"
	"github.com/campuslane/learning-service/internal/repository/memory"
	"github.com/campuslane/learning-service/internal/service"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func healthy(context.Context) error { return nil }

type testServer struct {
	app    *fiber.App
	tokens *auth.TokenManager
	users  repository.UserRepository
}

func newTestServer(t *testing.T, postgres, redis handlers.Pinger) *testServer {
	t.Helper()
	logger := zap.NewNop()
	cfg := config.AuthConfig{BcryptCost: 4, LoginMaxAttempts: 5, LoginWindowMinutes: 15}

	store := memory.NewStore(nil)
	users := memory.NewUserRepository(store)
	courses := memory.NewCourseRepository(store)
	assignments := memory.NewAssignmentRepository(store)
	tokens := auth.NewTokenManager("router-secret", time.Hour)
	dispatcher := events.NewInMemoryDispatcher()
	validator, err := dto.NewValidator()
	require.NoError(t, err)
	metrics := observability.NewMetrics()

	authService := service.NewAuthService(cfg, service.AuthDependencies{
		UserRepo:     users,
		TokenManager: tokens,
		Limiter:      ratelimit.NewMemoryLimiter(ratelimit.MemoryConfig{}),
		Logger:       logger,
	})
	userService := service.NewUserService(cfg, service.UserDependencies{
		UserRepo: users, CourseRepo: courses, AssignmentRepo: assignments,
	})
	courseService := service.NewCourseService(service.CourseDependencies{
		CourseRepo: courses, AssignmentRepo: assignments, Dispatcher: dispatcher, Logger: logger,
	})
	assignmentService := service.NewAssignmentService(service.AssignmentDependencies{
		AssignmentRepo: assignments, CourseRepo: courses, Dispatcher: dispatcher, Logger: logger,
	})

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logger)})
	RegisterMiddlewares(app, MiddlewareConfig{Logger: logger, Metrics: metrics, Timeout: 5 * time.Second})
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("learning-service", "test", postgres, redis, metrics),
		Auth:           handlers.NewAuthHandler(authService, validator),
		Users:          handlers.NewUsersHandler(userService, validator),
		Courses:        handlers.NewCoursesHandler(courseService, validator),
		Assignments:    handlers.NewAssignmentsHandler(assignmentService, validator),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, users, logger),
	})
	return &testServer{app: app, tokens: tokens, users: users}
}

// account stores a user and returns its id with a bearer token.
func (s *testServer) account(t *testing.T, name, email string, role domain.Role) (string, string) {
	t.Helper()
	hash, err := auth.HashPassword("password123", 4)
	require.NoError(t, err)
	user := &domain.User{Name: name, Email: email, PasswordHash: hash, Role: role, IsActive: true, Profile: domain.Profile{}}
	require.NoError(t, s.users.Create(context.Background(), user))
	token, err := s.tokens.GenerateToken(user)
	require.NoError(t, err)
	return user.ID, token.Value
}

func (s *testServer) call(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	payload := map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &payload), string(raw))
	}
	return resp.StatusCode, payload
}

func TestHealthRoutes(t *testing.T) {
	srv := newTestServer(t, pingFunc(healthy), pingFunc(func(context.Context) error { return persistence.ErrRedisNotConfigured }))

	status, body := srv.call(t, fiber.MethodGet, "/api/health", "", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "OK", body["status"])
	assert.Contains(t, body, "uptime")

	status, body = srv.call(t, fiber.MethodGet, "/api/health/ready", "", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, map[string]any{"postgres": "ok", "redis": "disabled"}, body["dependencies"])

	down := newTestServer(t, pingFunc(func(context.Context) error { return errors.New("connection refused") }), pingFunc(healthy))
	status, body = down.call(t, fiber.MethodGet, "/api/health/ready", "", nil)
	assert.Equal(t, fiber.StatusServiceUnavailable, status)
	assert.Equal(t, "DEPENDENCY_UNAVAILABLE", body["code"])
}

func TestReadinessOnMemoryStore(t *testing.T) {
	pg, err := persistence.NewPostgres(context.Background(), config.PostgresConfig{}, zap.NewNop())
	require.NoError(t, err)
	redis := persistence.NewRedis(context.Background(), config.RedisConfig{}, zap.NewNop())
	srv := newTestServer(t, pg, redis)

	status, body := srv.call(t, fiber.MethodGet, "/api/health/ready", "", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "ready", body["status"])
	assert.Equal(t, map[string]any{"postgres": "memory", "redis": "disabled"}, body["dependencies"])
}

func TestUnknownRoute(t *testing.T) {
	srv := newTestServer(t, pingFunc(healthy), pingFunc(healthy))

	for _, path := range []string{"/nope", "/api/users/a/b/c", "/api/courses/x/y/z", "/api/assignments/a/b"} {
		status, body := srv.call(t, fiber.MethodGet, path, "", nil)
		assert.Equal(t, fiber.StatusNotFound, status, path)
		assert.Equal(t, "Route not found", body["message"], path)
	}

	status, body := srv.call(t, fiber.MethodGet, "/api/users/abc", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "MISSING_CREDENTIAL", body["code"])
}

func TestAuthRoutes(t *testing.T) {
	srv := newTestServer(t, pingFunc(healthy), pingFunc(healthy))

	status, body := srv.call(t, fiber.MethodPost, "/api/auth/register", "", map[string]any{
		"name": "Sam", "email": "Sam@School.edu", "password": "password123",
	})
	require.Equal(t, fiber.StatusCreated, status, body)
	assert.Equal(t, "Registered", body["message"])
	assert.NotEmpty(t, body["token"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "sam@school.edu", user["email"])
	assert.Equal(t, "student", user["role"])
	assert.NotContains(t, user, "passwordHash")

	status, body = srv.call(t, fiber.MethodPost, "/api/auth/register", "", map[string]any{
		"name": "Sam", "email": "sam@school.edu", "password": "password123",
	})
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "Email already in use", body["message"])

	status, body = srv.call(t, fiber.MethodPost, "/api/auth/register", "", map[string]any{
		"name": "S", "email": "not-an-email", "password": "123",
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", body["code"])
	fieldErrs := body["errors"].(map[string]any)
	assert.Contains(t, fieldErrs, "name")
	assert.Contains(t, fieldErrs, "email")
	assert.Contains(t, fieldErrs, "password")

	status, body = srv.call(t, fiber.MethodPost, "/api/auth/login", "", `{"email":`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", body["code"])

	status, body = srv.call(t, fiber.MethodPost, "/api/auth/login", "", map[string]any{"email": "sam@school.edu", "password": "wrong"})
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "Invalid email or password", body["message"])

	status, body = srv.call(t, fiber.MethodPost, "/api/auth/login", "", map[string]any{"email": "sam@school.edu", "password": "password123"})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Login successful", body["message"])
	token := body["token"].(string)

	status, body = srv.call(t, fiber.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Sam", body["user"].(map[string]any)["name"])

	status, body = srv.call(t, fiber.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "MISSING_CREDENTIAL", body["code"])

	status, _ = srv.call(t, fiber.MethodPut, "/api/auth/password", token, map[string]any{"currentPassword": "password123", "newPassword": "newpassword"})
	assert.Equal(t, fiber.StatusOK, status)
	status, _ = srv.call(t, fiber.MethodPost, "/api/auth/login", "", map[string]any{"email": "sam@school.edu", "password": "newpassword"})
	assert.Equal(t, fiber.StatusOK, status)
}

func TestUserRouteGuards(t *testing.T) {
	srv := newTestServer(t, pingFunc(healthy), pingFunc(healthy))
	studentID, student := srv.account(t, "Sam", "sam@school.edu", domain.RoleStudent)
	otherID, _ := srv.account(t, "Oli", "oli@school.edu", domain.RoleStudent)
	_, admin := srv.account(t, "Ada", "ada@school.edu", domain.RoleAdmin)

	status, body := srv.call(t, fiber.MethodGet, "/api/users", student, nil)
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "Insufficient permissions", body["message"])

	status, body = srv.call(t, fiber.MethodGet, "/api/users?role=student", admin, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, body["users"], 2)

	status, body = srv.call(t, fiber.MethodGet, "/api/users?role=teacher", admin, nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, body["errors"], "role")

	status, _ = srv.call(t, fiber.MethodGet, "/api/users/"+studentID, student, nil)
	assert.Equal(t, fiber.StatusOK, status)

	status, body = srv.call(t, fiber.MethodGet, "/api/users/"+otherID, student, nil)
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "Access denied", body["message"])

	status, body = srv.call(t, fiber.MethodGet, "/api/users/"+studentID+"/dashboard", student, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(0), body["stats"].(map[string]any)["totalCourses"])

	status, body = srv.call(t, fiber.MethodPut, "/api/users/"+studentID, student, map[string]any{"role": "admin"})
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "INSUFFICIENT_ROLE", body["code"])

	status, body = srv.call(t, fiber.MethodPost, "/api/users", admin, map[string]any{
		"name": "Fay", "email": "fay@school.edu", "password": "password123", "role": "faculty",
	})
	assert.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, "faculty", body["user"].(map[string]any)["role"])

	status, _ = srv.call(t, fiber.MethodDelete, "/api/users/"+otherID, admin, nil)
	assert.Equal(t, fiber.StatusOK, status)
	status, _ = srv.call(t, fiber.MethodDelete, "/api/users/"+otherID, admin, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestCourseAndAssignmentFlow(t *testing.T) {
	srv := newTestServer(t, pingFunc(healthy), pingFunc(healthy))
	_, faculty := srv.account(t, "Fay", "fay@school.edu", domain.RoleFaculty)
	_, student := srv.account(t, "Sam", "sam@school.edu", domain.RoleStudent)
	_, outsider := srv.account(t, "Oli", "oli@school.edu", domain.RoleStudent)
	_, admin := srv.account(t, "Ada", "ada@school.edu", domain.RoleAdmin)

	coursePayload := map[string]any{
		"title": "Mechanics", "code": "phy101", "department": "Physics",
		"credits": 3, "semester": "Fall", "year": 2026,
	}
	status, _ := srv.call(t, fiber.MethodPost, "/api/courses", student, coursePayload)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, body := srv.call(t, fiber.MethodPost, "/api/courses", faculty, coursePayload)
	require.Equal(t, fiber.StatusCreated, status, body)
	course := body["course"].(map[string]any)
	assert.Equal(t, "PHY101", course["code"])
	courseID := course["id"].(string)

	status, body = srv.call(t, fiber.MethodPost, "/api/courses", faculty, coursePayload)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Course code already exists", body["message"])

	status, body = srv.call(t, fiber.MethodPost, "/api/courses", faculty, map[string]any{
		"title": "Bad", "code": "BAD1", "department": "Physics", "credits": 9, "semester": "Winter", "year": 2026,
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, body["errors"], "credits")
	assert.Contains(t, body["errors"], "semester")

	status, _ = srv.call(t, fiber.MethodPost, "/api/courses/"+courseID+"/enroll", faculty, nil)
	assert.Equal(t, fiber.StatusForbidden, status)
	status, body = srv.call(t, fiber.MethodPost, "/api/courses/"+courseID+"/enroll", student, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(1), body["course"].(map[string]any)["enrolledCount"])
	status, body = srv.call(t, fiber.MethodPost, "/api/courses/"+courseID+"/enroll", student, nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Already enrolled in this course", body["message"])

	status, body = srv.call(t, fiber.MethodGet, "/api/courses?semester=Fall", student, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, body["courses"], 1)

	status, body = srv.call(t, fiber.MethodGet, "/api/users/course/"+courseID+"/students", faculty, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, body["students"], 1)

	status, body = srv.call(t, fiber.MethodPost, "/api/assignments", faculty, map[string]any{
		"title": "Kinematics", "courseId": courseID, "type": "Homework", "totalPoints": 100,
		"dueDate": time.Now().Add(24 * time.Hour).UTC().Format(time.RFC3339),
	})
	require.Equal(t, fiber.StatusCreated, status, body)
	assignmentID := body["assignment"].(map[string]any)["id"].(string)

	status, body = srv.call(t, fiber.MethodGet, "/api/assignments/course/"+courseID, outsider, nil)
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "Access denied", body["message"])

	status, body = srv.call(t, fiber.MethodPost, "/api/assignments/"+assignmentID+"/submit", outsider, map[string]any{"content": "x"})
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "Not enrolled in this course", body["message"])

	status, body = srv.call(t, fiber.MethodPost, "/api/assignments/"+assignmentID+"/submit", student, map[string]any{"content": "answer"})
	require.Equal(t, fiber.StatusOK, status, body)
	submission := body["submission"].(map[string]any)
	assert.Equal(t, "submitted", submission["status"])
	submissionID := submission["id"].(string)

	gradePath := "/api/assignments/" + assignmentID + "/submissions/" + submissionID + "/grade"
	status, body = srv.call(t, fiber.MethodPut, gradePath, faculty, map[string]any{"points": 150})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Points cannot exceed total points", body["message"])

	status, body = srv.call(t, fiber.MethodPut, gradePath, faculty, map[string]any{"points": -1})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, body["errors"], "points")

	status, body = srv.call(t, fiber.MethodPut, gradePath, faculty, map[string]any{"points": 95, "feedback": "Nice"})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "graded", body["submission"].(map[string]any)["status"])

	status, body = srv.call(t, fiber.MethodGet, "/api/assignments", student, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, body["assignments"], 1)

	status, _ = srv.call(t, fiber.MethodDelete, "/api/courses/"+courseID, faculty, nil)
	assert.Equal(t, fiber.StatusForbidden, status)
	status, _ = srv.call(t, fiber.MethodDelete, "/api/courses/"+courseID, admin, nil)
	assert.Equal(t, fiber.StatusOK, status)
	status, body = srv.call(t, fiber.MethodGet, "/api/courses/"+courseID, student, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "Course not found", body["message"])
}

func TestMetricsRoute(t *testing.T) {
	srv := newTestServer(t, pingFunc(healthy), pingFunc(healthy))
	_, student := srv.account(t, "Sam", "sam@school.edu", domain.RoleStudent)
	_, admin := srv.account(t, "Ada", "ada@school.edu", domain.RoleAdmin)

	srv.call(t, fiber.MethodGet, "/api/health", "", nil)

	status, _ := srv.call(t, fiber.MethodGet, "/api/metrics", student, nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, body := srv.call(t, fiber.MethodGet, "/api/metrics", admin, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.GreaterOrEqual(t, body["totalRequests"], float64(2))
	assert.GreaterOrEqual(t, body["totalErrors"], float64(1))
}
