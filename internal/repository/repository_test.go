package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuslane/learning-service/internal/domain"
)

const (
	userID    = "0b0e5d4e-3c59-4b53-9d7c-6a3f1f8f2d10"
	courseID  = "1c1f6e5f-4d6a-4c64-8e8d-7b4a2a9a3e21"
	assignID  = "2d2a7f6a-5e7b-4d75-9f9e-8c5b3bab4f32"
	submitID  = "3e3b8a7b-6f8c-4e86-a0af-9d6c4cbc5a43"
	facultyID = "4f4c9b8c-7a9d-4f97-b1b0-ae7d5dcd6b54"
)

var userCols = []string{"id", "name", "email", "role", "avatar", "bio", "department", "year", "employee_id",
	"level", "xp", "streak", "is_active", "last_login", "profile", "created_at", "updated_at"}

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock
}

func strPtr(s string) *string { return &s }

func userRow(now time.Time, extra ...any) []any {
	row := []any{
		userID, "Sam Student", "sam@school.edu", domain.RoleStudent,
		(*string)(nil), (*string)(nil), strPtr("Physics"), (*int)(nil), (*string)(nil),
		2, 150, 3, true, (*time.Time)(nil), domain.Profile{"theme": "dark"}, now, now,
	}
	return append(row, extra...)
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("create fills generated fields", func(t *testing.T) {
		mock := newMock(t)
		repo := NewUserRepository(mock)

		user := &domain.User{Name: "Sam", Email: "sam@school.edu", PasswordHash: "hash", Role: domain.RoleStudent, IsActive: true}
		mock.ExpectQuery(`INSERT INTO users`).
			WithArgs("Sam", "sam@school.edu", "hash", domain.RoleStudent,
				pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
				true, domain.Profile{}).
			WillReturnRows(pgxmock.NewRows([]string{"id", "level", "xp", "streak", "created_at", "updated_at"}).
				AddRow(userID, 1, 0, 0, now, now))

		require.NoError(t, repo.Create(ctx, user))
		assert.Equal(t, userID, user.ID)
		assert.Equal(t, 1, user.Level)
		assert.Equal(t, now, user.CreatedAt)
	})

	t.Run("duplicate email", func(t *testing.T) {
		mock := newMock(t)
		repo := NewUserRepository(mock)

		mock.ExpectQuery(`INSERT INTO users`).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

		err := repo.Create(ctx, &domain.User{Name: "Sam", Email: "sam@school.edu"})
		assert.ErrorIs(t, err, ErrDuplicate)
	})

	t.Run("get by id omits the hash", func(t *testing.T) {
		mock := newMock(t)
		repo := NewUserRepository(mock)

		mock.ExpectQuery(`(?s)SELECT id, name, email, role .* FROM users WHERE id=\$1`).
			WithArgs(userID).
			WillReturnRows(pgxmock.NewRows(userCols).AddRow(userRow(now)...))

		user, err := repo.GetByID(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, "Sam Student", user.Name)
		assert.Equal(t, "Physics", *user.Department)
		assert.Equal(t, "dark", user.Profile["theme"])
		assert.Empty(t, user.PasswordHash)
	})

	t.Run("get by email loads the hash", func(t *testing.T) {
		mock := newMock(t)
		repo := NewUserRepository(mock)

		mock.ExpectQuery(`password_hash FROM users WHERE email=\$1`).
			WithArgs("sam@school.edu").
			WillReturnRows(pgxmock.NewRows(append(userCols, "password_hash")).AddRow(userRow(now, "bcrypt-hash")...))

		user, err := repo.GetByEmail(ctx, "sam@school.edu")
		require.NoError(t, err)
		assert.Equal(t, "bcrypt-hash", user.PasswordHash)
	})

	t.Run("missing user", func(t *testing.T) {
		mock := newMock(t)
		repo := NewUserRepository(mock)

		mock.ExpectQuery(`FROM users WHERE id=\$1`).WithArgs(userID).WillReturnError(pgx.ErrNoRows)

		_, err := repo.GetByID(ctx, userID)
		assert.ErrorIs(t, err, pgx.ErrNoRows)
	})

	t.Run("malformed id behaves like missing", func(t *testing.T) {
		mock := newMock(t)
		repo := NewUserRepository(mock)

		mock.ExpectQuery(`FROM users WHERE id=\$1`).WithArgs("nope").
			WillReturnError(&pgconn.PgError{Code: "22P02"})

		_, err := repo.GetByID(ctx, "nope")
		assert.ErrorIs(t, err, pgx.ErrNoRows)
	})

	t.Run("list applies filters newest first", func(t *testing.T) {
		mock := newMock(t)
		repo := NewUserRepository(mock)

		role := domain.RoleStudent
		active := true
		mock.ExpectQuery(`WHERE 1=1 AND role=\$1 AND is_active=\$2 ORDER BY created_at DESC`).
			WithArgs(role, active).
			WillReturnRows(pgxmock.NewRows(userCols).AddRow(userRow(now)...).AddRow(userRow(now)...))

		users, err := repo.List(ctx, domain.UserFilter{Role: &role, IsActive: &active})
		require.NoError(t, err)
		assert.Len(t, users, 2)
	})

	t.Run("update of a missing row", func(t *testing.T) {
		mock := newMock(t)
		repo := NewUserRepository(mock)

		mock.ExpectExec(`UPDATE users SET name=\$1`).WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.Update(ctx, &domain.User{ID: userID, Name: "Sam"})
		assert.ErrorIs(t, err, pgx.ErrNoRows)
	})

	t.Run("last login", func(t *testing.T) {
		mock := newMock(t)
		repo := NewUserRepository(mock)

		mock.ExpectExec(`UPDATE users SET last_login=\$1 WHERE id=\$2`).
			WithArgs(now, userID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		assert.NoError(t, repo.UpdateLastLogin(ctx, userID, now))
	})

	t.Run("delete referenced instructor", func(t *testing.T) {
		mock := newMock(t)
		repo := NewUserRepository(mock)

		mock.ExpectExec(`DELETE FROM users WHERE id=\$1`).WithArgs(facultyID).
			WillReturnError(&pgconn.PgError{Code: "23503"})

		assert.ErrorIs(t, repo.Delete(ctx, facultyID), ErrReferenced)
	})
}

var courseCols = []string{"id", "title", "code", "description", "instructor_id", "department", "credits",
	"semester", "year", "schedule", "is_active", "created_at", "updated_at", "name", "email", "profile", "count"}

func courseRow(now time.Time) []any {
	return []any{
		courseID, "Mechanics", "PHY101", strPtr("Intro"), facultyID, "Physics", 4,
		domain.SemesterFall, 2026, []domain.ScheduleEntry{{"day": "Mon"}}, true, now, now,
		"Dr. Fay", "fay@school.edu", domain.Profile{}, 12,
	}
}

func TestCourseRepository(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("get embeds instructor and count", func(t *testing.T) {
		mock := newMock(t)
		repo := NewCourseRepository(mock)

		mock.ExpectQuery(`FROM courses c\s+JOIN users u ON u.id = c.instructor_id WHERE c.id=\$1`).
			WithArgs(courseID).
			WillReturnRows(pgxmock.NewRows(courseCols).AddRow(courseRow(now)...))

		course, err := repo.GetByID(ctx, courseID)
		require.NoError(t, err)
		assert.Equal(t, "PHY101", course.Code)
		assert.Equal(t, 12, course.EnrolledCount)
		require.NotNil(t, course.Instructor)
		assert.Equal(t, facultyID, course.Instructor.ID)
		assert.Equal(t, "Dr. Fay", course.Instructor.Name)
		assert.Equal(t, "Mon", course.Schedule[0]["day"])
	})

	t.Run("list only active with filters", func(t *testing.T) {
		mock := newMock(t)
		repo := NewCourseRepository(mock)

		dept := "Physics"
		year := 2026
		mock.ExpectQuery(`WHERE c.is_active AND c.department=\$1 AND c.year=\$2 ORDER BY c.created_at DESC`).
			WithArgs(dept, year).
			WillReturnRows(pgxmock.NewRows(courseCols).AddRow(courseRow(now)...))

		courses, err := repo.List(ctx, domain.CourseFilter{Department: &dept, Year: &year})
		require.NoError(t, err)
		assert.Len(t, courses, 1)
	})

	t.Run("duplicate code", func(t *testing.T) {
		mock := newMock(t)
		repo := NewCourseRepository(mock)

		mock.ExpectQuery(`INSERT INTO courses`).WillReturnError(&pgconn.PgError{Code: "23505"})

		err := repo.Create(ctx, &domain.Course{Code: "PHY101"})
		assert.ErrorIs(t, err, ErrDuplicate)
	})

	t.Run("enroll twice", func(t *testing.T) {
		mock := newMock(t)
		repo := NewCourseRepository(mock)

		mock.ExpectQuery(`INSERT INTO enrollments`).WithArgs(courseID, userID).
			WillReturnRows(pgxmock.NewRows([]string{"enrolled_at"}).AddRow(now))
		mock.ExpectQuery(`INSERT INTO enrollments`).WithArgs(courseID, userID).
			WillReturnError(&pgconn.PgError{Code: "23505"})

		enrollment, err := repo.Enroll(ctx, courseID, userID)
		require.NoError(t, err)
		assert.Equal(t, now, enrollment.EnrolledAt)

		_, err = repo.Enroll(ctx, courseID, userID)
		assert.ErrorIs(t, err, ErrDuplicate)
	})

	t.Run("unenroll when not enrolled", func(t *testing.T) {
		mock := newMock(t)
		repo := NewCourseRepository(mock)

		mock.ExpectExec(`DELETE FROM enrollments`).WithArgs(courseID, userID).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		assert.ErrorIs(t, repo.Unenroll(ctx, courseID, userID), pgx.ErrNoRows)
	})

	t.Run("is enrolled", func(t *testing.T) {
		mock := newMock(t)
		repo := NewCourseRepository(mock)

		mock.ExpectQuery(`SELECT EXISTS`).WithArgs(courseID, userID).
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

		enrolled, err := repo.IsEnrolled(ctx, courseID, userID)
		require.NoError(t, err)
		assert.True(t, enrolled)
	})

	t.Run("course roster", func(t *testing.T) {
		mock := newMock(t)
		repo := NewCourseRepository(mock)

		grade := 91.5
		mock.ExpectQuery(`FROM enrollments e\s+JOIN users u`).WithArgs(courseID).
			WillReturnRows(pgxmock.NewRows([]string{"course_id", "student_id", "enrolled_at", "grade", "name", "email", "profile"}).
				AddRow(courseID, userID, now, &grade, "Sam", "sam@school.edu", domain.Profile{}))

		roster, err := repo.ListEnrollments(ctx, courseID)
		require.NoError(t, err)
		require.Len(t, roster, 1)
		assert.Equal(t, userID, roster[0].Student.ID)
		assert.Equal(t, 91.5, *roster[0].Grade)
	})

	t.Run("student enrollments embed the course", func(t *testing.T) {
		mock := newMock(t)
		repo := NewCourseRepository(mock)

		row := append([]any{now, (*float64)(nil)}, courseRow(now)...)
		mock.ExpectQuery(`JOIN enrollments e ON e.course_id = c.id\s+WHERE e.student_id=\$1`).WithArgs(userID).
			WillReturnRows(pgxmock.NewRows(append([]string{"enrolled_at", "grade"}, courseCols...)).AddRow(row...))

		enrollments, err := repo.ListStudentEnrollments(ctx, userID)
		require.NoError(t, err)
		require.Len(t, enrollments, 1)
		assert.Equal(t, courseID, enrollments[0].CourseID)
		assert.Equal(t, "Mechanics", enrollments[0].Course.Title)
		assert.Nil(t, enrollments[0].Grade)
	})
}

var assignmentCols = []string{"id", "title", "description", "course_id", "course_title", "course_code", "instructor_id",
	"type", "total_points", "due_date", "is_active", "created_at", "updated_at"}

var submissionCols = []string{"id", "assignment_id", "student_id", "submitted_at", "content", "attachments", "status",
	"grade_points", "grade_feedback", "graded_by", "graded_at", "name", "email", "profile"}

func TestAssignmentRepository(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("upcoming for a student", func(t *testing.T) {
		mock := newMock(t)
		repo := NewAssignmentRepository(mock)

		student := userID
		mock.ExpectQuery(`student_id=\$1\) AND a.is_active AND a.due_date >= \$2 ORDER BY a.due_date ASC LIMIT 5`).
			WithArgs(student, now).
			WillReturnRows(pgxmock.NewRows(assignmentCols).
				AddRow(assignID, "Lab 1", (*string)(nil), courseID, "Mechanics", "PHY101", facultyID,
					domain.AssignmentLab, 20, now.Add(24*time.Hour), true, now, now))

		list, err := repo.List(ctx, domain.AssignmentFilter{
			EnrolledStudentID: &student, ActiveOnly: true, DueFrom: &now, Limit: 5,
		})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "PHY101", list[0].CourseCode)
	})

	t.Run("submission unique per student", func(t *testing.T) {
		mock := newMock(t)
		repo := NewAssignmentRepository(mock)

		mock.ExpectQuery(`INSERT INTO submissions`).
			WithArgs(assignID, userID, now, "answer", []string{}, domain.SubmissionSubmitted).
			WillReturnError(&pgconn.PgError{Code: "23505"})

		err := repo.CreateSubmission(ctx, &domain.Submission{
			AssignmentID: assignID, StudentID: userID, SubmittedAt: now, Content: "answer", Status: domain.SubmissionSubmitted,
		})
		assert.ErrorIs(t, err, ErrDuplicate)
	})

	t.Run("graded submission is decoded", func(t *testing.T) {
		mock := newMock(t)
		repo := NewAssignmentRepository(mock)

		points := 18
		mock.ExpectQuery(`WHERE s.assignment_id=\$1 AND s.student_id=\$2`).
			WithArgs(assignID, userID).
			WillReturnRows(pgxmock.NewRows(submissionCols).
				AddRow(submitID, assignID, userID, now, "answer", []string{"a.pdf"}, domain.SubmissionGraded,
					&points, strPtr("good"), strPtr(facultyID), &now, "Sam", "sam@school.edu", domain.Profile{}))

		student := userID
		subs, err := repo.ListSubmissions(ctx, assignID, &student)
		require.NoError(t, err)
		require.Len(t, subs, 1)
		require.NotNil(t, subs[0].Grade)
		assert.Equal(t, 18, subs[0].Grade.Points)
		assert.Equal(t, facultyID, subs[0].Grade.GradedBy)
		assert.Equal(t, "good", *subs[0].Grade.Feedback)
	})

	t.Run("ungraded submission has no grade", func(t *testing.T) {
		mock := newMock(t)
		repo := NewAssignmentRepository(mock)

		mock.ExpectQuery(`WHERE s.assignment_id=\$1 AND s.id=\$2`).
			WithArgs(assignID, submitID).
			WillReturnRows(pgxmock.NewRows(submissionCols).
				AddRow(submitID, assignID, userID, now, "answer", []string{}, domain.SubmissionLate,
					(*int)(nil), (*string)(nil), (*string)(nil), (*time.Time)(nil), "Sam", "sam@school.edu", domain.Profile{}))

		sub, err := repo.GetSubmission(ctx, assignID, submitID)
		require.NoError(t, err)
		assert.Nil(t, sub.Grade)
		assert.Equal(t, domain.SubmissionLate, sub.Status)
	})

	t.Run("grade sets status", func(t *testing.T) {
		mock := newMock(t)
		repo := NewAssignmentRepository(mock)

		grade := domain.Grade{Points: 10, GradedBy: facultyID, GradedAt: now}
		mock.ExpectExec(`UPDATE submissions SET grade_points=\$1`).
			WithArgs(10, (*string)(nil), facultyID, now, domain.SubmissionGraded, submitID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		assert.NoError(t, repo.GradeSubmission(ctx, submitID, grade))
	})
}
