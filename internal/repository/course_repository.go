package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/campuslane/learning-service/internal/domain"
)

// CourseRepository encapsulates course and enrollment persistence.
type CourseRepository interface {
	Create(ctx context.Context, course *domain.Course) error
	Update(ctx context.Context, course *domain.Course) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Course, error)
	List(ctx context.Context, filter domain.CourseFilter) ([]domain.Course, error)

	Enroll(ctx context.Context, courseID, studentID string) (*domain.Enrollment, error)
	Unenroll(ctx context.Context, courseID, studentID string) error
	IsEnrolled(ctx context.Context, courseID, studentID string) (bool, error)
	ListEnrollments(ctx context.Context, courseID string) ([]domain.Enrollment, error)
	ListStudentEnrollments(ctx context.Context, studentID string) ([]domain.Enrollment, error)
}

const (
	courseColumns = `c.id, c.title, c.code, c.description, c.instructor_id, c.department, c.credits,
               c.semester, c.year, c.schedule, c.is_active, c.created_at, c.updated_at,
               u.name, u.email, u.profile,
               (SELECT COUNT(*) FROM enrollments ec WHERE ec.course_id = c.id)`
	courseFrom = `
        FROM courses c
        JOIN users u ON u.id = c.instructor_id`
	courseSelect = `SELECT ` + courseColumns + courseFrom
)

type courseRepository struct {
	db DBTX
}

// NewCourseRepository instantiates repository.
func NewCourseRepository(db DBTX) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) Create(ctx context.Context, course *domain.Course) error {
	const query = `
        INSERT INTO courses (title, code, description, instructor_id, department, credits, semester, year, schedule, is_active)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		course.Title,
		course.Code,
		course.Description,
		course.InstructorID,
		course.Department,
		course.Credits,
		course.Semester,
		course.Year,
		scheduleOrEmpty(course.Schedule),
		course.IsActive,
	).Scan(&course.ID, &course.CreatedAt, &course.UpdatedAt)
	return mapError(err)
}

func (r *courseRepository) Update(ctx context.Context, course *domain.Course) error {
	const query = `
        UPDATE courses SET title=$1, code=$2, description=$3, department=$4, credits=$5,
            semester=$6, year=$7, schedule=$8, is_active=$9, updated_at=NOW()
        WHERE id=$10`

	return requireAffected(r.db.Exec(ctx, query,
		course.Title,
		course.Code,
		course.Description,
		course.Department,
		course.Credits,
		course.Semester,
		course.Year,
		scheduleOrEmpty(course.Schedule),
		course.IsActive,
		course.ID,
	))
}

func (r *courseRepository) Delete(ctx context.Context, id string) error {
	return requireAffected(r.db.Exec(ctx, `DELETE FROM courses WHERE id=$1`, id))
}

func (r *courseRepository) GetByID(ctx context.Context, id string) (*domain.Course, error) {
	course, err := scanCourse(r.db.QueryRow(ctx, courseSelect+` WHERE c.id=$1`, id))
	if err != nil {
		return nil, mapError(err)
	}
	return course, nil
}

func (r *courseRepository) List(ctx context.Context, filter domain.CourseFilter) ([]domain.Course, error) {
	clauses := []string{"c.is_active"}
	args := []any{}

	if filter.Department != nil {
		args = append(args, *filter.Department)
		clauses = append(clauses, fmt.Sprintf("c.department=$%d", len(args)))
	}
	if filter.Semester != nil {
		args = append(args, *filter.Semester)
		clauses = append(clauses, fmt.Sprintf("c.semester=$%d", len(args)))
	}
	if filter.Year != nil {
		args = append(args, *filter.Year)
		clauses = append(clauses, fmt.Sprintf("c.year=$%d", len(args)))
	}
	if filter.InstructorID != nil {
		args = append(args, *filter.InstructorID)
		clauses = append(clauses, fmt.Sprintf("c.instructor_id=$%d", len(args)))
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY c.created_at DESC`, courseSelect, strings.Join(clauses, " AND "))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var result []domain.Course
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *course)
	}
	return result, mapError(rows.Err())
}

func (r *courseRepository) Enroll(ctx context.Context, courseID, studentID string) (*domain.Enrollment, error) {
	const query = `
        INSERT INTO enrollments (course_id, student_id)
        VALUES ($1,$2)
        RETURNING enrolled_at`

	enrollment := domain.Enrollment{CourseID: courseID, StudentID: studentID}
	if err := r.db.QueryRow(ctx, query, courseID, studentID).Scan(&enrollment.EnrolledAt); err != nil {
		return nil, mapError(err)
	}
	return &enrollment, nil
}

func (r *courseRepository) Unenroll(ctx context.Context, courseID, studentID string) error {
	return requireAffected(r.db.Exec(ctx,
		`DELETE FROM enrollments WHERE course_id=$1 AND student_id=$2`, courseID, studentID))
}

func (r *courseRepository) IsEnrolled(ctx context.Context, courseID, studentID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM enrollments WHERE course_id=$1 AND student_id=$2)`

	var enrolled bool
	if err := r.db.QueryRow(ctx, query, courseID, studentID).Scan(&enrolled); err != nil {
		err = mapError(err)
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return enrolled, nil
}

func (r *courseRepository) ListEnrollments(ctx context.Context, courseID string) ([]domain.Enrollment, error) {
	const query = `
        SELECT e.course_id, e.student_id, e.enrolled_at, e.grade, u.name, u.email, u.profile
        FROM enrollments e
        JOIN users u ON u.id = e.student_id
        WHERE e.course_id=$1
        ORDER BY e.enrolled_at`

	rows, err := r.db.Query(ctx, query, courseID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var result []domain.Enrollment
	for rows.Next() {
		var (
			enrollment domain.Enrollment
			student    domain.UserSummary
		)
		if err := rows.Scan(
			&enrollment.CourseID,
			&enrollment.StudentID,
			&enrollment.EnrolledAt,
			&enrollment.Grade,
			&student.Name,
			&student.Email,
			&student.Profile,
		); err != nil {
			return nil, err
		}
		student.ID = enrollment.StudentID
		enrollment.Student = &student
		result = append(result, enrollment)
	}
	return result, mapError(rows.Err())
}

func (r *courseRepository) ListStudentEnrollments(ctx context.Context, studentID string) ([]domain.Enrollment, error) {
	query := `SELECT e.enrolled_at, e.grade, ` + courseColumns + courseFrom + `
        JOIN enrollments e ON e.course_id = c.id
        WHERE e.student_id=$1
        ORDER BY e.enrolled_at DESC`

	rows, err := r.db.Query(ctx, query, studentID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var result []domain.Enrollment
	for rows.Next() {
		enrollment := domain.Enrollment{StudentID: studentID}
		course, err := scanCourse(rows, &enrollment.EnrolledAt, &enrollment.Grade)
		if err != nil {
			return nil, err
		}
		enrollment.CourseID = course.ID
		enrollment.Course = course
		result = append(result, enrollment)
	}
	return result, mapError(rows.Err())
}

// scanCourse reads one courseSelect row. leading receives any columns selected before the course columns.
func scanCourse(row pgx.Row, leading ...any) (*domain.Course, error) {
	var (
		course     domain.Course
		instructor domain.UserSummary
	)
	dest := append(leading,
		&course.ID,
		&course.Title,
		&course.Code,
		&course.Description,
		&course.InstructorID,
		&course.Department,
		&course.Credits,
		&course.Semester,
		&course.Year,
		&course.Schedule,
		&course.IsActive,
		&course.CreatedAt,
		&course.UpdatedAt,
		&instructor.Name,
		&instructor.Email,
		&instructor.Profile,
		&course.EnrolledCount,
	)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	instructor.ID = course.InstructorID
	course.Instructor = &instructor
	if course.Schedule == nil {
		course.Schedule = []domain.ScheduleEntry{}
	}
	return &course, nil
}

func scheduleOrEmpty(s []domain.ScheduleEntry) []domain.ScheduleEntry {
	if s == nil {
		return []domain.ScheduleEntry{}
	}
	return s
}
