package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/campuslane/learning-service/internal/domain"
)

// AssignmentRepository encapsulates assignment and submission persistence.
type AssignmentRepository interface {
	Create(ctx context.Context, assignment *domain.Assignment) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Assignment, error)
	List(ctx context.Context, filter domain.AssignmentFilter) ([]domain.Assignment, error)

	CreateSubmission(ctx context.Context, submission *domain.Submission) error
	GetSubmission(ctx context.Context, assignmentID, submissionID string) (*domain.Submission, error)
	ListSubmissions(ctx context.Context, assignmentID string, studentID *string) ([]domain.Submission, error)
	GradeSubmission(ctx context.Context, submissionID string, grade domain.Grade) error
}

const assignmentSelect = `
        SELECT a.id, a.title, a.description, a.course_id, c.title, c.code, a.instructor_id, a.type,
               a.total_points, a.due_date, a.is_active, a.created_at, a.updated_at
        FROM assignments a
        JOIN courses c ON c.id = a.course_id`

const submissionSelect = `
        SELECT s.id, s.assignment_id, s.student_id, s.submitted_at, s.content, s.attachments, s.status,
               s.grade_points, s.grade_feedback, s.graded_by, s.graded_at, u.name, u.email, u.profile
        FROM submissions s
        JOIN users u ON u.id = s.student_id`

type assignmentRepository struct {
	db DBTX
}

// NewAssignmentRepository instantiates repository.
func NewAssignmentRepository(db DBTX) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) Create(ctx context.Context, assignment *domain.Assignment) error {
	const query = `
        INSERT INTO assignments (title, description, course_id, instructor_id, type, total_points, due_date, is_active)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		assignment.Title,
		assignment.Description,
		assignment.CourseID,
		assignment.InstructorID,
		assignment.Type,
		assignment.TotalPoints,
		assignment.DueDate,
		assignment.IsActive,
	).Scan(&assignment.ID, &assignment.CreatedAt, &assignment.UpdatedAt)
	return mapError(err)
}

func (r *assignmentRepository) Delete(ctx context.Context, id string) error {
	return requireAffected(r.db.Exec(ctx, `DELETE FROM assignments WHERE id=$1`, id))
}

func (r *assignmentRepository) GetByID(ctx context.Context, id string) (*domain.Assignment, error) {
	assignment, err := scanAssignment(r.db.QueryRow(ctx, assignmentSelect+` WHERE a.id=$1`, id))
	if err != nil {
		return nil, mapError(err)
	}
	return assignment, nil
}

func (r *assignmentRepository) List(ctx context.Context, filter domain.AssignmentFilter) ([]domain.Assignment, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.CourseID != nil {
		args = append(args, *filter.CourseID)
		clauses = append(clauses, fmt.Sprintf("a.course_id=$%d", len(args)))
	}
	if filter.InstructorID != nil {
		args = append(args, *filter.InstructorID)
		clauses = append(clauses, fmt.Sprintf("a.instructor_id=$%d", len(args)))
	}
	if filter.EnrolledStudentID != nil {
		args = append(args, *filter.EnrolledStudentID)
		clauses = append(clauses, fmt.Sprintf(
			"a.course_id IN (SELECT course_id FROM enrollments WHERE student_id=$%d)", len(args)))
	}
	if filter.ActiveOnly {
		clauses = append(clauses, "a.is_active")
	}
	if filter.DueFrom != nil {
		args = append(args, *filter.DueFrom)
		clauses = append(clauses, fmt.Sprintf("a.due_date >= $%d", len(args)))
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY a.due_date ASC`, assignmentSelect, strings.Join(clauses, " AND "))
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var result []domain.Assignment
	for rows.Next() {
		assignment, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *assignment)
	}
	return result, mapError(rows.Err())
}

func (r *assignmentRepository) CreateSubmission(ctx context.Context, submission *domain.Submission) error {
	const query = `
        INSERT INTO submissions (assignment_id, student_id, submitted_at, content, attachments, status)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id`

	attachments := submission.Attachments
	if attachments == nil {
		attachments = []string{}
	}
	err := r.db.QueryRow(ctx, query,
		submission.AssignmentID,
		submission.StudentID,
		submission.SubmittedAt,
		submission.Content,
		attachments,
		submission.Status,
	).Scan(&submission.ID)
	return mapError(err)
}

func (r *assignmentRepository) GetSubmission(ctx context.Context, assignmentID, submissionID string) (*domain.Submission, error) {
	submission, err := scanSubmission(r.db.QueryRow(ctx,
		submissionSelect+` WHERE s.assignment_id=$1 AND s.id=$2`, assignmentID, submissionID))
	if err != nil {
		return nil, mapError(err)
	}
	return submission, nil
}

func (r *assignmentRepository) ListSubmissions(ctx context.Context, assignmentID string, studentID *string) ([]domain.Submission, error) {
	query := submissionSelect + ` WHERE s.assignment_id=$1`
	args := []any{assignmentID}
	if studentID != nil {
		args = append(args, *studentID)
		query += ` AND s.student_id=$2`
	}
	query += ` ORDER BY s.submitted_at`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var result []domain.Submission
	for rows.Next() {
		submission, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *submission)
	}
	return result, mapError(rows.Err())
}

func (r *assignmentRepository) GradeSubmission(ctx context.Context, submissionID string, grade domain.Grade) error {
	const query = `
        UPDATE submissions SET grade_points=$1, grade_feedback=$2, graded_by=$3, graded_at=$4, status=$5
        WHERE id=$6`

	return requireAffected(r.db.Exec(ctx, query,
		grade.Points,
		grade.Feedback,
		grade.GradedBy,
		grade.GradedAt,
		domain.SubmissionGraded,
		submissionID,
	))
}

func scanAssignment(row pgx.Row) (*domain.Assignment, error) {
	var assignment domain.Assignment
	if err := row.Scan(
		&assignment.ID,
		&assignment.Title,
		&assignment.Description,
		&assignment.CourseID,
		&assignment.CourseTitle,
		&assignment.CourseCode,
		&assignment.InstructorID,
		&assignment.Type,
		&assignment.TotalPoints,
		&assignment.DueDate,
		&assignment.IsActive,
		&assignment.CreatedAt,
		&assignment.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &assignment, nil
}

func scanSubmission(row pgx.Row) (*domain.Submission, error) {
	var (
		submission domain.Submission
		student    domain.UserSummary
		points     *int
		feedback   *string
		gradedBy   *string
		gradedAt   *time.Time
	)
	if err := row.Scan(
		&submission.ID,
		&submission.AssignmentID,
		&submission.StudentID,
		&submission.SubmittedAt,
		&submission.Content,
		&submission.Attachments,
		&submission.Status,
		&points,
		&feedback,
		&gradedBy,
		&gradedAt,
		&student.Name,
		&student.Email,
		&student.Profile,
	); err != nil {
		return nil, err
	}
	student.ID = submission.StudentID
	submission.Student = &student
	if submission.Attachments == nil {
		submission.Attachments = []string{}
	}
	if points != nil {
		grade := domain.Grade{Points: *points, Feedback: feedback}
		if gradedBy != nil {
			grade.GradedBy = *gradedBy
		}
		if gradedAt != nil {
			grade.GradedAt = *gradedAt
		}
		submission.Grade = &grade
	}
	return &submission, nil
}
