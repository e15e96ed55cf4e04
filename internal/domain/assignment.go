package domain

import "time"

// AssignmentType enumerates kinds of coursework.
type AssignmentType string

const (
	AssignmentHomework AssignmentType = "Homework"
	AssignmentQuiz     AssignmentType = "Quiz"
	AssignmentProject  AssignmentType = "Project"
	AssignmentExam     AssignmentType = "Exam"
	AssignmentLab      AssignmentType = "Lab"
)

// SubmissionStatus tracks a submission through grading.
type SubmissionStatus string

const (
	SubmissionSubmitted SubmissionStatus = "submitted"
	SubmissionLate      SubmissionStatus = "late"
	SubmissionGraded    SubmissionStatus = "graded"
)

// Assignment is coursework attached to a course.
type Assignment struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Description  *string        `json:"description"`
	CourseID     string         `json:"courseId"`
	CourseTitle  string         `json:"courseTitle,omitempty"`
	CourseCode   string         `json:"courseCode,omitempty"`
	InstructorID string         `json:"instructorId"`
	Type         AssignmentType `json:"type"`
	TotalPoints  int            `json:"totalPoints"`
	DueDate      time.Time      `json:"dueDate"`
	IsActive     bool           `json:"isActive"`
	Submissions  []Submission   `json:"submissions,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// Grade is the instructor's evaluation of a submission.
type Grade struct {
	Points   int       `json:"points"`
	Feedback *string   `json:"feedback"`
	GradedBy string    `json:"gradedBy"`
	GradedAt time.Time `json:"gradedAt"`
}

// Submission is a student's answer to an assignment.
type Submission struct {
	ID           string           `json:"id"`
	AssignmentID string           `json:"assignmentId"`
	StudentID    string           `json:"studentId"`
	Student      *UserSummary     `json:"student,omitempty"`
	SubmittedAt  time.Time        `json:"submittedAt"`
	Content      string           `json:"content"`
	Attachments  []string         `json:"attachments"`
	Status       SubmissionStatus `json:"status"`
	Grade        *Grade           `json:"grade"`
}

// AssignmentFilter narrows assignment listings. Results are ordered by due date.
type AssignmentFilter struct {
	CourseID          *string
	InstructorID      *string
	EnrolledStudentID *string
	ActiveOnly        bool
	DueFrom           *time.Time
	Limit             int
}
