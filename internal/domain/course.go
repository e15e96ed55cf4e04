package domain

import "time"

// Semester enumerates academic terms.
type Semester string

const (
	SemesterFall   Semester = "Fall"
	SemesterSpring Semester = "Spring"
	SemesterSummer Semester = "Summer"
)

// ScheduleEntry is a free-form meeting slot.
type ScheduleEntry map[string]any

// Course is an offering taught by one instructor.
type Course struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Code          string          `json:"code"`
	Description   *string         `json:"description"`
	InstructorID  string          `json:"instructorId"`
	Instructor    *UserSummary    `json:"instructor,omitempty"`
	Department    string          `json:"department"`
	Credits       int             `json:"credits"`
	Semester      Semester        `json:"semester"`
	Year          int             `json:"year"`
	Schedule      []ScheduleEntry `json:"schedule"`
	IsActive      bool            `json:"isActive"`
	EnrolledCount int             `json:"enrolledCount"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// Enrollment links a student to a course.
type Enrollment struct {
	CourseID   string       `json:"courseId"`
	StudentID  string       `json:"studentId"`
	Student    *UserSummary `json:"student,omitempty"`
	Course     *Course      `json:"course,omitempty"`
	EnrolledAt time.Time    `json:"enrolledAt"`
	Grade      *float64     `json:"grade"`
}

// CourseFilter narrows course listings.
type CourseFilter struct {
	Department   *string
	Semester     *Semester
	Year         *int
	InstructorID *string
}
