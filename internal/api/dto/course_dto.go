package dto

import (
	"strconv"

	"github.com/campuslane/learning-service/internal/domain"
)

// CreateCourseRequest payload for new courses.
type CreateCourseRequest struct {
	Title       string                 `json:"title" validate:"required,max=200"`
	Code        string                 `json:"code" validate:"required,max=20"`
	Description *string                `json:"description"`
	Department  string                 `json:"department" validate:"required"`
	Credits     int                    `json:"credits" validate:"required,min=1,max=6"`
	Semester    domain.Semester        `json:"semester" validate:"required,oneof=Fall Spring Summer"`
	Year        int                    `json:"year" validate:"required,min=2020,max=2030"`
	Schedule    []domain.ScheduleEntry `json:"schedule"`
}

// UpdateCourseRequest payload for partial course updates.
type UpdateCourseRequest struct {
	Title       *string                `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string                `json:"description"`
	Department  *string                `json:"department" validate:"omitempty,min=1"`
	Credits     *int                   `json:"credits" validate:"omitempty,min=1,max=6"`
	Semester    *domain.Semester       `json:"semester" validate:"omitempty,oneof=Fall Spring Summer"`
	Year        *int                   `json:"year" validate:"omitempty,min=2020,max=2030"`
	Schedule    []domain.ScheduleEntry `json:"schedule"`
	IsActive    *bool                  `json:"isActive"`
}

// CourseListQuery filters the course listing.
type CourseListQuery struct {
	Department string `query:"department"`
	Semester   string `query:"semester" validate:"omitempty,oneof=Fall Spring Summer"`
	Year       string `query:"year" validate:"omitempty,number"`
	Instructor string `query:"instructor"`
}

// Filter converts the query into a repository filter.
func (q CourseListQuery) Filter() domain.CourseFilter {
	var filter domain.CourseFilter
	if q.Department != "" {
		department := q.Department
		filter.Department = &department
	}
	if q.Semester != "" {
		semester := domain.Semester(q.Semester)
		filter.Semester = &semester
	}
	if year, err := strconv.Atoi(q.Year); err == nil {
		filter.Year = &year
	}
	if q.Instructor != "" {
		instructor := q.Instructor
		filter.InstructorID = &instructor
	}
	return filter
}

// CourseResponse wraps a single course.
type CourseResponse struct {
	Message string `json:"message,omitempty"`
	Course  any    `json:"course"`
}

// CourseListResponse wraps a course listing.
type CourseListResponse struct {
	Courses []domain.Course `json:"courses"`
}
