package service

import (
	"net/http"

	apperrors "github.com/campuslane/learning-service/pkg/util"
)

var (
	ErrInvalidLogin      = apperrors.NewDomainError("INVALID_LOGIN", "Invalid email or password", http.StatusUnauthorized, nil)
	ErrLoginThrottled    = apperrors.NewDomainError("RATE_LIMITED", "Too many login attempts, please try again later", http.StatusTooManyRequests, nil)
	ErrEmailInUse        = apperrors.NewDomainError("CONFLICT", "Email already in use", http.StatusConflict, nil)
	ErrUserExists        = apperrors.NewDomainError("CONFLICT", "User already exists", http.StatusConflict, nil)
	ErrEmailTaken        = apperrors.NewDomainError("BAD_REQUEST", "Email already in use", http.StatusBadRequest, nil)
	ErrRoleNotSelectable = apperrors.NewDomainError("FORBIDDEN", "Role cannot be self-assigned", http.StatusForbidden, nil)
	ErrWrongPassword     = apperrors.NewDomainError("BAD_REQUEST", "Current password is incorrect", http.StatusBadRequest, nil)
	ErrCannotDeleteSelf  = apperrors.NewDomainError("BAD_REQUEST", "Cannot delete your own account", http.StatusBadRequest, nil)
	ErrUserHasCourses    = apperrors.NewDomainError("CONFLICT", "User still teaches courses", http.StatusConflict, nil)

	ErrCourseCodeExists = apperrors.NewDomainError("BAD_REQUEST", "Course code already exists", http.StatusBadRequest, nil)
	ErrAlreadyEnrolled  = apperrors.NewDomainError("BAD_REQUEST", "Already enrolled in this course", http.StatusBadRequest, nil)
	ErrCourseInactive   = apperrors.NewDomainError("BAD_REQUEST", "Course is not active", http.StatusBadRequest, nil)

	ErrNotEnrolled       = apperrors.NewDomainError("FORBIDDEN", "Not enrolled in this course", http.StatusForbidden, nil)
	ErrAlreadySubmitted  = apperrors.NewDomainError("BAD_REQUEST", "Assignment already submitted", http.StatusBadRequest, nil)
	ErrPointsExceedTotal = apperrors.NewDomainError("BAD_REQUEST", "Points cannot exceed total points", http.StatusBadRequest, nil)
)

func notFound(resource string) error {
	return apperrors.NewNotFound(resource, nil)
}
