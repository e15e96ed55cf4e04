package dto

import "github.com/campuslane/learning-service/internal/domain"

// CreateUserRequest payload for admin account creation.
type CreateUserRequest struct {
	Name     string         `json:"name" validate:"required,min=2,max=100"`
	Email    string         `json:"email" validate:"required,email"`
	Password string         `json:"password" validate:"required,min=6"`
	Role     domain.Role    `json:"role" validate:"required,oneof=student faculty admin"`
	Profile  domain.Profile `json:"profile"`
}

// UpdateUserRequest payload for partial account updates.
type UpdateUserRequest struct {
	Name     *string        `json:"name" validate:"omitempty,min=2,max=100"`
	Email    *string        `json:"email" validate:"omitempty,email"`
	Role     *domain.Role   `json:"role" validate:"omitempty,oneof=student faculty admin"`
	IsActive *bool          `json:"isActive"`
	Profile  domain.Profile `json:"profile"`
}

// UserListQuery filters the account listing.
type UserListQuery struct {
	Role       string `query:"role" validate:"omitempty,oneof=student faculty admin"`
	Department string `query:"department"`
	IsActive   string `query:"isActive" validate:"omitempty,oneof=true false"`
}

// Filter converts the query into a repository filter.
func (q UserListQuery) Filter() domain.UserFilter {
	var filter domain.UserFilter
	if q.Role != "" {
		role := domain.Role(q.Role)
		filter.Role = &role
	}
	if q.Department != "" {
		department := q.Department
		filter.Department = &department
	}
	if q.IsActive != "" {
		active := q.IsActive == "true"
		filter.IsActive = &active
	}
	return filter
}

// UserResponse wraps a single account.
type UserResponse struct {
	User *domain.User `json:"user"`
}

// UserListResponse wraps an account listing.
type UserListResponse struct {
	Users []domain.User `json:"users"`
}

// StudentListResponse wraps a course roster.
type StudentListResponse struct {
	Students []domain.Enrollment `json:"students"`
}
