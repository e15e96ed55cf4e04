package domain

import "time"

// Role enumerates account roles.
type Role string

const (
	RoleStudent Role = "student"
	RoleFaculty Role = "faculty"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleFaculty, RoleAdmin:
		return true
	}
	return false
}

// Profile holds free-form profile attributes.
type Profile map[string]any

// User is an account of a student, faculty member or administrator.
type User struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	Avatar       *string    `json:"avatar"`
	Bio          *string    `json:"bio"`
	Department   *string    `json:"department"`
	Year         *int       `json:"year"`
	EmployeeID   *string    `json:"employeeId"`
	Level        int        `json:"level"`
	XP           int        `json:"xp"`
	Streak       int        `json:"streak"`
	IsActive     bool       `json:"isActive"`
	LastLogin    *time.Time `json:"lastLogin"`
	Profile      Profile    `json:"profile"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// UserSummary is the public projection of a user embedded in other resources.
type UserSummary struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Profile Profile `json:"profile"`
}

// UserFilter narrows user listings.
type UserFilter struct {
	Role       *Role
	Department *string
	IsActive   *bool
}
