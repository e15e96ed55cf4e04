package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Identity is the authenticated caller resolved for the duration of one request.
type Identity struct {
	ID      string
	Role    Role
	Active  bool
	Account *User
}

// IsAdmin reports whether the caller holds the admin role.
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}

// Owns reports whether the caller's id matches ownerID after normalization.
func (i *Identity) Owns(ownerID string) bool {
	if i == nil {
		return false
	}
	return NormalizeID(i.ID) == NormalizeID(ownerID)
}

// Token represents issued authentication token metadata.
type Token struct {
	Value     string
	SubjectID string
	Role      Role
	ExpiresAt time.Time
	IssuedAt  time.Time
}

// NormalizeID returns the canonical text of an id so ids from tokens, paths and
// the store compare equal.
func NormalizeID(id string) string {
	id = strings.TrimSpace(id)
	if parsed, err := uuid.Parse(id); err == nil {
		return parsed.String()
	}
	return id
}
