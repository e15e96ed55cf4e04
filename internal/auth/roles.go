package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campuslane/learning-service/internal/domain"
)

// RoleSet is an allow-list of roles.
type RoleSet map[domain.Role]struct{}

// NewRoleSet builds an allow-list.
func NewRoleSet(roles ...domain.Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, role := range roles {
		set[role] = struct{}{}
	}
	return set
}

// Contains reports membership.
func (s RoleSet) Contains(role domain.Role) bool {
	_, ok := s[role]
	return ok
}

// AuthorizeRoles allows the identity iff its role is in allowed.
func AuthorizeRoles(identity *domain.Identity, allowed RoleSet) error {
	if identity == nil {
		return ErrAuthenticationRequired
	}
	if !allowed.Contains(identity.Role) {
		return ErrInsufficientRole
	}
	return nil
}

// AuthorizeOwnerOrAdmin allows admins and the owner of the resource.
func AuthorizeOwnerOrAdmin(identity *domain.Identity, ownerID string) error {
	if identity == nil {
		return ErrAuthenticationRequired
	}
	if identity.IsAdmin() || identity.Owns(ownerID) {
		return nil
	}
	return ErrNotOwner
}

// RequireRoles ensures the caller holds one of the allowed roles.
func RequireRoles(roles ...domain.Role) fiber.Handler {
	allowed := NewRoleSet(roles...)
	return func(c *fiber.Ctx) error {
		identity, _ := IdentityFromContext(c)
		if err := AuthorizeRoles(identity, allowed); err != nil {
			return err
		}
		return c.Next()
	}
}

// RequireOwnerOrAdmin ensures the caller is an admin or owns the resource named by the path parameter.
func RequireOwnerOrAdmin(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, _ := IdentityFromContext(c)
		if err := AuthorizeOwnerOrAdmin(identity, c.Params(param)); err != nil {
			return err
		}
		return c.Next()
	}
}
