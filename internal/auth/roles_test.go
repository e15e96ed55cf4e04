package auth

import (
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"github.com/campuslane/learning-service/internal/domain"
)

func TestAuthorizeRoles(t *testing.T) {
	staff := NewRoleSet(domain.RoleFaculty, domain.RoleAdmin)

	assert.NoError(t, AuthorizeRoles(&domain.Identity{ID: facultyID, Role: domain.RoleFaculty}, staff))
	assert.NoError(t, AuthorizeRoles(&domain.Identity{ID: adminID, Role: domain.RoleAdmin}, staff))
	assert.ErrorIs(t, AuthorizeRoles(&domain.Identity{ID: studentID, Role: domain.RoleStudent}, staff), ErrInsufficientRole)
	assert.ErrorIs(t, AuthorizeRoles(nil, staff), ErrAuthenticationRequired)
	assert.ErrorIs(t, AuthorizeRoles(&domain.Identity{ID: adminID, Role: domain.RoleAdmin}, NewRoleSet()), ErrInsufficientRole)
}

func TestAuthorizeOwnerOrAdmin(t *testing.T) {
	student := &domain.Identity{ID: studentID, Role: domain.RoleStudent}
	admin := &domain.Identity{ID: adminID, Role: domain.RoleAdmin}

	assert.NoError(t, AuthorizeOwnerOrAdmin(student, studentID))
	assert.NoError(t, AuthorizeOwnerOrAdmin(student, " "+studentID+" "), "ids are normalized")
	assert.NoError(t, AuthorizeOwnerOrAdmin(student, "5F1B8F2E-8F4E-4C8F-A1C4-3B1F2A9E7D01"), "uuid case is normalized")
	assert.NoError(t, AuthorizeOwnerOrAdmin(admin, studentID))
	assert.ErrorIs(t, AuthorizeOwnerOrAdmin(student, facultyID), ErrNotOwner)
	assert.ErrorIs(t, AuthorizeOwnerOrAdmin(nil, studentID), ErrAuthenticationRequired)
}

func TestGuardsOverHTTP(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	mw := NewAuthMiddleware(tm, newAccounts(), nil)

	t.Run("role guard", func(t *testing.T) {
		app := newTestApp(mw, RequireRoles(domain.RoleFaculty, domain.RoleAdmin))

		resp := doRequest(t, app, "/protected", "Bearer "+mustToken(t, tm, studentID, domain.RoleStudent))
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)

		resp = doRequest(t, app, "/protected", "Bearer "+mustToken(t, tm, facultyID, domain.RoleFaculty))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("owner or admin guard", func(t *testing.T) {
		app := newTestApp(mw, RequireOwnerOrAdmin("id"))

		resp := doRequest(t, app, "/protected/"+studentID, "Bearer "+mustToken(t, tm, studentID, domain.RoleStudent))
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		resp = doRequest(t, app, "/protected/"+facultyID, "Bearer "+mustToken(t, tm, studentID, domain.RoleStudent))
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)

		resp = doRequest(t, app, "/protected/"+studentID, "Bearer "+mustToken(t, tm, adminID, domain.RoleAdmin))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("guard without authentication", func(t *testing.T) {
		app := fiber.New(fiber.Config{ErrorHandler: func(c *fiber.Ctx, err error) error {
			if assert.ErrorIs(t, err, ErrAuthenticationRequired) {
				return c.SendStatus(http.StatusUnauthorized)
			}
			return c.SendStatus(http.StatusInternalServerError)
		}})
		app.Get("/", RequireRoles(domain.RoleAdmin), func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })

		resp := doRequest(t, app, "/", "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}
