package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/campuslane/learning-service/internal/domain"
	apperrors "github.com/campuslane/learning-service/pkg/util"
)

const identityKey = "auth_identity"

// AccountLookup loads accounts without their password hash.
type AccountLookup interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// AuthMiddleware validates bearer tokens and loads identities.
type AuthMiddleware struct {
	tokens *TokenManager
	users  AccountLookup
	logger *zap.Logger
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, users AccountLookup, logger *zap.Logger) *AuthMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthMiddleware{tokens: tokens, users: users, logger: logger}
}

// Authenticate resolves the Authorization header value to an active identity.
func (m *AuthMiddleware) Authenticate(ctx context.Context, authHeader string) (*domain.Identity, error) {
	token, ok := bearerToken(authHeader)
	if !ok {
		return nil, ErrMissingCredential
	}

	claims, err := m.tokens.ParseToken(token)
	if err != nil {
		switch {
		case errors.Is(err, ErrTokenExpired):
			return nil, ErrExpiredCredential.Wrap(err)
		case errors.Is(err, ErrTokenInvalid):
			return nil, ErrInvalidCredential.Wrap(err)
		default:
			return nil, ErrVerificationFailure.Wrap(err)
		}
	}

	user, err := m.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUnknownSubject
		}
		return nil, ErrVerificationFailure.Wrap(err)
	}
	if !user.IsActive {
		return nil, ErrDeactivatedAccount
	}

	user.PasswordHash = ""
	return &domain.Identity{
		ID:      user.ID,
		Role:    claims.Role,
		Active:  user.IsActive,
		Account: user,
	}, nil
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	identity, err := m.Authenticate(c.UserContext(), c.Get(fiber.HeaderAuthorization))
	if err != nil {
		domainErr := apperrors.ToDomainError(err)
		if domainErr.HTTPStatus < fiber.StatusInternalServerError {
			m.logger.Warn("authentication rejected",
				zap.String("code", domainErr.Code),
				zap.String("path", c.Path()),
				zap.Error(domainErr.Unwrap()))
		}
		return err
	}

	c.Locals(identityKey, identity)
	return c.Next()
}

// IdentityFromContext retrieves the authenticated caller.
func IdentityFromContext(c *fiber.Ctx) (*domain.Identity, bool) {
	val := c.Locals(identityKey)
	if val == nil {
		return nil, false
	}
	identity, ok := val.(*domain.Identity)
	return identity, ok && identity != nil
}

// MustIdentity returns the caller or the unauthenticated rejection.
func MustIdentity(c *fiber.Ctx) (*domain.Identity, error) {
	identity, ok := IdentityFromContext(c)
	if !ok {
		return nil, ErrAuthenticationRequired
	}
	return identity, nil
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
