package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/campuslane/learning-service/internal/auth"
	"github.com/campuslane/learning-service/internal/config"
	"github.com/campuslane/learning-service/internal/domain"
	"github.com/campuslane/learning-service/internal/ratelimit"
	"github.com/campuslane/learning-service/internal/repository"
)

// AuthService coordinates registration and login flows.
type AuthService struct {
	users       repository.UserRepository
	tokenMgr    *auth.TokenManager
	limiter     ratelimit.Limiter
	logger      *zap.Logger
	bcryptCost  int
	maxAttempts int
	window      time.Duration
	now         func() time.Time
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	UserRepo     repository.UserRepository
	TokenManager *auth.TokenManager
	Limiter      ratelimit.Limiter
	Logger       *zap.Logger
}

// RegisterInput is the self-registration payload.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
}

// AuthResult is returned by successful login and registration.
type AuthResult struct {
	User  *domain.User
	Token domain.Token
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:       deps.UserRepo,
		tokenMgr:    deps.TokenManager,
		limiter:     deps.Limiter,
		logger:      logger,
		bcryptCost:  cfg.BcryptCost,
		maxAttempts: cfg.LoginMaxAttempts,
		window:      cfg.LoginWindow(),
		now:         time.Now,
	}
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a student or faculty account and signs it in.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	role := input.Role
	if role == "" {
		role = domain.RoleStudent
	}
	if role != domain.RoleStudent && role != domain.RoleFaculty {
		return nil, ErrRoleNotSelectable
	}

	email := NormalizeEmail(input.Email)
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailInUse
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
		Profile:      domain.Profile{},
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailInUse
		}
		return nil, err
	}

	return s.issue(user)
}

// Login authenticates by email and password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = NormalizeEmail(email)
	if err := s.throttle(ctx, email); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidLogin
		}
		return nil, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, ErrInvalidLogin
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, auth.ErrDeactivatedAccount
	}

	now := s.now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, err
	}
	user.LastLogin = &now
	s.resetThrottle(ctx, email)

	return s.issue(user)
}

// Me returns the caller's account.
func (s *AuthService) Me(ctx context.Context, identity *domain.Identity) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, identity.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("User")
		}
		return nil, err
	}
	return user, nil
}

// ChangePassword verifies the current password before storing the new hash.
func (s *AuthService) ChangePassword(ctx context.Context, identity *domain.Identity, currentPassword, newPassword string) error {
	user, err := s.users.GetCredentialsByID(ctx, identity.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return notFound("User")
		}
		return err
	}
	if err := auth.ComparePassword(user.PasswordHash, currentPassword); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return ErrWrongPassword
		}
		return err
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, user.ID, hash)
}

// SeedAdmin creates the configured admin account when no account uses its email.
func (s *AuthService) SeedAdmin(ctx context.Context, seed config.SeedConfig) (bool, error) {
	if !seed.Enabled() {
		return false, nil
	}
	email := NormalizeEmail(seed.AdminEmail)
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return false, nil
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return false, err
	}

	hash, err := auth.HashPassword(seed.AdminPassword, s.bcryptCost)
	if err != nil {
		return false, err
	}
	admin := &domain.User{
		Name:         seed.AdminName,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		IsActive:     true,
		Profile:      domain.Profile{},
	}
	if err := s.users.Create(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return false, nil
		}
		return false, err
	}
	s.logger.Info("seeded admin account", zap.String("email", email))
	return true, nil
}

func (s *AuthService) issue(user *domain.User) (*AuthResult, error) {
	token, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return &AuthResult{User: user, Token: token}, nil
}

func (s *AuthService) throttle(ctx context.Context, email string) error {
	if s.limiter == nil {
		return nil
	}
	decision, err := s.limiter.Allow(ctx, email, s.maxAttempts, s.window)
	if err != nil {
		s.logger.Warn("login limiter unavailable", zap.Error(err))
		return nil
	}
	if !decision.Allowed {
		return ErrLoginThrottled
	}
	return nil
}

func (s *AuthService) resetThrottle(ctx context.Context, email string) {
	if s.limiter == nil {
		return
	}
	if err := s.limiter.Reset(ctx, email); err != nil {
		s.logger.Warn("login limiter reset failed", zap.Error(err))
	}
}
