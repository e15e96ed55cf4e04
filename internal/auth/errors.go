package auth

import (
	"net/http"

	apperrors "github.com/campuslane/learning-service/pkg/util"
)

// Rejections produced by the auth pipeline. Each carries its HTTP status and client message.
var (
	ErrMissingCredential      = apperrors.NewDomainError("MISSING_CREDENTIAL", "Access token required", http.StatusUnauthorized, nil)
	ErrExpiredCredential      = apperrors.NewDomainError("EXPIRED_CREDENTIAL", "Token expired, please login again", http.StatusUnauthorized, nil)
	ErrInvalidCredential      = apperrors.NewDomainError("INVALID_CREDENTIAL", "Invalid or malformed token", http.StatusUnauthorized, nil)
	ErrUnknownSubject         = apperrors.NewDomainError("UNKNOWN_SUBJECT", "Invalid token or user not found", http.StatusUnauthorized, nil)
	ErrDeactivatedAccount     = apperrors.NewDomainError("DEACTIVATED_ACCOUNT", "Account is deactivated", http.StatusForbidden, nil)
	ErrAuthenticationRequired = apperrors.NewDomainError("UNAUTHENTICATED", "Authentication required", http.StatusUnauthorized, nil)
	ErrInsufficientRole       = apperrors.NewDomainError("INSUFFICIENT_ROLE", "Insufficient permissions", http.StatusForbidden, nil)
	ErrNotOwner               = apperrors.NewDomainError("NOT_OWNER", "Access denied", http.StatusForbidden, nil)
	ErrVerificationFailure    = apperrors.NewDomainError("AUTH_INFRASTRUCTURE_FAILURE", "Authentication error", http.StatusInternalServerError, nil)
)
