package service

import (
	"errors"
	"fmt"
)

// ValidationError reports a single bad input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

var (
	// ErrInvalidCredentials is deliberately the same for an unknown email, an
	// account without a password and a wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")

	ErrEmailTaken            = errors.New("email already registered")
	ErrPlanLimitReached      = errors.New("plan limit reached")
	ErrForbidden             = errors.New("forbidden")
	ErrNoOrganization        = errors.New("no organization")
	ErrAlreadyInOrganization = errors.New("already a member of an organization")
	ErrStaleSession          = errors.New("session is out of date, refresh the token")
	ErrInvitationInvalid     = errors.New("invitation is expired or already used")
	ErrCannotRevokeCurrent   = errors.New("cannot revoke the current device")
	ErrFederatedDisabled     = errors.New("federated login is not configured")
	ErrEmailNotVerified      = errors.New("email address is not verified by the provider")
)
