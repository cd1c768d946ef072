package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrStore              = fmt.Errorf("message store failure")
	ErrMessageNotFound    = fmt.Errorf("message not found")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrAdminDisabled      = fmt.Errorf("admin access is not configured")
	ErrEmptyWords         = fmt.Errorf("no words have been found")
	ErrEmptyQuery         = fmt.Errorf("search query cannot be empty")
	ErrInvalidPassword    = fmt.Errorf("password does not meet complexity requirements")
	ErrTokenGeneration    = fmt.Errorf("failed to generate token")
	ErrInvalidToken       = fmt.Errorf("invalid or expired token")
)

// ValidationError reports a submission field that violates a required or length constraint.
type ValidationError struct {
	Field      string
	Constraint string
	Message    string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ModerationRejection is returned when the classifier flagged a field.
// CleanVersion is the classifier's suggested replacement, which the client may resubmit.
type ModerationRejection struct {
	Field        string
	Reason       string
	CleanVersion string
	Message      string
}

func (e *ModerationRejection) Error() string {
	return e.Message
}

// StatusCode maps an error of the board taxonomy to its HTTP status.
func StatusCode(err error) int {
	var validationErr *ValidationError
	var rejection *ModerationRejection
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &validationErr), errors.As(err, &rejection), errors.Is(err, ErrEmptyQuery):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrAdminDisabled), errors.Is(err, ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, ErrMessageNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
