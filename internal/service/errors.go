package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrSpaceNotFound       = errors.New("parking space not found")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrDocumentNotFound    = errors.New("reservation has no schedule document")
	ErrSpaceUnavailable    = errors.New("parking space is not available for the selected period and shift")
	ErrDocumentRequired    = errors.New("a PDF schedule document is required for reservations longer than 2 days")
	ErrReservationClosed   = errors.New("reservation is no longer pending or active")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrForbidden           = errors.New("you do not have access to this resource")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrAccountDisabled     = errors.New("account is disabled")
	ErrInvalidToken        = errors.New("invalid or expired token")
	ErrEmailTaken          = errors.New("email is already registered")
	ErrSelfAction          = errors.New("cannot perform this action on your own account")
	ErrUserHasReservations = errors.New("user has pending or active reservations")
)

// ValidationError reports malformed input. Fields maps a field name to its problem.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

func invalid(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func invalidField(field, problem string) *ValidationError {
	return &ValidationError{Message: "validation failed", Fields: map[string]string{field: problem}}
}

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
