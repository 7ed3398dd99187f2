package services

import (
	"errors"

	"github.com/musiclib/backend/internal/repository"
)

// Error kinds surfaced to the HTTP layer. Validation kinds are usually
// wrapped in a *FieldError naming the offending input.
var (
	ErrUnsupportedFormat       = errors.New("unsupported audio format")
	ErrFileTooLarge            = errors.New("audio file too large")
	ErrUnknownGenre            = errors.New("unknown genre")
	ErrDuplicateGenreSelection = errors.New("duplicate genre selection")
	ErrInvalidInput            = errors.New("invalid input")
	ErrForbidden               = errors.New("forbidden")
	ErrConflict                = errors.New("already exists")
	ErrInvalidCredentials      = errors.New("invalid credentials")
	ErrUnauthorized            = errors.New("unauthorized")

	ErrNotFound     = repository.ErrNotFound
	ErrInvalidState = repository.ErrInvalidState
)

// FieldError is a user-facing validation failure tied to one input field.
type FieldError struct {
	Field   string
	Message string
	Err     error
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

func fieldError(field string, kind error, message string) error {
	return &FieldError{Field: field, Message: message, Err: kind}
}

// IsValidation reports whether err is a caller input problem rather than a server fault.
func IsValidation(err error) bool {
	for _, kind := range []error{ErrUnsupportedFormat, ErrFileTooLarge, ErrUnknownGenre, ErrDuplicateGenreSelection, ErrInvalidInput} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}
