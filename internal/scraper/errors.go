// internal/scraper/errors.go
package scraper

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyUsername   = errors.New("username cannot be empty")
	ErrInvalidUsername = errors.New("username may only contain letters, digits, '.' and '_'")
	ErrNoBrowser       = errors.New("no browser configured")
)

// ErrorCode classifies a run failure
type ErrorCode string

const (
	ErrCodeNavigation ErrorCode = "NAVIGATION"
	ErrCodeProfile    ErrorCode = "PROFILE"
	ErrCodeListing    ErrorCode = "LISTING"
	ErrCodeDetail     ErrorCode = "DETAIL"
	ErrCodeTimeout    ErrorCode = "TIMEOUT"
	ErrCodeValidation ErrorCode = "VALIDATION"
)

// ScrapeError wraps a failure with the stage that produced it
type ScrapeError struct {
	Code       ErrorCode
	Stage      string
	Message    string
	Underlying error
}

// Error implements the error interface
func (e *ScrapeError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s [%s]: %s: %v", e.Code, e.Stage, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s [%s]: %s", e.Code, e.Stage, e.Message)
}

// Unwrap returns the underlying error
func (e *ScrapeError) Unwrap() error {
	return e.Underlying
}

// Is matches another ScrapeError by code, otherwise defers to the wrapped error.
func (e *ScrapeError) Is(target error) bool {
	if t, ok := target.(*ScrapeError); ok {
		return e.Code == t.Code
	}
	return errors.Is(e.Underlying, target)
}

// NewScrapeError creates a new ScrapeError
func NewScrapeError(code ErrorCode, stage, message string, err error) *ScrapeError {
	return &ScrapeError{
		Code:       code,
		Stage:      stage,
		Message:    message,
		Underlying: err,
	}
}

// CodeOf extracts the code from err, or "" if err is not a ScrapeError.
func CodeOf(err error) ErrorCode {
	var se *ScrapeError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}
