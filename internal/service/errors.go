package service

import (
	"errors"
	"sort"
	"strings"
)

// Session protocol failures. Anything else returned by a service is a store
// failure and should be treated as fatal to the request.
var (
	ErrNotFound         = errors.New("invalid or expired link")
	ErrInvalidUser      = errors.New("invalid user")
	ErrAlreadyCompleted = errors.New("quiz already submitted")
	ErrNoActiveQuiz     = errors.New("no active quiz")
	ErrQuizDisabled     = errors.New("quiz is disabled")
	ErrValidation       = errors.New("validation failed")
)

// Admin failures.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAdminNotConfigured = errors.New("admin password is not configured")
	ErrTokenAuthDisabled  = errors.New("admin tokens are disabled: JWT_SECRET is unset or too short")
	ErrQuizNotFound       = errors.New("quiz not found")
)

// ValidationError carries per-field messages. errors.Is(err, ErrValidation) holds.
type ValidationError struct {
	Fields map[string]string
}

func newValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// add records a field message.
func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = msg
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
