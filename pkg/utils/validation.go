package utils

import (
	"errors"
	"strings"
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ValidationErrors collects per-field messages for a form.
type ValidationErrors []*ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, e := range v {
		msgs = append(msgs, e.Message)
	}
	return strings.Join(msgs, "; ")
}

// Add appends err when it is a *ValidationError or ValidationErrors. Other
// errors, and nil, are ignored.
func (v ValidationErrors) Add(err error) ValidationErrors {
	var many ValidationErrors
	if errors.As(err, &many) {
		return append(v, many...)
	}
	var one *ValidationError
	if errors.As(err, &one) {
		return append(v, one)
	}
	return v
}

// Field returns the message for a field, or "".
func (v ValidationErrors) Field(name string) string {
	for _, e := range v {
		if e.Field == name {
			return e.Message
		}
	}
	return ""
}

// Err returns nil for an empty set so callers can `return errs.Err()`.
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// RequireText checks that value is non-blank and at most max bytes long.
// max <= 0 disables the length check.
func RequireText(field, label, value string, max int) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return &ValidationError{Field: field, Message: label + " is required"}
	}
	if max > 0 && len(value) > max {
		return &ValidationError{Field: field, Message: label + " is too long"}
	}
	return nil
}

// AsValidation extracts the field messages from err, if it carries any.
func AsValidation(err error) (ValidationErrors, bool) {
	v := ValidationErrors(nil).Add(err)
	return v, len(v) > 0
}
