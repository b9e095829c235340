package appointment

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized is returned when no authenticated caller is present.
	// It always propagates; scheduling operations never run anonymously.
	ErrUnauthorized = errors.New("authentication required")

	// ErrNotFound is returned when the referenced appointment does not exist.
	ErrNotFound = errors.New("appointment not found")

	// ErrStorage is the generic failure surfaced when the repository errors
	// unexpectedly. Details are logged, never returned to callers.
	ErrStorage = errors.New("appointment storage failure")
)

// ValidationError reports malformed input on a single field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalidf(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// ConflictError reports that a candidate interval overlaps an existing
// non-cancelled appointment. Conflicting is always set; PatientLabel is a
// display name when the directory could resolve one, else the patient id.
type ConflictError struct {
	Conflicting  *Appointment
	PatientLabel string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("time slot conflicts with an appointment for %s (%s-%s)",
		e.PatientLabel,
		e.Conflicting.StartTime.Format("2006-01-02 15:04"),
		e.Conflicting.EndTime.Format("15:04"))
}
