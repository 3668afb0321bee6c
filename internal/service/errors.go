package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/lshigami/heartscan/internal/scoring"
)

var (
	ErrNotFound              = errors.New("not found")
	ErrUnknownAssessmentType = errors.New("unknown assessment type")
)

// IncompleteAssessmentError is returned when completion is attempted before
// every question is answered.
type IncompleteAssessmentError = scoring.IncompleteAssessmentError

// ValidationError rejects malformed input without changing any state.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// AlreadyCompletedError is returned for writes against an assessment that
// is no longer in progress.
type AlreadyCompletedError struct {
	AssessmentID string
	Status       string
}

func (e *AlreadyCompletedError) Error() string {
	return fmt.Sprintf("assessment %s is %s, not in progress", e.AssessmentID, e.Status)
}

// RetakeCooldownError is returned when a new assessment is started before
// the previous one of the same type may be retaken.
type RetakeCooldownError struct {
	AssessmentType string
	CanRetakeAfter time.Time
}

func (e *RetakeCooldownError) Error() string {
	return fmt.Sprintf("%s can be retaken after %s", e.AssessmentType, e.CanRetakeAfter.Format(time.RFC3339))
}

func invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
