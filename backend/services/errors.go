package services

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across services. Controllers translate these
// to HTTP statuses; message text is safe to surface to end users.
var (
	ErrReviewNotFound    = errors.New("review not found")
	ErrVoteNotFound      = errors.New("vote not found")
	ErrResponseNotFound  = errors.New("admin response not found")
	ErrCourseNotFound    = errors.New("course not found")
	ErrForbidden         = errors.New("forbidden")
	ErrEditWindowExpired = errors.New("review can no longer be edited")
)

// ValidationError reports a rejected input (rating bounds, comment
// length, duplicate review, illegal status transition).
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func newValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// EligibilityError reports why a user may not review a course. Reason
// is shown to the user verbatim.
type EligibilityError struct {
	Reason               string
	CompletionPercentage int
}

func (e *EligibilityError) Error() string {
	return e.Reason
}
