package domain

import "errors"

var (
	// ErrAlreadyArchived is returned when a job's snapshot is already stored
	ErrAlreadyArchived = errors.New("job already archived")

	// ErrArchiveNotFound is returned when a job has no stored snapshot
	ErrArchiveNotFound = errors.New("archive not found")
)

// RetryableError wraps transient errors; the job stays eligible for the
// next polling round
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string {
	return "retryable error: " + e.Err.Error()
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// NewRetryableError creates a new retryable error
func NewRetryableError(err error) error {
	return &RetryableError{Err: err}
}
