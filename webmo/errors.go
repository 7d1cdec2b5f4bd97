package webmo

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned when a call is made on a client whose session
	// has already been revoked with Close.
	ErrClosed = errors.New("webmo: client is closed")

	// ErrNoJobNumbers is returned by batch operations called with an empty
	// job list.
	ErrNoJobNumbers = errors.New("webmo: one or more job numbers must be specified")
)

// AuthError is returned when a session token cannot be obtained, either
// because the credentials were rejected or the endpoint is unreachable.
type AuthError struct {
	URL string
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("webmo: authentication against %s failed: %v", e.URL, e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// TransportError is returned for any non-success response from the remote
// service. The caller decides whether to retry; the client never does.
type TransportError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *TransportError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("webmo: %s %s returned %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("webmo: %s %s returned %d", e.Method, e.Path, e.StatusCode)
}

// SubmissionError is returned when job submission parameters are rejected
// before the request is made.
type SubmissionError struct {
	Reason string
}

func (e *SubmissionError) Error() string {
	return "webmo: job submission rejected: " + e.Reason
}
