package render

import (
	"errors"
	"fmt"
)

var (
	// ErrFeatureUnavailable is returned when the remote WebMO instance is
	// older than the first version supporting remote rendering. It is
	// cached on the bridge after the first detection: later calls fail
	// fast without re-attempting injection.
	ErrFeatureUnavailable = errors.New("render: remote rendering requires WebMO " +
		"24 or later")

	// ErrTimeout is returned when no callback message arrives within the
	// rendezvous ceiling. It is a soft failure: the bridge stays usable
	// and the call may simply be retried.
	ErrTimeout = errors.New("render: timed out waiting for a response from the display surface")
)

// InvalidPropertyError is returned for property names outside the
// displayable-property table.
type InvalidPropertyError struct {
	Name string
}

func (e *InvalidPropertyError) Error() string {
	return fmt.Sprintf("render: invalid property name %q", e.Name)
}

// Decode stages reported by DecodeError.
const (
	DecodeStageSplit  = "split"
	DecodeStageDecode = "decode"
)

// DecodeError is returned when a callback payload does not follow the
// data-URI protocol of the display surface. Stage names the step that
// failed: splitting off the metadata prefix, or base64-decoding the rest.
type DecodeError struct {
	Stage string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("render: decoding callback payload failed at %s stage: %v", e.Stage, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
