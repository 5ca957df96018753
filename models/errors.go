package models

import (
	"errors"
	"fmt"
)

// Kind classifies an extraction failure.
type Kind string

const (
	KindMissingURL  Kind = "MISSING_URL"
	KindNetwork     Kind = "NETWORK_ERROR"
	KindNoTitle     Kind = "NO_TITLE_FOUND"
	KindLaunch      Kind = "LAUNCH_FAILURE"
	KindCaptcha     Kind = "CAPTCHA_ENCOUNTERED"
	KindNavigation  Kind = "NAVIGATION_FAILED"
	KindUpstreamAPI Kind = "UPSTREAM_API_ERROR"
)

// ExtractionError is the internal error type carrying a failure kind.
// It implements the error interface and supports error wrapping via Unwrap.
type ExtractionError struct {
	Kind    Kind
	Message string
	Err     error // wrapped original error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// NewExtractionError creates a new ExtractionError.
func NewExtractionError(kind Kind, message string, err error) *ExtractionError {
	return &ExtractionError{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of the first ExtractionError in err's chain,
// or "" if there is none.
func KindOf(err error) Kind {
	var ee *ExtractionError
	if errors.As(err, &ee) {
		return ee.Kind
	}
	return ""
}
