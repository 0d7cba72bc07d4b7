package producthunt

import (
	"errors"
	"fmt"
)

var (
	ErrMissingCredential     = errors.New("PRODUCTHUNT_TOKEN is not set")
	ErrInvalidDateFormat     = errors.New("invalid date format, want YYYY-MM-DD")
	ErrInvalidDateRange      = errors.New("start date is after end date")
	ErrUpstreamRequestFailed = errors.New("upstream request failed")
)

// UpstreamError is returned for any failed page request. StatusCode is zero
// when no response was received.
type UpstreamError struct {
	StatusCode int
	Timeout    bool
	Err        error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.Timeout:
		return fmt.Sprintf("%s: timeout: %v", ErrUpstreamRequestFailed, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: unexpected status: %d", ErrUpstreamRequestFailed, e.StatusCode)
	default:
		return fmt.Sprintf("%s: %v", ErrUpstreamRequestFailed, e.Err)
	}
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstreamRequestFailed
}
