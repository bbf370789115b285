package backend

import (
	"errors"
	"fmt"
)

// ErrUnavailable is matched by every failure to obtain a backend handle.
var ErrUnavailable = errors.New("capability backend unavailable")

// UnavailableError carries the detected platform and the underlying cause.
type UnavailableError struct {
	Platform string
	Reason   string
	Err      error
}

func (e *UnavailableError) Error() string {
	msg := fmt.Sprintf("capability backend unavailable on %s: %s", e.Platform, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *UnavailableError) Is(target error) bool { return target == ErrUnavailable }

func (e *UnavailableError) Unwrap() error { return e.Err }

// StatusError reports a non-zero status returned by a backend entry point.
type StatusError struct {
	Op     string
	Status int32
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend %s failed with status %d", e.Op, e.Status)
}
