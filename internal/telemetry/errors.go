package telemetry

import (
	"errors"
	"fmt"
)

// ErrTelemetryFault marks failures of a metrics collaborator that a polling
// loop should log and ride out.
var ErrTelemetryFault = errors.New("telemetry fault")

type FaultError struct {
	Source string
	Err    error
}

func (e *FaultError) Error() string {
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

func (e *FaultError) Unwrap() error { return e.Err }

func (e *FaultError) Is(target error) bool { return target == ErrTelemetryFault }

func Fault(source string, err error) error {
	return &FaultError{Source: source, Err: err}
}

func IsFault(err error) bool {
	return errors.Is(err, ErrTelemetryFault)
}
