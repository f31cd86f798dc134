package wizard

import (
	"errors"
	"fmt"

	"github.com/mark3labs/census/internal/census"
	"github.com/mark3labs/census/internal/validate"
)

var (
	ErrSubmitInFlight  = errors.New("a submission for this record is already in flight")
	ErrRecordCompleted = errors.New("record is already completed")
	ErrStepAhead       = errors.New("step is ahead of the record's current step")
	ErrUnknownRecord   = errors.New("record is not tracked")
)

// ValidationError is returned when a payload fails local validation. It
// never reaches the network.
type ValidationError struct {
	Step   census.Step
	Errors validate.Errors
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("step %d (%s) is invalid: %s", e.Step, e.Step.Title(), e.Errors)
}

// TransportError wraps a failed call to the census service. Retrying is
// allowed.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Message is the single line shown to the enumerator.
func (e *TransportError) Message() string {
	return fmt.Sprintf("Could not reach the census service (%s). Please try again.", e.Op)
}

// ConsistencyError reports a canonical record that breaks the wizard's
// invariants: a step counter that moved backwards or a completion that
// did not return COMPLETED.
type ConsistencyError struct {
	RecordID string
	Reason   string
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("record %s: %s", e.RecordID, e.Reason)
}
