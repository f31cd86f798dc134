package wizard

import (
	"context"
	"errors"

	"github.com/mark3labs/census/internal/census"
)

// EventKind names something that happened to a tracked record.
type EventKind string

const (
	EventTracked         EventKind = "tracked"
	EventStepSubmitted   EventKind = "step_submitted"
	EventStepRejected    EventKind = "step_rejected"
	EventSubmitFailed    EventKind = "submit_failed"
	EventRecordCompleted EventKind = "record_completed"
)

// Event is emitted to the Recorder after each wizard transition.
type Event struct {
	Kind        EventKind
	RecordID    string
	Step        census.Step
	CurrentStep census.Step
	Status      census.Status
	Message     string
}

// Recorder receives wizard events. Failures are logged by the controller
// and never affect the transition that produced the event.
type Recorder interface {
	Record(ctx context.Context, ev Event) error
}

// RecorderFunc adapts a function to the Recorder interface.
type RecorderFunc func(ctx context.Context, ev Event) error

func (f RecorderFunc) Record(ctx context.Context, ev Event) error {
	return f(ctx, ev)
}

// Recorders fans an event out to several recorders.
func Recorders(rs ...Recorder) Recorder {
	return RecorderFunc(func(ctx context.Context, ev Event) error {
		var errs []error
		for _, r := range rs {
			if r == nil {
				continue
			}
			if err := r.Record(ctx, ev); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})
}
