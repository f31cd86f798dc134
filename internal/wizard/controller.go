// Package wizard drives the step-by-step submission of census records:
// it holds each record's local edits, validates a step before it leaves
// the machine and replaces the local record with the canonical one the
// service returns.
package wizard

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/mark3labs/census/internal/census"
	"github.com/mark3labs/census/internal/logger"
	"github.com/mark3labs/census/internal/store"
	"github.com/mark3labs/census/internal/validate"
)

// State of a tracked record.
type State int

const (
	StateIdle State = iota
	StateSubmitting
	StateSubmitted
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateSubmitted:
		return "submitted"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Backend is the part of the census service the wizard needs.
type Backend interface {
	SubmitStep(ctx context.Context, id string, step census.Step, payload census.Payload) (census.Record, error)
	CompleteRecord(ctx context.Context, id string) (census.Record, error)
}

// Result describes a successful submission.
type Result struct {
	Record    census.Record
	Step      census.Step
	Completed bool
	// Diff is a unified diff from the submitted payload to the canonical
	// one, empty when the service stored the payload unchanged.
	Diff string
}

// Snapshot is a read-only view of a tracked record.
type Snapshot struct {
	Record census.Record
	State  State
	// Errors are field errors of ErrorStep from the last local validation.
	Errors validate.Errors
	// ErrorStep is the step the last failure belongs to, or 0.
	ErrorStep census.Step
	// Err is the submission failure while State is StateError.
	Err error
}

type session struct {
	record    census.Record
	store     store.Store
	state     State
	errors    validate.Errors
	errorStep census.Step
	err       error
}

// Controller tracks records and their wizard state. It is safe for
// concurrent use; at most one submission per record is in flight.
type Controller struct {
	mu        sync.Mutex
	backend   Backend
	validator *validate.Validator
	recorder  Recorder
	storeOpts []store.Option
	sessions  map[string]*session
}

// Option configures a Controller.
type Option func(*Controller)

// WithRecorder sets the event recorder.
func WithRecorder(r Recorder) Option {
	return func(c *Controller) { c.recorder = r }
}

// WithStoreOptions sets the options used whenever a record's store is
// seeded.
func WithStoreOptions(opts ...store.Option) Option {
	return func(c *Controller) { c.storeOpts = opts }
}

// New creates a controller.
func New(backend Backend, v *validate.Validator, opts ...Option) *Controller {
	c := &Controller{
		backend:   backend,
		validator: v,
		sessions:  make(map[string]*session),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Track starts tracking rec, or refreshes it with a newer copy. Local
// edits of a refreshed record are discarded.
func (c *Controller) Track(ctx context.Context, rec census.Record) error {
	c.mu.Lock()
	if s, ok := c.sessions[rec.ID]; ok && s.state == StateSubmitting {
		c.mu.Unlock()
		return ErrSubmitInFlight
	}
	state := StateIdle
	if rec.Completed() {
		state = StateSubmitted
	}
	c.sessions[rec.ID] = &session{
		record: rec.Clone(),
		store:  store.New(rec, c.storeOpts...),
		state:  state,
	}
	c.mu.Unlock()

	c.emit(ctx, Event{Kind: EventTracked, RecordID: rec.ID, CurrentStep: rec.CurrentStep, Status: rec.Status})
	return nil
}

// Untrack forgets a record.
func (c *Controller) Untrack(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, id)
}

// Snapshot returns the current view of a record.
func (c *Controller) Snapshot(id string) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.sessions[id]
	if !ok {
		return Snapshot{}, ErrUnknownRecord
	}
	return Snapshot{
		Record:    s.record.Clone(),
		State:     s.state,
		Errors:    copyErrors(s.errors),
		ErrorStep: s.errorStep,
		Err:       s.err,
	}, nil
}

// Payload returns the local payload of one step.
func (c *Controller) Payload(id string, step census.Step) (census.Payload, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.sessions[id]
	if !ok {
		return nil, ErrUnknownRecord
	}
	return s.store.Get(step), nil
}

// Store returns the record's store. The value is immutable so the caller
// may keep it.
func (c *Controller) Store(id string) (store.Store, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.sessions[id]
	if !ok {
		return store.Store{}, ErrUnknownRecord
	}
	return s.store, nil
}

// Edit applies fn to the record's store under the controller lock, so
// edits issued back to back are applied in order. Errors are cleared as
// after a structural change.
func (c *Controller) Edit(id string, fn func(store.Store) (store.Store, error)) error {
	return c.edit(id, func(s *session) error {
		next, err := fn(s.store)
		if err != nil {
			return err
		}
		s.store = next
		s.clearErrors()
		return nil
	})
}

// SetPayload replaces a whole step payload.
func (c *Controller) SetPayload(id string, p census.Payload) error {
	return c.Edit(id, func(st store.Store) (store.Store, error) {
		return st.Set(p.Step(), p)
	})
}

// MergeFields updates fields of a step payload and clears the errors of
// the touched paths.
func (c *Controller) MergeFields(id string, step census.Step, updates map[string]any) error {
	return c.edit(id, func(s *session) error {
		next, err := s.store.MergeFields(step, updates)
		if err != nil {
			return err
		}
		s.store = next
		if s.errorStep == step {
			for key := range updates {
				s.clearPath(key)
			}
		}
		return nil
	})
}

// MergeRow updates fields of one row and clears the errors of the touched
// paths.
func (c *Controller) MergeRow(id string, step census.Step, row census.RowID, updates map[string]any) error {
	return c.edit(id, func(s *session) error {
		prefix, _ := s.store.RowPath(step, row)
		next, err := s.store.MergeRow(step, row, updates)
		if err != nil {
			return err
		}
		s.store = next
		if s.errorStep == step {
			for key := range updates {
				s.clearPath(prefix + "." + key)
			}
		}
		return nil
	})
}

// AddRow appends a row and clears all errors of the record.
func (c *Controller) AddRow(id string, step census.Step, list string) (census.RowID, error) {
	var rowID census.RowID
	err := c.edit(id, func(s *session) error {
		next, newID, err := s.store.AddRow(step, list)
		if err != nil {
			return err
		}
		s.store = next
		rowID = newID
		s.clearErrors()
		return nil
	})
	return rowID, err
}

// RemoveRow deletes a row and clears all errors of the record.
func (c *Controller) RemoveRow(id string, step census.Step, row census.RowID) error {
	return c.edit(id, func(s *session) error {
		next, err := s.store.RemoveRow(step, row)
		if err != nil {
			return err
		}
		s.store = next
		s.clearErrors()
		return nil
	})
}

func (c *Controller) edit(id string, fn func(*session) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.sessions[id]
	switch {
	case !ok:
		return ErrUnknownRecord
	case s.state == StateSubmitting:
		return ErrSubmitInFlight
	case s.record.Completed():
		return ErrRecordCompleted
	}
	return fn(s)
}

// Submit validates the local payload of step and sends it. A step may be
// any step up to the record's current one; revisiting earlier steps is
// allowed. Submitting the last step also completes the record.
func (c *Controller) Submit(ctx context.Context, id string, step census.Step) (Result, error) {
	c.mu.Lock()
	s, ok := c.sessions[id]
	switch {
	case !ok:
		c.mu.Unlock()
		return Result{}, ErrUnknownRecord
	case s.state == StateSubmitting:
		c.mu.Unlock()
		return Result{}, ErrSubmitInFlight
	case s.record.Completed():
		c.mu.Unlock()
		return Result{}, ErrRecordCompleted
	case !step.Valid():
		c.mu.Unlock()
		return Result{}, fmt.Errorf("invalid step %d", step)
	case step > s.record.CurrentStep:
		c.mu.Unlock()
		return Result{}, fmt.Errorf("%w: step %d, record at %d", ErrStepAhead, step, s.record.CurrentStep)
	}

	payload := s.store.Get(step)
	if errs := c.validator.ForStep(step)(payload); !errs.Empty() {
		s.state = StateIdle
		s.errors = errs
		s.errorStep = step
		s.err = nil
		rec := s.record
		c.mu.Unlock()

		logger.Debug("Step %d of %s rejected: %s", step, id, errs)
		c.emit(ctx, Event{Kind: EventStepRejected, RecordID: id, Step: step, CurrentStep: rec.CurrentStep, Status: rec.Status, Message: errs.String()})
		return Result{}, &ValidationError{Step: step, Errors: copyErrors(errs)}
	}

	s.clearErrors()
	s.err = nil
	s.state = StateSubmitting
	localStep := s.record.CurrentStep
	c.mu.Unlock()

	logger.Info("Submitting step %d of %s", step, id)
	canonical, err := c.backend.SubmitStep(ctx, id, step, payload)
	if err != nil {
		return Result{}, c.fail(ctx, s, step, &TransportError{Op: fmt.Sprintf("submit step %d", step), Err: err})
	}
	if canonical.CurrentStep < localStep {
		return Result{}, c.fail(ctx, s, step, &ConsistencyError{
			RecordID: id,
			Reason:   fmt.Sprintf("service moved current step back from %d to %d", localStep, canonical.CurrentStep),
		})
	}

	result := Result{Record: canonical, Step: step}
	if p, ok := canonical.Payload(step); ok {
		result.Diff = payloadDiff(step, census.ForSubmission(payload), p)
	}

	c.mu.Lock()
	c.reseed(s, canonical)
	final := step == census.LastStep && canonical.CurrentStep == census.LastStep
	if !final {
		s.state = StateIdle
	}
	c.mu.Unlock()
	c.emit(ctx, Event{Kind: EventStepSubmitted, RecordID: id, Step: step, CurrentStep: canonical.CurrentStep, Status: canonical.Status})

	if !final {
		return result, nil
	}

	logger.Info("Completing record %s", id)
	completed, err := c.backend.CompleteRecord(ctx, id)
	if err != nil {
		return result, c.fail(ctx, s, step, &TransportError{Op: "complete record", Err: err})
	}
	if !completed.Completed() {
		return result, c.fail(ctx, s, step, &ConsistencyError{
			RecordID: id,
			Reason:   fmt.Sprintf("completion returned status %q", completed.Status),
		})
	}

	c.mu.Lock()
	c.reseed(s, completed)
	s.state = StateSubmitted
	c.mu.Unlock()

	result.Record = completed
	result.Completed = true
	c.emit(ctx, Event{Kind: EventRecordCompleted, RecordID: id, Step: step, CurrentStep: completed.CurrentStep, Status: completed.Status})
	return result, nil
}

// fail moves s to the Error state and records err.
func (c *Controller) fail(ctx context.Context, s *session, step census.Step, err error) error {
	c.mu.Lock()
	s.state = StateError
	s.err = err
	s.errorStep = step
	rec := s.record
	c.mu.Unlock()

	logger.Error("Submission of step %d for %s failed: %v", step, rec.ID, err)
	c.emit(ctx, Event{Kind: EventSubmitFailed, RecordID: rec.ID, Step: step, CurrentStep: rec.CurrentStep, Status: rec.Status, Message: err.Error()})
	return err
}

// reseed replaces the local record verbatim. Callers hold c.mu.
func (c *Controller) reseed(s *session, rec census.Record) {
	s.record = rec.Clone()
	s.store = store.New(rec, c.storeOpts...)
}

func (c *Controller) emit(ctx context.Context, ev Event) {
	if c.recorder == nil {
		return
	}
	if err := c.recorder.Record(ctx, ev); err != nil {
		logger.Warn("Recording %s event for %s: %v", ev.Kind, ev.RecordID, err)
	}
}

func (s *session) clearErrors() {
	s.errors = nil
	s.errorStep = 0
}

// clearPath drops the error at path and any error nested below it.
func (s *session) clearPath(path string) {
	for key := range s.errors {
		if key == path || strings.HasPrefix(key, path+".") || strings.HasPrefix(key, path+"[") {
			delete(s.errors, key)
		}
	}
}

func copyErrors(errs validate.Errors) validate.Errors {
	if errs == nil {
		return nil
	}
	out := make(validate.Errors, len(errs))
	for k, v := range errs {
		out[k] = v
	}
	return out
}
