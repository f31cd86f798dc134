// Package census holds the domain model of a census record: the record
// itself, the eight step payloads that populate it and the option tables
// the enumerator picks from.
package census

import (
	"fmt"
	"time"
)

// Status is the lifecycle state of a record on the server.
type Status string

const (
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
)

// Record is the aggregate census record. Payload slots are nil until the
// server holds data for that step.
type Record struct {
	ID          string    `json:"id" yaml:"id"`
	CurrentStep Step      `json:"currentStep" yaml:"currentStep"`
	Status      Status    `json:"status" yaml:"status"`
	CreatedAt   time.Time `json:"createdAt" yaml:"createdAt"`

	Step1Data *LocationInfo       `json:"step1Data,omitempty" yaml:"step1Data,omitempty"`
	Step2Data *HouseholdRoster    `json:"step2Data,omitempty" yaml:"step2Data,omitempty"`
	Step3Data *HouseholdUnit      `json:"step3Data,omitempty" yaml:"step3Data,omitempty"`
	Step4Data *TemporaryAbsentees `json:"step4Data,omitempty" yaml:"step4Data,omitempty"`
	Step5Data *Fertility          `json:"step5Data,omitempty" yaml:"step5Data,omitempty"`
	Step6Data *EconomicActivities `json:"step6Data,omitempty" yaml:"step6Data,omitempty"`
	Step7Data *Disability         `json:"step7Data,omitempty" yaml:"step7Data,omitempty"`
	Step8Data *Agriculture        `json:"step8Data,omitempty" yaml:"step8Data,omitempty"`
}

// Completed reports whether the record reached its terminal state.
func (r Record) Completed() bool {
	return r.Status == StatusCompleted
}

// Payload returns the payload the record holds for step, if any.
func (r Record) Payload(step Step) (Payload, bool) {
	switch step {
	case StepLocation:
		if r.Step1Data != nil {
			return *r.Step1Data, true
		}
	case StepRoster:
		if r.Step2Data != nil {
			return r.Step2Data.Clone(), true
		}
	case StepHouseholdUnit:
		if r.Step3Data != nil {
			return r.Step3Data.Clone(), true
		}
	case StepAbsentees:
		if r.Step4Data != nil {
			return r.Step4Data.Clone(), true
		}
	case StepFertility:
		if r.Step5Data != nil {
			return *r.Step5Data, true
		}
	case StepEconomicActivity:
		if r.Step6Data != nil {
			return r.Step6Data.Clone(), true
		}
	case StepDisability:
		if r.Step7Data != nil {
			return *r.Step7Data, true
		}
	case StepAgriculture:
		if r.Step8Data != nil {
			return r.Step8Data.Clone(), true
		}
	}
	return nil, false
}

// WithPayload returns a copy of the record with the slot for p's step
// replaced by p.
func (r Record) WithPayload(p Payload) (Record, error) {
	switch v := p.Clone().(type) {
	case LocationInfo:
		r.Step1Data = &v
	case HouseholdRoster:
		r.Step2Data = &v
	case HouseholdUnit:
		r.Step3Data = &v
	case TemporaryAbsentees:
		r.Step4Data = &v
	case Fertility:
		r.Step5Data = &v
	case EconomicActivities:
		r.Step6Data = &v
	case Disability:
		r.Step7Data = &v
	case Agriculture:
		r.Step8Data = &v
	default:
		return r, fmt.Errorf("unsupported payload type %T", p)
	}
	return r, nil
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	out := r
	out.Step1Data, out.Step2Data, out.Step3Data, out.Step4Data = nil, nil, nil, nil
	out.Step5Data, out.Step6Data, out.Step7Data, out.Step8Data = nil, nil, nil, nil
	for _, step := range AllSteps() {
		if p, ok := r.Payload(step); ok {
			out, _ = out.WithPayload(p)
		}
	}
	return out
}

// Progress is the completed fraction of the wizard, derived from the step
// counter: (currentStep-1)/TotalSteps clamped to [0,1].
func Progress(r Record) float64 {
	p := float64(int(r.CurrentStep)-1) / float64(TotalSteps)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
