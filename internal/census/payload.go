package census

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// RowID identifies a row inside a step payload. Server-assigned ids are
// positive, 0 means unassigned and negative ids are local placeholders.
type RowID int64

// Placeholder reports whether id was allocated locally.
func (id RowID) Placeholder() bool {
	return id < 0
}

var (
	ErrHeadRemoval = errors.New("the household head cannot be removed")
	ErrLastRow     = errors.New("at least one row is required")
	ErrUnknownList = errors.New("unknown row list")
	ErrRowNotFound = errors.New("row not found")
)

// Payload is the data collected by one wizard step.
type Payload interface {
	Step() Step
	// Clone returns a copy that shares no slices with the receiver.
	Clone() Payload
}

// Normalizer is implemented by payloads with derived fields.
type Normalizer interface {
	Normalize() Payload
}

// RowCollection is implemented by payloads holding lists of rows.
type RowCollection interface {
	Payload
	RowLists() []string
	Rows(list string) ([]RowID, bool)
	AppendRow(list string, id RowID) (Payload, error)
	RemoveRow(id RowID) (Payload, error)
	// AssignPlaceholders gives every unassigned row an id from next.
	AssignPlaceholders(next func() RowID) Payload
	// ClearPlaceholders resets placeholder ids to 0.
	ClearPlaceholders() Payload
}

// NewPayload returns the default payload for step. Row ids of default
// rows are unassigned.
func NewPayload(step Step) (Payload, error) {
	switch step {
	case StepLocation:
		return LocationInfo{ResidenceType: "OCCUPIED"}, nil
	case StepRoster:
		return HouseholdRoster{Members: []HouseholdMember{{
			RelationshipToHead: RelationshipHead,
			RelationshipCode:   RelationshipCode(RelationshipHead),
			Sex:                "M",
		}}}, nil
	case StepHouseholdUnit:
		return HouseholdUnit{People: []Person{{}}}, nil
	case StepAbsentees:
		return TemporaryAbsentees{
			HasEmigrants:    "No",
			AbsentMembers:   []AbsentMember{},
			EmigrantMembers: []Emigrant{},
		}, nil
	case StepFertility:
		return Fertility{}, nil
	case StepEconomicActivity:
		return EconomicActivities{Activities: []EconomicActivity{}}, nil
	case StepDisability:
		return Disability{}, nil
	case StepAgriculture:
		return Agriculture{Crops: []Crop{}, Livestock: []Livestock{}}, nil
	default:
		return nil, fmt.Errorf("unknown step %d", step)
	}
}

// DecodePayload decodes the JSON form of a step payload. With strict set,
// unknown fields are rejected.
func DecodePayload(step Step, data []byte, strict bool) (Payload, error) {
	switch step {
	case StepLocation:
		return decodeInto[LocationInfo](data, strict)
	case StepRoster:
		return decodeInto[HouseholdRoster](data, strict)
	case StepHouseholdUnit:
		return decodeInto[HouseholdUnit](data, strict)
	case StepAbsentees:
		return decodeInto[TemporaryAbsentees](data, strict)
	case StepFertility:
		return decodeInto[Fertility](data, strict)
	case StepEconomicActivity:
		return decodeInto[EconomicActivities](data, strict)
	case StepDisability:
		return decodeInto[Disability](data, strict)
	case StepAgriculture:
		return decodeInto[Agriculture](data, strict)
	default:
		return nil, fmt.Errorf("unknown step %d", step)
	}
}

func decodeInto[T Payload](data []byte, strict bool) (Payload, error) {
	var v T
	dec := json.NewDecoder(bytes.NewReader(data))
	if strict {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decoding step %s payload: %w", v.Step(), err)
	}
	return v, nil
}

// ForSubmission returns the payload as it should go on the wire: a copy
// with placeholder row ids cleared.
func ForSubmission(p Payload) Payload {
	if rc, ok := p.(RowCollection); ok {
		return rc.ClearPlaceholders()
	}
	return p.Clone()
}
