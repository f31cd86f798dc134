package census

import (
	"fmt"
	"strconv"
)

// Step is a 1-based wizard step number.
type Step int

const (
	StepLocation Step = iota + 1
	StepRoster
	StepHouseholdUnit
	StepAbsentees
	StepFertility
	StepEconomicActivity
	StepDisability
	StepAgriculture
)

// TotalSteps is the number of steps in the wizard.
const TotalSteps = 8

// LastStep is the step whose submission completes a record.
const LastStep = StepAgriculture

// StepInfo describes one step of the wizard.
type StepInfo struct {
	Step        Step
	Key         string
	Title       string
	Description string
}

var catalog = []StepInfo{
	{StepLocation, "step1Data", "Location Information", "Region, district, locality and enumeration area of the household"},
	{StepRoster, "step2Data", "Household Roster", "Everyone who usually lives in the household, starting with the head"},
	{StepHouseholdUnit, "step3Data", "Household Unit", "Date of birth, age, nationality and ethnicity of each person"},
	{StepAbsentees, "step4Data", "Temporary Absentees", "Members who are away and members who emigrated"},
	{StepFertility, "step5Data", "Fertility Data", "Children ever born, surviving and born in the last 12 months"},
	{StepEconomicActivity, "step6Data", "Economic Activity", "Establishments, employment status and sector"},
	{StepDisability, "step7Data", "Disability Data", "Difficulties with sight, hearing, speech and other functions"},
	{StepAgriculture, "step8Data", "Agricultural Activity", "Crops grown and livestock kept"},
}

// AllSteps returns the steps in wizard order.
func AllSteps() []Step {
	steps := make([]Step, len(catalog))
	for i, info := range catalog {
		steps[i] = info.Step
	}
	return steps
}

// Catalog returns a copy of the step catalog.
func Catalog() []StepInfo {
	return append([]StepInfo(nil), catalog...)
}

// Valid reports whether s is within 1..TotalSteps.
func (s Step) Valid() bool {
	return s >= StepLocation && s <= LastStep
}

// Info returns the catalog entry for s.
func (s Step) Info() StepInfo {
	if !s.Valid() {
		return StepInfo{Step: s, Title: "Unknown step"}
	}
	return catalog[s-1]
}

// Title returns the human readable name of s.
func (s Step) Title() string {
	return s.Info().Title
}

func (s Step) String() string {
	return strconv.Itoa(int(s))
}

// ParseStep parses a step number and checks its range.
func ParseStep(v string) (Step, error) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid step %q: %w", v, err)
	}
	s := Step(n)
	if !s.Valid() {
		return 0, fmt.Errorf("step %d out of range 1..%d", n, TotalSteps)
	}
	return s, nil
}
