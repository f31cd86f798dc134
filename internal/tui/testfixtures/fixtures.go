package testfixtures

import (
	"time"

	"github.com/mark3labs/census/internal/census"
	"github.com/mark3labs/census/internal/censustest"
)

// Fixed test values for consistent output
const (
	FixedUser = "agent"
)

var (
	FixedTime = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
)

// Now is a clock frozen at FixedTime.
func Now() time.Time {
	return FixedTime
}

// Record returns an in-progress record created at created, with valid
// payloads for every step before current.
func Record(id string, current census.Step, created time.Time) census.Record {
	rec := census.Record{
		ID:          id,
		CurrentStep: current,
		Status:      census.StatusInProgress,
		CreatedAt:   created,
	}
	for step := census.StepLocation; step < current; step++ {
		next, err := rec.WithPayload(censustest.ValidPayload(step))
		if err != nil {
			panic(err)
		}
		rec = next
	}
	return rec
}

// CompletedRecord returns a record with every step filled in.
func CompletedRecord(id string, created time.Time) census.Record {
	rec := Record(id, census.LastStep, created)
	rec, err := rec.WithPayload(censustest.ValidPayload(census.LastStep))
	if err != nil {
		panic(err)
	}
	rec.Status = census.StatusCompleted
	return rec
}

// MixedRecords returns records spread over the recency groups relative to
// FixedTime.
func MixedRecords() []census.Record {
	return []census.Record{
		Record("today-aaaa", census.StepRoster, FixedTime.Add(-time.Hour)),
		CompletedRecord("today-done", FixedTime.Add(-2*time.Hour)),
		Record("yest-bbbb", census.StepFertility, FixedTime.AddDate(0, 0, -1)),
		Record("week-cccc", census.StepLocation, FixedTime.AddDate(0, 0, -4)),
		Record("old-dddd", census.StepDisability, FixedTime.AddDate(0, -3, 0)),
	}
}
