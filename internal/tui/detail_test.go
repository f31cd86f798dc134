package tui

import (
	"errors"
	"strings"
	"testing"

	uv "github.com/charmbracelet/ultraviolet"

	"github.com/mark3labs/census/internal/census"
	"github.com/mark3labs/census/internal/censustest"
	"github.com/mark3labs/census/internal/tui/testfixtures"
	"github.com/mark3labs/census/internal/validate"
	"github.com/mark3labs/census/internal/wizard"
)

func fixturePayloads(id string, step census.Step) (census.Payload, error) {
	return censustest.ValidPayload(step), nil
}

func newTestDetail(snap wizard.Snapshot) *Detail {
	d := NewDetail(fixturePayloads)
	d.SetSize(80, 40)
	d.SetSnapshot(snap)
	return d
}

func drawDetail(d *Detail) string {
	return testfixtures.RenderedSize(80, 40, func(scr uv.Screen, area uv.Rectangle) {
		d.Draw(scr, area)
	})
}

func TestStepStateOf(t *testing.T) {
	rec := testfixtures.Record("r1", census.StepAbsentees, testfixtures.FixedTime)
	done := testfixtures.CompletedRecord("r2", testfixtures.FixedTime)

	tests := []struct {
		name string
		rec  census.Record
		step census.Step
		want StepState
	}{
		{"before current", rec, census.StepRoster, StepComplete},
		{"current", rec, census.StepAbsentees, StepActive},
		{"after current", rec, census.StepFertility, StepPending},
		{"completed record last step", done, census.LastStep, StepComplete},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StepStateOf(tt.rec, tt.step); got != tt.want {
				t.Errorf("StepStateOf(%d) = %d, want %d", tt.step, got, tt.want)
			}
		})
	}
}

func TestDetail_ShowsCurrentStep(t *testing.T) {
	rec := testfixtures.Record("rec-12345678", census.StepHouseholdUnit, testfixtures.FixedTime)
	d := newTestDetail(wizard.Snapshot{Record: rec, State: wizard.StateIdle})

	if d.Cursor() != census.StepHouseholdUnit {
		t.Fatalf("cursor = %d, want the current step", d.Cursor())
	}
	out := drawDetail(d)
	testfixtures.AssertContains(t, out,
		"Record rec-1234",
		"✓1", "✓2", "[●3]", "○4", "○8",
		"Step 3: Household Unit",
		"Not yet submitted",
	)
}

func TestDetail_CursorBoundedByCurrentStep(t *testing.T) {
	rec := testfixtures.Record("r1", census.StepRoster, testfixtures.FixedTime)
	d := newTestDetail(wizard.Snapshot{Record: rec})

	d.Update(key("right"))
	if d.Cursor() != census.StepRoster {
		t.Errorf("cursor moved past the current step to %d", d.Cursor())
	}

	d.Update(key("h"))
	if d.Cursor() != census.StepLocation {
		t.Fatalf("cursor = %d after h", d.Cursor())
	}
	out := drawDetail(d)
	testfixtures.AssertContains(t, out, "Step 1: Location Information", "Submitted", "regionName: Greater Accra")

	d.Update(key("left"))
	if d.Cursor() != census.StepLocation {
		t.Errorf("cursor moved before the first step to %d", d.Cursor())
	}
}

func TestDetail_ValidationErrors(t *testing.T) {
	rec := testfixtures.Record("r1", census.StepRoster, testfixtures.FixedTime)
	d := newTestDetail(wizard.Snapshot{
		Record:    rec,
		State:     wizard.StateIdle,
		ErrorStep: census.StepLocation,
		Errors:    validate.Errors{"regionName": "Region is required"},
	})

	// Errors belong to their step only
	testfixtures.AssertNotContains(t, drawDetail(d), "Please fix the following:")

	d.Update(key("left"))
	out := drawDetail(d)
	testfixtures.AssertContains(t, out, "Please fix the following:", "regionName: Region is required")
	if strings.Index(out, "Please fix the following:") > strings.Index(out, "regionName: Greater Accra") {
		t.Error("errors should be listed above the payload")
	}
}

func TestDetail_TransportError(t *testing.T) {
	rec := testfixtures.Record("r1", census.StepLocation, testfixtures.FixedTime)
	terr := &wizard.TransportError{Op: "submit step 1", Err: errors.New("connection refused")}
	d := newTestDetail(wizard.Snapshot{
		Record:    rec,
		State:     wizard.StateError,
		ErrorStep: census.StepLocation,
		Err:       terr,
	})

	out := drawDetail(d)
	testfixtures.AssertContains(t, out, "Could not reach the census service", "Press s to retry.")
}

func TestDetail_CompletedShowsSummary(t *testing.T) {
	rec := testfixtures.CompletedRecord("done-1", testfixtures.FixedTime)
	d := newTestDetail(wizard.Snapshot{Record: rec, State: wizard.StateSubmitted})

	out := drawDetail(d)
	testfixtures.AssertContains(t, out, "Record done-1", "COMPLETED")
	testfixtures.AssertNotContains(t, out, "[✓8]")

	d.Update(key("m"))
	out = drawDetail(d)
	testfixtures.AssertContains(t, out, "[✓8]", "Step 8: Agricultural Activity", "Record completed")
}

func TestDetail_Empty(t *testing.T) {
	d := NewDetail(fixturePayloads)
	d.SetSize(80, 20)
	if d.RecordID() != "" {
		t.Error("empty detail should have no record")
	}
	out := drawDetail(d)
	testfixtures.AssertContains(t, out, "Select a record to see its steps.")

	if cmd := d.Update(key("right")); cmd != nil {
		t.Error("keys on an empty detail should be ignored")
	}
}

func TestDetail_AdvanceMovesCursor(t *testing.T) {
	rec := testfixtures.Record("r1", census.StepLocation, testfixtures.FixedTime)
	d := newTestDetail(wizard.Snapshot{Record: rec})

	next := testfixtures.Record("r1", census.StepRoster, testfixtures.FixedTime)
	d.SetSnapshot(wizard.Snapshot{Record: next})
	if d.Cursor() != census.StepRoster {
		t.Errorf("cursor = %d, want it to follow the record to step 2", d.Cursor())
	}
}
