package tui

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/mark3labs/census/internal/census"
	"github.com/mark3labs/census/internal/censustest"
	"github.com/mark3labs/census/internal/tui/testfixtures"
	"github.com/mark3labs/census/internal/wizard"
)

func trackedRecord(t *testing.T, svc *testfixtures.Service, current census.Step) census.Record {
	t.Helper()
	rec := svc.Seed(t, testfixtures.Record("", current, testfixtures.FixedTime))[0]
	if err := svc.Wizard.Track(context.Background(), rec); err != nil {
		t.Fatalf("Track() error = %v", err)
	}
	return rec
}

func TestWriteStepFile(t *testing.T) {
	path, err := writeStepFile(censustest.ValidPayload(census.StepLocation))
	if err != nil {
		t.Fatalf("writeStepFile() error = %v", err)
	}
	defer func() { _ = os.Remove(path) }()

	if !strings.HasSuffix(path, ".yaml") {
		t.Errorf("expected a .yaml temp file, got %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	testfixtures.AssertContains(t, string(data), "# Step 1: Location Information", "regionName: Greater Accra")
}

func TestApplyEdit(t *testing.T) {
	svc := testfixtures.NewService(t)
	rec := trackedRecord(t, svc, census.StepLocation)

	path, err := writeStepFile(censustest.ValidPayload(census.StepLocation))
	if err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	edited := strings.Replace(string(data), "localityName: Osu", "localityName: Labadi", 1)
	if err := os.WriteFile(path, []byte(edited), 0o600); err != nil {
		t.Fatal(err)
	}

	err = applyEdit(svc.Wizard, EditorFinishedMsg{RecordID: rec.ID, Step: census.StepLocation, Path: path})
	if err != nil {
		t.Fatalf("applyEdit() error = %v", err)
	}
	p, err := svc.Wizard.Payload(rec.ID, census.StepLocation)
	if err != nil {
		t.Fatal(err)
	}
	if got := p.(census.LocationInfo).LocalityName; got != "Labadi" {
		t.Errorf("LocalityName = %q, want Labadi", got)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("temp file should be removed after applying")
	}
}

func TestApplyEdit_Errors(t *testing.T) {
	svc := testfixtures.NewService(t)
	rec := trackedRecord(t, svc, census.StepLocation)

	t.Run("editor failed", func(t *testing.T) {
		path, _ := writeStepFile(censustest.ValidPayload(census.StepLocation))
		err := applyEdit(svc.Wizard, EditorFinishedMsg{RecordID: rec.ID, Step: census.StepLocation, Path: path, Err: errors.New("exit status 1")})
		if err == nil {
			t.Fatal("expected the editor error")
		}
		if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
			t.Error("temp file should be removed on failure too")
		}
	})

	t.Run("unknown key", func(t *testing.T) {
		path, _ := writeStepFile(censustest.ValidPayload(census.StepLocation))
		if err := os.WriteFile(path, []byte("regionName: x\ncolour: blue\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		if err := applyEdit(svc.Wizard, EditorFinishedMsg{RecordID: rec.ID, Step: census.StepLocation, Path: path}); err == nil {
			t.Fatal("expected unknown keys to be rejected")
		}
		p, _ := svc.Wizard.Payload(rec.ID, census.StepLocation)
		if p.(census.LocationInfo).RegionName == "x" {
			t.Error("a rejected edit must not change the payload")
		}
	})
}

func TestEditStep_EditorUnavailable(t *testing.T) {
	svc := testfixtures.NewService(t)
	rec := trackedRecord(t, svc, census.StepLocation)

	open := func(string) (*exec.Cmd, error) { return nil, errors.New("no editor") }
	msg, ok := editStep(svc.Wizard, rec.ID, census.StepLocation, open)().(EditorFinishedMsg)
	if !ok {
		t.Fatal("expected EditorFinishedMsg")
	}
	if msg.Err == nil || !strings.Contains(msg.Err.Error(), "opening editor") {
		t.Errorf("unexpected error: %v", msg.Err)
	}

	msg = editStep(svc.Wizard, "missing", census.StepLocation, open)().(EditorFinishedMsg)
	if !errors.Is(msg.Err, wizard.ErrUnknownRecord) {
		t.Errorf("expected ErrUnknownRecord, got %v", msg.Err)
	}
}

func TestSubmitMessage(t *testing.T) {
	tests := []struct {
		name string
		msg  StepSubmittedMsg
		want string
	}{
		{"saved", StepSubmittedMsg{Step: 2}, "Step 2 saved"},
		{"completed", StepSubmittedMsg{Step: 8, Result: wizard.Result{Completed: true}}, "Record completed"},
		{"validation", StepSubmittedMsg{Step: 1, Err: &wizard.ValidationError{Step: 1, Errors: map[string]string{"a": "x", "b": "y"}}}, "Step 1 has 2 field(s) to fix"},
		{"transport", StepSubmittedMsg{Step: 1, Err: &wizard.TransportError{Op: "submit step 1", Err: errors.New("refused")}}, "Could not reach the census service (submit step 1). Please try again."},
		{"consistency", StepSubmittedMsg{Step: 1, Err: &wizard.ConsistencyError{RecordID: "r", Reason: "step went backwards"}}, "Record changed on the server. Reload with r."},
		{"other", StepSubmittedMsg{Step: 1, Err: wizard.ErrSubmitInFlight}, wizard.ErrSubmitInFlight.Error()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := submitMessage(tt.msg); got != tt.want {
				t.Errorf("submitMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}
