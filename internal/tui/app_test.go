package tui

import (
	"context"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/mark3labs/census/internal/census"
	"github.com/mark3labs/census/internal/censustest"
	"github.com/mark3labs/census/internal/state"
	"github.com/mark3labs/census/internal/tui/testfixtures"
)

// waitFor runs cmd (and any batched commands) and returns the first
// message accepted by match. Timers still pending at the deadline are
// abandoned.
func waitFor(t *testing.T, cmd tea.Cmd, match func(tea.Msg) bool) tea.Msg {
	t.Helper()
	msgs := make(chan tea.Msg, 16)
	var run func(tea.Cmd)
	run = func(c tea.Cmd) {
		if c == nil {
			return
		}
		go func() {
			msg := c()
			if batch, ok := msg.(tea.BatchMsg); ok {
				for _, sub := range batch {
					run(sub)
				}
				return
			}
			msgs <- msg
		}()
	}
	run(cmd)

	deadline := time.After(testfixtures.DefaultWaitDuration)
	for {
		select {
		case msg := <-msgs:
			if match(msg) {
				return msg
			}
		case <-deadline:
			t.Fatal("timed out waiting for message")
			return nil
		}
	}
}

func newTestApp(t *testing.T) (*App, *testfixtures.Service, string) {
	t.Helper()
	svc := testfixtures.NewService(t)
	svc.Seed(t, testfixtures.MixedRecords()...)
	dir := t.TempDir()

	a := NewApp(context.Background(), svc.Records, svc.Wizard, testfixtures.FixedUser, dir, WithClock(testfixtures.Now))
	a.Update(tea.WindowSizeMsg{Width: testfixtures.TestTermWidth, Height: testfixtures.TestTermHeight})
	a.Update(a.Init()())
	return a, svc, dir
}

func drawApp(a *App) string {
	return testfixtures.Rendered(func(scr uv.Screen, area uv.Rectangle) {
		a.Draw(scr, area)
	})
}

func TestApp_LoadsAndShowsFirstRecord(t *testing.T) {
	a, _, _ := newTestApp(t)

	if got := a.detail.RecordID(); got != "today-aaaa" {
		t.Fatalf("detail shows %q, want the newest record", got)
	}
	out := drawApp(a)
	testfixtures.AssertContains(t, out,
		"Records (5)",
		"Today (2)",
		"Record today-aa",
		"Step 2: Household Roster",
		"census | agent | today-aa 2/8 Household Roster",
		"enter open",
	)
}

func TestApp_SelectionFollowsCursor(t *testing.T) {
	a, _, _ := newTestApp(t)

	_, cmd := a.Update(key("j"))
	a.Update(cmd())
	if got := a.detail.RecordID(); got != "today-done" {
		t.Fatalf("detail shows %q after j", got)
	}
	testfixtures.AssertContains(t, drawApp(a), "COMPLETED")
}

func TestApp_FocusSwitching(t *testing.T) {
	a, _, _ := newTestApp(t)

	a.Update(key("tab"))
	if a.focus != focusDetail || !a.detail.IsFocused() || a.dashboard.IsFocused() {
		t.Fatal("tab should move focus to the detail")
	}
	testfixtures.AssertContains(t, drawApp(a), "s submit")

	a.Update(key("esc"))
	if a.focus != focusList {
		t.Error("esc should return focus to the list")
	}

	_, cmd := a.Update(key("enter"))
	a.Update(cmd())
	if a.focus != focusDetail {
		t.Error("enter on a record should open its detail")
	}
}

func TestApp_CompactShowsFocusedPanel(t *testing.T) {
	a, _, _ := newTestApp(t)
	a.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	out := testfixtures.RenderedSize(80, 24, func(scr uv.Screen, area uv.Rectangle) { a.Draw(scr, area) })
	testfixtures.AssertContains(t, out, "Records (5)")
	testfixtures.AssertNotContains(t, out, "Step 2: Household Roster")

	a.Update(key("tab"))
	out = testfixtures.RenderedSize(80, 24, func(scr uv.Screen, area uv.Rectangle) { a.Draw(scr, area) })
	testfixtures.AssertContains(t, out, "Step 2: Household Roster")
	testfixtures.AssertNotContains(t, out, "Records (5)")
}

func TestApp_SubmitAdvancesRecord(t *testing.T) {
	a, svc, _ := newTestApp(t)

	if err := svc.Wizard.SetPayload("today-aaaa", censustest.ValidPayload(census.StepRoster)); err != nil {
		t.Fatal(err)
	}
	_, cmd := a.Update(key("s"))
	if !a.status.Submitting() {
		t.Error("status bar should show the submission")
	}

	msg := waitFor(t, cmd, func(m tea.Msg) bool { _, ok := m.(StepSubmittedMsg); return ok })
	if err := msg.(StepSubmittedMsg).Err; err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	a.Update(msg)

	if a.status.Submitting() {
		t.Error("spinner should stop after the response")
	}
	rec, err := svc.Records.Get("today-aaaa")
	if err != nil {
		t.Fatal(err)
	}
	if rec.CurrentStep != census.StepHouseholdUnit {
		t.Errorf("current step = %d, want 3", rec.CurrentStep)
	}
	if a.detail.Cursor() != census.StepHouseholdUnit {
		t.Errorf("detail cursor = %d, want 3", a.detail.Cursor())
	}
	if got := a.toast.GetMessage(); got != "Step 2 saved" {
		t.Errorf("toast = %q", got)
	}
}

func TestApp_SubmitValidationError(t *testing.T) {
	a, svc, _ := newTestApp(t)

	a.dashboard.Select("week-cccc")
	a.showRecord("week-cccc")
	if err := svc.Wizard.SetPayload("week-cccc", census.LocationInfo{}); err != nil {
		t.Fatal(err)
	}

	_, cmd := a.Update(key("s"))
	msg := waitFor(t, cmd, func(m tea.Msg) bool { _, ok := m.(StepSubmittedMsg); return ok })
	a.Update(msg)

	testfixtures.AssertContains(t, drawApp(a), "Please fix the following:", "regionName")
	if n := svc.Fake.Calls(censustest.RouteSubmit); n != 0 {
		t.Errorf("invalid step reached the service %d times", n)
	}
}

func TestApp_SubmitCompletedRecord(t *testing.T) {
	a, _, _ := newTestApp(t)
	a.dashboard.Select("today-done")
	a.showRecord("today-done")

	a.Update(key("s"))
	if got := a.toast.GetMessage(); got != "Record is already completed" {
		t.Errorf("toast = %q", got)
	}
	if a.status.Submitting() {
		t.Error("nothing should be submitted")
	}
}

func TestApp_CreateRecord(t *testing.T) {
	a, _, _ := newTestApp(t)

	_, cmd := a.Update(key("n"))
	msg := waitFor(t, cmd, func(m tea.Msg) bool { _, ok := m.(RecordCreatedMsg); return ok })
	created := msg.(RecordCreatedMsg)
	if created.Err != nil {
		t.Fatalf("create failed: %v", created.Err)
	}
	a.Update(msg)

	if len(a.dashboard.Visible()) != 6 {
		t.Errorf("expected 6 records, got %d", len(a.dashboard.Visible()))
	}
	if a.detail.RecordID() != created.Record.ID || a.focus != focusDetail {
		t.Error("the new record should open in the detail")
	}
	if a.detail.Cursor() != census.StepLocation {
		t.Errorf("new record cursor = %d", a.detail.Cursor())
	}
}

func TestApp_EditorFinished(t *testing.T) {
	a, svc, _ := newTestApp(t)

	path, err := writeStepFile(censustest.ValidPayload(census.StepRoster))
	if err != nil {
		t.Fatal(err)
	}
	a.Update(EditorFinishedMsg{RecordID: "today-aaaa", Step: census.StepRoster, Path: path})

	if got := a.toast.GetMessage(); got != "Step updated. Press s to submit." {
		t.Errorf("toast = %q", got)
	}
	p, _ := svc.Wizard.Payload("today-aaaa", census.StepRoster)
	if n := len(p.(census.HouseholdRoster).Members); n != 2 {
		t.Errorf("expected the edited roster, got %d members", n)
	}
	testfixtures.AssertContains(t, drawApp(a), "Kwame Mensah")
}

func TestApp_QuitSavesState(t *testing.T) {
	a, _, dir := newTestApp(t)
	a.Update(key("f"))

	_, cmd := a.Update(key("q"))
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("q should quit")
	}

	saved := state.Load(dir)
	if saved.Dashboard.LastRecord != "today-aaaa" {
		t.Errorf("LastRecord = %q", saved.Dashboard.LastRecord)
	}
	if saved.Dashboard.Status != "active" {
		t.Errorf("Status = %q", saved.Dashboard.Status)
	}

	// The next start selects the same record again
	svc := testfixtures.NewService(t)
	svc.Seed(t, testfixtures.MixedRecords()...)
	b := NewApp(context.Background(), svc.Records, svc.Wizard, testfixtures.FixedUser, dir, WithClock(testfixtures.Now))
	b.Update(tea.WindowSizeMsg{Width: testfixtures.TestTermWidth, Height: testfixtures.TestTermHeight})
	b.Update(b.Init()())
	if b.detail.RecordID() != "today-aaaa" {
		t.Errorf("restored record = %q", b.detail.RecordID())
	}
	if len(b.dashboard.Visible()) != 4 {
		t.Errorf("restored filter should hide the completed record, got %d", len(b.dashboard.Visible()))
	}
}

func TestApp_View(t *testing.T) {
	a, _, _ := newTestApp(t)
	view := a.View()
	if !view.AltScreen {
		t.Error("expected the alt screen")
	}

	a.quit()
	if a.View().AltScreen {
		t.Error("quitting should leave the alt screen")
	}
}
