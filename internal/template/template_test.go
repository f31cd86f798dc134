package template

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/census/internal/census"
	"github.com/mark3labs/census/internal/censustest"
	"github.com/mark3labs/census/internal/session"
	"github.com/mark3labs/census/internal/wizard"
)

var fixedNow = time.Date(2024, 3, 2, 12, 0, 0, 0, time.UTC)

func testRecord(t *testing.T) census.Record {
	t.Helper()
	rec := census.Record{
		ID:          "rec-1",
		CurrentStep: census.StepRoster,
		Status:      census.StatusInProgress,
		CreatedAt:   fixedNow.Add(-48 * time.Hour),
	}
	rec, err := rec.WithPayload(censustest.ValidPayload(census.StepLocation))
	if err != nil {
		t.Fatal(err)
	}
	return rec
}

func TestRender(t *testing.T) {
	tests := []struct {
		name     string
		template string
		vars     Variables
		want     string
	}{
		{
			name:     "simple substitution",
			template: "Record: {{record}}, Step: {{step}}",
			vars:     Variables{Record: "rec-1", Step: "2/8 Household Roster"},
			want:     "Record: rec-1, Step: 2/8 Household Roster",
		},
		{
			name:     "all variables",
			template: "{{record}}|{{status}}|{{step}}|{{progress}}|{{summary}}|{{history}}|{{exported}}|{{user}}",
			vars: Variables{
				Record: "r", Status: "s", Step: "st", Progress: "p",
				Summary: "sum", History: "h", Exported: "e", User: "u",
			},
			want: "r|s|st|p|sum|h|e|u",
		},
		{
			name:     "empty values",
			template: "Record: {{record}}{{history}}{{user}}",
			vars:     Variables{Record: "test"},
			want:     "Record: test",
		},
		{
			name:     "unknown placeholders are kept",
			template: "{{record}} {{session}}",
			vars:     Variables{Record: "r"},
			want:     "r {{session}}",
		},
		{
			name:     "repeated placeholders",
			template: "{{record}}-{{record}}",
			vars:     Variables{Record: "x"},
			want:     "x-x",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Render(tt.template, tt.vars); got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGetTemplate(t *testing.T) {
	got, err := GetTemplate("")
	if err != nil {
		t.Fatalf("GetTemplate(\"\") error = %v", err)
	}
	if got != DefaultTemplate {
		t.Error("empty path should return the default template")
	}

	path := filepath.Join(t.TempDir(), "custom.md")
	if err := os.WriteFile(path, []byte("custom {{record}}"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err = GetTemplate(path)
	if err != nil {
		t.Fatalf("GetTemplate() error = %v", err)
	}
	if got != "custom {{record}}" {
		t.Errorf("got %q", got)
	}

	if _, err := GetTemplate(filepath.Join(t.TempDir(), "missing.md")); err == nil {
		t.Error("expected an error for a missing template")
	}
}

func TestBuild(t *testing.T) {
	events := []session.Event{
		{RecordID: "rec-1", Kind: wizard.EventStepSubmitted, Step: census.StepLocation, Timestamp: fixedNow.Add(-2 * time.Hour)},
		{RecordID: "rec-1", Kind: wizard.EventTracked, Timestamp: fixedNow.Add(-3 * time.Hour)},
		{RecordID: "rec-1", Kind: wizard.EventStepRejected, Step: census.StepRoster, Timestamp: fixedNow.Add(-time.Minute), Message: "add the head"},
	}

	out, err := Build(BuildConfig{Record: testRecord(t), History: events, User: "agent", Now: fixedNow})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	for _, want := range []string{
		"# Record rec-1",
		"## 1. Location Information",
		"## Activity",
		"Exported 2024-03-02T12:00:00Z by agent | IN_PROGRESS | 12%",
		"step_rejected step 2: add the head",
		"(1 minute ago)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("export missing %q\n\n%s", want, out)
		}
	}

	// Oldest first
	tracked := strings.Index(out, string(wizard.EventTracked))
	submitted := strings.Index(out, string(wizard.EventStepSubmitted))
	if tracked < 0 || submitted < 0 || tracked > submitted {
		t.Errorf("history should be oldest first:\n%s", out)
	}
}

func TestBuild_CustomTemplateAndNoHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.md")
	if err := os.WriteFile(path, []byte("{{record}}: {{history}}"), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := Build(BuildConfig{Record: testRecord(t), TemplatePath: path, Now: fixedNow})
	if err != nil {
		t.Fatal(err)
	}
	if out != "rec-1: No activity recorded." {
		t.Errorf("got %q", out)
	}

	if _, err := Build(BuildConfig{Record: testRecord(t), TemplatePath: path + ".missing"}); err == nil {
		t.Error("expected an error for a missing template")
	}
}

func TestFormatTimeAgo(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{-time.Second, "just now"},
		{30 * time.Second, "just now"},
		{time.Minute, "1 minute ago"},
		{5 * time.Minute, "5 minutes ago"},
		{time.Hour, "1 hour ago"},
		{3 * time.Hour, "3 hours ago"},
		{24 * time.Hour, "1 day ago"},
		{72 * time.Hour, "3 days ago"},
	}
	for _, tt := range tests {
		if got := formatTimeAgo(tt.d); got != tt.want {
			t.Errorf("formatTimeAgo(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
