package tui

import (
	"errors"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/mark3labs/census/internal/census"
	"github.com/mark3labs/census/internal/render"
	"github.com/mark3labs/census/internal/tui/theme"
	"github.com/mark3labs/census/internal/wizard"
)

// StepState is how a step shows in the step tracker.
type StepState int

const (
	StepPending StepState = iota
	StepActive
	StepComplete
)

// StepStateOf derives a step's state from the record's step counter.
func StepStateOf(rec census.Record, step census.Step) StepState {
	switch {
	case rec.Completed() || step < rec.CurrentStep:
		return StepComplete
	case step == rec.CurrentStep:
		return StepActive
	default:
		return StepPending
	}
}

// PayloadSource returns the payload held locally for a step.
type PayloadSource func(id string, step census.Step) (census.Payload, error)

// Detail shows one record: the step tracker, then either the selected
// step's payload or the whole-record summary.
type Detail struct {
	viewport viewport.Model
	snap     wizard.Snapshot
	has      bool
	cursor   census.Step
	summary  bool
	source   PayloadSource
	width    int
	height   int
	focused  bool
}

// NewDetail creates an empty detail panel.
func NewDetail(source PayloadSource) *Detail {
	return &Detail{
		viewport: viewport.New(),
		source:   source,
	}
}

// SetSnapshot shows a record. The step cursor moves to the record's
// current step when a different record is shown or the record advanced.
func (d *Detail) SetSnapshot(snap wizard.Snapshot) {
	prev := d.snap
	d.snap = snap
	if !d.has || prev.Record.ID != snap.Record.ID || prev.Record.CurrentStep != snap.Record.CurrentStep {
		d.cursor = snap.Record.CurrentStep
		d.summary = snap.Record.Completed()
		d.viewport.GotoTop()
	}
	d.has = true
	d.refresh()
}

// Clear removes the record.
func (d *Detail) Clear() {
	d.snap = wizard.Snapshot{}
	d.has = false
	d.viewport.SetContent("")
}

// RecordID returns the shown record's id, or "" when empty.
func (d *Detail) RecordID() string {
	if !d.has {
		return ""
	}
	return d.snap.Record.ID
}

// Snapshot returns the shown record state.
func (d *Detail) Snapshot() (wizard.Snapshot, bool) {
	return d.snap, d.has
}

// Cursor returns the step the tracker cursor is on.
func (d *Detail) Cursor() census.Step {
	return d.cursor
}

// SetFocus sets the keyboard focus.
func (d *Detail) SetFocus(focused bool) {
	d.focused = focused
}

// IsFocused reports whether the detail has keyboard focus.
func (d *Detail) IsFocused() bool {
	return d.focused
}

// SetSize updates the component dimensions.
func (d *Detail) SetSize(width, height int) {
	d.width = width
	d.height = height
	// Panel title + tracker + blank line
	h := height - 3
	if h < 1 {
		h = 1
	}
	d.viewport.SetWidth(width - 1)
	d.viewport.SetHeight(h)
	d.refresh()
}

// Update handles messages for the detail panel.
func (d *Detail) Update(msg tea.Msg) tea.Cmd {
	if !d.has {
		return nil
	}
	if key, ok := msg.(tea.KeyPressMsg); ok {
		switch key.String() {
		case "left", "h":
			d.moveCursor(-1)
			return nil
		case "right", "l":
			d.moveCursor(1)
			return nil
		case "m":
			d.summary = !d.summary
			d.viewport.GotoTop()
			d.refresh()
			return nil
		}
	}
	var cmd tea.Cmd
	d.viewport, cmd = d.viewport.Update(msg)
	return cmd
}

// moveCursor steps through the steps the record has reached.
func (d *Detail) moveCursor(delta int) {
	next := d.cursor + census.Step(delta)
	if next < census.StepLocation || next > d.snap.Record.CurrentStep {
		return
	}
	d.cursor = next
	d.summary = false
	d.viewport.GotoTop()
	d.refresh()
}

// Tracker renders the step tracker line.
func (d *Detail) Tracker() string {
	s := theme.Current().S()
	parts := make([]string, 0, census.TotalSteps)
	for _, step := range census.AllSteps() {
		var label string
		switch StepStateOf(d.snap.Record, step) {
		case StepComplete:
			label = s.StepComplete.Render(fmt.Sprintf("✓%d", step))
		case StepActive:
			label = s.StepActive.Render(fmt.Sprintf("●%d", step))
		default:
			label = s.StepPending.Render(fmt.Sprintf("○%d", step))
		}
		if step == d.cursor && !d.summary {
			label = s.StepCursor.Render("[") + label + s.StepCursor.Render("]")
		} else {
			label = " " + label + " "
		}
		parts = append(parts, label)
	}
	return strings.Join(parts, "")
}

// refresh rebuilds the viewport content.
func (d *Detail) refresh() {
	if !d.has {
		return
	}
	if d.summary {
		d.viewport.SetContent(render.Markdown(render.Summary(d.snap.Record), d.viewport.Width()))
		return
	}
	d.viewport.SetContent(d.stepContent())
}

// stepContent renders the step under the cursor.
func (d *Detail) stepContent() string {
	s := theme.Current().S()
	step := d.cursor
	rec := d.snap.Record

	var b strings.Builder
	b.WriteString(s.GroupTitle.Render(fmt.Sprintf("Step %d: %s", step, step.Title())))
	b.WriteString("\n")
	b.WriteString(s.Dim.Render(step.Info().Description))
	b.WriteString("\n\n")

	switch {
	case rec.Completed():
		b.WriteString(s.Success.Render("Record completed"))
	case d.snap.State == wizard.StateSubmitting && step == rec.CurrentStep:
		b.WriteString(s.Warning.Render("Submitting..."))
	case StepStateOf(rec, step) == StepComplete:
		b.WriteString(s.Success.Render("Submitted"))
	default:
		b.WriteString(s.Dim.Render("Not yet submitted"))
	}
	b.WriteString("\n")

	if msg := d.errorText(); msg != "" {
		b.WriteString("\n")
		b.WriteString(msg)
	}

	if d.source != nil {
		p, err := d.source(rec.ID, step)
		switch {
		case err != nil:
			b.WriteString("\n" + s.Error.Render(err.Error()) + "\n")
		default:
			doc, err := render.PayloadYAML(p)
			if err != nil {
				b.WriteString("\n" + s.Error.Render(err.Error()) + "\n")
				break
			}
			b.WriteString("\n")
			b.WriteString(render.Highlight(doc, "payload.yaml"))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// errorText renders the failure attached to the step under the cursor.
func (d *Detail) errorText() string {
	s := theme.Current().S()
	if d.snap.ErrorStep != d.cursor {
		return ""
	}

	// Field errors leave the record idle; transport failures move it to
	// the error state.
	var b strings.Builder
	if !d.snap.Errors.Empty() {
		b.WriteString(s.Error.Render("Please fix the following:"))
		b.WriteString("\n")
		for _, key := range d.snap.Errors.Keys() {
			b.WriteString(s.ErrorDetail.Render(fmt.Sprintf("  %s: %s", key, d.snap.Errors[key])))
			b.WriteString("\n")
		}
		return b.String()
	}

	if d.snap.State != wizard.StateError {
		return ""
	}
	var transport *wizard.TransportError
	switch {
	case errors.As(d.snap.Err, &transport):
		b.WriteString(s.Error.Render(transport.Message()))
		b.WriteString("\n")
		b.WriteString(s.Dim.Render("Press s to retry."))
	case d.snap.Err != nil:
		b.WriteString(s.Error.Render(d.snap.Err.Error()))
	}
	b.WriteString("\n")
	return b.String()
}

// Draw renders the detail panel to a screen buffer.
func (d *Detail) Draw(scr uv.Screen, area uv.Rectangle) *tea.Cursor {
	title := "Record"
	if d.has {
		title = "Record " + shortID(d.snap.Record.ID)
	}
	inner := DrawPanel(scr, area, title, d.focused)
	if !d.has {
		DrawLines(scr, inner, []string{theme.Current().S().Dim.Render("Select a record to see its steps.")})
		return nil
	}
	if inner.Dy() < 1 {
		return nil
	}

	DrawLines(scr, uv.Rect(inner.Min.X, inner.Min.Y, inner.Dx(), 1), []string{d.Tracker()})
	body := uv.Rect(inner.Min.X+1, inner.Min.Y+2, inner.Dx()-1, inner.Dy()-2)
	uv.NewStyledString(d.viewport.View()).Draw(scr, body)
	return nil
}
