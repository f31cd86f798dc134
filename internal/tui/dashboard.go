package tui

import (
	"fmt"
	"time"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/mark3labs/census/internal/census"
	"github.com/mark3labs/census/internal/records"
	"github.com/mark3labs/census/internal/state"
	"github.com/mark3labs/census/internal/tui/theme"
)

type rowKind int

const (
	rowGroup rowKind = iota
	rowRecord
)

// listRow is one line of the list: a group header or a record.
type listRow struct {
	kind   rowKind
	bucket string
	title  string
	count  int
	record census.Record
}

// Dashboard lists records grouped by recency with search and a status
// filter.
type Dashboard struct {
	all       []census.Record
	rows      []listRow
	cursor    int
	offset    int
	search    textinput.Model
	searching bool
	prefs     *state.DashboardState
	now       func() time.Time
	width     int
	height    int
	focused   bool
}

// NewDashboard creates a list that reads and writes its filter and folded
// groups through prefs.
func NewDashboard(prefs *state.DashboardState, now func() time.Time) *Dashboard {
	th := theme.Current()
	input := textinput.New()
	input.Prompt = "/"
	input.Placeholder = "search by id"
	input.SetStyles(textinput.Styles{
		Focused: textinput.StyleState{
			Text:        lipgloss.NewStyle().Foreground(lipgloss.Color(th.FgBase)),
			Placeholder: lipgloss.NewStyle().Foreground(lipgloss.Color(th.FgMuted)),
			Prompt:      lipgloss.NewStyle().Foreground(lipgloss.Color(th.Tertiary)),
		},
		Blurred: textinput.StyleState{
			Text:        lipgloss.NewStyle().Foreground(lipgloss.Color(th.FgSubtle)),
			Placeholder: lipgloss.NewStyle().Foreground(lipgloss.Color(th.FgMuted)),
			Prompt:      lipgloss.NewStyle().Foreground(lipgloss.Color(th.FgMuted)),
		},
		Cursor: textinput.CursorStyle{
			Color: lipgloss.Color(th.Primary),
			Shape: tea.CursorBar,
			Blink: true,
		},
	})
	input.SetValue(prefs.Search)

	return &Dashboard{
		search:  input,
		prefs:   prefs,
		now:     now,
		focused: true,
	}
}

// SetRecords replaces the records and keeps the cursor on the same record
// when it is still listed.
func (d *Dashboard) SetRecords(recs []census.Record) {
	d.all = recs
	d.rebuild()
}

// rebuild recomputes the visible rows from the records and preferences.
func (d *Dashboard) rebuild() {
	prev, hadPrev := d.currentKey()

	filtered := records.Filter(d.all, d.prefs.Search, d.prefs.Status)
	groups := records.GroupByRecency(filtered, d.now())

	d.rows = d.rows[:0]
	for _, b := range groups.Buckets() {
		if len(b.Records) == 0 {
			continue
		}
		d.rows = append(d.rows, listRow{kind: rowGroup, bucket: b.Name, title: b.Title, count: len(b.Records)})
		if d.prefs.IsCollapsed(b.Name) {
			continue
		}
		for _, rec := range b.Records {
			d.rows = append(d.rows, listRow{kind: rowRecord, bucket: b.Name, record: rec})
		}
	}

	d.cursor = d.firstRecordRow()
	if hadPrev {
		for i, r := range d.rows {
			if rowKey(r) == prev {
				d.cursor = i
				break
			}
		}
	}
	d.clampOffset()
}

func rowKey(r listRow) string {
	if r.kind == rowRecord {
		return "record:" + r.record.ID
	}
	return "group:" + r.bucket
}

func (d *Dashboard) currentKey() (string, bool) {
	if d.cursor < 0 || d.cursor >= len(d.rows) {
		return "", false
	}
	return rowKey(d.rows[d.cursor]), true
}

func (d *Dashboard) firstRecordRow() int {
	for i, r := range d.rows {
		if r.kind == rowRecord {
			return i
		}
	}
	return 0
}

// Selected returns the record under the cursor.
func (d *Dashboard) Selected() (census.Record, bool) {
	if d.cursor < 0 || d.cursor >= len(d.rows) || d.rows[d.cursor].kind != rowRecord {
		return census.Record{}, false
	}
	return d.rows[d.cursor].record, true
}

// Select moves the cursor to the record with id. Returns false when the
// record is not visible.
func (d *Dashboard) Select(id string) bool {
	for i, r := range d.rows {
		if r.kind == rowRecord && r.record.ID == id {
			d.cursor = i
			d.clampOffset()
			return true
		}
	}
	return false
}

// Visible returns the records currently listed, in display order.
func (d *Dashboard) Visible() []census.Record {
	var out []census.Record
	for _, r := range d.rows {
		if r.kind == rowRecord {
			out = append(out, r.record)
		}
	}
	return out
}

// Searching reports whether the search input has focus.
func (d *Dashboard) Searching() bool {
	return d.searching
}

// SetFocus sets the keyboard focus.
func (d *Dashboard) SetFocus(focused bool) {
	d.focused = focused
}

// IsFocused reports whether the list has keyboard focus.
func (d *Dashboard) IsFocused() bool {
	return d.focused
}

// SetSize updates the list dimensions.
func (d *Dashboard) SetSize(width, height int) {
	d.width = width
	d.height = height
	d.search.SetWidth(width - 4)
	d.clampOffset()
}

// Update handles messages for the dashboard.
func (d *Dashboard) Update(msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyPressMsg)
	if !ok {
		if d.searching {
			var cmd tea.Cmd
			d.search, cmd = d.search.Update(msg)
			return cmd
		}
		return nil
	}

	if d.searching {
		return d.updateSearch(key)
	}

	before, _ := d.Selected()
	switch key.String() {
	case "up", "k":
		d.move(-1)
	case "down", "j":
		d.move(1)
	case "home", "g":
		d.cursor = 0
		d.clampOffset()
	case "end", "G":
		d.cursor = len(d.rows) - 1
		d.clampOffset()
	case "/":
		d.searching = true
		return d.search.Focus()
	case "f":
		d.cycleFilter()
	case "space":
		d.toggleGroup()
	case "enter":
		if d.cursor < len(d.rows) && d.rows[d.cursor].kind == rowGroup {
			d.toggleGroup()
			break
		}
		if rec, ok := d.Selected(); ok {
			return func() tea.Msg { return OpenRecordMsg{ID: rec.ID} }
		}
	default:
		return nil
	}
	return d.selectionChanged(before)
}

func (d *Dashboard) updateSearch(key tea.KeyPressMsg) tea.Cmd {
	before, _ := d.Selected()
	switch key.String() {
	case "enter":
		d.searching = false
		d.search.Blur()
		return nil
	case "esc":
		d.searching = false
		d.search.Blur()
		d.search.SetValue("")
	default:
		var cmd tea.Cmd
		d.search, cmd = d.search.Update(key)
		d.prefs.Search = d.search.Value()
		d.rebuild()
		return tea.Batch(cmd, d.selectionChanged(before))
	}
	d.prefs.Search = ""
	d.rebuild()
	return d.selectionChanged(before)
}

// selectionChanged emits RecordSelectedMsg when the cursor moved to a
// different record.
func (d *Dashboard) selectionChanged(before census.Record) tea.Cmd {
	after, ok := d.Selected()
	if !ok || after.ID == before.ID {
		return nil
	}
	return func() tea.Msg { return RecordSelectedMsg{ID: after.ID} }
}

func (d *Dashboard) move(delta int) {
	if len(d.rows) == 0 {
		return
	}
	d.cursor += delta
	if d.cursor < 0 {
		d.cursor = 0
	}
	if d.cursor >= len(d.rows) {
		d.cursor = len(d.rows) - 1
	}
	d.clampOffset()
}

// cycleFilter steps through all → active → complete.
func (d *Dashboard) cycleFilter() {
	switch d.prefs.Status {
	case records.StatusAll:
		d.prefs.Status = records.StatusActive
	case records.StatusActive:
		d.prefs.Status = records.StatusComplete
	default:
		d.prefs.Status = records.StatusAll
	}
	d.rebuild()
}

// toggleGroup folds or unfolds the group under the cursor and leaves the
// cursor on its header.
func (d *Dashboard) toggleGroup() {
	if d.cursor >= len(d.rows) {
		return
	}
	bucket := d.rows[d.cursor].bucket
	d.prefs.ToggleCollapsed(bucket)
	d.rebuild()
	for i, r := range d.rows {
		if r.kind == rowGroup && r.bucket == bucket {
			d.cursor = i
			break
		}
	}
	d.clampOffset()
}

// listHeight is the number of rows available below the search line.
func (d *Dashboard) listHeight() int {
	h := d.height - 2 // panel title + search line
	if h < 1 {
		h = 1
	}
	return h
}

func (d *Dashboard) clampOffset() {
	h := d.listHeight()
	if d.cursor < d.offset {
		d.offset = d.cursor
	}
	if d.cursor >= d.offset+h {
		d.offset = d.cursor - h + 1
	}
	if d.offset < 0 {
		d.offset = 0
	}
}

// Lines renders the search line and the visible rows.
func (d *Dashboard) Lines() []string {
	s := theme.Current().S()
	lines := []string{d.searchLine()}

	if len(d.rows) == 0 {
		msg := "No records yet. Press n to start one."
		if len(d.all) > 0 {
			msg = "No records match."
		}
		return append(lines, s.Dim.Render(msg))
	}

	end := d.offset + d.listHeight()
	if end > len(d.rows) {
		end = len(d.rows)
	}
	for i := d.offset; i < end; i++ {
		lines = append(lines, d.renderRow(d.rows[i], i == d.cursor))
	}
	return lines
}

func (d *Dashboard) searchLine() string {
	s := theme.Current().S()
	filter := s.Dim.Render("[" + string(d.prefs.Status) + "]")
	if d.searching || d.search.Value() != "" {
		return d.search.View() + " " + filter
	}
	return s.Dim.Render("/ search") + " " + filter
}

func (d *Dashboard) renderRow(r listRow, selected bool) string {
	s := theme.Current().S()
	if r.kind == rowGroup {
		arrow := "▾"
		if d.prefs.IsCollapsed(r.bucket) {
			arrow = "▸"
		}
		line := fmt.Sprintf("%s %s (%d)", arrow, r.title, r.count)
		if selected && d.focused {
			return s.ItemSelected.Render(line)
		}
		return s.GroupTitle.Render(line)
	}

	rec := r.record
	icon := s.Warning.Render("●")
	if rec.Completed() {
		icon = s.Success.Render("✓")
	}
	step := fmt.Sprintf("%d/%d", rec.CurrentStep, census.TotalSteps)
	if rec.Completed() {
		step = "done"
	}
	label := fmt.Sprintf("%-8s %-4s", shortID(rec.ID), step)
	if selected {
		label = s.ItemSelected.Render(label)
	} else {
		label = s.Item.Render(label)
	}
	frac := census.Progress(rec)
	if rec.Completed() {
		frac = 1
	}
	return "  " + icon + " " + label + " " + renderProgressBar(frac, 10)
}

// Draw renders the dashboard to a screen buffer.
func (d *Dashboard) Draw(scr uv.Screen, area uv.Rectangle) *tea.Cursor {
	title := fmt.Sprintf("Records (%d)", len(d.Visible()))
	inner := DrawPanel(scr, area, title, d.focused)
	DrawLines(scr, inner, d.Lines())
	return nil
}

// shortID trims long ids for the list.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
