package tui

import (
	"context"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/mark3labs/census/internal/census"
	"github.com/mark3labs/census/internal/logger"
	"github.com/mark3labs/census/internal/records"
	"github.com/mark3labs/census/internal/state"
	"github.com/mark3labs/census/internal/tui/theme"
	"github.com/mark3labs/census/internal/wizard"
)

// focusTarget is the panel that receives keys.
type focusTarget int

const (
	focusList focusTarget = iota
	focusDetail
)

// AppOption configures an App.
type AppOption func(*App)

// WithEditor replaces the external editor command.
func WithEditor(fn EditorFunc) AppOption {
	return func(a *App) { a.editor = fn }
}

// WithClock replaces the clock used to group records.
func WithClock(now func() time.Time) AppOption {
	return func(a *App) { a.now = now }
}

// App is the main Bubbletea model: the record list next to the detail of
// the selected record.
type App struct {
	// View components
	dashboard *Dashboard
	detail    *Detail
	status    *StatusBar
	toast     *Toast

	// Layout management
	layout      Layout
	layoutDirty bool

	// State
	records  *records.Controller
	wizard   *wizard.Controller
	ui       *state.UIState
	focus    focusTarget
	inFlight int  // Submissions waiting for the service
	restored bool // Whether the last selected record was restored
	editor   EditorFunc
	now      func() time.Time
	dataDir  string
	ctx      context.Context
	width    int
	height   int
	quitting bool
}

// NewApp creates the TUI for an enumerator. UI preferences are loaded
// from dataDir.
func NewApp(ctx context.Context, recs *records.Controller, wiz *wizard.Controller, user, dataDir string, opts ...AppOption) *App {
	ui := state.Load(dataDir)
	a := &App{
		records:     recs,
		wizard:      wiz,
		ui:          ui,
		editor:      defaultEditor,
		now:         time.Now,
		dataDir:     dataDir,
		ctx:         ctx,
		status:      NewStatusBar(user),
		toast:       NewToast(),
		layoutDirty: true, // Calculate layout on first render
	}
	for _, opt := range opts {
		opt(a)
	}
	a.dashboard = NewDashboard(&a.ui.Dashboard, a.now)
	a.detail = NewDetail(wiz.Payload)
	return a
}

// Init loads the record list.
func (a *App) Init() tea.Cmd {
	return a.loadRecords()
}

// Update handles incoming messages and updates the model state.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		return a, a.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.layout = CalculateLayout(a.width, a.height)
		a.propagateSizes()
		a.layoutDirty = false
		return a, nil

	case RecordsLoadedMsg:
		if msg.Err != nil {
			logger.Warn("loading records: %v", msg.Err)
			return a, a.toast.Show("Could not load records: " + msg.Err.Error())
		}
		a.dashboard.SetRecords(msg.Records)
		if !a.restored {
			a.restored = true
			if id := a.ui.Dashboard.LastRecord; id != "" && a.dashboard.Select(id) {
				return a, a.showRecord(id)
			}
		}
		if rec, ok := a.dashboard.Selected(); ok {
			return a, a.showRecord(rec.ID)
		}
		a.detail.Clear()
		a.status.SetRecord(nil)
		return a, nil

	case RecordCreatedMsg:
		if msg.Err != nil {
			return a, a.toast.Show("Could not create a record: " + msg.Err.Error())
		}
		a.dashboard.SetRecords(a.records.All())
		a.dashboard.Select(msg.Record.ID)
		cmd := a.showRecord(msg.Record.ID)
		a.setFocus(focusDetail)
		return a, tea.Batch(cmd, a.toast.Show("Record "+shortID(msg.Record.ID)+" created"))

	case RecordSelectedMsg:
		return a, a.showRecord(msg.ID)

	case OpenRecordMsg:
		cmd := a.showRecord(msg.ID)
		a.setFocus(focusDetail)
		return a, cmd

	case StepSubmittedMsg:
		return a, a.handleSubmitted(msg)

	case EditorFinishedMsg:
		if err := applyEdit(a.wizard, msg); err != nil {
			a.refreshDetail()
			return a, a.toast.Show("Edit not applied: " + err.Error())
		}
		a.refreshDetail()
		return a, a.toast.Show("Step updated. Press s to submit.")

	case ShowToastMsg, ToastDismissMsg:
		return a, a.toast.Update(msg)
	}

	// Spinner ticks and anything else go to the components
	var cmds []tea.Cmd
	cmds = append(cmds, a.status.Update(msg))
	cmds = append(cmds, a.focusedPane().Update(msg))
	return a, tea.Batch(cmds...)
}

// handleKeyPress routes keys: global keys first, then the focused panel.
func (a *App) handleKeyPress(msg tea.KeyPressMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		return a.quit()
	}

	// While typing a search term every key belongs to the input
	if a.focus == focusList && a.dashboard.Searching() {
		return a.dashboard.Update(msg)
	}

	switch msg.String() {
	case "q":
		return a.quit()
	case "tab":
		if a.focus == focusList && a.detail.RecordID() != "" {
			a.setFocus(focusDetail)
		} else {
			a.setFocus(focusList)
		}
		return nil
	case "esc":
		if a.focus == focusDetail {
			a.setFocus(focusList)
			return nil
		}
	case "n":
		return a.createRecord()
	case "r":
		return a.loadRecords()
	case "e":
		if id := a.detail.RecordID(); id != "" {
			return editStep(a.wizard, id, a.detail.Cursor(), a.editor)
		}
		return nil
	case "s":
		return a.submit()
	}

	switch a.focus {
	case focusDetail:
		return a.detail.Update(msg)
	default:
		return a.dashboard.Update(msg)
	}
}

// submit sends the step under the detail cursor.
func (a *App) submit() tea.Cmd {
	snap, ok := a.detail.Snapshot()
	if !ok {
		return nil
	}
	if snap.Record.Completed() {
		return a.toast.Show("Record is already completed")
	}
	if snap.State == wizard.StateSubmitting {
		return a.toast.Show("Already submitting")
	}

	step := a.detail.Cursor()
	a.inFlight++
	a.status.SetSubmitting(true)
	cmd := submitStep(a.ctx, a.wizard, snap.Record.ID, step)
	a.refreshDetail()
	return tea.Batch(cmd, a.status.Update(nil))
}

// handleSubmitted applies a submission outcome.
func (a *App) handleSubmitted(msg StepSubmittedMsg) tea.Cmd {
	if a.inFlight > 0 {
		a.inFlight--
	}
	if a.inFlight == 0 {
		a.status.SetSubmitting(false)
	}

	if msg.Err == nil {
		a.records.Upsert(msg.Result.Record)
		a.dashboard.SetRecords(a.records.All())
		if msg.Result.Diff != "" {
			logger.Debug("service normalized step %d of %s:\n%s", msg.Step, msg.RecordID, msg.Result.Diff)
		}
	} else {
		logger.Warn("submitting step %d of %s: %v", msg.Step, msg.RecordID, msg.Err)
	}

	if a.detail.RecordID() == msg.RecordID {
		a.refreshDetail()
	}
	return a.toast.Show(submitMessage(msg))
}

// showRecord tracks a record in the wizard when needed and shows it.
func (a *App) showRecord(id string) tea.Cmd {
	if _, err := a.wizard.Snapshot(id); err != nil {
		rec, err := a.records.Get(id)
		if err != nil {
			return a.toast.Show(err.Error())
		}
		if err := a.wizard.Track(a.ctx, rec); err != nil {
			return a.toast.Show(err.Error())
		}
	}
	if err := a.records.Select(id); err != nil {
		logger.Debug("selecting %s: %v", id, err)
	}
	a.refreshDetail(id)
	return nil
}

// refreshDetail re-reads the shown record from the wizard. An id argument
// switches the detail to that record.
func (a *App) refreshDetail(id ...string) {
	target := a.detail.RecordID()
	if len(id) > 0 {
		target = id[0]
	}
	if target == "" {
		return
	}
	snap, err := a.wizard.Snapshot(target)
	if err != nil {
		a.detail.Clear()
		a.status.SetRecord(nil)
		return
	}
	a.detail.SetSnapshot(snap)
	rec := snap.Record
	a.status.SetRecord(&rec)
	a.ui.Dashboard.LastRecord = target
}

func (a *App) setFocus(f focusTarget) {
	a.focus = f
	a.dashboard.SetFocus(f == focusList)
	a.detail.SetFocus(f == focusDetail)
}

func (a *App) focusedPane() Pane {
	if a.focus == focusDetail {
		return a.detail
	}
	return a.dashboard
}

// loadRecords lists records from the service.
func (a *App) loadRecords() tea.Cmd {
	ctx, recs := a.ctx, a.records
	return func() tea.Msg {
		list, err := recs.Load(ctx)
		return RecordsLoadedMsg{Records: list, Err: err}
	}
}

// createRecord starts a new record on the service.
func (a *App) createRecord() tea.Cmd {
	ctx, recs := a.ctx, a.records
	return func() tea.Msg {
		rec, err := recs.Create(ctx)
		return RecordCreatedMsg{Record: rec, Err: err}
	}
}

func (a *App) quit() tea.Cmd {
	a.quitting = true
	a.saveUIState()
	return tea.Quit
}

// saveUIState persists the current UI state to disk.
func (a *App) saveUIState() {
	if err := state.Save(a.dataDir, a.ui); err != nil {
		logger.Warn("failed to save UI state: %v", err)
	}
}

// View renders the current view. In Bubbletea v2, this returns tea.View
// with display options like AltScreen.
func (a *App) View() tea.View {
	var view tea.View
	view.AltScreen = true

	if a.quitting {
		view.AltScreen = false
		view.Content = lipgloss.NewLayer("")
		return view
	}

	if a.layoutDirty {
		a.layout = CalculateLayout(a.width, a.height)
		a.propagateSizes()
		a.layoutDirty = false
	}

	canvas := uv.NewScreenBuffer(a.width, a.height)
	view.Cursor = a.Draw(canvas, canvas.Bounds())
	view.Content = lipgloss.NewLayer(canvas.Render())

	// Set global background color for the entire terminal
	view.BackgroundColor = theme.HexToColor(theme.Current().BgCrust)
	return view
}

// Draw renders all components to the screen buffer.
func (a *App) Draw(scr uv.Screen, area uv.Rectangle) *tea.Cursor {
	if a.layout.IsCompact() {
		if a.focus == focusDetail {
			a.detail.Draw(scr, a.layout.Content)
		} else {
			a.dashboard.Draw(scr, a.layout.Content)
		}
	} else {
		a.dashboard.Draw(scr, a.layout.List)
		a.detail.Draw(scr, a.layout.Detail)
	}

	a.status.Draw(scr, a.layout.Status)
	DrawLines(scr, a.layout.Footer, []string{" " + a.hints()})

	// Draw toast last so it appears on top of everything
	a.toast.Draw(scr, a.layout.Content)
	return nil
}

// hints returns the footer hints for the focused panel.
func (a *App) hints() string {
	switch {
	case a.focus == focusList && a.dashboard.Searching():
		return HintSearch()
	case a.focus == focusDetail:
		return HintDetail()
	default:
		return HintList()
	}
}

// propagateSizes updates component sizes based on the current layout.
func (a *App) propagateSizes() {
	a.status.SetLayoutMode(a.layout.Mode)
	for _, c := range []struct {
		s    Sizable
		area uv.Rectangle
	}{
		{a.status, a.layout.Status},
		{a.dashboard, a.layout.List},
		{a.detail, a.layout.Detail},
	} {
		c.s.SetSize(c.area.Dx(), c.area.Dy())
	}
}

// Selected returns the record under the list cursor.
func (a *App) Selected() (census.Record, bool) {
	return a.dashboard.Selected()
}
