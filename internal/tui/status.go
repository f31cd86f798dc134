package tui

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/mark3labs/census/internal/census"
	"github.com/mark3labs/census/internal/render"
	"github.com/mark3labs/census/internal/tui/theme"
)

// StatusBar shows the signed-in enumerator and the active record (left)
// and submission activity (right).
type StatusBar struct {
	width      int
	height     int
	user       string
	record     *census.Record
	submitting bool
	message    string
	layoutMode LayoutMode
	spinner    Spinner
}

// NewStatusBar creates a new StatusBar component.
func NewStatusBar(user string) *StatusBar {
	return &StatusBar{
		user:    user,
		spinner: NewSubmitSpinner(),
	}
}

// Draw renders the status bar to the screen.
// Format: census | user | record 3/8 Household Unit     [spinner] submitting
func (s *StatusBar) Draw(scr uv.Screen, area uv.Rectangle) *tea.Cursor {
	if area.Dx() <= 0 || area.Dy() <= 0 {
		return nil
	}

	left := s.buildLeft()
	right := s.buildRight()

	totalWidth := area.Dx() - 2 // Account for padding
	padding := totalWidth - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}

	DrawStyled(scr, area, theme.Current().S().StatusBar, left+strings.Repeat(" ", padding)+right)
	return nil
}

// buildLeft builds the left side of the status bar.
func (s *StatusBar) buildLeft() string {
	st := theme.Current().S()
	sep := st.HeaderSeparator.Render(" | ")

	user := s.user
	if user == "" {
		user = "signed out"
	}
	left := st.HeaderTitle.Render("census") + sep + st.HeaderInfo.Render(user)

	if s.record != nil {
		info := fmt.Sprintf("%s %s", shortID(s.record.ID), render.StepLabel(*s.record))
		left += sep + st.HeaderInfo.Render(info)
	}
	return left
}

// buildRight builds the right side of the status bar.
func (s *StatusBar) buildRight() string {
	st := theme.Current().S()
	if s.submitting {
		label := "submitting"
		if s.layoutMode == LayoutCompact {
			label = ""
		}
		return strings.TrimSpace(s.spinner.View() + " " + label)
	}
	if s.message != "" {
		return st.Dim.Render(s.message)
	}
	return ""
}

// SetSize updates the component dimensions.
func (s *StatusBar) SetSize(width, height int) {
	s.width = width
	s.height = height
}

// SetUser updates the signed-in user name.
func (s *StatusBar) SetUser(user string) {
	s.user = user
}

// SetRecord sets the record shown on the left. nil clears it.
func (s *StatusBar) SetRecord(rec *census.Record) {
	s.record = rec
}

// SetMessage sets the idle text on the right.
func (s *StatusBar) SetMessage(msg string) {
	s.message = msg
}

// SetSubmitting turns the spinner on or off.
func (s *StatusBar) SetSubmitting(submitting bool) {
	s.submitting = submitting
	if !submitting {
		s.spinner.Stop()
	}
}

// Submitting reports whether the spinner is running.
func (s *StatusBar) Submitting() bool {
	return s.submitting
}

// SetLayoutMode updates the layout mode (desktop/compact).
func (s *StatusBar) SetLayoutMode(mode LayoutMode) {
	s.layoutMode = mode
}

// Update handles messages and spinner animation.
func (s *StatusBar) Update(msg tea.Msg) tea.Cmd {
	if !s.submitting {
		return nil
	}
	if !s.spinner.Active() {
		return s.spinner.Start()
	}
	return s.spinner.Update(msg)
}
