package tui

import (
	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/mark3labs/census/internal/tui/theme"
)

// Spinner is a bubbles spinner that knows whether its tick chain is
// running, so callers can start it more than once without stacking ticks.
type Spinner struct {
	model  spinner.Model
	active bool
}

// NewSpinner builds a spinner in the theme's primary color.
func NewSpinner(frames spinner.Spinner) Spinner {
	color := lipgloss.Color(theme.Current().Primary)
	return Spinner{model: spinner.New(
		spinner.WithSpinner(frames),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(color)),
	)}
}

// NewSubmitSpinner is the spinner shown while a step is in flight.
func NewSubmitSpinner() Spinner {
	return NewSpinner(spinner.MiniDot)
}

// Start begins the tick chain. It returns nil when already running.
func (s *Spinner) Start() tea.Cmd {
	if s.active {
		return nil
	}
	s.active = true
	return s.model.Tick
}

// Stop ends the tick chain; the next tick message is dropped.
func (s *Spinner) Stop() {
	s.active = false
}

// Active reports whether the tick chain is running.
func (s *Spinner) Active() bool {
	return s.active
}

// Update advances the frame on tick messages while active.
func (s *Spinner) Update(msg tea.Msg) tea.Cmd {
	if !s.active {
		return nil
	}
	if _, ok := msg.(spinner.TickMsg); !ok {
		return nil
	}
	var cmd tea.Cmd
	s.model, cmd = s.model.Update(msg)
	return cmd
}

// View renders the current frame.
func (s *Spinner) View() string {
	return s.model.View()
}
