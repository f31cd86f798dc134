package tui

import (
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/mark3labs/census/internal/tui/theme"
)

// toastDuration is how long a toast stays visible.
const toastDuration = 3 * time.Second

// ToastDismissMsg is sent when the toast should be dismissed.
type ToastDismissMsg struct {
	seq int
}

// ShowToastMsg is sent to show a toast notification.
type ShowToastMsg struct {
	Text string
}

// Toast is a minimal toast notification component.
// Shows a message in the bottom-right corner that auto-dismisses.
type Toast struct {
	message string
	visible bool
	seq     int
}

// NewToast creates a new Toast component.
func NewToast() *Toast {
	return &Toast{}
}

// Show displays a toast with the given message. A newer toast replaces the
// current one and restarts the timer.
func (t *Toast) Show(msg string) tea.Cmd {
	t.message = msg
	t.visible = true
	t.seq++
	seq := t.seq
	return tea.Tick(toastDuration, func(time.Time) tea.Msg {
		return ToastDismissMsg{seq: seq}
	})
}

// Update handles messages for the toast component.
func (t *Toast) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case ShowToastMsg:
		return t.Show(msg.Text)
	case ToastDismissMsg:
		// Ignore timers of toasts that were already replaced
		if msg.seq == t.seq {
			t.visible = false
			t.message = ""
		}
	}
	return nil
}

// Draw renders the toast in the bottom-right corner of area, one row above
// its last line.
func (t *Toast) Draw(scr uv.Screen, area uv.Rectangle) *tea.Cursor {
	if !t.visible || t.message == "" || area.Dy() < 2 {
		return nil
	}

	style := theme.Current().S().Toast
	content := style.Render(t.message)
	width := lipgloss.Width(content)
	if width > area.Dx()-2 {
		width = area.Dx() - 2
		content = style.Width(width).MaxHeight(1).Render(t.message)
	}

	rect := uv.Rect(area.Max.X-width-1, area.Max.Y-2, width, 1)
	uv.NewStyledString(content).Draw(scr, rect)
	return nil
}

// IsVisible returns whether the toast is currently visible.
func (t *Toast) IsVisible() bool {
	return t.visible
}

// GetMessage returns the current toast message (empty if not visible).
func (t *Toast) GetMessage() string {
	if !t.visible {
		return ""
	}
	return t.message
}
