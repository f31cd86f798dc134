package testfixtures

import (
	"strings"
	"testing"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/colorprofile"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/charmbracelet/x/ansi"
)

// Initialize test environment
func init() {
	// Set Ascii profile to disable color output for consistent output across CI/platforms
	lipgloss.Writer.Profile = colorprofile.Ascii
}

// Canonical terminal size for all tests
const (
	TestTermWidth  = 120
	TestTermHeight = 40
)

// Conservative timeout for waiting on commands (CI compatibility)
const (
	DefaultWaitDuration  = 5 * time.Second
	DefaultCheckInterval = 100 * time.Millisecond
)

// PlainText strips ANSI sequences and trailing spaces from every line.
// Screen buffers end lines with CRLF; the result uses LF.
func PlainText(s string) string {
	s = strings.ReplaceAll(ansi.Strip(s), "\r\n", "\n")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}

// Rendered draws into a canonical-size screen buffer and returns the
// plain text.
func Rendered(draw func(scr uv.Screen, area uv.Rectangle)) string {
	return RenderedSize(TestTermWidth, TestTermHeight, draw)
}

// RenderedSize draws into a width x height screen buffer and returns the
// plain text.
func RenderedSize(width, height int, draw func(scr uv.Screen, area uv.Rectangle)) string {
	canvas := uv.NewScreenBuffer(width, height)
	draw(canvas, canvas.Bounds())
	return PlainText(canvas.Render())
}

// AssertContains fails the test when any of the substrings is missing.
func AssertContains(t *testing.T, s string, substrs ...string) {
	t.Helper()
	for _, sub := range substrs {
		if !strings.Contains(s, sub) {
			t.Errorf("expected output to contain %q\n\nOutput:\n%s", sub, s)
		}
	}
}

// AssertNotContains fails the test when any of the substrings is present.
func AssertNotContains(t *testing.T, s string, substrs ...string) {
	t.Helper()
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			t.Errorf("expected output not to contain %q\n\nOutput:\n%s", sub, s)
		}
	}
}
