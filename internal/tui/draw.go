package tui

import (
	"strings"

	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/charmbracelet/x/ansi"

	"github.com/mark3labs/census/internal/tui/theme"
)

// DrawText renders plain text at a position
func DrawText(scr uv.Screen, area uv.Rectangle, text string) {
	uv.NewStyledString(text).Draw(scr, area)
}

// DrawStyled renders lipgloss-styled content at a position
func DrawStyled(scr uv.Screen, area uv.Rectangle, style lipgloss.Style, text string) {
	content := style.Width(area.Dx()).Height(area.Dy()).Render(text)
	uv.NewStyledString(content).Draw(scr, area)
}

// DrawLines renders one string per row, truncated to the area width.
func DrawLines(scr uv.Screen, area uv.Rectangle, lines []string) {
	for i, line := range lines {
		if i >= area.Dy() {
			return
		}
		row := uv.Rect(area.Min.X, area.Min.Y+i, area.Dx(), 1)
		uv.NewStyledString(ansi.Truncate(line, area.Dx(), "…")).Draw(scr, row)
	}
}

// DrawPanel renders a panel with a title header and returns the inner content area.
// The header shows "Title ────────" with a trailing rule line.
// Focus is indicated by the header color.
func DrawPanel(scr uv.Screen, area uv.Rectangle, title string, focused bool) uv.Rectangle {
	headerHeight := 0

	if title != "" && area.Dy() > 0 {
		headerHeight = 1
		s := theme.Current().S()
		titleStyle, ruleStyle := s.PanelTitle, s.PanelRule
		if focused {
			titleStyle, ruleStyle = s.PanelTitleFocused, s.PanelRuleFocused
		}

		styledTitle := titleStyle.Render(title)
		ruleWidth := area.Dx() - lipgloss.Width(styledTitle) - 1 // -1 for space
		if ruleWidth < 0 {
			ruleWidth = 0
		}
		headerText := styledTitle + " " + ruleStyle.Render(strings.Repeat("─", ruleWidth))
		uv.NewStyledString(headerText).Draw(scr, uv.Rect(area.Min.X, area.Min.Y, area.Dx(), 1))
	}

	innerHeight := area.Dy() - headerHeight
	if innerHeight < 0 {
		innerHeight = 0
	}
	return uv.Rect(area.Min.X, area.Min.Y+headerHeight, area.Dx(), innerHeight)
}

// renderProgressBar draws a bar of width cells for frac in [0,1]. The
// filled part blends from the primary color to the success color.
func renderProgressBar(frac float64, width int) string {
	if width <= 0 {
		return ""
	}
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	th := theme.Current()
	filled := int(frac*float64(width) + 0.5)

	var b strings.Builder
	for i := 0; i < filled; i++ {
		pos := 0.0
		if width > 1 {
			pos = float64(i) / float64(width-1)
		}
		c := theme.InterpolateColor(th.Primary, th.Success, pos)
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(c)).Render("█"))
	}
	b.WriteString(th.S().ProgressEmpty.Render(strings.Repeat("░", width-filled)))
	return b.String()
}
