package tui

import (
	"github.com/mark3labs/census/internal/tui/theme"
)

// Standard key representations for consistent hints across the app.
const (
	KeyUpDownJK    = "↑↓/jk"
	KeyLeftRightHL = "←→/hl"
	KeyEnter       = "enter"
	KeySpace       = "space"
	KeyEsc         = "esc"
	KeyTab         = "tab"
	KeySlash       = "/"
	KeyCtrlC       = "ctrl+c"
)

// RenderHint renders a single key-description pair.
// Example: RenderHint("enter", "select") -> "enter select"
func RenderHint(key, desc string) string {
	s := theme.Current().S()
	return s.HintKey.Render(key) + " " + s.HintDesc.Render(desc)
}

// RenderHintBar renders a hint bar with multiple key-description pairs.
// Pairs are separated by " . ".
// Example: RenderHintBar("up/down", "scroll", "enter", "select", "esc", "back")
// Returns: "up/down scroll . enter select . esc back"
func RenderHintBar(pairs ...string) string {
	if len(pairs) == 0 || len(pairs)%2 != 0 {
		return ""
	}

	s := theme.Current().S()
	var result string
	for i := 0; i < len(pairs); i += 2 {
		if i > 0 {
			result += " " + s.HintSeparator.Render(".") + " "
		}
		result += s.HintKey.Render(pairs[i]) + " " + s.HintDesc.Render(pairs[i+1])
	}
	return result
}

// HintList returns hints for the record list.
func HintList() string {
	return RenderHintBar(KeyUpDownJK, "move", KeyEnter, "open", KeySlash, "search", "f", "filter", KeySpace, "fold", "n", "new", "q", "quit")
}

// HintSearch returns hints while typing a search term.
func HintSearch() string {
	return RenderHintBar(KeyEnter, "apply", KeyEsc, "clear")
}

// HintDetail returns hints for the record detail.
func HintDetail() string {
	return RenderHintBar(KeyLeftRightHL, "step", "e", "edit", "s", "submit", "m", "summary", KeyEsc, "back")
}
