// Package render turns census records into terminal output: markdown
// summaries, highlighted YAML and tables.
package render

import (
	"strings"

	"charm.land/glamour/v2"
)

// maxWidth caps rendered markdown for readability.
const maxWidth = 120

// Markdown renders markdown content using glamour.
// Falls back to plain text wrapping if rendering fails.
func Markdown(content string, width int) string {
	if width <= 0 || width > maxWidth {
		width = maxWidth
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return wrapText(content, width)
	}

	rendered, err := r.Render(content)
	if err != nil {
		return wrapText(content, width)
	}

	// Remove trailing newline that glamour adds
	return strings.TrimSuffix(rendered, "\n")
}

// wrapText wraps each line at width on word boundaries.
func wrapText(content string, width int) string {
	var out []string
	for _, line := range strings.Split(content, "\n") {
		words := strings.Fields(line)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		cur := words[0]
		for _, w := range words[1:] {
			if len(cur)+1+len(w) > width {
				out = append(out, cur)
				cur = w
				continue
			}
			cur += " " + w
		}
		out = append(out, cur)
	}
	return strings.Join(out, "\n")
}
