package render

import (
	"bytes"
	"regexp"
	"strings"

	chroma "github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// trailingBreaks matches the newlines at the end of formatter output
// together with the color codes wrapped around them.
var trailingBreaks = regexp.MustCompile(`(?:\x1b\[[0-9;]*m|\n)+$`)

const sgrReset = "\x1b[0m"

// Highlight applies syntax highlighting to source code and returns a string
// with ANSI color codes for terminal display.
//
// The lexer is picked from fileName, then from the content, then falls back
// to plain text. Returns source unchanged when formatting fails.
func Highlight(source, fileName string) string {
	lexer := lexers.Match(fileName)
	if lexer == nil {
		lexer = lexers.Analyse(source)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	formatter := formatters.Get("terminal16m")
	if formatter == nil {
		formatter = formatters.Get("terminal256")
	}
	if formatter == nil {
		return source
	}

	style := styles.Get("monokai")
	if style == nil {
		style = styles.Fallback
	}

	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return source
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return source
	}
	out := buf.String()
	tail := trailingBreaks.FindString(out)
	if !strings.Contains(tail, "\n") {
		return out
	}
	out = strings.TrimSuffix(out, tail)
	if strings.Contains(tail, "\x1b") {
		out += sgrReset
	}
	return out
}
