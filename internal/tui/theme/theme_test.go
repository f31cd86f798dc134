package theme

import (
	"testing"

	"github.com/charmbracelet/x/ansi"
)

func TestCatppuccinMocha(t *testing.T) {
	th := NewCatppuccinMocha()
	if !th.IsDark {
		t.Error("mocha is a dark theme")
	}
	for name, hex := range map[string]string{
		"Primary": th.Primary,
		"BgCrust": th.BgCrust,
		"FgBase":  th.FgBase,
		"Success": th.Success,
		"Error":   th.Error,
	} {
		if len(hex) != 7 || hex[0] != '#' {
			t.Errorf("%s = %q, want #RRGGBB", name, hex)
		}
	}
	if th.S() != th.S() {
		t.Error("styles should be built once")
	}
}

func TestSetCurrent(t *testing.T) {
	orig := Current()
	t.Cleanup(func() { SetCurrent(orig) })

	custom := NewCatppuccinMocha()
	custom.Primary = "#000000"
	SetCurrent(custom)
	if Current().Primary != "#000000" {
		t.Error("SetCurrent did not replace the theme")
	}
}

func TestInterpolateColor(t *testing.T) {
	tests := []struct {
		a, b string
		pos  float64
		want string
	}{
		{"#000000", "#ffffff", 0, "#000000"},
		{"#000000", "#ffffff", 1, "#ffffff"},
		{"#000000", "#646464", 0.5, "#323232"},
		{"#cba6f7", "#a6e3a1", 0, "#cba6f7"},
	}
	for _, tt := range tests {
		if got := InterpolateColor(tt.a, tt.b, tt.pos); got != tt.want {
			t.Errorf("InterpolateColor(%s, %s, %v) = %s, want %s", tt.a, tt.b, tt.pos, got, tt.want)
		}
	}
}

func TestParseHexColor(t *testing.T) {
	r, g, b := ParseHexColor("#a6e3a1")
	if r != 0xa6 || g != 0xe3 || b != 0xa1 {
		t.Errorf("got %d %d %d", r, g, b)
	}
	r, g, b = ParseHexColor("bad")
	if r != 0 || g != 0 || b != 0 {
		t.Error("malformed colors parse as black")
	}
}

func TestGradient(t *testing.T) {
	th := NewCatppuccinMocha()
	for _, text := range []string{"census", "c", ""} {
		if got := ansi.Strip(Gradient(text, th.Primary, th.Secondary)); got != text {
			t.Errorf("Gradient(%q) renders %q", text, got)
		}
	}
}
