package tui

import (
	"testing"
)

// TestCalculateLayout_Minimum tests layout at 80x24 (minimum terminal size)
func TestCalculateLayout_Minimum(t *testing.T) {
	width, height := 80, 24
	layout := CalculateLayout(width, height)

	if layout.Mode != LayoutCompact {
		t.Errorf("Expected LayoutCompact mode at %dx%d, got %v", width, height, layout.Mode)
	}

	if layout.Area.Dx() != width || layout.Area.Dy() != height {
		t.Errorf("Area size mismatch: got %dx%d, want %dx%d",
			layout.Area.Dx(), layout.Area.Dy(), width, height)
	}

	if layout.Status.Dy() != StatusHeight {
		t.Errorf("Status height mismatch: got %d, want %d", layout.Status.Dy(), StatusHeight)
	}
	if layout.Footer.Dy() != FooterHeight {
		t.Errorf("Footer height mismatch: got %d, want %d", layout.Footer.Dy(), FooterHeight)
	}

	// In compact mode both panels share the content area
	if layout.List != layout.Content || layout.Detail != layout.Content {
		t.Errorf("List and Detail should equal Content in compact mode: list=%v detail=%v content=%v",
			layout.List, layout.Detail, layout.Content)
	}

	expectedContentHeight := height - StatusHeight - FooterHeight
	if layout.Content.Dy() != expectedContentHeight {
		t.Errorf("Content height mismatch: got %d, want %d",
			layout.Content.Dy(), expectedContentHeight)
	}
}

// TestCalculateLayout_Desktop tests side-by-side panels at 120x40
func TestCalculateLayout_Desktop(t *testing.T) {
	layout := CalculateLayout(120, 40)

	if layout.IsCompact() {
		t.Fatal("Expected desktop mode at 120x40")
	}
	if layout.List.Dx() != ListWidthDesktop {
		t.Errorf("List width mismatch: got %d, want %d", layout.List.Dx(), ListWidthDesktop)
	}
	// 1-char gap between the panels
	if layout.Detail.Min.X != layout.List.Max.X+1 {
		t.Errorf("Detail should start one column after the list: list ends %d, detail starts %d",
			layout.List.Max.X, layout.Detail.Min.X)
	}
	if layout.Detail.Max.X != 120 {
		t.Errorf("Detail should reach the right edge, got %d", layout.Detail.Max.X)
	}
	if layout.Status.Min.Y != layout.Content.Max.Y || layout.Footer.Min.Y != layout.Status.Max.Y {
		t.Errorf("Status and footer should stack under the content: %v %v %v",
			layout.Content, layout.Status, layout.Footer)
	}
}

func TestCalculateLayout_Breakpoints(t *testing.T) {
	tests := []struct {
		name    string
		width   int
		height  int
		compact bool
	}{
		{"narrow", CompactWidthBreakpoint - 1, 40, true},
		{"at width breakpoint", CompactWidthBreakpoint, 40, false},
		{"short", 120, CompactHeightBreakpoint - 1, true},
		{"at height breakpoint", 120, CompactHeightBreakpoint, false},
		{"zero", 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			layout := CalculateLayout(tt.width, tt.height)
			if layout.IsCompact() != tt.compact {
				t.Errorf("IsCompact() = %v at %dx%d, want %v", layout.IsCompact(), tt.width, tt.height, tt.compact)
			}
			if layout.Content.Dy() < 0 {
				t.Errorf("negative content height %d", layout.Content.Dy())
			}
		})
	}
}
