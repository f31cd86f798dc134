package tui

import uv "github.com/charmbracelet/ultraviolet"

// Layout breakpoints and dimensions
const (
	// CompactWidthBreakpoint is the minimum width for side-by-side panels
	CompactWidthBreakpoint = 100
	// CompactHeightBreakpoint is the minimum height for side-by-side panels
	CompactHeightBreakpoint = 20
	// ListWidthDesktop is the width of the record list in desktop mode
	ListWidthDesktop = 48
	// StatusHeight is the height of the status bar in rows
	StatusHeight = 1
	// FooterHeight is the height of the footer in rows
	FooterHeight = 1
)

// LayoutMode represents the layout mode based on terminal size
type LayoutMode int

const (
	// LayoutDesktop shows the record list and the detail side by side
	LayoutDesktop LayoutMode = iota
	// LayoutCompact shows only the focused panel
	LayoutCompact
)

// Layout defines the rectangular regions for all UI components
type Layout struct {
	Mode    LayoutMode
	Area    uv.Rectangle
	Content uv.Rectangle
	List    uv.Rectangle
	Detail  uv.Rectangle
	Status  uv.Rectangle
	Footer  uv.Rectangle
}

// IsCompact returns true if the layout is in compact mode
func (l Layout) IsCompact() bool {
	return l.Mode == LayoutCompact
}

// CalculateLayout computes the layout rectangles based on terminal dimensions
func CalculateLayout(width, height int) Layout {
	mode := LayoutDesktop
	if width < CompactWidthBreakpoint || height < CompactHeightBreakpoint {
		mode = LayoutCompact
	}

	area := uv.Rectangle{
		Max: uv.Position{X: width, Y: height},
	}

	contentHeight := area.Dy() - StatusHeight - FooterHeight
	if contentHeight < 0 {
		contentHeight = 0
	}
	contentRect, rest := uv.SplitVertical(area, uv.Fixed(contentHeight))
	statusRect, footerRect := uv.SplitVertical(rest, uv.Fixed(StatusHeight))

	var listRect, detailRect uv.Rectangle
	if mode == LayoutDesktop {
		listWidth := ListWidthDesktop
		if contentRect.Dx()/2 < listWidth {
			listWidth = contentRect.Dx() / 2
		}
		listRect, detailRect = uv.SplitHorizontal(contentRect, uv.Fixed(listWidth))
		detailRect.Min.X += 1 // 1-char gap so panel rules don't visually merge
	} else {
		listRect = contentRect
		detailRect = contentRect
	}

	return Layout{
		Mode:    mode,
		Area:    area,
		Content: contentRect,
		List:    listRect,
		Detail:  detailRect,
		Status:  statusRect,
		Footer:  footerRect,
	}
}
