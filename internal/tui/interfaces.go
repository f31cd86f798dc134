package tui

import (
	tea "charm.land/bubbletea/v2"
	uv "github.com/charmbracelet/ultraviolet"
)

// Drawable renders into a screen rectangle.
type Drawable interface {
	Draw(scr uv.Screen, area uv.Rectangle) *tea.Cursor
}

// Component draws itself and reacts to messages.
type Component interface {
	Drawable
	Update(tea.Msg) tea.Cmd
}

// Sizable components are told their cell size on every resize.
type Sizable interface {
	SetSize(width, height int)
}

// Pane is one of the two panels that can hold keyboard focus.
type Pane interface {
	Component
	Sizable
	SetFocus(focused bool)
	IsFocused() bool
}

var (
	_ Pane      = (*Dashboard)(nil)
	_ Pane      = (*Detail)(nil)
	_ Component = (*StatusBar)(nil)
	_ Sizable   = (*StatusBar)(nil)
	_ Component = (*Toast)(nil)
)
