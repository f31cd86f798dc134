package theme

import "charm.land/lipgloss/v2"

// Styles contains all pre-built lipgloss styles for the TUI.
type Styles struct {
	HeaderTitle     lipgloss.Style
	HeaderInfo      lipgloss.Style
	HeaderSeparator lipgloss.Style

	PanelTitle        lipgloss.Style
	PanelTitleFocused lipgloss.Style
	PanelRule         lipgloss.Style
	PanelRuleFocused  lipgloss.Style

	GroupTitle    lipgloss.Style
	Item          lipgloss.Style
	ItemSelected  lipgloss.Style
	Dim           lipgloss.Style
	ProgressEmpty lipgloss.Style

	StepComplete lipgloss.Style
	StepActive   lipgloss.Style
	StepPending  lipgloss.Style
	StepCursor   lipgloss.Style

	StatusBar   lipgloss.Style
	Success     lipgloss.Style
	Warning     lipgloss.Style
	Error       lipgloss.Style
	ErrorDetail lipgloss.Style

	HintKey       lipgloss.Style
	HintDesc      lipgloss.Style
	HintSeparator lipgloss.Style

	Toast lipgloss.Style
}

// buildStyles constructs the pre-built styles from theme colors.
func (t *Theme) buildStyles() *Styles {
	c := lipgloss.Color
	return &Styles{
		HeaderTitle:     lipgloss.NewStyle().Foreground(c(t.Primary)).Bold(true),
		HeaderInfo:      lipgloss.NewStyle().Foreground(c(t.FgBase)),
		HeaderSeparator: lipgloss.NewStyle().Foreground(c(t.FgMuted)),

		PanelTitle:        lipgloss.NewStyle().Foreground(c(t.FgSubtle)).Bold(true),
		PanelTitleFocused: lipgloss.NewStyle().Foreground(c(t.Primary)).Bold(true),
		PanelRule:         lipgloss.NewStyle().Foreground(c(t.BgSurface1)),
		PanelRuleFocused:  lipgloss.NewStyle().Foreground(c(t.Primary)),

		GroupTitle:    lipgloss.NewStyle().Foreground(c(t.Tertiary)).Bold(true),
		Item:          lipgloss.NewStyle().Foreground(c(t.FgBase)),
		ItemSelected:  lipgloss.NewStyle().Foreground(c(t.FgBright)).Background(c(t.BgSurface0)).Bold(true),
		Dim:           lipgloss.NewStyle().Foreground(c(t.FgMuted)),
		ProgressEmpty: lipgloss.NewStyle().Foreground(c(t.BgSurface1)),

		StepComplete: lipgloss.NewStyle().Foreground(c(t.Success)),
		StepActive:   lipgloss.NewStyle().Foreground(c(t.Warning)).Bold(true),
		StepPending:  lipgloss.NewStyle().Foreground(c(t.FgMuted)),
		StepCursor:   lipgloss.NewStyle().Foreground(c(t.BgBase)).Background(c(t.Primary)).Bold(true),

		StatusBar:   lipgloss.NewStyle().Foreground(c(t.FgSubtle)).Background(c(t.BgMantle)).Padding(0, 1),
		Success:     lipgloss.NewStyle().Foreground(c(t.Success)),
		Warning:     lipgloss.NewStyle().Foreground(c(t.Warning)),
		Error:       lipgloss.NewStyle().Foreground(c(t.Error)).Bold(true),
		ErrorDetail: lipgloss.NewStyle().Foreground(c(t.Error)),

		HintKey:       lipgloss.NewStyle().Foreground(c(t.FgSubtle)).Bold(true),
		HintDesc:      lipgloss.NewStyle().Foreground(c(t.FgMuted)),
		HintSeparator: lipgloss.NewStyle().Foreground(c(t.BgSurface1)),

		Toast: lipgloss.NewStyle().Foreground(c(t.BgBase)).Background(c(t.Warning)).Padding(0, 1).Bold(true),
	}
}
