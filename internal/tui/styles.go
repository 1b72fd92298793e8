package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/whiterabbit74/kinopub-wnldr/internal/config"
)

var (
	// Colors
	ColorPrimary = lipgloss.Color("#bd93f9")
	ColorSuccess = lipgloss.Color("#50fa7b")
	ColorError   = lipgloss.Color("#ff5555")
	ColorText    = lipgloss.Color("#f8f8f2")
	ColorSubtext = lipgloss.Color("#6272a4")
	ColorBorder  = lipgloss.Color("#44475a")

	// Styles
	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	StatusStyle = lipgloss.NewStyle().
			Foreground(ColorSubtext)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true)

	HelpStyle = lipgloss.NewStyle().
			Foreground(ColorSubtext)
)

// ApplyTheme adjusts the palette for light terminals. The adaptive setting
// asks the terminal; explicit settings override it.
func ApplyTheme(theme int) {
	dark := true
	switch theme {
	case config.ThemeLight:
		dark = false
	case config.ThemeDark:
		dark = true
	default:
		dark = termenv.HasDarkBackground()
	}
	if dark {
		return
	}

	ColorText = lipgloss.Color("#282a36")
	ColorSubtext = lipgloss.Color("#6272a4")
	ColorBorder = lipgloss.Color("#d0d0d0")
	TitleStyle = TitleStyle.Foreground(ColorPrimary)
	PanelStyle = PanelStyle.BorderForeground(ColorBorder)
	StatusStyle = StatusStyle.Foreground(ColorSubtext)
	HelpStyle = HelpStyle.Foreground(ColorSubtext)
}
