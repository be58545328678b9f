package styles

import "github.com/charmbracelet/lipgloss"

// BaseColors defines global UI colors.
type BaseColors struct {
	Background string
	Foreground string
	Muted      string
	Accent     string
	Border     string
}

// MessageColors defines colors for transcript entries.
type MessageColors struct {
	User  string
	AI    string
	Error string
}

// ConfidenceColors defines colors for AI confidence badges.
type ConfidenceColors struct {
	High   string
	Medium string
	Low    string
}

// ChromeColors defines non-content UI colors.
type ChromeColors struct {
	Header       string
	Footer       string
	SelectedItem string
}

// Theme defines the HUMINT TUI style tokens.
type Theme struct {
	Name        string
	BorderStyle string // "rounded", "sharp", "hidden"

	Base       BaseColors
	Message    MessageColors
	Confidence ConfidenceColors
	Chrome     ChromeColors
}

// Themes lists available palettes by name.
var Themes = map[string]Theme{
	"default":       DefaultTheme,
	"high-contrast": HighContrastTheme,
}

// Lookup resolves a theme name, falling back to the default palette.
func Lookup(name string) Theme {
	if theme, ok := Themes[name]; ok {
		return theme
	}
	return DefaultTheme
}

func (t Theme) MutedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.Base.Muted))
}

func (t Theme) AccentStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.Base.Accent))
}

func (t Theme) UserStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.Message.User)).Bold(true)
}

func (t Theme) AIStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.Message.AI))
}

func (t Theme) ErrorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.Message.Error))
}

// ConfidenceStyle resolves the badge style for a confidence level string.
func (t Theme) ConfidenceStyle(level string) lipgloss.Style {
	var color string
	switch level {
	case "high":
		color = t.Confidence.High
	case "medium":
		color = t.Confidence.Medium
	case "low":
		color = t.Confidence.Low
	default:
		color = t.Base.Muted
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true)
}
