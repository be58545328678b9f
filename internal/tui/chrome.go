package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kleincho/humint/internal/tui/styles"
)

func (m *Model) renderHeader() string {
	style := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.theme.Base.Foreground)).
		Background(lipgloss.Color(m.theme.Chrome.Header)).
		Bold(true).
		Padding(0, 1)

	left := "HUMINT"
	center := m.identityLabel()
	right := m.personaLabel()
	line := joinHeader(left, center, right, m.width)
	return style.Width(maxInt(0, m.width)).Render(line)
}

func (m *Model) renderFooter() string {
	style := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.theme.Base.Foreground)).
		Background(lipgloss.Color(m.theme.Chrome.Footer)).
		Padding(0, 1)

	var base string
	switch m.activeViewID() {
	case ViewStart:
		base = "enter Send  ctrl+t Threads  ctrl+c Quit"
	case ViewThreads:
		base = "enter Open  n New  esc Back  ctrl+c Quit"
	case ViewChat:
		base = "enter Send  tab Follow-up  ctrl+f Feedback  ctrl+p Persona  esc Back  ctrl+c Quit"
	}
	return style.Width(maxInt(0, m.width)).Render(truncate(base, maxInt(0, m.width-2)))
}

func (m *Model) identityLabel() string {
	if m.auth == nil {
		return "signed out"
	}
	identity := m.auth.Current()
	if identity == nil {
		return "signed out"
	}
	if identity.Email != "" {
		return identity.Email
	}
	return identity.UserID
}

func (m *Model) personaLabel() string {
	if m.personas == nil {
		return ""
	}
	hint := strings.TrimSpace(m.personas.Get())
	if hint == "" {
		return ""
	}
	return fmt.Sprintf("persona: %s", hint)
}

func joinHeader(left, center, right string, width int) string {
	left = strings.TrimSpace(left)
	center = strings.TrimSpace(center)
	right = strings.TrimSpace(right)
	if width <= 0 {
		return left
	}

	space := width - lipgloss.Width(left) - lipgloss.Width(center) - lipgloss.Width(right)
	if space < 2 {
		line := left
		if right != "" {
			line = left + "  " + right
		}
		return truncate(line, width)
	}

	leftGap := space / 2
	rightGap := space - leftGap
	return truncate(left+strings.Repeat(" ", leftGap)+center+strings.Repeat(" ", rightGap)+right, width)
}

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max == 1 {
		return string(runes[:1])
	}
	return string(runes[:max-1]) + "…"
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func borderFor(theme styles.Theme) lipgloss.Border {
	if theme.BorderStyle == "sharp" {
		return lipgloss.NormalBorder()
	}
	return lipgloss.RoundedBorder()
}
