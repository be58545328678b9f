package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kleincho/humint/internal/chat"
	"github.com/kleincho/humint/internal/persona"
	"github.com/kleincho/humint/internal/tui/styles"
)

// conversationStartedMsg reports the outcome of minting a thread for the
// first message.
type conversationStartedMsg struct {
	err error
}

// startView is the landing screen: one input, one question, a new thread.
type startView struct {
	controller *chat.Controller
	personas   *persona.Store

	input   textinput.Model
	spin    spinner.Model
	busy    bool
	lastErr error
}

func newStartView(controller *chat.Controller, personas *persona.Store) *startView {
	input := textinput.New()
	input.Placeholder = "Ask about recruiting, interviews, comp..."
	input.CharLimit = 2000
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	return &startView{
		controller: controller,
		personas:   personas,
		input:      input,
		spin:       spin,
	}
}

func (v *startView) Init() tea.Cmd {
	v.busy = false
	v.input.Focus()
	return textinput.Blink
}

func (v *startView) Update(msg tea.Msg) tea.Cmd {
	switch typed := msg.(type) {
	case conversationStartedMsg:
		v.busy = false
		v.lastErr = typed.err
		if typed.err == nil {
			v.input.Reset()
			return pushViewCmd(ViewChat)
		}
		return nil
	case spinner.TickMsg:
		if !v.busy {
			return nil
		}
		var cmd tea.Cmd
		v.spin, cmd = v.spin.Update(msg)
		return cmd
	case tea.KeyMsg:
		switch typed.String() {
		case "ctrl+t":
			return pushViewCmd(ViewThreads)
		case "enter":
			return v.submit()
		}
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return cmd
}

func (v *startView) submit() tea.Cmd {
	if v.busy {
		return nil
	}
	text := strings.TrimSpace(v.input.Value())
	if text == "" {
		return nil
	}

	v.busy = true
	v.lastErr = nil
	controller := v.controller
	return tea.Batch(v.spin.Tick, func() tea.Msg {
		_, err := controller.StartConversation(context.Background(), text)
		return conversationStartedMsg{err: err}
	})
}

func (v *startView) View(width, height int, theme styles.Theme) string {
	title := theme.AccentStyle().Bold(true).Render("What do you want to know?")
	subtitle := theme.MutedStyle().Render("Answers grounded in firsthand accounts from people in the industry.")

	inputBox := lipgloss.NewStyle().
		Border(borderFor(theme)).
		BorderForeground(lipgloss.Color(theme.Base.Border)).
		Padding(0, 1).
		Width(maxInt(20, minInt(width-4, 80))).
		Render(v.input.View())

	lines := []string{"", title, subtitle, "", inputBox}
	if v.busy {
		lines = append(lines, theme.MutedStyle().Render(v.spin.View()+" creating thread..."))
	}
	if v.lastErr != nil {
		lines = append(lines, theme.ErrorStyle().Render("Could not start the conversation. Please try again."))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
