// Package tui is the terminal surface for the HUMINT client. It renders
// the session controller's snapshots and translates key presses into
// controller transitions; all conversation state lives in the controller.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kleincho/humint/internal/auth"
	"github.com/kleincho/humint/internal/chat"
	"github.com/kleincho/humint/internal/persona"
	"github.com/kleincho/humint/internal/threads"
	"github.com/kleincho/humint/internal/tui/styles"
)

type ViewID string

const (
	ViewStart   ViewID = "start"
	ViewThreads ViewID = "threads"
	ViewChat    ViewID = "chat"
)

// Config carries presentation settings.
type Config struct {
	Theme          string
	ShowTimestamps bool
	CompactMode    bool
}

// Deps wires the TUI to the application layer.
type Deps struct {
	Controller *chat.Controller
	Threads    *threads.Client
	Personas   *persona.Store
	Auth       *auth.Store
	Relay      *Relay
}

type Model struct {
	controller *chat.Controller
	threads    *threads.Client
	personas   *persona.Store
	auth       *auth.Store
	theme      styles.Theme

	width  int
	height int

	viewStack []ViewID
	views     map[ViewID]viewModel
}

type viewModel interface {
	Init() tea.Cmd
	Update(msg tea.Msg) tea.Cmd
	View(width, height int, theme styles.Theme) string
}

type pushViewMsg struct {
	id ViewID
}

type popViewMsg struct{}

// showPickerMsg arrives through the Relay when the session controller
// leaves the conversation (sign-out, new-thread selection).
type showPickerMsg struct{}

func pushViewCmd(id ViewID) tea.Cmd {
	return func() tea.Msg {
		return pushViewMsg{id: id}
	}
}

func popViewCmd() tea.Cmd {
	return func() tea.Msg {
		return popViewMsg{}
	}
}

func NewModel(cfg Config, deps Deps) (*Model, error) {
	if deps.Controller == nil {
		return nil, fmt.Errorf("tui requires a session controller")
	}

	themeName := strings.TrimSpace(cfg.Theme)
	if themeName == "" {
		themeName = "default"
	}
	if _, ok := styles.Themes[themeName]; !ok {
		return nil, fmt.Errorf("invalid theme %q", themeName)
	}

	m := &Model{
		controller: deps.Controller,
		threads:    deps.Threads,
		personas:   deps.Personas,
		auth:       deps.Auth,
		theme:      styles.Lookup(themeName),
		viewStack:  []ViewID{ViewStart},
		views:      make(map[ViewID]viewModel),
	}
	m.views[ViewStart] = newStartView(deps.Controller, deps.Personas)
	m.views[ViewThreads] = newThreadsView(deps.Controller, deps.Threads, deps.Auth)
	m.views[ViewChat] = newChatView(deps.Controller, deps.Personas, cfg.CompactMode)
	return m, nil
}

// Run starts the bubbletea program and blocks until it exits.
func Run(cfg Config, deps Deps) error {
	model, err := NewModel(cfg, deps)
	if err != nil {
		return err
	}

	program := tea.NewProgram(model, tea.WithAltScreen())
	if deps.Relay != nil {
		deps.Relay.Bind(program)
	}
	_, err = program.Run()
	return err
}

func (m *Model) Init() tea.Cmd {
	if view := m.activeView(); view != nil {
		return view.Init()
	}
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = typed.Width
		m.height = typed.Height
		return m, nil
	case showPickerMsg:
		m.viewStack = []ViewID{ViewStart}
		if view := m.activeView(); view != nil {
			return m, view.Init()
		}
		return m, nil
	case pushViewMsg:
		m.pushView(typed.id)
		if view := m.activeView(); view != nil {
			return m, view.Init()
		}
		return m, nil
	case popViewMsg:
		m.popView()
		if view := m.activeView(); view != nil {
			return m, view.Init()
		}
		return m, nil
	case tea.KeyMsg:
		if typed.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	if active := m.activeView(); active != nil {
		return m, active.Update(msg)
	}
	return m, nil
}

func (m *Model) View() string {
	active := m.activeView()
	if active == nil {
		return "no active view"
	}

	header := m.renderHeader()
	footer := m.renderFooter()
	contentHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if contentHeight < 0 {
		contentHeight = 0
	}
	body := active.View(m.width, contentHeight, m.theme)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m *Model) activeView() viewModel {
	return m.views[m.activeViewID()]
}

func (m *Model) activeViewID() ViewID {
	if len(m.viewStack) == 0 {
		return ViewStart
	}
	return m.viewStack[len(m.viewStack)-1]
}

func (m *Model) pushView(id ViewID) {
	if id == "" {
		return
	}
	if _, ok := m.views[id]; !ok {
		return
	}
	if m.activeViewID() == id {
		return
	}
	m.viewStack = append(m.viewStack, id)
}

func (m *Model) popView() {
	if len(m.viewStack) <= 1 {
		return
	}
	m.viewStack = m.viewStack[:len(m.viewStack)-1]
}
