package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// Relay forwards session controller navigation events into the running
// bubbletea program. The controller is constructed before the program
// exists, so the relay starts unbound and drops events until Bind.
type Relay struct {
	mu      sync.Mutex
	program *tea.Program
}

func NewRelay() *Relay {
	return &Relay{}
}

// Bind attaches the running program. Safe to call once the program is
// created but before Run.
func (r *Relay) Bind(program *tea.Program) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.program = program
}

// ShowThreadPicker implements chat.Navigator.
func (r *Relay) ShowThreadPicker() {
	r.mu.Lock()
	program := r.program
	r.mu.Unlock()

	if program != nil {
		program.Send(showPickerMsg{})
	}
}
