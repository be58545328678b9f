// Package chat implements the message session controller, the state
// machine that owns the active conversation.
package chat

import (
	"github.com/kleincho/humint/internal/models"
)

// State identifies where the session is in its lifecycle.
type State string

const (
	// StateIdle means no thread is active.
	StateIdle State = "idle"

	// StateLoadingHistory means an existing thread was selected and its
	// past messages are being fetched.
	StateLoadingHistory State = "loading_history"

	// StateReady means the transcript is displayed and no send is in flight.
	StateReady State = "ready"

	// StateSending means exactly one send is in flight.
	StateSending State = "sending"
)

// Session is a point-in-time snapshot of the controller's state, safe for
// rendering. Messages is a copy of the append-only transcript.
type Session struct {
	// ActiveThreadID is the current thread, "" when idle.
	ActiveThreadID string

	// Messages is the transcript in append order.
	Messages []models.Message

	// State is the lifecycle state.
	State State

	// IsLoading is true while history is being fetched.
	IsLoading bool

	// SendInFlight is true while a send is outstanding.
	SendInFlight bool
}
