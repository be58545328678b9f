package models

import (
	"strings"
	"time"
)

// Thread is a persisted conversation. A thread is created once, at
// first-message time; LastMessage and UpdatedAt are refreshed on every
// subsequent send. Threads are never deleted by the client.
type Thread struct {
	// ThreadID is the backend-minted identifier.
	ThreadID string `json:"thread_id"`

	// Title is the backend-generated summary title.
	Title string `json:"title"`

	// LastMessage is the most recent user message in the thread.
	LastMessage string `json:"last_message"`

	// OwnerID identifies the signed-in user owning the thread.
	OwnerID string `json:"owner_id"`

	// CreatedAt is when the thread was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the thread last received a message.
	UpdatedAt time.Time `json:"updated_at"`
}

// ThreadHandle is the minimal identity returned by thread creation.
type ThreadHandle struct {
	ThreadID string `json:"thread_id"`
	Title    string `json:"title"`
}

// Validate checks that the thread row is well-formed enough to persist.
func (t *Thread) Validate() error {
	validation := &ValidationErrors{}
	if strings.TrimSpace(t.ThreadID) == "" {
		validation.Add("thread_id", ErrEmptyThreadID)
	}
	if strings.TrimSpace(t.OwnerID) == "" {
		validation.Add("owner_id", ErrEmptyOwnerID)
	}
	return validation.Err()
}
