package chat

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/kleincho/humint/internal/api"
	"github.com/kleincho/humint/internal/auth"
	"github.com/kleincho/humint/internal/logging"
	"github.com/kleincho/humint/internal/models"
)

// ErrSendInFlight is returned by Send while a previous send is outstanding.
var ErrSendInFlight = errors.New("a send is already in flight")

// ErrHistoryLoading is returned by Send while the activation's history
// fetch is still in flight. Accepting a send there would let the fetched
// history overwrite messages appended in the meantime.
var ErrHistoryLoading = errors.New("history load in progress")

// ErrNoActiveThread is returned by Send when no thread has been activated.
var ErrNoActiveThread = errors.New("no active thread")

const (
	sendErrorText = "Sorry, I encountered an error. Please try again."
	loadErrorText = "Error loading messages. Please try again."
)

// Repository is the controller's view of thread persistence and the
// reasoning backend. *threads.Client satisfies it.
type Repository interface {
	CreateThread(ctx context.Context, initialMessage string) (models.ThreadHandle, error)
	FetchMessages(ctx context.Context, threadID string) ([]models.Message, error)
	SendMessage(ctx context.Context, req api.ChatRequest) (models.Message, error)
	SubmitFeedback(ctx context.Context, feedback models.Feedback) error
}

// Navigator is notified when the session leaves the conversation view and
// the thread picker should be shown again.
type Navigator interface {
	ShowThreadPicker()
}

// PersonaSource supplies the persona hint at send time. *persona.Store
// satisfies it.
type PersonaSource interface {
	Get() string
}

// Controller owns the active conversation. All transitions are serialized
// behind one mutex; network calls run on the calling goroutine with the
// mutex released, and their results are applied only if the session
// generation has not moved on in the meantime.
type Controller struct {
	mu sync.Mutex

	repo     Repository
	personas PersonaSource
	nav      Navigator
	logger   zerolog.Logger

	// generation is bumped on every activation and reset. A network result
	// tagged with an older generation is discarded on arrival.
	generation uint64

	state          State
	activeThreadID string
	messages       []models.Message
	sendInFlight   bool
	loading        bool

	// initialText is the literal initial input of the current activation,
	// used to treat a re-dispatched activation as a no-op.
	initialText string

	field string
}

// NewController creates a session controller. nav may be nil when no
// surface cares about navigation events.
func NewController(repo Repository, personas PersonaSource, nav Navigator, field string) *Controller {
	return &Controller{
		repo:     repo,
		personas: personas,
		nav:      nav,
		logger:   logging.Component("chat"),
		state:    StateIdle,
		field:    field,
	}
}

// StartConversation mints a new thread for initialMessage and activates it.
// Unlike the best-effort persistence paths, a backend failure here is
// returned to the caller: without a thread id there is nothing to show.
func (c *Controller) StartConversation(ctx context.Context, initialMessage string) (models.ThreadHandle, error) {
	initialMessage = strings.TrimSpace(initialMessage)
	if initialMessage == "" {
		return models.ThreadHandle{}, models.ErrEmptyMessageText
	}

	handle, err := c.repo.CreateThread(ctx, initialMessage)
	if err != nil {
		return models.ThreadHandle{}, err
	}

	c.ActivateThread(ctx, handle.ThreadID, initialMessage)
	return handle, nil
}

// ActivateThread makes threadID the active thread.
//
// With a non-empty initialMessage the transcript starts with that message
// shown optimistically and the send is performed immediately. With an
// empty initialMessage the thread's history is fetched instead.
//
// Re-activating the current thread with the same initial input is a no-op,
// so a redundant dispatch of the same logical activate event cannot send
// the message twice.
func (c *Controller) ActivateThread(ctx context.Context, threadID, initialMessage string) {
	c.mu.Lock()

	if threadID == "" {
		c.mu.Unlock()
		return
	}
	if threadID == c.activeThreadID && initialMessage != "" && initialMessage == c.initialText {
		c.mu.Unlock()
		return
	}

	c.generation++
	generation := c.generation
	c.activeThreadID = threadID
	c.initialText = initialMessage
	c.messages = nil
	c.sendInFlight = false
	c.loading = false

	if initialMessage != "" {
		c.messages = append(c.messages, models.UserMessage(initialMessage))
		c.state = StateSending
		c.sendInFlight = true
		persona := c.personaHint()
		field := c.field
		c.mu.Unlock()

		c.performSend(ctx, generation, threadID, initialMessage, persona, field)
		return
	}

	c.state = StateLoadingHistory
	c.loading = true
	c.mu.Unlock()

	history, err := c.repo.FetchMessages(ctx, threadID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if generation != c.generation {
		c.logger.Debug().Str("thread_id", threadID).Msg("discarding stale history result")
		return
	}

	c.loading = false
	c.state = StateReady
	if err != nil {
		c.logger.Warn().Err(err).Str("thread_id", threadID).Msg("failed to load history")
		c.messages = []models.Message{models.ErrorMessage(loadErrorText)}
		return
	}
	c.messages = history
}

// Send appends text as a user message and posts it to the backend. At most
// one send may be outstanding; a second call returns ErrSendInFlight
// without touching the transcript. While the activation's history fetch is
// outstanding Send returns ErrHistoryLoading, so the transcript stays
// append-only once the history has been applied.
func (c *Controller) Send(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	c.mu.Lock()
	if c.activeThreadID == "" {
		c.mu.Unlock()
		return ErrNoActiveThread
	}
	if c.loading {
		c.mu.Unlock()
		return ErrHistoryLoading
	}
	if c.sendInFlight {
		c.mu.Unlock()
		return ErrSendInFlight
	}

	generation := c.generation
	threadID := c.activeThreadID
	c.messages = append(c.messages, models.UserMessage(text))
	c.state = StateSending
	c.sendInFlight = true
	persona := c.personaHint()
	field := c.field
	c.mu.Unlock()

	c.performSend(ctx, generation, threadID, text, persona, field)
	return nil
}

// performSend does the network round trip and applies the outcome. A reply
// belonging to a superseded generation is dropped; its guard died with the
// reset that bumped the generation.
func (c *Controller) performSend(ctx context.Context, generation uint64, threadID, text, persona, field string) {
	reply, err := c.repo.SendMessage(ctx, api.ChatRequest{
		Text:     text,
		ThreadID: threadID,
		Persona:  persona,
		Field:    field,
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	if generation != c.generation {
		c.logger.Debug().Str("thread_id", threadID).Msg("discarding stale send result")
		return
	}

	c.sendInFlight = false
	c.state = StateReady
	if err != nil {
		c.logger.Warn().Err(err).
			Str("thread_id", threadID).
			Str("preview", logging.Preview(text, 64)).
			Msg("send failed")
		c.messages = append(c.messages, models.ErrorMessage(sendErrorText))
		return
	}
	c.messages = append(c.messages, reply)
}

// SelectThread switches the session to threadID. A nil threadID means
// "new thread": the session is reset and the thread picker is shown.
func (c *Controller) SelectThread(ctx context.Context, threadID *string) {
	if threadID == nil {
		c.Reset()
		c.showThreadPicker()
		return
	}
	c.ActivateThread(ctx, *threadID, "")
}

// HandleIdentityChange reacts to auth transitions; register it with
// auth.Store.Subscribe. A sign-out resets the session and returns to the
// thread picker. Sign-in leaves the session alone.
func (c *Controller) HandleIdentityChange(prev, cur *auth.Identity) {
	if prev != nil && cur == nil {
		c.Reset()
		c.showThreadPicker()
	}
}

// Reset clears the session back to idle and invalidates any in-flight
// network results by bumping the generation.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.activeThreadID = ""
	c.initialText = ""
	c.messages = nil
	c.sendInFlight = false
	c.loading = false
	c.state = StateIdle
}

// SubmitFeedback rates the AI response at messageIndex.
func (c *Controller) SubmitFeedback(ctx context.Context, messageIndex int, choice models.FeedbackChoice) error {
	c.mu.Lock()
	if messageIndex < 0 || messageIndex >= len(c.messages) {
		c.mu.Unlock()
		return errors.New("feedback index out of range")
	}
	response := c.messages[messageIndex]
	c.mu.Unlock()

	if !response.IsAI || response.IsError {
		return errors.New("feedback targets AI responses")
	}

	return c.repo.SubmitFeedback(ctx, models.Feedback{
		Response: response,
		Choice:   choice,
	})
}

// SetField changes the domain hint attached to subsequent sends.
func (c *Controller) SetField(field string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.field = field
}

// Snapshot returns a copy of the current session for rendering.
func (c *Controller) Snapshot() Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	messages := make([]models.Message, len(c.messages))
	copy(messages, c.messages)

	return Session{
		ActiveThreadID: c.activeThreadID,
		Messages:       messages,
		State:          c.state,
		IsLoading:      c.loading,
		SendInFlight:   c.sendInFlight,
	}
}

func (c *Controller) personaHint() string {
	if c.personas == nil {
		return ""
	}
	return c.personas.Get()
}

func (c *Controller) showThreadPicker() {
	if c.nav != nil {
		c.nav.ShowThreadPicker()
	}
}
