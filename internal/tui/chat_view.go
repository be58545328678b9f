package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kleincho/humint/internal/chat"
	"github.com/kleincho/humint/internal/models"
	"github.com/kleincho/humint/internal/persona"
	"github.com/kleincho/humint/internal/tui/styles"
)

type sendDoneMsg struct {
	err error
}

type feedbackDoneMsg struct {
	err error
}

type chatMode int

const (
	modeInput chatMode = iota
	modeFeedback
	modePersona
)

// chatView renders the active conversation transcript and the composer.
type chatView struct {
	controller *chat.Controller
	personas   *persona.Store
	compact    bool

	transcript   viewport.Model
	input        textinput.Model
	personaInput textinput.Model
	spin         spinner.Model

	mode          chatMode
	feedbackSent  bool
	sized         bool
	stickToBottom bool

	// followupIndex cycles through the latest reply's suggestions on tab.
	followupIndex int
}

func newChatView(controller *chat.Controller, personas *persona.Store, compact bool) *chatView {
	input := textinput.New()
	input.Placeholder = "Ask a follow-up..."
	input.CharLimit = 2000
	input.Focus()

	personaInput := textinput.New()
	personaInput.Placeholder = "e.g. PE analyst, IB associate"
	personaInput.CharLimit = 200

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	return &chatView{
		controller:    controller,
		personas:      personas,
		compact:       compact,
		transcript:    viewport.New(0, 0),
		input:         input,
		personaInput:  personaInput,
		spin:          spin,
		stickToBottom: true,
	}
}

func (v *chatView) Init() tea.Cmd {
	v.mode = modeInput
	v.feedbackSent = false
	v.stickToBottom = true
	v.followupIndex = 0
	v.input.Focus()

	session := v.controller.Snapshot()
	if session.SendInFlight || session.IsLoading {
		return tea.Batch(textinput.Blink, v.spin.Tick)
	}
	return textinput.Blink
}

func (v *chatView) Update(msg tea.Msg) tea.Cmd {
	switch typed := msg.(type) {
	case sendDoneMsg:
		v.stickToBottom = true
		v.followupIndex = 0
		return nil
	case feedbackDoneMsg:
		v.mode = modeInput
		v.feedbackSent = typed.err == nil
		v.input.Focus()
		return nil
	case spinner.TickMsg:
		session := v.controller.Snapshot()
		if !session.SendInFlight && !session.IsLoading {
			return nil
		}
		var cmd tea.Cmd
		v.spin, cmd = v.spin.Update(msg)
		return cmd
	case tea.KeyMsg:
		return v.handleKey(typed)
	}

	var cmd tea.Cmd
	v.transcript, cmd = v.transcript.Update(msg)
	return cmd
}

func (v *chatView) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch v.mode {
	case modeFeedback:
		return v.handleFeedbackKey(msg)
	case modePersona:
		return v.handlePersonaKey(msg)
	}

	switch msg.String() {
	case "esc":
		controller := v.controller
		return func() tea.Msg {
			controller.SelectThread(context.Background(), nil)
			return popViewMsg{}
		}
	case "ctrl+t":
		return pushViewCmd(ViewThreads)
	case "ctrl+f":
		if v.lastAIIndex() >= 0 {
			v.mode = modeFeedback
			v.input.Blur()
		}
		return nil
	case "ctrl+p":
		v.mode = modePersona
		v.input.Blur()
		v.personaInput.SetValue(v.personas.Get())
		v.personaInput.Focus()
		return textinput.Blink
	case "enter":
		return v.submit()
	case "tab":
		// Cycle the latest reply's follow-up suggestions into the composer;
		// enter then sends the pre-filled question like any other.
		recs := v.lastFollowups()
		if len(recs) == 0 {
			return nil
		}
		v.input.SetValue(recs[v.followupIndex%len(recs)])
		v.input.CursorEnd()
		v.followupIndex++
		return nil
	case "up", "down", "pgup", "pgdown":
		v.stickToBottom = false
		var cmd tea.Cmd
		v.transcript, cmd = v.transcript.Update(msg)
		return cmd
	case "end":
		v.stickToBottom = true
		return nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return cmd
}

func (v *chatView) handleFeedbackKey(msg tea.KeyMsg) tea.Cmd {
	var choice models.FeedbackChoice
	switch msg.String() {
	case "1":
		choice = models.FeedbackLike
	case "2":
		choice = models.FeedbackBetterQuality
	case "3":
		choice = models.FeedbackNoQuotes
	case "esc":
		v.mode = modeInput
		v.input.Focus()
		return textinput.Blink
	default:
		return nil
	}

	index := v.lastAIIndex()
	if index < 0 {
		v.mode = modeInput
		v.input.Focus()
		return nil
	}

	controller := v.controller
	return func() tea.Msg {
		return feedbackDoneMsg{err: controller.SubmitFeedback(context.Background(), index, choice)}
	}
}

func (v *chatView) handlePersonaKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		v.personas.Set(strings.TrimSpace(v.personaInput.Value()))
		v.mode = modeInput
		v.input.Focus()
		return textinput.Blink
	case "esc":
		v.mode = modeInput
		v.input.Focus()
		return textinput.Blink
	}

	var cmd tea.Cmd
	v.personaInput, cmd = v.personaInput.Update(msg)
	return cmd
}

func (v *chatView) submit() tea.Cmd {
	text := strings.TrimSpace(v.input.Value())
	if text == "" {
		return nil
	}

	session := v.controller.Snapshot()
	if session.SendInFlight || session.IsLoading {
		return nil
	}

	v.input.Reset()
	v.feedbackSent = false
	v.stickToBottom = true

	controller := v.controller
	return tea.Batch(v.spin.Tick, func() tea.Msg {
		err := controller.Send(context.Background(), text)
		if errors.Is(err, chat.ErrSendInFlight) {
			err = nil
		}
		return sendDoneMsg{err: err}
	})
}

// lastFollowups returns the follow-up suggestions of the latest AI reply.
func (v *chatView) lastFollowups() []string {
	session := v.controller.Snapshot()
	for i := len(session.Messages) - 1; i >= 0; i-- {
		message := session.Messages[i]
		if message.IsAI && !message.IsError {
			return message.FollowupRecs
		}
	}
	return nil
}

// lastAIIndex finds the most recent rateable AI reply.
func (v *chatView) lastAIIndex() int {
	session := v.controller.Snapshot()
	for i := len(session.Messages) - 1; i >= 0; i-- {
		if session.Messages[i].IsAI && !session.Messages[i].IsError {
			return i
		}
	}
	return -1
}

func (v *chatView) View(width, height int, theme styles.Theme) string {
	session := v.controller.Snapshot()

	composer := v.renderComposer(width, theme, session)
	transcriptHeight := height - lipgloss.Height(composer)
	if transcriptHeight < 1 {
		transcriptHeight = 1
	}

	if !v.sized || v.transcript.Width != width || v.transcript.Height != transcriptHeight {
		v.transcript.Width = width
		v.transcript.Height = transcriptHeight
		v.sized = true
	}
	v.transcript.SetContent(renderTranscript(session, width, v.compact, theme))
	if v.stickToBottom {
		v.transcript.GotoBottom()
	}

	return lipgloss.JoinVertical(lipgloss.Left, v.transcript.View(), composer)
}

func (v *chatView) renderComposer(width int, theme styles.Theme, session chat.Session) string {
	var status string
	switch {
	case session.IsLoading:
		status = theme.MutedStyle().Render(v.spin.View() + " loading history...")
	case session.SendInFlight:
		status = theme.MutedStyle().Render(v.spin.View() + " thinking...")
	case v.feedbackSent:
		status = theme.MutedStyle().Render("Thanks for the feedback.")
	}

	var body string
	switch v.mode {
	case modeFeedback:
		body = theme.AccentStyle().Render("Rate this answer:") +
			"  [1] Helpful  [2] Wanted better quality  [3] Missing quotes  (esc cancels)"
	case modePersona:
		body = theme.AccentStyle().Render("Target persona: ") + v.personaInput.View()
	default:
		body = v.input.View()
	}

	box := lipgloss.NewStyle().
		Border(borderFor(theme)).
		BorderForeground(lipgloss.Color(theme.Base.Border)).
		Padding(0, 1).
		Width(maxInt(20, width-2)).
		Render(body)

	if status == "" {
		return box
	}
	return lipgloss.JoinVertical(lipgloss.Left, status, box)
}

func renderTranscript(session chat.Session, width int, compact bool, theme styles.Theme) string {
	if len(session.Messages) == 0 {
		if session.IsLoading {
			return theme.MutedStyle().Render("loading...")
		}
		return theme.MutedStyle().Render("No messages yet.")
	}

	wrap := lipgloss.NewStyle().Width(maxInt(20, width-4))

	var blocks []string
	for _, message := range session.Messages {
		blocks = append(blocks, renderMessage(message, wrap, compact, theme))
	}

	gap := "\n\n"
	if compact {
		gap = "\n"
	}
	return lipgloss.NewStyle().Padding(0, 1).Render(strings.Join(blocks, gap))
}

func renderMessage(message models.Message, wrap lipgloss.Style, compact bool, theme styles.Theme) string {
	if !message.IsAI {
		return theme.UserStyle().Render("you") + "\n" + wrap.Render(message.Text)
	}
	if message.IsError {
		return theme.ErrorStyle().Render("error") + "\n" + wrap.Render(message.Text)
	}

	header := theme.AccentStyle().Bold(true).Render("humint")
	if message.Confidence != models.ConfidenceNone {
		badge := theme.ConfidenceStyle(string(message.Confidence)).
			Render(fmt.Sprintf("[%s confidence]", message.Confidence))
		header += " " + badge
	}

	parts := []string{header, wrap.Render(message.Text)}

	if message.ReferencesCount > 0 {
		parts = append(parts, theme.MutedStyle().Render(
			fmt.Sprintf("backed by %d firsthand account(s)", message.ReferencesCount)))
	}
	if !compact {
		for _, reference := range message.References {
			parts = append(parts, wrap.Render(theme.MutedStyle().Render(formatReference(reference))))
		}
		if len(message.FollowupRecs) > 0 {
			parts = append(parts, theme.MutedStyle().Render("follow-ups:"))
			for _, rec := range message.FollowupRecs {
				parts = append(parts, theme.MutedStyle().Render("  - "+rec))
			}
		}
	}
	return strings.Join(parts, "\n")
}

func formatReference(reference models.Reference) string {
	who := reference.Role
	if reference.Company != "" {
		who = fmt.Sprintf("%s @ %s", who, reference.Company)
	} else if reference.University != "" {
		who = fmt.Sprintf("%s @ %s", who, reference.University)
	}
	if who == "" {
		who = reference.Source
	}
	return fmt.Sprintf("  %q (%s)", reference.Quote, who)
}
