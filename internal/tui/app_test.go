package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/require"

	"github.com/kleincho/humint/internal/api"
	"github.com/kleincho/humint/internal/chat"
	"github.com/kleincho/humint/internal/models"
	"github.com/kleincho/humint/internal/threads"
	"github.com/kleincho/humint/internal/tui/styles"
)

type stubRepo struct {
	history []models.Message
}

func (s stubRepo) CreateThread(ctx context.Context, initialMessage string) (models.ThreadHandle, error) {
	return models.ThreadHandle{ThreadID: "t1", Title: "t"}, nil
}

func (s stubRepo) FetchMessages(ctx context.Context, threadID string) ([]models.Message, error) {
	return s.history, nil
}

func (s stubRepo) SendMessage(ctx context.Context, req api.ChatRequest) (models.Message, error) {
	return models.Message{Text: "reply", IsAI: true}, nil
}

func (s stubRepo) SubmitFeedback(ctx context.Context, feedback models.Feedback) error {
	return nil
}

// blockingRepo holds FetchMessages open until release is closed.
type blockingRepo struct {
	stubRepo
	started chan struct{}
	release chan struct{}
}

func (b *blockingRepo) FetchMessages(ctx context.Context, threadID string) ([]models.Message, error) {
	b.started <- struct{}{}
	<-b.release
	return b.history, nil
}

func TestNewModel_RejectsUnknownTheme(t *testing.T) {
	_, err := NewModel(Config{Theme: "solarized"}, Deps{Controller: &chat.Controller{}})
	require.Error(t, err)
}

func TestNewModel_RequiresController(t *testing.T) {
	_, err := NewModel(Config{}, Deps{})
	require.Error(t, err)
}

func TestModel_ViewStack(t *testing.T) {
	model, err := NewModel(Config{}, Deps{Controller: &chat.Controller{}})
	require.NoError(t, err)
	require.Equal(t, ViewStart, model.activeViewID())

	model.pushView(ViewThreads)
	require.Equal(t, ViewThreads, model.activeViewID())

	// Pushing the active view again is a no-op.
	model.pushView(ViewThreads)
	require.Len(t, model.viewStack, 2)

	// Unknown views are ignored.
	model.pushView(ViewID("bogus"))
	require.Len(t, model.viewStack, 2)

	model.popView()
	require.Equal(t, ViewStart, model.activeViewID())

	// The base view never pops.
	model.popView()
	require.Equal(t, ViewStart, model.activeViewID())
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "", truncate("hello", 0))
	require.Equal(t, "h", truncate("hello", 1))
	require.Equal(t, "hel…", truncate("hello", 4))
	require.Equal(t, "hello", truncate("hello", 5))
	require.Equal(t, "héllo", truncate("héllo", 5))
}

func TestJoinHeader(t *testing.T) {
	line := joinHeader("HUMINT", "user@example.com", "persona: VP", 60)
	require.Equal(t, 60, lipgloss.Width(line))
	require.Contains(t, line, "HUMINT")
	require.Contains(t, line, "user@example.com")
	require.Contains(t, line, "persona: VP")

	// Too narrow: center is dropped, left and right survive truncated.
	narrow := joinHeader("HUMINT", "user@example.com", "persona: VP", 12)
	require.LessOrEqual(t, lipgloss.Width(narrow), 12)
	require.Contains(t, narrow, "HUMINT")
}

func TestFlattenBuckets(t *testing.T) {
	now := time.Now()
	buckets := threads.Buckets{
		Today:        []models.Thread{{ThreadID: "a", CreatedAt: now}},
		PreviousWeek: []models.Thread{{ThreadID: "b", CreatedAt: now.AddDate(0, 0, -3)}},
	}

	rows := flattenBuckets(buckets)
	require.Len(t, rows, 4)
	require.Equal(t, "Today", rows[0].section)
	require.Equal(t, "a", rows[1].thread.ThreadID)
	require.Equal(t, "Previous 7 days", rows[2].section)
	require.Equal(t, "b", rows[3].thread.ThreadID)

	require.Equal(t, 1, firstSelectable(rows))
	require.Equal(t, -1, firstSelectable(nil))
}

func TestThreadLine(t *testing.T) {
	line := threadLine(models.Thread{ThreadID: "t1", Title: "Comp questions", LastMessage: "what about bonuses"}, 60)
	require.Contains(t, line, "Comp questions")
	require.Contains(t, line, "what about bonuses")

	// Untitled threads fall back to the id.
	require.Contains(t, threadLine(models.Thread{ThreadID: "t2"}, 60), "t2")
}

func TestRenderMessage(t *testing.T) {
	theme := styles.DefaultTheme
	wrap := lipgloss.NewStyle().Width(76)

	user := renderMessage(models.UserMessage("hello there"), wrap, false, theme)
	require.Contains(t, user, "hello there")

	reply := renderMessage(models.Message{
		Text:            "the answer",
		IsAI:            true,
		Confidence:      models.ConfidenceHigh,
		ReferencesCount: 3,
		References: []models.Reference{
			{Quote: "it was brutal", Role: "Analyst", Company: "GS"},
		},
		FollowupRecs: []string{"ask about hours"},
	}, wrap, false, theme)
	require.Contains(t, reply, "the answer")
	require.Contains(t, reply, "high confidence")
	require.Contains(t, reply, "3 firsthand account")
	require.Contains(t, reply, "Analyst @ GS")
	require.Contains(t, reply, "ask about hours")

	compact := renderMessage(models.Message{
		Text: "the answer", IsAI: true,
		References:   []models.Reference{{Quote: "q", Role: "r"}},
		FollowupRecs: []string{"rec"},
	}, wrap, true, theme)
	require.NotContains(t, compact, "rec")

	failed := renderMessage(models.ErrorMessage("Sorry, I encountered an error. Please try again."), wrap, false, theme)
	require.Contains(t, failed, "encountered an error")
}

func TestRenderTranscript_Empty(t *testing.T) {
	out := renderTranscript(chat.Session{}, 80, false, styles.DefaultTheme)
	require.Contains(t, out, "No messages yet")

	loading := renderTranscript(chat.Session{IsLoading: true}, 80, false, styles.DefaultTheme)
	require.Contains(t, loading, "loading")
}

func TestThreadsView_NewThreadResetsSession(t *testing.T) {
	controller := chat.NewController(stubRepo{history: []models.Message{{Text: "q"}}}, nil, nil, "finance")
	controller.ActivateThread(context.Background(), "t1", "")
	require.Equal(t, "t1", controller.Snapshot().ActiveThreadID)

	view := newThreadsView(controller, nil, nil)
	cmd := view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	require.NotNil(t, cmd)

	// The old conversation must be gone, not just hidden behind the picker.
	msg := cmd()
	require.IsType(t, showPickerMsg{}, msg)
	session := controller.Snapshot()
	require.Empty(t, session.ActiveThreadID)
	require.Empty(t, session.Messages)
}

func TestChatView_ComposerBlockedWhileHistoryLoads(t *testing.T) {
	repo := &blockingRepo{
		stubRepo: stubRepo{history: []models.Message{{Text: "old q"}}},
		started:  make(chan struct{}),
		release:  make(chan struct{}),
	}
	controller := chat.NewController(repo, nil, nil, "finance")

	done := make(chan struct{})
	go func() {
		controller.ActivateThread(context.Background(), "t1", "")
		close(done)
	}()

	select {
	case <-repo.started:
	case <-time.After(time.Second):
		t.Fatal("history fetch never started")
	}

	view := newChatView(controller, nil, false)
	view.input.SetValue("typed during load")
	require.Nil(t, view.submit(), "composer must not dispatch while history loads")
	require.Equal(t, "typed during load", view.input.Value(), "rejected input stays in the composer")

	close(repo.release)
	<-done
	require.Len(t, controller.Snapshot().Messages, 1)
}

func TestChatView_TabCyclesFollowups(t *testing.T) {
	controller := chat.NewController(stubRepo{history: []models.Message{
		{Text: "q"},
		{Text: "a", IsAI: true, FollowupRecs: []string{"first rec", "second rec"}},
	}}, nil, nil, "finance")
	controller.ActivateThread(context.Background(), "t1", "")

	view := newChatView(controller, nil, false)
	tab := tea.KeyMsg{Type: tea.KeyTab}

	view.Update(tab)
	require.Equal(t, "first rec", view.input.Value())

	view.Update(tab)
	require.Equal(t, "second rec", view.input.Value())

	// Wraps around.
	view.Update(tab)
	require.Equal(t, "first rec", view.input.Value())

	// No suggestions: tab leaves the composer alone.
	bare := chat.NewController(stubRepo{history: []models.Message{{Text: "q"}}}, nil, nil, "finance")
	bare.ActivateThread(context.Background(), "t1", "")
	bareView := newChatView(bare, nil, false)
	bareView.input.SetValue("half-typed")
	bareView.Update(tab)
	require.Equal(t, "half-typed", bareView.input.Value())
}

func TestFormatReference(t *testing.T) {
	require.Equal(t, `  "q" (Intern @ MIT)`, formatReference(models.Reference{
		Quote: "q", Role: "Intern", University: "MIT",
	}))
	require.True(t, strings.Contains(formatReference(models.Reference{Quote: "q", Source: "WSO"}), "WSO"))
}
