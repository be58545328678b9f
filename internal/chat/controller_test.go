package chat

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kleincho/humint/internal/api"
	"github.com/kleincho/humint/internal/auth"
	"github.com/kleincho/humint/internal/models"
)

type fakeRepo struct {
	mu sync.Mutex

	createHandle models.ThreadHandle
	createErr    error

	history    []models.Message
	historyErr error

	sendReply models.Message
	sendErr   error
	sendCalls []api.ChatRequest

	feedback []models.Feedback

	// When set, SendMessage signals sendStarted and then waits on
	// sendRelease before returning. historyStarted/historyRelease do the
	// same for FetchMessages.
	sendStarted    chan struct{}
	sendRelease    chan struct{}
	historyStarted chan struct{}
	historyRelease chan struct{}
}

func (f *fakeRepo) CreateThread(ctx context.Context, initialMessage string) (models.ThreadHandle, error) {
	return f.createHandle, f.createErr
}

func (f *fakeRepo) FetchMessages(ctx context.Context, threadID string) ([]models.Message, error) {
	f.mu.Lock()
	started := f.historyStarted
	release := f.historyRelease
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
		<-release
	}
	return f.history, f.historyErr
}

func (f *fakeRepo) SendMessage(ctx context.Context, req api.ChatRequest) (models.Message, error) {
	f.mu.Lock()
	f.sendCalls = append(f.sendCalls, req)
	started := f.sendStarted
	release := f.sendRelease
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
		<-release
	}
	return f.sendReply, f.sendErr
}

func (f *fakeRepo) SubmitFeedback(ctx context.Context, feedback models.Feedback) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.feedback = append(f.feedback, feedback)
	return nil
}

func (f *fakeRepo) calls() []api.ChatRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	calls := make([]api.ChatRequest, len(f.sendCalls))
	copy(calls, f.sendCalls)
	return calls
}

type fixedPersona struct {
	value string
}

func (p fixedPersona) Get() string { return p.value }

type navRecorder struct {
	mu    sync.Mutex
	shown int
}

func (n *navRecorder) ShowThreadPicker() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.shown++
}

func (n *navRecorder) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.shown
}

func newTestController(repo *fakeRepo) (*Controller, *navRecorder) {
	nav := &navRecorder{}
	return NewController(repo, fixedPersona{}, nav, "finance"), nav
}

func TestStartConversation(t *testing.T) {
	repo := &fakeRepo{
		createHandle: models.ThreadHandle{ThreadID: "t1", Title: "Generated"},
		sendReply:    models.Message{Text: "reply", IsAI: true, Confidence: models.ConfidenceHigh},
	}
	controller, _ := newTestController(repo)

	handle, err := controller.StartConversation(context.Background(), "Hello")
	require.NoError(t, err)
	require.Equal(t, "t1", handle.ThreadID)

	session := controller.Snapshot()
	require.Equal(t, "t1", session.ActiveThreadID)
	require.Equal(t, StateReady, session.State)
	require.Len(t, session.Messages, 2)
	require.Equal(t, "Hello", session.Messages[0].Text)
	require.False(t, session.Messages[0].IsAI)
	require.Equal(t, "reply", session.Messages[1].Text)
	require.True(t, session.Messages[1].IsAI)

	calls := repo.calls()
	require.Len(t, calls, 1)
	require.Equal(t, "t1", calls[0].ThreadID)
	require.Equal(t, "finance", calls[0].Field)
}

func TestStartConversation_EmptyInput(t *testing.T) {
	controller, _ := newTestController(&fakeRepo{})

	_, err := controller.StartConversation(context.Background(), "   ")
	require.Error(t, err)
	require.Empty(t, controller.Snapshot().Messages)
}

func TestActivateThread_RedispatchIsNoOp(t *testing.T) {
	repo := &fakeRepo{sendReply: models.Message{Text: "reply", IsAI: true}}
	controller, _ := newTestController(repo)

	controller.ActivateThread(context.Background(), "t1", "Hello")
	controller.ActivateThread(context.Background(), "t1", "Hello")

	session := controller.Snapshot()
	require.Len(t, session.Messages, 2, "re-dispatched activation must not duplicate the initial message")
	require.Len(t, repo.calls(), 1)
}

func TestActivateThread_ResumeLoadsHistory(t *testing.T) {
	repo := &fakeRepo{history: []models.Message{
		{Text: "q1"},
		{Text: "a1", IsAI: true},
		{Text: "q2"},
	}}
	controller, _ := newTestController(repo)

	controller.ActivateThread(context.Background(), "t1", "")

	session := controller.Snapshot()
	require.Equal(t, StateReady, session.State)
	require.False(t, session.IsLoading)
	require.Len(t, session.Messages, 3)
	require.Equal(t, "q1", session.Messages[0].Text)
	require.Empty(t, repo.calls(), "resume must not send anything")
}

func TestActivateThread_HistoryFailureShowsErrorEntry(t *testing.T) {
	repo := &fakeRepo{historyErr: &api.NetworkError{Op: "fetch messages", StatusCode: 502}}
	controller, _ := newTestController(repo)

	controller.ActivateThread(context.Background(), "t1", "")

	session := controller.Snapshot()
	require.Equal(t, StateReady, session.State)
	require.Len(t, session.Messages, 1)
	require.True(t, session.Messages[0].IsError)
}

func TestSend_SingleFlight(t *testing.T) {
	repo := &fakeRepo{sendReply: models.Message{Text: "reply", IsAI: true}}
	controller, _ := newTestController(repo)
	controller.ActivateThread(context.Background(), "t1", "Hello")

	repo.mu.Lock()
	repo.sendStarted = make(chan struct{})
	repo.sendRelease = make(chan struct{})
	repo.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		done <- controller.Send(context.Background(), "slow question")
	}()

	select {
	case <-repo.sendStarted:
	case <-time.After(time.Second):
		t.Fatal("send never reached the backend")
	}

	require.ErrorIs(t, controller.Send(context.Background(), "impatient retry"), ErrSendInFlight)

	session := controller.Snapshot()
	require.True(t, session.SendInFlight)
	require.Len(t, session.Messages, 3, "rejected send must not append a message")

	close(repo.sendRelease)
	require.NoError(t, <-done)

	session = controller.Snapshot()
	require.False(t, session.SendInFlight)
	require.Equal(t, StateReady, session.State)
	require.Len(t, session.Messages, 4)
}

func TestSend_RejectedWhileHistoryLoads(t *testing.T) {
	repo := &fakeRepo{
		history: []models.Message{
			{Text: "old q"},
			{Text: "old a", IsAI: true},
		},
		sendReply: models.Message{Text: "reply", IsAI: true},
	}
	controller, _ := newTestController(repo)

	repo.mu.Lock()
	repo.historyStarted = make(chan struct{})
	repo.historyRelease = make(chan struct{})
	repo.mu.Unlock()

	done := make(chan struct{})
	go func() {
		controller.ActivateThread(context.Background(), "t1", "")
		close(done)
	}()

	select {
	case <-repo.historyStarted:
	case <-time.After(time.Second):
		t.Fatal("history fetch never started")
	}

	// A send accepted here would be erased when the fetched history lands.
	require.ErrorIs(t, controller.Send(context.Background(), "new question"), ErrHistoryLoading)
	require.Empty(t, repo.calls(), "rejected send must not reach the backend")

	close(repo.historyRelease)
	<-done

	session := controller.Snapshot()
	require.Equal(t, StateReady, session.State)
	require.False(t, session.SendInFlight)
	require.Len(t, session.Messages, 2)
	require.Equal(t, "old q", session.Messages[0].Text)
	require.Equal(t, "old a", session.Messages[1].Text)

	// Once the history has landed, sends append on top of it.
	require.NoError(t, controller.Send(context.Background(), "new question"))
	messages := controller.Snapshot().Messages
	require.Len(t, messages, 4)
	require.Equal(t, "new question", messages[2].Text)
	require.Equal(t, "reply", messages[3].Text)
}

func TestSend_FailureReleasesGuard(t *testing.T) {
	repo := &fakeRepo{sendErr: &api.NetworkError{Op: "send message", StatusCode: 500}}
	controller, _ := newTestController(repo)
	controller.ActivateThread(context.Background(), "t1", "")

	require.NoError(t, controller.Send(context.Background(), "question"))

	session := controller.Snapshot()
	require.False(t, session.SendInFlight)
	require.Len(t, session.Messages, 2)
	require.Equal(t, "question", session.Messages[0].Text)
	require.True(t, session.Messages[1].IsError)

	// The guard is free again: the retry reaches the backend.
	require.NoError(t, controller.Send(context.Background(), "retry"))
	require.Len(t, repo.calls(), 2)
}

func TestSend_RequiresActiveThread(t *testing.T) {
	controller, _ := newTestController(&fakeRepo{})
	require.ErrorIs(t, controller.Send(context.Background(), "hello"), ErrNoActiveThread)
}

func TestSend_PersonaReadAtSendTime(t *testing.T) {
	repo := &fakeRepo{sendReply: models.Message{Text: "reply", IsAI: true}}
	nav := &navRecorder{}
	controller := NewController(repo, fixedPersona{value: "PE Analyst"}, nav, "finance")
	controller.ActivateThread(context.Background(), "t1", "")

	require.NoError(t, controller.Send(context.Background(), "question"))

	calls := repo.calls()
	require.Len(t, calls, 1)
	require.Equal(t, "PE Analyst", calls[0].Persona)
}

func TestReset_DiscardsStaleReply(t *testing.T) {
	repo := &fakeRepo{sendReply: models.Message{Text: "late reply", IsAI: true}}
	controller, _ := newTestController(repo)
	controller.ActivateThread(context.Background(), "t1", "")

	repo.mu.Lock()
	repo.sendStarted = make(chan struct{})
	repo.sendRelease = make(chan struct{})
	repo.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		done <- controller.Send(context.Background(), "question")
	}()

	select {
	case <-repo.sendStarted:
	case <-time.After(time.Second):
		t.Fatal("send never reached the backend")
	}

	controller.Reset()

	close(repo.sendRelease)
	require.NoError(t, <-done)

	session := controller.Snapshot()
	require.Equal(t, StateIdle, session.State)
	require.Empty(t, session.ActiveThreadID)
	require.Empty(t, session.Messages, "reply from a superseded session must be discarded")
	require.False(t, session.SendInFlight)
}

func TestSelectThread_NilReturnsToPicker(t *testing.T) {
	repo := &fakeRepo{sendReply: models.Message{Text: "reply", IsAI: true}}
	controller, nav := newTestController(repo)
	controller.ActivateThread(context.Background(), "t1", "Hello")

	controller.SelectThread(context.Background(), nil)

	session := controller.Snapshot()
	require.Equal(t, StateIdle, session.State)
	require.Empty(t, session.Messages)
	require.Equal(t, 1, nav.count())
}

func TestHandleIdentityChange(t *testing.T) {
	repo := &fakeRepo{sendReply: models.Message{Text: "reply", IsAI: true}}
	controller, nav := newTestController(repo)
	controller.ActivateThread(context.Background(), "t1", "Hello")

	signedIn := &auth.Identity{UserID: "u1"}

	// Sign-in leaves the session alone.
	controller.HandleIdentityChange(nil, signedIn)
	require.Equal(t, "t1", controller.Snapshot().ActiveThreadID)
	require.Equal(t, 0, nav.count())

	// Sign-out resets and returns to the picker.
	controller.HandleIdentityChange(signedIn, nil)
	session := controller.Snapshot()
	require.Equal(t, StateIdle, session.State)
	require.Empty(t, session.ActiveThreadID)
	require.Empty(t, session.Messages)
	require.Equal(t, 1, nav.count())
}

func TestSubmitFeedback(t *testing.T) {
	repo := &fakeRepo{history: []models.Message{
		{Text: "question"},
		{Text: "answer", IsAI: true},
	}}
	controller, _ := newTestController(repo)
	controller.ActivateThread(context.Background(), "t1", "")

	require.NoError(t, controller.SubmitFeedback(context.Background(), 1, models.FeedbackLike))
	require.Len(t, repo.feedback, 1)
	require.Equal(t, models.FeedbackLike, repo.feedback[0].Choice)
	require.Equal(t, "answer", repo.feedback[0].Response.Text)

	require.Error(t, controller.SubmitFeedback(context.Background(), 0, models.FeedbackLike), "user messages cannot be rated")
	require.Error(t, controller.SubmitFeedback(context.Background(), 9, models.FeedbackLike))
}
