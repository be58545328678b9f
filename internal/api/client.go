// Package api implements the HTTP client for the HUMINT reasoning backend.
//
// The backend contract is small and opaque: thread creation mints an id and
// a generated title, the chat endpoint produces a structured reply, and the
// messages endpoint returns a thread's history newest-first.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/kleincho/humint/internal/logging"
	"github.com/kleincho/humint/internal/models"
)

const defaultTimeout = 60 * time.Second

// Client talks to the reasoning backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// Options configures a Client.
type Options struct {
	// BaseURL is the backend's base URL, without a trailing slash.
	BaseURL string

	// Timeout is the per-request timeout.
	Timeout time.Duration

	// HTTPClient overrides the underlying client (tests).
	HTTPClient *http.Client
}

// New creates a backend client.
func New(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:    base,
		httpClient: httpClient,
		logger:     logging.Component("api"),
	}, nil
}

// ChatRequest is the payload for SendMessage.
type ChatRequest struct {
	// Text is the user's message.
	Text string

	// ThreadID identifies the conversation.
	ThreadID string

	// Persona is the targeting context; empty means unset and is sent as null.
	Persona string

	// Field is the research field (finance, consulting, ...).
	Field string
}

type createThreadBody struct {
	InitialMessage string `json:"initial_message"`
}

type createThreadResponse struct {
	ThreadID string `json:"thread_id"`
	Title    string `json:"title"`
}

type chatBody struct {
	Message       string  `json:"message"`
	ThreadID      string  `json:"thread_id"`
	TargetPersona *string `json:"targetPersona"`
	Field         string  `json:"field"`
}

type wireReference struct {
	Quote           string `json:"quote"`
	Source          string `json:"source"`
	Role            string `json:"role"`
	Company         string `json:"company"`
	University      string `json:"university"`
	Type            string `json:"type"`
	LinkedInProfile string `json:"linkedinProfile"`
	WSOLink         string `json:"wsoLink"`
}

type chatResponse struct {
	MainResponse    string          `json:"mainResponse"`
	Confidence      string          `json:"confidence"`
	References      []wireReference `json:"references"`
	ReferencesCount int             `json:"referencesCount"`
	TargetPersona   string          `json:"targetPersona"`
	FollowupRecs    []string        `json:"followupRecs"`
}

type wireMessage struct {
	Text            string          `json:"text"`
	IsAI            bool            `json:"isAI"`
	IsError         bool            `json:"isError"`
	Confidence      string          `json:"confidence"`
	References      []wireReference `json:"references"`
	ReferencesCount int             `json:"referencesCount"`
	TargetPersona   string          `json:"targetPersona"`
	FollowupRecs    []string        `json:"followupRecs"`
}

// CreateThread mints a new thread and returns its id and generated title.
func (c *Client) CreateThread(ctx context.Context, initialMessage string) (models.ThreadHandle, error) {
	var resp createThreadResponse
	err := c.post(ctx, "create_thread", "/api/threads/create", createThreadBody{InitialMessage: initialMessage}, &resp)
	if err != nil {
		return models.ThreadHandle{}, err
	}
	if resp.ThreadID == "" {
		return models.ThreadHandle{}, &NetworkError{Op: "create_thread", Err: fmt.Errorf("backend returned empty thread id")}
	}

	c.logger.Debug().
		Str("thread_id", resp.ThreadID).
		Str("title", resp.Title).
		Msg("thread created")

	return models.ThreadHandle{ThreadID: resp.ThreadID, Title: resp.Title}, nil
}

// FetchMessages retrieves a thread's full history in chronological order.
// The backend sends newest-first; the client reverses. An empty or missing
// history is reported as ErrHistoryNotFound.
func (c *Client) FetchMessages(ctx context.Context, threadID string) ([]models.Message, error) {
	const op = "fetch_messages"

	endpoint := fmt.Sprintf("%s/api/threads/%s/messages", c.baseURL, url.PathEscape(threadID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrHistoryNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &NetworkError{Op: op, StatusCode: resp.StatusCode}
	}

	var wire []wireMessage
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, &NetworkError{Op: op, Err: fmt.Errorf("failed to decode history: %w", err)}
	}
	if len(wire) == 0 {
		return nil, ErrHistoryNotFound
	}

	messages := make([]models.Message, 0, len(wire))
	for i := len(wire) - 1; i >= 0; i-- {
		messages = append(messages, decodeMessage(wire[i]))
	}

	return messages, nil
}

// SendMessage posts the user's message and returns the AI reply.
func (c *Client) SendMessage(ctx context.Context, req ChatRequest) (models.Message, error) {
	if strings.TrimSpace(req.ThreadID) == "" {
		return models.Message{}, fmt.Errorf("thread id is required for sending messages")
	}

	body := chatBody{
		Message:  req.Text,
		ThreadID: req.ThreadID,
		Field:    req.Field,
	}
	if req.Persona != "" {
		persona := req.Persona
		body.TargetPersona = &persona
	}

	var resp chatResponse
	if err := c.post(ctx, "send_message", "/api/chat", body, &resp); err != nil {
		return models.Message{}, err
	}

	reply := models.Message{
		Text:            resp.MainResponse,
		IsAI:            true,
		Confidence:      models.ParseConfidence(resp.Confidence),
		References:      decodeReferences(resp.References),
		ReferencesCount: resp.ReferencesCount,
		TargetPersona:   resp.TargetPersona,
		FollowupRecs:    resp.FollowupRecs,
	}

	c.logger.Debug().
		Str("thread_id", req.ThreadID).
		Str("confidence", string(reply.Confidence)).
		Int("references", len(reply.References)).
		Msg("reply received")

	return reply, nil
}

// post sends a JSON body and decodes a JSON response.
func (c *Client) post(ctx context.Context, op, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal %s request: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return &NetworkError{Op: op, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &NetworkError{Op: op, Err: fmt.Errorf("failed to decode %s response: %w", op, err)}
	}

	return nil
}

func decodeMessage(w wireMessage) models.Message {
	return models.Message{
		Text:            w.Text,
		IsAI:            w.IsAI,
		IsError:         w.IsError,
		Confidence:      models.ParseConfidence(w.Confidence),
		References:      decodeReferences(w.References),
		ReferencesCount: w.ReferencesCount,
		TargetPersona:   w.TargetPersona,
		FollowupRecs:    w.FollowupRecs,
	}
}

func decodeReferences(wire []wireReference) []models.Reference {
	if len(wire) == 0 {
		return nil
	}
	refs := make([]models.Reference, 0, len(wire))
	for _, w := range wire {
		refs = append(refs, models.Reference{
			Quote:           w.Quote,
			Source:          w.Source,
			Role:            w.Role,
			Company:         w.Company,
			University:      w.University,
			Type:            decodeReferenceType(w.Type),
			LinkedInProfile: w.LinkedInProfile,
			WSOLink:         w.WSOLink,
		})
	}
	return refs
}

func decodeReferenceType(raw string) models.ReferenceType {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "intern":
		return models.ReferenceTypeIntern
	case "professional":
		return models.ReferenceTypeProfessional
	default:
		return models.ReferenceTypeOther
	}
}
