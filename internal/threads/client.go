// Package threads combines the remote reasoning API and the local durable
// store into one thread repository for the session controller.
//
// Durable-store writes here are bookkeeping for the sidebar. They are best
// effort by design: a failed insert or update is logged and swallowed so
// the conversation itself never stalls on local persistence.
package threads

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/kleincho/humint/internal/api"
	"github.com/kleincho/humint/internal/auth"
	"github.com/kleincho/humint/internal/db"
	"github.com/kleincho/humint/internal/logging"
	"github.com/kleincho/humint/internal/models"
)

// IdentityProvider reports the signed-in identity, nil when signed out.
type IdentityProvider interface {
	Current() *auth.Identity
}

// Client is the thread repository used by the session controller.
type Client struct {
	backend  *api.Client
	store    *db.ThreadRepository
	feedback *db.FeedbackRepository
	identity IdentityProvider
	logger   zerolog.Logger
}

// NewClient creates a thread repository client. store and feedback may be
// nil when running without a local database; all durable bookkeeping is
// skipped in that case.
func NewClient(backend *api.Client, store *db.ThreadRepository, feedback *db.FeedbackRepository, identity IdentityProvider) *Client {
	return &Client{
		backend:  backend,
		store:    store,
		feedback: feedback,
		identity: identity,
		logger:   logging.Component("threads"),
	}
}

// CreateThread mints a thread on the backend and, when signed in, records
// a thread row locally. The handle is returned even if the local insert
// fails: session continuity takes priority over bookkeeping.
func (c *Client) CreateThread(ctx context.Context, initialMessage string) (models.ThreadHandle, error) {
	handle, err := c.backend.CreateThread(ctx, initialMessage)
	if err != nil {
		return models.ThreadHandle{}, err
	}

	if identity := c.currentIdentity(); identity != nil && c.store != nil {
		thread := &models.Thread{
			ThreadID:    handle.ThreadID,
			Title:       handle.Title,
			LastMessage: initialMessage,
			OwnerID:     identity.UserID,
		}
		if err := c.store.Insert(ctx, thread); err != nil {
			c.logger.Warn().Err(err).
				Str("thread_id", handle.ThreadID).
				Msg("failed to record thread locally")
		}
	}

	return handle, nil
}

// ListThreads returns the identity's threads, newest first.
func (c *Client) ListThreads(ctx context.Context, ownerID string) ([]models.Thread, error) {
	if c.store == nil {
		return nil, nil
	}
	threads, err := c.store.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list threads: %w", err)
	}
	return threads, nil
}

// FetchMessages retrieves a thread's history in chronological order.
func (c *Client) FetchMessages(ctx context.Context, threadID string) ([]models.Message, error) {
	return c.backend.FetchMessages(ctx, threadID)
}

// SendMessage posts the user's message and returns the AI reply. When
// signed in, the thread row's last message is refreshed best effort after
// a successful send.
func (c *Client) SendMessage(ctx context.Context, req api.ChatRequest) (models.Message, error) {
	reply, err := c.backend.SendMessage(ctx, req)
	if err != nil {
		return models.Message{}, err
	}

	if identity := c.currentIdentity(); identity != nil && c.store != nil {
		if err := c.store.TouchLastMessage(ctx, req.ThreadID, req.Text); err != nil {
			c.logger.Warn().Err(err).
				Str("thread_id", req.ThreadID).
				Msg("failed to refresh thread metadata")
		}
	}

	return reply, nil
}

// SubmitFeedback stores a response rating. Write-only; never read back.
func (c *Client) SubmitFeedback(ctx context.Context, feedback models.Feedback) error {
	if c.feedback == nil {
		return nil
	}
	if err := c.feedback.Insert(ctx, &feedback); err != nil {
		return fmt.Errorf("failed to store feedback: %w", err)
	}
	return nil
}

func (c *Client) currentIdentity() *auth.Identity {
	if c.identity == nil {
		return nil
	}
	return c.identity.Current()
}
