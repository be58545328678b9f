// Package persona holds the targeting persona shared by the chat session.
//
// The persona is advisory context, not integrity-critical state: adapter
// failures degrade silently to in-memory behavior so a broken durable store
// never blocks the conversation.
package persona

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/kleincho/humint/internal/db"
	"github.com/kleincho/humint/internal/logging"
)

// Adapter persists the persona string across sessions.
type Adapter interface {
	// Load returns the stored persona, or "" if never set.
	Load(ctx context.Context) (string, error)

	// Store writes the persona.
	Store(ctx context.Context, value string) error
}

// Store owns the persona value. Reads are frequent (every send), writes
// come from UI input only.
type Store struct {
	mu      sync.RWMutex
	value   string
	adapter Adapter
	logger  zerolog.Logger
}

// New creates a Store backed by the given adapter, loading any previously
// persisted value. A nil adapter yields a purely in-memory store.
func New(adapter Adapter) *Store {
	s := &Store{
		adapter: adapter,
		logger:  logging.Component("persona"),
	}

	if adapter != nil {
		value, err := adapter.Load(context.Background())
		if err != nil {
			s.logger.Debug().Err(err).Msg("persona load failed, starting empty")
		} else {
			s.value = value
		}
	}

	return s
}

// Get returns the current persona, "" meaning unset.
func (s *Store) Get() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set updates the persona in memory and, best effort, in the durable store.
func (s *Store) Set(value string) {
	s.mu.Lock()
	s.value = value
	adapter := s.adapter
	s.mu.Unlock()

	if adapter == nil {
		return
	}
	if err := adapter.Store(context.Background(), value); err != nil {
		s.logger.Debug().Err(err).Msg("persona persist failed, keeping in-memory value")
	}
}

// KVAdapter persists the persona in the durable key-value store.
type KVAdapter struct {
	kv *db.KVRepository
}

// NewKVAdapter creates an adapter over the kv table.
func NewKVAdapter(kv *db.KVRepository) *KVAdapter {
	return &KVAdapter{kv: kv}
}

// Load implements Adapter.
func (a *KVAdapter) Load(ctx context.Context) (string, error) {
	value, err := a.kv.Get(ctx, db.KeyTargetPersona)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return "", nil
		}
		return "", err
	}
	return value, nil
}

// Store implements Adapter.
func (a *KVAdapter) Store(ctx context.Context, value string) error {
	if value == "" {
		return a.kv.Delete(ctx, db.KeyTargetPersona)
	}
	return a.kv.Set(ctx, db.KeyTargetPersona, value)
}

// MemoryAdapter is an in-memory Adapter for tests.
type MemoryAdapter struct {
	mu    sync.Mutex
	value string

	// FailStore makes Store return an error, for degradation tests.
	FailStore error
}

// Load implements Adapter.
func (a *MemoryAdapter) Load(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.value, nil
}

// Store implements Adapter.
func (a *MemoryAdapter) Store(ctx context.Context, value string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.FailStore != nil {
		return a.FailStore
	}
	a.value = value
	return nil
}
