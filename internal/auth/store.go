// Package auth tracks the signed-in identity for the client.
//
// There is no credential handling here: the hosted auth provider hands the
// client a verified identity, and this package only caches it across runs
// and announces sign-in/sign-out transitions to interested components.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/kleincho/humint/internal/db"
	"github.com/kleincho/humint/internal/logging"
)

// Identity is a signed-in user.
type Identity struct {
	// UserID is the provider-issued stable identifier.
	UserID string `json:"user_id"`

	// Email is the account email.
	Email string `json:"email,omitempty"`

	// Name is the display name, if the provider supplied one.
	Name string `json:"name,omitempty"`
}

// Listener receives identity transitions. prev and cur may each be nil.
type Listener func(prev, cur *Identity)

// Store caches the current identity and notifies listeners of changes.
type Store struct {
	mu        sync.Mutex
	current   *Identity
	listeners []Listener
	kv        *db.KVRepository
	logger    zerolog.Logger
}

// NewStore creates a Store, restoring a cached identity from the key-value
// store when one exists. kv may be nil for a purely in-memory store.
func NewStore(kv *db.KVRepository) *Store {
	s := &Store{
		kv:     kv,
		logger: logging.Component("auth"),
	}

	if kv != nil {
		raw, err := kv.Get(context.Background(), db.KeyIdentity)
		if err != nil {
			if !errors.Is(err, db.ErrKeyNotFound) {
				s.logger.Warn().Err(err).Msg("failed to restore cached identity")
			}
		} else {
			var identity Identity
			if err := json.Unmarshal([]byte(raw), &identity); err != nil {
				s.logger.Warn().Err(err).Msg("cached identity is corrupt, discarding")
				_ = kv.Delete(context.Background(), db.KeyIdentity)
			} else {
				s.current = &identity
			}
		}
	}

	return s
}

// Current returns the signed-in identity, or nil.
func (s *Store) Current() *Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	identity := *s.current
	return &identity
}

// Subscribe registers a listener for identity transitions.
func (s *Store) Subscribe(listener Listener) {
	if listener == nil {
		return
	}
	s.mu.Lock()
	s.listeners = append(s.listeners, listener)
	s.mu.Unlock()
}

// SignIn records a signed-in identity and caches it.
func (s *Store) SignIn(identity Identity) {
	if identity.UserID == "" {
		return
	}
	cur := identity
	s.transition(&cur)
}

// SignOut clears the identity and the cache.
func (s *Store) SignOut() {
	s.transition(nil)
}

func (s *Store) transition(cur *Identity) {
	s.mu.Lock()
	prev := s.current
	s.current = cur
	listeners := make([]Listener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	s.persist(cur)

	for _, listener := range listeners {
		listener(prev, cur)
	}
}

// persist caches the identity best effort; a failed write only costs the
// user a sign-in next launch.
func (s *Store) persist(identity *Identity) {
	if s.kv == nil {
		return
	}

	ctx := context.Background()
	if identity == nil {
		if err := s.kv.Delete(ctx, db.KeyIdentity); err != nil {
			s.logger.Warn().Err(err).Msg("failed to clear cached identity")
		}
		return
	}

	raw, err := json.Marshal(identity)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode identity")
		return
	}
	if err := s.kv.Set(ctx, db.KeyIdentity, string(raw)); err != nil {
		s.logger.Warn().Err(err).Msg("failed to cache identity")
	}
}
