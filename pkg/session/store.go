// Package session holds one immutable cohort snapshot per dashboard
// session. Identifiers are only unique within a single generation call,
// so cohorts are never shared across sessions.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mediinsight/platform/pkg/cohort"
)

var ErrNotFound = errors.New("session not found")

type Session struct {
	ID        string                     `json:"id"`
	CreatedAt time.Time                  `json:"created_at"`
	Seed      *int64                     `json:"seed,omitempty"`
	Records   []cohort.AppointmentRecord `json:"records"`
}

type Store struct {
	mu       sync.RWMutex
	sessions map[string]Session
	ttl      time.Duration
	cache    *Cache
}

type Option func(*Store)

// WithCache adds a Redis snapshot cache so sessions survive a restart of
// the service for the duration of the TTL.
func WithCache(cache *Cache) Option {
	return func(s *Store) {
		s.cache = cache
	}
}

func NewStore(ttl time.Duration, opts ...Option) *Store {
	store := &Store{
		sessions: make(map[string]Session),
		ttl:      ttl,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(store)
		}
	}
	return store
}

// Put registers a freshly generated cohort under a new session ID.
func (s *Store) Put(ctx context.Context, records []cohort.AppointmentRecord, seed *int64) Session {
	sess := Session{
		ID:        uuid.New().String(),
		CreatedAt: time.Now(),
		Seed:      seed,
		Records:   records,
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	if s.cache != nil {
		// Best effort; the in-memory copy is authoritative.
		_ = s.cache.Put(ctx, sess)
	}
	return sess
}

// Get returns the session's cohort, falling back to the snapshot cache
// when this process has no in-memory copy.
func (s *Store) Get(ctx context.Context, id string) (Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()

	if ok {
		if s.ttl > 0 && time.Since(sess.CreatedAt) > s.ttl {
			s.mu.Lock()
			delete(s.sessions, id)
			s.mu.Unlock()
			return Session{}, ErrNotFound
		}
		return sess, nil
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, id)
		if err == nil {
			s.mu.Lock()
			s.sessions[id] = cached
			s.mu.Unlock()
			return cached, nil
		}
	}
	return Session{}, ErrNotFound
}

// Count reports live sessions, for the health endpoint.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
