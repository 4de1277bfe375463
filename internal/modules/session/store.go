package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrNotFound = errors.New("session not found")

// Store keeps live checkout sessions. Sessions are page-lifetime scoped;
// the TTL only bounds leakage from abandoned modals.
type Store interface {
	Put(ctx context.Context, s *Checkout) error
	Get(ctx context.Context, id string) (*Checkout, error)
	// BeginSubmit atomically transitions the stored session from open to
	// submitting and returns the updated copy. Concurrent callers race on
	// the store, not on their own stale reads, so exactly one wins;
	// the losers get ErrSubmitInFlight.
	BeginSubmit(ctx context.Context, id string) (*Checkout, error)
	Delete(ctx context.Context, id string) error
}

type Memory struct {
	mu  sync.Mutex
	ttl time.Duration
	m   map[string]memoryEntry
}

type memoryEntry struct {
	sess      Checkout
	expiresAt time.Time
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{ttl: ttl, m: make(map[string]memoryEntry)}
}

func (s *Memory) Put(ctx context.Context, c *Checkout) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[c.ID] = memoryEntry{sess: *c, expiresAt: time.Now().Add(s.ttl)}
	return nil
}

func (s *Memory) Get(ctx context.Context, id string) (*Checkout, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.m[id]
	if !ok {
		return nil, ErrNotFound
	}
	if time.Now().After(e.expiresAt) {
		delete(s.m, id)
		return nil, ErrNotFound
	}
	sess := e.sess
	return &sess, nil
}

func (s *Memory) BeginSubmit(ctx context.Context, id string) (*Checkout, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.m[id]
	if !ok {
		return nil, ErrNotFound
	}
	if time.Now().After(e.expiresAt) {
		delete(s.m, id)
		return nil, ErrNotFound
	}

	if err := e.sess.BeginSubmit(); err != nil {
		return nil, err
	}
	s.m[id] = e

	sess := e.sess
	return &sess, nil
}

func (s *Memory) Delete(ctx context.Context, id string) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, id)
	return nil
}
