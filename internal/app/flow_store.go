package app

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cinefilo/booking-flow/internal/booking"
)

type flowEntry struct {
	mu       sync.Mutex
	session  *booking.Session
	lastSeen atomic.Int64
}

// FlowStore holds the in-flight booking flows, one per visitor session.
// Flow state is interactive draft data, not a reservation: nothing here
// holds seats upstream, so losing an entry costs the visitor a re-entry
// of the flow and nothing more. The per-entry lock serializes
// transitions so a flow never has more than one pending at a time.
type FlowStore struct {
	mu      sync.RWMutex
	entries map[string]*flowEntry
	ttl     time.Duration
}

func NewFlowStore(ttl time.Duration) *FlowStore {
	return &FlowStore{
		entries: make(map[string]*flowEntry),
		ttl:     ttl,
	}
}

// Put binds a new flow to the given session token, replacing any
// previous one.
func (s *FlowStore) Put(token string, session *booking.Session) {
	entry := &flowEntry{session: session}
	entry.lastSeen.Store(time.Now().UnixNano())

	s.mu.Lock()
	s.entries[token] = entry
	s.mu.Unlock()
}

// Acquire returns the flow bound to the token with its transition lock
// held. The caller must call release when done with the session.
func (s *FlowStore) Acquire(token string) (session *booking.Session, release func(), ok bool) {
	s.mu.RLock()
	entry, ok := s.entries[token]
	s.mu.RUnlock()

	if !ok {
		return nil, nil, false
	}

	entry.mu.Lock()
	entry.lastSeen.Store(time.Now().UnixNano())

	return entry.session, entry.mu.Unlock, true
}

func (s *FlowStore) Delete(token string) {
	s.mu.Lock()
	delete(s.entries, token)
	s.mu.Unlock()
}

func (s *FlowStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}

// Sweep drops flows idle for longer than the store TTL. It runs until
// the context is cancelled.
func (s *FlowStore) Sweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.dropExpired(time.Now())
		}
	}
}

func (s *FlowStore) dropExpired(now time.Time) {
	cutoff := now.Add(-s.ttl).UnixNano()

	s.mu.Lock()
	defer s.mu.Unlock()

	for token, entry := range s.entries {
		if entry.lastSeen.Load() < cutoff {
			delete(s.entries, token)
		}
	}
}
