package session

import (
	"context"
	"log"
	"sync"
	"time"

	"go-openclaw-cv-sender/internal/models"
)

const DefaultIdleTTL = 30 * time.Minute

type entry struct {
	mu       sync.Mutex //held by the handler currently processing this session
	session  models.Session
	lastSeen time.Time
	refs     int //handles holding or waiting for mu, guarded by Store.mu
}

// Store keeps one Session per conversation in memory.
// Access to a single key is serialized, different keys never block each other.
type Store struct {
	mu      sync.Mutex
	entries map[models.SessionKey]*entry
	idleTTL time.Duration
	now     func() time.Time
}

// NewStore creates an empty store. Entries idle for longer than idleTTL
// are dropped by Evict.
func NewStore(idleTTL time.Duration) *Store {
	if idleTTL <= 0 {
		idleTTL = DefaultIdleTTL
	}
	return &Store{
		entries: make(map[models.SessionKey]*entry),
		idleTTL: idleTTL,
		now:     time.Now,
	}
}

// Handle is exclusive access to one session until Release is called
type Handle struct {
	store   *Store
	key     models.SessionKey
	e       *entry
	discard bool
}

// Acquire blocks until no other handler holds key
func (s *Store) Acquire(key models.SessionKey) *Handle {
	s.mu.Lock()
	e, ok := s.entries[key]
	if !ok {
		e = &entry{session: models.NewSession(), lastSeen: s.now()}
		s.entries[key] = e
	}
	e.refs++
	s.mu.Unlock()

	e.mu.Lock()
	return &Handle{store: s, key: key, e: e}
}

func (h *Handle) Session() models.Session {
	return h.e.session.Clone()
}

func (h *Handle) Put(sess models.Session) {
	h.e.session = sess.Clone()
	h.discard = false
}

// Reset drops the session once the handle is released
func (h *Handle) Reset() {
	h.e.session = models.NewSession()
	h.discard = true
}

func (h *Handle) Get(f models.Field) (string, bool) {
	return h.e.session.Get(f)
}

func (h *Handle) Set(f models.Field, value string) {
	h.e.session.Set(f, value)
	h.discard = false
}

func (h *Handle) Release() {
	s := h.store
	h.e.mu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	h.e.refs--
	h.e.lastSeen = s.now()
	if h.discard && h.e.refs == 0 && s.entries[h.key] == h.e {
		delete(s.entries, h.key)
	}
}

func (s *Store) Get(key models.SessionKey, f models.Field) (string, bool) {
	h := s.Acquire(key)
	defer h.Release()
	return h.Get(f)
}

func (s *Store) Set(key models.SessionKey, f models.Field, value string) {
	h := s.Acquire(key)
	defer h.Release()
	h.Set(f, value)
}

func (s *Store) Reset(key models.SessionKey) {
	h := s.Acquire(key)
	defer h.Release()
	h.Reset()
}

func (s *Store) IdleTTL() time.Duration {
	return s.idleTTL
}

// Len returns the number of sessions currently kept
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Evict removes sessions idle for longer than the TTL that nobody holds
func (s *Store) Evict() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.idleTTL)
	removed := 0
	for key, e := range s.entries {
		if e.refs == 0 && e.lastSeen.Before(cutoff) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

// Run evicts idle sessions every interval until ctx is done
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Evict(); n > 0 {
				log.Printf("🧹 Evicted %d idle sessions (%d active)", n, s.Len())
			}
		}
	}
}
