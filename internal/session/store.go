package session

import (
	"log"
	"sync"
	"time"
)

// Store is the sole unit of cross-turn memory: a keyed map of sessions with
// per-key mutual exclusion. Two turns for the same key are serialized; turns
// for different keys run in parallel. Sessions idle longer than the TTL are
// evicted by a janitor goroutine.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*entry
	ttl      time.Duration
	done     chan struct{}
	stopOnce sync.Once
}

type entry struct {
	mu       sync.Mutex
	sess     *Session
	lastSeen time.Time
}

// NewStore creates a store. A zero ttl disables eviction.
func NewStore(ttl time.Duration) *Store {
	s := &Store{
		sessions: make(map[string]*entry),
		ttl:      ttl,
		done:     make(chan struct{}),
	}
	if ttl > 0 {
		go s.janitor()
	}
	return s
}

// Acquire returns the session for id, creating it on first use, with its
// per-key lock held. The caller must call release when the turn is done.
// Calling Acquire twice without mutating yields an unchanged session.
func (s *Store) Acquire(id string, userID int) (sess *Session, release func()) {
	s.mu.Lock()
	e, ok := s.sessions[id]
	if !ok {
		e = &entry{sess: &Session{ID: id, UserID: userID, Mode: Idle{}}}
		s.sessions[id] = e
		log.Printf("[session] created session %s", id)
	}
	e.lastSeen = time.Now()
	s.mu.Unlock()

	e.mu.Lock()
	return e.sess, e.mu.Unlock
}

// Len reports how many sessions are currently live.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Close stops the janitor.
func (s *Store) Close() {
	s.stopOnce.Do(func() { close(s.done) })
}

func (s *Store) janitor() {
	interval := s.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-s.done:
			return
		case now := <-t.C:
			s.evictIdle(now)
		}
	}
}

// evictIdle drops sessions unused for longer than the TTL. An entry whose
// lock is held is mid-turn and is skipped until the next sweep.
func (s *Store) evictIdle(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.sessions {
		if now.Sub(e.lastSeen) < s.ttl {
			continue
		}
		if !e.mu.TryLock() {
			continue
		}
		e.mu.Unlock()
		delete(s.sessions, id)
		log.Printf("[session] evicted idle session %s", id)
	}
}
