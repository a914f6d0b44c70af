package service

import (
	"sync"
	"time"

	"whatsappmgr/internal/errors"
	"whatsappmgr/internal/models"
)

// session is the aggregate holding all mutable state for one messaging
// session: lifecycle status, pairing bookkeeping, and the message store.
// All fields behind mu; operations on one session never take another
// session's lock.
type session struct {
	id        string
	createdAt time.Time

	mu         sync.Mutex
	status     models.SessionStatus
	pairing    *models.PairingRecord
	lastQRHash string
	lastQRTime time.Time
	store      *messageStore
}

func newSession(id string, storeCapacity int) *session {
	return &session{
		id:        id,
		createdAt: time.Now(),
		status:    models.SessionStatusInitializing,
		store:     newMessageStore(storeCapacity),
	}
}

// clearPairing drops the pairing record and all dedup bookkeeping.
// Caller must hold s.mu.
func (s *session) clearPairing() {
	s.pairing = nil
	s.lastQRHash = ""
	s.lastQRTime = time.Time{}
}

// summary takes a consistent snapshot of the session. Caller must not
// hold s.mu.
func (s *session) summary() models.SessionSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.SessionSummary{
		ID:             s.id,
		Status:         s.status,
		HasPairingCode: s.pairing != nil,
		MessageCount:   s.store.len(),
		CreatedAt:      s.createdAt,
	}
}

// registry owns the id -> session map. Its lock guards only the map
// itself; per-session state is guarded by each session's own mutex.
type registry struct {
	mu       sync.RWMutex
	sessions map[string]*session
}

func newRegistry() *registry {
	return &registry{
		sessions: make(map[string]*session),
	}
}

func (r *registry) create(id string, storeCapacity int) (*session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[id]; exists {
		return nil, errors.New(errors.ErrCodeAlreadyExists, "session already exists").WithContext("session_id", id)
	}

	s := newSession(id, storeCapacity)
	r.sessions[id] = s
	return s, nil
}

func (r *registry) get(id string) (*session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, exists := r.sessions[id]
	if !exists {
		return nil, errors.New(errors.ErrCodeNotFound, "session not found").WithContext("session_id", id)
	}
	return s, nil
}

// remove deletes the session from the map and returns it. All session
// state goes with it; the caller is responsible for transport teardown.
func (r *registry) remove(id string) (*session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, exists := r.sessions[id]
	if !exists {
		return nil, errors.New(errors.ErrCodeNotFound, "session not found").WithContext("session_id", id)
	}
	delete(r.sessions, id)
	return s, nil
}

func (r *registry) list() []*session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out
}

// drain removes every session from the map and returns them
func (r *registry) drain() []*session {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	r.sessions = make(map[string]*session)
	return out
}

func (r *registry) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
