package broadcast

import (
	"sync"

	"premium-bot/internal/media"
	"premium-bot/internal/metrics"
)

// State is the broadcast session state of one admin.
type State string

const (
	StateIdle       State = "idle"
	StateCollecting State = "collecting"
)

// Session holds the messages an admin collected for an all-users broadcast.
type Session struct {
	AdminID  int64
	Messages []media.Message
}

// SessionStore keeps at most one session per admin. Absence of a session means Idle.
type SessionStore struct {
	sessions map[int64]*Session
	mu       sync.RWMutex
}

// NewSessionStore creates an empty session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[int64]*Session)}
}

// Start opens a fresh session for adminID, discarding any previous one.
// It reports whether a previous session existed.
func (s *SessionStore) Start(adminID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, existed := s.sessions[adminID]
	s.sessions[adminID] = &Session{AdminID: adminID, Messages: []media.Message{}}
	if !existed {
		metrics.ActiveSessions.Inc()
	}
	return existed
}

// State returns the state of adminID's session.
func (s *SessionStore) State(adminID int64) State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.sessions[adminID]; ok {
		return StateCollecting
	}
	return StateIdle
}

// Append adds m to the open session and returns the new message count.
// It returns false when adminID has no open session.
func (s *SessionStore) Append(adminID int64, m media.Message) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[adminID]
	if !ok {
		return 0, false
	}
	session.Messages = append(session.Messages, m)
	return len(session.Messages), true
}

// Take closes adminID's session and returns its messages in one step, so nothing can be
// appended between reading and closing. An empty session is left open and returns no messages.
// The second result reports whether a session was open.
func (s *SessionStore) Take(adminID int64) ([]media.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[adminID]
	if !ok {
		return nil, false
	}
	if len(session.Messages) == 0 {
		return nil, true
	}
	delete(s.sessions, adminID)
	metrics.ActiveSessions.Dec()
	return session.Messages, true
}

// End discards adminID's session, returning it to Idle.
func (s *SessionStore) End(adminID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[adminID]; ok {
		delete(s.sessions, adminID)
		metrics.ActiveSessions.Dec()
	}
}
