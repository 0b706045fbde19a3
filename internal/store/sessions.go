package store

import (
	"sync"

	"github.com/gameplay-insights/backend/internal/models"
)

// SessionStore is a process-lifetime registry of conversation sessions.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
}

// NewSessionStore creates an empty session registry.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*models.Session)}
}

// Put inserts or replaces a session.
func (s *SessionStore) Put(sess *models.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.SessionID] = sess
}

// Get returns a copy of the session, or nil if unknown.
func (s *SessionStore) Get(sessionID string) *models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil
	}
	cp := *sess
	cp.Messages = append([]models.Message(nil), sess.Messages...)
	return &cp
}

// Append adds transcript entries to a session. Returns false if unknown.
func (s *SessionStore) Append(sessionID string, msgs ...models.Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return false
	}
	sess.Messages = append(sess.Messages, msgs...)
	return true
}

// Delete removes a session. Idempotent.
func (s *SessionStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

// Len returns the number of active sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
