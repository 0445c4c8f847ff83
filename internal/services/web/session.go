package web

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"sync"
	"time"

	"github.com/leadfunnel/personaquiz/internal/quiz"
	"github.com/leadfunnel/personaquiz/internal/services/web/platform/requestmeta"
	"github.com/leadfunnel/personaquiz/internal/services/web/platform/sessioncookie"
)

// sessionTTL bounds how long an idle visitor keeps their quiz state.
const sessionTTL = 2 * time.Hour

// visitorSession pairs a quiz session with its idle deadline. mu serializes
// handler access to the quiz state; a double-submitted form would otherwise
// race on the answers map.
type visitorSession struct {
	mu        sync.Mutex
	quiz      *quiz.Session
	expiresAt time.Time
}

// sessionStore is a thread-safe in-memory store of visitor quiz sessions.
type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*visitorSession
	ttl      time.Duration
}

// newSessionStore creates an empty session store.
func newSessionStore() *sessionStore {
	return &sessionStore{
		sessions: make(map[string]*visitorSession),
		ttl:      sessionTTL,
	}
}

// create stores a fresh quiz session and returns it with its ID.
func (s *sessionStore) create(sess *quiz.Session) (*visitorSession, string) {
	id := randomHex(16)
	visitor := &visitorSession{
		quiz:      sess,
		expiresAt: time.Now().Add(s.ttl),
	}
	s.mu.Lock()
	s.sessions[id] = visitor
	s.prune()
	s.mu.Unlock()
	return visitor, id
}

// get returns the visitor session for an ID, or nil if missing or expired.
// A hit extends the idle deadline.
func (s *sessionStore) get(id string) *visitorSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	visitor, ok := s.sessions[id]
	if !ok {
		return nil
	}
	if time.Now().After(visitor.expiresAt) {
		delete(s.sessions, id)
		return nil
	}
	visitor.expiresAt = time.Now().Add(s.ttl)
	return visitor
}

// prune drops expired sessions. Caller holds the lock.
func (s *sessionStore) prune() {
	now := time.Now()
	for id, visitor := range s.sessions {
		if now.After(visitor.expiresAt) {
			delete(s.sessions, id)
		}
	}
}

// ensureSession returns the visitor's session, creating one (and setting
// the cookie) on first contact. Entry-query context is captured only at
// creation, so mid-quiz links cannot reassign the operator. Callers hold
// the visitor's mutex while touching the quiz state.
func (s *Server) ensureSession(w http.ResponseWriter, r *http.Request) *visitorSession {
	if id, ok := sessioncookie.Read(r); ok {
		if visitor := s.sessions.get(id); visitor != nil {
			return visitor
		}
	}
	sess := quiz.NewSession()
	captureEntryParams(sess, r)
	visitor, id := s.sessions.create(sess)
	sessioncookie.Write(w, r, id)
	return visitor
}

// captureEntryParams snapshots tracking parameters into a new session,
// falling back to the funnel defaults.
func captureEntryParams(sess *quiz.Session, r *http.Request) {
	sess.Ref = requestmeta.QueryValue(r, "ref", "master")
	sess.Mode = requestmeta.QueryValue(r, "mode", "A")
	sess.Funnel = requestmeta.QueryValue(r, "cl", "cl3")
	sess.Debug = requestmeta.QueryValue(r, "debug", "0") == "1"
}

// randomHex generates a cryptographically random hex string of n bytes.
func randomHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
