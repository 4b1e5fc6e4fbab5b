package core

import (
	"fmt"
	"sync"
	"time"

	"github.com/vovakirdan/reversi-server/internal/utils"
)

// TokenLength is the number of alphanumeric characters in a session token.
const TokenLength = 12

// Session is what a token resolves to.
type Session struct {
	Token    string
	Room     int
	Seat     Seat
	LastSeen time.Time
}

// TokenStore maps opaque session tokens to seats. It is the only state shared
// across rooms, so every access goes through its mutex.
type TokenStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
	now      func() time.Time
}

// NewTokenStore returns an empty store using the wall clock.
func NewTokenStore() *TokenStore {
	return &TokenStore{
		sessions: make(map[string]Session),
		now:      time.Now,
	}
}

// Issue mints a fresh token bound to room and seat.
func (s *TokenStore) Issue(room int, seat Seat) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for range 8 {
		tok, err := utils.NewToken(TokenLength)
		if err != nil {
			return "", fmt.Errorf("generate token: %w", err)
		}
		if _, taken := s.sessions[tok]; taken {
			continue
		}
		s.sessions[tok] = Session{Token: tok, Room: room, Seat: seat, LastSeen: s.now()}
		return tok, nil
	}
	return "", fmt.Errorf("generate token: exhausted retries")
}

// Resolve returns the session for token, if it exists.
func (s *TokenStore) Resolve(token string) (Session, bool) {
	if token == "" {
		return Session{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[token]
	return sess, ok
}

// Touch refreshes the token's last-seen time. Unknown tokens are ignored.
func (s *TokenStore) Touch(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok {
		return false
	}
	sess.LastSeen = s.now()
	s.sessions[token] = sess
	return true
}

// Revoke deletes the token. Revoking an unknown token is a no-op.
func (s *TokenStore) Revoke(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}

// TakeIfStale revokes token only if it is still untouched within ttl.
// A heartbeat that raced the sweep keeps the session.
func (s *TokenStore) TakeIfStale(token string, ttl time.Duration) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok || !sess.LastSeen.Before(s.now().Add(-ttl)) {
		return Session{}, false
	}
	delete(s.sessions, token)
	return sess, true
}

// Expired lists sessions not touched within ttl.
func (s *TokenStore) Expired(ttl time.Duration) []Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cutoff := s.now().Add(-ttl)
	var stale []Session
	for _, sess := range s.sessions {
		if sess.LastSeen.Before(cutoff) {
			stale = append(stale, sess)
		}
	}
	return stale
}

// Len returns the number of live sessions.
func (s *TokenStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
