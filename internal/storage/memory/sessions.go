package memory

import (
	"context"
	"sync"
	"time"

	"github.com/mcoot/morpion/internal/dependencies/clock"
	"github.com/mcoot/morpion/internal/model"
	"github.com/mcoot/morpion/internal/storage"
)

// SessionStore keeps sessions in a map for the lifetime of the process
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*model.Session
}

// NewSessionStore creates an empty in-memory session store
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*model.Session),
	}
}

var _ storage.SessionStore = (*SessionStore)(nil)

func (s *SessionStore) SaveSession(ctx context.Context, session *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *session
	s.sessions[session.Token] = &c
	return nil
}

func (s *SessionStore) GetSession(ctx context.Context, token string) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[token]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	c := *session
	return &c, nil
}

func (s *SessionStore) DeleteSession(ctx context.Context, token string) error {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
	return nil
}

// DeleteExpired removes sessions that expired before now
func (s *SessionStore) DeleteExpired(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for token, session := range s.sessions {
		if session.IsExpired(now) {
			delete(s.sessions, token)
			removed++
		}
	}
	return removed
}

// Sweep calls DeleteExpired every interval until ctx is done. Sessions that
// are never looked up again would otherwise stay in memory forever.
func (s *SessionStore) Sweep(ctx context.Context, clk clock.Clock, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.DeleteExpired(clk.Now())
		}
	}
}
