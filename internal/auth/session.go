package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/CMGeorges/p2p-app-public/internal/domain"
)

// SessionStore issues and resolves opaque session tokens. The in-memory
// implementation lives for the process lifetime; a durable or expiring
// store can be swapped in at the composition root.
type SessionStore interface {
	Issue(username string) (string, error)
	Resolve(token string) (string, error)
}

type memorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]string
}

func NewMemorySessionStore() *memorySessionStore {
	return &memorySessionStore{sessions: make(map[string]string)}
}

func (s *memorySessionStore) Issue(username string) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	token := hex.EncodeToString(buf)

	s.mu.Lock()
	s.sessions[token] = username
	s.mu.Unlock()

	return token, nil
}

func (s *memorySessionStore) Resolve(token string) (string, error) {
	s.mu.RLock()
	username, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok {
		return "", domain.ErrInvalidSession
	}
	return username, nil
}
