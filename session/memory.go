package session

import (
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/tailored-agentic-units/groqchat/core/protocol"
)

type memorySession struct {
	id        string
	exchanges []protocol.Exchange
	mu        sync.RWMutex
}

// NewMemorySession creates a Session backed by an in-memory slice.
// The session is assigned a unique UUIDv7 identifier.
func NewMemorySession() Session {
	return newMemorySession(0)
}

func newMemorySession(capacity int) *memorySession {
	s := &memorySession{
		id: uuid.Must(uuid.NewV7()).String(),
	}
	if capacity > 0 {
		s.exchanges = make([]protocol.Exchange, 0, capacity)
	}
	return s
}

func (s *memorySession) ID() string {
	return s.id
}

func (s *memorySession) Append(exchange protocol.Exchange) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exchanges = append(s.exchanges, exchange)
}

func (s *memorySession) Exchanges() []protocol.Exchange {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.exchanges)
}

func (s *memorySession) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.exchanges)
}

func (s *memorySession) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exchanges = nil
}
