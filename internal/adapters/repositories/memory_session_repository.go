package repositories

import (
	"context"
	"fmt"
	"property-insight-service/internal/domain"
	"property-insight-service/internal/ports"
	"sync"
)

// In-process SessionRepository for the CLI and tests. Sessions are stored as
// copies so callers cannot mutate stored state by accident.
type MemorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
}

func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{sessions: map[string]domain.Session{}}
}

func (m *MemorySessionRepository) Create(ctx context.Context, s *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[s.ID]; ok {
		return fmt.Errorf("create session %s: already exists", s.ID)
	}
	m.sessions[s.ID] = *s
	return nil
}

func (m *MemorySessionRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("get session %s: %w", id, ports.ErrNotFound)
	}
	return &s, nil
}

func (m *MemorySessionRepository) Update(ctx context.Context, s *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[s.ID]; !ok {
		return fmt.Errorf("update session %s: %w", s.ID, ports.ErrNotFound)
	}
	m.sessions[s.ID] = *s
	return nil
}
