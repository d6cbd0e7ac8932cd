package ports

import (
	"context"
	"errors"
	"property-insight-service/internal/domain"
)

var ErrNotFound = errors.New("not found")

// Port: a boundary for storing analysis sessions.
type SessionRepository interface {
	Create(ctx context.Context, s *domain.Session) error
	// Return ErrNotFound (wrapped) when no session has the given id.
	Get(ctx context.Context, id string) (*domain.Session, error)
	Update(ctx context.Context, s *domain.Session) error
}
