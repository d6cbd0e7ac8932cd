package ports

import (
	"context"
	"errors"
	"property-insight-service/internal/domain"
)

// ErrUnknownPersona reports a persona name the narrator does not know.
var ErrUnknownPersona = errors.New("unknown persona")

// Port: produces a narrative analysis of a listing and its distance report,
// optionally filtered through a named persona. An empty persona means none.
type Narrator interface {
	Analyze(ctx context.Context, listing *domain.Listing, report domain.DistanceReport, persona string) (domain.Analysis, error)
	Summarize(ctx context.Context, listing *domain.Listing, persona string) (string, error)
	Personas() []string
}
