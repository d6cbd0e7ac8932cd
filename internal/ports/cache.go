package ports

import (
	"context"
	"property-insight-service/internal/domain"
	"time"
)

// Cache key for a routing query. Departures are bucketed to the hour so that
// "current" queries made close together share an entry.
type RouteKey struct {
	Origin      string
	Destination string
	Mode        domain.TransportMode
	Departure   time.Time
}

func NewRouteKey(req RouteRequest) RouteKey {
	return RouteKey{
		Origin:      req.Origin,
		Destination: req.Destination,
		Mode:        req.Mode,
		Departure:   req.DepartAt.UTC().Truncate(time.Hour),
	}
}

// String renders the key as a single cache identifier.
func (k RouteKey) String() string {
	return k.Origin + "|" + k.Destination + "|" + string(k.Mode) + "|" + k.Departure.Format(time.RFC3339)
}

// Optional persistence for routing results.
type RouteCache interface {
	GetRoute(ctx context.Context, key RouteKey) (RouteResult, bool, error)
	PutRoute(ctx context.Context, key RouteKey, result RouteResult) error
}

// Optional persistence for place search results keyed by query text.
type PlaceCache interface {
	GetPlaces(ctx context.Context, query string) ([]Place, bool, error)
	PutPlaces(ctx context.Context, query string, places []Place) error
}
