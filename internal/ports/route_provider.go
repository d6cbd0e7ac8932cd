package ports

import (
	"context"
	"errors"
	"property-insight-service/internal/domain"
	"time"
)

// ErrNoRoute reports a well-formed routing response that carried no usable route.
var ErrNoRoute = errors.New("no route found")

// One origin -> destination routing query.
type RouteRequest struct {
	Origin      string
	Destination string
	Mode        domain.TransportMode
	DepartAt    time.Time
}

// Travel duration and distance of the first returned route.
type RouteResult struct {
	DurationSeconds int
	DistanceMeters  int
}

// Contract for computing a route between two postal addresses.
type RouteProvider interface {
	// Return the first route's duration and distance, or an error when no
	// usable route could be obtained.
	ComputeRoute(ctx context.Context, req RouteRequest) (RouteResult, error)
}
