package services

import (
	"context"
	"log"
	"property-insight-service/internal/domain"
	"property-insight-service/internal/ports"
	"time"
)

// travelTime issues one routing query. Any failure yields the absence marker
// (nil) rather than an error; meters is only meaningful on success.
func (e *DistanceEngine) travelTime(
	ctx context.Context,
	origin string,
	destination string,
	mode domain.TransportMode,
	departAt time.Time,
) (*domain.TravelTime, int) {
	res, err := e.routes.ComputeRoute(ctx, ports.RouteRequest{
		Origin:      origin,
		Destination: destination,
		Mode:        mode,
		DepartAt:    departAt,
	})
	if err != nil {
		log.Printf("mode=%s destination=%q depart=%s no route: %v", mode, destination, departAt.Format(time.RFC3339), err)
		return nil, 0
	}

	if res.DurationSeconds < 0 {
		log.Printf("mode=%s destination=%q negative duration %d", mode, destination, res.DurationSeconds)
		return nil, 0
	}

	return domain.NewTravelTime(res.DurationSeconds), res.DistanceMeters
}
