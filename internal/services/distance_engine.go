package services

import (
	"context"
	"log"
	"property-insight-service/internal/domain"
	"property-insight-service/internal/platform/obs"
	"property-insight-service/internal/ports"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// DistanceEngine computes travel times from a property to the configured
// points of interest.
//
// The engine is best-effort: individual query failures become absence
// markers, a failed driving/current query skips the destination, and
// categories without results are left out of the report. It never returns
// an error.
type DistanceEngine struct {
	routes      ports.RouteProvider
	places      ports.PlaceSearcher
	locations   domain.Locations
	now         func() time.Time
	concurrency int
}

type EngineOption func(*DistanceEngine)

// WithClock overrides the time source used for the current and peak windows.
func WithClock(now func() time.Time) EngineOption {
	return func(e *DistanceEngine) { e.now = now }
}

// WithConcurrency bounds how many destinations of one category are processed
// at once. Values below 2 keep processing sequential.
func WithConcurrency(n int) EngineOption {
	return func(e *DistanceEngine) {
		if n < 1 {
			n = 1
		}
		e.concurrency = n
	}
}

func NewDistanceEngine(
	routes ports.RouteProvider,
	places ports.PlaceSearcher,
	locations domain.Locations,
	opts ...EngineOption,
) *DistanceEngine {
	e := &DistanceEngine{
		routes:      routes,
		places:      places,
		locations:   locations,
		now:         time.Now,
		concurrency: 1,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Categories returns the configured category names in order.
func (e *DistanceEngine) Categories() []string { return e.locations.Names() }

// engineStats counts degradations for one CalculateDistances call.
type engineStats struct {
	destinations atomic.Int64
	skipped      atomic.Int64
	absentCells  atomic.Int64
}

// CalculateDistances builds a DistanceReport for propertyAddress.
// An empty categories list selects every configured category.
func (e *DistanceEngine) CalculateDistances(
	ctx context.Context,
	propertyAddress string,
	categories []string,
) domain.DistanceReport {
	var err error
	defer obs.Time(ctx, "engine.CalculateDistances")(&err)

	if len(categories) == 0 {
		categories = e.locations.Names()
	}

	departures := domain.Departures(e.now())
	stats := &engineStats{}
	report := make(domain.DistanceReport, len(categories))

	for _, name := range categories {
		destinations := e.resolveDestinations(ctx, propertyAddress, name)
		if len(destinations) == 0 {
			log.Printf("category=%s destinations=0", name)
			continue
		}

		results := e.computeCategory(ctx, propertyAddress, name, destinations, departures, stats)
		if len(results) == 0 {
			continue
		}

		results.SortByDriving()
		report[name] = results
	}

	log.Printf(
		"origin=%q categories=%d destinations=%d skipped=%d absent_cells=%d",
		propertyAddress, len(report), stats.destinations.Load(), stats.skipped.Load(), stats.absentCells.Load(),
	)

	return report
}

func (e *DistanceEngine) resolveDestinations(ctx context.Context, propertyAddress, name string) []domain.Destination {
	category, ok := e.locations.Lookup(name)
	if !ok {
		return nil
	}

	if category.Dynamic() {
		return e.resolveStores(ctx, propertyAddress, category.Destinations)
	}

	out := make([]domain.Destination, 0, len(category.Destinations))
	for _, d := range category.Destinations {
		out = append(out, domain.StaticDestination(d))
	}
	return out
}

// computeCategory runs the travel matrix for every destination. Each
// destination writes only its own slot, so bounded concurrency does not
// disturb input order.
func (e *DistanceEngine) computeCategory(
	ctx context.Context,
	origin string,
	category string,
	destinations []domain.Destination,
	departures map[domain.TimeWindow]time.Time,
	stats *engineStats,
) domain.CategoryResult {
	slots := make([]*domain.DestinationResult, len(destinations))

	var g errgroup.Group
	g.SetLimit(e.concurrency)

	for i, dest := range destinations {
		i, dest := i, dest
		g.Go(func() error {
			slots[i] = e.computeDestination(ctx, origin, category, dest, departures, stats)
			return nil
		})
	}
	_ = g.Wait()

	out := make(domain.CategoryResult, 0, len(slots))
	for _, r := range slots {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out
}

// computeDestination returns nil when driving/current could not be resolved.
func (e *DistanceEngine) computeDestination(
	ctx context.Context,
	origin string,
	category string,
	dest domain.Destination,
	departures map[domain.TimeWindow]time.Time,
	stats *engineStats,
) *domain.DestinationResult {
	stats.destinations.Add(1)

	driving, meters := e.travelTime(ctx, origin, dest.Address, domain.ModeDriving, departures[domain.WindowCurrent])
	if driving == nil {
		stats.skipped.Add(1)
		log.Printf("category=%s destination=%q skipped: no driving route", category, dest.Address)
		return nil
	}

	modes := domain.ModeTimes{
		domain.ModeDriving: {domain.WindowCurrent: driving},
	}

	for _, q := range domain.TravelPlan(category) {
		tt, _ := e.travelTime(ctx, origin, dest.Address, q.Mode, departures[q.Window])
		if tt == nil {
			stats.absentCells.Add(1)
		}
		if modes[q.Mode] == nil {
			modes[q.Mode] = map[domain.TimeWindow]*domain.TravelTime{}
		}
		modes[q.Mode][q.Window] = tt
	}

	result := &domain.DestinationResult{
		Destination: dest.Address,
		Distance:    domain.NewDistance(meters),
		Modes:       modes,
	}

	if dest.Chain != "" {
		result.StoreInfo = &domain.StoreInfo{
			Name:             dest.Name,
			DisplayName:      dest.DisplayName,
			FormattedAddress: dest.Address,
		}
	}

	return result
}
