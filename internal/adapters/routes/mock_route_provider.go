package routes

import (
	"context"
	"fmt"
	"property-insight-service/internal/domain"
	"property-insight-service/internal/ports"
	"sync"
	"time"
)

// MockRoute is one canned routing answer. A zero DepartAt matches any
// departure time; a non-nil Err is returned instead of a result.
type MockRoute struct {
	From, To string
	Mode     domain.TransportMode
	DepartAt time.Time
	Meters   int
	Seconds  int
	Err      error
}

// MockRouteProvider answers ComputeRoute from a fixed table and records every
// request it receives. Unknown pairs yield ports.ErrNoRoute.
type MockRouteProvider struct {
	mu     sync.Mutex
	routes []MockRoute
	calls  []ports.RouteRequest
}

func NewMockRouteProvider(routes []MockRoute) *MockRouteProvider {
	return &MockRouteProvider{routes: routes}
}

func (p *MockRouteProvider) ComputeRoute(ctx context.Context, req ports.RouteRequest) (ports.RouteResult, error) {
	p.mu.Lock()
	p.calls = append(p.calls, req)
	p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return ports.RouteResult{}, err
	}

	// Exact departure matches win over wildcard entries.
	var wildcard *MockRoute
	for i := range p.routes {
		r := &p.routes[i]
		if r.From != req.Origin || r.To != req.Destination || r.Mode != req.Mode {
			continue
		}
		if r.DepartAt.IsZero() {
			if wildcard == nil {
				wildcard = r
			}
			continue
		}
		if r.DepartAt.Equal(req.DepartAt) {
			return r.result()
		}
	}
	if wildcard != nil {
		return wildcard.result()
	}

	return ports.RouteResult{}, fmt.Errorf("missing route %q -> %q (%s): %w", req.Origin, req.Destination, req.Mode, ports.ErrNoRoute)
}

func (r *MockRoute) result() (ports.RouteResult, error) {
	if r.Err != nil {
		return ports.RouteResult{}, r.Err
	}
	return ports.RouteResult{DurationSeconds: r.Seconds, DistanceMeters: r.Meters}, nil
}

// Calls returns a copy of the requests seen so far, in arrival order.
func (p *MockRouteProvider) Calls() []ports.RouteRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]ports.RouteRequest, len(p.calls))
	copy(out, p.calls)
	return out
}

// MockPlaceSearcher answers SearchText from a query -> candidates table.
type MockPlaceSearcher struct {
	mu      sync.Mutex
	results map[string][]ports.Place
	errs    map[string]error
	queries []string
}

func NewMockPlaceSearcher(results map[string][]ports.Place) *MockPlaceSearcher {
	return &MockPlaceSearcher{results: results, errs: map[string]error{}}
}

// FailQuery makes SearchText return err for query.
func (s *MockPlaceSearcher) FailQuery(query string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs[query] = err
}

func (s *MockPlaceSearcher) SearchText(ctx context.Context, query string, maxResults int) ([]ports.Place, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, query)

	if err, ok := s.errs[query]; ok {
		return nil, err
	}

	places := s.results[query]
	if len(places) > maxResults {
		places = places[:maxResults]
	}
	return places, nil
}

// Queries returns the search texts seen so far, in arrival order.
func (s *MockPlaceSearcher) Queries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.queries))
	copy(out, s.queries)
	return out
}
