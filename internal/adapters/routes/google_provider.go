package routes

import (
	"errors"
	"net/http"
	"property-insight-service/internal/ports"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultRoutesURL = "https://routes.googleapis.com/directions/v2:computeRoutes"
	defaultPlacesURL = "https://places.googleapis.com/v1/places:searchText"
)

// GoogleMapsProvider implements RouteProvider and PlaceSearcher on top of the
// Google Routes and Places (New) APIs.
//
// It coordinates:
//   - Request shaping per travel mode
//   - Optional route and place caching
//   - Client-side rate limiting
//   - Retry with backoff on transient failures
//
// The provider is safe for concurrent use.
type GoogleMapsProvider struct {
	session     *http.Client
	apiKey      string
	routesURL   string
	placesURL   string
	limiter     *rate.Limiter
	maxAttempts int
	backoff     time.Duration
	routeCache  ports.RouteCache
	placeCache  ports.PlaceCache
}

type Option func(*GoogleMapsProvider)

// WithEndpoints points the provider at alternative API URLs (tests, proxies).
func WithEndpoints(routesURL, placesURL string) Option {
	return func(g *GoogleMapsProvider) {
		g.routesURL = routesURL
		g.placesURL = placesURL
	}
}

func WithHTTPClient(c *http.Client) Option {
	return func(g *GoogleMapsProvider) { g.session = c }
}

// WithRateLimit caps outbound requests per second. qps <= 0 disables limiting.
func WithRateLimit(qps float64, burst int) Option {
	return func(g *GoogleMapsProvider) {
		if qps <= 0 {
			g.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Limit(qps), burst)
	}
}

// WithRetry sets the attempt budget per request and the initial backoff.
// One attempt disables retries.
func WithRetry(maxAttempts int, backoff time.Duration) Option {
	return func(g *GoogleMapsProvider) {
		g.maxAttempts = maxAttempts
		g.backoff = backoff
	}
}

func WithRouteCache(c ports.RouteCache) Option {
	return func(g *GoogleMapsProvider) { g.routeCache = c }
}

func WithPlaceCache(c ports.PlaceCache) Option {
	return func(g *GoogleMapsProvider) { g.placeCache = c }
}

func NewGoogleMapsProvider(apiKey string, opts ...Option) (*GoogleMapsProvider, error) {
	if apiKey == "" {
		return nil, errors.New("google maps api key is empty")
	}

	g := &GoogleMapsProvider{
		session:     &http.Client{Timeout: 15 * time.Second},
		apiKey:      apiKey,
		routesURL:   defaultRoutesURL,
		placesURL:   defaultPlacesURL,
		limiter:     rate.NewLimiter(rate.Limit(10), 10),
		maxAttempts: 3,
		backoff:     200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(g)
	}

	return g, nil
}
