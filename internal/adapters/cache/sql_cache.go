package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"property-insight-service/internal/platform/obs"
	"property-insight-service/internal/ports"
	"strings"
	"time"
)

// SQLCache is a Postgres-backed cache for routing and place search results.
type SQLCache struct {
	DB  *sql.DB
	TTL time.Duration
	Now func() time.Time
}

func NewSQLCache(db *sql.DB, ttl time.Duration) *SQLCache {
	return &SQLCache{DB: db, TTL: ttl, Now: time.Now}
}

func (s *SQLCache) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *SQLCache) cutoff() time.Time {
	if s.TTL <= 0 {
		return time.Unix(0, 0).UTC()
	}
	return s.now().Add(-s.TTL).UTC()
}

// Fetch a cached route result.
func (s *SQLCache) GetRoute(ctx context.Context, key ports.RouteKey) (_ ports.RouteResult, _ bool, err error) {
	defer obs.Time(ctx, "route.cache.Get")(&err)

	if s.DB == nil {
		return ports.RouteResult{}, false, errors.New("route cache: db is nil")
	}

	q := `
	SELECT duration_seconds, distance_meters
    FROM route_cache
    WHERE origin = $1
        AND destination = $2
        AND mode = $3
        AND departure = $4
        AND created_at >= $5;
	`

	var r ports.RouteResult
	err = s.DB.QueryRowContext(ctx, q,
		key.Origin, key.Destination, string(key.Mode), key.Departure.UTC(), s.cutoff(),
	).Scan(&r.DurationSeconds, &r.DistanceMeters)
	if errors.Is(err, sql.ErrNoRows) {
		return ports.RouteResult{}, false, nil
	}
	if err != nil {
		return ports.RouteResult{}, false, fmt.Errorf("get route cache: query route_cache table: %w", err)
	}

	return r, true, nil
}

// Store one route result, replacing any earlier entry for the key.
func (s *SQLCache) PutRoute(ctx context.Context, key ports.RouteKey, r ports.RouteResult) error {
	if s.DB == nil {
		return errors.New("route cache: db is nil")
	}
	if strings.TrimSpace(key.Origin) == "" || strings.TrimSpace(key.Destination) == "" {
		return errors.New("insert route cache: origin and destination must not be empty")
	}

	_, err := s.DB.ExecContext(ctx, `
	INSERT INTO route_cache (origin, destination, mode, departure, duration_seconds, distance_meters, created_at)
    VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (origin, destination, mode, departure) DO UPDATE
	SET duration_seconds = EXCLUDED.duration_seconds,
		distance_meters = EXCLUDED.distance_meters,
		created_at = EXCLUDED.created_at;
	`, key.Origin, key.Destination, string(key.Mode), key.Departure.UTC(),
		r.DurationSeconds, r.DistanceMeters, s.now().UTC())
	if err != nil {
		return fmt.Errorf("insert route cache key=%q: %w", key.String(), err)
	}

	return nil
}

// Fetch cached place candidates for a search text.
func (s *SQLCache) GetPlaces(ctx context.Context, query string) (_ []ports.Place, _ bool, err error) {
	defer obs.Time(ctx, "place.cache.Get")(&err)

	if s.DB == nil {
		return nil, false, errors.New("place cache: db is nil")
	}

	var raw string
	err = s.DB.QueryRowContext(ctx, `
	SELECT places
    FROM place_cache
    WHERE query = $1
        AND created_at >= $2;
	`, query, s.cutoff()).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get place cache: query place_cache table: %w", err)
	}

	places, err := decodePlaces(raw)
	if err != nil {
		return nil, false, fmt.Errorf("get place cache: %w", err)
	}
	return places, true, nil
}

// Store the candidates returned for a search text.
func (s *SQLCache) PutPlaces(ctx context.Context, query string, places []ports.Place) error {
	if s.DB == nil {
		return errors.New("place cache: db is nil")
	}
	if strings.TrimSpace(query) == "" {
		return errors.New("insert place cache: empty query key")
	}

	raw, err := encodePlaces(places)
	if err != nil {
		return fmt.Errorf("insert place cache: %w", err)
	}

	if _, err := s.DB.ExecContext(ctx, `
	INSERT INTO place_cache (query, places, created_at)
    VALUES ($1, $2, $3)
	ON CONFLICT (query) DO UPDATE
	SET places = EXCLUDED.places,
		created_at = EXCLUDED.created_at;
	`, query, raw, s.now().UTC()); err != nil {
		return fmt.Errorf("insert place cache query=%q: %w", query, err)
	}

	return nil
}
