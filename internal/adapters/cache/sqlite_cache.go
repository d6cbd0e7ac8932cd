package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"property-insight-service/internal/platform/obs"
	"property-insight-service/internal/ports"
	"strings"
	"time"
)

// SQLite backed cache for routing and place search results.
// Keys are expected to be consistent (e.g., already normalized)
// by the caller. Entries older than TTL are treated as misses.
type SqliteCache struct {
	DB  *sql.DB
	TTL time.Duration
	Now func() time.Time
}

func NewSqliteCache(db *sql.DB, ttl time.Duration) *SqliteCache {
	return &SqliteCache{DB: db, TTL: ttl, Now: time.Now}
}

func (s *SqliteCache) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// cutoff is the oldest created_at still considered fresh.
func (s *SqliteCache) cutoff() int64 {
	if s.TTL <= 0 {
		return 0
	}
	return s.now().Add(-s.TTL).Unix()
}

// Fetch a cached route result.
func (s *SqliteCache) GetRoute(ctx context.Context, key ports.RouteKey) (_ ports.RouteResult, _ bool, err error) {
	defer obs.Time(ctx, "route.cache.Get")(&err)

	if s.DB == nil {
		return ports.RouteResult{}, false, errors.New("route cache: db is nil")
	}

	q := `
	SELECT
        duration_seconds,
        distance_meters
    FROM route_cache
    WHERE origin = ?
        AND destination = ?
        AND mode = ?
        AND departure = ?
        AND created_at >= ?;
	`

	var r ports.RouteResult
	err = s.DB.QueryRowContext(ctx, q,
		key.Origin, key.Destination, string(key.Mode), key.Departure.Unix(), s.cutoff(),
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
func (s *SqliteCache) PutRoute(ctx context.Context, key ports.RouteKey, r ports.RouteResult) error {
	if s.DB == nil {
		return errors.New("route cache: db is nil")
	}
	if strings.TrimSpace(key.Origin) == "" || strings.TrimSpace(key.Destination) == "" {
		return errors.New("insert route cache: origin and destination must not be empty")
	}

	_, err := s.DB.ExecContext(ctx, `
	INSERT OR REPLACE INTO route_cache (
        origin,
        destination,
        mode,
        departure,
        duration_seconds,
        distance_meters,
        created_at
    )
    VALUES (?, ?, ?, ?, ?, ?, ?);
	`, key.Origin, key.Destination, string(key.Mode), key.Departure.Unix(),
		r.DurationSeconds, r.DistanceMeters, s.now().Unix())
	if err != nil {
		return fmt.Errorf("insert route cache key=%q: %w", key.String(), err)
	}

	return nil
}

// Fetch cached place candidates for a search text.
func (s *SqliteCache) GetPlaces(ctx context.Context, query string) (_ []ports.Place, _ bool, err error) {
	defer obs.Time(ctx, "place.cache.Get")(&err)

	if s.DB == nil {
		return nil, false, errors.New("place cache: db is nil")
	}

	var raw string
	err = s.DB.QueryRowContext(ctx, `
	SELECT places
    FROM place_cache
    WHERE query = ?
        AND created_at >= ?;
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
func (s *SqliteCache) PutPlaces(ctx context.Context, query string, places []ports.Place) error {
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
	INSERT OR REPLACE INTO place_cache (query, places, created_at)
    VALUES (?, ?, ?);
	`, query, raw, s.now().Unix()); err != nil {
		return fmt.Errorf("insert place cache query=%q: %w", query, err)
	}

	return nil
}

type placeRecord struct {
	FormattedAddress string `json:"formatted_address"`
	DisplayName      string `json:"display_name,omitempty"`
}

func encodePlaces(places []ports.Place) (string, error) {
	recs := make([]placeRecord, 0, len(places))
	for _, p := range places {
		recs = append(recs, placeRecord{FormattedAddress: p.FormattedAddress, DisplayName: p.DisplayName})
	}
	b, err := json.Marshal(recs)
	if err != nil {
		return "", fmt.Errorf("encode places: %w", err)
	}
	return string(b), nil
}

func decodePlaces(raw string) ([]ports.Place, error) {
	var recs []placeRecord
	if err := json.Unmarshal([]byte(raw), &recs); err != nil {
		return nil, fmt.Errorf("decode places: %w", err)
	}
	out := make([]ports.Place, 0, len(recs))
	for _, r := range recs {
		out = append(out, ports.Place{FormattedAddress: r.FormattedAddress, DisplayName: r.DisplayName})
	}
	return out, nil
}
