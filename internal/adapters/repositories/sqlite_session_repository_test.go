package repositories

import (
	"context"
	"database/sql"
	"errors"
	"property-insight-service/internal/domain"
	"property-insight-service/internal/ports"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// A single connection keeps the in-memory database alive and shared.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if err := InitSchema(db); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	return db
}

func TestInitSchemaIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	if err := InitSchema(db); err != nil {
		t.Fatalf("second init: %v", err)
	}
}

func TestSqliteSessionRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewSqliteSessionRepository(openTestDB(t))

	created := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	sess := &domain.Session{
		ID:        "s-1",
		Status:    domain.SessionInitializing,
		URL:       "https://www.domain.com.au/1-smith-st",
		CreatedAt: created,
	}
	if err := repo.Create(ctx, sess); err != nil {
		t.Fatalf("create: %v", err)
	}

	price := 1200000
	sess.Listing = &domain.Listing{URL: sess.URL, FullAddress: "1 Smith St, Bondi NSW 2026", Price: &price}
	sess.Distances = domain.DistanceReport{
		domain.CategoryWork: {
			{
				Destination: "Wynard Station Sydney, NSW",
				Distance:    domain.NewDistance(8200),
				Modes: domain.ModeTimes{
					domain.ModeDriving: {domain.WindowCurrent: domain.NewTravelTime(1500)},
					domain.ModeTransit: {domain.WindowCurrent: nil},
				},
			},
		},
	}
	initialized := created.Add(time.Minute)
	sess.Status = domain.SessionReady
	sess.InitializedAt = &initialized
	if err := repo.Update(ctx, sess); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := repo.Get(ctx, "s-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if got.Status != domain.SessionReady {
		t.Fatalf("status = %q", got.Status)
	}
	if !got.CreatedAt.Equal(created) {
		t.Fatalf("created_at = %v, want %v", got.CreatedAt, created)
	}
	if got.InitializedAt == nil || !got.InitializedAt.Equal(initialized) {
		t.Fatalf("initialized_at = %v", got.InitializedAt)
	}
	if got.Listing == nil || got.Listing.Price == nil || *got.Listing.Price != price {
		t.Fatalf("listing = %+v", got.Listing)
	}

	work := got.Distances[domain.CategoryWork]
	if len(work) != 1 {
		t.Fatalf("work results = %d", len(work))
	}
	if tt, _ := work[0].Modes.Cell(domain.ModeDriving, domain.WindowCurrent); tt == nil || tt.Seconds != 1500 {
		t.Fatalf("driving current = %+v", tt)
	}
	if _, ok := work[0].Modes[domain.ModeTransit][domain.WindowCurrent]; !ok {
		t.Fatalf("absent transit cell should survive as an explicit key")
	}
	if got.Analysis != nil {
		t.Fatalf("analysis = %v, want nil", got.Analysis)
	}
}

func TestSqliteSessionRepositoryNotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewSqliteSessionRepository(openTestDB(t))

	if _, err := repo.Get(ctx, "missing"); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("get err = %v, want ErrNotFound", err)
	}

	err := repo.Update(ctx, &domain.Session{ID: "missing", Status: domain.SessionError})
	if !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("update err = %v, want ErrNotFound", err)
	}
}

func TestPruneCache(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	if _, err := db.Exec(`INSERT INTO place_cache (query, places, created_at) VALUES ('old', '[]', ?), ('new', '[]', ?)`,
		now.Add(-48*time.Hour).Unix(), now.Unix()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	n, err := PruneCache(ctx, db, false, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if n != 1 {
		t.Fatalf("pruned = %d, want 1", n)
	}
}
