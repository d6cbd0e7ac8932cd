package cache

import (
	"context"
	"database/sql"
	"property-insight-service/internal/adapters/repositories"
	"property-insight-service/internal/domain"
	"property-insight-service/internal/ports"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if err := repositories.InitSchema(db); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	return db
}

func testKey() ports.RouteKey {
	return ports.NewRouteKey(ports.RouteRequest{
		Origin:      "1 Smith St, Bondi NSW 2026",
		Destination: "Wynard Station Sydney, NSW",
		Mode:        domain.ModeDriving,
		DepartAt:    time.Date(2026, 3, 2, 9, 40, 0, 0, time.UTC),
	})
}

type cacheUnderTest interface {
	ports.RouteCache
	ports.PlaceCache
}

func exerciseCache(t *testing.T, c cacheUnderTest) {
	t.Helper()
	ctx := context.Background()
	key := testKey()

	if _, ok, err := c.GetRoute(ctx, key); err != nil || ok {
		t.Fatalf("empty cache: ok=%v err=%v", ok, err)
	}

	want := ports.RouteResult{DurationSeconds: 1500, DistanceMeters: 8200}
	if err := c.PutRoute(ctx, key, want); err != nil {
		t.Fatalf("put route: %v", err)
	}
	got, ok, err := c.GetRoute(ctx, key)
	if err != nil || !ok {
		t.Fatalf("get route: ok=%v err=%v", ok, err)
	}
	if got != want {
		t.Fatalf("route = %+v, want %+v", got, want)
	}

	other := key
	other.Mode = domain.ModeTransit
	if _, ok, _ := c.GetRoute(ctx, other); ok {
		t.Fatalf("different mode should miss")
	}

	places := []ports.Place{
		{FormattedAddress: "12 Hall St, Bondi Beach NSW 2026", DisplayName: "Woolworths Bondi"},
		{FormattedAddress: "1 Other Rd, Bondi NSW 2026"},
	}
	if err := c.PutPlaces(ctx, "Woolworths Bondi, NSW", places); err != nil {
		t.Fatalf("put places: %v", err)
	}
	gotPlaces, ok, err := c.GetPlaces(ctx, "Woolworths Bondi, NSW")
	if err != nil || !ok {
		t.Fatalf("get places: ok=%v err=%v", ok, err)
	}
	if len(gotPlaces) != 2 || gotPlaces[0] != places[0] || gotPlaces[1] != places[1] {
		t.Fatalf("places = %+v", gotPlaces)
	}

	if _, ok, _ := c.GetPlaces(ctx, "Coles Bondi, NSW"); ok {
		t.Fatalf("unknown query should miss")
	}
}

func TestSqliteCache(t *testing.T) {
	exerciseCache(t, NewSqliteCache(openTestDB(t), time.Hour))
}

func TestSqliteCacheExpires(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	c := NewSqliteCache(openTestDB(t), time.Hour)
	c.Now = func() time.Time { return now }

	if err := c.PutRoute(ctx, testKey(), ports.RouteResult{DurationSeconds: 60}); err != nil {
		t.Fatalf("put: %v", err)
	}

	now = now.Add(2 * time.Hour)
	if _, ok, err := c.GetRoute(ctx, testKey()); err != nil || ok {
		t.Fatalf("expired entry: ok=%v err=%v", ok, err)
	}
}

func TestRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	exerciseCache(t, NewRedisCache(client, time.Hour))
}

func TestRedisCacheExpires(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	c := NewRedisCache(client, time.Minute)
	if err := c.PutPlaces(ctx, "Aldi Bondi, NSW", nil); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, ok, _ := c.GetPlaces(ctx, "Aldi Bondi, NSW"); !ok {
		t.Fatalf("expected hit before expiry")
	}

	mr.FastForward(2 * time.Minute)
	if _, ok, err := c.GetPlaces(ctx, "Aldi Bondi, NSW"); err != nil || ok {
		t.Fatalf("expired entry: ok=%v err=%v", ok, err)
	}
}
