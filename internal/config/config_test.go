package config

import (
	"os"
	"path/filepath"
	"property-insight-service/internal/domain"
	"slices"
	"testing"
	"time"
)

func TestGetters(t *testing.T) {
	t.Setenv("PI_TEST_STR", "  value ")
	t.Setenv("PI_TEST_INT", "7")
	t.Setenv("PI_TEST_BAD_INT", "seven")
	t.Setenv("PI_TEST_FLOAT", "2.5")
	t.Setenv("PI_TEST_DUR", "90s")

	if got := Get("PI_TEST_STR", "x"); got != "value" {
		t.Fatalf("Get = %q", got)
	}
	if got := Get("PI_TEST_UNSET", "x"); got != "x" {
		t.Fatalf("Get fallback = %q", got)
	}
	if got := GetInt("PI_TEST_INT", 1); got != 7 {
		t.Fatalf("GetInt = %d", got)
	}
	if got := GetInt("PI_TEST_BAD_INT", 1); got != 1 {
		t.Fatalf("GetInt bad = %d", got)
	}
	if got := GetFloat("PI_TEST_FLOAT", 1); got != 2.5 {
		t.Fatalf("GetFloat = %g", got)
	}
	if got := GetDuration("PI_TEST_DUR", time.Second); got != 90*time.Second {
		t.Fatalf("GetDuration = %s", got)
	}
}

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"DB_DRIVER", "CACHE_BACKEND", "TIMEZONE", "CACHE_TTL", "MAPS_MAX_ATTEMPTS", "ENGINE_CONCURRENCY"} {
		t.Setenv(k, "")
	}

	c, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.DBDriver != "sqlite" || c.CacheBackend != "none" {
		t.Fatalf("driver/cache = %s/%s", c.DBDriver, c.CacheBackend)
	}
	if c.CacheTTL != 6*time.Hour || c.MapsMaxAttempts != 3 || c.EngineConcurrency != 1 {
		t.Fatalf("defaults = %+v", c)
	}
	if c.Location.String() != "Australia/Sydney" {
		t.Fatalf("location = %s", c.Location)
	}
}

func TestLoadRejectsMismatchedCacheBackend(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("CACHE_BACKEND", "postgres")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error")
	}
}

func TestLoadRejectsBadTimezone(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("CACHE_BACKEND", "none")
	t.Setenv("TIMEZONE", "Mars/Olympus")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error")
	}
}

func TestLoadLocations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locations.yaml")
	data := `
categories:
  - name: work
    destinations:
      - "Parramatta Station, NSW"
  - name: groceries
    destinations: ["Woolworths", "Coles"]
  - name: gyms
    destinations: []
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	locs, err := LoadLocations(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := locs.Names(); !slices.Equal(got, []string{"work", "groceries", "gyms"}) {
		t.Fatalf("names = %v", got)
	}
	work, _ := locs.Lookup(domain.CategoryWork)
	if !slices.Equal(work.Destinations, []string{"Parramatta Station, NSW"}) {
		t.Fatalf("work = %v", work.Destinations)
	}
}

func TestLoadLocationsDefaultAndErrors(t *testing.T) {
	locs, err := LoadLocations("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(locs.Names(), domain.DefaultLocations().Names()) {
		t.Fatalf("names = %v", locs.Names())
	}

	path := filepath.Join(t.TempDir(), "dup.yaml")
	os.WriteFile(path, []byte("categories:\n  - name: work\n  - name: work\n"), 0o600)
	if _, err := LoadLocations(path); err == nil {
		t.Fatalf("expected duplicate error")
	}

	if _, err := LoadLocations(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected read error")
	}
}
