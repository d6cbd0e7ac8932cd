package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"property-insight-service/internal/domain"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v2"
)

// Get returns the environment value for key, or fallback when unset or empty.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func GetInt(key string, fallback int) int {
	v := Get(key, "")
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("config key=%s invalid int %q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func GetFloat(key string, fallback float64) float64 {
	v := Get(key, "")
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("config key=%s invalid float %q, using %g", key, v, fallback)
		return fallback
	}
	return f
}

func GetDuration(key string, fallback time.Duration) time.Duration {
	v := Get(key, "")
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("config key=%s invalid duration %q, using %s", key, v, fallback)
		return fallback
	}
	return d
}

// Config is the process configuration assembled from the environment.
type Config struct {
	GoogleMapsAPIKey string
	LLMAPIKey        string
	LLMBaseURL       string
	LLMModel         string

	Port        string
	DBDriver    string
	DBPath      string
	DatabaseURL string

	CacheBackend  string
	CacheTTL      time.Duration
	RedisAddr     string
	RedisPassword string

	Location          *time.Location
	EngineConcurrency int
	MapsQPS           float64
	MapsMaxAttempts   int
	LocationsPath     string
}

// Load reads the configuration. Unknown enum values and a bad timezone are
// reported as errors; malformed numbers fall back to their defaults.
func Load() (Config, error) {
	c := Config{
		GoogleMapsAPIKey: Get("GOOGLE_MAP_API_KEY", ""),
		LLMAPIKey:        Get("GEMINI_API_KEY", ""),
		LLMBaseURL:       Get("LLM_BASE_URL", ""),
		LLMModel:         Get("LLM_MODEL", ""),

		Port:        Get("PORT", "8080"),
		DBDriver:    strings.ToLower(Get("DB_DRIVER", "sqlite")),
		DBPath:      Get("DB_PATH", "data/app.db"),
		DatabaseURL: Get("DATABASE_URL", ""),

		CacheBackend:  strings.ToLower(Get("CACHE_BACKEND", "none")),
		CacheTTL:      GetDuration("CACHE_TTL", 6*time.Hour),
		RedisAddr:     Get("REDIS_ADDR", "localhost:6379"),
		RedisPassword: Get("REDIS_PASSWORD", ""),

		EngineConcurrency: GetInt("ENGINE_CONCURRENCY", 1),
		MapsQPS:           GetFloat("MAPS_QPS", 10),
		MapsMaxAttempts:   GetInt("MAPS_MAX_ATTEMPTS", 3),
		LocationsPath:     Get("LOCATIONS_PATH", ""),
	}

	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		return Config{}, fmt.Errorf("load config: DB_DRIVER %q must be sqlite or postgres", c.DBDriver)
	}
	if c.DBDriver == "postgres" && c.DatabaseURL == "" {
		return Config{}, errors.New("load config: DATABASE_URL is required when DB_DRIVER=postgres")
	}

	switch c.CacheBackend {
	case "none", "sqlite", "postgres", "redis":
	default:
		return Config{}, fmt.Errorf("load config: CACHE_BACKEND %q must be none, sqlite, postgres or redis", c.CacheBackend)
	}
	if (c.CacheBackend == "sqlite" || c.CacheBackend == "postgres") && c.CacheBackend != c.DBDriver {
		return Config{}, fmt.Errorf("load config: CACHE_BACKEND=%s requires DB_DRIVER=%s", c.CacheBackend, c.CacheBackend)
	}

	tz := Get("TIMEZONE", "Australia/Sydney")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return Config{}, fmt.Errorf("load config: TIMEZONE %q: %w", tz, err)
	}
	c.Location = loc

	return c, nil
}

type locationsFile struct {
	Categories []struct {
		Name         string   `yaml:"name"`
		Destinations []string `yaml:"destinations"`
	} `yaml:"categories"`
}

// LoadLocations reads the points of interest from a YAML file of the form
//
//	categories:
//	  - name: work
//	    destinations: ["Wynard Station Sydney, NSW"]
//
// An empty path returns domain.DefaultLocations().
func LoadLocations(path string) (domain.Locations, error) {
	if path == "" {
		return domain.DefaultLocations(), nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return domain.Locations{}, fmt.Errorf("load locations: read %q: %w", path, err)
	}

	var f locationsFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return domain.Locations{}, fmt.Errorf("load locations: parse %q: %w", path, err)
	}
	if len(f.Categories) == 0 {
		return domain.Locations{}, fmt.Errorf("load locations: %q defines no categories", path)
	}

	seen := map[string]struct{}{}
	categories := make([]domain.Category, 0, len(f.Categories))
	for i, c := range f.Categories {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return domain.Locations{}, fmt.Errorf("load locations: category #%d has no name", i+1)
		}
		if _, dup := seen[name]; dup {
			return domain.Locations{}, fmt.Errorf("load locations: duplicate category %q", name)
		}
		seen[name] = struct{}{}

		dests := make([]string, 0, len(c.Destinations))
		for _, d := range c.Destinations {
			if d = strings.TrimSpace(d); d != "" {
				dests = append(dests, d)
			}
		}
		categories = append(categories, domain.Category{Name: name, Destinations: dests})
	}

	return domain.NewLocations(categories...), nil
}
