package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"property-insight-service/internal/adapters/cache"
	"property-insight-service/internal/adapters/listing"
	"property-insight-service/internal/adapters/narrative"
	"property-insight-service/internal/adapters/repositories"
	"property-insight-service/internal/adapters/routes"
	"property-insight-service/internal/api"
	"property-insight-service/internal/config"
	"property-insight-service/internal/platform/db"
	"property-insight-service/internal/ports"
	"property-insight-service/internal/services"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

// main is the application composition root.
// It wires concrete adapters (SQLite/Postgres, Redis, Google Maps, LLM) behind ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if cfg.GoogleMapsAPIKey == "" {
		log.Fatal("GOOGLE_MAP_API_KEY is required")
	}

	locations, err := config.LoadLocations(cfg.LocationsPath)
	if err != nil {
		log.Fatal(err)
	}

	conn, err := db.OpenDriver(cfg.DBDriver, cfg.DBPath, cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	if err := initSchema(conn, cfg.DBDriver); err != nil {
		log.Fatal(err)
	}

	routeCache, placeCache, err := openCaches(cfg, conn)
	if err != nil {
		log.Fatal(err)
	}

	provider, err := routes.NewGoogleMapsProvider(
		cfg.GoogleMapsAPIKey,
		routes.WithRateLimit(cfg.MapsQPS, int(cfg.MapsQPS)),
		routes.WithRetry(cfg.MapsMaxAttempts, 200*time.Millisecond),
		routes.WithRouteCache(routeCache),
		routes.WithPlaceCache(placeCache),
	)
	if err != nil {
		log.Fatal(err)
	}

	engine := services.NewDistanceEngine(
		provider,
		provider,
		locations,
		services.WithClock(func() time.Time { return time.Now().In(cfg.Location) }),
		services.WithConcurrency(cfg.EngineConcurrency),
	)

	svc := &services.PropertyService{
		Listings: listing.NewDomainScraper(nil),
		Engine:   engine,
		Sessions: sessionRepository(cfg.DBDriver, conn),
	}

	var personas []string
	if cfg.LLMAPIKey != "" {
		opts := []narrative.Option{}
		if cfg.LLMModel != "" {
			opts = append(opts, narrative.WithModel(cfg.LLMModel))
		}
		agent, err := narrative.NewAgent(cfg.LLMAPIKey, cfg.LLMBaseURL, opts...)
		if err != nil {
			log.Fatal(err)
		}
		svc.Narrator = agent
		personas = agent.Personas()
	} else {
		log.Println("GEMINI_API_KEY not set, narrative analysis disabled")
	}

	router := api.NewRouter(svc, personas)

	// Timeouts are tuned for cold-cache initialization (scrape plus dozens of route calls).
	log.Printf("Server listening addr=:%s db=%s cache=%s categories=%v", cfg.Port, cfg.DBDriver, cfg.CacheBackend, engine.Categories())
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      180 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

func initSchema(conn *sql.DB, driver string) error {
	if driver == "postgres" {
		return repositories.InitPostgresSchema(conn)
	}
	return repositories.InitSchema(conn)
}

func sessionRepository(driver string, conn *sql.DB) ports.SessionRepository {
	if driver == "postgres" {
		return repositories.NewSQLSessionRepository(conn)
	}
	return repositories.NewSqliteSessionRepository(conn)
}

// openCaches returns nil caches for CACHE_BACKEND=none, which disables caching.
func openCaches(cfg config.Config, conn *sql.DB) (ports.RouteCache, ports.PlaceCache, error) {
	switch cfg.CacheBackend {
	case "sqlite":
		c := cache.NewSqliteCache(conn, cfg.CacheTTL)
		return c, c, nil
	case "postgres":
		c := cache.NewSQLCache(conn, cfg.CacheTTL)
		return c, c, nil
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, nil, fmt.Errorf("open caches: ping redis %s: %w", cfg.RedisAddr, err)
		}
		c := cache.NewRedisCache(client, cfg.CacheTTL)
		return c, c, nil
	default:
		return nil, nil, nil
	}
}
