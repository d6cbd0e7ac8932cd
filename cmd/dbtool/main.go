package main

import (
	"context"
	"flag"
	"log"
	"property-insight-service/internal/adapters/repositories"
	"property-insight-service/internal/config"
	"property-insight-service/internal/platform/db"
	"time"

	"github.com/joho/godotenv"
)

func main() {
	prune := flag.Duration("prune", 0, "delete cache rows older than this age (e.g. 72h); 0 skips pruning")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	databaseURL := config.Get("DATABASE_URL", "")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	conn, err := db.Open(databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	log.Println("Initializing database schema...")
	if err := repositories.InitPostgresSchema(conn); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")

	if *prune > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		n, err := repositories.PruneCache(ctx, conn, true, time.Now().Add(-*prune))
		if err != nil {
			log.Fatalf("prune failed: %v", err)
		}
		log.Printf("Pruned %d cache rows older than %s.", n, *prune)
	}
}
