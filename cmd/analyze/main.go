package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"property-insight-service/internal/adapters/listing"
	"property-insight-service/internal/adapters/narrative"
	"property-insight-service/internal/adapters/repositories"
	"property-insight-service/internal/adapters/routes"
	"property-insight-service/internal/config"
	"property-insight-service/internal/domain"
	"property-insight-service/internal/services"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type options struct {
	address    string
	categories []string
	persona    string
	quick      bool
	save       bool
	output     string
	json       bool
	debug      bool
	url        string
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func parseFlags() (options, error) {
	var o options
	var categories string

	flag.StringVar(&o.address, "address", "", "compute distances for a postal address (no scraping, no analysis)")
	flag.StringVar(&categories, "categories", "", "comma separated categories (default: all configured)")
	flag.StringVar(&o.persona, "persona", "", "analysis persona, e.g. negative_nancy")
	flag.BoolVar(&o.quick, "quick", false, "request a short summary instead of the full analysis")
	flag.BoolVar(&o.save, "save", false, "write raw data and analysis under outputs/")
	flag.StringVar(&o.output, "output", "property_data", "file name prefix used with -save")
	flag.BoolVar(&o.json, "json", false, "print JSON instead of text")
	flag.BoolVar(&o.debug, "debug", false, "print request logs to stderr")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] <listing-url>\n       %s -address \"<address>\" [flags]\n\n", os.Args[0], os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	for _, c := range strings.Split(categories, ",") {
		if c = strings.TrimSpace(c); c != "" {
			o.categories = append(o.categories, c)
		}
	}

	o.url = strings.TrimSpace(flag.Arg(0))
	if o.url == "" && strings.TrimSpace(o.address) == "" {
		flag.Usage()
		return o, errors.New("a listing url or -address is required")
	}
	return o, nil
}

func run() error {
	o, err := parseFlags()
	if err != nil {
		return err
	}

	_ = godotenv.Load()
	if !o.debug {
		log.SetOutput(io.Discard)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.GoogleMapsAPIKey == "" {
		return errors.New("GOOGLE_MAP_API_KEY is required")
	}
	locations, err := config.LoadLocations(cfg.LocationsPath)
	if err != nil {
		return err
	}

	provider, err := routes.NewGoogleMapsProvider(
		cfg.GoogleMapsAPIKey,
		routes.WithRateLimit(cfg.MapsQPS, int(cfg.MapsQPS)),
		routes.WithRetry(cfg.MapsMaxAttempts, 200*time.Millisecond),
	)
	if err != nil {
		return err
	}
	engine := services.NewDistanceEngine(
		provider,
		provider,
		locations,
		services.WithClock(func() time.Time { return time.Now().In(cfg.Location) }),
		services.WithConcurrency(cfg.EngineConcurrency),
	)

	for _, c := range o.categories {
		if !slices.Contains(engine.Categories(), c) {
			return fmt.Errorf("unknown category %q (known: %s)", c, strings.Join(engine.Categories(), ", "))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if o.address != "" {
		report := engine.CalculateDistances(ctx, strings.TrimSpace(o.address), o.categories)
		if o.json {
			return printJSON(map[string]any{"address": o.address, "distance_info": report})
		}
		fmt.Print(services.FormatDistanceSummary(report))
		return nil
	}

	svc := &services.PropertyService{
		Listings: listing.NewDomainScraper(nil),
		Engine:   engine,
		Sessions: repositories.NewMemorySessionRepository(),
	}
	if cfg.LLMAPIKey != "" {
		opts := []narrative.Option{}
		if cfg.LLMModel != "" {
			opts = append(opts, narrative.WithModel(cfg.LLMModel))
		}
		agent, err := narrative.NewAgent(cfg.LLMAPIKey, cfg.LLMBaseURL, opts...)
		if err != nil {
			return err
		}
		if o.persona != "" && !slices.Contains(agent.Personas(), o.persona) {
			return fmt.Errorf("unknown persona %q (known: %s)", o.persona, strings.Join(agent.Personas(), ", "))
		}
		svc.Narrator = agent
	}

	return analyzeListing(ctx, svc, o)
}

func analyzeListing(ctx context.Context, svc *services.PropertyService, o options) error {
	sess, err := svc.InitializeProperty(ctx, o.url, o.categories)
	if err != nil {
		return err
	}
	if sess.Status == domain.SessionError {
		return errors.New(sess.Error)
	}

	stamp := time.Now().Format("20060102_150405")
	if o.save {
		raw := map[string]any{"property_data": sess.Listing, "distance_info": sess.Distances}
		path, err := writeOutput(o.output+"_raw_"+stamp+".json", raw)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "saved raw data to %s\n", path)
	}

	var analysis domain.Analysis
	if svc.Narrator == nil {
		fmt.Fprintln(os.Stderr, "GEMINI_API_KEY not set, skipping analysis")
	} else {
		analysis, err = svc.AnalyzeSession(ctx, sess.ID, o.persona, o.quick)
		if err != nil {
			return err
		}
		if o.save {
			path, err := writeOutput(o.output+"_analysis_"+stamp+".json", analysis)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "saved analysis to %s\n", path)
		}
	}

	if o.json {
		return printJSON(map[string]any{
			"session_id":    sess.ID,
			"property_data": sess.Listing,
			"distance_info": sess.Distances,
			"analysis":      analysis,
		})
	}

	printListing(sess.Listing)
	fmt.Print(services.FormatDistanceSummary(sess.Distances))
	if analysis != nil {
		fmt.Println("\nANALYSIS:")
		if s, ok := analysis["summary"].(string); ok && o.quick {
			fmt.Println(s)
			return nil
		}
		return printJSON(analysis)
	}
	return nil
}

func printListing(l *domain.Listing) {
	fmt.Printf("%s\n%s\n", l.Title, l.FullAddress)
	if l.Price != nil {
		fmt.Printf("Price: $%d\n", *l.Price)
	}
	intOr := func(p *int) string {
		if p == nil {
			return "-"
		}
		return fmt.Sprint(*p)
	}
	fmt.Printf("Bed: %s  Bath: %s  Parking: %s\n", intOr(l.Bedrooms), intOr(l.Bathrooms), intOr(l.Parking))
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeOutput(name string, v any) (string, error) {
	if err := os.MkdirAll("outputs", 0o755); err != nil {
		return "", fmt.Errorf("write output: %w", err)
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("write output: encode %s: %w", name, err)
	}
	path := filepath.Join("outputs", name)
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", fmt.Errorf("write output: %w", err)
	}
	return path, nil
}
