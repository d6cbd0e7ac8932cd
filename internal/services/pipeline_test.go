package services

import (
	"context"
	"errors"
	"property-insight-service/internal/adapters/repositories"
	"property-insight-service/internal/adapters/routes"
	"property-insight-service/internal/domain"
	"property-insight-service/internal/ports"
	"testing"
)

const testListingURL = "https://www.domain.com.au/1-smith-st-bondi-nsw-2026-123"

type fakeListings struct {
	listing *domain.Listing
	err     error
	calls   int
}

func (f *fakeListings) FetchListing(ctx context.Context, url string) (*domain.Listing, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	l := *f.listing
	l.URL = url
	return &l, nil
}

type fakeNarrator struct {
	gotReport  domain.DistanceReport
	gotPersona string
	err        error
}

func (f *fakeNarrator) Analyze(ctx context.Context, l *domain.Listing, report domain.DistanceReport, persona string) (domain.Analysis, error) {
	f.gotReport = report
	f.gotPersona = persona
	if f.err != nil {
		return nil, f.err
	}
	return domain.Analysis{"summary": "meh", "agent": persona, "property_url": l.URL}, nil
}

func (f *fakeNarrator) Summarize(ctx context.Context, l *domain.Listing, persona string) (string, error) {
	f.gotPersona = persona
	return "short", f.err
}

func (f *fakeNarrator) Personas() []string { return []string{"negative_nancy"} }

func newTestService(listings ports.ListingSource, narrator ports.Narrator) *PropertyService {
	provider := routes.NewMockRouteProvider([]routes.MockRoute{
		driving("Wynard Station Sydney, NSW", 1800, 8200),
	})
	return &PropertyService{
		Listings: listings,
		Engine:   newTestEngine(provider, nil, domain.DefaultLocations()),
		Narrator: narrator,
		Sessions: repositories.NewMemorySessionRepository(),
		Now:      fixedClock,
	}
}

func TestValidateListingURL(t *testing.T) {
	if err := ValidateListingURL(testListingURL); err != nil {
		t.Fatalf("valid url rejected: %v", err)
	}
	for _, bad := range []string{"", "http://www.domain.com.au/x", "https://www.realestate.com.au/x"} {
		if !errors.Is(ValidateListingURL(bad), ErrInvalidListingURL) {
			t.Fatalf("url %q accepted", bad)
		}
	}
}

func TestInitializeProperty(t *testing.T) {
	listings := &fakeListings{listing: &domain.Listing{FullAddress: testOrigin}}
	svc := newTestService(listings, &fakeNarrator{})

	sess, err := svc.InitializeProperty(context.Background(), testListingURL, []string{domain.CategoryWork})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.Status != domain.SessionReady || sess.InitializedAt == nil {
		t.Fatalf("session = %+v", sess)
	}
	if sess.ID == "" {
		t.Fatalf("session id is empty")
	}
	if len(sess.Distances[domain.CategoryWork]) != 1 {
		t.Fatalf("distances = %+v", sess.Distances)
	}

	stored, err := svc.Sessions.Get(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("get stored: %v", err)
	}
	if stored.Status != domain.SessionReady || stored.Listing == nil {
		t.Fatalf("stored = %+v", stored)
	}
}

func TestInitializePropertyInvalidURL(t *testing.T) {
	listings := &fakeListings{listing: &domain.Listing{}}
	svc := newTestService(listings, &fakeNarrator{})

	sess, err := svc.InitializeProperty(context.Background(), "https://example.com/house", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.Status != domain.SessionError || sess.Error == "" {
		t.Fatalf("session = %+v", sess)
	}
	if listings.calls != 0 {
		t.Fatalf("scraper called for invalid url")
	}
}

func TestInitializePropertyScrapeFailure(t *testing.T) {
	svc := newTestService(&fakeListings{err: errors.New("403")}, &fakeNarrator{})

	sess, err := svc.InitializeProperty(context.Background(), testListingURL, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.Status != domain.SessionError {
		t.Fatalf("status = %s", sess.Status)
	}

	stored, _ := svc.Sessions.Get(context.Background(), sess.ID)
	if stored.Status != domain.SessionError {
		t.Fatalf("stored status = %s", stored.Status)
	}
}

func TestAnalyzeSession(t *testing.T) {
	narrator := &fakeNarrator{}
	svc := newTestService(&fakeListings{listing: &domain.Listing{FullAddress: testOrigin}}, narrator)
	ctx := context.Background()

	sess, err := svc.InitializeProperty(ctx, testListingURL, []string{domain.CategoryWork})
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}

	analysis, err := svc.AnalyzeSession(ctx, sess.ID, "negative_nancy", false)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if analysis["summary"] != "meh" || narrator.gotPersona != "negative_nancy" {
		t.Fatalf("analysis = %v persona = %q", analysis, narrator.gotPersona)
	}
	if len(narrator.gotReport[domain.CategoryWork]) != 1 {
		t.Fatalf("narrator did not receive the stored report")
	}

	quick, err := svc.AnalyzeSession(ctx, sess.ID, "", true)
	if err != nil {
		t.Fatalf("quick analyze: %v", err)
	}
	if quick["summary"] != "short" || quick["agent"] != "base" || quick["property_url"] != testListingURL {
		t.Fatalf("quick = %v", quick)
	}

	stored, _ := svc.Sessions.Get(ctx, sess.ID)
	if stored.Analysis["summary"] != "short" {
		t.Fatalf("stored analysis = %v", stored.Analysis)
	}
}

func TestAnalyzeSessionErrors(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(&fakeListings{err: errors.New("gone")}, &fakeNarrator{})

	if _, err := svc.AnalyzeSession(ctx, "missing", "", false); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	sess, _ := svc.InitializeProperty(ctx, testListingURL, nil)
	if _, err := svc.AnalyzeSession(ctx, sess.ID, "", false); !errors.Is(err, ErrSessionNotReady) {
		t.Fatalf("err = %v, want ErrSessionNotReady", err)
	}

	svc.Narrator = nil
	if _, err := svc.AnalyzeSession(ctx, sess.ID, "", false); !errors.Is(err, ErrNarratorDisabled) {
		t.Fatalf("err = %v, want ErrNarratorDisabled", err)
	}
}
