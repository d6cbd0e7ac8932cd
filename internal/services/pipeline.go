package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"property-insight-service/internal/domain"
	"property-insight-service/internal/platform/obs"
	"property-insight-service/internal/ports"
	"strings"
	"time"

	"github.com/google/uuid"
)

const listingURLPrefix = "https://www.domain.com.au/"

var (
	ErrInvalidListingURL = errors.New("invalid URL format. URL must be from domain.com.au")
	ErrSessionNotReady   = errors.New("session is not ready for analysis")
	ErrNarratorDisabled  = errors.New("narrative analysis is not configured")
)

// ValidateListingURL accepts only listing pages of the supported site.
func ValidateListingURL(url string) error {
	if !strings.HasPrefix(strings.TrimSpace(url), listingURLPrefix) {
		return ErrInvalidListingURL
	}
	return nil
}

// PropertyService runs the scrape -> distances -> narrative pipeline and
// keeps its state in analysis sessions.
type PropertyService struct {
	Listings ports.ListingSource
	Engine   *DistanceEngine
	Narrator ports.Narrator
	Sessions ports.SessionRepository
	Now      func() time.Time
}

func (s *PropertyService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// InitializeProperty creates a session for url, scrapes the listing and
// computes its distance report.
//
// User-facing failures (bad URL, listing not retrievable) are recorded on the
// returned session with status error; only storage failures return an error.
func (s *PropertyService) InitializeProperty(
	ctx context.Context,
	url string,
	categories []string,
) (*domain.Session, error) {
	sess := &domain.Session{
		ID:        uuid.NewString(),
		Status:    domain.SessionInitializing,
		URL:       url,
		CreatedAt: s.now(),
	}
	ctx = obs.WithSessionID(ctx, sess.ID)
	if err := s.Sessions.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("initialize property: create session: %w", err)
	}

	if err := ValidateListingURL(url); err != nil {
		log.Printf("session=%s invalid url=%q", sess.ID, url)
		return s.fail(ctx, sess, err.Error())
	}

	listing, err := s.Listings.FetchListing(ctx, url)
	if err != nil || listing == nil {
		log.Printf("session=%s fetch listing url=%q failed: %v", sess.ID, url, err)
		return s.fail(ctx, sess, "Failed to fetch property data. The URL may be invalid or the property listing may no longer exist.")
	}
	sess.Listing = listing

	if strings.TrimSpace(listing.FullAddress) != "" {
		sess.Distances = s.Engine.CalculateDistances(ctx, listing.FullAddress, categories)
	}

	at := s.now()
	sess.Status = domain.SessionReady
	sess.InitializedAt = &at
	if err := s.Sessions.Update(ctx, sess); err != nil {
		return nil, fmt.Errorf("initialize property: update session %s: %w", sess.ID, err)
	}

	log.Printf("session=%s initialized categories=%d", sess.ID, len(sess.Distances))
	return sess, nil
}

func (s *PropertyService) fail(ctx context.Context, sess *domain.Session, msg string) (*domain.Session, error) {
	sess.Status = domain.SessionError
	sess.Error = msg
	if err := s.Sessions.Update(ctx, sess); err != nil {
		return nil, fmt.Errorf("initialize property: update session %s: %w", sess.ID, err)
	}
	return sess, nil
}

// AnalyzeSession produces a narrative for a ready session. With quick set,
// only a short text summary is requested and stored under "summary".
func (s *PropertyService) AnalyzeSession(
	ctx context.Context,
	sessionID string,
	persona string,
	quick bool,
) (domain.Analysis, error) {
	if s.Narrator == nil {
		return nil, ErrNarratorDisabled
	}
	ctx = obs.WithSessionID(ctx, sessionID)

	sess, err := s.Sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("analyze session: %w", err)
	}
	if sess.Status != domain.SessionReady || sess.Listing == nil {
		return nil, fmt.Errorf("analyze session %s: %w", sessionID, ErrSessionNotReady)
	}

	var analysis domain.Analysis
	if quick {
		summary, err := s.Narrator.Summarize(ctx, sess.Listing, persona)
		if err != nil {
			return nil, fmt.Errorf("analyze session %s: summarize: %w", sessionID, err)
		}
		agent := persona
		if agent == "" {
			agent = "base"
		}
		analysis = domain.Analysis{
			"summary":      summary,
			"timestamp":    s.now().Format(time.RFC3339),
			"property_url": sess.Listing.URL,
			"agent":        agent,
		}
	} else {
		analysis, err = s.Narrator.Analyze(ctx, sess.Listing, sess.Distances, persona)
		if err != nil {
			return nil, fmt.Errorf("analyze session %s: %w", sessionID, err)
		}
	}

	sess.Analysis = analysis
	if err := s.Sessions.Update(ctx, sess); err != nil {
		return nil, fmt.Errorf("analyze session %s: update: %w", sessionID, err)
	}

	return analysis, nil
}
