package listing

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"property-insight-service/internal/domain"
	"property-insight-service/internal/platform/obs"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

var browserHeaders = map[string]string{
	"User-Agent":                "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8",
	"Accept-Language":           "en-US,en;q=0.9",
	"Connection":                "keep-alive",
	"Upgrade-Insecure-Requests": "1",
	"Sec-Fetch-Dest":            "document",
	"Sec-Fetch-Mode":            "navigate",
	"Sec-Fetch-Site":            "none",
	"Sec-Fetch-User":            "?1",
}

var (
	titleSelector = `h3[data-testid="listing-details__description-headline"]`

	propertyTypeSelectors = []string{
		`div[data-testid="listing-summary-property-type"]`,
		`span[data-testid="property-features-feature-property_type"]`,
		`div.property-info__property-type`,
	}

	addressSelectors = []string{
		`h1[data-testid="listing-details__button-copy-link"]`,
		`div[data-testid="listing-details__button-copy-wrapper"]`,
		`div[data-testid="listing-summary-address"]`,
		`h1.property-info__address`,
	}

	priceSelectors = []string{
		`[data-testid="listing-details__summary-title"]`,
		`[data-testid="listing-details__price"]`,
		`[data-testid="listing-details__price-text"]`,
		`.listing-price`,
	}

	featureVariations = map[string][]string{
		"Bed":     {"Bed", "Beds", "Bedroom", "Bedrooms"},
		"Bath":    {"Bath", "Baths", "Bathroom", "Bathrooms"},
		"Parking": {"Parking", "Car Space", "Car Spaces", "Garage", "Garages"},
	}

	imageSelectors = []string{
		`meta[property="og:image"]`,
		`[data-testid="listing-details__gallery"] img`,
		`img.pswp__img`,
	}

	digitsRe = regexp.MustCompile(`\d+`)
	sizeRe   = regexp.MustCompile(`[\d.]+`)
)

// DomainScraper implements ListingSource for domain.com.au listing pages.
// It reads the server-rendered HTML only; content that needs a browser to
// appear (expanded descriptions, the photo carousel) is taken from whatever
// the initial document carries.
type DomainScraper struct {
	client *http.Client
}

func NewDomainScraper(client *http.Client) *DomainScraper {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &DomainScraper{client: client}
}

// FetchListing downloads url and extracts the listing from it.
func (s *DomainScraper) FetchListing(ctx context.Context, url string) (_ *domain.Listing, err error) {
	defer obs.Time(ctx, "scraper.FetchListing")(&err)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch listing: create request: %w", err)
	}
	for k, v := range browserHeaders {
		req.Header.Set(k, v)
	}

	res, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch listing %q: %w", url, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch listing %q: status code error: %d", url, res.StatusCode)
	}

	return ParseListing(url, res.Body)
}

// ParseListing extracts a listing from an HTML document.
func ParseListing(url string, r io.Reader) (*domain.Listing, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse listing: %w", err)
	}

	l := &domain.Listing{
		URL:             url,
		Title:           text(doc.Selection, titleSelector),
		PropertyType:    firstText(doc.Selection, propertyTypeSelectors),
		FullAddress:     firstText(doc.Selection, addressSelectors),
		Bedrooms:        featureValue(doc, "Bed"),
		Bathrooms:       featureValue(doc, "Bath"),
		Parking:         featureValue(doc, "Parking"),
		PropertySize:    CleanSize(text(doc.Selection, `[data-testid="listing-details__floor-area"]`)),
		LandSize:        CleanSize(text(doc.Selection, `[data-testid="listing-details__land-area"]`)),
		Description:     text(doc.Selection, `[data-testid="listing-details__description"]`),
		AgencyName:      text(doc.Selection, `[data-testid="listing-details__agent-agency-name"]`),
		AgentName:       text(doc.Selection, `[data-testid="listing-details__agent-enquiry-agent-profile-link"]`),
		InspectionTimes: allText(doc.Selection, `[data-testid="listing-details__inspection-time"]`),
		Images:          images(doc),
	}

	for _, sel := range priceSelectors {
		node := doc.Find(sel).First()
		if node.Length() == 0 {
			continue
		}
		if p := CleanPrice(strings.TrimSpace(node.Text())); p != nil {
			l.Price = p
			break
		}
	}

	return l, nil
}

func text(s *goquery.Selection, selector string) string {
	return strings.TrimSpace(s.Find(selector).First().Text())
}

func firstText(s *goquery.Selection, selectors []string) string {
	for _, sel := range selectors {
		node := s.Find(sel).First()
		if node.Length() > 0 {
			return strings.TrimSpace(node.Text())
		}
	}
	return ""
}

func allText(s *goquery.Selection, selector string) []string {
	out := []string{}
	s.Find(selector).Each(func(_ int, n *goquery.Selection) {
		if t := strings.TrimSpace(n.Text()); t != "" {
			out = append(out, t)
		}
	})
	return out
}

func firstInt(s string) *int {
	m := digitsRe.FindString(s)
	if m == "" {
		return nil
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return nil
	}
	return &n
}

// featureValue finds a leaf span naming the feature (e.g. "Beds") and reads
// the number from the neighbouring span, its enclosing span, or its own text.
func featureValue(doc *goquery.Document, feature string) *int {
	variations, ok := featureVariations[feature]
	if !ok {
		variations = []string{feature}
	}

	for _, v := range variations {
		needle := strings.ToLower(v)

		var found *int
		doc.Find("span").EachWithBreak(func(_ int, span *goquery.Selection) bool {
			if span.Children().Length() > 0 {
				return true
			}
			label := strings.TrimSpace(span.Text())
			if !strings.Contains(strings.ToLower(label), needle) {
				return true
			}

			if prev := span.PrevAllFiltered("span").First(); prev.Length() > 0 {
				if n := firstInt(prev.Text()); n != nil {
					found = n
					return false
				}
			}
			if parent := span.ParentsFiltered("span").First(); parent.Length() > 0 {
				if n := firstInt(parent.Text()); n != nil {
					found = n
					return false
				}
			}
			found = firstInt(label)
			return found == nil
		})

		if found != nil {
			return found
		}
	}

	return nil
}

// CleanPrice converts "$1,500,000" style text into whole dollars. Text
// without a dollar amount (e.g. "Contact agent") yields nil.
func CleanPrice(priceText string) *int {
	if priceText == "" {
		return nil
	}

	lower := strings.ToLower(priceText)
	if !strings.ContainsAny(lower, "$") &&
		!strings.Contains(lower, "price") &&
		!strings.Contains(lower, "from") &&
		!strings.Contains(lower, "offers") {
		return nil
	}

	for _, word := range []string{"from", "offers above", "offers over", "guide"} {
		lower = strings.ReplaceAll(lower, word, "")
	}

	_, after, ok := strings.Cut(lower, "$")
	if !ok {
		return nil
	}
	after = strings.TrimSpace(after)

	var b strings.Builder
	for _, r := range after {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' {
			b.WriteRune(r)
			continue
		}
		break
	}

	whole, _, _ := strings.Cut(strings.ReplaceAll(b.String(), ",", ""), ".")
	if whole == "" {
		return nil
	}
	n, err := strconv.Atoi(whole)
	if err != nil {
		return nil
	}
	return &n
}

// CleanSize reads the first number out of text such as "150m²".
func CleanSize(sizeText string) *float64 {
	m := sizeRe.FindString(sizeText)
	if m == "" {
		return nil
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return nil
	}
	return &f
}

func images(doc *goquery.Document) []string {
	seen := map[string]struct{}{}
	out := []string{}

	for _, sel := range imageSelectors {
		doc.Find(sel).Each(func(_ int, n *goquery.Selection) {
			src, ok := n.Attr("content")
			if !ok {
				src, ok = n.Attr("src")
			}
			src = strings.TrimSpace(src)
			if !ok || src == "" {
				return
			}
			if _, dup := seen[src]; dup {
				return
			}
			seen[src] = struct{}{}
			out = append(out, src)
		})
	}

	return out
}
