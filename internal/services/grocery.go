package services

import (
	"context"
	"fmt"
	"log"
	"property-insight-service/internal/domain"
	"strings"
)

const (
	// Deployment locale suffix appended to every store search.
	placeSearchState = "NSW"
	maxPlaceResults  = 3
)

// ExtractSuburb returns the first word after the first comma of an address
// such as "1 Smith St, Bondi NSW 2026".
func ExtractSuburb(address string) (string, bool) {
	parts := strings.Split(address, ",")
	if len(parts) < 2 {
		return "", false
	}

	fields := strings.Fields(parts[1])
	if len(fields) == 0 {
		return "", false
	}
	return fields[0], true
}

// resolveStores finds one concrete store per brand in the property's suburb.
//
// Candidates are rejected when their address was already taken by an earlier
// brand, when the address is outside the suburb, or when the display name
// does not mention the brand. A brand with no acceptable candidate
// contributes nothing.
func (e *DistanceEngine) resolveStores(ctx context.Context, propertyAddress string, brands []string) []domain.Destination {
	suburb, ok := ExtractSuburb(propertyAddress)
	if !ok {
		log.Printf("address=%q no suburb found, skipping store search", propertyAddress)
		return nil
	}
	if e.places == nil {
		return nil
	}

	lowerSuburb := strings.ToLower(suburb)
	seen := make(map[string]struct{}, len(brands))
	out := make([]domain.Destination, 0, len(brands))

	for _, brand := range brands {
		query := fmt.Sprintf("%s %s, %s", brand, suburb, placeSearchState)

		candidates, err := e.places.SearchText(ctx, query, maxPlaceResults)
		if err != nil {
			log.Printf("store search query=%q failed: %v", query, err)
			continue
		}

		lowerBrand := strings.ToLower(brand)
		found := false
		for _, p := range candidates {
			name := p.DisplayName
			if name == "" {
				name = brand
			}

			if _, dup := seen[p.FormattedAddress]; dup {
				log.Printf("store search query=%q skip duplicate address=%q", query, p.FormattedAddress)
				continue
			}
			if !strings.Contains(strings.ToLower(p.FormattedAddress), lowerSuburb) {
				log.Printf("store search query=%q skip address outside suburb=%q", query, p.FormattedAddress)
				continue
			}
			if !strings.Contains(strings.ToLower(name), lowerBrand) {
				log.Printf("store search query=%q skip name=%q", query, name)
				continue
			}

			seen[p.FormattedAddress] = struct{}{}
			out = append(out, domain.Destination{
				Name:        brand,
				DisplayName: name,
				Address:     p.FormattedAddress,
				Chain:       brand,
			})
			found = true
			break
		}

		if !found {
			log.Printf("store search query=%q no valid %s in %s", query, brand, suburb)
		}
	}

	log.Printf("suburb=%s stores=%d", suburb, len(out))
	return out
}
