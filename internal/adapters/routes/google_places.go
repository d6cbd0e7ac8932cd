package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"property-insight-service/internal/platform/obs"
	"property-insight-service/internal/ports"
)

const placesFieldMask = "places.formattedAddress,places.displayName"

type searchTextRequest struct {
	TextQuery      string `json:"textQuery"`
	MaxResultCount int    `json:"maxResultCount"`
}

type searchTextResponse struct {
	Places []struct {
		FormattedAddress string `json:"formattedAddress"`
		DisplayName      *struct {
			Text string `json:"text"`
		} `json:"displayName"`
	} `json:"places"`
}

// SearchText runs a Places text search and returns candidates in API order.
// A response without places is an empty, non-error result.
func (g *GoogleMapsProvider) SearchText(
	ctx context.Context,
	query string,
	maxResults int,
) (_ []ports.Place, err error) {
	defer obs.Time(ctx, "google.SearchText")(&err)

	query = normalize(query)
	if query == "" {
		return nil, errors.New("search text: query must be non-empty")
	}
	if maxResults < 1 {
		maxResults = 1
	}

	if g.placeCache != nil {
		hit, ok, err := g.placeCache.GetPlaces(ctx, query)
		if err != nil {
			log.Printf("place cache read failed: %v", err)
		} else if ok {
			if len(hit) > maxResults {
				hit = hit[:maxResults]
			}
			return hit, nil
		}
	}

	payload, err := json.Marshal(searchTextRequest{TextQuery: query, MaxResultCount: maxResults})
	if err != nil {
		return nil, fmt.Errorf("marshal places request: %w", err)
	}

	resp, err := g.doWithRetry(ctx, func() (*http.Request, error) {
		return g.newRequest(ctx, g.placesURL, placesFieldMask, bytes.NewReader(payload))
	})
	if err != nil {
		return nil, fmt.Errorf("places request %q: %w", query, err)
	}
	defer resp.Body.Close()

	var decoded searchTextResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode places response: %w", err)
	}

	places := make([]ports.Place, 0, len(decoded.Places))
	for _, p := range decoded.Places {
		place := ports.Place{FormattedAddress: p.FormattedAddress}
		if p.DisplayName != nil {
			place.DisplayName = p.DisplayName.Text
		}
		places = append(places, place)
	}
	if len(places) > maxResults {
		places = places[:maxResults]
	}

	if g.placeCache != nil {
		if err := g.placeCache.PutPlaces(ctx, query, places); err != nil {
			log.Printf("place cache write failed: %v", err)
		}
	}

	return places, nil
}
