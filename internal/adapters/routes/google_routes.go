package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"property-insight-service/internal/domain"
	"property-insight-service/internal/platform/obs"
	"property-insight-service/internal/ports"
	"strconv"
	"strings"
)

const routesFieldMask = "routes.duration,routes.distanceMeters,routes.legs"

// departureLayout is the UTC timestamp format the Routes API accepts.
const departureLayout = "2006-01-02T15:04:05Z"

type waypoint struct {
	Address string `json:"address"`
}

type routeModifiers struct {
	AvoidTolls    bool `json:"avoidTolls"`
	AvoidHighways bool `json:"avoidHighways"`
	AvoidFerries  bool `json:"avoidFerries"`
}

type computeRoutesRequest struct {
	Origin                   waypoint        `json:"origin"`
	Destination              waypoint        `json:"destination"`
	TravelMode               string          `json:"travelMode"`
	ComputeAlternativeRoutes bool            `json:"computeAlternativeRoutes"`
	LanguageCode             string          `json:"languageCode"`
	Units                    string          `json:"units"`
	RoutingPreference        string          `json:"routingPreference,omitempty"`
	DepartureTime            string          `json:"departureTime,omitempty"`
	RouteModifiers           *routeModifiers `json:"routeModifiers,omitempty"`
}

type computeRoutesResponse struct {
	Routes []struct {
		Duration       string `json:"duration"`
		DistanceMeters *int   `json:"distanceMeters"`
	} `json:"routes"`
}

// normalize ensures consistent keys by collapsing whitespace.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// buildRouteRequest shapes the body per travel mode: driving is traffic aware
// with a departure time and route modifiers, transit carries only a departure
// time, walking carries neither.
func buildRouteRequest(req ports.RouteRequest) (computeRoutesRequest, error) {
	token := req.Mode.APIToken()
	if token == "" {
		return computeRoutesRequest{}, fmt.Errorf("unsupported travel mode %q", req.Mode)
	}

	body := computeRoutesRequest{
		Origin:                   waypoint{Address: req.Origin},
		Destination:              waypoint{Address: req.Destination},
		TravelMode:               token,
		ComputeAlternativeRoutes: false,
		LanguageCode:             "en-US",
		Units:                    "METRIC",
	}

	switch req.Mode {
	case domain.ModeDriving:
		body.RoutingPreference = "TRAFFIC_AWARE"
		body.DepartureTime = req.DepartAt.UTC().Format(departureLayout)
		body.RouteModifiers = &routeModifiers{}
	case domain.ModeTransit:
		body.DepartureTime = req.DepartAt.UTC().Format(departureLayout)
	}

	return body, nil
}

// parseDuration reads a protobuf Duration string such as "1800s".
func parseDuration(s string) (int, error) {
	if !strings.HasSuffix(s, "s") {
		return 0, fmt.Errorf("duration %q: missing seconds suffix", s)
	}
	n, err := strconv.Atoi(strings.TrimSuffix(s, "s"))
	if err != nil {
		return 0, fmt.Errorf("duration %q: %w", s, err)
	}
	return n, nil
}

// ComputeRoute returns duration and distance of the first route between two
// addresses. A response without routes yields ports.ErrNoRoute.
func (g *GoogleMapsProvider) ComputeRoute(
	ctx context.Context,
	req ports.RouteRequest,
) (_ ports.RouteResult, err error) {
	defer obs.Time(ctx, "google.ComputeRoute."+string(req.Mode))(&err)

	req.Origin = normalize(req.Origin)
	req.Destination = normalize(req.Destination)
	if req.Origin == "" || req.Destination == "" {
		return ports.RouteResult{}, errors.New("compute route: origin and destination must be non-empty")
	}

	key := ports.NewRouteKey(req)
	if g.routeCache != nil {
		hit, ok, err := g.routeCache.GetRoute(ctx, key)
		if err != nil {
			log.Printf("route cache read failed: %v", err)
		} else if ok {
			return hit, nil
		}
	}

	body, err := buildRouteRequest(req)
	if err != nil {
		return ports.RouteResult{}, fmt.Errorf("compute route: %w", err)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return ports.RouteResult{}, fmt.Errorf("marshal routes request: %w", err)
	}

	resp, err := g.doWithRetry(ctx, func() (*http.Request, error) {
		return g.newRequest(ctx, g.routesURL, routesFieldMask, bytes.NewReader(payload))
	})
	if err != nil {
		return ports.RouteResult{}, fmt.Errorf("routes request %s %q -> %q: %w", body.TravelMode, req.Origin, req.Destination, err)
	}
	defer resp.Body.Close()

	var decoded computeRoutesResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return ports.RouteResult{}, fmt.Errorf("decode routes response: %w", err)
	}

	if len(decoded.Routes) == 0 {
		return ports.RouteResult{}, ports.ErrNoRoute
	}

	route := decoded.Routes[0]
	seconds, err := parseDuration(route.Duration)
	if err != nil {
		return ports.RouteResult{}, fmt.Errorf("parse routes response: %w", err)
	}

	result := ports.RouteResult{DurationSeconds: seconds}
	if route.DistanceMeters != nil {
		result.DistanceMeters = *route.DistanceMeters
	} else if req.Mode == domain.ModeDriving {
		// The engine reads canonical distance from driving; without it the
		// route is unusable.
		return ports.RouteResult{}, fmt.Errorf("parse routes response: missing distanceMeters: %w", ports.ErrNoRoute)
	}

	if g.routeCache != nil {
		if err := g.routeCache.PutRoute(ctx, key, result); err != nil {
			log.Printf("route cache write failed: %v", err)
		}
	}

	return result, nil
}
