package ports

import "context"

// A place candidate returned by a text search.
// DisplayName is empty when the API omitted it.
type Place struct {
	FormattedAddress string
	DisplayName      string
}

// Contract for free-text place lookups.
type PlaceSearcher interface {
	// Return up to maxResults candidates in API ranking order.
	SearchText(ctx context.Context, query string, maxResults int) ([]Place, error)
}
