package ports

import (
	"context"
	"property-insight-service/internal/domain"
)

// Port: supplies the listing (and with it the property address) for a URL.
type ListingSource interface {
	FetchListing(ctx context.Context, url string) (*domain.Listing, error)
}
