package domain

import "time"

// Represents a scraped real-estate listing.
// Numeric fields are nil when the page did not expose a parseable value.
type Listing struct {
	URL             string   `json:"url"`
	Title           string   `json:"title"`
	PropertyType    string   `json:"property_type"`
	Price           *int     `json:"price"`
	FullAddress     string   `json:"full_address"`
	Bedrooms        *int     `json:"bedrooms"`
	Bathrooms       *int     `json:"bathrooms"`
	Parking         *int     `json:"parking"`
	PropertySize    *float64 `json:"property_size"`
	LandSize        *float64 `json:"land_size"`
	Description     string   `json:"description"`
	AgencyName      string   `json:"agency_name"`
	AgentName       string   `json:"agent_name"`
	InspectionTimes []string `json:"inspection_times"`
	Images          []string `json:"images"`
}

// Narrative analysis returned by the language model, plus metadata.
// The shape of the body is controlled by the prompt's JSON template.
type Analysis map[string]any

type SessionStatus string

const (
	SessionInitializing SessionStatus = "initializing"
	SessionReady        SessionStatus = "ready"
	SessionError        SessionStatus = "error"
)

// Represents one property analysis session: the scraped listing, its
// distance report and any narrative analyses produced so far.
type Session struct {
	ID            string
	Status        SessionStatus
	URL           string
	Error         string
	Listing       *Listing
	Distances     DistanceReport
	Analysis      Analysis
	CreatedAt     time.Time
	InitializedAt *time.Time
}
