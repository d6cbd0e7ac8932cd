package domain

import (
	"math"
	"slices"
)

// Store details for destinations resolved via place search.
type StoreInfo struct {
	Name             string `json:"name"`
	DisplayName      string `json:"display_name"`
	FormattedAddress string `json:"formatted_address"`
}

// Travel times keyed by mode then time window. A window key that maps to nil
// was queried but produced no route.
type ModeTimes map[TransportMode]map[TimeWindow]*TravelTime

// Cell returns the travel time for a (mode, window) pair and whether the cell
// was queried at all.
func (m ModeTimes) Cell(mode TransportMode, window TimeWindow) (*TravelTime, bool) {
	windows, ok := m[mode]
	if !ok {
		return nil, false
	}
	tt, ok := windows[window]
	return tt, ok
}

// Per-destination result: identity, canonical distance and the
// mode/window matrix.
type DestinationResult struct {
	Destination string     `json:"destination"`
	Distance    Distance   `json:"distance"`
	Modes       ModeTimes  `json:"modes"`
	StoreInfo   *StoreInfo `json:"store_info,omitempty"`
}

// DrivingSeconds returns driving/current seconds, or MaxInt when absent so
// that destinations without a driving route sort last.
func (r DestinationResult) DrivingSeconds() int {
	tt, _ := r.Modes.Cell(ModeDriving, WindowCurrent)
	if tt == nil {
		return math.MaxInt
	}
	return tt.Seconds
}

// Ordered destination results for one category.
type CategoryResult []DestinationResult

// SortByDriving stably sorts ascending by driving/current duration.
func (c CategoryResult) SortByDriving() {
	slices.SortStableFunc(c, func(a, b DestinationResult) int {
		da, db := a.DrivingSeconds(), b.DrivingSeconds()
		switch {
		case da < db:
			return -1
		case da > db:
			return 1
		default:
			return 0
		}
	})
}

// Category name -> results. Categories without results are never present.
type DistanceReport map[string]CategoryResult
