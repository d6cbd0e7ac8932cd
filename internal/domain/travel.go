package domain

import (
	"fmt"
	"math"
	"time"
)

type TransportMode string

const (
	ModeDriving TransportMode = "driving"
	ModeTransit TransportMode = "transit"
	ModeWalking TransportMode = "walking"
)

// APIToken returns the routing API travel mode token.
func (m TransportMode) APIToken() string {
	switch m {
	case ModeDriving:
		return "DRIVE"
	case ModeTransit:
		return "TRANSIT"
	case ModeWalking:
		return "WALK"
	default:
		return ""
	}
}

type TimeWindow string

const (
	WindowCurrent     TimeWindow = "current"
	WindowMorningPeak TimeWindow = "morning_peak"
	WindowEveningPeak TimeWindow = "evening_peak"
)

const (
	morningPeakHour = 9
	eveningPeakHour = 17
)

// Departures resolves each time window to a concrete instant relative to now.
// Peak windows fall on the next calendar day in now's location.
func Departures(now time.Time) map[TimeWindow]time.Time {
	next := now.AddDate(0, 0, 1)
	at := func(hour int) time.Time {
		return time.Date(next.Year(), next.Month(), next.Day(), hour, 0, 0, 0, now.Location())
	}

	return map[TimeWindow]time.Time{
		WindowCurrent:     now,
		WindowMorningPeak: at(morningPeakHour),
		WindowEveningPeak: at(eveningPeakHour),
	}
}

// A single (mode, window) query to run for a destination.
type TravelQuery struct {
	Mode   TransportMode
	Window TimeWindow
}

// TravelPlan lists the optional queries for a category, in issue order.
// driving/current is always issued first and is not part of the plan.
func TravelPlan(category string) []TravelQuery {
	plan := []TravelQuery{{Mode: ModeTransit, Window: WindowCurrent}}

	switch category {
	case CategoryGroceries, CategorySchools:
		plan = append(plan, TravelQuery{Mode: ModeWalking, Window: WindowCurrent})
	case CategoryWork:
		plan = append(plan,
			TravelQuery{Mode: ModeDriving, Window: WindowMorningPeak},
			TravelQuery{Mode: ModeDriving, Window: WindowEveningPeak},
			TravelQuery{Mode: ModeTransit, Window: WindowMorningPeak},
			TravelQuery{Mode: ModeTransit, Window: WindowEveningPeak},
		)
	}

	return plan
}

// Outcome of one successful travel-time query. A nil *TravelTime is the
// absence marker: no usable route for that cell.
type TravelTime struct {
	Text    string `json:"text"`
	Seconds int    `json:"value"`
}

func NewTravelTime(seconds int) *TravelTime {
	return &TravelTime{Text: FormatDuration(seconds), Seconds: seconds}
}

type Distance struct {
	Text   string `json:"text"`
	Meters int    `json:"value"`
}

func NewDistance(meters int) Distance {
	return Distance{Text: FormatDistance(meters), Meters: meters}
}

const (
	secondsPerHour   = 3600
	secondsPerMinute = 60
)

// FormatDuration renders seconds as "<H> hr <M> min", or "<M> min" under an hour.
func FormatDuration(seconds int) string {
	hours := seconds / secondsPerHour
	minutes := (seconds % secondsPerHour) / secondsPerMinute
	if hours > 0 {
		return fmt.Sprintf("%d hr %d min", hours, minutes)
	}
	return fmt.Sprintf("%d min", minutes)
}

// FormatDistance renders meters as kilometers rounded to one decimal place.
func FormatDistance(meters int) string {
	km := math.Round(float64(meters)/100) / 10
	return fmt.Sprintf("%.1f km", km)
}
