package services

import (
	"property-insight-service/internal/domain"
	"slices"
	"strings"
)

var summaryOrder = []string{domain.CategoryWork, domain.CategoryGroceries, domain.CategorySchools}

// orderedCategories returns report keys with the well-known categories first
// and the rest alphabetically.
func orderedCategories(report domain.DistanceReport) []string {
	out := make([]string, 0, len(report))
	for _, c := range summaryOrder {
		if _, ok := report[c]; ok {
			out = append(out, c)
		}
	}

	rest := make([]string, 0, len(report))
	for c := range report {
		if !slices.Contains(summaryOrder, c) {
			rest = append(rest, c)
		}
	}
	slices.Sort(rest)

	return append(out, rest...)
}

var windowLabels = []struct {
	window domain.TimeWindow
	label  string
}{
	{domain.WindowCurrent, "Current"},
	{domain.WindowMorningPeak, "Morning Peak (9am)"},
	{domain.WindowEveningPeak, "Evening Peak (5pm)"},
}

// FormatDistanceSummary renders a report as plain text suitable for a prompt
// or a terminal.
func FormatDistanceSummary(report domain.DistanceReport) string {
	var b strings.Builder

	for _, category := range orderedCategories(report) {
		results := slices.Clone(report[category])
		if len(results) == 0 {
			continue
		}
		results.SortByDriving()

		b.WriteString("\n" + strings.ToUpper(category) + " LOCATIONS:\n")

		for _, r := range results {
			b.WriteString("\n" + r.Destination + "\n")
			if r.StoreInfo != nil && r.StoreInfo.DisplayName != "" {
				b.WriteString("Store: " + r.StoreInfo.DisplayName + "\n")
			}
			b.WriteString("Distance: " + r.Distance.Text + "\n")

			writeModeSection(&b, "By Car:", r.Modes[domain.ModeDriving])
			writeModeSection(&b, "By Public Transport:", r.Modes[domain.ModeTransit])
			if walking, ok := r.Modes[domain.ModeWalking]; ok {
				writeModeSection(&b, "By Walking:", walking)
			}

			b.WriteString(strings.Repeat("-", 50) + "\n")
		}
	}

	return b.String()
}

func writeModeSection(b *strings.Builder, heading string, windows map[domain.TimeWindow]*domain.TravelTime) {
	b.WriteString("\n" + heading + "\n")
	for _, wl := range windowLabels {
		if tt := windows[wl.window]; tt != nil {
			b.WriteString("  " + wl.label + ": " + tt.Text + "\n")
		}
	}
}

// NearestLocations keeps, per category, the limit destinations closest by
// driving distance.
func NearestLocations(report domain.DistanceReport, limit int) domain.DistanceReport {
	if limit < 1 {
		limit = 1
	}

	out := make(domain.DistanceReport, len(report))
	for category, results := range report {
		sorted := slices.Clone(results)
		slices.SortStableFunc(sorted, func(a, b domain.DestinationResult) int {
			return a.Distance.Meters - b.Distance.Meters
		})
		if len(sorted) > limit {
			sorted = sorted[:limit]
		}
		out[category] = sorted
	}
	return out
}
