package services

import (
	"property-insight-service/internal/domain"
	"strings"
	"testing"
)

func sampleReport() domain.DistanceReport {
	return domain.DistanceReport{
		domain.CategorySchools: {
			{
				Destination: "Sydney Grammar School, College Street, Darlinghurst",
				Distance:    domain.NewDistance(7400),
				Modes: domain.ModeTimes{
					domain.ModeDriving: {domain.WindowCurrent: domain.NewTravelTime(1260)},
					domain.ModeTransit: {domain.WindowCurrent: nil},
					domain.ModeWalking: {domain.WindowCurrent: domain.NewTravelTime(5400)},
				},
			},
		},
		domain.CategoryWork: {
			{
				Destination: "Wynard Station Sydney, NSW",
				Distance:    domain.NewDistance(8200),
				Modes: domain.ModeTimes{
					domain.ModeDriving: {
						domain.WindowCurrent:     domain.NewTravelTime(1800),
						domain.WindowMorningPeak: domain.NewTravelTime(2700),
						domain.WindowEveningPeak: nil,
					},
					domain.ModeTransit: {domain.WindowCurrent: domain.NewTravelTime(2400)},
				},
			},
		},
		domain.CategoryGroceries: {
			{
				Destination: "12 Hall St, Bondi Beach NSW 2026",
				Distance:    domain.NewDistance(1500),
				Modes: domain.ModeTimes{
					domain.ModeDriving: {domain.WindowCurrent: domain.NewTravelTime(300)},
				},
				StoreInfo: &domain.StoreInfo{Name: "Woolworths", DisplayName: "Woolworths Bondi Beach", FormattedAddress: "12 Hall St, Bondi Beach NSW 2026"},
			},
			{
				Destination: "5 Spring St, Bondi Junction NSW 2022",
				Distance:    domain.NewDistance(900),
				Modes: domain.ModeTimes{
					domain.ModeDriving: {domain.WindowCurrent: domain.NewTravelTime(420)},
				},
			},
		},
	}
}

func TestFormatDistanceSummary(t *testing.T) {
	out := FormatDistanceSummary(sampleReport())

	work := strings.Index(out, "WORK LOCATIONS:")
	groceries := strings.Index(out, "GROCERIES LOCATIONS:")
	schools := strings.Index(out, "SCHOOLS LOCATIONS:")
	if work < 0 || groceries < 0 || schools < 0 || !(work < groceries && groceries < schools) {
		t.Fatalf("category order wrong:\n%s", out)
	}

	for _, want := range []string{
		"Distance: 8.2 km",
		"  Current: 30 min",
		"  Morning Peak (9am): 45 min",
		"Store: Woolworths Bondi Beach",
		"By Walking:\n  Current: 1 hr 30 min",
		strings.Repeat("-", 50),
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}

	if strings.Contains(out, "Evening Peak") {
		t.Fatalf("absent cells must not be printed:\n%s", out)
	}

	// Groceries are printed by driving time, nearest first.
	if strings.Index(out, "12 Hall St") > strings.Index(out, "5 Spring St") {
		t.Fatalf("groceries not ordered by driving time:\n%s", out)
	}
}

func TestFormatDistanceSummaryEmpty(t *testing.T) {
	if out := FormatDistanceSummary(domain.DistanceReport{}); out != "" {
		t.Fatalf("summary = %q, want empty", out)
	}
}

func TestNearestLocations(t *testing.T) {
	got := NearestLocations(sampleReport(), 1)

	groceries := got[domain.CategoryGroceries]
	if len(groceries) != 1 || groceries[0].Distance.Meters != 900 {
		t.Fatalf("nearest grocery = %+v", groceries)
	}
	if len(got[domain.CategoryWork]) != 1 || len(got[domain.CategorySchools]) != 1 {
		t.Fatalf("other categories = %+v", got)
	}
}
