package domain

import (
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		seconds int
		want    string
	}{
		{3660, "1 hr 1 min"},
		{59, "0 min"},
		{7200, "2 hr 0 min"},
		{1800, "30 min"},
		{0, "0 min"},
	}

	for _, tc := range cases {
		if got := FormatDuration(tc.seconds); got != tc.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tc.seconds, got, tc.want)
		}
	}
}

func TestFormatDistance(t *testing.T) {
	cases := []struct {
		meters int
		want   string
	}{
		{1534, "1.5 km"},
		{999, "1.0 km"},
		{12000, "12.0 km"},
		{40, "0.0 km"},
	}

	for _, tc := range cases {
		if got := FormatDistance(tc.meters); got != tc.want {
			t.Errorf("FormatDistance(%d) = %q, want %q", tc.meters, got, tc.want)
		}
	}
}

func TestDeparturesPeakWindowsAreNextDay(t *testing.T) {
	loc := time.FixedZone("AEST", 10*3600)
	now := time.Date(2026, 3, 31, 22, 15, 0, 0, loc)

	got := Departures(now)

	if !got[WindowCurrent].Equal(now) {
		t.Fatalf("current = %v, want %v", got[WindowCurrent], now)
	}
	wantMorning := time.Date(2026, 4, 1, 9, 0, 0, 0, loc)
	if !got[WindowMorningPeak].Equal(wantMorning) {
		t.Fatalf("morning_peak = %v, want %v", got[WindowMorningPeak], wantMorning)
	}
	wantEvening := time.Date(2026, 4, 1, 17, 0, 0, 0, loc)
	if !got[WindowEveningPeak].Equal(wantEvening) {
		t.Fatalf("evening_peak = %v, want %v", got[WindowEveningPeak], wantEvening)
	}
}

func TestTravelPlan(t *testing.T) {
	work := TravelPlan(CategoryWork)
	if len(work) != 5 {
		t.Fatalf("work plan len = %d, want 5", len(work))
	}
	for _, q := range work {
		if q.Mode == ModeWalking {
			t.Fatalf("work plan must not include walking")
		}
	}

	for _, c := range []string{CategoryGroceries, CategorySchools} {
		plan := TravelPlan(c)
		if len(plan) != 2 || plan[1] != (TravelQuery{Mode: ModeWalking, Window: WindowCurrent}) {
			t.Fatalf("%s plan = %+v, want transit + walking current", c, plan)
		}
	}

	other := TravelPlan("gyms")
	if len(other) != 1 || other[0] != (TravelQuery{Mode: ModeTransit, Window: WindowCurrent}) {
		t.Fatalf("other plan = %+v, want transit current only", other)
	}
}

func TestCategoryResultSortByDrivingIsStable(t *testing.T) {
	res := func(name string, seconds int, present bool) DestinationResult {
		windows := map[TimeWindow]*TravelTime{WindowCurrent: nil}
		if present {
			windows[WindowCurrent] = NewTravelTime(seconds)
		}
		return DestinationResult{Destination: name, Modes: ModeTimes{ModeDriving: windows}}
	}

	c := CategoryResult{
		res("none", 0, false),
		res("b", 600, true),
		res("a", 300, true),
		res("b2", 600, true),
	}
	c.SortByDriving()

	want := []string{"a", "b", "b2", "none"}
	for i, w := range want {
		if c[i].Destination != w {
			t.Fatalf("position %d = %q, want %q", i, c[i].Destination, w)
		}
	}
}
