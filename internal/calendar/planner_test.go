package calendar

import (
	"testing"
	"time"
)

func TestTodayShiftsBackward(t *testing.T) {
	// 02:00 UTC on Jan 2 is still Jan 1 in approximated Eastern time.
	ref := time.Date(2025, 1, 2, 2, 0, 0, 0, time.UTC)

	got := Today(ref, 5)
	if got != "2025-01-01" {
		t.Errorf("Today = %s, want 2025-01-01", got)
	}

	// Later in the day the shift no longer crosses midnight.
	ref = time.Date(2025, 1, 2, 12, 0, 0, 0, time.UTC)
	got = Today(ref, 5)
	if got != "2025-01-02" {
		t.Errorf("Today = %s, want 2025-01-02", got)
	}
}

func TestPlanDatesCoverage(t *testing.T) {
	ref := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)

	dates := PlanDates(ref, 5, 1)
	if len(dates) == 0 {
		t.Fatal("PlanDates returned no dates")
	}

	if dates[0] != "2025-03-10" {
		t.Errorf("first date = %s, want 2025-03-10", dates[0])
	}
	if dates[len(dates)-1] != "2025-04-10" {
		t.Errorf("last date = %s, want 2025-04-10", dates[len(dates)-1])
	}

	// days_between(D, D+1 month) + 1 for March 10 -> April 10
	if len(dates) != 32 {
		t.Errorf("len(dates) = %d, want 32", len(dates))
	}

	seen := make(map[string]bool, len(dates))
	for i, d := range dates {
		if seen[d] {
			t.Errorf("duplicate date %s", d)
		}
		seen[d] = true

		if i > 0 && dates[i-1] >= d {
			t.Errorf("dates not strictly ascending at %d: %s >= %s", i, dates[i-1], d)
		}
	}
}

func TestPlanDatesNoGaps(t *testing.T) {
	ref := time.Date(2025, 2, 25, 12, 0, 0, 0, time.UTC)

	dates := PlanDates(ref, 5, 1)
	prev, err := time.Parse(DateLayout, dates[0])
	if err != nil {
		t.Fatalf("failed to parse %s: %v", dates[0], err)
	}

	for _, d := range dates[1:] {
		cur, err := time.Parse(DateLayout, d)
		if err != nil {
			t.Fatalf("failed to parse %s: %v", d, err)
		}
		if cur.Sub(prev) != 24*time.Hour {
			t.Errorf("gap between %s and %s", prev.Format(DateLayout), d)
		}
		prev = cur
	}
}

func TestPlanDatesZeroHorizon(t *testing.T) {
	ref := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	dates := PlanDates(ref, 5, 0)
	if len(dates) != 1 {
		t.Fatalf("len(dates) = %d, want 1", len(dates))
	}
	if dates[0] != "2025-06-15" {
		t.Errorf("dates[0] = %s, want 2025-06-15", dates[0])
	}
}
