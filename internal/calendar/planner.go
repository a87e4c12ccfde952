// Package calendar computes the inclusive range of business-calendar dates
// the ingestion pipeline fetches from the upstream feed.
package calendar

import "time"

// DateLayout is the wire format for calendar dates throughout the service.
const DateLayout = "2006-01-02"

// Today derives the current calendar date in the feed's reference timezone.
// The reference instant is shifted backward by a fixed hour offset to
// approximate US Eastern; the approximation ignores daylight saving.
func Today(ref time.Time, easternOffsetHours int) string {
	shifted := ref.UTC().Add(-time.Duration(easternOffsetHours) * time.Hour)
	return shifted.Format(DateLayout)
}

// PlanDates returns every calendar date from the reference day through
// reference day + horizonMonths inclusive, ascending, with no gaps. Weekends
// are not filtered; that is a presentation concern over the fetched set.
func PlanDates(ref time.Time, easternOffsetHours, horizonMonths int) []string {
	start, err := time.Parse(DateLayout, Today(ref, easternOffsetHours))
	if err != nil {
		// Unreachable: Today always produces the layout it parses.
		return nil
	}
	end := start.AddDate(0, horizonMonths, 0)

	var dates []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(DateLayout))
	}
	return dates
}
