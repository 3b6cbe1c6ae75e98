package schedule

import (
	"time"

	"github.com/salonworks/booking-api/internal/models"
)

// DayWindow resolves the business-hours window for the calendar day of
// ref. Returns false when the store does not open that day.
func DayWindow(hours []models.StoreBusinessHours, ref time.Time) (Interval, bool) {
	day := int(ref.Weekday())
	for _, h := range hours {
		if h.DayOfWeek != day {
			continue
		}
		if h.IsClosed || h.OpenTime == "" || h.CloseTime == "" {
			return Interval{}, false
		}
		return Interval{
			Start: OnDate(h.OpenTime, ref),
			End:   OnDate(h.CloseTime, ref),
		}, true
	}
	return Interval{}, false
}

// IsStoreOpen checks weekly hours first, then ad-hoc closures.
func IsStoreOpen(
	hours []models.StoreBusinessHours,
	closures []models.StoreClosure,
	at time.Time,
) bool {
	window, ok := DayWindow(hours, at)
	if !ok || !window.Contains(at) {
		return false
	}
	for _, cl := range closures {
		if (Interval{Start: cl.StartDatetime, End: cl.EndDatetime}).Contains(at) {
			return false
		}
	}
	return true
}

// NextOpenTime finds the earliest instant at or after from when the
// store is open, looking ahead up to fourteen days. Returns nil when
// no opening exists in that horizon.
func NextOpenTime(
	hours []models.StoreBusinessHours,
	closures []models.StoreClosure,
	from time.Time,
) *time.Time {
	for dayOffset := 0; dayOffset < 14; dayOffset++ {
		ref := from.AddDate(0, 0, dayOffset)

		window, ok := DayWindow(hours, ref)
		if !ok {
			continue
		}

		candidate := window.Start
		if dayOffset == 0 && from.After(candidate) {
			candidate = from
		}

		// A closure covering the candidate pushes it to the closure
		// end; repeat until the candidate is clear or past closing.
		for changed := true; changed; {
			changed = false
			for _, cl := range closures {
				iv := Interval{Start: cl.StartDatetime, End: cl.EndDatetime}
				if iv.Contains(candidate) && cl.EndDatetime.After(candidate) {
					candidate = cl.EndDatetime
					changed = true
				}
			}
		}

		if candidate.Before(window.End) {
			return &candidate
		}
	}
	return nil
}
