package schedule

import (
	"sort"
	"time"
)

type TimeSlot struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Interval is a half-open [Start, End) block of wall-clock time.
type Interval struct {
	Start time.Time
	End   time.Time
}

func (iv Interval) Contains(t time.Time) bool {
	return !t.Before(iv.Start) && t.Before(iv.End)
}

func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && iv.End.After(other.Start)
}

// FreeSlots subtracts the busy intervals from a working window and
// returns what remains as "HH:MM" slots, in order. Busy blocks may
// overlap each other and may extend past the window.
func FreeSlots(window Interval, busy []Interval) []TimeSlot {
	if !window.End.After(window.Start) {
		return nil
	}

	sorted := make([]Interval, 0, len(busy))
	for _, b := range busy {
		if b.End.After(window.Start) && b.Start.Before(window.End) {
			sorted = append(sorted, b)
		}
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	slots := make([]TimeSlot, 0)
	cursor := window.Start

	for _, b := range sorted {
		if b.Start.After(cursor) {
			end := b.Start
			if end.After(window.End) {
				end = window.End
			}
			if end.After(cursor) {
				slots = append(slots, TimeSlot{
					Start: FormatHM(cursor),
					End:   FormatHM(end),
				})
			}
		}
		if b.End.After(cursor) {
			cursor = b.End
		}
		if !cursor.Before(window.End) {
			return slots
		}
	}

	if window.End.After(cursor) {
		slots = append(slots, TimeSlot{
			Start: FormatHM(cursor),
			End:   FormatHM(window.End),
		})
	}

	return slots
}
