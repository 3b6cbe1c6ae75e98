package appointment

import "time"

// Overlaps reports whether [aStart, aEnd) intersects [bStart, bEnd).
// Back-to-back windows sharing a boundary do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}
