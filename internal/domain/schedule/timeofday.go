package schedule

import "time"

const hmLayout = "15:04"

// ValidHM reports whether a time-of-day string is well formed "HH:MM".
func ValidHM(hm string) bool {
	_, err := time.Parse(hmLayout, hm)
	return err == nil
}

// OnDate anchors an "HH:MM" string on the calendar day of ref, in
// ref's location. Malformed input yields the zero time.
func OnDate(hm string, ref time.Time) time.Time {
	t, err := time.Parse(hmLayout, hm)
	if err != nil {
		return time.Time{}
	}
	return time.Date(
		ref.Year(), ref.Month(), ref.Day(),
		t.Hour(), t.Minute(), 0, 0,
		ref.Location(),
	)
}

func FormatHM(t time.Time) string {
	return t.Format(hmLayout)
}
