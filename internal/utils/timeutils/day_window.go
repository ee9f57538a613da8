package timeutils

import "time"

// DayWindow returns the inclusive bounds of the calendar day containing t,
// in t's location. The quota window is derived per call, never stored.
func DayWindow(t time.Time) (start, end time.Time) {
	year, month, day := t.Date()
	start = time.Date(year, month, day, 0, 0, 0, 0, t.Location())
	end = start.AddDate(0, 0, 1).Add(-time.Nanosecond)
	return start, end
}
