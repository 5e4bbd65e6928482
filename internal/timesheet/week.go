package timesheet

import "time"

// MondayOf returns the Monday of the week containing t, truncated to
// midnight in t's location. Saturday and Sunday map to the preceding
// Monday, so a weekend run targets the week just worked.
func MondayOf(t time.Time) time.Time {
	offset := int(t.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset += 7
	}
	year, month, day := t.AddDate(0, 0, -offset).Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
