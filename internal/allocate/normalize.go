package allocate

import (
	"github.com/ptomasek/tally/pkg/models"
)

// NormalizeDay rescales and rounds a day's entries so they sum to exactly
// WorkdayHours. Every entry is scaled by WorkdayHours/currentTotal, rounded
// to the nearest Quantum and floored at Quantum; the rounding residual is
// then settled in quantum steps, preferring entries that are not fixed
// meetings. Empty days are left untouched apart from a zero total.
func NormalizeDay(day *models.TimesheetDay) {
	if len(day.Entries) == 0 {
		day.TotalHours = 0
		return
	}

	current := sumHours(day.Entries)
	if current <= 0 {
		day.TotalHours = 0
		return
	}

	factor := WorkdayHours / current
	for i := range day.Entries {
		scaled := Quantize(day.Entries[i].Hours * factor)
		if scaled < Quantum {
			scaled = Quantum
		}
		day.Entries[i].Hours = scaled
	}

	settleResidual(day)
	day.TotalHours = sumHours(day.Entries)
}

// settleResidual nudges entry hours until the day sums to WorkdayHours.
// A surplus goes whole to the largest entry that is not a fixed meeting; a
// deficit is taken from the largest entries still above the floor. Fixed
// meetings are only touched when every other entry is pinned, and a day
// holding more floor-height entries than fit sheds entries from the end,
// where the weakest evidence was merged last.
func settleResidual(day *models.TimesheetDay) {
	diff := Quantize(WorkdayHours - sumHours(day.Entries))

	if diff >= Quantum {
		i := largestAdjustable(day.Entries)
		if i < 0 {
			i = largestEntry(day.Entries)
		}
		day.Entries[i].Hours += diff
		return
	}

	for diff <= -Quantum {
		i := largestAboveFloor(day.Entries, false)
		if i < 0 {
			i = largestAboveFloor(day.Entries, true)
		}
		if i < 0 {
			day.Entries = day.Entries[:len(day.Entries)-1]
		} else {
			step := -diff
			if room := day.Entries[i].Hours - Quantum; step > room {
				step = room
			}
			day.Entries[i].Hours = Quantize(day.Entries[i].Hours - step)
		}
		diff = Quantize(WorkdayHours - sumHours(day.Entries))
	}
}

// largestAdjustable returns the index of the largest entry not flagged as a
// fixed meeting, or -1 when every entry is one. Ties keep the earliest
// entry.
func largestAdjustable(entries []models.TimesheetEntry) int {
	best := -1
	for i, entry := range entries {
		if entry.IsFixedMeeting {
			continue
		}
		if best < 0 || entry.Hours > entries[best].Hours {
			best = i
		}
	}
	return best
}

// largestAboveFloor returns the index of the largest entry that can still
// give up a quantum, or -1 when none can. Fixed meetings are skipped unless
// includeMeetings is set. Ties keep the earliest entry.
func largestAboveFloor(entries []models.TimesheetEntry, includeMeetings bool) int {
	best := -1
	for i, entry := range entries {
		if entry.IsFixedMeeting && !includeMeetings {
			continue
		}
		if entry.Hours < Quantum+Quantum {
			continue
		}
		if best < 0 || entry.Hours > entries[best].Hours {
			best = i
		}
	}
	return best
}

func largestEntry(entries []models.TimesheetEntry) int {
	best := 0
	for i, entry := range entries {
		if entry.Hours > entries[best].Hours {
			best = i
		}
	}
	return best
}
