package loadplan

import "time"

// maxRollbackDays bounds how far the Demand Placer will walk backward to
// find a working day for an order's naive loading date before giving up on
// it for this horizon (§4.B).
const maxRollbackDays = 7

// ExpandWorkingDays is the Working-Day Expander (§4.A). It walks forward
// from start, collecting the first n days the calendar reports as working,
// and returns them in order. Non-working days consume no slot; there is no
// upper bound on how far it looks ahead.
func ExpandWorkingDays(start time.Time, n int, cal WorkingDayCalendar) []time.Time {
	if n < 0 {
		n = 0
	}
	days := make([]time.Time, 0, n)
	d := normalizeDate(start)
	for len(days) < n {
		if isWorkingDay(d, cal) {
			days = append(days, d)
		}
		d = d.AddDate(0, 0, 1)
	}
	return days
}

// rollBackToWorkingDay walks backward from d, inclusive, up to
// maxRollbackDays days, returning the first working day found. It reports
// false if none of those days are working.
func rollBackToWorkingDay(d time.Time, cal WorkingDayCalendar) (time.Time, bool) {
	candidate := normalizeDate(d)
	for offset := 0; offset <= maxRollbackDays; offset++ {
		if isWorkingDay(candidate, cal) {
			return candidate, true
		}
		candidate = candidate.AddDate(0, 0, -1)
	}
	return time.Time{}, false
}
