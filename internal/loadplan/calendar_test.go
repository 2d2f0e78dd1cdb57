package loadplan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type weekendCalendar struct{}

func (weekendCalendar) IsWorkingDay(d time.Time) bool {
	wd := d.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

func TestExpandWorkingDays_SkipsWeekends(t *testing.T) {
	// 2026-08-01 is a Saturday.
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	days := ExpandWorkingDays(start, 3, weekendCalendar{})

	assert.Len(t, days, 3)
	assert.Equal(t, "2026-08-03", dateKey(days[0]))
	assert.Equal(t, "2026-08-04", dateKey(days[1]))
	assert.Equal(t, "2026-08-05", dateKey(days[2]))
}

func TestExpandWorkingDays_NilCalendarTreatsEveryDayAsWorking(t *testing.T) {
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	days := ExpandWorkingDays(start, 5, nil)

	assert.Len(t, days, 5)
	assert.Equal(t, "2026-08-05", dateKey(days[4]))
}

func TestRollBackToWorkingDay_WalksBackToFriday(t *testing.T) {
	sunday := time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC)
	got, ok := rollBackToWorkingDay(sunday, weekendCalendar{})

	assert.True(t, ok)
	assert.Equal(t, "2026-07-31", dateKey(got))
}

func TestRollBackToWorkingDay_GivesUpPastBound(t *testing.T) {
	cal := alwaysClosedCalendar{}
	_, ok := rollBackToWorkingDay(time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), cal)

	assert.False(t, ok)
}

type alwaysClosedCalendar struct{}

func (alwaysClosedCalendar) IsWorkingDay(time.Time) bool { return false }
