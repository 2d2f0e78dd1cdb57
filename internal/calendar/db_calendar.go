// Package calendar adapts the holiday master table to the pure planning
// core's working-day calendar interface.
package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/pinggolf/loadplan-toolbox/internal/db"
)

// DBCalendar treats Saturdays, Sundays, and any holidays-table date inside
// its loaded window as non-working. It loads its holiday set once for a
// bounded window rather than querying per date; outside that window only
// weekends are non-working.
type DBCalendar struct {
	holidays map[time.Time]bool
}

// LoadDBCalendar preloads holidays covering [from, from+lookaheadDays] plus
// the rollback margin the demand placer may walk into.
func LoadDBCalendar(ctx context.Context, q *db.Queries, from time.Time, lookaheadDays int) (*DBCalendar, error) {
	const rollbackMargin = 7
	to := from.AddDate(0, 0, lookaheadDays+rollbackMargin)

	rows, err := q.ListHolidays(ctx, from.AddDate(0, 0, -rollbackMargin), to)
	if err != nil {
		return nil, fmt.Errorf("load holiday calendar: %w", err)
	}

	holidays := make(map[time.Time]bool, len(rows))
	for _, h := range rows {
		holidays[normalize(h.Date)] = true
	}
	return &DBCalendar{holidays: holidays}, nil
}

// IsWorkingDay reports whether d is neither a weekend nor a holiday.
func (c *DBCalendar) IsWorkingDay(d time.Time) bool {
	d = normalize(d)
	if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return false
	}
	return !c.holidays[d]
}

func normalize(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}
