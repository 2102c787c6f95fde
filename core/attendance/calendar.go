package attendance

import (
	"fmt"
	"time"

	"github.com/JCBT04/Capstone/core"
)

// Calendar derives the per-month day map the attendance screen renders.
// Stateless: every call rebuilds the whole map from the records it is given.
type Calendar struct {
	// School-year window, both ends inclusive. Days outside it are never
	// marked, defaulted or otherwise.
	Start time.Time
	End   time.Time
}

func NewCalendar(conf *core.Config) Calendar {
	return Calendar{Start: conf.SchoolYearStart(), End: conf.SchoolYearEnd()}
}

// MonthView builds the dateKey -> DayCell map for (year, month).
//
// Every weekday of the month that is inside the school-year window and not
// after `now` gets a default absent cell: unmarked past school days are
// presumed absent until a record proves otherwise. Records for the month then
// override (not merge) their day's cell; when several records land on the
// same date the last one in the input wins. Weekends, out-of-window days and
// future days have no entry at all; missing means "no special styling".
//
// Records with no date, an unparseable date, or a date outside the requested
// month are skipped; bad data upstream never fails the derivation.
func (c Calendar) MonthView(records []Record, year int, month time.Month, now time.Time) map[string]DayCell {
	view := make(map[string]DayCell)

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	daysInMonth := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()

	for d := 1; d <= daysInMonth; d++ {
		day := time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
		if !c.isSchoolDay(day) || day.After(today) {
			continue
		}
		view[dateKey(day)] = absentCell
	}

	for _, rec := range records {
		if rec.Date == "" {
			continue
		}
		day, err := time.ParseInLocation("2006-01-02", rec.Date, time.UTC)
		if err != nil {
			continue
		}
		if day.Year() != year || day.Month() != month {
			continue
		}
		if !c.isSchoolDay(day) || day.After(today) {
			continue
		}
		view[dateKey(day)] = CellFor(rec.Status)
	}

	return view
}

// TodayStatus classifies a student's current day for the home dashboard:
// weekend, or the first record's status, or absent when no record exists yet.
func (c Calendar) TodayStatus(records []Record, now time.Time) string {
	if wd := now.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return StatusWeekend
	}
	key := dateKey(now)
	for _, rec := range records {
		if rec.Date != key {
			continue
		}
		if rec.Status == "" {
			return StatusPresent
		}
		return rec.Status
	}
	return StatusAbsent
}

func (c Calendar) isSchoolDay(day time.Time) bool {
	if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return false
	}
	return !day.Before(c.Start) && !day.After(c.End)
}

func dateKey(day time.Time) string {
	return fmt.Sprintf("%04d-%02d-%02d", day.Year(), int(day.Month()), day.Day())
}
