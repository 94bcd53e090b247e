// Package datebucket maps calendar dates to the day, week and month windows
// the production calendar displays.
//
// All functions operate on local calendar dates, not instants: the
// year/month/day of the input in its own location is what counts, and
// results keep that location. Callers must pass a time whose calendar day
// already is the intended local day.
package datebucket

import (
	"fmt"
	"time"
)

// KeyLayout is the canonical date format used for day keys and storage.
const KeyLayout = "2006-01-02"

// Granularity is the size of a calendar window.
type Granularity int

const (
	Day Granularity = iota
	Week
	Month
)

// String returns the lowercase name of the granularity.
func (g Granularity) String() string {
	switch g {
	case Day:
		return "day"
	case Week:
		return "week"
	case Month:
		return "month"
	default:
		return fmt.Sprintf("granularity(%d)", int(g))
	}
}

// Direction is a navigation step.
type Direction int

const (
	Prev Direction = -1
	Next Direction = 1
)

// Window is a contiguous, inclusive range of calendar days. Start and End
// are both midnights.
type Window struct {
	Start time.Time
	End   time.Time
}

// Normalize truncates t to midnight of its calendar day.
func Normalize(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DayKey returns the YYYY-MM-DD key of t's calendar day.
func DayKey(t time.Time) string {
	return t.Format(KeyLayout)
}

// ParseDay parses a YYYY-MM-DD key into midnight of that day in loc.
func ParseDay(key string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(KeyLayout, key, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing day %q: %w", key, err)
	}
	return t, nil
}

// SameDay reports whether a and b fall on the same calendar day,
// regardless of their locations.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// AddDays moves t by n calendar days.
func AddDays(t time.Time, n int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day()+n, 0, 0, 0, 0, t.Location())
}

// AddMonths moves t by n calendar months, clamping the day of month to the
// length of the target month (Jan 31 + 1 month is Feb 28 or 29).
func AddMonths(t time.Time, n int) time.Time {
	first := time.Date(t.Year(), t.Month()+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	day := t.Day()
	if last := daysInMonth(first); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, t.Location())
}

// Shift moves t by n steps of granularity g.
func Shift(t time.Time, g Granularity, n int) time.Time {
	switch g {
	case Month:
		return AddMonths(t, n)
	case Week:
		return AddDays(t, 7*n)
	default:
		return AddDays(t, n)
	}
}

// DayWindow returns the single-day window containing t.
func DayWindow(t time.Time) Window {
	d := Normalize(t)
	return Window{Start: d, End: d}
}

// WeekWindow returns the 7-day window containing t that starts on weekStartsOn.
func WeekWindow(t time.Time, weekStartsOn time.Weekday) Window {
	d := Normalize(t)
	offset := (int(d.Weekday()) - int(weekStartsOn) + 7) % 7
	start := AddDays(d, -offset)
	return Window{Start: start, End: AddDays(start, 6)}
}

// MonthWindow returns the window from the first to the last day of t's month.
func MonthWindow(t time.Time) Window {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return Window{Start: start, End: AddDays(start, daysInMonth(start)-1)}
}

// WindowFor returns the window of granularity g containing t.
func WindowFor(g Granularity, t time.Time, weekStartsOn time.Weekday) Window {
	switch g {
	case Month:
		return MonthWindow(t)
	case Week:
		return WeekWindow(t, weekStartsOn)
	default:
		return DayWindow(t)
	}
}

// MonthGrid returns the window a month calendar grid covers: from the start
// of the week containing the first of the month to the end of the week
// containing its last day. Its length is always a multiple of 7.
func MonthGrid(t time.Time, weekStartsOn time.Weekday) Window {
	m := MonthWindow(t)
	return Window{
		Start: WeekWindow(m.Start, weekStartsOn).Start,
		End:   WeekWindow(m.End, weekStartsOn).End,
	}
}

// DaysInWindow returns every calendar day from w.Start to w.End inclusive,
// ascending. An inverted window yields no days.
func DaysInWindow(w Window) []time.Time {
	start := Normalize(w.Start)
	end := Normalize(w.End)
	if end.Before(start) {
		return nil
	}
	var days []time.Time
	for d := start; !d.After(end); d = AddDays(d, 1) {
		days = append(days, d)
	}
	return days
}

// Days returns the calendar days covered by w.
func (w Window) Days() []time.Time {
	return DaysInWindow(w)
}

// Len returns the number of calendar days in w.
func (w Window) Len() int {
	return len(DaysInWindow(w))
}

// Contains reports whether t's calendar day falls inside w.
func (w Window) Contains(t time.Time) bool {
	k := DayKey(t)
	return k >= DayKey(w.Start) && k <= DayKey(w.End)
}

// Equal reports whether both windows cover the same calendar days.
func (w Window) Equal(o Window) bool {
	return SameDay(w.Start, o.Start) && SameDay(w.End, o.End)
}

// String renders the window as "start..end".
func (w Window) String() string {
	return DayKey(w.Start) + ".." + DayKey(w.End)
}

// Weeks splits the days of w into consecutive rows of seven.
// The final row is shorter when the window length is not a multiple of 7.
func Weeks(w Window) [][]time.Time {
	days := DaysInWindow(w)
	var rows [][]time.Time
	for i := 0; i < len(days); i += 7 {
		end := i + 7
		if end > len(days) {
			end = len(days)
		}
		rows = append(rows, days[i:end])
	}
	return rows
}

// Label returns a human-readable label for the window at granularity g
// (e.g. "January 2024", "2024-W01", "2024-01-15").
func Label(g Granularity, w Window) string {
	switch g {
	case Month:
		return w.Start.Format("January 2006")
	case Week:
		year, week := w.Start.ISOWeek()
		return fmt.Sprintf("%d-W%02d (%s to %s)", year, week,
			w.Start.Format("02/01"), w.End.Format("02/01"))
	default:
		return w.Start.Format("Monday, 02 January 2006")
	}
}

func daysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}
