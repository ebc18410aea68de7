package schedule

import (
	"time"

	"github.com/nurpe/pestcare-visits/internal/model"
)

const dayLayout = "2006-01-02"

// DateOnly truncates t to its calendar day, expressed as UTC midnight.
// The wall-clock day of t's own location is kept.
func DateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today returns the calendar day of now in loc.
func Today(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return DateOnly(now.In(loc))
}

// FormatDay renders a calendar day as YYYY-MM-DD.
func FormatDay(t time.Time) string {
	return t.Format(dayLayout)
}

// ParseDay parses YYYY-MM-DD into a calendar day.
func ParseDay(raw string) (time.Time, error) {
	t, err := time.Parse(dayLayout, raw)
	if err != nil {
		return time.Time{}, err
	}
	return DateOnly(t), nil
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// AddMonths moves t forward by n months, placing the result on anchorDay or on
// the last day of the target month when anchorDay does not exist there.
func AddMonths(t time.Time, n int, anchorDay int) time.Time {
	y, m, _ := t.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	day := anchorDay
	if last := daysIn(first.Year(), first.Month()); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}

// DateCursor walks calendar days at a contract cadence. Monthly and quarterly
// steps are anchored to the day-of-month of the starting date, so a cursor
// started on Jan 31 visits Feb 28 (or 29) and then Mar 31.
type DateCursor struct {
	cadence   model.Cadence
	anchorDay int
	steps     int
	start     time.Time
	current   time.Time
}

func NewDateCursor(start time.Time, cadence model.Cadence) *DateCursor {
	start = DateOnly(start)
	return &DateCursor{
		cadence:   cadence,
		anchorDay: start.Day(),
		start:     start,
		current:   start,
	}
}

func (c *DateCursor) Current() time.Time {
	return c.current
}

// Advance moves the cursor one cadence step. It returns false when the cadence
// has no next step (one-off or unknown), leaving the cursor unchanged.
func (c *DateCursor) Advance() bool {
	switch c.cadence {
	case model.CadenceWeekly:
		c.steps++
		c.current = c.start.AddDate(0, 0, 7*c.steps)
	case model.CadenceMonthly:
		c.steps++
		c.current = AddMonths(c.start, c.steps, c.anchorDay)
	case model.CadenceQuarterly:
		c.steps++
		c.current = AddMonths(c.start, 3*c.steps, c.anchorDay)
	default:
		return false
	}
	return true
}

// Recurring reports whether the cadence produces more than one date.
func Recurring(cadence model.Cadence) bool {
	switch cadence {
	case model.CadenceWeekly, model.CadenceMonthly, model.CadenceQuarterly:
		return true
	default:
		return false
	}
}

func validCadence(cadence model.Cadence) bool {
	return Recurring(cadence) || cadence == model.CadenceOneOff
}
