package aggregate

import (
	"fmt"
	"strings"
	"time"
)

// MonthKey is the canonical month identifier: year*12 + (month-1). The
// upstream system keys months by free-text labels like "May 2025"; those are
// parsed once at the boundary and compared as integers everywhere else.
type MonthKey int

// MonthKeyFor derives the key for the month containing t.
func MonthKeyFor(t time.Time) MonthKey {
	return MonthKey(t.Year()*12 + int(t.Month()) - 1)
}

// Year returns the calendar year of the key.
func (m MonthKey) Year() int {
	return int(m) / 12
}

// Month returns the calendar month of the key.
func (m MonthKey) Month() time.Month {
	return time.Month(int(m)%12 + 1)
}

// Label renders the presentation form, e.g. "May 2025".
func (m MonthKey) Label() string {
	return fmt.Sprintf("%s %d", m.Month().String(), m.Year())
}

// Time returns midnight UTC on the first day of the month.
func (m MonthKey) Time() time.Time {
	return time.Date(m.Year(), m.Month(), 1, 0, 0, 0, 0, time.UTC)
}

var monthsByName = func() map[string]time.Month {
	byName := make(map[string]time.Month, 12)
	for month := time.January; month <= time.December; month++ {
		byName[strings.ToLower(month.String())] = month
	}
	return byName
}()

// ParseMonthLabel parses "<month name> <year>" case-insensitively. It returns
// false for anything it cannot parse so callers can fall back instead of
// letting a bad label corrupt month bucketing.
func ParseMonthLabel(label string) (MonthKey, bool) {
	fields := strings.Fields(strings.TrimSpace(label))
	if len(fields) != 2 {
		return 0, false
	}
	month, ok := monthsByName[strings.ToLower(fields[0])]
	if !ok {
		return 0, false
	}
	var year int
	if _, err := fmt.Sscanf(fields[1], "%d", &year); err != nil || year < 1 {
		return 0, false
	}
	return MonthKey(year*12 + int(month) - 1), true
}

// weekMonday returns the Monday starting the week containing t.
func weekMonday(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7 // Monday=0 .. Sunday=6
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()).AddDate(0, 0, -offset)
}

// weekOfMonth numbers weeks by their Monday: ceil(day-of-month of the
// week's Monday / 7). Every day of a Monday-started week shares the number.
func weekOfMonth(t time.Time) int {
	return (weekMonday(t).Day()-1)/7 + 1
}

// WeekKey buckets t into its Monday-started week, labeled "<MONTH-ABBR> W<n>",
// e.g. "JAN W2". The month abbreviation follows the week's Monday so that a
// week spanning a month boundary still yields one bucket.
func WeekKey(t time.Time) string {
	monday := weekMonday(t)
	return fmt.Sprintf("%s W%d", strings.ToUpper(monday.Format("Jan")), weekOfMonth(t))
}

// SimpleWeekKey is the month-less variant, "W<n>", used by single-month charts.
func SimpleWeekKey(t time.Time) string {
	return fmt.Sprintf("W%d", weekOfMonth(t))
}
