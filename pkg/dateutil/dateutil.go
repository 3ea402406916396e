package dateutil

import (
	"fmt"
	"strings"
	"time"
)

// CalendarDate is a timezone-naive year/month/day triple.
// Two values are the same day iff all three fields match, so CalendarDate
// can be compared with == and used as a map key.
type CalendarDate struct {
	Year  int
	Month time.Month
	Day   int
}

// Date returns a normalized CalendarDate. Out-of-range values roll over the
// same way time.Date does (e.g. Jan 32 becomes Feb 1).
func Date(year int, month time.Month, day int) CalendarDate {
	return FromTime(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// FromTime returns the wall-clock date of t in t's own location.
// Time of day and zone are dropped.
func FromTime(t time.Time) CalendarDate {
	y, m, d := t.Date()
	return CalendarDate{Year: y, Month: m, Day: d}
}

// Time returns midnight UTC of the date
func (d CalendarDate) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// In returns midnight of the date in loc
func (d CalendarDate) In(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// Weekday returns the day of the week
func (d CalendarDate) Weekday() time.Weekday {
	return d.Time().Weekday()
}

// AddDays moves the date by n calendar days (n may be negative).
// Month and year boundaries are handled by time.Time arithmetic.
func (d CalendarDate) AddDays(n int) CalendarDate {
	return FromTime(d.Time().AddDate(0, 0, n))
}

// Before reports whether d is strictly earlier than other
func (d CalendarDate) Before(other CalendarDate) bool {
	return d.Compare(other) < 0
}

// After reports whether d is strictly later than other
func (d CalendarDate) After(other CalendarDate) bool {
	return d.Compare(other) > 0
}

// Compare returns -1, 0 or +1 depending on whether d is before, the same day
// as, or after other.
func (d CalendarDate) Compare(other CalendarDate) int {
	switch {
	case d.Year != other.Year:
		return sign(d.Year - other.Year)
	case d.Month != other.Month:
		return sign(int(d.Month) - int(other.Month))
	default:
		return sign(d.Day - other.Day)
	}
}

// IsZero reports whether d is the zero CalendarDate
func (d CalendarDate) IsZero() bool {
	return d == CalendarDate{}
}

// String formats the date as YYYY-MM-DD
func (d CalendarDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}

// IsWeekday returns true if the date is Monday-Friday
func IsWeekday(date CalendarDate) bool {
	weekday := date.Weekday()
	return weekday >= time.Monday && weekday <= time.Friday
}

// IsWeekend returns true if the date is Saturday or Sunday
func IsWeekend(date CalendarDate) bool {
	weekday := date.Weekday()
	return weekday == time.Saturday || weekday == time.Sunday
}

// IsSameDay returns true if two dates are on the same day
func IsSameDay(date1, date2 CalendarDate) bool {
	return date1.Year == date2.Year &&
		date1.Month == date2.Month &&
		date1.Day == date2.Day
}

// IsSameDayTime returns true if two times fall on the same calendar day,
// each read in its own location. Time of day is ignored.
func IsSameDayTime(t1, t2 time.Time) bool {
	return IsSameDay(FromTime(t1), FromTime(t2))
}

var dateFormats = []string{
	"2006-01-02",
	"2006/01/02",
	"2006/1/2",
	"02.01.2006",
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// ParseDate parses a date string in one of the supported formats.
// Any time-of-day component is discarded.
func ParseDate(dateStr string) (CalendarDate, error) {
	dateStr = strings.TrimSpace(dateStr)
	if dateStr == "" {
		return CalendarDate{}, fmt.Errorf("empty date")
	}

	for _, format := range dateFormats {
		if t, err := time.Parse(format, dateStr); err == nil {
			return FromTime(t), nil
		}
	}

	return CalendarDate{}, fmt.Errorf("unrecognized date %q, expected YYYY-MM-DD", dateStr)
}

// ParseDates parses every string in dates, failing on the first bad one
func ParseDates(dates []string) ([]CalendarDate, error) {
	result := make([]CalendarDate, 0, len(dates))
	for _, s := range dates {
		d, err := ParseDate(s)
		if err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	return result, nil
}

// Today returns today's local date
func Today() CalendarDate {
	return FromTime(time.Now())
}
