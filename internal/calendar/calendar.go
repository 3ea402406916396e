package calendar

import (
	"errors"

	"github.com/username/bizday-calc/pkg/dateutil"
	"go.uber.org/zap"
)

// DayType represents the type of day
type DayType int

const (
	DayTypeWorkday DayType = iota + 1
	DayTypeWeekend
	DayTypeHoliday
	DayTypeClosure
)

func (t DayType) String() string {
	switch t {
	case DayTypeWorkday:
		return "workday"
	case DayTypeWeekend:
		return "weekend"
	case DayTypeHoliday:
		return "holiday"
	case DayTypeClosure:
		return "closure"
	}
	return "unknown"
}

// ErrNotLoaded is returned by calendars queried before their data was loaded
var ErrNotLoaded = errors.New("calendar data not loaded")

// Holiday represents a single public holiday
type Holiday struct {
	Date dateutil.CalendarDate
	Name string
}

// Calendar is a source of public holidays
type Calendar interface {
	// GetHoliday returns the holiday on the given date, or nil if the date
	// is not a public holiday.
	GetHoliday(date dateutil.CalendarDate) (*Holiday, error)
}

// Oracle answers whether a date is a public holiday
type Oracle interface {
	IsPublicHoliday(date dateutil.CalendarDate) bool
}

// OracleFunc adapts a plain function to Oracle
type OracleFunc func(date dateutil.CalendarDate) bool

// IsPublicHoliday calls f(date)
func (f OracleFunc) IsPublicHoliday(date dateutil.CalendarDate) bool {
	return f(date)
}

// NoHolidays is an Oracle with no public holidays
var NoHolidays Oracle = OracleFunc(func(dateutil.CalendarDate) bool { return false })

type calendarOracle struct {
	cal    Calendar
	logger *zap.Logger
}

// NewOracle wraps a Calendar as an Oracle.
// Lookup errors are logged and the date is treated as not a holiday.
func NewOracle(cal Calendar, logger *zap.Logger) Oracle {
	return &calendarOracle{
		cal:    cal,
		logger: logger,
	}
}

// IsPublicHoliday reports whether the calendar lists a holiday on date
func (o *calendarOracle) IsPublicHoliday(date dateutil.CalendarDate) bool {
	holiday, err := o.cal.GetHoliday(date)
	if err != nil {
		o.logger.Warn("Holiday lookup failed, treating date as regular day",
			zap.Stringer("date", date),
			zap.Error(err))
		return false
	}
	return holiday != nil
}
