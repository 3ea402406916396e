package calendar

import (
	"github.com/username/bizday-calc/pkg/dateutil"
	"go.uber.org/zap"
)

// CompositeCalendar implements Calendar with fallback strategy:
// every lookup goes to primary, and to fallback only when primary fails.
type CompositeCalendar struct {
	primary  Calendar
	fallback Calendar
	logger   *zap.Logger
}

// NewCompositeCalendar creates a new CompositeCalendar
func NewCompositeCalendar(primary, fallback Calendar, logger *zap.Logger) *CompositeCalendar {
	return &CompositeCalendar{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

// GetHoliday returns the holiday on date, or nil
func (cc *CompositeCalendar) GetHoliday(date dateutil.CalendarDate) (*Holiday, error) {
	holiday, err := cc.primary.GetHoliday(date)
	if err == nil {
		return holiday, nil
	}

	cc.logger.Warn("Primary calendar failed, falling back",
		zap.Stringer("date", date),
		zap.Error(err))

	return cc.fallback.GetHoliday(date)
}
