package calendar

import (
	"fmt"
	"sort"

	cal "github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/jp"
	"github.com/rickar/cal/v2/us"
	"github.com/username/bizday-calc/pkg/dateutil"
	"go.uber.org/zap"
)

var regionHolidays = map[string][]*cal.Holiday{
	"jp": jp.Holidays,
	"us": us.Holidays,
}

// Regions returns the supported rule-based holiday regions
func Regions() []string {
	regions := make([]string, 0, len(regionHolidays))
	for r := range regionHolidays {
		regions = append(regions, r)
	}
	sort.Strings(regions)
	return regions
}

// RulesCalendar computes public holidays from the rickar/cal rule set of a region.
// Both actual and observed (substitute) holidays count.
type RulesCalendar struct {
	region   string
	calendar *cal.BusinessCalendar
}

// NewRulesCalendar creates a RulesCalendar for region ("jp", "us")
func NewRulesCalendar(region string, logger *zap.Logger) (*RulesCalendar, error) {
	holidays, ok := regionHolidays[region]
	if !ok {
		return nil, fmt.Errorf("unsupported holiday region %q (supported: %v)", region, Regions())
	}

	bc := cal.NewBusinessCalendar()
	bc.AddHoliday(holidays...)

	logger.Info("Rules calendar initialized",
		zap.String("region", region),
		zap.Int("rules", len(holidays)))

	return &RulesCalendar{
		region:   region,
		calendar: bc,
	}, nil
}

// GetHoliday returns the holiday on date, or nil
func (rc *RulesCalendar) GetHoliday(date dateutil.CalendarDate) (*Holiday, error) {
	actual, observed, h := rc.calendar.IsHoliday(date.Time())
	if !actual && !observed {
		return nil, nil
	}

	name := ""
	if h != nil {
		name = h.Name
	}
	if observed && !actual {
		name += " (observed)"
	}
	return &Holiday{Date: date, Name: name}, nil
}

// Region returns the calendar's region code
func (rc *RulesCalendar) Region() string {
	return rc.region
}
