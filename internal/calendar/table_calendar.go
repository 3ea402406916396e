package calendar

import (
	"sort"
	"sync"

	"github.com/username/bizday-calc/pkg/dateutil"
)

// TableCalendar is an in-memory holiday table. Safe for concurrent use.
type TableCalendar struct {
	mu       sync.RWMutex
	holidays map[dateutil.CalendarDate]string
}

// NewTableCalendar creates a table pre-filled with holidays
func NewTableCalendar(holidays ...Holiday) *TableCalendar {
	tc := &TableCalendar{
		holidays: make(map[dateutil.CalendarDate]string, len(holidays)),
	}
	for _, h := range holidays {
		tc.holidays[h.Date] = h.Name
	}
	return tc
}

// Add registers a holiday, replacing any existing entry on that date
func (tc *TableCalendar) Add(date dateutil.CalendarDate, name string) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.holidays[date] = name
}

// GetHoliday returns the holiday on date, or nil
func (tc *TableCalendar) GetHoliday(date dateutil.CalendarDate) (*Holiday, error) {
	tc.mu.RLock()
	defer tc.mu.RUnlock()

	name, ok := tc.holidays[date]
	if !ok {
		return nil, nil
	}
	return &Holiday{Date: date, Name: name}, nil
}

// Len returns the number of holidays in the table
func (tc *TableCalendar) Len() int {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return len(tc.holidays)
}

// Holidays returns all holidays sorted by date
func (tc *TableCalendar) Holidays() []Holiday {
	tc.mu.RLock()
	defer tc.mu.RUnlock()

	result := make([]Holiday, 0, len(tc.holidays))
	for d, name := range tc.holidays {
		result = append(result, Holiday{Date: d, Name: name})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})
	return result
}
