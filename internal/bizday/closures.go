package bizday

import (
	"sort"
	"time"

	"github.com/username/bizday-calc/pkg/dateutil"
)

// ClosureSet is a set of ad-hoc non-working dates.
// Keys are normalized CalendarDate values, so membership is same-day
// equality regardless of how a date was produced. A nil ClosureSet is empty.
type ClosureSet map[dateutil.CalendarDate]struct{}

// NewClosureSet builds a ClosureSet from dates
func NewClosureSet(dates ...dateutil.CalendarDate) ClosureSet {
	cs := make(ClosureSet, len(dates))
	for _, d := range dates {
		cs[d] = struct{}{}
	}
	return cs
}

// ClosureSetFromTimes builds a ClosureSet from time values, keeping only
// their calendar date.
func ClosureSetFromTimes(times ...time.Time) ClosureSet {
	cs := make(ClosureSet, len(times))
	for _, t := range times {
		cs[dateutil.FromTime(t)] = struct{}{}
	}
	return cs
}

// Contains reports whether date is a closure day
func (cs ClosureSet) Contains(date dateutil.CalendarDate) bool {
	_, ok := cs[date]
	return ok
}

// Len returns the number of closure days
func (cs ClosureSet) Len() int {
	return len(cs)
}

// Dates returns the closure days in ascending order
func (cs ClosureSet) Dates() []dateutil.CalendarDate {
	dates := make([]dateutil.CalendarDate, 0, len(cs))
	for d := range cs {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool {
		return dates[i].Before(dates[j])
	})
	return dates
}

// Merge returns a new set holding the days of both sets.
// Neither input is modified.
func (cs ClosureSet) Merge(other ClosureSet) ClosureSet {
	merged := make(ClosureSet, len(cs)+len(other))
	for d := range cs {
		merged[d] = struct{}{}
	}
	for d := range other {
		merged[d] = struct{}{}
	}
	return merged
}
