// Package bizday implements business-day arithmetic: deciding whether a date
// is a working day and walking a number of working days from a base date.
package bizday

import (
	"errors"
	"fmt"
	"time"

	"github.com/username/bizday-calc/internal/calendar"
	"github.com/username/bizday-calc/pkg/dateutil"
	"go.uber.org/zap"
)

const (
	// DefaultMaxOffset bounds |count| accepted by AdvanceWorkingDays
	DefaultMaxOffset = 36500
	// DefaultMaxGap bounds the run of consecutive non-working days a walk may cross
	DefaultMaxGap = 366
)

var (
	// ErrInvalidOffset is returned when |count| exceeds the engine's MaxOffset
	ErrInvalidOffset = errors.New("invalid offset")
	// ErrNoWorkingDay is returned when a walk crosses more than MaxGap
	// consecutive non-working days
	ErrNoWorkingDay = errors.New("no working day found")
)

// Engine computes business-day offsets against a holiday oracle.
// An Engine is read-only after construction and safe for concurrent use.
type Engine struct {
	oracle    calendar.Oracle
	logger    *zap.Logger
	maxOffset int
	maxGap    int
	now       func() time.Time
}

// Option configures an Engine
type Option func(*Engine)

// WithMaxOffset sets the largest accepted |count|
func WithMaxOffset(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxOffset = n
		}
	}
}

// WithMaxGap sets the longest run of consecutive non-working days a walk may cross
func WithMaxGap(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxGap = n
		}
	}
}

// WithClock sets the clock used to determine today
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine creates a new Engine. A nil oracle means no public holidays.
func NewEngine(oracle calendar.Oracle, logger *zap.Logger, opts ...Option) *Engine {
	if oracle == nil {
		oracle = calendar.NoHolidays
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	e := &Engine{
		oracle:    oracle,
		logger:    logger,
		maxOffset: DefaultMaxOffset,
		maxGap:    DefaultMaxGap,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Classify returns the kind of day date is. Checks run weekend, holiday,
// closure, in that order, and stop at the first match.
func (e *Engine) Classify(date dateutil.CalendarDate, closures ClosureSet) calendar.DayType {
	if !dateutil.IsWeekday(date) {
		return calendar.DayTypeWeekend
	}
	if e.oracle.IsPublicHoliday(date) {
		return calendar.DayTypeHoliday
	}
	if closures.Contains(date) {
		return calendar.DayTypeClosure
	}
	return calendar.DayTypeWorkday
}

// IsWorkingDay reports whether date is Monday-Friday, not a public holiday,
// and not in closures.
func (e *Engine) IsWorkingDay(date dateutil.CalendarDate, closures ClosureSet) bool {
	return e.Classify(date, closures) == calendar.DayTypeWorkday
}

// AdvanceWorkingDays walks one calendar day at a time from start until count
// working days have been crossed, forward for positive count and backward
// for negative. A zero count returns start unchanged, working day or not.
func (e *Engine) AdvanceWorkingDays(start dateutil.CalendarDate, count int, closures ClosureSet) (dateutil.CalendarDate, error) {
	if count > e.maxOffset || count < -e.maxOffset {
		return start, fmt.Errorf("%w: %d exceeds limit of %d working days", ErrInvalidOffset, count, e.maxOffset)
	}

	direction := 1
	if count < 0 {
		direction = -1
	}

	cursor := start
	remaining := count
	gap := 0
	for remaining != 0 {
		cursor = cursor.AddDays(direction)
		if e.IsWorkingDay(cursor, closures) {
			remaining -= direction
			gap = 0
			continue
		}

		gap++
		if gap > e.maxGap {
			return start, fmt.Errorf("%w: %d consecutive non-working days after %s", ErrNoWorkingDay, gap, start)
		}
	}

	e.logger.Debug("Working days advanced",
		zap.Stringer("start", start),
		zap.Int("count", count),
		zap.Int("closures", closures.Len()),
		zap.Stringer("result", cursor))

	return cursor, nil
}

// Today returns the engine clock's current local date
func (e *Engine) Today() dateutil.CalendarDate {
	return dateutil.FromTime(e.now())
}

// ComputeFromToday advances offsetDays working days from today with no
// closures.
func (e *Engine) ComputeFromToday(offsetDays int) (dateutil.CalendarDate, error) {
	return e.AdvanceWorkingDays(e.Today(), offsetDays, nil)
}

// ComputeDeliveryDate returns the delivery date for an order placed on base.
// The day after base counts as day one, so an offset of N advances N+1
// working days and an offset of 0 still advances one.
func (e *Engine) ComputeDeliveryDate(base dateutil.CalendarDate, offsetDays int, closures ClosureSet) (dateutil.CalendarDate, error) {
	if offsetDays >= e.maxOffset {
		return base, fmt.Errorf("failed to compute delivery date: %w: offset %d exceeds limit of %d working days",
			ErrInvalidOffset, offsetDays, e.maxOffset-1)
	}

	result, err := e.AdvanceWorkingDays(base, offsetDays+1, closures)
	if err != nil {
		return result, fmt.Errorf("failed to compute delivery date: %w", err)
	}

	e.logger.Info("Delivery date computed",
		zap.Stringer("base", base),
		zap.Int("offset_days", offsetDays),
		zap.Stringer("delivery_date", result))

	return result, nil
}
