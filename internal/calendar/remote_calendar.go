package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/username/bizday-calc/pkg/dateutil"
	"go.uber.org/zap"
)

const (
	// DefaultRemoteURL is the holidays-jp dataset, one JSON object per year
	DefaultRemoteURL   = "https://holidays-jp.github.io/api/v1/{year}/date.json"
	defaultHTTPTimeout = 10 * time.Second
	defaultCacheTTL    = 24 * time.Hour
	defaultFailureTTL  = time.Minute
)

// RemoteCalendar implements Calendar using a JSON holiday API that serves
// {"YYYY-MM-DD": "name", ...} per year. Years are fetched on first use and
// cached for cacheTTL. A failed fetch is remembered for failureTTL so a
// missing year costs one request rather than one per lookup.
type RemoteCalendar struct {
	urlTemplate string
	httpClient  *http.Client
	logger      *zap.Logger
	ctx         context.Context
	cache       map[int]*cachedYear
	cacheMu     sync.RWMutex
	cacheTTL    time.Duration
	failureTTL  time.Duration
	now         func() time.Time
}

type cachedYear struct {
	holidays  map[dateutil.CalendarDate]string
	err       error
	fetchedAt time.Time
}

// NewRemoteCalendar creates a new RemoteCalendar. urlTemplate must contain
// the "{year}" placeholder.
func NewRemoteCalendar(urlTemplate string, cacheTTL time.Duration, logger *zap.Logger) *RemoteCalendar {
	if urlTemplate == "" {
		urlTemplate = DefaultRemoteURL
	}
	if cacheTTL == 0 {
		cacheTTL = defaultCacheTTL
	}

	return &RemoteCalendar{
		urlTemplate: urlTemplate,
		httpClient: &http.Client{
			Timeout: defaultHTTPTimeout,
		},
		logger:     logger,
		ctx:        context.Background(),
		cache:      make(map[int]*cachedYear),
		cacheTTL:   cacheTTL,
		failureTTL: defaultFailureTTL,
		now:        time.Now,
	}
}

// SetContext sets the context used by fetches triggered from GetHoliday
func (c *RemoteCalendar) SetContext(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}

	c.cacheMu.Lock()
	c.ctx = ctx
	c.cacheMu.Unlock()
}

// GetHoliday returns the holiday on date, or nil.
// The date's year is fetched if it is not cached yet.
func (c *RemoteCalendar) GetHoliday(date dateutil.CalendarDate) (*Holiday, error) {
	c.cacheMu.RLock()
	ctx := c.ctx
	c.cacheMu.RUnlock()

	holidays, err := c.yearHolidays(ctx, date.Year)
	if err != nil {
		return nil, err
	}

	name, ok := holidays[date]
	if !ok {
		return nil, nil
	}
	return &Holiday{Date: date, Name: name}, nil
}

// Preload fetches the given years so later lookups are served from memory
func (c *RemoteCalendar) Preload(ctx context.Context, years ...int) error {
	for _, year := range years {
		if _, err := c.yearHolidays(ctx, year); err != nil {
			return err
		}
	}
	return nil
}

func (c *RemoteCalendar) yearHolidays(ctx context.Context, year int) (map[dateutil.CalendarDate]string, error) {
	c.cacheMu.RLock()
	if cached, ok := c.cache[year]; ok {
		age := c.now().Sub(cached.fetchedAt)
		if cached.err != nil && age < c.failureTTL {
			c.cacheMu.RUnlock()
			return nil, cached.err
		}
		if cached.err == nil && age < c.cacheTTL {
			c.cacheMu.RUnlock()
			return cached.holidays, nil
		}
	}
	c.cacheMu.RUnlock()

	holidays, err := c.fetchYear(ctx, year)
	if err != nil {
		// A cancelled caller says nothing about the year itself
		if ctx.Err() == nil {
			c.cacheMu.Lock()
			c.cache[year] = &cachedYear{
				err:       err,
				fetchedAt: c.now(),
			}
			c.cacheMu.Unlock()
		}
		return nil, err
	}

	c.cacheMu.Lock()
	c.cache[year] = &cachedYear{
		holidays:  holidays,
		fetchedAt: c.now(),
	}
	c.cacheMu.Unlock()

	return holidays, nil
}

// fetchYear downloads one year of holidays
func (c *RemoteCalendar) fetchYear(ctx context.Context, year int) (map[dateutil.CalendarDate]string, error) {
	url := strings.ReplaceAll(c.urlTemplate, "{year}", strconv.Itoa(year))

	c.logger.Debug("Fetching holiday data",
		zap.String("url", url),
		zap.Int("year", year))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch holiday data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("no holiday data for year %d", year)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var raw map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse holiday JSON: %w", err)
	}

	holidays := make(map[dateutil.CalendarDate]string, len(raw))
	for dateStr, name := range raw {
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			c.logger.Warn("Failed to parse holiday date",
				zap.String("date", dateStr),
				zap.Error(err))
			continue
		}
		holidays[dateutil.FromTime(date)] = name
	}

	c.logger.Info("Holiday data fetched",
		zap.Int("year", year),
		zap.Int("holidays", len(holidays)))

	return holidays, nil
}

// ClearCache clears the cache
func (c *RemoteCalendar) ClearCache() {
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()

	c.cache = make(map[int]*cachedYear)
	c.logger.Info("Calendar cache cleared")
}
