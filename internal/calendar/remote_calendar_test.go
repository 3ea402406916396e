package calendar

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/username/bizday-calc/pkg/dateutil"
	"go.uber.org/zap/zaptest"
)

func newHolidayServer(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()

	years := map[string]string{
		"/api/v1/2026/date.json": `{"2026-01-01":"元日","2026-01-12":"成人の日","2026-05-06":"休日","bad-date":"x"}`,
		"/api/v1/2025/date.json": `{"2025-01-01":"元日"}`,
		"/api/v1/1999/date.json": `not json`,
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		body, ok := years[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRemoteCalendar_GetHoliday(t *testing.T) {
	var hits int32
	srv := newHolidayServer(t, &hits)
	cal := NewRemoteCalendar(srv.URL+"/api/v1/{year}/date.json", time.Hour, zaptest.NewLogger(t))

	tests := []struct {
		name     string
		date     dateutil.CalendarDate
		wantName string
		wantHit  bool
	}{
		{"New Year", dateutil.Date(2026, 1, 1), "元日", true},
		{"Coming of Age Day", dateutil.Date(2026, 1, 12), "成人の日", true},
		{"Substitute holiday", dateutil.Date(2026, 5, 6), "休日", true},
		{"Regular day", dateutil.Date(2026, 6, 10), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			holiday, err := cal.GetHoliday(tt.date)
			if err != nil {
				t.Fatalf("GetHoliday() error = %v", err)
			}

			if (holiday != nil) != tt.wantHit {
				t.Fatalf("GetHoliday(%v) = %v, want holiday=%v", tt.date, holiday, tt.wantHit)
			}
			if holiday != nil && holiday.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", holiday.Name, tt.wantName)
			}
		})
	}

	// One fetch for the whole year
	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Errorf("server hits = %d, want 1", got)
	}
}

func TestRemoteCalendar_Errors(t *testing.T) {
	var hits int32
	srv := newHolidayServer(t, &hits)
	cal := NewRemoteCalendar(srv.URL+"/api/v1/{year}/date.json", time.Hour, zaptest.NewLogger(t))

	if _, err := cal.GetHoliday(dateutil.Date(2030, 1, 1)); err == nil || !strings.Contains(err.Error(), "no holiday data") {
		t.Errorf("GetHoliday() for missing year error = %v, want 'no holiday data'", err)
	}

	if _, err := cal.GetHoliday(dateutil.Date(1999, 1, 1)); err == nil {
		t.Error("GetHoliday() expected error for invalid JSON, got nil")
	}
}

func TestRemoteCalendar_Preload(t *testing.T) {
	var hits int32
	srv := newHolidayServer(t, &hits)
	cal := NewRemoteCalendar(srv.URL+"/api/v1/{year}/date.json", time.Hour, zaptest.NewLogger(t))

	if err := cal.Preload(context.Background(), 2025, 2026); err != nil {
		t.Fatalf("Preload() error = %v", err)
	}
	if got := atomic.LoadInt32(&hits); got != 2 {
		t.Fatalf("server hits after preload = %d, want 2", got)
	}

	if _, err := cal.GetHoliday(dateutil.Date(2025, 1, 1)); err != nil {
		t.Fatalf("GetHoliday() error = %v", err)
	}
	if got := atomic.LoadInt32(&hits); got != 2 {
		t.Errorf("preloaded year was fetched again, hits = %d", got)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := cal.Preload(ctx, 2024); err == nil {
		t.Error("Preload() with cancelled context expected error, got nil")
	}
}

func TestRemoteCalendar_Cache(t *testing.T) {
	var hits int32
	srv := newHolidayServer(t, &hits)
	cal := NewRemoteCalendar(srv.URL+"/api/v1/{year}/date.json", time.Minute, zaptest.NewLogger(t))

	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	cal.now = func() time.Time { return now }

	date := dateutil.Date(2026, 1, 1)
	if _, err := cal.GetHoliday(date); err != nil {
		t.Fatalf("GetHoliday() error = %v", err)
	}
	if _, err := cal.GetHoliday(date); err != nil {
		t.Fatalf("GetHoliday() error = %v", err)
	}
	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Errorf("hits within TTL = %d, want 1", got)
	}

	// Expire the cache
	now = now.Add(2 * time.Minute)
	if _, err := cal.GetHoliday(date); err != nil {
		t.Fatalf("GetHoliday() error = %v", err)
	}
	if got := atomic.LoadInt32(&hits); got != 2 {
		t.Errorf("hits after TTL = %d, want 2", got)
	}

	cal.ClearCache()

	cal.cacheMu.RLock()
	if len(cal.cache) != 0 {
		t.Errorf("Cache not cleared, len = %d", len(cal.cache))
	}
	cal.cacheMu.RUnlock()
}

func TestRemoteCalendar_FailedYearIsCached(t *testing.T) {
	var hits int32
	srv := newHolidayServer(t, &hits)
	cal := NewRemoteCalendar(srv.URL+"/api/v1/{year}/date.json", time.Hour, zaptest.NewLogger(t))

	now := time.Date(2030, 6, 3, 9, 0, 0, 0, time.UTC)
	cal.now = func() time.Time { return now }

	// A month of lookups in a year the server does not publish
	start := dateutil.Date(2030, 6, 3)
	for i := 0; i < 30; i++ {
		if _, err := cal.GetHoliday(start.AddDays(i)); err == nil {
			t.Fatalf("GetHoliday(%v) expected error for missing year", start.AddDays(i))
		}
	}
	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Errorf("server hits for failing year = %d, want 1", got)
	}

	// The failure expires long before the success TTL
	now = now.Add(defaultFailureTTL + time.Second)
	if _, err := cal.GetHoliday(start); err == nil {
		t.Fatal("GetHoliday() expected error after retry")
	}
	if got := atomic.LoadInt32(&hits); got != 2 {
		t.Errorf("server hits after failure TTL = %d, want 2", got)
	}
}

func TestRemoteCalendar_FailedYearWithFallback(t *testing.T) {
	var hits int32
	srv := newHolidayServer(t, &hits)
	remote := NewRemoteCalendar(srv.URL+"/api/v1/{year}/date.json", time.Hour, zaptest.NewLogger(t))
	fallback := NewTableCalendar(Holiday{Date: dateutil.Date(2030, 7, 15), Name: "海の日"})
	cal := NewCompositeCalendar(remote, fallback, zaptest.NewLogger(t))

	start := dateutil.Date(2030, 7, 1)
	for i := 0; i < 20; i++ {
		if _, err := cal.GetHoliday(start.AddDays(i)); err != nil {
			t.Fatalf("GetHoliday() error = %v", err)
		}
	}

	holiday, err := cal.GetHoliday(dateutil.Date(2030, 7, 15))
	if err != nil || holiday == nil || holiday.Name != "海の日" {
		t.Errorf("GetHoliday() = %v, %v, want fallback holiday", holiday, err)
	}
	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Errorf("server hits = %d, want 1", got)
	}
}

func TestRemoteCalendar_SetContext(t *testing.T) {
	var hits int32
	srv := newHolidayServer(t, &hits)
	cal := NewRemoteCalendar(srv.URL+"/api/v1/{year}/date.json", time.Hour, zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cal.SetContext(ctx)

	if _, err := cal.GetHoliday(dateutil.Date(2026, 1, 1)); err == nil {
		t.Fatal("GetHoliday() with cancelled context expected error, got nil")
	}
	if got := atomic.LoadInt32(&hits); got != 0 {
		t.Errorf("server hits with cancelled context = %d, want 0", got)
	}

	// Cancellation is not remembered as a failure of the year
	cal.SetContext(context.Background())
	holiday, err := cal.GetHoliday(dateutil.Date(2026, 1, 1))
	if err != nil || holiday == nil {
		t.Errorf("GetHoliday() = %v, %v, want 元日", holiday, err)
	}
}
