package store

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"stratlab/model"
)

type countingSource struct {
	calls int
	fail  bool
}

func (c *countingSource) DailyBars(symbol string, days int) ([]model.Bar, error) {
	c.calls++
	if c.fail {
		return nil, fmt.Errorf("network down")
	}
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)
	bars := make([]model.Bar, 5)
	for i := range bars {
		bars[i] = model.Bar{
			Time:   start.AddDate(0, 0, i),
			Open:   10 + float64(i),
			High:   11 + float64(i),
			Low:    9 + float64(i),
			Close:  10.5 + float64(i),
			Volume: int64(100 + i),
		}
	}
	return bars, nil
}

func openTestCache(t *testing.T, src *countingSource, ttl time.Duration) *BarCache {
	t.Helper()
	cache, err := OpenBarCache(filepath.Join(t.TempDir(), "bars.db"), src, ttl)
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	t.Cleanup(func() { cache.Close() })
	return cache
}

func TestBarCacheServesFreshDataWithoutRefetch(t *testing.T) {
	src := &countingSource{}
	cache := openTestCache(t, src, time.Hour)

	first, err := cache.DailyBars("sh600000", 10)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if src.calls != 1 {
		t.Fatalf("source called %d times, want 1", src.calls)
	}

	second, err := cache.DailyBars("sh600000", 10)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if src.calls != 1 {
		t.Fatalf("fresh cache refetched: %d calls", src.calls)
	}

	if len(second) != len(first) {
		t.Fatalf("cache returned %d bars, want %d", len(second), len(first))
	}
	for i := range first {
		if second[i].Time.Unix() != first[i].Time.Unix() ||
			second[i].Close != first[i].Close ||
			second[i].Volume != first[i].Volume {
			t.Fatalf("bar %d mismatch: %+v vs %+v", i, second[i], first[i])
		}
	}
}

func TestBarCacheLimitsToRequestedDays(t *testing.T) {
	src := &countingSource{}
	cache := openTestCache(t, src, time.Hour)

	if _, err := cache.DailyBars("sh600000", 10); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	bars, err := cache.DailyBars("sh600000", 2)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("got %d bars, want 2", len(bars))
	}
	// Trailing bars, oldest first.
	if !bars[0].Time.Before(bars[1].Time) {
		t.Fatal("bars not in ascending time order")
	}
	if bars[1].Close != 14.5 {
		t.Fatalf("last close = %v, want 14.5", bars[1].Close)
	}
}

func TestBarCacheFallsBackToStaleDataOnFetchError(t *testing.T) {
	src := &countingSource{}
	// ttl 0 disables freshness, forcing a refetch attempt every call.
	cache := openTestCache(t, src, 0)

	if _, err := cache.DailyBars("sh600000", 10); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	src.fail = true
	bars, err := cache.DailyBars("sh600000", 10)
	if err != nil {
		t.Fatalf("expected stale fallback, got err: %v", err)
	}
	if len(bars) != 5 {
		t.Fatalf("fallback returned %d bars, want 5", len(bars))
	}

	// A symbol that was never cached still fails.
	if _, err := cache.DailyBars("sz000001", 10); err == nil {
		t.Fatal("expected error for uncached symbol with failing source")
	}
}
