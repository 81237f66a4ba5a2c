package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidInput marks malformed or empty price data handed to the engine.
var ErrInvalidInput = errors.New("invalid price data")

// Bar is one OHLCV observation for a fixed time interval.
type Bar struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// Series is an ordered price history for one instrument. Build it with
// NewSeries; everything downstream treats it as read-only.
type Series struct {
	Symbol string
	Bars   []Bar
}

// NewSeries validates and copies bars into a Series. Timestamps must be
// strictly increasing and every close must be positive, since the simulator
// divides by entry prices.
func NewSeries(symbol string, bars []Bar) (*Series, error) {
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: no bars for %s", ErrInvalidInput, symbol)
	}
	for i, b := range bars {
		if b.Time.IsZero() {
			return nil, fmt.Errorf("%w: %s bar %d has no timestamp", ErrInvalidInput, symbol, i)
		}
		if i > 0 && !bars[i-1].Time.Before(b.Time) {
			return nil, fmt.Errorf("%w: %s timestamps not strictly increasing at bar %d (%s)",
				ErrInvalidInput, symbol, i, b.Time.Format("2006-01-02"))
		}
		if b.Close <= 0 {
			return nil, fmt.Errorf("%w: %s bar %d close %.4f", ErrInvalidInput, symbol, i, b.Close)
		}
	}
	own := make([]Bar, len(bars))
	copy(own, bars)
	return &Series{Symbol: symbol, Bars: own}, nil
}

func (s *Series) Len() int { return len(s.Bars) }

// Closes returns a fresh slice of close prices aligned with Bars.
func (s *Series) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

func (s *Series) First() Bar { return s.Bars[0] }
func (s *Series) Last() Bar  { return s.Bars[len(s.Bars)-1] }

// Span is the elapsed time between the first and last bar.
func (s *Series) Span() time.Duration {
	return s.Last().Time.Sub(s.First().Time)
}

// Prefix returns a Series over the first n bars, sharing the backing array.
// Bars are never mutated after construction, so sharing is safe.
func (s *Series) Prefix(n int) (*Series, error) {
	if n <= 0 || n > len(s.Bars) {
		return nil, fmt.Errorf("%w: prefix length %d of %d", ErrInvalidInput, n, len(s.Bars))
	}
	return &Series{Symbol: s.Symbol, Bars: s.Bars[:n]}, nil
}
