package backtest

import (
	"errors"
	"math"
	"testing"
	"time"

	"stratlab/model"
	"stratlab/strategy"
)

func synthSeries(t *testing.T, closes []float64) *model.Series {
	t.Helper()
	bars := make([]model.Bar, len(closes))
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)
	for i, c := range closes {
		bars[i] = model.Bar{
			Time:   start.AddDate(0, 0, i),
			Open:   c,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 100,
		}
	}
	s, err := model.NewSeries("sh600000", bars)
	if err != nil {
		t.Fatalf("synthSeries: %v", err)
	}
	return s
}

func TestSimulateBuySellFlow(t *testing.T) {
	s := synthSeries(t, []float64{10, 10, 20, 20})
	signals := []strategy.Signal{strategy.Buy, strategy.Hold, strategy.Sell, strategy.Hold}

	curve, trades, err := Simulate(s, signals, 1000)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	wantEquity := []float64{1000, 1000, 2000, 2000}
	if len(curve) != len(wantEquity) {
		t.Fatalf("curve length %d, want %d", len(curve), len(wantEquity))
	}
	for i, w := range wantEquity {
		if math.Abs(curve[i].Equity-w) > 1e-9 {
			t.Fatalf("equity[%d] = %v, want %v", i, curve[i].Equity, w)
		}
	}

	if len(trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(trades))
	}
	tr := trades[0]
	if tr.ForceClosed {
		t.Fatal("clean exit flagged force_closed")
	}
	if math.Abs(tr.ReturnPct-100) > 1e-9 {
		t.Fatalf("trade return = %v%%, want 100%%", tr.ReturnPct)
	}
}

func TestSimulateForceClosesOpenPosition(t *testing.T) {
	s := synthSeries(t, []float64{10, 12, 15})
	signals := []strategy.Signal{strategy.Buy, strategy.Hold, strategy.Hold}

	curve, trades, err := Simulate(s, signals, 1000)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(trades) != 1 || !trades[0].ForceClosed {
		t.Fatalf("expected one force-closed trade, got %+v", trades)
	}
	if math.Abs(trades[0].ReturnPct-50) > 1e-9 {
		t.Fatalf("trade return = %v%%, want 50%%", trades[0].ReturnPct)
	}
	if math.Abs(curve[2].Equity-1500) > 1e-9 {
		t.Fatalf("final equity = %v, want 1500", curve[2].Equity)
	}
}

// Buy while long and sell while flat must do nothing.
func TestSimulateIgnoresRedundantSignals(t *testing.T) {
	s := synthSeries(t, []float64{10, 10, 15, 20, 20})
	signals := []strategy.Signal{
		strategy.Sell, // flat, no-op
		strategy.Buy,
		strategy.Buy, // long, no-op
		strategy.Sell,
		strategy.Sell, // flat again, no-op
	}

	curve, trades, err := Simulate(s, signals, 1000)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(trades))
	}
	if trades[0].EntryPrice != 10 || trades[0].ExitPrice != 20 {
		t.Fatalf("trade entry/exit = %v/%v, want 10/20", trades[0].EntryPrice, trades[0].ExitPrice)
	}
	if math.Abs(curve[len(curve)-1].Equity-2000) > 1e-9 {
		t.Fatalf("final equity = %v, want 2000", curve[len(curve)-1].Equity)
	}
}

func TestSimulateValidation(t *testing.T) {
	s := synthSeries(t, []float64{10, 11})

	if _, _, err := Simulate(nil, nil, 1000); !errors.Is(err, model.ErrInvalidInput) {
		t.Fatalf("nil series: expected ErrInvalidInput, got %v", err)
	}
	if _, _, err := Simulate(s, []strategy.Signal{strategy.Hold}, 1000); !errors.Is(err, model.ErrInvalidInput) {
		t.Fatalf("length mismatch: expected ErrInvalidInput, got %v", err)
	}
	if _, _, err := Simulate(s, []strategy.Signal{strategy.Hold, strategy.Hold}, 0); !errors.Is(err, model.ErrInvalidInput) {
		t.Fatalf("zero capital: expected ErrInvalidInput, got %v", err)
	}
}

// Buy-and-hold through the simulator must reproduce the raw price return.
func TestSimulateBuyHoldMatchesPriceReturn(t *testing.T) {
	closes := []float64{37.21, 36.80, 39.17, 41.02, 40.55, 44.91}
	s := synthSeries(t, closes)

	st := strategy.NewBuyHold()
	signals, err := st.GenerateSignals(s)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	curve, trades, err := Simulate(s, signals, 1)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	want := closes[len(closes)-1]/closes[0] - 1
	got := curve[len(curve)-1].Equity - 1
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("buy-and-hold return = %v, want %v", got, want)
	}
	if len(trades) != 1 || trades[0].ForceClosed {
		t.Fatalf("expected one clean trade, got %+v", trades)
	}

	// Trade durations can never exceed the series span.
	if trades[0].Duration() > s.Span() {
		t.Fatalf("trade duration %v exceeds span %v", trades[0].Duration(), s.Span())
	}
}
