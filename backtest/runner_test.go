package backtest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"stratlab/model"
	"stratlab/strategy"
)

// fakeSource serves canned closes per symbol.
type fakeSource struct {
	closes map[string][]float64
}

func (f *fakeSource) DailyBars(symbol string, days int) ([]model.Bar, error) {
	closes, ok := f.closes[symbol]
	if !ok {
		return nil, fmt.Errorf("no data for %s", symbol)
	}
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)
	bars := make([]model.Bar, len(closes))
	for i, c := range closes {
		bars[i] = model.Bar{Time: start.AddDate(0, 0, i), Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 100}
	}
	return bars, nil
}

func buyHoldConfig(symbols ...string) RunConfig {
	cfg := DefaultRunConfig()
	cfg.Symbols = symbols
	cfg.Strategy = strategy.NewBuyHold()
	return cfg
}

func TestRunnerKeepsSymbolOrderAndIsolatesFailures(t *testing.T) {
	src := &fakeSource{closes: map[string][]float64{
		"sh600000": {10, 11, 12, 13},
		"sz000001": {20, 18, 22, 24},
	}}
	runner := NewRunner(src)

	results, err := runner.Run(buyHoldConfig("sh600000", "missing", "sz000001"))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Symbol != "sh600000" || results[1].Symbol != "missing" || results[2].Symbol != "sz000001" {
		t.Fatalf("order not preserved: %v %v %v", results[0].Symbol, results[1].Symbol, results[2].Symbol)
	}
	if len(results[1].Errors) == 0 {
		t.Fatal("missing symbol produced no error")
	}
	if len(results[0].Errors) != 0 || len(results[2].Errors) != 0 {
		t.Fatalf("healthy symbols reported errors: %+v", results)
	}
	if got := results[0].Report.TotalReturn; !got.Valid || math.Abs(got.Value-0.3) > 1e-12 {
		t.Fatalf("sh600000 total return = %+v, want 0.3", got)
	}
	if len(results[0].Signals) != 4 || len(results[0].Equity) != 4 {
		t.Fatalf("result slices misaligned: %d signals, %d equity points",
			len(results[0].Signals), len(results[0].Equity))
	}
}

func TestRunnerIncludesIndicatorOverlays(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 10 + float64(i%4)
	}
	src := &fakeSource{closes: map[string][]float64{"sh600000": closes}}
	runner := NewRunner(src)

	cfg := DefaultRunConfig()
	cfg.Symbols = []string{"sh600000"}
	cfg.IncludeIndicators = true
	st, err := strategy.New(strategy.KindRSI, nil)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	cfg.Strategy = st

	results, err := runner.Run(cfg)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	seq, ok := results[0].Indicators["rsi_14"]
	if !ok {
		t.Fatalf("rsi overlay missing: %v", results[0].Indicators)
	}
	if seq.Len() != len(closes) {
		t.Fatalf("overlay length %d, want %d", seq.Len(), len(closes))
	}

	cfg.IncludeIndicators = false
	results, err = runner.Run(cfg)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if results[0].Indicators != nil {
		t.Fatal("overlays included without the flag")
	}
}

func TestRunnerRequiresSymbolsAndStrategy(t *testing.T) {
	runner := NewRunner(&fakeSource{})
	if _, err := runner.Run(buyHoldConfig()); err == nil {
		t.Fatal("expected error with no symbols")
	}
	cfg := DefaultRunConfig()
	cfg.Symbols = []string{"sh600000"}
	if _, err := runner.Run(cfg); err == nil {
		t.Fatal("expected error with no strategy")
	}
}

func TestRunnerDateWindow(t *testing.T) {
	src := &fakeSource{closes: map[string][]float64{
		"sh600000": {10, 11, 12, 13, 14, 15},
	}}
	runner := NewRunner(src)

	cfg := buyHoldConfig("sh600000")
	cfg.Start = time.Date(2024, 1, 2, 0, 0, 0, 0, time.Local)
	cfg.End = time.Date(2024, 1, 4, 0, 0, 0, 0, time.Local)

	results, err := runner.Run(cfg)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(results[0].Equity) != 3 {
		t.Fatalf("window kept %d bars, want 3", len(results[0].Equity))
	}
}

func TestScanReportsOpenPosition(t *testing.T) {
	src := &fakeSource{closes: map[string][]float64{
		"sh600000": {10, 11, 12},
	}}
	runner := NewRunner(src)

	results, err := runner.Scan(buyHoldConfig("sh600000"))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	res := results[0]
	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	// Buy-and-hold sells on the last bar, so the follower ends flat with
	// a fresh sell signal.
	if res.InPosition {
		t.Fatal("expected flat after final sell")
	}
	if res.Signal != strategy.Sell || !res.SignalNew {
		t.Fatalf("latest signal = %s (new=%v), want fresh sell", res.Signal, res.SignalNew)
	}
	if res.LastDate != "2024-01-03" || res.LastClose != 12 {
		t.Fatalf("last bar = %s @ %v", res.LastDate, res.LastClose)
	}
}

func TestWriteResultsJSON(t *testing.T) {
	src := &fakeSource{closes: map[string][]float64{
		"sh600000": {10, 12},
	}}
	runner := NewRunner(src)
	results, err := runner.Run(buyHoldConfig("sh600000"))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteResultsJSON(&buf, results); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	var decoded []Result
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded[0].Symbol != "sh600000" {
		t.Fatalf("roundtrip lost symbol: %+v", decoded[0])
	}
	if !strings.Contains(buf.String(), `"buy"`) {
		t.Fatal("signals not serialized as strings")
	}
}
