package backtest

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"stratlab/indicator"
	"stratlab/model"
	"stratlab/strategy"
)

// BarSource supplies daily bars for one symbol, most recent last.
type BarSource interface {
	DailyBars(symbol string, days int) ([]model.Bar, error)
}

// Runner executes backtests over a bar source. Runs for different symbols
// share nothing mutable, so they execute concurrently.
type Runner struct {
	source BarSource
}

func NewRunner(source BarSource) *Runner {
	return &Runner{source: source}
}

// Result bundles everything one symbol's run produced: the signal overlay,
// the equity curve, the trade log and the derived report. These are
// read-only snapshots for the presentation side.
type Result struct {
	Symbol     string                        `json:"symbol"`
	Strategy   strategy.Kind                 `json:"strategy"`
	Signals    []strategy.Signal             `json:"signals"`
	Indicators map[string]indicator.Sequence `json:"indicators,omitempty"`
	Equity     []EquityPoint                 `json:"equity_curve"`
	Trades     []Trade                       `json:"trades"`
	Report     Report                        `json:"report"`
	ChartPath  string                        `json:"chart_path,omitempty"`
	Errors     []string                      `json:"errors,omitempty"`
}

// Run backtests every configured symbol and returns one Result per symbol
// in the configured order. Per-symbol failures are reported in-band so one
// bad ticker does not abort the batch.
func (r *Runner) Run(cfg RunConfig) ([]Result, error) {
	if len(cfg.Symbols) == 0 {
		return nil, fmt.Errorf("no symbols configured")
	}
	if cfg.Strategy == nil {
		return nil, fmt.Errorf("%w: no strategy configured", strategy.ErrInvalidParameter)
	}

	out := make([]Result, len(cfg.Symbols))
	var wg sync.WaitGroup
	for i, sym := range cfg.Symbols {
		wg.Add(1)
		go func(i int, sym string) {
			defer wg.Done()
			out[i] = r.runOne(sym, cfg)
		}(i, sym)
	}
	wg.Wait()
	return out, nil
}

func (r *Runner) runOne(symbol string, cfg RunConfig) Result {
	res := Result{Symbol: symbol, Strategy: cfg.Strategy.Kind()}

	series, err := r.loadSeries(symbol, cfg)
	if err != nil {
		res.Errors = append(res.Errors, err.Error())
		return res
	}

	signals, err := cfg.Strategy.GenerateSignals(series)
	if err != nil {
		res.Errors = append(res.Errors, err.Error())
		return res
	}

	curve, trades, err := Simulate(series, signals, cfg.InitialCapital)
	if err != nil {
		res.Errors = append(res.Errors, err.Error())
		return res
	}

	res.Signals = signals
	res.Equity = curve
	res.Trades = trades
	if cfg.IncludeIndicators {
		seqs, err := cfg.Strategy.Indicators(series)
		if err != nil {
			res.Errors = append(res.Errors, err.Error())
		} else {
			res.Indicators = seqs
		}
	}
	res.Report = Analyze(curve, trades, AnalyzerOptions{
		RiskFreeRate:       cfg.RiskFreeRate,
		BarsPerYear:        cfg.BarsPerYear,
		ExcludeForceClosed: cfg.ExcludeForceClosed,
	})

	if cfg.Charts {
		path, err := r.writeChart(series, signals, curve, cfg.ChartDir)
		if err != nil {
			res.Errors = append(res.Errors, err.Error())
		} else {
			res.ChartPath = path
		}
	}
	return res
}

func (r *Runner) loadSeries(symbol string, cfg RunConfig) (*model.Series, error) {
	bars, err := r.source.DailyBars(symbol, cfg.Days)
	if err != nil {
		return nil, err
	}

	filtered := bars[:0:0]
	for _, b := range bars {
		if !cfg.Start.IsZero() && b.Time.Before(cfg.Start) {
			continue
		}
		if !cfg.End.IsZero() && b.Time.After(cfg.End) {
			continue
		}
		filtered = append(filtered, b)
	}
	return model.NewSeries(symbol, filtered)
}

func (r *Runner) writeChart(series *model.Series, signals []strategy.Signal, curve []EquityPoint, dir string) (string, error) {
	if dir == "" {
		dir = "charts"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("chart dir: %w", err)
	}
	svg, err := RenderBacktestSVG(series, signals, curve, SVGChartOptions{})
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, series.Symbol+".svg")
	if err := os.WriteFile(path, svg, 0o644); err != nil {
		return "", fmt.Errorf("write chart: %w", err)
	}
	return path, nil
}

// WriteResultsJSON streams results as indented JSON.
func WriteResultsJSON(w io.Writer, results []Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}
