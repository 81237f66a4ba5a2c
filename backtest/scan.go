package backtest

import (
	"fmt"
	"sync"

	"stratlab/strategy"
)

// ScanResult reports where a strategy stands on a symbol as of the latest
// bar: the position a faithful follower of the signals would hold, and the
// most recent actionable signal.
type ScanResult struct {
	Symbol    string  `json:"symbol"`
	Name      string  `json:"name,omitempty"`
	LastDate  string  `json:"last_date"`
	LastClose float64 `json:"last_close"`

	Signal     strategy.Signal `json:"signal"`
	SignalDate string          `json:"signal_date,omitempty"`
	SignalNew  bool            `json:"signal_new"` // fired on the latest bar

	InPosition bool    `json:"in_position"`
	EntryDate  string  `json:"entry_date,omitempty"`
	EntryPrice float64 `json:"entry_price,omitempty"`

	Errors []string `json:"errors,omitempty"`
}

// Scan evaluates the configured strategy on each symbol's full history and
// reports the state at the latest bar.
func (r *Runner) Scan(cfg RunConfig) ([]ScanResult, error) {
	if len(cfg.Symbols) == 0 {
		return nil, fmt.Errorf("no symbols configured")
	}
	if cfg.Strategy == nil {
		return nil, fmt.Errorf("%w: no strategy configured", strategy.ErrInvalidParameter)
	}

	out := make([]ScanResult, len(cfg.Symbols))
	var wg sync.WaitGroup
	for i, sym := range cfg.Symbols {
		wg.Add(1)
		go func(i int, sym string) {
			defer wg.Done()
			out[i] = r.scanOne(sym, cfg)
		}(i, sym)
	}
	wg.Wait()
	return out, nil
}

func (r *Runner) scanOne(symbol string, cfg RunConfig) ScanResult {
	res := ScanResult{Symbol: symbol}

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

	last := series.Last()
	res.LastDate = last.Time.Format("2006-01-02")
	res.LastClose = last.Close

	// Replay the long/flat state without the end-of-series force close —
	// a live follower would still be holding.
	long := false
	for i, bar := range series.Bars {
		switch signals[i] {
		case strategy.Buy:
			if !long {
				long = true
				res.EntryDate = bar.Time.Format("2006-01-02")
				res.EntryPrice = bar.Close
			}
		case strategy.Sell:
			if long {
				long = false
				res.EntryDate = ""
				res.EntryPrice = 0
			}
		}
		if signals[i] != strategy.Hold {
			res.Signal = signals[i]
			res.SignalDate = bar.Time.Format("2006-01-02")
			res.SignalNew = i == series.Len()-1
		}
	}
	res.InPosition = long
	return res
}
