package backtest

import (
	"encoding/json"
	"time"
)

// Trade is one closed long round-trip. Records are append-only; the
// simulator emits them in entry order.
type Trade struct {
	EntryTime   time.Time `json:"entry_time"`
	EntryPrice  float64   `json:"entry_price"`
	ExitTime    time.Time `json:"exit_time"`
	ExitPrice   float64   `json:"exit_price"`
	ReturnPct   float64   `json:"return_pct"`
	ForceClosed bool      `json:"force_closed,omitempty"`
}

// Duration is the holding time of the trade.
func (t Trade) Duration() time.Duration {
	return t.ExitTime.Sub(t.EntryTime)
}

// EquityPoint is the simulated portfolio value at one bar.
type EquityPoint struct {
	Time   time.Time `json:"time"`
	Equity float64   `json:"equity"`
}

// Metric is a statistic that may be mathematically undefined (zero-variance
// Sharpe, win rate with no trades). Undefined metrics marshal as null —
// never NaN, Inf, or a silent zero.
type Metric struct {
	Value float64
	Valid bool
}

// Defined wraps a computed value.
func Defined(v float64) Metric { return Metric{Value: v, Valid: true} }

// Undefined is the explicit no-value sentinel.
func Undefined() Metric { return Metric{} }

func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(m.Value)
}

func (m *Metric) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*m = Metric{}
		return nil
	}
	m.Valid = true
	return json.Unmarshal(b, &m.Value)
}

// Report is the finalized set of performance statistics for one run,
// computed from the equity curve and trade log alone.
type Report struct {
	TotalReturn      Metric `json:"total_return"`
	AnnualizedReturn Metric `json:"annualized_return"`
	Volatility       Metric `json:"volatility"`
	SharpeRatio      Metric `json:"sharpe_ratio"`
	MaxDrawdown      Metric `json:"max_drawdown"`

	TotalTrades   int    `json:"total_trades"`
	ScoredTrades  int    `json:"scored_trades"`
	WinningTrades int    `json:"winning_trades"`
	LosingTrades  int    `json:"losing_trades"`
	WinRate       Metric `json:"win_rate"`
	WinLossRatio  Metric `json:"win_loss_ratio"`
	ProfitFactor  Metric `json:"profit_factor"`

	AvgTradeReturnPct Metric `json:"avg_trade_return_pct"`
	AvgTradeDays      Metric `json:"avg_trade_days"`
}
