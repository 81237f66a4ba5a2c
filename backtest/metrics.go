package backtest

import "math"

// AnalyzerOptions tune how Analyze derives statistics.
type AnalyzerOptions struct {
	// RiskFreeRate is the annual risk-free rate used for the Sharpe ratio.
	RiskFreeRate float64
	// BarsPerYear annualizes per-bar returns; 252 for daily bars.
	BarsPerYear float64
	// ExcludeForceClosed drops the artificial end-of-series trade from
	// trade-quality statistics. The equity curve is unaffected.
	ExcludeForceClosed bool
}

func (o AnalyzerOptions) withDefaults() AnalyzerOptions {
	if o.BarsPerYear <= 0 {
		o.BarsPerYear = 252
	}
	return o
}

// Analyze derives the performance report from a fully materialized equity
// curve and trade log. Metrics that are mathematically undefined for the
// given inputs are reported as explicit undefined sentinels, never as a
// numeric fault.
func Analyze(curve []EquityPoint, trades []Trade, opt AnalyzerOptions) Report {
	opt = opt.withDefaults()

	var rep Report
	rep.TotalTrades = len(trades)
	if len(curve) == 0 {
		return rep
	}

	initial := curve[0].Equity
	final := curve[len(curve)-1].Equity
	total := final/initial - 1
	rep.TotalReturn = Defined(total)

	// Annualized return compounds over the elapsed calendar span.
	if days := curve[len(curve)-1].Time.Sub(curve[0].Time).Hours() / 24; days > 0 {
		rep.AnnualizedReturn = Defined(math.Pow(1+total, 365.25/days) - 1)
	}

	rep.MaxDrawdown = Defined(maxDrawdown(curve))

	if mean, sd, ok := returnStats(curve); ok {
		rep.Volatility = Defined(sd * math.Sqrt(opt.BarsPerYear))
		if sd > 0 {
			excess := mean - opt.RiskFreeRate/opt.BarsPerYear
			rep.SharpeRatio = Defined(excess / sd * math.Sqrt(opt.BarsPerYear))
		}
	}

	scored := trades
	if opt.ExcludeForceClosed {
		scored = make([]Trade, 0, len(trades))
		for _, t := range trades {
			if !t.ForceClosed {
				scored = append(scored, t)
			}
		}
	}
	rep.ScoredTrades = len(scored)
	if len(scored) == 0 {
		return rep
	}

	var wins, losses int
	var grossWinPct, grossLossPct float64
	var sumReturnPct, sumDays float64
	for _, t := range scored {
		if t.ReturnPct > 0 {
			wins++
			grossWinPct += t.ReturnPct
		} else {
			losses++
			grossLossPct += -t.ReturnPct
		}
		sumReturnPct += t.ReturnPct
		sumDays += t.Duration().Hours() / 24
	}

	n := float64(len(scored))
	rep.WinningTrades = wins
	rep.LosingTrades = losses
	rep.WinRate = Defined(float64(wins) / n * 100)
	rep.AvgTradeReturnPct = Defined(sumReturnPct / n)
	rep.AvgTradeDays = Defined(sumDays / n)

	if losses > 0 {
		rep.WinLossRatio = Defined(float64(wins) / float64(losses))
		if grossLossPct > 0 {
			rep.ProfitFactor = Defined(grossWinPct / grossLossPct)
		}
	}
	return rep
}

// maxDrawdown is the largest peak-to-trough decline as a fraction of the
// peak; always within [0, 1] and 0 for a non-decreasing curve.
func maxDrawdown(curve []EquityPoint) float64 {
	peak := curve[0].Equity
	maxDD := 0.0
	for _, p := range curve {
		if p.Equity > peak {
			peak = p.Equity
		}
		if peak > 0 {
			if dd := (peak - p.Equity) / peak; dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}

// returnStats computes mean and sample standard deviation of per-bar
// returns. ok is false when fewer than two returns exist.
func returnStats(curve []EquityPoint) (mean, sd float64, ok bool) {
	if len(curve) < 3 {
		return 0, 0, false
	}
	returns := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		returns = append(returns, curve[i].Equity/curve[i-1].Equity-1)
	}
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))
	var sq float64
	for _, r := range returns {
		d := r - mean
		sq += d * d
	}
	sd = math.Sqrt(sq / float64(len(returns)-1))
	return mean, sd, true
}
