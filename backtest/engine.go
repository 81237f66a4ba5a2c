package backtest

import (
	"fmt"

	"stratlab/model"
	"stratlab/strategy"
)

// Simulate replays signals over the series with a single long/flat
// position, fully invested or fully out.
//
// Execution model: a signal derived from bar i's close fills at that same
// close. Buy while long and sell while flat are no-ops. A position still
// open after the last bar is closed at the final close and its trade is
// flagged force_closed, so every opened position is accounted for.
func Simulate(series *model.Series, signals []strategy.Signal, initialCapital float64) ([]EquityPoint, []Trade, error) {
	if series == nil || series.Len() == 0 {
		return nil, nil, fmt.Errorf("%w: empty series", model.ErrInvalidInput)
	}
	if len(signals) != series.Len() {
		return nil, nil, fmt.Errorf("%w: %d signals for %d bars", model.ErrInvalidInput, len(signals), series.Len())
	}
	if initialCapital <= 0 {
		return nil, nil, fmt.Errorf("%w: initial capital %.2f", model.ErrInvalidInput, initialCapital)
	}

	cash := initialCapital
	long := false
	var entryPrice float64
	var entryBar model.Bar

	curve := make([]EquityPoint, 0, series.Len())
	var trades []Trade

	for i, bar := range series.Bars {
		switch signals[i] {
		case strategy.Buy:
			if !long {
				long = true
				entryPrice = bar.Close
				entryBar = bar
			}
		case strategy.Sell:
			if long {
				cash = cash * bar.Close / entryPrice
				trades = append(trades, closedTrade(entryBar, entryPrice, bar, false))
				long = false
			}
		}

		equity := cash
		if long {
			equity = cash * bar.Close / entryPrice
		}
		curve = append(curve, EquityPoint{Time: bar.Time, Equity: equity})
	}

	if long {
		last := series.Last()
		trades = append(trades, closedTrade(entryBar, entryPrice, last, true))
	}
	return curve, trades, nil
}

func closedTrade(entry model.Bar, entryPrice float64, exit model.Bar, forced bool) Trade {
	return Trade{
		EntryTime:   entry.Time,
		EntryPrice:  entryPrice,
		ExitTime:    exit.Time,
		ExitPrice:   exit.Close,
		ReturnPct:   (exit.Close/entryPrice - 1) * 100,
		ForceClosed: forced,
	}
}
