package indicator

import "fmt"

// RSI computes the Relative Strength Index with Wilder smoothing. The first
// value appears at index period (one delta per bar, period deltas to seed).
// When the average loss is zero the RSI is 100 — a documented edge case,
// not a division fault.
func RSI(values []float64, period int) (Sequence, error) {
	if period <= 0 {
		return Sequence{}, fmt.Errorf("%w: rsi period %d", ErrInvalidPeriod, period)
	}
	if len(values) < period+1 {
		return Sequence{}, fmt.Errorf("%w: rsi(%d) needs %d bars, have %d",
			ErrInsufficientData, period, period+1, len(values))
	}

	out := NewSequence(len(values))

	avgGain := 0.0
	avgLoss := 0.0
	for i := 1; i <= period; i++ {
		delta := values[i] - values[i-1]
		if delta > 0 {
			avgGain += delta
		} else {
			avgLoss -= delta
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	out.Set(period, rsiValue(avgGain, avgLoss))

	p := float64(period)
	for i := period + 1; i < len(values); i++ {
		delta := values[i] - values[i-1]
		gain, loss := 0.0, 0.0
		if delta > 0 {
			gain = delta
		} else {
			loss = -delta
		}
		avgGain = (avgGain*(p-1) + gain) / p
		avgLoss = (avgLoss*(p-1) + loss) / p
		out.Set(i, rsiValue(avgGain, avgLoss))
	}
	return out, nil
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}
