package indicator

import "fmt"

// SMA computes a simple moving average with the given window.
// Values are defined from index period-1 onward.
func SMA(values []float64, period int) (Sequence, error) {
	if period <= 0 {
		return Sequence{}, fmt.Errorf("%w: sma period %d", ErrInvalidPeriod, period)
	}
	if len(values) < period {
		return Sequence{}, fmt.Errorf("%w: sma(%d) over %d bars", ErrInsufficientData, period, len(values))
	}
	out := NewSequence(len(values))
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out.Set(i, sum/float64(period))
		}
	}
	return out, nil
}

// EMA computes an exponential moving average seeded with the simple average
// of the first window. Values are defined from index period-1 onward.
func EMA(values []float64, period int) (Sequence, error) {
	if period <= 0 {
		return Sequence{}, fmt.Errorf("%w: ema period %d", ErrInvalidPeriod, period)
	}
	if len(values) < period {
		return Sequence{}, fmt.Errorf("%w: ema(%d) over %d bars", ErrInsufficientData, period, len(values))
	}
	out := NewSequence(len(values))
	mult := 2.0 / float64(period+1)

	seed := 0.0
	for i := 0; i < period; i++ {
		seed += values[i]
	}
	cur := seed / float64(period)
	out.Set(period-1, cur)

	for i := period; i < len(values); i++ {
		cur = values[i]*mult + cur*(1-mult)
		out.Set(i, cur)
	}
	return out, nil
}
