package indicator

import (
	"fmt"
	"math"
)

// BollingerBands holds the aligned band sequences for one parameterization.
type BollingerBands struct {
	Middle    Sequence
	Upper     Sequence
	Lower     Sequence
	Bandwidth Sequence // (upper−lower)/middle, undefined where middle is 0
	PercentB  Sequence // (price−lower)/(upper−lower), undefined where bands collapse
}

// Bollinger computes Bollinger Bands: middle = SMA(period), upper/lower =
// middle ± multiplier × rolling sample standard deviation.
func Bollinger(values []float64, period int, multiplier float64) (BollingerBands, error) {
	if period <= 1 {
		return BollingerBands{}, fmt.Errorf("%w: bollinger period %d", ErrInvalidPeriod, period)
	}
	if multiplier <= 0 {
		return BollingerBands{}, fmt.Errorf("%w: bollinger multiplier %.4f", ErrInvalidPeriod, multiplier)
	}
	if len(values) < period {
		return BollingerBands{}, fmt.Errorf("%w: bollinger(%d) over %d bars",
			ErrInsufficientData, period, len(values))
	}

	middle, err := SMA(values, period)
	if err != nil {
		return BollingerBands{}, err
	}

	n := len(values)
	b := BollingerBands{
		Middle:    middle,
		Upper:     NewSequence(n),
		Lower:     NewSequence(n),
		Bandwidth: NewSequence(n),
		PercentB:  NewSequence(n),
	}

	for i := period - 1; i < n; i++ {
		mean, _ := middle.At(i)

		// Sample standard deviation over the trailing window.
		var sq float64
		for j := i - period + 1; j <= i; j++ {
			d := values[j] - mean
			sq += d * d
		}
		sd := math.Sqrt(sq / float64(period-1))

		upper := mean + multiplier*sd
		lower := mean - multiplier*sd
		b.Upper.Set(i, upper)
		b.Lower.Set(i, lower)

		if mean != 0 {
			b.Bandwidth.Set(i, (upper-lower)/mean)
		}
		if width := upper - lower; width != 0 {
			b.PercentB.Set(i, (values[i]-lower)/width)
		}
	}
	return b, nil
}
