package indicator

import "fmt"

// MACD computes the MACD line (fast EMA − slow EMA), its signal line
// (EMA of the MACD line) and the histogram (line − signal). The line is
// defined from index slowPeriod-1, the signal and histogram from index
// slowPeriod+signalPeriod-2.
func MACD(values []float64, fastPeriod, slowPeriod, signalPeriod int) (line, signal, histogram Sequence, err error) {
	if fastPeriod <= 0 || slowPeriod <= 0 || signalPeriod <= 0 {
		return Sequence{}, Sequence{}, Sequence{},
			fmt.Errorf("%w: macd periods %d/%d/%d", ErrInvalidPeriod, fastPeriod, slowPeriod, signalPeriod)
	}
	if fastPeriod >= slowPeriod {
		return Sequence{}, Sequence{}, Sequence{},
			fmt.Errorf("%w: fast period %d not below slow period %d", ErrInvalidPeriod, fastPeriod, slowPeriod)
	}
	minBars := slowPeriod + signalPeriod - 1
	if len(values) < minBars {
		return Sequence{}, Sequence{}, Sequence{},
			fmt.Errorf("%w: macd(%d,%d,%d) needs %d bars, have %d",
				ErrInsufficientData, fastPeriod, slowPeriod, signalPeriod, minBars, len(values))
	}

	fast, err := EMA(values, fastPeriod)
	if err != nil {
		return Sequence{}, Sequence{}, Sequence{}, err
	}
	slow, err := EMA(values, slowPeriod)
	if err != nil {
		return Sequence{}, Sequence{}, Sequence{}, err
	}

	n := len(values)
	line = NewSequence(n)
	for i := 0; i < n; i++ {
		f, okf := fast.At(i)
		s, oks := slow.At(i)
		if okf && oks {
			line.Set(i, f-s)
		}
	}

	// The signal line smooths only the defined portion of the MACD line.
	offset := slowPeriod - 1
	defined := make([]float64, 0, n-offset)
	for i := offset; i < n; i++ {
		v, _ := line.At(i)
		defined = append(defined, v)
	}
	sigDefined, err := EMA(defined, signalPeriod)
	if err != nil {
		return Sequence{}, Sequence{}, Sequence{}, err
	}

	signal = NewSequence(n)
	histogram = NewSequence(n)
	for j := 0; j < sigDefined.Len(); j++ {
		v, ok := sigDefined.At(j)
		if !ok {
			continue
		}
		i := offset + j
		signal.Set(i, v)
		l, _ := line.At(i)
		histogram.Set(i, l-v)
	}
	return line, signal, histogram, nil
}
