package strategy

import (
	"fmt"

	"stratlab/indicator"
	"stratlab/model"
)

// MACDParams configures the MACD crossover strategy.
type MACDParams struct {
	FastPeriod   int `yaml:"fast_period" json:"fast_period"`
	SlowPeriod   int `yaml:"slow_period" json:"slow_period"`
	SignalPeriod int `yaml:"signal_period" json:"signal_period"`
}

func (p MACDParams) withDefaults() MACDParams {
	if p.FastPeriod == 0 {
		p.FastPeriod = 12
	}
	if p.SlowPeriod == 0 {
		p.SlowPeriod = 26
	}
	if p.SignalPeriod == 0 {
		p.SignalPeriod = 9
	}
	return p
}

func (p MACDParams) validate() error {
	if p.FastPeriod <= 0 || p.SlowPeriod <= 0 || p.SignalPeriod <= 0 {
		return fmt.Errorf("%w: macd periods must be positive, got %d/%d/%d",
			ErrInvalidParameter, p.FastPeriod, p.SlowPeriod, p.SignalPeriod)
	}
	if p.FastPeriod >= p.SlowPeriod {
		return fmt.Errorf("%w: macd fast period %d must be strictly below slow period %d",
			ErrInvalidParameter, p.FastPeriod, p.SlowPeriod)
	}
	return nil
}

// MACDStrategy buys when the MACD line crosses above its signal line and
// sells when it crosses below.
type MACDStrategy struct {
	p MACDParams
}

func NewMACD(p MACDParams) (*MACDStrategy, error) {
	p = p.withDefaults()
	if err := p.validate(); err != nil {
		return nil, err
	}
	return &MACDStrategy{p: p}, nil
}

func (st *MACDStrategy) Kind() Kind        { return KindMACD }
func (st *MACDStrategy) Params() MACDParams { return st.p }

func (st *MACDStrategy) GenerateSignals(s *model.Series) ([]Signal, error) {
	line, sig, _, err := indicator.MACD(s.Closes(), st.p.FastPeriod, st.p.SlowPeriod, st.p.SignalPeriod)
	if err != nil {
		return nil, err
	}

	out := make([]Signal, s.Len())
	for i := 1; i < s.Len(); i++ {
		prev, ok := spread(line, sig, i-1)
		if !ok {
			continue
		}
		cur, ok := spread(line, sig, i)
		if !ok {
			continue
		}
		switch {
		case cur > 0 && prev <= 0:
			out[i] = Buy
		case cur < 0 && prev >= 0:
			out[i] = Sell
		}
	}
	return out, nil
}

func (st *MACDStrategy) Indicators(s *model.Series) (map[string]indicator.Sequence, error) {
	line, sig, hist, err := indicator.MACD(s.Closes(), st.p.FastPeriod, st.p.SlowPeriod, st.p.SignalPeriod)
	if err != nil {
		return nil, err
	}
	return map[string]indicator.Sequence{
		"macd_line":      line,
		"macd_signal":    sig,
		"macd_histogram": hist,
	}, nil
}

// spread returns line−signal at i when both are defined.
func spread(line, sig indicator.Sequence, i int) (float64, bool) {
	l, ok := line.At(i)
	if !ok {
		return 0, false
	}
	g, ok := sig.At(i)
	if !ok {
		return 0, false
	}
	return l - g, true
}
