package strategy

import (
	"fmt"

	"stratlab/indicator"
	"stratlab/model"
)

// RSIParams configures the RSI threshold-crossover strategy.
type RSIParams struct {
	Period     int     `yaml:"period" json:"period"`
	Oversold   float64 `yaml:"oversold" json:"oversold"`
	Overbought float64 `yaml:"overbought" json:"overbought"`
}

func (p RSIParams) withDefaults() RSIParams {
	if p.Period == 0 {
		p.Period = 14
	}
	if p.Oversold == 0 {
		p.Oversold = 30
	}
	if p.Overbought == 0 {
		p.Overbought = 70
	}
	return p
}

func (p RSIParams) validate() error {
	if p.Period <= 0 {
		return fmt.Errorf("%w: rsi period must be positive, got %d", ErrInvalidParameter, p.Period)
	}
	if p.Oversold <= 0 || p.Overbought >= 100 || p.Oversold >= p.Overbought {
		return fmt.Errorf("%w: rsi thresholds must satisfy 0 < oversold < overbought < 100, got %.1f/%.1f",
			ErrInvalidParameter, p.Oversold, p.Overbought)
	}
	return nil
}

// RSIStrategy buys when the RSI crosses up through the oversold threshold
// and sells when it crosses down through the overbought threshold.
type RSIStrategy struct {
	p RSIParams
}

func NewRSI(p RSIParams) (*RSIStrategy, error) {
	p = p.withDefaults()
	if err := p.validate(); err != nil {
		return nil, err
	}
	return &RSIStrategy{p: p}, nil
}

func (st *RSIStrategy) Kind() Kind       { return KindRSI }
func (st *RSIStrategy) Params() RSIParams { return st.p }

func (st *RSIStrategy) GenerateSignals(s *model.Series) ([]Signal, error) {
	rsi, err := indicator.RSI(s.Closes(), st.p.Period)
	if err != nil {
		return nil, err
	}

	out := make([]Signal, s.Len())
	for i := 1; i < s.Len(); i++ {
		prev, ok := rsi.At(i - 1)
		if !ok {
			continue
		}
		cur, ok := rsi.At(i)
		if !ok {
			continue
		}
		switch {
		case cur > st.p.Oversold && prev <= st.p.Oversold:
			out[i] = Buy
		case cur < st.p.Overbought && prev >= st.p.Overbought:
			out[i] = Sell
		}
	}
	return out, nil
}

func (st *RSIStrategy) Indicators(s *model.Series) (map[string]indicator.Sequence, error) {
	rsi, err := indicator.RSI(s.Closes(), st.p.Period)
	if err != nil {
		return nil, err
	}
	return map[string]indicator.Sequence{
		fmt.Sprintf("rsi_%d", st.p.Period): rsi,
	}, nil
}
