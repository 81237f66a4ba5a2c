package strategy

import (
	"fmt"

	"stratlab/indicator"
	"stratlab/model"
)

// SellPolicy selects which band a Bollinger exit watches.
type SellPolicy string

const (
	// SellOnUpper exits when the close falls back below the upper band.
	SellOnUpper SellPolicy = "upper"
	// SellOnMiddle exits when the close falls back below the middle band.
	SellOnMiddle SellPolicy = "middle"
)

// BollingerParams configures the mean-reversion Bollinger strategy.
type BollingerParams struct {
	Period     int        `yaml:"period" json:"period"`
	Multiplier float64    `yaml:"multiplier" json:"multiplier"`
	SellPolicy SellPolicy `yaml:"sell_policy" json:"sell_policy"`
}

func (p BollingerParams) withDefaults() BollingerParams {
	if p.Period == 0 {
		p.Period = 20
	}
	if p.Multiplier == 0 {
		p.Multiplier = 2.0
	}
	if p.SellPolicy == "" {
		p.SellPolicy = SellOnUpper
	}
	return p
}

func (p BollingerParams) validate() error {
	if p.Period <= 1 {
		return fmt.Errorf("%w: bollinger period must exceed 1, got %d", ErrInvalidParameter, p.Period)
	}
	if p.Multiplier <= 0 {
		return fmt.Errorf("%w: bollinger multiplier must be positive, got %.4f", ErrInvalidParameter, p.Multiplier)
	}
	if p.SellPolicy != SellOnUpper && p.SellPolicy != SellOnMiddle {
		return fmt.Errorf("%w: bollinger sell_policy %q (want %q or %q)",
			ErrInvalidParameter, p.SellPolicy, SellOnUpper, SellOnMiddle)
	}
	return nil
}

// BollingerStrategy buys when the close crosses back above the lower band
// and sells when it crosses back below the band selected by SellPolicy.
type BollingerStrategy struct {
	p BollingerParams
}

func NewBollinger(p BollingerParams) (*BollingerStrategy, error) {
	p = p.withDefaults()
	if err := p.validate(); err != nil {
		return nil, err
	}
	return &BollingerStrategy{p: p}, nil
}

func (st *BollingerStrategy) Kind() Kind             { return KindBollinger }
func (st *BollingerStrategy) Params() BollingerParams { return st.p }

func (st *BollingerStrategy) GenerateSignals(s *model.Series) ([]Signal, error) {
	closes := s.Closes()
	bands, err := indicator.Bollinger(closes, st.p.Period, st.p.Multiplier)
	if err != nil {
		return nil, err
	}

	exit := bands.Upper
	if st.p.SellPolicy == SellOnMiddle {
		exit = bands.Middle
	}

	out := make([]Signal, s.Len())
	for i := 1; i < s.Len(); i++ {
		lowPrev, ok := bands.Lower.At(i - 1)
		if !ok {
			continue
		}
		lowCur, _ := bands.Lower.At(i)
		exitPrev, ok := exit.At(i - 1)
		if !ok {
			continue
		}
		exitCur, _ := exit.At(i)

		switch {
		case closes[i] > lowCur && closes[i-1] <= lowPrev:
			out[i] = Buy
		case closes[i] < exitCur && closes[i-1] >= exitPrev:
			out[i] = Sell
		}
	}
	return out, nil
}

func (st *BollingerStrategy) Indicators(s *model.Series) (map[string]indicator.Sequence, error) {
	bands, err := indicator.Bollinger(s.Closes(), st.p.Period, st.p.Multiplier)
	if err != nil {
		return nil, err
	}
	return map[string]indicator.Sequence{
		"bb_middle":    bands.Middle,
		"bb_upper":     bands.Upper,
		"bb_lower":     bands.Lower,
		"bb_bandwidth": bands.Bandwidth,
		"bb_percent_b": bands.PercentB,
	}, nil
}
