package strategy

import (
	"stratlab/indicator"
	"stratlab/model"
)

// BuyHoldStrategy buys on the first bar and sells on the last — the
// baseline every other strategy is compared against.
type BuyHoldStrategy struct{}

func NewBuyHold() *BuyHoldStrategy { return &BuyHoldStrategy{} }

func (st *BuyHoldStrategy) Kind() Kind { return KindBuyHold }

func (st *BuyHoldStrategy) GenerateSignals(s *model.Series) ([]Signal, error) {
	out := make([]Signal, s.Len())
	out[0] = Buy
	if s.Len() > 1 {
		out[s.Len()-1] = Sell
	}
	return out, nil
}

func (st *BuyHoldStrategy) Indicators(*model.Series) (map[string]indicator.Sequence, error) {
	return map[string]indicator.Sequence{}, nil
}
