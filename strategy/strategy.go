// Package strategy generates per-bar trading signals from a price series.
//
// The strategy set is closed: every variant is constructed through New (or
// its typed constructor), validates its parameters up front, and is
// stateless afterwards — a built Strategy can be shared across runs.
package strategy

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"stratlab/indicator"
	"stratlab/model"
)

// ErrInvalidParameter marks a strategy configuration that violates its
// documented constraints.
var ErrInvalidParameter = errors.New("invalid strategy parameter")

// Kind identifies a strategy variant.
type Kind string

const (
	KindMACD      Kind = "macd"
	KindRSI       Kind = "rsi"
	KindBollinger Kind = "bbands"
	KindBuyHold   Kind = "buy_hold"
)

// Strategy turns a price series into one signal per bar. Implementations
// are deterministic, side-effect free, and derive the signal at index i
// only from bars at or before i.
type Strategy interface {
	Kind() Kind

	// GenerateSignals returns exactly one Signal per bar of s. The first
	// bar is always Hold for crossover strategies.
	GenerateSignals(s *model.Series) ([]Signal, error)

	// Indicators returns the aligned sequences the signals were derived
	// from, keyed by name (e.g. "macd_line", "bb_upper"), for chart
	// overlays. Keys and lengths match GenerateSignals' input.
	Indicators(s *model.Series) (map[string]indicator.Sequence, error)
}

// New builds a strategy variant from loosely-typed parameters, as they
// arrive from YAML run configs or API request bodies. Unknown kinds and
// unrecognized parameter keys are rejected before any computation runs.
func New(kind Kind, params map[string]any) (Strategy, error) {
	switch kind {
	case KindMACD:
		var p MACDParams
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return NewMACD(p)
	case KindRSI:
		var p RSIParams
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return NewRSI(p)
	case KindBollinger:
		var p BollingerParams
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return NewBollinger(p)
	case KindBuyHold:
		if len(params) > 0 {
			return nil, fmt.Errorf("%w: buy_hold takes no parameters", ErrInvalidParameter)
		}
		return NewBuyHold(), nil
	default:
		return nil, fmt.Errorf("%w: unknown strategy kind %q", ErrInvalidParameter, kind)
	}
}

func decodeParams(raw map[string]any, out any) error {
	if len(raw) == 0 {
		return nil
	}
	b, err := yaml.Marshal(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParameter, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParameter, err)
	}
	return nil
}

// Description advertises one variant and its default parameters, for the
// configuration boundary (UI strategy pickers, docs).
type Description struct {
	Kind          Kind `json:"kind"`
	DefaultParams any  `json:"default_params"`
}

// Catalog lists every available strategy variant.
func Catalog() []Description {
	return []Description{
		{Kind: KindMACD, DefaultParams: MACDParams{}.withDefaults()},
		{Kind: KindRSI, DefaultParams: RSIParams{}.withDefaults()},
		{Kind: KindBollinger, DefaultParams: BollingerParams{}.withDefaults()},
		{Kind: KindBuyHold, DefaultParams: struct{}{}},
	}
}
