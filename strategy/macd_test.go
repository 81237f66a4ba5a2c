package strategy

import (
	"errors"
	"testing"
)

func TestMACDParamsValidate(t *testing.T) {
	if _, err := NewMACD(MACDParams{FastPeriod: 26, SlowPeriod: 12}); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter for fast >= slow, got %v", err)
	}
	if _, err := NewMACD(MACDParams{FastPeriod: -1}); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter for negative period, got %v", err)
	}
}

// Decline, recovery, decline: the MACD line crosses above its signal once
// on the way up and back below once on the way down.
func TestMACDCrossoverSignals(t *testing.T) {
	s := synthSeries(t, vShape())
	st, err := NewMACD(MACDParams{})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	signals, err := st.GenerateSignals(s)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	var order []Signal
	var buyIdx int
	for i, sig := range signals {
		if sig != Hold {
			order = append(order, sig)
			if sig == Buy && buyIdx == 0 {
				buyIdx = i
			}
		}
	}
	if len(order) != 2 || order[0] != Buy || order[1] != Sell {
		t.Fatalf("expected one buy then one sell, got %v", order)
	}
	if buyIdx <= 40 {
		t.Fatalf("buy fired at %d, before the trend turned at 40", buyIdx)
	}
}

// Degenerate periods make the signal line equal the MACD line, so the
// spread is identically zero and no crossover can fire. The output must
// still be deterministic and aligned.
func TestMACDDegeneratePeriodsDeterministic(t *testing.T) {
	s := synthSeries(t, []float64{10, 11, 9, 12, 8, 13})
	st, err := NewMACD(MACDParams{FastPeriod: 1, SlowPeriod: 2, SignalPeriod: 1})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	first, err := st.GenerateSignals(s)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(first) != 6 {
		t.Fatalf("got %d signals, want 6", len(first))
	}
	for i, sig := range first {
		if sig != Hold {
			t.Fatalf("signal[%d] = %s, want hold", i, sig)
		}
	}

	second, err := st.GenerateSignals(s)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("rerun diverged at %d: %s vs %s", i, first[i], second[i])
		}
	}
}

func TestMACDTooShortSeries(t *testing.T) {
	s := synthSeries(t, []float64{10, 11, 12})
	st, err := NewMACD(MACDParams{})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, err := st.GenerateSignals(s); err == nil {
		t.Fatal("expected error on series shorter than lookback")
	}
}
