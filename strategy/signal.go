package strategy

import "fmt"

// Signal is the per-bar trading decision. The zero value is Hold.
type Signal int8

const (
	Hold Signal = iota
	Buy
	Sell
)

func (s Signal) String() string {
	switch s {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	default:
		return "hold"
	}
}

func (s Signal) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

func (s *Signal) UnmarshalJSON(b []byte) error {
	switch string(b) {
	case `"buy"`:
		*s = Buy
	case `"sell"`:
		*s = Sell
	case `"hold"`:
		*s = Hold
	default:
		return fmt.Errorf("unknown signal %s", b)
	}
	return nil
}
