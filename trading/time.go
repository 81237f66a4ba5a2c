// Package trading knows the market calendar the watch scheduler cares about.
package trading

import "time"

// China Standard Time; the exchanges this engine fetches from trade in CST.
var cst = time.FixedZone("CST", 8*3600)

// IsTradingDay reports whether t falls on a weekday in exchange time.
// Exchange holidays are not tracked; a scan on a holiday just sees no
// new bar.
func IsTradingDay(t time.Time) bool {
	weekday := t.In(cst).Weekday()
	return weekday != time.Saturday && weekday != time.Sunday
}

// MarketClose returns the daily close (15:00 CST) on t's date.
func MarketClose(t time.Time) time.Time {
	t = t.In(cst)
	return time.Date(t.Year(), t.Month(), t.Day(), 15, 0, 0, 0, cst)
}

// AfterClose reports whether t is past the daily close, i.e. the latest
// daily bar is final.
func AfterClose(t time.Time) bool {
	return t.In(cst).After(MarketClose(t))
}
