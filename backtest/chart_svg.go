package backtest

import (
	"bytes"
	"fmt"
	"html"
	"math"
	"strconv"
	"strings"

	"stratlab/model"
	"stratlab/strategy"
)

type SVGChartOptions struct {
	Width  int
	Height int
}

func (o SVGChartOptions) withDefaults() SVGChartOptions {
	if o.Width <= 0 {
		o.Width = 980
	}
	if o.Height <= 0 {
		o.Height = 640
	}
	return o
}

// RenderBacktestSVG draws the price candles with buy/sell markers in the
// upper panel and the equity curve in the lower panel.
func RenderBacktestSVG(series *model.Series, signals []strategy.Signal, curve []EquityPoint, opt SVGChartOptions) ([]byte, error) {
	opt = opt.withDefaults()
	bars := series.Bars
	if len(bars) < 2 {
		return nil, fmt.Errorf("not enough bars: %d", len(bars))
	}
	if len(signals) != len(bars) || len(curve) != len(bars) {
		return nil, fmt.Errorf("misaligned overlay: %d signals, %d equity points, %d bars",
			len(signals), len(curve), len(bars))
	}

	minP := math.Inf(1)
	maxP := math.Inf(-1)
	for _, b := range bars {
		if b.Low > 0 && b.Low < minP {
			minP = b.Low
		}
		if b.High > maxP {
			maxP = b.High
		}
	}
	if math.IsInf(minP, 0) || math.IsInf(maxP, 0) || maxP <= minP {
		return nil, fmt.Errorf("invalid price range")
	}
	pad := (maxP - minP) * 0.05
	if pad <= 0 {
		pad = minP * 0.02
	}
	minP -= pad
	maxP += pad

	minE := math.Inf(1)
	maxE := math.Inf(-1)
	for _, p := range curve {
		if p.Equity < minE {
			minE = p.Equity
		}
		if p.Equity > maxE {
			maxE = p.Equity
		}
	}
	if maxE <= minE {
		maxE = minE + 1
	}

	// Layout: price panel on top, equity panel below.
	w := float64(opt.Width)
	h := float64(opt.Height)
	mLeft := 70.0
	mRight := 20.0
	mTop := 24.0
	mBottom := 40.0
	gap := 28.0
	plotW := w - mLeft - mRight
	priceH := (h - mTop - mBottom - gap) * 0.62
	equityH := (h - mTop - mBottom - gap) * 0.38
	if plotW <= 10 || priceH <= 10 || equityH <= 10 {
		return nil, fmt.Errorf("invalid chart size")
	}
	equityTop := mTop + priceH + gap

	priceToY := func(p float64) float64 {
		r := (p - minP) / (maxP - minP)
		r = math.Max(0, math.Min(1, r))
		return mTop + (1.0-r)*priceH
	}
	equityToY := func(e float64) float64 {
		r := (e - minE) / (maxE - minE)
		r = math.Max(0, math.Min(1, r))
		return equityTop + (1.0-r)*equityH
	}

	n := float64(len(bars))
	step := plotW / n
	cw := math.Max(1.0, step*0.65)
	xAt := func(i int) float64 {
		return mLeft + (float64(i)+0.5)*step
	}

	bg := "#0b1220"
	grid := "rgba(255,255,255,0.08)"
	up := "#22c55e"
	down := "#ef4444"
	equityCol := "#38bdf8"
	txt := "rgba(255,255,255,0.85)"

	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	buf.WriteString(`<svg xmlns="http://www.w3.org/2000/svg" width="` + strconv.Itoa(opt.Width) + `" height="` + strconv.Itoa(opt.Height) + `" viewBox="0 0 ` + strconv.Itoa(opt.Width) + ` ` + strconv.Itoa(opt.Height) + `">` + "\n")
	buf.WriteString(`<rect x="0" y="0" width="100%" height="100%" fill="` + bg + `"/>` + "\n")

	// Header
	firstD := bars[0].Time.Format("2006-01-02")
	lastD := bars[len(bars)-1].Time.Format("2006-01-02")
	title := strings.TrimSpace(series.Symbol)
	if title == "" {
		title = "UNKNOWN"
	}
	writeText(&buf, mLeft, 16, txt, 14, title+`  `+firstD+` ~ `+lastD)

	// Price grid (5 lines)
	for k := 0; k <= 5; k++ {
		y := mTop + (float64(k)/5.0)*priceH
		writeLine(&buf, mLeft, y, mLeft+plotW, y, grid, 1, false)
		p := maxP - (float64(k)/5.0)*(maxP-minP)
		writeText(&buf, 6, y+4, txt, 12, fmtPrice(p))
	}

	// Candles
	for i, b := range bars {
		x := xAt(i)
		col := up
		if b.Close < b.Open {
			col = down
		}
		yHi := priceToY(b.High)
		yLo := priceToY(b.Low)
		yO := priceToY(b.Open)
		yC := priceToY(b.Close)
		yTop := math.Min(yO, yC)
		yBot := math.Max(yO, yC)
		if yBot-yTop < 1 {
			yBot = yTop + 1
		}
		writeLine(&buf, x, yHi, x, yLo, col, 1, false)
		buf.WriteString(`<rect x="` + fmtFloat(x-cw/2) + `" y="` + fmtFloat(yTop) + `" width="` + fmtFloat(cw) + `" height="` + fmtFloat(yBot-yTop) + `" fill="` + col + `" opacity="0.9"/>` + "\n")
	}

	// Signal markers above/below the candles
	for i, sig := range signals {
		x := xAt(i)
		switch sig {
		case strategy.Buy:
			y := priceToY(bars[i].Low) + 10
			buf.WriteString(`<path d="M ` + fmtFloat(x-4) + ` ` + fmtFloat(y+7) + ` L ` + fmtFloat(x+4) + ` ` + fmtFloat(y+7) + ` L ` + fmtFloat(x) + ` ` + fmtFloat(y) + ` Z" fill="` + up + `"/>` + "\n")
		case strategy.Sell:
			y := priceToY(bars[i].High) - 10
			buf.WriteString(`<path d="M ` + fmtFloat(x-4) + ` ` + fmtFloat(y-7) + ` L ` + fmtFloat(x+4) + ` ` + fmtFloat(y-7) + ` L ` + fmtFloat(x) + ` ` + fmtFloat(y) + ` Z" fill="` + down + `"/>` + "\n")
		}
	}

	// Equity grid (3 lines) and polyline
	for k := 0; k <= 3; k++ {
		y := equityTop + (float64(k)/3.0)*equityH
		writeLine(&buf, mLeft, y, mLeft+plotW, y, grid, 1, false)
		e := maxE - (float64(k)/3.0)*(maxE-minE)
		writeText(&buf, 6, y+4, txt, 12, fmtPrice(e))
	}
	writeText(&buf, mLeft, equityTop-8, txt, 12, "equity")

	// Drawdown shading: fill between the running peak and the curve.
	var shade strings.Builder
	peak := curve[0].Equity
	for i, p := range curve {
		if p.Equity > peak {
			peak = p.Equity
		}
		if i > 0 {
			shade.WriteByte(' ')
		}
		shade.WriteString(fmtFloat(xAt(i)))
		shade.WriteByte(',')
		shade.WriteString(fmtFloat(equityToY(peak)))
	}
	for i := len(curve) - 1; i >= 0; i-- {
		shade.WriteByte(' ')
		shade.WriteString(fmtFloat(xAt(i)))
		shade.WriteByte(',')
		shade.WriteString(fmtFloat(equityToY(curve[i].Equity)))
	}
	buf.WriteString(`<polygon points="` + shade.String() + `" fill="` + down + `" opacity="0.18"/>` + "\n")

	var pts strings.Builder
	for i, p := range curve {
		if i > 0 {
			pts.WriteByte(' ')
		}
		pts.WriteString(fmtFloat(xAt(i)))
		pts.WriteByte(',')
		pts.WriteString(fmtFloat(equityToY(p.Equity)))
	}
	buf.WriteString(`<polyline points="` + pts.String() + `" fill="none" stroke="` + equityCol + `" stroke-width="1.5"/>` + "\n")

	// Initial-capital reference line
	writeLine(&buf, mLeft, equityToY(curve[0].Equity), mLeft+plotW, equityToY(curve[0].Equity), "rgba(255,255,255,0.35)", 1, true)

	// Footer dates
	writeText(&buf, mLeft, h-12, txt, 12, firstD)
	writeText(&buf, mLeft+plotW-70, h-12, txt, 12, lastD)

	buf.WriteString(`</svg>` + "\n")
	return buf.Bytes(), nil
}

func writeLine(buf *bytes.Buffer, x1, y1, x2, y2 float64, col string, width float64, dash bool) {
	style := ""
	if dash {
		style = ` stroke-dasharray="6 6"`
	}
	buf.WriteString(`<line x1="` + fmtFloat(x1) + `" y1="` + fmtFloat(y1) + `" x2="` + fmtFloat(x2) + `" y2="` + fmtFloat(y2) + `" stroke="` + col + `" stroke-width="` + fmtFloat(width) + `"` + style + `/>` + "\n")
}

func writeText(buf *bytes.Buffer, x, y float64, col string, size int, s string) {
	buf.WriteString(`<text x="` + fmtFloat(x) + `" y="` + fmtFloat(y) + `" fill="` + col + `" font-size="` + strconv.Itoa(size) + `" font-family="ui-monospace, Menlo, Monaco, Consolas, monospace">` +
		html.EscapeString(s) + `</text>` + "\n")
}

func fmtFloat(x float64) string {
	// stable compact formatting for SVG attributes
	return strconv.FormatFloat(x, 'f', 2, 64)
}

func fmtPrice(p float64) string {
	// keep price labels readable
	if p >= 1000 {
		return strconv.FormatFloat(p, 'f', 0, 64)
	}
	if p >= 100 {
		return strconv.FormatFloat(p, 'f', 1, 64)
	}
	return strconv.FormatFloat(p, 'f', 2, 64)
}
