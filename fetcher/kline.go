// Package fetcher pulls daily OHLCV history and symbol metadata over HTTP.
// It is the engine's only input boundary; everything it returns is
// validated again by model.NewSeries before use.
package fetcher

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"stratlab/model"
)

// KLineFetcher fetches daily bars from the eastmoney kline endpoint.
type KLineFetcher struct {
	client *http.Client
}

func NewKLineFetcher() *KLineFetcher {
	return &KLineFetcher{
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// DailyBars fetches up to `days` daily bars for a stock code
// (sh600000, sz000001), oldest first.
func (f *KLineFetcher) DailyBars(code string, days int) ([]model.Bar, error) {
	secid, err := secID(code)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf(
		"https://push2his.eastmoney.com/api/qt/stock/kline/get?secid=%s&fields1=f1,f2,f3,f4,f5,f6&fields2=f51,f52,f53,f54,f55,f56,f57&klt=101&fqt=1&end=20500101&lmt=%d",
		secid, days,
	)

	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Referer", "https://quote.eastmoney.com/")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch kline %s: %w", code, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return parseKLines(body)
}

// secID converts sh600000 -> 1.600000, sz000001 -> 0.000001.
func secID(code string) (string, error) {
	if len(code) <= 2 {
		return "", fmt.Errorf("malformed stock code: %s", code)
	}
	market, num := code[:2], code[2:]
	switch market {
	case "sh":
		return "1." + num, nil
	case "sz":
		return "0." + num, nil
	default:
		return "", fmt.Errorf("unknown stock code format: %s", code)
	}
}

func parseKLines(data []byte) ([]model.Bar, error) {
	var result struct {
		Data struct {
			Klines []string `json:"klines"`
		} `json:"data"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}

	var bars []model.Bar
	for _, line := range result.Data.Klines {
		// date,open,close,high,low,volume,amount
		parts := strings.Split(line, ",")
		if len(parts) < 6 {
			continue
		}
		t, err := time.ParseInLocation("2006-01-02", parts[0], time.Local)
		if err != nil {
			continue
		}
		open, _ := strconv.ParseFloat(parts[1], 64)
		cls, _ := strconv.ParseFloat(parts[2], 64)
		high, _ := strconv.ParseFloat(parts[3], 64)
		low, _ := strconv.ParseFloat(parts[4], 64)
		volume, _ := strconv.ParseInt(parts[5], 10, 64)

		bars = append(bars, model.Bar{
			Time:   t,
			Open:   open,
			High:   high,
			Low:    low,
			Close:  cls,
			Volume: volume,
		})
	}
	return bars, nil
}
