package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"stratlab/backtest"
	"stratlab/model"
)

type fakeSource struct{}

func (fakeSource) DailyBars(symbol string, days int) ([]model.Bar, error) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)
	closes := []float64{10, 11, 12, 11, 13, 14}
	bars := make([]model.Bar, len(closes))
	for i, c := range closes {
		bars[i] = model.Bar{Time: start.AddDate(0, 0, i), Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 100}
	}
	return bars, nil
}

func testServer() *Server {
	return NewServer(backtest.NewRunner(fakeSource{}), 0)
}

func doJSON(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.engine.ServeHTTP(w, req)
	return w
}

func TestBacktestEndpoint(t *testing.T) {
	srv := testServer()
	w := doJSON(t, srv, "POST", "/api/backtest", `{
		"symbols": ["sh600000"],
		"strategy": {"type": "buy_hold"}
	}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Count int               `json:"count"`
		Data  []backtest.Result `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response JSON: %v", err)
	}
	if resp.Count != 1 || resp.Data[0].Symbol != "sh600000" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if !resp.Data[0].Report.TotalReturn.Valid {
		t.Fatal("report missing total return")
	}
}

func TestBacktestEndpointRejectsBadRequests(t *testing.T) {
	srv := testServer()

	w := doJSON(t, srv, "POST", "/api/backtest", `{"strategy": {"type": "buy_hold"}}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing symbols: status = %d", w.Code)
	}

	w = doJSON(t, srv, "POST", "/api/backtest", `{
		"symbols": ["sh600000"],
		"strategy": {"type": "macd", "params": {"fast_period": 30, "slow_period": 10}}
	}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("invalid params: status = %d, body = %s", w.Code, w.Body.String())
	}

	w = doJSON(t, srv, "POST", "/api/backtest", `not json`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("malformed body: status = %d", w.Code)
	}
}

func TestScanEndpoint(t *testing.T) {
	srv := testServer()
	w := doJSON(t, srv, "POST", "/api/scan", `{
		"symbols": ["sh600000"],
		"strategy": {"type": "buy_hold"}
	}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		Data []backtest.ScanResult `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response JSON: %v", err)
	}
	if len(resp.Data) != 1 || resp.Data[0].LastClose != 14 {
		t.Fatalf("unexpected scan response: %+v", resp)
	}
}

func TestStrategiesEndpoint(t *testing.T) {
	srv := testServer()
	w := doJSON(t, srv, "GET", "/api/strategies", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"macd"`) || !strings.Contains(w.Body.String(), `"buy_hold"`) {
		t.Fatalf("catalog missing kinds: %s", w.Body.String())
	}
}

func TestHealthAndMetricsEndpoints(t *testing.T) {
	srv := testServer()
	if w := doJSON(t, srv, "GET", "/health", ""); w.Code != http.StatusOK {
		t.Fatalf("health status = %d", w.Code)
	}
	if w := doJSON(t, srv, "GET", "/metrics", ""); w.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", w.Code)
	}
}
