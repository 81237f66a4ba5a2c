package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stratlab/backtest"
	"stratlab/strategy"
)

// Handler serves the backtest API on top of a Runner.
type Handler struct {
	runner *backtest.Runner
}

func NewHandler(runner *backtest.Runner) *Handler {
	return &Handler{runner: runner}
}

// backtestRequest is the POST /api/backtest body.
type backtestRequest struct {
	Symbols            []string `json:"symbols" binding:"required"`
	Days               int      `json:"days"`
	Start              string   `json:"start"`
	End                string   `json:"end"`
	InitialCapital     float64  `json:"initial_capital"`
	RiskFreeRate       float64  `json:"risk_free_rate"`
	BarsPerYear        float64  `json:"bars_per_year"`
	ExcludeForceClosed bool     `json:"exclude_force_closed"`
	IncludeIndicators  bool     `json:"include_indicators"`

	Strategy struct {
		Type   string         `json:"type"`
		Params map[string]any `json:"params"`
	} `json:"strategy"`
}

func (req *backtestRequest) runConfig() (backtest.RunConfig, error) {
	cfg := backtest.DefaultRunConfig()
	cfg.Symbols = req.Symbols

	if req.Days > 0 {
		cfg.Days = req.Days
	}
	if req.InitialCapital > 0 {
		cfg.InitialCapital = req.InitialCapital
	}
	if req.RiskFreeRate > 0 {
		cfg.RiskFreeRate = req.RiskFreeRate
	}
	if req.BarsPerYear > 0 {
		cfg.BarsPerYear = req.BarsPerYear
	}
	cfg.ExcludeForceClosed = req.ExcludeForceClosed
	cfg.IncludeIndicators = req.IncludeIndicators

	if req.Start != "" {
		t, err := time.ParseInLocation("2006-01-02", req.Start, time.Local)
		if err != nil {
			return cfg, err
		}
		cfg.Start = t
	}
	if req.End != "" {
		t, err := time.ParseInLocation("2006-01-02", req.End, time.Local)
		if err != nil {
			return cfg, err
		}
		cfg.End = t
	}

	kind := strategy.Kind(req.Strategy.Type)
	if req.Strategy.Type == "" {
		kind = strategy.KindBuyHold
	}
	st, err := strategy.New(kind, req.Strategy.Params)
	if err != nil {
		return cfg, err
	}
	cfg.Strategy = st
	return cfg, nil
}

// RunBacktest handles POST /api/backtest.
func (h *Handler) RunBacktest(c *gin.Context) {
	var req backtestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg, err := req.runConfig()
	if err != nil {
		backtestRuns.WithLabelValues(req.Strategy.Type, "invalid").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	start := time.Now()
	results, err := h.runner.Run(cfg)
	backtestDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		backtestRuns.WithLabelValues(string(cfg.Strategy.Kind()), "error").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	backtestRuns.WithLabelValues(string(cfg.Strategy.Kind()), "ok").Inc()

	c.JSON(http.StatusOK, gin.H{
		"code":  0,
		"count": len(results),
		"data":  results,
	})
}

// RunScan handles POST /api/scan: evaluate a strategy over each symbol's
// history and report the latest-bar state.
func (h *Handler) RunScan(c *gin.Context) {
	var req backtestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg, err := req.runConfig()
	if err != nil {
		scanRuns.WithLabelValues("invalid").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	results, err := h.runner.Scan(cfg)
	if err != nil {
		scanRuns.WithLabelValues("error").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	scanRuns.WithLabelValues("ok").Inc()

	c.JSON(http.StatusOK, gin.H{
		"code":  0,
		"count": len(results),
		"data":  results,
	})
}

// GetStrategies handles GET /api/strategies.
func (h *Handler) GetStrategies(c *gin.Context) {
	catalog := strategy.Catalog()
	c.JSON(http.StatusOK, gin.H{
		"code":  0,
		"count": len(catalog),
		"data":  catalog,
	})
}
