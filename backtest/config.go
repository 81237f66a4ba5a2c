package backtest

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"stratlab/strategy"
)

// YAMLConfig mirrors the backtest.yaml layout.
type YAMLConfig struct {
	Backtest struct {
		Days               int      `yaml:"days"`
		Start              string   `yaml:"start"`
		End                string   `yaml:"end"`
		InitialCapital     float64  `yaml:"initial_capital"`
		RiskFreeRate       float64  `yaml:"risk_free_rate"`
		BarsPerYear        float64  `yaml:"bars_per_year"`
		ExcludeForceClosed bool     `yaml:"exclude_force_closed"`
		IncludeIndicators  bool     `yaml:"include_indicators"`
		Symbols            []string `yaml:"symbols"`
	} `yaml:"backtest"`

	Strategy struct {
		Type   string         `yaml:"type"`
		Params map[string]any `yaml:"params"`
	} `yaml:"strategy"`
}

// RunConfig is the fully validated configuration of one backtest run.
type RunConfig struct {
	Days               int
	Start              time.Time
	End                time.Time
	InitialCapital     float64
	RiskFreeRate       float64
	BarsPerYear        float64
	ExcludeForceClosed bool
	IncludeIndicators  bool

	Symbols  []string
	Strategy strategy.Strategy

	// Chart output (CLI only, not loaded from YAML).
	Charts   bool
	ChartDir string
}

func DefaultRunConfig() RunConfig {
	return RunConfig{
		Days:           2000,
		InitialCapital: 100_000,
		BarsPerYear:    252,
	}
}

// LoadRunConfig reads a backtest YAML config and resolves the strategy.
// Parameter and date errors surface here, before any data is fetched.
func LoadRunConfig(path string) (RunConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return RunConfig{}, fmt.Errorf("read config: %w", err)
	}

	var yc YAMLConfig
	if err := yaml.Unmarshal(raw, &yc); err != nil {
		return RunConfig{}, fmt.Errorf("parse yaml: %w", err)
	}

	cfg := DefaultRunConfig()

	if yc.Backtest.Days > 0 {
		cfg.Days = yc.Backtest.Days
	}
	if yc.Backtest.InitialCapital > 0 {
		cfg.InitialCapital = yc.Backtest.InitialCapital
	}
	if yc.Backtest.RiskFreeRate > 0 {
		cfg.RiskFreeRate = yc.Backtest.RiskFreeRate
	}
	if yc.Backtest.BarsPerYear > 0 {
		cfg.BarsPerYear = yc.Backtest.BarsPerYear
	}
	cfg.ExcludeForceClosed = yc.Backtest.ExcludeForceClosed
	cfg.IncludeIndicators = yc.Backtest.IncludeIndicators
	cfg.Symbols = append(cfg.Symbols, yc.Backtest.Symbols...)

	if yc.Backtest.Start != "" {
		t, err := time.ParseInLocation("2006-01-02", yc.Backtest.Start, time.Local)
		if err != nil {
			return RunConfig{}, fmt.Errorf("invalid backtest.start: %w", err)
		}
		cfg.Start = t
	}
	if yc.Backtest.End != "" {
		t, err := time.ParseInLocation("2006-01-02", yc.Backtest.End, time.Local)
		if err != nil {
			return RunConfig{}, fmt.Errorf("invalid backtest.end: %w", err)
		}
		cfg.End = t
	}

	kind := strategy.Kind(yc.Strategy.Type)
	if yc.Strategy.Type == "" {
		kind = strategy.KindBuyHold
	}
	st, err := strategy.New(kind, yc.Strategy.Params)
	if err != nil {
		return RunConfig{}, err
	}
	cfg.Strategy = st

	return cfg, nil
}
