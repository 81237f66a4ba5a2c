package main

import (
	"fmt"
	"os"
	"time"

	"stratlab/backtest"
	"stratlab/config"
)

// cacheFromServiceConfig resolves the bar cache settings for CLI modes,
// which share the service config file.
func cacheFromServiceConfig(configPath string) (string, time.Duration) {
	cfg := config.GetConfig(configPath)
	return cfg.CachePath, cfg.CacheTTL
}

func runBacktest(flags cliFlags) error {
	cfg, err := backtest.LoadRunConfig(flags.btConfigPath)
	if err != nil {
		return err
	}
	cfg.Charts = flags.charts
	cfg.ChartDir = flags.chartDir

	cachePath, ttl := cacheFromServiceConfig(flags.configPath)
	source, cache, err := newBarSource(cachePath, ttl)
	if err != nil {
		return err
	}
	if cache != nil {
		defer cache.Close()
	}

	runner := backtest.NewRunner(source)
	results, err := runner.Run(cfg)
	if err != nil {
		return err
	}

	if flags.btOutPath == "" {
		return backtest.WriteResultsJSON(os.Stdout, results)
	}

	f, err := os.Create(flags.btOutPath)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer f.Close()
	return backtest.WriteResultsJSON(f, results)
}
