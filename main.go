package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stratlab/api"
	"stratlab/backtest"
	"stratlab/config"
	"stratlab/fetcher"
	"stratlab/scheduler"
	"stratlab/store"
	"stratlab/strategy"
)

func main() {
	flags := parseFlags()

	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	if flags.backtestMode {
		if err := runBacktest(flags); err != nil {
			log.Printf("[ERROR] backtest failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if flags.scanMode {
		if err := runScan(flags); err != nil {
			log.Printf("[ERROR] scan failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	cfg := config.GetConfig(flags.configPath)

	source, cache, err := newBarSource(cfg.CachePath, cfg.CacheTTL)
	if err != nil {
		log.Printf("[ERROR] open bar cache: %v\n", err)
		os.Exit(1)
	}
	if cache != nil {
		defer cache.Close()
	}
	runner := backtest.NewRunner(source)

	var watch *scheduler.Scheduler
	if flags.watchMode {
		wcfg, err := watchRunConfig(flags.btConfigPath, cfg)
		if err != nil {
			log.Printf("[ERROR] watch config: %v\n", err)
			os.Exit(1)
		}
		watch = scheduler.New(runner, wcfg, cfg.WatchCron)
		if err := watch.Start(); err != nil {
			log.Printf("[ERROR] start watch scheduler: %v\n", err)
			os.Exit(1)
		}
	}

	log.Println("=== strategy backtest service ===")
	server := api.NewServer(runner, cfg.Port)
	go func() {
		if err := server.Start(); err != nil {
			log.Printf("[ERROR] HTTP service failed: %v\n", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("shutting down...")
	if watch != nil {
		watch.Stop()
	}
	if err := server.Shutdown(); err != nil {
		log.Printf("[ERROR] shutdown: %v\n", err)
	}
	log.Println("service stopped")
}

// newBarSource wires the network fetcher behind the sqlite cache when a
// cache path is configured. The returned BarCache is nil when caching is
// disabled.
func newBarSource(cachePath string, ttl time.Duration) (backtest.BarSource, *store.BarCache, error) {
	kf := fetcher.NewKLineFetcher()
	if cachePath == "" {
		return kf, nil, nil
	}
	cache, err := store.OpenBarCache(cachePath, kf, ttl)
	if err != nil {
		return nil, nil, err
	}
	return cache, cache, nil
}

// watchRunConfig builds the scan config for watch mode: the backtest YAML
// when present, otherwise the service symbol list with a default MACD
// strategy.
func watchRunConfig(btConfigPath string, cfg *config.Config) (backtest.RunConfig, error) {
	if btConfigPath != "" {
		if _, err := os.Stat(btConfigPath); err == nil {
			return backtest.LoadRunConfig(btConfigPath)
		}
	}

	rcfg := backtest.DefaultRunConfig()
	rcfg.Symbols = cfg.Symbols
	st, err := strategy.New(strategy.KindMACD, nil)
	if err != nil {
		return backtest.RunConfig{}, err
	}
	rcfg.Strategy = st
	return rcfg, nil
}
