package main

import "flag"

type cliFlags struct {
	configPath string

	backtestMode bool
	btConfigPath string
	btOutPath    string
	charts       bool
	chartDir     string

	scanMode bool
	scanOut  string
	scanJSON bool

	watchMode bool
}

func parseFlags() cliFlags {
	var f cliFlags
	flag.StringVar(&f.configPath, "config", "", "service config file path (YAML)")
	flag.BoolVar(&f.backtestMode, "backtest", false, "run a daily-bar backtest and exit")
	flag.StringVar(&f.btConfigPath, "bt-config", "backtest.yaml", "backtest config file path (YAML)")
	flag.StringVar(&f.btOutPath, "bt-out", "", "backtest output JSON path (default stdout)")
	flag.BoolVar(&f.charts, "charts", false, "render an SVG chart per symbol")
	flag.StringVar(&f.chartDir, "chart-dir", "charts", "chart output directory")
	flag.BoolVar(&f.scanMode, "scan", false, "scan the latest daily bar for strategy signals and exit")
	flag.StringVar(&f.scanOut, "scan-out", "", "scan output path (default stdout)")
	flag.BoolVar(&f.scanJSON, "scan-json", false, "scan output as JSON (default text table)")
	flag.BoolVar(&f.watchMode, "watch", false, "run scheduled signal scans alongside the HTTP service")
	flag.Parse()
	return f
}
