package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"text/tabwriter"

	"stratlab/backtest"
	"stratlab/fetcher"
)

func runScan(flags cliFlags) error {
	cfg, err := backtest.LoadRunConfig(flags.btConfigPath)
	if err != nil {
		return err
	}

	cachePath, ttl := cacheFromServiceConfig(flags.configPath)
	source, cache, err := newBarSource(cachePath, ttl)
	if err != nil {
		return err
	}
	if cache != nil {
		defer cache.Close()
	}

	runner := backtest.NewRunner(source)
	results, err := runner.Scan(cfg)
	if err != nil {
		return err
	}
	fillNames(results)

	out := io.Writer(os.Stdout)
	if flags.scanOut != "" {
		f, err := os.Create(flags.scanOut)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		out = f
	}

	if flags.scanJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	return writeScanTable(out, cfg, results)
}

// fillNames resolves display names for scan results, best-effort.
func fillNames(results []backtest.ScanResult) {
	codes := make([]string, 0, len(results))
	for _, r := range results {
		codes = append(codes, r.Symbol)
	}
	names, err := fetcher.NewNameLookup().Names(codes)
	if err != nil {
		log.Printf("[SCAN] name lookup failed: %v", err)
		return
	}
	for i := range results {
		results[i].Name = names[results[i].Symbol]
	}
}

func writeScanTable(out io.Writer, cfg backtest.RunConfig, results []backtest.ScanResult) error {
	fmt.Fprintf(out, "strategy: %s, %d symbols\n\n", cfg.Strategy.Kind(), len(results))

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SYMBOL\tNAME\tLAST\tCLOSE\tSIGNAL\tDATE\tNEW\tPOSITION")
	for _, r := range results {
		if len(r.Errors) > 0 {
			fmt.Fprintf(w, "%s\t%s\terror: %s\n", r.Symbol, r.Name, strings.Join(r.Errors, "; "))
			continue
		}
		position := "flat"
		if r.InPosition {
			position = fmt.Sprintf("long since %s @ %.2f", r.EntryDate, r.EntryPrice)
		}
		newMark := ""
		if r.SignalNew {
			newMark = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%s\t%s\t%s\t%s\n",
			r.Symbol, r.Name, r.LastDate, r.LastClose, r.Signal, r.SignalDate, newMark, position)
	}
	return w.Flush()
}
