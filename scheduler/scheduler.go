// Package scheduler runs periodic signal scans in watch mode.
package scheduler

import (
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"stratlab/backtest"
	"stratlab/trading"
)

// Scheduler scans the watched symbols on a cron schedule and logs any
// symbol whose latest bar fired a signal.
type Scheduler struct {
	cron   *cron.Cron
	runner *backtest.Runner
	cfg    backtest.RunConfig
	spec   string
}

// New builds a scheduler. spec uses six-field cron syntax with seconds,
// e.g. "0 30 15 * * MON-FRI" for 15:30 on weekdays.
func New(runner *backtest.Runner, cfg backtest.RunConfig, spec string) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithSeconds()),
		runner: runner,
		cfg:    cfg,
		spec:   spec,
	}
}

// Start registers the scan job and starts the cron loop. It returns once
// the job is scheduled; scans run on the cron goroutine.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.scan); err != nil {
		return fmt.Errorf("schedule watch scan: %w", err)
	}
	s.cron.Start()
	log.Printf("[WATCH] scanning %d symbols on schedule %q", len(s.cfg.Symbols), s.spec)
	return nil
}

// Stop cancels the schedule and waits for a running scan to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) scan() {
	if !trading.IsTradingDay(time.Now()) {
		log.Println("[WATCH] not a trading day, skipping scan")
		return
	}

	results, err := s.runner.Scan(s.cfg)
	if err != nil {
		log.Printf("[WATCH] scan failed: %v", err)
		return
	}

	fired := 0
	for _, r := range results {
		if len(r.Errors) > 0 {
			log.Printf("[WATCH] %s: %v", r.Symbol, r.Errors)
			continue
		}
		if r.SignalNew {
			fired++
			log.Printf("[WATCH] %s %s %s at %.2f (in position: %v)",
				r.Symbol, r.Signal, r.SignalDate, r.LastClose, r.InPosition)
		}
	}
	log.Printf("[WATCH] scan done: %d symbols, %d new signals", len(results), fired)
}
