package enrich

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
)

// sweepBatch caps how many conversations one sweep pass enriches.
const sweepBatch = 50

// Sweeper periodically re-runs enrichment for conversations whose latest
// turn never got enriched (process crash, restart mid-turn) and runs
// housekeeping hooks like session expiry.
type Sweeper struct {
	runner *Runner
	cron   *cron.Cron
	hooks  []func()
}

// NewSweeper creates a Sweeper on a 5-field cron schedule.
func NewSweeper(runner *Runner, schedule string, hooks ...func()) (*Sweeper, error) {
	if runner == nil {
		return nil, fmt.Errorf("enrich: sweeper: runner is required")
	}
	c := cron.New()
	s := &Sweeper{runner: runner, cron: c, hooks: hooks}
	if _, err := c.AddFunc(schedule, s.sweep); err != nil {
		return nil, fmt.Errorf("enrich: sweeper: bad schedule %q: %w", schedule, err)
	}
	return s, nil
}

// Start begins the schedule. It returns immediately.
func (s *Sweeper) Start() {
	s.cron.Start()
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}

// sweep is one scheduled pass. Enrichment errors are logged per
// conversation and do not stop the pass.
func (s *Sweeper) sweep() {
	ids, err := s.runner.store.PendingEnrichment(sweepBatch)
	if err != nil {
		log.Printf("enrich: sweep: list pending: %v", err)
	} else {
		for _, id := range ids {
			ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
			if err := s.runner.Run(ctx, id); err != nil {
				log.Printf("enrich: sweep: %s: %v", id, err)
			}
			cancel()
		}
	}

	for _, hook := range s.hooks {
		hook()
	}
}

// RunOnce performs a single sweep pass synchronously. Exposed for tests and
// the CLI.
func (s *Sweeper) RunOnce() {
	s.sweep()
}
