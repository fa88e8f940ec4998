// Package batch fans one configuration out over many independent simulation
// runs and collects each run's terminal metrics in run-id order, no matter
// which order the workers finish in.
package batch

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/pthm-cable/grain/config"
	"github.com/pthm-cable/grain/telemetry"
	"github.com/pthm-cable/grain/world"
)

// Options control a batch of simulation runs.
type Options struct {
	Runs     int   // number of independent runs; run ids are 1..Runs
	Ticks    int   // ticks simulated per run
	Workers  int   // worker goroutines; 0 means NumCPU-1, capped at Runs
	BaseSeed int64 // run i is seeded with BaseSeed + i
}

// Run executes opts.Runs independent simulations of cfg and returns one
// result per run id. Each worker writes into its run's slot, so the slice is
// ordered by construction and never depends on completion order. A run that
// fails carries its error in the result; the rest of the batch is unaffected.
func Run(cfg *config.Config, opts Options) []telemetry.RunResult {
	if opts.Runs <= 0 {
		return nil
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU() - 1
	}
	if workers < 1 {
		workers = 1
	}
	if workers > opts.Runs {
		workers = opts.Runs
	}

	results := make([]telemetry.RunResult, opts.Runs)
	jobs := make(chan int, opts.Runs)
	for runID := 1; runID <= opts.Runs; runID++ {
		jobs <- runID
	}
	close(jobs)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for runID := range jobs {
				results[runID-1] = runOne(cfg, opts, runID)
			}
		}()
	}
	wg.Wait()

	return results
}

// runOne isolates a single run: a panic becomes a failed result instead of
// taking down the batch.
func runOne(cfg *config.Config, opts Options, runID int) (res telemetry.RunResult) {
	res.RunID = runID
	defer func() {
		if r := recover(); r != nil {
			res.Err = fmt.Errorf("run %d panicked: %v", runID, r)
		}
	}()

	m, err := simulate(cfg, opts.BaseSeed+int64(runID), opts.Ticks)
	if err != nil {
		res.Err = fmt.Errorf("run %d: %w", runID, err)
		return res
	}
	res.TickMetrics = m
	return res
}

// simulate runs one world to completion. It is a variable so tests can
// substitute controlled timing and failures.
var simulate = simulateWorld

func simulateWorld(cfg *config.Config, seed int64, ticks int) (telemetry.TickMetrics, error) {
	w, err := world.New(cfg, seed)
	if err != nil {
		return telemetry.TickMetrics{}, err
	}
	var m telemetry.TickMetrics
	for tick := 1; tick <= ticks; tick++ {
		m = w.Tick(tick)
	}
	return m, nil
}
