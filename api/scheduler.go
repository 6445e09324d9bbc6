/*
scheduler.go - Automated commission calculation scheduler

PURPOSE:

	Periodically runs the batch calculator over all deals so commissions
	appear for newly closed deals without a manual trigger. The batch is
	idempotent: deals that already have a commission are skipped, so
	repeated runs are safe.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Loads all deals and hands them to the batch calculator
  - Batch-level skip/failure accounting is logged, never fatal

CONFIGURATION:
  - CheckInterval: How often to run (default: 1 hour)
  - Enabled: Whether scheduler is active (default: true)

USAGE:

	scheduler := NewCalculationScheduler(handler)
	scheduler.Start()
	// ... later
	scheduler.Stop()

SEE ALSO:
  - handlers.go: Calculate endpoint (manual trigger)
  - engine/batch.go: BatchCalculator
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/warp/commission-engine/engine"
)

// CalculationScheduler runs periodic commission calculation sweeps.
type CalculationScheduler struct {
	Handler       *Handler
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewCalculationScheduler creates a new scheduler.
func NewCalculationScheduler(handler *Handler) *CalculationScheduler {
	return &CalculationScheduler{
		Handler:       handler,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		stop:          make(chan bool),
	}
}

// Start begins the scheduler.
func (cs *CalculationScheduler) Start() {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if !cs.Enabled {
		log.Println("[Scheduler] Disabled, not starting")
		return
	}

	cs.ticker = time.NewTicker(cs.CheckInterval)
	cs.wg.Add(1)

	go cs.run()

	log.Printf("[Scheduler] Started with check interval: %v", cs.CheckInterval)
}

// Stop stops the scheduler.
func (cs *CalculationScheduler) Stop() {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if cs.ticker != nil {
		cs.ticker.Stop()
		close(cs.stop)
		cs.wg.Wait()
		log.Println("[Scheduler] Stopped")
	}
}

func (cs *CalculationScheduler) run() {
	defer cs.wg.Done()

	// Run immediately on start
	cs.sweep()

	for {
		select {
		case <-cs.ticker.C:
			cs.sweep()
		case <-cs.stop:
			return
		}
	}
}

func (cs *CalculationScheduler) sweep() {
	ctx := context.Background()

	deals, err := cs.Handler.Store.ListDeals(ctx, engine.DealFilter{})
	if err != nil {
		log.Printf("[Scheduler] Error listing deals: %v", err)
		return
	}
	if len(deals) == 0 {
		return
	}

	result, err := cs.Handler.Batch.Run(ctx, deals)
	if err != nil {
		log.Printf("[Scheduler] Batch run failed: %v", err)
		return
	}

	for _, f := range result.Failed {
		log.Printf("[Scheduler] Deal %s failed: %s", f.DealID, f.Reason)
	}

	if len(result.Processed) > 0 {
		log.Printf("[Scheduler] Completed: %d processed, %d skipped, %d failed",
			len(result.Processed), len(result.Skipped), len(result.Failed))
	}
}

// RunNow triggers an immediate sweep (for testing/admin).
func (cs *CalculationScheduler) RunNow() {
	cs.sweep()
}

// GetNextRunTime returns when the next scheduled sweep will occur.
func (cs *CalculationScheduler) GetNextRunTime() time.Time {
	return time.Now().Add(cs.CheckInterval)
}
