/*
batch.go - Bulk commission calculation with failure isolation

PURPOSE:
  Runs the commission engine over a set of deals and persists the
  resulting commission records. The batch calculator owns everything
  the single-deal engine does not: filtering to eligible deals,
  idempotent skipping of already-processed deals, temporal resolution
  of which plan assignment applies, and the guarantee that one bad
  deal never aborts the rest of the batch.

BATCH REPORT:
  Every deal handed to Run ends up in exactly one bucket:
    Processed - a commission record was created
    Skipped   - not closed_won, already processed, or no plan assignment
    Failed    - the calculation or the write errored (reason recorded)
  Skips are reported, never silent; failures are isolated, never fatal.

IDEMPOTENCE (core invariant):
  Re-running a batch over the same deals creates zero new rows: every
  deal that already has a commission is skipped as already_processed.
  Commission IDs derive from deal IDs by default, which keeps even a
  racing double-run from writing twice (the store rejects the
  duplicate ID and the deal lands in Skipped).

CONCURRENCY:
  Deals are grouped by owner. Each owner's deals run strictly in
  sequence - quota attainment reads the owner's other deals, and
  sequential processing keeps those reads consistent. Different owners
  run in parallel up to Workers. Results are reassembled in input
  order, so output is deterministic regardless of scheduling.

SEE ALSO:
  - calc.go: The per-deal calculation
  - assignment.go: Temporal resolution and tie-break
  - store.go: ExistsForDeal, the idempotence guard
*/
package engine

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// =============================================================================
// BATCH RESULT
// =============================================================================

// SkipReason classifies why a deal produced no commission record.
type SkipReason string

const (
	SkipNotClosedWon     SkipReason = "not_closed_won"
	SkipAlreadyProcessed SkipReason = "already_processed"
	SkipNoPlanAssignment SkipReason = "no_plan_assignment"
)

// SkippedDeal is one reported skip.
type SkippedDeal struct {
	DealID DealID
	Reason SkipReason
}

// FailedDeal is one isolated per-deal failure.
type FailedDeal struct {
	DealID DealID
	Reason string
}

// BatchResult is the complete report of one batch run.
type BatchResult struct {
	Processed []Commission
	Skipped   []SkippedDeal
	Failed    []FailedDeal
}

// =============================================================================
// BATCH CALCULATOR
// =============================================================================

// BatchCalculator orchestrates bulk commission calculation.
type BatchCalculator struct {
	Engine      *Engine
	Assignments AssignmentStore
	Commissions CommissionStore

	// Workers bounds cross-user parallelism. <= 1 runs everything
	// sequentially. Deals for one user are always sequential.
	Workers int

	// Now supplies the calculation date. Defaults to Today.
	Now func() Date

	// NewID derives a commission ID from the deal. The default
	// "com-<deal id>" makes IDs deterministic and re-run safe.
	NewID func(deal Deal) CommissionID
}

// NewBatchCalculator wires a calculator with defaults.
func NewBatchCalculator(eng *Engine, assignments AssignmentStore, commissions CommissionStore) *BatchCalculator {
	return &BatchCalculator{
		Engine:      eng,
		Assignments: assignments,
		Commissions: commissions,
		Workers:     4,
	}
}

func (bc *BatchCalculator) now() Date {
	if bc.Now != nil {
		return bc.Now()
	}
	return Today()
}

func (bc *BatchCalculator) newID(deal Deal) CommissionID {
	if bc.NewID != nil {
		return bc.NewID(deal)
	}
	return CommissionID("com-" + string(deal.ID))
}

// outcome tags one deal's result with its input position so the report
// can be reassembled in input order after parallel processing.
type outcome struct {
	index      int
	commission *Commission
	skipped    *SkippedDeal
	failed     *FailedDeal
}

// Run processes the deals and returns the batch report. The only
// returned error is context cancellation; everything per-deal is
// collected in the report.
func (bc *BatchCalculator) Run(ctx context.Context, deals []Deal) (*BatchResult, error) {
	type indexedDeal struct {
		index int
		deal  Deal
	}

	// Group by owner preserving input order within each group.
	byUser := make(map[UserID][]indexedDeal)
	var users []UserID
	for i, d := range deals {
		if _, seen := byUser[d.OwnerID]; !seen {
			users = append(users, d.OwnerID)
		}
		byUser[d.OwnerID] = append(byUser[d.OwnerID], indexedDeal{index: i, deal: d})
	}

	workers := bc.Workers
	if workers < 1 {
		workers = 1
	}

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		outcomes []outcome
		sem      = make(chan struct{}, workers)
	)

	for _, user := range users {
		group := byUser[user]
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			for _, id := range group {
				if ctx.Err() != nil {
					return
				}
				out := bc.processDeal(ctx, id.deal)
				out.index = id.index
				mu.Lock()
				outcomes = append(outcomes, out)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].index < outcomes[j].index })

	result := &BatchResult{}
	for _, out := range outcomes {
		switch {
		case out.commission != nil:
			result.Processed = append(result.Processed, *out.commission)
		case out.skipped != nil:
			result.Skipped = append(result.Skipped, *out.skipped)
		case out.failed != nil:
			result.Failed = append(result.Failed, *out.failed)
		}
	}
	return result, nil
}

// processDeal walks one deal through the pipeline: eligibility,
// idempotence guard, assignment resolution, calculation, persistence.
func (bc *BatchCalculator) processDeal(ctx context.Context, deal Deal) outcome {
	if deal.Status != DealClosedWon {
		return outcome{skipped: &SkippedDeal{DealID: deal.ID, Reason: SkipNotClosedWon}}
	}

	exists, err := bc.Commissions.ExistsForDeal(ctx, deal.ID)
	if err != nil {
		return outcome{failed: &FailedDeal{DealID: deal.ID, Reason: err.Error()}}
	}
	if exists {
		return outcome{skipped: &SkippedDeal{DealID: deal.ID, Reason: SkipAlreadyProcessed}}
	}

	assignments, err := bc.Assignments.AssignmentsForUser(ctx, deal.OwnerID)
	if err != nil {
		return outcome{failed: &FailedDeal{DealID: deal.ID, Reason: err.Error()}}
	}
	assignment, ok := ResolveAssignment(assignments, deal.CloseDate)
	if !ok {
		return outcome{skipped: &SkippedDeal{DealID: deal.ID, Reason: SkipNoPlanAssignment}}
	}

	res, err := bc.Engine.Calculate(ctx, deal, assignment)
	if err != nil {
		return outcome{failed: &FailedDeal{DealID: deal.ID, Reason: err.Error()}}
	}

	commission := Commission{
		ID:               bc.newID(deal),
		UserID:           deal.OwnerID,
		DealID:           deal.ID,
		PlanID:           assignment.PlanID,
		CommissionAmount: res.Amount,
		CommissionRate:   res.EffectiveRate,
		DealAmount:       deal.Amount,
		Status:           CommissionCalculated,
		CalculationDate:  bc.now(),
	}
	if res.Fallback != FallbackNone {
		commission.Notes = "fallback: " + string(res.Fallback)
	}

	if err := bc.Commissions.SaveCommission(ctx, commission); err != nil {
		// A duplicate ID means another run got here first; that is the
		// idempotent outcome, not a failure.
		if isDuplicate(err) {
			return outcome{skipped: &SkippedDeal{DealID: deal.ID, Reason: SkipAlreadyProcessed}}
		}
		return outcome{failed: &FailedDeal{DealID: deal.ID, Reason: err.Error()}}
	}

	return outcome{commission: &commission}
}

func isDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicateCommission)
}
