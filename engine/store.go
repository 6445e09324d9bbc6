/*
store.go - Persistence interfaces for plans, deals, quotas, and commissions

PURPOSE:
  Defines the interface between the calculation engine and the record
  keeping around it. The engine treats deals, plans, assignments, and
  quotas as read-only external collaborators; the only records it
  creates are commissions (and payout batches grouping them).

SNAPSHOT CONTRACT:
  Commission records are written once with snapshotted deal_amount and
  effective rate. Stores expose a status transition for the downstream
  payout process (calculated -> paid, manual -> disputed) but no other
  mutation; the monetary snapshot fields are immutable.

IDEMPOTENCE:
  ExistsForDeal is the batch calculator's guard: a deal that already
  has a commission is skipped, so re-running a batch creates zero new
  rows. This is a query-side exclusion, not a hard uniqueness
  constraint - matching the system this engine feeds.

IMPLEMENTATIONS:
  - engine/store/memory.go: In-memory, for tests and dev
  - store/sqlite/: Production SQLite

SEE ALSO:
  - batch.go: The only writer of commission records
  - analytics/: Read-side consumer of CommissionStore
*/
package engine

import "context"

// =============================================================================
// PLAN / ASSIGNMENT STORES
// =============================================================================

// PlanStore persists compensation plan definitions.
type PlanStore interface {
	SavePlan(ctx context.Context, plan CompensationPlan) error

	// GetPlan returns ErrPlanNotFound when the ID is unknown.
	GetPlan(ctx context.Context, id PlanID) (CompensationPlan, error)

	ListPlans(ctx context.Context) ([]CompensationPlan, error)
}

// AssignmentStore persists plan-to-user bindings.
type AssignmentStore interface {
	SaveAssignment(ctx context.Context, assignment PlanAssignment) error

	// AssignmentsForUser returns every assignment for the user, with
	// Plan hydrated. Resolution (active window + tie-break) is the
	// caller's job via ResolveAssignment.
	AssignmentsForUser(ctx context.Context, user UserID) ([]PlanAssignment, error)
}

// =============================================================================
// DEAL / QUOTA STORES (read-only inputs, writable for record keeping)
// =============================================================================

// DealFilter narrows deal listings.
type DealFilter struct {
	OwnerID *UserID
	Status  *DealStatus
}

// DealStore persists deals. The engine only reads; writes exist for
// the surrounding record keeping and demo seeding.
type DealStore interface {
	SaveDeal(ctx context.Context, deal Deal) error

	// GetDeal returns ErrDealNotFound when the ID is unknown.
	GetDeal(ctx context.Context, id DealID) (Deal, error)

	ListDeals(ctx context.Context, filter DealFilter) ([]Deal, error)

	// ClosedWonInPeriod satisfies DealHistory: the user's closed-won
	// deals with close dates inside the period, as a consistent snapshot.
	ClosedWonInPeriod(ctx context.Context, user UserID, period Period) ([]Deal, error)
}

// QuotaStore persists quotas and satisfies QuotaSource.
type QuotaStore interface {
	SaveQuota(ctx context.Context, quota Quota) error

	// QuotaFor returns the quota whose period contains the date, or nil.
	// When several overlap, the earliest-starting quota wins (first match).
	QuotaFor(ctx context.Context, user UserID, on Date) (*Quota, error)

	QuotasForUser(ctx context.Context, user UserID) ([]Quota, error)
}

// =============================================================================
// COMMISSION STORE
// =============================================================================

// CommissionFilter narrows commission listings. From/To bound the
// calculation date (inclusive).
type CommissionFilter struct {
	UserID *UserID
	Status *CommissionStatus
	From   *Date
	To     *Date
}

// CommissionStore persists computed commission records.
type CommissionStore interface {
	// SaveCommission writes a new record. Returns ErrDuplicateCommission
	// if the ID already exists. Snapshot fields are never updated.
	SaveCommission(ctx context.Context, c Commission) error

	// GetCommission returns ErrCommissionNotFound when the ID is unknown.
	GetCommission(ctx context.Context, id CommissionID) (Commission, error)

	// ExistsForDeal reports whether any commission references the deal.
	ExistsForDeal(ctx context.Context, deal DealID) (bool, error)

	ListCommissions(ctx context.Context, filter CommissionFilter) ([]Commission, error)

	// UpdateCommissionStatus transitions a record's status (paid,
	// disputed) and optionally sets the payment date. It must not touch
	// the snapshot fields.
	UpdateCommissionStatus(ctx context.Context, id CommissionID, status CommissionStatus, paymentDate *Date) error
}

// =============================================================================
// PAYOUT STORE
// =============================================================================

// PayoutStore persists payout batches.
type PayoutStore interface {
	SavePayout(ctx context.Context, payout Payout) error
	ListPayouts(ctx context.Context, user UserID) ([]Payout, error)
}
