/*
errors.go - Centralized error types for the commission engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers (batch calculator, API layer) wrap these with additional
  context.

ERROR CATEGORIES:
  1. Resolution errors - No applicable plan assignment for a deal
  2. Configuration errors - Malformed or unknown plan definitions
  3. Store errors - Missing records, duplicate writes

POLICY NOTES:
  Most calculation-level problems are deliberately NOT errors:
  - A deal with no plan assignment is skipped and reported, not fatal.
  - An already-processed deal is an idempotent no-op.
  - Invalid plan configurations fall back to base-rate percentage and
    are surfaced on the calculation result.
  The error types below exist for the cases an operator must see
  (unknown plan type under the error policy, missing records) and for
  structured reporting in batch results.

USAGE:
    if errors.Is(err, engine.ErrUnknownPlanType) {
        // deal recorded as failed in the batch report
    }

SEE ALSO:
  - calc.go: Where fallbacks are applied
  - batch.go: Where per-deal errors are collected
*/
package engine

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrUnknownPlanType is returned when a plan's type has no strategy
	// and the engine is configured with UnknownPlanError.
	ErrUnknownPlanType = errors.New("unknown plan type")

	// ErrInvalidPlanConfig is returned when a plan fails structural
	// validation (e.g. tiered plan with zero rules).
	ErrInvalidPlanConfig = errors.New("invalid plan configuration")

	// ErrNoPlanAssignment is returned when no active assignment covers a
	// deal's close date. Batch processing treats this as a skip.
	ErrNoPlanAssignment = errors.New("no applicable plan assignment")

	// ErrPlanNotFound is returned when a referenced plan doesn't exist.
	ErrPlanNotFound = errors.New("plan not found")

	// ErrDealNotFound is returned when a referenced deal doesn't exist.
	ErrDealNotFound = errors.New("deal not found")

	// ErrCommissionNotFound is returned when a referenced commission doesn't exist.
	ErrCommissionNotFound = errors.New("commission not found")

	// ErrDuplicateCommission is returned when a store rejects a second
	// commission record with the same ID.
	ErrDuplicateCommission = errors.New("duplicate commission id")

	// ErrInvalidPeriod is returned when a period is malformed (end before start).
	ErrInvalidPeriod = errors.New("invalid period: end before start")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// UnknownPlanTypeError identifies the plan whose type has no strategy.
type UnknownPlanTypeError struct {
	PlanID PlanID
	Type   PlanType
}

func (e *UnknownPlanTypeError) Error() string {
	return fmt.Sprintf("unknown plan type %q on plan %s", e.Type, e.PlanID)
}

func (e *UnknownPlanTypeError) Unwrap() error { return ErrUnknownPlanType }

// InvalidPlanConfigError describes why a plan failed validation.
type InvalidPlanConfigError struct {
	PlanID PlanID
	Reason string
}

func (e *InvalidPlanConfigError) Error() string {
	return fmt.Sprintf("invalid plan configuration on plan %s: %s", e.PlanID, e.Reason)
}

func (e *InvalidPlanConfigError) Unwrap() error { return ErrInvalidPlanConfig }

// NoAssignmentError identifies the deal that could not be matched to a plan.
type NoAssignmentError struct {
	UserID    UserID
	DealID    DealID
	CloseDate Date
}

func (e *NoAssignmentError) Error() string {
	return fmt.Sprintf("no active plan assignment for user %s covering %s (deal %s)",
		e.UserID, e.CloseDate, e.DealID)
}

func (e *NoAssignmentError) Unwrap() error { return ErrNoPlanAssignment }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrPlanNotFound) ||
		errors.Is(err, ErrDealNotFound) ||
		errors.Is(err, ErrCommissionNotFound)
}

// IsConfigError returns true if the error is due to bad plan data
// rather than a runtime failure.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrUnknownPlanType) ||
		errors.Is(err, ErrInvalidPlanConfig)
}
