/*
assignment.go - Plan-to-user binding and temporal resolution

PURPOSE:
  A rep is bound to a compensation plan over a date interval. When a
  deal closes, exactly one assignment should apply - but the schema
  does not enforce exclusivity, so overlapping windows can and do
  exist. This file makes the resolution deterministic.

RESOLUTION RULE:
  An assignment covers a deal when:
    - it is active,
    - its StartDate <= the deal's close date, and
    - its EndDate is unset (open-ended) or >= the close date.

TIE-BREAK (explicit, tested):
  When multiple assignments cover the same close date, pick the most
  recently started; among equal start dates, the highest assignment ID.
  The rule is part of the engine contract - resolution must never
  depend on incidental store ordering.

EXAMPLE:
  assignment, ok := engine.ResolveAssignment(assignments, deal.CloseDate)
  if !ok {
      // deal is skipped and reported, not an error
  }

SEE ALSO:
  - batch.go: Uses resolution for every deal in a batch
  - store.go: AssignmentStore interface
*/
package engine

// =============================================================================
// PLAN ASSIGNMENT
// =============================================================================

// PlanAssignment binds a user to a compensation plan over a half-open
// date interval [StartDate, EndDate-or-open-ended]. Active gates
// eligibility independently of the window.
type PlanAssignment struct {
	ID     AssignmentID
	UserID UserID
	PlanID PlanID

	// The bound plan. Stores hydrate this on load so calculation never
	// needs a second lookup.
	Plan CompensationPlan

	StartDate Date
	EndDate   *Date // nil = open-ended
	Active    bool
}

// Covers reports whether the assignment applies on the given date.
func (pa PlanAssignment) Covers(on Date) bool {
	if !pa.Active {
		return false
	}
	if on.Before(pa.StartDate) {
		return false
	}
	if pa.EndDate != nil && on.After(*pa.EndDate) {
		return false
	}
	return true
}

// =============================================================================
// RESOLUTION
// =============================================================================

// ResolveAssignment picks the assignment applying on the given date.
//
// Tie-break among overlapping assignments: most recently started, then
// highest ID. Returns ok=false when nothing covers the date.
func ResolveAssignment(assignments []PlanAssignment, on Date) (PlanAssignment, bool) {
	var (
		best  PlanAssignment
		found bool
	)
	for _, a := range assignments {
		if !a.Covers(on) {
			continue
		}
		if !found || startsAfter(a, best) {
			best = a
			found = true
		}
	}
	return best, found
}

// startsAfter reports whether a wins the tie-break against b.
func startsAfter(a, b PlanAssignment) bool {
	if a.StartDate.After(b.StartDate) {
		return true
	}
	if a.StartDate.Equal(b.StartDate) {
		return a.ID > b.ID
	}
	return false
}
