/*
plan.go - Compensation plan and tier rule definitions

PURPOSE:
  Defines the static shape of a compensation plan: its type, base rate,
  quota accelerator parameters, and tiered commission rules. Plans are
  pure data; the calculation strategies live in calc.go.

PLAN TYPES:
  flat_rate:   BaseRate is a fixed dollar amount paid per deal.
  percentage:  BaseRate is a percentage of the deal amount.
  tiered:      Rules split the deal amount into rate bands.
  quota_based: BaseRate applies until period attainment crosses
               ThresholdAmount, then AcceleratorRate applies to the
               whole deal (all-or-nothing, not marginal).

FIELD INVARIANTS:
  - ThresholdAmount and AcceleratorRate are only meaningful for
    quota_based plans. On any other plan type they are inert: kept,
    stored, and ignored by the calculation.
  - Rules belong to exactly one plan and are evaluated strictly in
    ascending Order. Ranges are not validated non-overlapping; the
    engine consumes them in order and stops once the deal amount is
    exhausted.

RATE CONVENTION:
  Rates are percentage points (5.0 means 5%), matching how plans are
  authored. The sole exception is flat_rate, where BaseRate is the
  dollar amount itself.

SEE ALSO:
  - calc.go: How each plan type is computed
  - factory/: JSON plan definitions
  - plans/: Pre-built plan configurations
*/
package engine

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PLAN TYPE
// =============================================================================

type PlanType string

const (
	PlanFlatRate   PlanType = "flat_rate"
	PlanPercentage PlanType = "percentage"
	PlanTiered     PlanType = "tiered"
	PlanQuotaBased PlanType = "quota_based"
)

// KnownPlanTypes lists every plan type the engine has a strategy for.
var KnownPlanTypes = []PlanType{PlanFlatRate, PlanPercentage, PlanTiered, PlanQuotaBased}

// IsKnownPlanType reports whether the engine has a strategy for the type.
func IsKnownPlanType(t PlanType) bool {
	for _, k := range KnownPlanTypes {
		if t == k {
			return true
		}
	}
	return false
}

// =============================================================================
// COMPENSATION PLAN
// =============================================================================

// CompensationPlan is the complete definition of one compensation plan.
// Plans are owned independently and referenced by many assignments and
// commissions.
type CompensationPlan struct {
	ID   PlanID
	Name string
	Type PlanType

	// Percentage points for percentage/tiered/quota_based plans;
	// the flat dollar amount for flat_rate plans.
	BaseRate decimal.Decimal

	// Quota accelerator parameters. Inert unless Type == quota_based.
	ThresholdAmount *Money
	AcceleratorRate *decimal.Decimal

	// Tier rules. Only consulted when Type == tiered.
	Rules []CommissionRule

	Active      bool
	Description string
}

// CommissionRule is one tier band of a tiered plan.
//
// MinAmount and MaxAmount are absolute thresholds on the ORIGINAL deal
// amount, not marginal bands on the remainder. A nil MinAmount means 0;
// a nil MaxAmount means the top tier absorbs everything that remains.
type CommissionRule struct {
	MinAmount *Money
	MaxAmount *Money
	Rate      decimal.Decimal
	Order     int
}

// SortedRules returns the plan's rules in ascending Order.
// The evaluation order is part of the plan contract, so callers must
// never iterate Rules directly.
func (p CompensationPlan) SortedRules() []CommissionRule {
	rules := make([]CommissionRule, len(p.Rules))
	copy(rules, p.Rules)
	sort.SliceStable(rules, func(i, j int) bool { return rules[i].Order < rules[j].Order })
	return rules
}

// HasAccelerator reports whether the plan defines a complete
// accelerator: both threshold and accelerator rate present.
func (p CompensationPlan) HasAccelerator() bool {
	return p.ThresholdAmount != nil && p.AcceleratorRate != nil
}

// Validate checks the plan's structural invariants. A plan that fails
// validation is still calculable: the engine applies the documented
// base-rate fallback and surfaces the fallback on the result.
func (p CompensationPlan) Validate() error {
	if p.ID == "" {
		return &InvalidPlanConfigError{PlanID: p.ID, Reason: "missing plan id"}
	}
	if !IsKnownPlanType(p.Type) {
		return &UnknownPlanTypeError{PlanID: p.ID, Type: p.Type}
	}
	if p.BaseRate.IsNegative() {
		return &InvalidPlanConfigError{PlanID: p.ID, Reason: "negative base rate"}
	}
	switch p.Type {
	case PlanTiered:
		if len(p.Rules) == 0 {
			return &InvalidPlanConfigError{PlanID: p.ID, Reason: "tiered plan has no rules"}
		}
		for _, r := range p.Rules {
			if r.Rate.IsNegative() {
				return &InvalidPlanConfigError{PlanID: p.ID, Reason: "tier rule has negative rate"}
			}
			if r.MinAmount != nil && r.MaxAmount != nil && r.MaxAmount.LessThan(*r.MinAmount) {
				return &InvalidPlanConfigError{PlanID: p.ID, Reason: "tier rule max below min"}
			}
		}
	case PlanQuotaBased:
		// Half-configured accelerators are the invalid state: a plan with
		// neither threshold nor accelerator is a plain base-rate quota plan.
		if (p.ThresholdAmount == nil) != (p.AcceleratorRate == nil) {
			return &InvalidPlanConfigError{PlanID: p.ID, Reason: "quota plan defines threshold or accelerator but not both"}
		}
		if p.AcceleratorRate != nil && p.AcceleratorRate.IsNegative() {
			return &InvalidPlanConfigError{PlanID: p.ID, Reason: "negative accelerator rate"}
		}
	}
	return nil
}
