/*
Package plans provides pre-built compensation plan configurations.

PURPOSE:
  Ready-to-use plan definitions for the common sales compensation
  shapes. Each constructor returns a complete engine.CompensationPlan;
  the scenarios and tests build on these rather than hand-rolling plan
  structs everywhere.

AVAILABLE PLANS:
  StandardPercentagePlan:
    - Flat percentage of every deal (e.g. 5% of deal amount)
    - The default plan for most reps

  FlatBonusPlan:
    - Fixed dollar amount per closed deal regardless of size
    - Typical for SDR/appointment-setting roles

  TwoTierPlan:
    - Lower rate up to a breakpoint, higher rate above it
    - Band thresholds are absolute over total deal size

  QuotaAcceleratorPlan:
    - Base rate until period attainment crosses the threshold,
      then the accelerator rate on the entire deal

RATE CONVENTION:
  Rates are percentage points (5.0 = 5%). FlatBonusPlan takes the
  dollar amount directly.

EXAMPLE:
  plan := plans.QuotaAcceleratorPlan("q1-accel", "Q1 Accelerator", 5, 50000, 8)
  // 5% base, 8% on every deal once attainment reaches $50k

SEE ALSO:
  - engine/plan.go: Plan shape and invariants
  - factory/: JSON plan definitions
*/
package plans

import (
	"github.com/shopspring/decimal"

	"github.com/warp/commission-engine/engine"
)

// =============================================================================
// STANDARD PERCENTAGE
// =============================================================================

// StandardPercentagePlan pays rate% of every deal.
func StandardPercentagePlan(id, name string, rate float64) engine.CompensationPlan {
	return engine.CompensationPlan{
		ID:       engine.PlanID(id),
		Name:     name,
		Type:     engine.PlanPercentage,
		BaseRate: decimal.NewFromFloat(rate),
		Active:   true,
	}
}

// =============================================================================
// FLAT BONUS
// =============================================================================

// FlatBonusPlan pays a fixed dollar amount per deal.
func FlatBonusPlan(id, name string, amount float64) engine.CompensationPlan {
	return engine.CompensationPlan{
		ID:       engine.PlanID(id),
		Name:     name,
		Type:     engine.PlanFlatRate,
		BaseRate: decimal.NewFromFloat(amount),
		Active:   true,
	}
}

// =============================================================================
// TWO-TIER
// =============================================================================

// TwoTierPlan pays lowRate% on the band up to breakpoint and highRate%
// on the open-ended band above it.
func TwoTierPlan(id, name string, breakpoint, lowRate, highRate float64) engine.CompensationPlan {
	bp := engine.NewMoney(breakpoint)
	return engine.CompensationPlan{
		ID:       engine.PlanID(id),
		Name:     name,
		Type:     engine.PlanTiered,
		BaseRate: decimal.NewFromFloat(lowRate),
		Rules: []engine.CommissionRule{
			{MinAmount: nil, MaxAmount: &bp, Rate: decimal.NewFromFloat(lowRate), Order: 0},
			{MinAmount: &bp, MaxAmount: nil, Rate: decimal.NewFromFloat(highRate), Order: 1},
		},
		Active: true,
	}
}

// TieredPlan builds a tiered plan from explicit bands. Bands are
// ordered as given; a nil max on the last band makes it open-ended.
func TieredPlan(id, name string, base float64, bands []Band) engine.CompensationPlan {
	plan := engine.CompensationPlan{
		ID:       engine.PlanID(id),
		Name:     name,
		Type:     engine.PlanTiered,
		BaseRate: decimal.NewFromFloat(base),
		Active:   true,
	}
	for i, b := range bands {
		rule := engine.CommissionRule{Rate: decimal.NewFromFloat(b.Rate), Order: i}
		if b.Min != nil {
			m := engine.NewMoney(*b.Min)
			rule.MinAmount = &m
		}
		if b.Max != nil {
			m := engine.NewMoney(*b.Max)
			rule.MaxAmount = &m
		}
		plan.Rules = append(plan.Rules, rule)
	}
	return plan
}

// Band is one tier band for TieredPlan.
type Band struct {
	Min  *float64 // nil = 0
	Max  *float64 // nil = open-ended
	Rate float64  // percentage points
}

// =============================================================================
// QUOTA ACCELERATOR
// =============================================================================

// QuotaAcceleratorPlan pays baseRate% until period attainment reaches
// threshold, then acceleratorRate% on the entire deal.
func QuotaAcceleratorPlan(id, name string, baseRate, threshold, acceleratorRate float64) engine.CompensationPlan {
	t := engine.NewMoney(threshold)
	a := decimal.NewFromFloat(acceleratorRate)
	return engine.CompensationPlan{
		ID:              engine.PlanID(id),
		Name:            name,
		Type:            engine.PlanQuotaBased,
		BaseRate:        decimal.NewFromFloat(baseRate),
		ThresholdAmount: &t,
		AcceleratorRate: &a,
		Active:          true,
	}
}
