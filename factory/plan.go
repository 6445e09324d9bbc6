/*
Package factory provides JSON to Go plan conversion.

PURPOSE:
  Converts JSON plan definitions into engine.CompensationPlan objects.
  This enables plan configuration without code changes - sales ops can
  define plans in JSON, and the factory creates the proper Go structs.

WHY JSON?
  - Non-developers can modify plans
  - Easy integration with admin UI
  - Version control for plan definitions
  - Database storage of plan configs

JSON SCHEMA:
  {
    "id": "enterprise-tiered",
    "name": "Enterprise Tiered",
    "type": "tiered",
    "base_rate": 5,
    "rules": [
      {"min_amount": 0, "max_amount": 50000, "rate": 5, "order": 0},
      {"min_amount": 50000, "rate": 7, "order": 1}
    ]
  }

  Quota plans add accelerator parameters:
  {
    "id": "ae-accelerator",
    "name": "AE Accelerator",
    "type": "quota_based",
    "base_rate": 5,
    "threshold_amount": 50000,
    "accelerator_rate": 8
  }

KEY FEATURES:
  - Validates JSON structure and plan invariants
  - Omitted min_amount means 0; omitted max_amount means open-ended
  - Rates are percentage points (5 = 5%); flat_rate plans carry the
    dollar amount in base_rate

USAGE:
  factory := NewPlanFactory()
  plan, err := factory.ParsePlan(jsonString)

SEE ALSO:
  - engine/plan.go: Plan type definition
  - plans/: Go-based plan configurations
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/warp/commission-engine/engine"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// PlanJSON is the JSON representation of a compensation plan.
type PlanJSON struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Type            string     `json:"type"`
	BaseRate        float64    `json:"base_rate"`
	ThresholdAmount *float64   `json:"threshold_amount,omitempty"`
	AcceleratorRate *float64   `json:"accelerator_rate,omitempty"`
	Rules           []RuleJSON `json:"rules,omitempty"`
	Active          *bool      `json:"active,omitempty"` // Default true
	Description     string     `json:"description,omitempty"`
}

// RuleJSON is one tier band of a tiered plan.
type RuleJSON struct {
	MinAmount *float64 `json:"min_amount,omitempty"`
	MaxAmount *float64 `json:"max_amount,omitempty"`
	Rate      float64  `json:"rate"`
	Order     int      `json:"order"`
}

// =============================================================================
// PLAN FACTORY
// =============================================================================

// PlanFactory converts JSON plans to Go structs.
type PlanFactory struct{}

// NewPlanFactory creates a new plan factory.
func NewPlanFactory() *PlanFactory {
	return &PlanFactory{}
}

// ParsePlan parses a JSON string into a CompensationPlan.
func (f *PlanFactory) ParsePlan(jsonStr string) (engine.CompensationPlan, error) {
	var pj PlanJSON
	if err := json.Unmarshal([]byte(jsonStr), &pj); err != nil {
		return engine.CompensationPlan{}, fmt.Errorf("failed to parse plan JSON: %w", err)
	}
	return f.FromJSON(pj)
}

// FromJSON converts PlanJSON to an engine.CompensationPlan.
func (f *PlanFactory) FromJSON(pj PlanJSON) (engine.CompensationPlan, error) {
	plan := engine.CompensationPlan{
		ID:          engine.PlanID(pj.ID),
		Name:        pj.Name,
		Type:        engine.PlanType(pj.Type),
		BaseRate:    decimal.NewFromFloat(pj.BaseRate),
		Description: pj.Description,
		Active:      true,
	}
	if pj.Active != nil {
		plan.Active = *pj.Active
	}

	if pj.ThresholdAmount != nil {
		t := engine.NewMoney(*pj.ThresholdAmount)
		plan.ThresholdAmount = &t
	}
	if pj.AcceleratorRate != nil {
		a := decimal.NewFromFloat(*pj.AcceleratorRate)
		plan.AcceleratorRate = &a
	}

	for _, rj := range pj.Rules {
		rule := engine.CommissionRule{
			Rate:  decimal.NewFromFloat(rj.Rate),
			Order: rj.Order,
		}
		if rj.MinAmount != nil {
			m := engine.NewMoney(*rj.MinAmount)
			rule.MinAmount = &m
		}
		if rj.MaxAmount != nil {
			m := engine.NewMoney(*rj.MaxAmount)
			rule.MaxAmount = &m
		}
		plan.Rules = append(plan.Rules, rule)
	}

	if err := plan.Validate(); err != nil {
		return engine.CompensationPlan{}, fmt.Errorf("invalid plan %q: %w", pj.ID, err)
	}

	return plan, nil
}

// ToJSON converts a CompensationPlan to PlanJSON.
func (f *PlanFactory) ToJSON(plan engine.CompensationPlan) PlanJSON {
	active := plan.Active
	pj := PlanJSON{
		ID:          string(plan.ID),
		Name:        plan.Name,
		Type:        string(plan.Type),
		Active:      &active,
		Description: plan.Description,
	}
	pj.BaseRate, _ = plan.BaseRate.Float64()

	if plan.ThresholdAmount != nil {
		v, _ := plan.ThresholdAmount.Value.Float64()
		pj.ThresholdAmount = &v
	}
	if plan.AcceleratorRate != nil {
		v, _ := plan.AcceleratorRate.Float64()
		pj.AcceleratorRate = &v
	}

	for _, rule := range plan.SortedRules() {
		rj := RuleJSON{Order: rule.Order}
		rj.Rate, _ = rule.Rate.Float64()
		if rule.MinAmount != nil {
			v, _ := rule.MinAmount.Value.Float64()
			rj.MinAmount = &v
		}
		if rule.MaxAmount != nil {
			v, _ := rule.MaxAmount.Value.Float64()
			rj.MaxAmount = &v
		}
		pj.Rules = append(pj.Rules, rj)
	}

	return pj
}
