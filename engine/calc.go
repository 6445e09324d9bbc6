/*
calc.go - Strategy resolution and commission calculation

PURPOSE:
  The heart of the engine: translates one deal plus one plan assignment
  into a monetary commission amount. Each plan type maps to a strategy
  value carrying only the fields that strategy needs; the mapping
  happens once per calculation via an exhaustive switch, so there is no
  string dispatch scattered through the math.

STRATEGIES:
  flat_rate:   commission = BaseRate (a dollar amount, not a percentage)
  percentage:  commission = deal_amount * BaseRate / 100
  tiered:      walk rules in ascending Order; each rule's min/max are
               absolute thresholds on the ORIGINAL deal amount, and the
               running remainder only controls early termination. This
               band semantic is a deliberate, preserved business rule -
               do not "fix" it into marginal bands.
  quota_based: find the quota covering the deal's close date; sum the
               rep's OTHER closed-won deals in the quota period; if the
               deal pushes attainment to/past ThresholdAmount, apply
               AcceleratorRate to the ENTIRE deal amount (all-or-nothing),
               else apply BaseRate. No quota record means base rate.

FALLBACK POLICY (explicit, tested):
  - Unknown plan type: Config.UnknownPlan selects zero commission
    (default, mirrors the historical behavior) or a reported error.
  - Tiered plan with zero rules, or quota plan with a half-configured
    accelerator: base-rate percentage, with the reason surfaced on the
    result so batch reports make it visible.
  - Missing quota: base rate, surfaced as FallbackNoQuota.

GUARANTEES:
  The returned amount is never negative and is rounded to
  Config.Precision exactly once, here.

EXAMPLE:
  eng := engine.New(quotas, history, engine.DefaultConfig())
  res, err := eng.Calculate(ctx, deal, assignment)
  // res.Amount, res.EffectiveRate, res.Accelerated, res.Fallback

SEE ALSO:
  - plan.go: Plan shape and invariants
  - assignment.go: Which assignment applies to a deal
  - batch.go: Running the engine over many deals
*/
package engine

import (
	"context"

	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// =============================================================================
// CONFIG - Explicit engine configuration
// =============================================================================

// UnknownPlanPolicy decides what happens when a plan's type has no strategy.
type UnknownPlanPolicy string

const (
	// UnknownPlanZero yields a zero commission. This mirrors the
	// historical behavior and keeps batches flowing past bad data.
	UnknownPlanZero UnknownPlanPolicy = "zero"

	// UnknownPlanError reports the deal as failed in batch results.
	UnknownPlanError UnknownPlanPolicy = "error"
)

// Config is the engine's complete configuration. It is passed in at
// construction; the engine never inspects its runtime environment.
type Config struct {
	// Precision is the number of minor-unit digits commission amounts
	// are rounded to at record creation. 2 for dollar currencies.
	Precision int32

	// UnknownPlan selects the unknown-plan-type policy.
	UnknownPlan UnknownPlanPolicy
}

// DefaultConfig returns the standard configuration: two decimal places,
// zero commission for unknown plan types.
func DefaultConfig() Config {
	return Config{Precision: 2, UnknownPlan: UnknownPlanZero}
}

// =============================================================================
// READ-ONLY COLLABORATORS
// =============================================================================

// QuotaSource supplies quota records. Implementations must not mutate
// anything on lookup.
type QuotaSource interface {
	// QuotaFor returns the quota whose period contains the date, or nil
	// when the user has none.
	QuotaFor(ctx context.Context, user UserID, on Date) (*Quota, error)
}

// DealHistory supplies the closed-won deal history used for quota
// attainment. The returned slice must be a point-in-time snapshot: the
// engine sums it without re-querying.
type DealHistory interface {
	ClosedWonInPeriod(ctx context.Context, user UserID, period Period) ([]Deal, error)
}

// =============================================================================
// CALCULATION RESULT
// =============================================================================

// FallbackReason records why the engine deviated from the plan's
// nominal strategy. Empty means the strategy applied as configured.
type FallbackReason string

const (
	FallbackNone        FallbackReason = ""
	FallbackNoQuota     FallbackReason = "no_quota"
	FallbackInvalidPlan FallbackReason = "invalid_plan_config"
	FallbackUnknownType FallbackReason = "unknown_plan_type"
)

// CalcResult is the outcome of one commission calculation.
type CalcResult struct {
	// Amount is rounded to Config.Precision and never negative.
	Amount Money

	// EffectiveRate is the rate actually applied: accelerator rate when
	// the accelerator fired, base rate otherwise. For flat-rate plans
	// it is the flat amount. Snapshot this onto the commission record.
	EffectiveRate decimal.Decimal

	// Accelerated is true when the quota accelerator fired.
	Accelerated bool

	// Fallback explains any deviation from the nominal strategy.
	Fallback FallbackReason
}

// =============================================================================
// ENGINE
// =============================================================================

// Engine computes commission amounts. It is stateless apart from its
// read-only collaborators, so a single Engine is safe for concurrent
// use across users; see batch.go for the per-user serialization that
// keeps attainment reads consistent.
type Engine struct {
	quotas  QuotaSource
	history DealHistory
	config  Config
}

// New creates an engine with the given collaborators and configuration.
func New(quotas QuotaSource, history DealHistory, config Config) *Engine {
	return &Engine{quotas: quotas, history: history, config: config}
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config { return e.config }

// Calculate computes the commission for one deal under one assignment.
//
// The only error paths are collaborator failures and the unknown-type
// error policy; every plan-data problem otherwise resolves to a
// defined fallback on the result.
func (e *Engine) Calculate(ctx context.Context, deal Deal, assignment PlanAssignment) (CalcResult, error) {
	strat, err := e.resolve(assignment.Plan)
	if err != nil {
		return CalcResult{}, err
	}

	res, err := strat.calculate(ctx, deal)
	if err != nil {
		return CalcResult{}, err
	}

	// Round once, clamp negatives to zero. A negative deal amount (credit
	// memo style data) must never produce a negative commission.
	res.Amount = res.Amount.Round(e.config.Precision)
	if res.Amount.IsNegative() {
		res.Amount = ZeroMoney()
	}
	return res, nil
}

// =============================================================================
// RATE RESOLVER - Plan type to strategy, resolved once
// =============================================================================

type strategy interface {
	calculate(ctx context.Context, deal Deal) (CalcResult, error)
}

// resolve maps a plan onto the strategy that computes it. This is the
// single place plan types are dispatched; the switch is exhaustive over
// KnownPlanTypes with the default arm implementing the unknown-type policy.
func (e *Engine) resolve(plan CompensationPlan) (strategy, error) {
	switch plan.Type {
	case PlanFlatRate:
		return flatRateStrategy{amount: plan.BaseRate}, nil

	case PlanPercentage:
		return percentageStrategy{rate: plan.BaseRate}, nil

	case PlanTiered:
		if len(plan.Rules) == 0 {
			// Documented fallback: a tiered plan with no rules is computed
			// as base-rate percentage, visibly.
			return percentageStrategy{rate: plan.BaseRate, fallback: FallbackInvalidPlan}, nil
		}
		return tieredStrategy{base: plan.BaseRate, rules: plan.SortedRules()}, nil

	case PlanQuotaBased:
		s := quotaStrategy{
			base:    plan.BaseRate,
			quotas:  e.quotas,
			history: e.history,
		}
		if plan.HasAccelerator() {
			s.threshold = *plan.ThresholdAmount
			s.accelerator = *plan.AcceleratorRate
			s.hasAccelerator = true
		} else if plan.ThresholdAmount != nil || plan.AcceleratorRate != nil {
			// Half-configured accelerator: compute at base rate but flag it.
			s.fallback = FallbackInvalidPlan
		}
		return s, nil

	default:
		if e.config.UnknownPlan == UnknownPlanError {
			return nil, &UnknownPlanTypeError{PlanID: plan.ID, Type: plan.Type}
		}
		return zeroStrategy{}, nil
	}
}

// =============================================================================
// FLAT RATE
// =============================================================================

// flatRateStrategy pays a fixed dollar amount per deal.
type flatRateStrategy struct {
	amount decimal.Decimal
}

func (s flatRateStrategy) calculate(_ context.Context, _ Deal) (CalcResult, error) {
	return CalcResult{
		Amount:        Money{Value: s.amount},
		EffectiveRate: s.amount,
	}, nil
}

// =============================================================================
// PERCENTAGE
// =============================================================================

// percentageStrategy pays rate% of the deal amount. Also serves as the
// fallback computation for structurally invalid plans.
type percentageStrategy struct {
	rate     decimal.Decimal
	fallback FallbackReason
}

func (s percentageStrategy) calculate(_ context.Context, deal Deal) (CalcResult, error) {
	return CalcResult{
		Amount:        deal.Amount.Mul(s.rate.Div(oneHundred)),
		EffectiveRate: s.rate,
		Fallback:      s.fallback,
	}, nil
}

// =============================================================================
// TIERED
// =============================================================================

// tieredStrategy walks the rule bands in ascending order.
//
// Each rule's min/max are absolute thresholds on the original deal
// amount; `remaining` only decides when to stop consuming rules. The
// band widths are therefore fixed over total deal size regardless of
// how much earlier tiers absorbed.
type tieredStrategy struct {
	base  decimal.Decimal
	rules []CommissionRule
}

func (s tieredStrategy) calculate(_ context.Context, deal Deal) (CalcResult, error) {
	commission := decimal.Zero
	remaining := deal.Amount

	for _, rule := range s.rules {
		if !remaining.IsPositive() {
			break
		}

		tierMin := ZeroMoney()
		if rule.MinAmount != nil {
			tierMin = *rule.MinAmount
		}
		// An open-ended top tier's band runs to the deal amount itself.
		tierMax := deal.Amount
		if rule.MaxAmount != nil {
			tierMax = *rule.MaxAmount
		}

		// Band bounds are absolute thresholds on the original deal
		// amount; remaining only decides when to stop consuming rules.
		if deal.Amount.GreaterThan(tierMin) {
			tierAmount := deal.Amount.Sub(tierMin).Min(tierMax.Sub(tierMin))
			commission = commission.Add(tierAmount.Value.Mul(rule.Rate.Div(oneHundred)))
			remaining = remaining.Sub(tierAmount)
		}
	}

	return CalcResult{
		Amount:        Money{Value: commission},
		EffectiveRate: s.base,
	}, nil
}

// =============================================================================
// QUOTA-BASED
// =============================================================================

// quotaStrategy applies the base rate until period attainment crosses
// the threshold, then the accelerator rate to the entire deal.
type quotaStrategy struct {
	base           decimal.Decimal
	threshold      Money
	accelerator    decimal.Decimal
	hasAccelerator bool
	fallback       FallbackReason

	quotas  QuotaSource
	history DealHistory
}

func (s quotaStrategy) calculate(ctx context.Context, deal Deal) (CalcResult, error) {
	quota, err := s.quotas.QuotaFor(ctx, deal.OwnerID, deal.CloseDate)
	if err != nil {
		return CalcResult{}, err
	}
	if quota == nil {
		return CalcResult{
			Amount:        deal.Amount.Mul(s.base.Div(oneHundred)),
			EffectiveRate: s.base,
			Fallback:      FallbackNoQuota,
		}, nil
	}

	closed, err := s.history.ClosedWonInPeriod(ctx, deal.OwnerID, quota.Period)
	if err != nil {
		return CalcResult{}, err
	}

	// Attainment from the rep's OTHER deals in the period; the deal
	// under evaluation is added separately so re-running a calculation
	// never double-counts it.
	currentAttainment := ZeroMoney()
	for _, d := range closed {
		if d.ID == deal.ID {
			continue
		}
		currentAttainment = currentAttainment.Add(d.Amount)
	}
	newAttainment := currentAttainment.Add(deal.Amount)

	if s.hasAccelerator && newAttainment.GreaterOrEqual(s.threshold) {
		// All-or-nothing accelerator: the elevated rate applies to the
		// whole deal, not just the portion above the threshold.
		return CalcResult{
			Amount:        deal.Amount.Mul(s.accelerator.Div(oneHundred)),
			EffectiveRate: s.accelerator,
			Accelerated:   true,
		}, nil
	}

	return CalcResult{
		Amount:        deal.Amount.Mul(s.base.Div(oneHundred)),
		EffectiveRate: s.base,
		Fallback:      s.fallback,
	}, nil
}

// =============================================================================
// UNKNOWN TYPE (zero policy)
// =============================================================================

// zeroStrategy is the documented unknown-plan-type variant: zero
// commission, zero rate, flagged on the result.
type zeroStrategy struct{}

func (zeroStrategy) calculate(_ context.Context, _ Deal) (CalcResult, error) {
	return CalcResult{
		Amount:        ZeroMoney(),
		EffectiveRate: decimal.Zero,
		Fallback:      FallbackUnknownType,
	}, nil
}
