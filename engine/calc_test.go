package engine_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/commission-engine/engine"
	"github.com/warp/commission-engine/engine/store"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newTestEngine(mem *store.Memory) *engine.Engine {
	return engine.New(mem, mem, engine.DefaultConfig())
}

func rate(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

func money(f float64) engine.Money {
	return engine.NewMoney(f)
}

func moneyPtr(f float64) *engine.Money {
	m := engine.NewMoney(f)
	return &m
}

func ratePtr(f float64) *decimal.Decimal {
	r := decimal.NewFromFloat(f)
	return &r
}

func closedDeal(id string, owner string, amount float64, close engine.Date) engine.Deal {
	return engine.Deal{
		ID:        engine.DealID(id),
		OwnerID:   engine.UserID(owner),
		Amount:    money(amount),
		Status:    engine.DealClosedWon,
		CloseDate: close,
	}
}

func assignmentFor(plan engine.CompensationPlan, user string) engine.PlanAssignment {
	return engine.PlanAssignment{
		ID:        "assign-1",
		UserID:    engine.UserID(user),
		PlanID:    plan.ID,
		Plan:      plan,
		StartDate: engine.NewDate(2025, time.January, 1),
		Active:    true,
	}
}

func march(day int) engine.Date { return engine.NewDate(2025, time.March, day) }

func assertAmount(t *testing.T, got engine.Money, want string) {
	t.Helper()
	if got.String() != want {
		t.Errorf("expected amount %s, got %s", want, got.String())
	}
}

// =============================================================================
// PERCENTAGE STRATEGY
// =============================================================================

func TestCalculate_Percentage_FivePercent(t *testing.T) {
	// GIVEN: A 5% percentage plan
	// WHEN: Calculating a $10,000 deal
	// THEN: Commission is $500.00

	ctx := context.Background()
	eng := newTestEngine(store.NewMemory())

	plan := engine.CompensationPlan{ID: "p1", Type: engine.PlanPercentage, BaseRate: rate(5), Active: true}
	deal := closedDeal("d1", "rep-1", 10000, march(15))

	res, err := eng.Calculate(ctx, deal, assignmentFor(plan, "rep-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertAmount(t, res.Amount, "500")
	if !res.EffectiveRate.Equal(rate(5)) {
		t.Errorf("expected effective rate 5, got %v", res.EffectiveRate)
	}
	if res.Fallback != engine.FallbackNone {
		t.Errorf("unexpected fallback: %q", res.Fallback)
	}
}

func TestCalculate_Percentage_RoundsToTwoPlaces(t *testing.T) {
	// GIVEN: A 3.33% plan and an amount producing a long fraction
	// WHEN: Calculating
	// THEN: The amount is rounded to exactly two decimal places

	ctx := context.Background()
	eng := newTestEngine(store.NewMemory())

	plan := engine.CompensationPlan{ID: "p1", Type: engine.PlanPercentage, BaseRate: rate(3.33), Active: true}
	deal := closedDeal("d1", "rep-1", 999.99, march(15))

	res, err := eng.Calculate(ctx, deal, assignmentFor(plan, "rep-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 999.99 * 0.0333 = 33.299667 -> 33.30
	assertAmount(t, res.Amount, "33.3")
}

func TestCalculate_NegativeDealAmount_ClampedToZero(t *testing.T) {
	// GIVEN: A credit-memo style deal with a negative amount
	// WHEN: Calculating under a percentage plan
	// THEN: Commission is clamped to zero, never negative

	ctx := context.Background()
	eng := newTestEngine(store.NewMemory())

	plan := engine.CompensationPlan{ID: "p1", Type: engine.PlanPercentage, BaseRate: rate(5), Active: true}
	deal := closedDeal("d1", "rep-1", -2000, march(15))

	res, err := eng.Calculate(ctx, deal, assignmentFor(plan, "rep-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !res.Amount.IsZero() {
		t.Errorf("expected zero commission for negative deal, got %s", res.Amount)
	}
}

// =============================================================================
// FLAT RATE STRATEGY
// =============================================================================

func TestCalculate_FlatRate_IgnoresDealSize(t *testing.T) {
	// GIVEN: A $500 flat-rate plan
	// WHEN: Calculating deals of very different sizes
	// THEN: Both pay exactly $500

	ctx := context.Background()
	eng := newTestEngine(store.NewMemory())

	plan := engine.CompensationPlan{ID: "p1", Type: engine.PlanFlatRate, BaseRate: rate(500), Active: true}

	for _, amount := range []float64{100, 1000000} {
		deal := closedDeal("d1", "rep-1", amount, march(15))
		res, err := eng.Calculate(ctx, deal, assignmentFor(plan, "rep-1"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertAmount(t, res.Amount, "500")
	}
}

// =============================================================================
// TIERED STRATEGY
// =============================================================================

func twoTierPlan() engine.CompensationPlan {
	return engine.CompensationPlan{
		ID:       "tiered-1",
		Type:     engine.PlanTiered,
		BaseRate: rate(5),
		Active:   true,
		Rules: []engine.CommissionRule{
			{MinAmount: nil, MaxAmount: moneyPtr(5000), Rate: rate(5), Order: 0},
			{MinAmount: moneyPtr(5000), MaxAmount: nil, Rate: rate(7), Order: 1},
		},
	}
}

func TestCalculate_Tiered_SpansBothBands(t *testing.T) {
	// GIVEN: Tiers 5% to $5,000 and 7% above
	// WHEN: Calculating an $8,000 deal
	// THEN: 5000*5% + 3000*7% = 250 + 210 = $460

	ctx := context.Background()
	eng := newTestEngine(store.NewMemory())

	deal := closedDeal("d1", "rep-1", 8000, march(15))
	res, err := eng.Calculate(ctx, deal, assignmentFor(twoTierPlan(), "rep-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertAmount(t, res.Amount, "460")
}

func TestCalculate_Tiered_StopsWhenExhausted(t *testing.T) {
	// GIVEN: The same two-tier plan
	// WHEN: Calculating a $3,000 deal (inside the first band)
	// THEN: Only the first tier applies: 3000*5% = $150

	ctx := context.Background()
	eng := newTestEngine(store.NewMemory())

	deal := closedDeal("d1", "rep-1", 3000, march(15))
	res, err := eng.Calculate(ctx, deal, assignmentFor(twoTierPlan(), "rep-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertAmount(t, res.Amount, "150")
}

func TestCalculate_Tiered_RulesEvaluatedInOrder(t *testing.T) {
	// GIVEN: Rules declared out of order (Order fields reversed in the slice)
	// WHEN: Calculating
	// THEN: The result matches ascending-Order evaluation

	ctx := context.Background()
	eng := newTestEngine(store.NewMemory())

	plan := twoTierPlan()
	plan.Rules[0], plan.Rules[1] = plan.Rules[1], plan.Rules[0]

	deal := closedDeal("d1", "rep-1", 8000, march(15))
	res, err := eng.Calculate(ctx, deal, assignmentFor(plan, "rep-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertAmount(t, res.Amount, "460")
}

func TestCalculate_Tiered_NoRules_FallsBackToBaseRate(t *testing.T) {
	// GIVEN: A tiered plan with zero rules
	// WHEN: Calculating a $10,000 deal
	// THEN: Base-rate percentage applies and the fallback is surfaced

	ctx := context.Background()
	eng := newTestEngine(store.NewMemory())

	plan := engine.CompensationPlan{ID: "p1", Type: engine.PlanTiered, BaseRate: rate(5), Active: true}
	deal := closedDeal("d1", "rep-1", 10000, march(15))

	res, err := eng.Calculate(ctx, deal, assignmentFor(plan, "rep-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertAmount(t, res.Amount, "500")
	if res.Fallback != engine.FallbackInvalidPlan {
		t.Errorf("expected invalid_plan_config fallback, got %q", res.Fallback)
	}
}

func TestCalculate_Tiered_BandsCapTotalAllocation(t *testing.T) {
	// GIVEN: Two equal-rate 10% bands covering $0-$5,000 and $5,000-$10,000
	// WHEN: Calculating deals below, inside, and beyond the covered range
	// THEN: The amount paid on is min(deal, total band width), so the
	//       commission is always 10% of that

	ctx := context.Background()
	eng := newTestEngine(store.NewMemory())

	plan := engine.CompensationPlan{
		ID:       "tiered-capped",
		Type:     engine.PlanTiered,
		BaseRate: rate(10),
		Active:   true,
		Rules: []engine.CommissionRule{
			{MinAmount: nil, MaxAmount: moneyPtr(5000), Rate: rate(10), Order: 0},
			{MinAmount: moneyPtr(5000), MaxAmount: moneyPtr(10000), Rate: rate(10), Order: 1},
		},
	}

	cases := []struct {
		amount float64
		want   string
	}{
		{3000, "300"},   // entirely inside the first band
		{8000, "800"},   // spans both bands
		{15000, "1000"}, // past coverage: only the $10,000 of band width pays
	}
	for _, tc := range cases {
		deal := closedDeal("d1", "rep-1", tc.amount, march(15))
		res, err := eng.Calculate(ctx, deal, assignmentFor(plan, "rep-1"))
		if err != nil {
			t.Fatalf("deal %v: unexpected error: %v", tc.amount, err)
		}
		assertAmount(t, res.Amount, tc.want)
	}
}

// =============================================================================
// QUOTA-BASED STRATEGY
// =============================================================================

func quotaPlan() engine.CompensationPlan {
	return engine.CompensationPlan{
		ID:              "quota-1",
		Type:            engine.PlanQuotaBased,
		BaseRate:        rate(5),
		ThresholdAmount: moneyPtr(50000),
		AcceleratorRate: ratePtr(8),
		Active:          true,
	}
}

func q1Quota(user string) engine.Quota {
	return engine.Quota{
		ID:     "quota-q1",
		UserID: engine.UserID(user),
		Amount: money(100000),
		Period: engine.Period{
			Start: engine.NewDate(2025, time.January, 1),
			End:   engine.NewDate(2025, time.March, 31),
		},
	}
}

func TestCalculate_QuotaBased_BelowThreshold_BaseRate(t *testing.T) {
	// GIVEN: $20k of prior attainment against a $50k accelerator threshold
	// WHEN: Calculating a $10k deal (attainment reaches $30k)
	// THEN: Base rate applies: 10000*5% = $500, not accelerated

	ctx := context.Background()
	mem := store.NewMemory()
	eng := newTestEngine(mem)

	mem.SaveQuota(ctx, q1Quota("rep-1"))
	mem.SaveDeal(ctx, closedDeal("prior-1", "rep-1", 20000, march(1)))

	deal := closedDeal("d1", "rep-1", 10000, march(15))
	res, err := eng.Calculate(ctx, deal, assignmentFor(quotaPlan(), "rep-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertAmount(t, res.Amount, "500")
	if res.Accelerated {
		t.Error("accelerator should not fire below threshold")
	}
}

func TestCalculate_QuotaBased_CrossingThreshold_AcceleratesWholeDeal(t *testing.T) {
	// GIVEN: $45k of prior attainment against a $50k threshold
	// WHEN: Calculating a $10k deal (attainment reaches $55k)
	// THEN: The 8% accelerator applies to the ENTIRE deal: $800

	ctx := context.Background()
	mem := store.NewMemory()
	eng := newTestEngine(mem)

	mem.SaveQuota(ctx, q1Quota("rep-1"))
	mem.SaveDeal(ctx, closedDeal("prior-1", "rep-1", 45000, march(1)))

	deal := closedDeal("d1", "rep-1", 10000, march(15))
	res, err := eng.Calculate(ctx, deal, assignmentFor(quotaPlan(), "rep-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertAmount(t, res.Amount, "800")
	if !res.Accelerated {
		t.Error("accelerator should fire when the deal crosses the threshold")
	}
	if !res.EffectiveRate.Equal(rate(8)) {
		t.Errorf("expected effective rate 8, got %v", res.EffectiveRate)
	}
}

func TestCalculate_QuotaBased_ExactlyAtThreshold_Accelerates(t *testing.T) {
	// GIVEN: $40k of prior attainment and a $10k deal against a $50k threshold
	// WHEN: Attainment lands exactly on the threshold
	// THEN: The accelerator fires (>= is inclusive)

	ctx := context.Background()
	mem := store.NewMemory()
	eng := newTestEngine(mem)

	mem.SaveQuota(ctx, q1Quota("rep-1"))
	mem.SaveDeal(ctx, closedDeal("prior-1", "rep-1", 40000, march(1)))

	deal := closedDeal("d1", "rep-1", 10000, march(15))
	res, err := eng.Calculate(ctx, deal, assignmentFor(quotaPlan(), "rep-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !res.Accelerated {
		t.Error("accelerator should fire at exactly the threshold")
	}
	assertAmount(t, res.Amount, "800")
}

func TestCalculate_QuotaBased_ExcludesDealUnderEvaluation(t *testing.T) {
	// GIVEN: The deal under evaluation is already persisted in the store
	// WHEN: Calculating it with $45k of other attainment
	// THEN: Its own amount is not double-counted: 45k + 10k = 55k, accelerated
	//       (double-counting would have read 65k either way here, so verify
	//       the inverse: with only the deal itself stored, attainment is 10k)

	ctx := context.Background()
	mem := store.NewMemory()
	eng := newTestEngine(mem)

	mem.SaveQuota(ctx, q1Quota("rep-1"))
	deal := closedDeal("d1", "rep-1", 30000, march(15))
	mem.SaveDeal(ctx, deal)

	res, err := eng.Calculate(ctx, deal, assignmentFor(quotaPlan(), "rep-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 30k alone stays under 50k; if the stored copy double-counted it
	// would read 60k and accelerate.
	if res.Accelerated {
		t.Error("deal under evaluation must not count twice toward attainment")
	}
	assertAmount(t, res.Amount, "1500")
}

func TestCalculate_QuotaBased_NoQuota_BaseRateFallback(t *testing.T) {
	// GIVEN: A quota plan but no quota record for the rep
	// WHEN: Calculating a deal
	// THEN: Base rate applies and FallbackNoQuota is surfaced

	ctx := context.Background()
	eng := newTestEngine(store.NewMemory())

	deal := closedDeal("d1", "rep-1", 10000, march(15))
	res, err := eng.Calculate(ctx, deal, assignmentFor(quotaPlan(), "rep-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertAmount(t, res.Amount, "500")
	if res.Fallback != engine.FallbackNoQuota {
		t.Errorf("expected no_quota fallback, got %q", res.Fallback)
	}
}

func TestCalculate_QuotaBased_HalfConfiguredAccelerator_BaseRateFlagged(t *testing.T) {
	// GIVEN: A quota plan with a threshold but no accelerator rate
	// WHEN: Calculating with attainment past the threshold
	// THEN: Base rate applies and the invalid-config fallback is surfaced

	ctx := context.Background()
	mem := store.NewMemory()
	eng := newTestEngine(mem)

	mem.SaveQuota(ctx, q1Quota("rep-1"))
	mem.SaveDeal(ctx, closedDeal("prior-1", "rep-1", 60000, march(1)))

	plan := quotaPlan()
	plan.AcceleratorRate = nil

	deal := closedDeal("d1", "rep-1", 10000, march(15))
	res, err := eng.Calculate(ctx, deal, assignmentFor(plan, "rep-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertAmount(t, res.Amount, "500")
	if res.Accelerated {
		t.Error("half-configured accelerator must not fire")
	}
	if res.Fallback != engine.FallbackInvalidPlan {
		t.Errorf("expected invalid_plan_config fallback, got %q", res.Fallback)
	}
}

// =============================================================================
// UNKNOWN PLAN TYPE POLICY
// =============================================================================

func TestCalculate_UnknownType_ZeroPolicy(t *testing.T) {
	// GIVEN: A plan with an unrecognized type under the default (zero) policy
	// WHEN: Calculating
	// THEN: Zero commission, flagged as unknown_plan_type

	ctx := context.Background()
	eng := newTestEngine(store.NewMemory())

	plan := engine.CompensationPlan{ID: "p1", Type: "mystery", BaseRate: rate(5), Active: true}
	deal := closedDeal("d1", "rep-1", 10000, march(15))

	res, err := eng.Calculate(ctx, deal, assignmentFor(plan, "rep-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !res.Amount.IsZero() {
		t.Errorf("expected zero commission, got %s", res.Amount)
	}
	if res.Fallback != engine.FallbackUnknownType {
		t.Errorf("expected unknown_plan_type fallback, got %q", res.Fallback)
	}
}

func TestCalculate_UnknownType_ErrorPolicy(t *testing.T) {
	// GIVEN: The same plan under the error policy
	// WHEN: Calculating
	// THEN: An UnknownPlanTypeError is returned

	ctx := context.Background()
	mem := store.NewMemory()
	eng := engine.New(mem, mem, engine.Config{Precision: 2, UnknownPlan: engine.UnknownPlanError})

	plan := engine.CompensationPlan{ID: "p1", Type: "mystery", BaseRate: rate(5), Active: true}
	deal := closedDeal("d1", "rep-1", 10000, march(15))

	_, err := eng.Calculate(ctx, deal, assignmentFor(plan, "rep-1"))
	if err == nil {
		t.Fatal("expected an error under the error policy")
	}
	var typeErr *engine.UnknownPlanTypeError
	if !errors.As(err, &typeErr) {
		t.Fatalf("expected UnknownPlanTypeError, got %T: %v", err, err)
	}
	if typeErr.PlanID != "p1" {
		t.Errorf("error should identify the plan, got %q", typeErr.PlanID)
	}
}
