/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	data for testing and demos. Each scenario creates plans, assignments,
	quotas, and deals that demonstrate specific features.

AVAILABLE SCENARIOS:

	standard-team:    Three reps on a percentage plan, one month of deals
	tiered-enterprise: Enterprise rep on a two-tier plan with large deals
	quota-accelerator: Rep crossing the accelerator threshold mid-quarter
	plan-transition:  Rep whose plan changes mid-year (temporal resolution)

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Create plans
 3. Assign plans to reps
 4. Set quotas where the scenario needs them
 5. Record deals
 6. Run the batch calculator so commissions exist immediately

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "quota-accelerator"}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description
 2. Create loader function: loadXxxScenario(ctx)
 3. Add case to LoadScenario handler

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: LoadScenario, ListScenarios handlers
  - plans/: Pre-built plan configurations
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/warp/commission-engine/engine"
	"github.com/warp/commission-engine/plans"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "standard-team",
		Name:        "Standard Team",
		Description: "Three reps on a 5% percentage plan with a month of closed deals",
	},
	{
		ID:          "tiered-enterprise",
		Name:        "Tiered Enterprise",
		Description: "Enterprise rep on a two-tier plan (5% to $50k, 7% above)",
	},
	{
		ID:          "quota-accelerator",
		Name:        "Quota Accelerator",
		Description: "Rep crossing the $50k accelerator threshold mid-quarter",
	},
	{
		ID:          "plan-transition",
		Name:        "Plan Transition",
		Description: "Rep moved from SDR flat bonus to AE percentage mid-year",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	if h.currentScenario == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}

	for _, s := range scenarios {
		if s.ID == h.currentScenario {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}

	writeJSON(w, http.StatusOK, ScenarioDTO{
		ID:          h.currentScenario,
		Name:        h.currentScenario,
		Description: "Currently loaded scenario",
	})
}

// LoadScenario loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ScenarioID string `json:"scenario_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()

	// Reset first
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""

	var err error
	switch req.ScenarioID {
	case "standard-team":
		err = h.loadStandardTeamScenario(ctx)
	case "tiered-enterprise":
		err = h.loadTieredEnterpriseScenario(ctx)
	case "quota-accelerator":
		err = h.loadQuotaAcceleratorScenario(ctx)
	case "plan-transition":
		err = h.loadPlanTransitionScenario(ctx)
	default:
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}

	h.currentScenario = req.ScenarioID

	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadStandardTeamScenario(ctx context.Context) error {
	plan := plans.StandardPercentagePlan("standard-5pct", "Standard 5%", 5)
	if err := h.Store.SavePlan(ctx, plan); err != nil {
		return err
	}

	year := time.Now().Year()
	start := engine.NewDate(year, time.January, 1)

	reps := []engine.UserID{"rep-alice", "rep-bob", "rep-carol"}
	for i, rep := range reps {
		assignment := engine.PlanAssignment{
			ID:        engine.AssignmentID(fmt.Sprintf("assign-%03d", i+1)),
			UserID:    rep,
			PlanID:    plan.ID,
			StartDate: start,
			Active:    true,
		}
		if err := h.Store.SaveAssignment(ctx, assignment); err != nil {
			return err
		}
	}

	deals := []engine.Deal{
		{ID: "deal-001", Name: "Acme renewal", AccountName: "Acme Corp", OwnerID: "rep-alice",
			Amount: engine.NewMoney(12000), Status: engine.DealClosedWon,
			CloseDate: engine.NewDate(year, time.March, 3)},
		{ID: "deal-002", Name: "Globex expansion", AccountName: "Globex", OwnerID: "rep-alice",
			Amount: engine.NewMoney(28000), Status: engine.DealClosedWon,
			CloseDate: engine.NewDate(year, time.March, 14)},
		{ID: "deal-003", Name: "Initech starter", AccountName: "Initech", OwnerID: "rep-bob",
			Amount: engine.NewMoney(8500), Status: engine.DealClosedWon,
			CloseDate: engine.NewDate(year, time.March, 18)},
		{ID: "deal-004", Name: "Umbrella pilot", AccountName: "Umbrella", OwnerID: "rep-carol",
			Amount: engine.NewMoney(15000), Status: engine.DealClosedWon,
			CloseDate: engine.NewDate(year, time.March, 22)},
		{ID: "deal-005", Name: "Hooli eval", AccountName: "Hooli", OwnerID: "rep-carol",
			Amount: engine.NewMoney(40000), Status: engine.DealOpen,
			CloseDate: engine.NewDate(year, time.April, 30)},
	}
	if err := h.saveDeals(ctx, deals); err != nil {
		return err
	}

	return h.runBatch(ctx, deals)
}

func (h *Handler) loadTieredEnterpriseScenario(ctx context.Context) error {
	plan := plans.TwoTierPlan("enterprise-tiered", "Enterprise Tiered", 50000, 5, 7)
	if err := h.Store.SavePlan(ctx, plan); err != nil {
		return err
	}

	year := time.Now().Year()
	assignment := engine.PlanAssignment{
		ID:        "assign-ent-001",
		UserID:    "rep-dana",
		PlanID:    plan.ID,
		StartDate: engine.NewDate(year, time.January, 1),
		Active:    true,
	}
	if err := h.Store.SaveAssignment(ctx, assignment); err != nil {
		return err
	}

	deals := []engine.Deal{
		{ID: "deal-ent-001", Name: "MegaCorp platform", AccountName: "MegaCorp", OwnerID: "rep-dana",
			Amount: engine.NewMoney(80000), Status: engine.DealClosedWon,
			CloseDate: engine.NewDate(year, time.February, 10)},
		{ID: "deal-ent-002", Name: "TitanSoft suite", AccountName: "TitanSoft", OwnerID: "rep-dana",
			Amount: engine.NewMoney(35000), Status: engine.DealClosedWon,
			CloseDate: engine.NewDate(year, time.February, 24)},
	}
	if err := h.saveDeals(ctx, deals); err != nil {
		return err
	}

	return h.runBatch(ctx, deals)
}

func (h *Handler) loadQuotaAcceleratorScenario(ctx context.Context) error {
	plan := plans.QuotaAcceleratorPlan("ae-accelerator", "AE Accelerator", 5, 50000, 8)
	if err := h.Store.SavePlan(ctx, plan); err != nil {
		return err
	}

	year := time.Now().Year()
	assignment := engine.PlanAssignment{
		ID:        "assign-acc-001",
		UserID:    "rep-eve",
		PlanID:    plan.ID,
		StartDate: engine.NewDate(year, time.January, 1),
		Active:    true,
	}
	if err := h.Store.SaveAssignment(ctx, assignment); err != nil {
		return err
	}

	quota := engine.Quota{
		ID:     "quota-q1",
		UserID: "rep-eve",
		Amount: engine.NewMoney(100000),
		Period: engine.Period{
			Start: engine.NewDate(year, time.January, 1),
			End:   engine.NewDate(year, time.March, 31),
		},
	}
	if err := h.Store.SaveQuota(ctx, quota); err != nil {
		return err
	}

	// Quarter attainment ends at $75k, past the $50k threshold, so every
	// deal in the quarter earns the 8% accelerator.
	deals := []engine.Deal{
		{ID: "deal-acc-001", Name: "Wayne starter", AccountName: "Wayne Ent", OwnerID: "rep-eve",
			Amount: engine.NewMoney(20000), Status: engine.DealClosedWon,
			CloseDate: engine.NewDate(year, time.January, 15)},
		{ID: "deal-acc-002", Name: "Stark pilot", AccountName: "Stark Ind", OwnerID: "rep-eve",
			Amount: engine.NewMoney(25000), Status: engine.DealClosedWon,
			CloseDate: engine.NewDate(year, time.February, 8)},
		{ID: "deal-acc-003", Name: "Oscorp rollout", AccountName: "Oscorp", OwnerID: "rep-eve",
			Amount: engine.NewMoney(30000), Status: engine.DealClosedWon,
			CloseDate: engine.NewDate(year, time.March, 20)},
	}
	if err := h.saveDeals(ctx, deals); err != nil {
		return err
	}

	return h.runBatch(ctx, deals)
}

func (h *Handler) loadPlanTransitionScenario(ctx context.Context) error {
	sdrPlan := plans.FlatBonusPlan("sdr-bonus", "SDR Flat Bonus", 500)
	aePlan := plans.StandardPercentagePlan("ae-5pct", "AE 5%", 5)
	if err := h.Store.SavePlan(ctx, sdrPlan); err != nil {
		return err
	}
	if err := h.Store.SavePlan(ctx, aePlan); err != nil {
		return err
	}

	year := time.Now().Year()
	promotion := engine.NewDate(year, time.July, 1)
	sdrEnd := promotion.AddDays(-1)

	assignments := []engine.PlanAssignment{
		{ID: "assign-tr-001", UserID: "rep-frank", PlanID: sdrPlan.ID,
			StartDate: engine.NewDate(year, time.January, 1), EndDate: &sdrEnd, Active: true},
		{ID: "assign-tr-002", UserID: "rep-frank", PlanID: aePlan.ID,
			StartDate: promotion, Active: true},
	}
	for _, a := range assignments {
		if err := h.Store.SaveAssignment(ctx, a); err != nil {
			return err
		}
	}

	// One deal on each side of the promotion: the June deal pays the
	// flat bonus, the August deal pays 5%.
	deals := []engine.Deal{
		{ID: "deal-tr-001", Name: "Cyberdyne intro", AccountName: "Cyberdyne", OwnerID: "rep-frank",
			Amount: engine.NewMoney(18000), Status: engine.DealClosedWon,
			CloseDate: engine.NewDate(year, time.June, 12)},
		{ID: "deal-tr-002", Name: "Tyrell expansion", AccountName: "Tyrell", OwnerID: "rep-frank",
			Amount: engine.NewMoney(22000), Status: engine.DealClosedWon,
			CloseDate: engine.NewDate(year, time.August, 5)},
	}
	if err := h.saveDeals(ctx, deals); err != nil {
		return err
	}

	return h.runBatch(ctx, deals)
}

// =============================================================================
// LOADER HELPERS
// =============================================================================

func (h *Handler) saveDeals(ctx context.Context, deals []engine.Deal) error {
	for _, d := range deals {
		if err := h.Store.SaveDeal(ctx, d); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) runBatch(ctx context.Context, deals []engine.Deal) error {
	result, err := h.Batch.Run(ctx, deals)
	if err != nil {
		return err
	}
	if len(result.Failed) > 0 {
		return fmt.Errorf("scenario batch run failed for deal %s: %s",
			result.Failed[0].DealID, result.Failed[0].Reason)
	}
	return nil
}
