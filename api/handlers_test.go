/*
handlers_test.go - Unit tests for API handlers

Tests cover:
- Plan CRUD and validation errors
- Assignment creation against unknown plans
- Deal recording and the calculate endpoint (including idempotent reruns)
- Commission status transitions
- Payout building
- Analytics endpoints over scenario data
- Scenario list/load/current endpoints

All tests run against the real chi router with the in-memory store.
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/warp/commission-engine/engine"
	"github.com/warp/commission-engine/engine/store"
	"github.com/warp/commission-engine/factory"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func setupTestServer(t *testing.T) (*Handler, http.Handler) {
	t.Helper()
	h := NewHandler(store.NewMemory())
	return h, NewRouter(h)
}

func doRequest(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == nil {
		req = httptest.NewRequest(method, path, nil)
	} else {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode request body: %v", err)
		}
		req = httptest.NewRequest(method, path, &buf)
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, into any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(into); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
}

func percentagePlanJSON(id string, rate float64) factory.PlanJSON {
	return factory.PlanJSON{
		ID:       id,
		Name:     "Test " + id,
		Type:     "percentage",
		BaseRate: rate,
	}
}

// createPlanAndAssignment sets up a rep on a percentage plan through the API.
func createPlanAndAssignment(t *testing.T, router http.Handler, planID string, rate float64, user string) {
	t.Helper()

	rec := doRequest(t, router, "POST", "/api/plans",
		CreatePlanRequest{Plan: percentagePlanJSON(planID, rate)})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201 creating plan, got %d: %s", rec.Code, rec.Body)
	}

	rec = doRequest(t, router, "POST", "/api/admin/assignments", CreateAssignmentRequest{
		ID:        "assign-" + user,
		UserID:    user,
		PlanID:    planID,
		StartDate: "2025-01-01",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201 creating assignment, got %d: %s", rec.Code, rec.Body)
	}
}

// =============================================================================
// PLAN ENDPOINT TESTS
// =============================================================================

func TestAPI_CreateAndGetPlan(t *testing.T) {
	// GIVEN: A fresh server
	_, router := setupTestServer(t)

	// WHEN: Creating a percentage plan
	rec := doRequest(t, router, "POST", "/api/plans",
		CreatePlanRequest{Plan: percentagePlanJSON("plan-1", 5)})

	// THEN: It is created and retrievable
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body)
	}

	rec = doRequest(t, router, "GET", "/api/plans/plan-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var dto PlanDTO
	decodeJSON(t, rec, &dto)
	if dto.Plan.Type != "percentage" {
		t.Errorf("Expected type 'percentage', got '%s'", dto.Plan.Type)
	}
	if dto.Plan.BaseRate != 5 {
		t.Errorf("Expected base rate 5, got %v", dto.Plan.BaseRate)
	}

	rec = doRequest(t, router, "GET", "/api/plans", nil)
	var list []PlanDTO
	decodeJSON(t, rec, &list)
	if len(list) != 1 {
		t.Errorf("Expected 1 plan, got %d", len(list))
	}
}

func TestAPI_GetPlan_NotFound(t *testing.T) {
	_, router := setupTestServer(t)

	rec := doRequest(t, router, "GET", "/api/plans/ghost", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown plan, got %d", rec.Code)
	}
}

func TestAPI_CreatePlan_InvalidType(t *testing.T) {
	_, router := setupTestServer(t)

	rec := doRequest(t, router, "POST", "/api/plans", CreatePlanRequest{
		Plan: factory.PlanJSON{ID: "bad", Name: "Bad", Type: "lottery", BaseRate: 5},
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown plan type, got %d", rec.Code)
	}
}

// =============================================================================
// ASSIGNMENT ENDPOINT TESTS
// =============================================================================

func TestAPI_CreateAssignment_UnknownPlan(t *testing.T) {
	// GIVEN: A server with no plans
	_, router := setupTestServer(t)

	// WHEN: Assigning a plan that does not exist
	rec := doRequest(t, router, "POST", "/api/admin/assignments", CreateAssignmentRequest{
		ID:        "assign-1",
		UserID:    "rep-1",
		PlanID:    "nope",
		StartDate: "2025-01-01",
	})

	// THEN: The request is rejected
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for unknown plan, got %d", rec.Code)
	}
	var errResp ErrorResponse
	decodeJSON(t, rec, &errResp)
	if !strings.Contains(errResp.Error, "Unknown plan") {
		t.Errorf("Expected 'Unknown plan' error, got '%s'", errResp.Error)
	}
}

func TestAPI_CreateAssignment_ListedForUser(t *testing.T) {
	_, router := setupTestServer(t)

	createPlanAndAssignment(t, router, "plan-1", 5, "rep-1")

	rec := doRequest(t, router, "GET", "/api/users/rep-1/assignments", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var assignments []AssignmentDTO
	decodeJSON(t, rec, &assignments)
	if len(assignments) != 1 {
		t.Fatalf("Expected 1 assignment, got %d", len(assignments))
	}
	if assignments[0].PlanID != "plan-1" {
		t.Errorf("Expected plan 'plan-1', got '%s'", assignments[0].PlanID)
	}
	if !assignments[0].Active {
		t.Error("Assignment should default to active")
	}
}

// =============================================================================
// DEAL + CALCULATE FLOW TESTS
// =============================================================================

func TestAPI_DealAndCalculateFlow(t *testing.T) {
	// GIVEN: A rep on a 5% plan with one closed-won deal
	_, router := setupTestServer(t)
	createPlanAndAssignment(t, router, "plan-1", 5, "rep-1")

	rec := doRequest(t, router, "POST", "/api/deals", CreateDealRequest{
		ID:        "deal-100",
		Name:      "Big deal",
		OwnerID:   "rep-1",
		Amount:    "10000",
		Status:    "closed_won",
		CloseDate: "2025-03-10",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201 creating deal, got %d: %s", rec.Code, rec.Body)
	}

	// WHEN: Running the calculation
	rec = doRequest(t, router, "POST", "/api/commissions/calculate", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body)
	}

	// THEN: One commission at 5% of 10000
	var result BatchResultDTO
	decodeJSON(t, rec, &result)
	if len(result.Processed) != 1 {
		t.Fatalf("Expected 1 processed deal, got %d", len(result.Processed))
	}
	if result.Processed[0].CommissionAmount != "500" {
		t.Errorf("Expected commission 500, got %s", result.Processed[0].CommissionAmount)
	}
	if result.Processed[0].Status != "calculated" {
		t.Errorf("Expected status 'calculated', got '%s'", result.Processed[0].Status)
	}

	// AND: A rerun skips the already-processed deal instead of double paying
	rec = doRequest(t, router, "POST", "/api/commissions/calculate", nil)
	decodeJSON(t, rec, &result)
	if len(result.Processed) != 0 {
		t.Errorf("Expected 0 processed on rerun, got %d", len(result.Processed))
	}
	if len(result.Skipped) != 1 || result.Skipped[0].Reason != string(engine.SkipAlreadyProcessed) {
		t.Errorf("Expected 1 already-processed skip, got %+v", result.Skipped)
	}

	rec = doRequest(t, router, "GET", "/api/commissions?user_id=rep-1", nil)
	var commissions []CommissionDTO
	decodeJSON(t, rec, &commissions)
	if len(commissions) != 1 {
		t.Errorf("Expected 1 commission, got %d", len(commissions))
	}
}

func TestAPI_Calculate_ScopedToOwner(t *testing.T) {
	// GIVEN: Two reps with deals
	_, router := setupTestServer(t)
	createPlanAndAssignment(t, router, "plan-1", 5, "rep-1")

	rec := doRequest(t, router, "POST", "/api/admin/assignments", CreateAssignmentRequest{
		ID: "assign-rep-2", UserID: "rep-2", PlanID: "plan-1", StartDate: "2025-01-01",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", rec.Code)
	}

	for i, owner := range []string{"rep-1", "rep-2"} {
		rec = doRequest(t, router, "POST", "/api/deals", CreateDealRequest{
			ID: fmt.Sprintf("deal-%d", i), Name: "Deal", OwnerID: owner,
			Amount: "10000", Status: "closed_won", CloseDate: "2025-03-10",
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("Expected 201 creating deal, got %d", rec.Code)
		}
	}

	// WHEN: Calculating only rep-1's deals
	rec = doRequest(t, router, "POST", "/api/commissions/calculate",
		CalculateRequest{OwnerID: "rep-1"})

	// THEN: Only rep-1's deal is processed
	var result BatchResultDTO
	decodeJSON(t, rec, &result)
	if len(result.Processed) != 1 {
		t.Fatalf("Expected 1 processed deal, got %d", len(result.Processed))
	}
	if result.Processed[0].UserID != "rep-1" {
		t.Errorf("Expected commission for rep-1, got '%s'", result.Processed[0].UserID)
	}
}

// =============================================================================
// COMMISSION STATUS TESTS
// =============================================================================

func TestAPI_UpdateCommissionStatus(t *testing.T) {
	// GIVEN: A calculated commission
	_, router := setupTestServer(t)
	createPlanAndAssignment(t, router, "plan-1", 5, "rep-1")
	doRequest(t, router, "POST", "/api/deals", CreateDealRequest{
		ID: "deal-100", Name: "Deal", OwnerID: "rep-1",
		Amount: "10000", Status: "closed_won", CloseDate: "2025-03-10",
	})
	doRequest(t, router, "POST", "/api/commissions/calculate", nil)

	// WHEN: Marking it paid
	payDate := "2025-04-15"
	rec := doRequest(t, router, "POST", "/api/commissions/com-deal-100/status",
		UpdateCommissionStatusRequest{Status: "paid", PaymentDate: &payDate})

	// THEN: The reloaded record carries the new status and payment date
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var dto CommissionDTO
	decodeJSON(t, rec, &dto)
	if dto.Status != "paid" {
		t.Errorf("Expected status 'paid', got '%s'", dto.Status)
	}
	if dto.PaymentDate == nil || *dto.PaymentDate != "2025-04-15" {
		t.Errorf("Expected payment date 2025-04-15, got %v", dto.PaymentDate)
	}
}

func TestAPI_UpdateCommissionStatus_Unknown(t *testing.T) {
	_, router := setupTestServer(t)

	rec := doRequest(t, router, "POST", "/api/commissions/com-x/status",
		UpdateCommissionStatusRequest{Status: "approved"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown status, got %d", rec.Code)
	}

	rec = doRequest(t, router, "POST", "/api/commissions/com-x/status",
		UpdateCommissionStatusRequest{Status: "paid"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for missing commission, got %d", rec.Code)
	}
}

// =============================================================================
// PAYOUT TESTS
// =============================================================================

func TestAPI_BuildPayout(t *testing.T) {
	// GIVEN: Two calculated commissions in March
	h, router := setupTestServer(t)
	ctx := context.Background()

	for i, amount := range []string{"600", "400"} {
		c := engine.Commission{
			ID:               engine.CommissionID(fmt.Sprintf("com-%d", i)),
			UserID:           "rep-1",
			DealID:           engine.DealID(fmt.Sprintf("deal-%d", i)),
			PlanID:           "plan-1",
			CommissionAmount: engine.MustParseMoney(amount),
			CommissionRate:   engine.NewMoney(5).Value,
			DealAmount:       engine.NewMoney(10000),
			Status:           engine.CommissionCalculated,
			CalculationDate:  engine.NewDate(2025, 3, 10+i),
		}
		if err := h.Store.SaveCommission(ctx, c); err != nil {
			t.Fatalf("Failed to seed commission: %v", err)
		}
	}

	// WHEN: Building a payout for March
	rec := doRequest(t, router, "POST", "/api/admin/payouts", BuildPayoutRequest{
		UserID:      "rep-1",
		PeriodStart: "2025-03-01",
		PeriodEnd:   "2025-03-31",
	})

	// THEN: The draft payout sums both commissions
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body)
	}
	var payout PayoutDTO
	decodeJSON(t, rec, &payout)
	if payout.TotalAmount != "1000" {
		t.Errorf("Expected total 1000, got %s", payout.TotalAmount)
	}
	if len(payout.CommissionIDs) != 2 {
		t.Errorf("Expected 2 commissions in payout, got %d", len(payout.CommissionIDs))
	}
	if payout.Status != "draft" {
		t.Errorf("Expected status 'draft', got '%s'", payout.Status)
	}

	rec = doRequest(t, router, "GET", "/api/users/rep-1/payouts", nil)
	var payouts []PayoutDTO
	decodeJSON(t, rec, &payouts)
	if len(payouts) != 1 {
		t.Errorf("Expected 1 payout, got %d", len(payouts))
	}
}

func TestAPI_BuildPayout_InvalidPeriod(t *testing.T) {
	_, router := setupTestServer(t)

	rec := doRequest(t, router, "POST", "/api/admin/payouts", BuildPayoutRequest{
		UserID:      "rep-1",
		PeriodStart: "2025-03-31",
		PeriodEnd:   "2025-03-01",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for inverted period, got %d", rec.Code)
	}
}

// =============================================================================
// QUOTA TESTS
// =============================================================================

func TestAPI_CreateQuota_InvalidPeriod(t *testing.T) {
	_, router := setupTestServer(t)

	rec := doRequest(t, router, "POST", "/api/admin/quotas", CreateQuotaRequest{
		ID:          "quota-1",
		UserID:      "rep-1",
		Amount:      "100000",
		PeriodStart: "2025-06-30",
		PeriodEnd:   "2025-04-01",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for inverted quota period, got %d", rec.Code)
	}
}

// =============================================================================
// ANALYTICS ENDPOINT TESTS
// =============================================================================

func TestAPI_AnalyticsSummary(t *testing.T) {
	// GIVEN: The quota-accelerator scenario (three accelerated commissions)
	h, router := setupTestServer(t)
	if err := h.loadQuotaAcceleratorScenario(context.Background()); err != nil {
		t.Fatalf("Failed to load scenario: %v", err)
	}

	// WHEN: Fetching the overall summary
	rec := doRequest(t, router, "GET", "/api/analytics/summary", nil)

	// THEN: Totals reflect the three commissions (1600 + 2000 + 2400)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var summary SummaryDTO
	decodeJSON(t, rec, &summary)
	if summary.Total != "6000" {
		t.Errorf("Expected total 6000, got %s", summary.Total)
	}
	if summary.Count != 3 {
		t.Errorf("Expected 3 commissions, got %d", summary.Count)
	}
	if summary.Average != "2000" {
		t.Errorf("Expected average 2000, got %s", summary.Average)
	}

	// The per-user view matches, since all commissions belong to rep-eve
	rec = doRequest(t, router, "GET", "/api/users/rep-eve/summary", nil)
	decodeJSON(t, rec, &summary)
	if summary.Total != "6000" {
		t.Errorf("Expected user total 6000, got %s", summary.Total)
	}
}

func TestAPI_TopPerformers_InvalidLimit(t *testing.T) {
	_, router := setupTestServer(t)

	rec := doRequest(t, router, "GET", "/api/analytics/top-performers?limit=0", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for limit 0, got %d", rec.Code)
	}
}

func TestAPI_Summary_InvalidDateFilter(t *testing.T) {
	_, router := setupTestServer(t)

	rec := doRequest(t, router, "GET", "/api/analytics/summary?from=March+1st", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for malformed date, got %d", rec.Code)
	}
}

// =============================================================================
// SCENARIO ENDPOINT TESTS
// =============================================================================

func TestAPI_ScenarioEndpoints(t *testing.T) {
	// GIVEN: A fresh server
	_, router := setupTestServer(t)

	// Scenario catalog is available
	rec := doRequest(t, router, "GET", "/api/scenarios", nil)
	var list []ScenarioDTO
	decodeJSON(t, rec, &list)
	if len(list) != 4 {
		t.Errorf("Expected 4 scenarios, got %d", len(list))
	}

	// No scenario loaded yet
	rec = doRequest(t, router, "GET", "/api/scenarios/current", nil)
	if body := strings.TrimSpace(rec.Body.String()); body != "null" {
		t.Errorf("Expected null current scenario, got %s", body)
	}

	// WHEN: Loading a scenario
	rec = doRequest(t, router, "POST", "/api/scenarios/load",
		map[string]string{"scenario_id": "standard-team"})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 loading scenario, got %d: %s", rec.Code, rec.Body)
	}

	// THEN: It becomes the current scenario and its data is queryable
	rec = doRequest(t, router, "GET", "/api/scenarios/current", nil)
	var current ScenarioDTO
	decodeJSON(t, rec, &current)
	if current.ID != "standard-team" {
		t.Errorf("Expected current scenario 'standard-team', got '%s'", current.ID)
	}

	rec = doRequest(t, router, "GET", "/api/deals", nil)
	var deals []DealDTO
	decodeJSON(t, rec, &deals)
	if len(deals) != 5 {
		t.Errorf("Expected 5 deals from standard-team, got %d", len(deals))
	}
}

func TestAPI_LoadScenario_Unknown(t *testing.T) {
	_, router := setupTestServer(t)

	rec := doRequest(t, router, "POST", "/api/scenarios/load",
		map[string]string{"scenario_id": "nope"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown scenario, got %d", rec.Code)
	}
}

// =============================================================================
// HEALTH CHECK
// =============================================================================

func TestAPI_Healthz(t *testing.T) {
	_, router := setupTestServer(t)

	rec := doRequest(t, router, "GET", "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "ok" {
		t.Errorf("Expected body 'ok', got '%s'", rec.Body.String())
	}
}
