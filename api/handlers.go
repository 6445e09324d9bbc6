/*
handlers.go - HTTP API handlers for the commission engine

PURPOSE:
  Exposes the commission engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Plans:
    GET    /api/plans                   List all plans
    POST   /api/plans                   Create plan from JSON
    GET    /api/plans/{id}              Get plan details

  Users:
    GET    /api/users/{id}/assignments  Plan assignments
    GET    /api/users/{id}/quotas       Quotas
    GET    /api/users/{id}/summary      Commission summary
    GET    /api/users/{id}/projection   Commission projection
    GET    /api/users/{id}/payouts      Payout history

  Deals:
    GET    /api/deals                   List deals (owner/status filters)
    POST   /api/deals                   Record a deal
    GET    /api/deals/{id}              Get deal details

  Commissions:
    GET    /api/commissions             List commissions (filters)
    GET    /api/commissions/{id}        Get commission details
    POST   /api/commissions/{id}/status Transition status
    POST   /api/commissions/calculate   Run batch calculation

  Analytics:
    GET    /api/analytics/summary         Overall summary
    GET    /api/analytics/monthly         Per-month aggregates
    GET    /api/analytics/top-performers  Ranked commission totals
    GET    /api/analytics/trends          Growth trends

  Admin:
    POST   /api/admin/assignments       Assign a plan to a user
    POST   /api/admin/quotas            Set a quota
    POST   /api/admin/payouts           Build a payout batch

  Scenarios:
    GET    /api/scenarios               List demo scenarios
    POST   /api/scenarios/load          Load a demo scenario

ARCHITECTURE:
  Handler struct holds all dependencies behind the Store interface so
  the in-memory store drops in for tests:
  - Store: Database access
  - Calc + Batch: The calculation engine and its batch pipeline
  - Analytics: Read-side reporting engine
  - PlanFactory: JSON to plan conversion

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 409: Conflict (duplicate commission)
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/warp/commission-engine/analytics"
	"github.com/warp/commission-engine/engine"
	"github.com/warp/commission-engine/factory"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Store is the full persistence surface the API needs. Both the SQLite
// store and the in-memory store satisfy it.
type Store interface {
	engine.PlanStore
	engine.AssignmentStore
	engine.DealStore
	engine.QuotaStore
	engine.CommissionStore
	engine.PayoutStore

	// Reset clears all data. Used by scenario loading only.
	Reset(ctx context.Context) error
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store       Store
	Calc        *engine.Engine
	Batch       *engine.BatchCalculator
	Analytics   *analytics.Engine
	PlanFactory *factory.PlanFactory

	// Track currently loaded scenario
	currentScenario string
}

// NewHandler wires a handler over the store. The calculation engine,
// batch calculator, and analytics engine are built on the same store.
func NewHandler(store Store) *Handler {
	calc := engine.New(store, store, engine.DefaultConfig())
	return &Handler{
		Store:       store,
		Calc:        calc,
		Batch:       engine.NewBatchCalculator(calc, store, store),
		Analytics:   analytics.New(store),
		PlanFactory: factory.NewPlanFactory(),
	}
}

// =============================================================================
// PLAN HANDLERS
// =============================================================================

// ListPlans returns all plans.
func (h *Handler) ListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.Store.ListPlans(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list plans", err)
		return
	}

	dtos := make([]PlanDTO, len(plans))
	for i, p := range plans {
		dtos[i] = PlanDTO{Plan: h.PlanFactory.ToJSON(p)}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetPlan returns a single plan.
func (h *Handler) GetPlan(w http.ResponseWriter, r *http.Request) {
	id := engine.PlanID(chi.URLParam(r, "id"))

	plan, err := h.Store.GetPlan(r.Context(), id)
	if errors.Is(err, engine.ErrPlanNotFound) {
		writeError(w, http.StatusNotFound, "Plan not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get plan", err)
		return
	}

	writeJSON(w, http.StatusOK, PlanDTO{Plan: h.PlanFactory.ToJSON(plan)})
}

// CreatePlan creates a plan from its JSON definition.
func (h *Handler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	var req CreatePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	plan, err := h.PlanFactory.FromJSON(req.Plan)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid plan definition", err)
		return
	}

	if err := h.Store.SavePlan(r.Context(), plan); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save plan", err)
		return
	}

	writeJSON(w, http.StatusCreated, PlanDTO{Plan: h.PlanFactory.ToJSON(plan)})
}

// =============================================================================
// ASSIGNMENT HANDLERS
// =============================================================================

// GetAssignments returns all plan assignments for a user.
func (h *Handler) GetAssignments(w http.ResponseWriter, r *http.Request) {
	user := engine.UserID(chi.URLParam(r, "id"))

	assignments, err := h.Store.AssignmentsForUser(r.Context(), user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get assignments", err)
		return
	}

	dtos := make([]AssignmentDTO, len(assignments))
	for i, a := range assignments {
		dtos[i] = toAssignmentDTO(a)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateAssignment assigns a plan to a user.
func (h *Handler) CreateAssignment(w http.ResponseWriter, r *http.Request) {
	var req CreateAssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	startDate, err := engine.ParseDate(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_date format (use YYYY-MM-DD)", err)
		return
	}

	assignment := engine.PlanAssignment{
		ID:        engine.AssignmentID(req.ID),
		UserID:    engine.UserID(req.UserID),
		PlanID:    engine.PlanID(req.PlanID),
		StartDate: startDate,
		Active:    true,
	}
	if req.EndDate != nil {
		endDate, err := engine.ParseDate(*req.EndDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid end_date format (use YYYY-MM-DD)", err)
			return
		}
		assignment.EndDate = &endDate
	}
	if req.Active != nil {
		assignment.Active = *req.Active
	}

	// The plan must exist; assignments to unknown plans would silently
	// resolve to the empty plan at calculation time.
	if _, err := h.Store.GetPlan(r.Context(), assignment.PlanID); err != nil {
		if errors.Is(err, engine.ErrPlanNotFound) {
			writeError(w, http.StatusBadRequest, "Unknown plan: "+req.PlanID, nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to look up plan", err)
		return
	}

	if err := h.Store.SaveAssignment(r.Context(), assignment); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save assignment", err)
		return
	}

	writeJSON(w, http.StatusCreated, toAssignmentDTO(assignment))
}

// =============================================================================
// DEAL HANDLERS
// =============================================================================

// ListDeals returns deals, optionally filtered by owner and status.
func (h *Handler) ListDeals(w http.ResponseWriter, r *http.Request) {
	var filter engine.DealFilter
	if owner := r.URL.Query().Get("owner_id"); owner != "" {
		id := engine.UserID(owner)
		filter.OwnerID = &id
	}
	if status := r.URL.Query().Get("status"); status != "" {
		s := engine.DealStatus(status)
		filter.Status = &s
	}

	deals, err := h.Store.ListDeals(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list deals", err)
		return
	}
	writeJSON(w, http.StatusOK, toDealDTOs(deals))
}

// GetDeal returns a single deal.
func (h *Handler) GetDeal(w http.ResponseWriter, r *http.Request) {
	id := engine.DealID(chi.URLParam(r, "id"))

	deal, err := h.Store.GetDeal(r.Context(), id)
	if errors.Is(err, engine.ErrDealNotFound) {
		writeError(w, http.StatusNotFound, "Deal not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get deal", err)
		return
	}
	writeJSON(w, http.StatusOK, toDealDTO(deal))
}

// CreateDeal records a deal.
func (h *Handler) CreateDeal(w http.ResponseWriter, r *http.Request) {
	var req CreateDealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	closeDate, err := engine.ParseDate(req.CloseDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid close_date format (use YYYY-MM-DD)", err)
		return
	}

	deal := engine.Deal{
		ID:          engine.DealID(req.ID),
		Name:        req.Name,
		AccountName: req.AccountName,
		OwnerID:     engine.UserID(req.OwnerID),
		Amount:      engine.MustParseMoney(req.Amount),
		Status:      engine.DealStatus(req.Status),
		CloseDate:   closeDate,
	}

	if err := h.Store.SaveDeal(r.Context(), deal); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save deal", err)
		return
	}
	writeJSON(w, http.StatusCreated, toDealDTO(deal))
}

// =============================================================================
// QUOTA HANDLERS
// =============================================================================

// GetQuotas returns all quotas for a user.
func (h *Handler) GetQuotas(w http.ResponseWriter, r *http.Request) {
	user := engine.UserID(chi.URLParam(r, "id"))

	quotas, err := h.Store.QuotasForUser(r.Context(), user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get quotas", err)
		return
	}

	dtos := make([]QuotaDTO, len(quotas))
	for i, q := range quotas {
		dtos[i] = toQuotaDTO(q)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateQuota sets a quota for a user and period.
func (h *Handler) CreateQuota(w http.ResponseWriter, r *http.Request) {
	var req CreateQuotaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	start, err := engine.ParseDate(req.PeriodStart)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period_start format (use YYYY-MM-DD)", err)
		return
	}
	end, err := engine.ParseDate(req.PeriodEnd)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period_end format (use YYYY-MM-DD)", err)
		return
	}

	quota := engine.Quota{
		ID:     engine.QuotaID(req.ID),
		UserID: engine.UserID(req.UserID),
		Amount: engine.MustParseMoney(req.Amount),
		Period: engine.Period{Start: start, End: end},
	}
	if !quota.Period.IsValid() {
		writeError(w, http.StatusBadRequest, "Invalid quota period", nil)
		return
	}

	if err := h.Store.SaveQuota(r.Context(), quota); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save quota", err)
		return
	}
	writeJSON(w, http.StatusCreated, toQuotaDTO(quota))
}

// =============================================================================
// COMMISSION HANDLERS
// =============================================================================

// ListCommissions returns commissions, optionally filtered.
func (h *Handler) ListCommissions(w http.ResponseWriter, r *http.Request) {
	filter, err := commissionFilterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid filter", err)
		return
	}

	commissions, err := h.Store.ListCommissions(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list commissions", err)
		return
	}
	writeJSON(w, http.StatusOK, toCommissionDTOs(commissions))
}

// GetCommission returns a single commission record.
func (h *Handler) GetCommission(w http.ResponseWriter, r *http.Request) {
	id := engine.CommissionID(chi.URLParam(r, "id"))

	c, err := h.Store.GetCommission(r.Context(), id)
	if errors.Is(err, engine.ErrCommissionNotFound) {
		writeError(w, http.StatusNotFound, "Commission not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get commission", err)
		return
	}
	writeJSON(w, http.StatusOK, toCommissionDTO(c))
}

// UpdateCommissionStatus transitions a commission's status.
func (h *Handler) UpdateCommissionStatus(w http.ResponseWriter, r *http.Request) {
	id := engine.CommissionID(chi.URLParam(r, "id"))

	var req UpdateCommissionStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	status := engine.CommissionStatus(req.Status)
	switch status {
	case engine.CommissionPending, engine.CommissionCalculated,
		engine.CommissionPaid, engine.CommissionDisputed:
	default:
		writeError(w, http.StatusBadRequest, "Unknown status: "+req.Status, nil)
		return
	}

	var paymentDate *engine.Date
	if req.PaymentDate != nil {
		d, err := engine.ParseDate(*req.PaymentDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid payment_date format (use YYYY-MM-DD)", err)
			return
		}
		paymentDate = &d
	}

	err := h.Store.UpdateCommissionStatus(r.Context(), id, status, paymentDate)
	if errors.Is(err, engine.ErrCommissionNotFound) {
		writeError(w, http.StatusNotFound, "Commission not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update commission", err)
		return
	}

	c, err := h.Store.GetCommission(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reload commission", err)
		return
	}
	writeJSON(w, http.StatusOK, toCommissionDTO(c))
}

// Calculate runs the batch calculator over closed-won deals.
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req CalculateRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}

	filter := engine.DealFilter{}
	if req.OwnerID != "" {
		id := engine.UserID(req.OwnerID)
		filter.OwnerID = &id
	}

	deals, err := h.Store.ListDeals(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list deals", err)
		return
	}

	result, err := h.Batch.Run(r.Context(), deals)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Batch run aborted", err)
		return
	}
	writeJSON(w, http.StatusOK, toBatchResultDTO(result))
}

// =============================================================================
// ANALYTICS HANDLERS
// =============================================================================

// GetUserSummary returns the commission summary for one user.
func (h *Handler) GetUserSummary(w http.ResponseWriter, r *http.Request) {
	user := engine.UserID(chi.URLParam(r, "id"))

	filter, err := analyticsFilterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid filter", err)
		return
	}
	filter.UserID = &user

	summary, err := h.Analytics.Summarize(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to summarize", err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryDTO(summary))
}

// GetSummary returns the overall commission summary.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	filter, err := analyticsFilterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid filter", err)
		return
	}

	summary, err := h.Analytics.Summarize(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to summarize", err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryDTO(summary))
}

// GetMonthlyReport returns per-month aggregates.
func (h *Handler) GetMonthlyReport(w http.ResponseWriter, r *http.Request) {
	filter, err := analyticsFilterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid filter", err)
		return
	}

	stats, err := h.Analytics.MonthlyReport(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to build monthly report", err)
		return
	}

	dtos := make([]MonthlyStatDTO, len(stats))
	for i, s := range stats {
		dtos[i] = MonthlyStatDTO{
			Month:           s.Month,
			CommissionTotal: s.CommissionTotal.String(),
			Count:           s.Count,
			CommissionMean:  s.CommissionMean.String(),
			DealTotal:       s.DealTotal.String(),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetTopPerformers returns ranked commission totals.
func (h *Handler) GetTopPerformers(w http.ResponseWriter, r *http.Request) {
	filter, err := analyticsFilterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid filter", err)
		return
	}

	byMonth := r.URL.Query().Get("by_month") == "true"
	limit := 10
	if l := r.URL.Query().Get("limit"); l != "" {
		limit, err = strconv.Atoi(l)
		if err != nil || limit < 1 {
			writeError(w, http.StatusBadRequest, "Invalid limit", err)
			return
		}
	}

	performers, err := h.Analytics.TopPerformers(r.Context(), filter, byMonth, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to rank performers", err)
		return
	}

	dtos := make([]PerformerStatDTO, len(performers))
	for i, p := range performers {
		dtos[i] = PerformerStatDTO{
			UserID:          string(p.UserID),
			Month:           p.Month,
			CommissionTotal: p.CommissionTotal.String(),
			DealTotal:       p.DealTotal.String(),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetTrends returns the trend report.
func (h *Handler) GetTrends(w http.ResponseWriter, r *http.Request) {
	filter, err := analyticsFilterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid filter", err)
		return
	}

	trends, err := h.Analytics.Trends(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute trends", err)
		return
	}
	writeJSON(w, http.StatusOK, toTrendReportDTO(trends))
}

// GetProjection returns the commission projection for a user.
func (h *Handler) GetProjection(w http.ResponseWriter, r *http.Request) {
	user := engine.UserID(chi.URLParam(r, "id"))

	asOf := engine.Today()
	if q := r.URL.Query().Get("as_of"); q != "" {
		var err error
		asOf, err = engine.ParseDate(q)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid as_of format (use YYYY-MM-DD)", err)
			return
		}
	}

	months := 3
	if q := r.URL.Query().Get("months"); q != "" {
		var err error
		months, err = strconv.Atoi(q)
		if err != nil || months < 1 {
			writeError(w, http.StatusBadRequest, "Invalid months", err)
			return
		}
	}

	projection, err := h.Analytics.Project(r.Context(), user, asOf, months)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to project", err)
		return
	}
	writeJSON(w, http.StatusOK, toProjectionDTO(projection))
}

// =============================================================================
// PAYOUT HANDLERS
// =============================================================================

// BuildPayout assembles a draft payout for a user and period.
func (h *Handler) BuildPayout(w http.ResponseWriter, r *http.Request) {
	var req BuildPayoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	start, err := engine.ParseDate(req.PeriodStart)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period_start format (use YYYY-MM-DD)", err)
		return
	}
	end, err := engine.ParseDate(req.PeriodEnd)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period_end format (use YYYY-MM-DD)", err)
		return
	}

	builder := &engine.PayoutBuilder{Commissions: h.Store}
	payout, err := builder.Build(r.Context(), engine.UserID(req.UserID),
		engine.Period{Start: start, End: end})
	if errors.Is(err, engine.ErrInvalidPeriod) {
		writeError(w, http.StatusBadRequest, "Invalid payout period", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to build payout", err)
		return
	}

	if err := h.Store.SavePayout(r.Context(), *payout); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save payout", err)
		return
	}
	writeJSON(w, http.StatusCreated, toPayoutDTO(*payout))
}

// ListPayouts returns all payouts for a user.
func (h *Handler) ListPayouts(w http.ResponseWriter, r *http.Request) {
	user := engine.UserID(chi.URLParam(r, "id"))

	payouts, err := h.Store.ListPayouts(r.Context(), user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list payouts", err)
		return
	}

	dtos := make([]PayoutDTO, len(payouts))
	for i, p := range payouts {
		dtos[i] = toPayoutDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// QUERY PARSING / RESPONSE HELPERS
// =============================================================================

func commissionFilterFromQuery(r *http.Request) (engine.CommissionFilter, error) {
	var filter engine.CommissionFilter
	if user := r.URL.Query().Get("user_id"); user != "" {
		id := engine.UserID(user)
		filter.UserID = &id
	}
	if status := r.URL.Query().Get("status"); status != "" {
		s := engine.CommissionStatus(status)
		filter.Status = &s
	}
	if from := r.URL.Query().Get("from"); from != "" {
		d, err := engine.ParseDate(from)
		if err != nil {
			return filter, err
		}
		filter.From = &d
	}
	if to := r.URL.Query().Get("to"); to != "" {
		d, err := engine.ParseDate(to)
		if err != nil {
			return filter, err
		}
		filter.To = &d
	}
	return filter, nil
}

func analyticsFilterFromQuery(r *http.Request) (analytics.Filter, error) {
	var filter analytics.Filter
	if user := r.URL.Query().Get("user_id"); user != "" {
		id := engine.UserID(user)
		filter.UserID = &id
	}
	if from := r.URL.Query().Get("from"); from != "" {
		d, err := engine.ParseDate(from)
		if err != nil {
			return filter, err
		}
		filter.From = &d
	}
	if to := r.URL.Query().Get("to"); to != "" {
		d, err := engine.ParseDate(to)
		if err != nil {
			return filter, err
		}
		filter.To = &d
	}
	return filter, nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
