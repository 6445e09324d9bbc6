/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY ENCODING:
  Monetary amounts cross the wire as decimal strings ("1234.50"), never
  JSON numbers. Clients that parse them into binary floats do so at
  their own risk; the engine's precision survives the round trip.

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/plan.go: PlanJSON type
*/
package api

import (
	"github.com/warp/commission-engine/analytics"
	"github.com/warp/commission-engine/engine"
	"github.com/warp/commission-engine/factory"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// PlanDTO represents a compensation plan in API responses.
type PlanDTO struct {
	Plan factory.PlanJSON `json:"plan"`
}

// CreatePlanRequest is the request to create a plan.
type CreatePlanRequest struct {
	Plan factory.PlanJSON `json:"plan"`
}

// AssignmentDTO represents a plan assignment.
type AssignmentDTO struct {
	ID        string  `json:"id"`
	UserID    string  `json:"user_id"`
	PlanID    string  `json:"plan_id"`
	PlanName  string  `json:"plan_name,omitempty"`
	StartDate string  `json:"start_date"`
	EndDate   *string `json:"end_date,omitempty"`
	Active    bool    `json:"active"`
}

// CreateAssignmentRequest is the request to assign a plan to a user.
type CreateAssignmentRequest struct {
	ID        string  `json:"id"`
	UserID    string  `json:"user_id"`
	PlanID    string  `json:"plan_id"`
	StartDate string  `json:"start_date"`
	EndDate   *string `json:"end_date,omitempty"`
	Active    *bool   `json:"active,omitempty"` // Default true
}

// DealDTO represents a deal in API responses.
type DealDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	AccountName string `json:"account_name,omitempty"`
	OwnerID     string `json:"owner_id"`
	Amount      string `json:"amount"`
	Status      string `json:"status"`
	CloseDate   string `json:"close_date"`
}

// CreateDealRequest is the request to record a deal.
type CreateDealRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	AccountName string `json:"account_name,omitempty"`
	OwnerID     string `json:"owner_id"`
	Amount      string `json:"amount"`
	Status      string `json:"status"`
	CloseDate   string `json:"close_date"`
}

// QuotaDTO represents a quota.
type QuotaDTO struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	Amount      string `json:"amount"`
	PeriodStart string `json:"period_start"`
	PeriodEnd   string `json:"period_end"`
}

// CreateQuotaRequest is the request to set a quota.
type CreateQuotaRequest struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	Amount      string `json:"amount"`
	PeriodStart string `json:"period_start"`
	PeriodEnd   string `json:"period_end"`
}

// CommissionDTO represents a computed commission record.
type CommissionDTO struct {
	ID               string  `json:"id"`
	UserID           string  `json:"user_id"`
	DealID           string  `json:"deal_id"`
	PlanID           string  `json:"plan_id"`
	CommissionAmount string  `json:"commission_amount"`
	CommissionRate   string  `json:"commission_rate"`
	DealAmount       string  `json:"deal_amount"`
	Status           string  `json:"status"`
	CalculationDate  string  `json:"calculation_date"`
	PaymentDate      *string `json:"payment_date,omitempty"`
	Notes            string  `json:"notes,omitempty"`
}

// UpdateCommissionStatusRequest transitions a commission's status.
type UpdateCommissionStatusRequest struct {
	Status      string  `json:"status"`
	PaymentDate *string `json:"payment_date,omitempty"`
}

// CalculateRequest triggers a batch calculation run.
type CalculateRequest struct {
	// OwnerID limits the run to one rep's deals. Empty = all owners.
	OwnerID string `json:"owner_id,omitempty"`
}

// BatchResultDTO is the report of one batch run.
type BatchResultDTO struct {
	Processed []CommissionDTO  `json:"processed"`
	Skipped   []SkippedDealDTO `json:"skipped"`
	Failed    []FailedDealDTO  `json:"failed"`
}

// SkippedDealDTO is one deliberately excluded deal.
type SkippedDealDTO struct {
	DealID string `json:"deal_id"`
	Reason string `json:"reason"`
}

// FailedDealDTO is one isolated per-deal failure.
type FailedDealDTO struct {
	DealID string `json:"deal_id"`
	Reason string `json:"reason"`
}

// SummaryDTO is the headline commission figures.
type SummaryDTO struct {
	Total   string `json:"total"`
	Pending string `json:"pending"`
	Paid    string `json:"paid"`
	Count   int    `json:"count"`
	Average string `json:"average"`
}

// MonthlyStatDTO is one calendar month's aggregates.
type MonthlyStatDTO struct {
	Month           string `json:"month"`
	CommissionTotal string `json:"commission_total"`
	Count           int    `json:"count"`
	CommissionMean  string `json:"commission_mean"`
	DealTotal       string `json:"deal_total"`
}

// PerformerStatDTO is one user's ranked commission total.
type PerformerStatDTO struct {
	UserID          string `json:"user_id"`
	Month           string `json:"month,omitempty"`
	CommissionTotal string `json:"commission_total"`
	DealTotal       string `json:"deal_total"`
}

// MonthlyTrendDTO is one month's totals with growth rates.
type MonthlyTrendDTO struct {
	Month            string `json:"month"`
	CommissionTotal  string `json:"commission_total"`
	DealTotal        string `json:"deal_total"`
	CommissionGrowth string `json:"commission_growth"`
	DealGrowth       string `json:"deal_growth"`
}

// PlanShareDTO is one plan's slice of the commission total.
type PlanShareDTO struct {
	PlanID          string `json:"plan_id"`
	CommissionTotal string `json:"commission_total"`
}

// TrendReportDTO is the complete trend payload.
type TrendReportDTO struct {
	Monthly                  []MonthlyTrendDTO `json:"monthly"`
	PlanDistribution         []PlanShareDTO    `json:"plan_distribution"`
	AverageMonthlyCommission string            `json:"average_monthly_commission"`
	HighestMonth             string            `json:"highest_month,omitempty"`
	GrowthTrend              string            `json:"growth_trend"`
}

// ProjectionPointDTO is one projected future month.
type ProjectionPointDTO struct {
	Month               string `json:"month"`
	ProjectedCommission string `json:"projected_commission"`
	Confidence          string `json:"confidence"`
}

// ProjectionDTO is the complete projection payload.
type ProjectionDTO struct {
	HistoricalAverage string               `json:"historical_average"`
	Points            []ProjectionPointDTO `json:"points"`
	DataPoints        int                  `json:"data_points"`
}

// BuildPayoutRequest assembles a payout for a user and period.
type BuildPayoutRequest struct {
	UserID      string `json:"user_id"`
	PeriodStart string `json:"period_start"`
	PeriodEnd   string `json:"period_end"`
}

// PayoutDTO represents a payout batch.
type PayoutDTO struct {
	ID            string   `json:"id"`
	UserID        string   `json:"user_id"`
	PeriodStart   string   `json:"period_start"`
	PeriodEnd     string   `json:"period_end"`
	TotalAmount   string   `json:"total_amount"`
	CommissionIDs []string `json:"commission_ids"`
	Status        string   `json:"status"`
	ProcessedDate *string  `json:"processed_date,omitempty"`
	PaymentDate   *string  `json:"payment_date,omitempty"`
}

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toDealDTO(d engine.Deal) DealDTO {
	return DealDTO{
		ID:          string(d.ID),
		Name:        d.Name,
		AccountName: d.AccountName,
		OwnerID:     string(d.OwnerID),
		Amount:      d.Amount.String(),
		Status:      string(d.Status),
		CloseDate:   d.CloseDate.String(),
	}
}

func toDealDTOs(deals []engine.Deal) []DealDTO {
	dtos := make([]DealDTO, len(deals))
	for i, d := range deals {
		dtos[i] = toDealDTO(d)
	}
	return dtos
}

func toQuotaDTO(q engine.Quota) QuotaDTO {
	return QuotaDTO{
		ID:          string(q.ID),
		UserID:      string(q.UserID),
		Amount:      q.Amount.String(),
		PeriodStart: q.Period.Start.String(),
		PeriodEnd:   q.Period.End.String(),
	}
}

func toCommissionDTO(c engine.Commission) CommissionDTO {
	dto := CommissionDTO{
		ID:               string(c.ID),
		UserID:           string(c.UserID),
		DealID:           string(c.DealID),
		PlanID:           string(c.PlanID),
		CommissionAmount: c.CommissionAmount.String(),
		CommissionRate:   c.CommissionRate.String(),
		DealAmount:       c.DealAmount.String(),
		Status:           string(c.Status),
		CalculationDate:  c.CalculationDate.String(),
		Notes:            c.Notes,
	}
	if c.PaymentDate != nil {
		d := c.PaymentDate.String()
		dto.PaymentDate = &d
	}
	return dto
}

func toCommissionDTOs(commissions []engine.Commission) []CommissionDTO {
	dtos := make([]CommissionDTO, len(commissions))
	for i, c := range commissions {
		dtos[i] = toCommissionDTO(c)
	}
	return dtos
}

func toAssignmentDTO(a engine.PlanAssignment) AssignmentDTO {
	dto := AssignmentDTO{
		ID:        string(a.ID),
		UserID:    string(a.UserID),
		PlanID:    string(a.PlanID),
		PlanName:  a.Plan.Name,
		StartDate: a.StartDate.String(),
		Active:    a.Active,
	}
	if a.EndDate != nil {
		d := a.EndDate.String()
		dto.EndDate = &d
	}
	return dto
}

func toBatchResultDTO(result *engine.BatchResult) BatchResultDTO {
	dto := BatchResultDTO{
		Processed: toCommissionDTOs(result.Processed),
		Skipped:   make([]SkippedDealDTO, len(result.Skipped)),
		Failed:    make([]FailedDealDTO, len(result.Failed)),
	}
	for i, s := range result.Skipped {
		dto.Skipped[i] = SkippedDealDTO{DealID: string(s.DealID), Reason: string(s.Reason)}
	}
	for i, f := range result.Failed {
		dto.Failed[i] = FailedDealDTO{DealID: string(f.DealID), Reason: f.Reason}
	}
	return dto
}

func toSummaryDTO(s analytics.Summary) SummaryDTO {
	return SummaryDTO{
		Total:   s.Total.String(),
		Pending: s.Pending.String(),
		Paid:    s.Paid.String(),
		Count:   s.Count,
		Average: s.Average.String(),
	}
}

func toTrendReportDTO(t *analytics.TrendReport) TrendReportDTO {
	dto := TrendReportDTO{
		Monthly:                  make([]MonthlyTrendDTO, len(t.Monthly)),
		PlanDistribution:         make([]PlanShareDTO, len(t.PlanDistribution)),
		AverageMonthlyCommission: t.AverageMonthlyCommission.String(),
		HighestMonth:             t.HighestMonth,
		GrowthTrend:              t.GrowthTrend,
	}
	for i, m := range t.Monthly {
		dto.Monthly[i] = MonthlyTrendDTO{
			Month:            m.Month,
			CommissionTotal:  m.CommissionTotal.String(),
			DealTotal:        m.DealTotal.String(),
			CommissionGrowth: m.CommissionGrowth.String(),
			DealGrowth:       m.DealGrowth.String(),
		}
	}
	for i, p := range t.PlanDistribution {
		dto.PlanDistribution[i] = PlanShareDTO{
			PlanID:          string(p.PlanID),
			CommissionTotal: p.CommissionTotal.String(),
		}
	}
	return dto
}

func toProjectionDTO(p *analytics.Projection) ProjectionDTO {
	dto := ProjectionDTO{
		HistoricalAverage: p.HistoricalAverage.String(),
		Points:            make([]ProjectionPointDTO, len(p.Points)),
		DataPoints:        p.DataPoints,
	}
	for i, pt := range p.Points {
		dto.Points[i] = ProjectionPointDTO{
			Month:               pt.Month,
			ProjectedCommission: pt.ProjectedCommission.String(),
			Confidence:          pt.Confidence.String(),
		}
	}
	return dto
}

func toPayoutDTO(p engine.Payout) PayoutDTO {
	dto := PayoutDTO{
		ID:          string(p.ID),
		UserID:      string(p.UserID),
		PeriodStart: p.Period.Start.String(),
		PeriodEnd:   p.Period.End.String(),
		TotalAmount: p.TotalAmount.String(),
		Status:      string(p.Status),
	}
	for _, cid := range p.CommissionIDs {
		dto.CommissionIDs = append(dto.CommissionIDs, string(cid))
	}
	if p.ProcessedDate != nil {
		d := p.ProcessedDate.String()
		dto.ProcessedDate = &d
	}
	if p.PaymentDate != nil {
		d := p.PaymentDate.String()
		dto.PaymentDate = &d
	}
	return dto
}
