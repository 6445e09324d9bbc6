/*
Package analytics aggregates commission records into summaries, monthly
reports, top-performer rankings, trends, and forward projections.

PURPOSE:
  The read side of the commission pipeline. Everything here is a pure
  aggregation over persisted Commission records - nothing is written,
  and nothing is recomputed from live deal or plan state (the records'
  snapshot fields are the source of truth).

DEGRADATION RULES:
  Empty inputs degrade to well-defined zero payloads, never errors:
  - An empty commission set yields a summary of all zeros.
  - A zero deal amount yields a 0 commission percentage, not a panic.
  - A zero previous month yields 0 growth, not a division error.

KEY CONCEPTS IN THIS FILE (analytics.go):
  - Filter: user + calculation-date range narrowing
  - RecordRow: one enriched commission row (the report building block)
  - Summary: totals by status, count, mean
  - MonthlyStat: per-calendar-month aggregates
  - PerformerStat: ranked commission totals by user (optionally by month)

SEE ALSO:
  - trends.go: Month-over-month growth and the trend label
  - projection.go: Forward projection with decaying confidence
*/
package analytics

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/warp/commission-engine/engine"
)

var oneHundred = decimal.NewFromInt(100)

// =============================================================================
// ANALYTICS ENGINE
// =============================================================================

// Engine computes analytics over a CommissionStore.
type Engine struct {
	Commissions engine.CommissionStore
}

func New(commissions engine.CommissionStore) *Engine {
	return &Engine{Commissions: commissions}
}

// Filter narrows which commission records feed a report.
// From/To bound the calculation date, inclusive.
type Filter struct {
	UserID *engine.UserID
	From   *engine.Date
	To     *engine.Date
}

func (f Filter) toStore() engine.CommissionFilter {
	return engine.CommissionFilter{UserID: f.UserID, From: f.From, To: f.To}
}

// =============================================================================
// RECORD ROWS - The report building block
// =============================================================================

// RecordRow is one commission enriched with derived reporting fields.
type RecordRow struct {
	CommissionID engine.CommissionID
	UserID       engine.UserID
	DealID       engine.DealID
	PlanID       engine.PlanID
	Month        string // calendar month of the calculation date, "2025-03"

	DealAmount       engine.Money
	CommissionAmount engine.Money
	CommissionRate   decimal.Decimal

	// CommissionAmount / DealAmount * 100; 0 when the deal amount is 0.
	CommissionPercentage decimal.Decimal

	Status          engine.CommissionStatus
	CalculationDate engine.Date
}

// Report returns the filtered commissions as enriched rows, in store
// order. Every other aggregation in this package is built on it.
func (a *Engine) Report(ctx context.Context, filter Filter) ([]RecordRow, error) {
	commissions, err := a.Commissions.ListCommissions(ctx, filter.toStore())
	if err != nil {
		return nil, err
	}

	rows := make([]RecordRow, 0, len(commissions))
	for _, c := range commissions {
		rows = append(rows, RecordRow{
			CommissionID:         c.ID,
			UserID:               c.UserID,
			DealID:               c.DealID,
			PlanID:               c.PlanID,
			Month:                c.CalculationDate.MonthKey(),
			DealAmount:           c.DealAmount,
			CommissionAmount:     c.CommissionAmount,
			CommissionRate:       c.CommissionRate,
			CommissionPercentage: CommissionPercentage(c),
			Status:               c.Status,
			CalculationDate:      c.CalculationDate,
		})
	}
	return rows, nil
}

// CommissionPercentage returns commission/deal*100, guarding the
// zero-deal-amount case with 0 rather than a division error.
func CommissionPercentage(c engine.Commission) decimal.Decimal {
	if c.DealAmount.IsZero() {
		return decimal.Zero
	}
	return c.CommissionAmount.Value.Div(c.DealAmount.Value).Mul(oneHundred)
}

// =============================================================================
// SUMMARY - Totals by status in a single pass
// =============================================================================

// Summary is the headline commission figures for a filter.
// Every sum defaults to zero on an empty set.
type Summary struct {
	Total   engine.Money
	Pending engine.Money
	Paid    engine.Money
	Count   int
	Average engine.Money
}

// Summarize aggregates the filtered set in one pass.
func (a *Engine) Summarize(ctx context.Context, filter Filter) (Summary, error) {
	commissions, err := a.Commissions.ListCommissions(ctx, filter.toStore())
	if err != nil {
		return Summary{}, err
	}

	s := Summary{
		Total:   engine.ZeroMoney(),
		Pending: engine.ZeroMoney(),
		Paid:    engine.ZeroMoney(),
		Average: engine.ZeroMoney(),
	}
	for _, c := range commissions {
		s.Total = s.Total.Add(c.CommissionAmount)
		s.Count++
		switch c.Status {
		case engine.CommissionPending:
			s.Pending = s.Pending.Add(c.CommissionAmount)
		case engine.CommissionPaid:
			s.Paid = s.Paid.Add(c.CommissionAmount)
		}
	}
	if s.Count > 0 {
		s.Average = s.Total.Div(decimal.NewFromInt(int64(s.Count)))
	}
	return s, nil
}

// =============================================================================
// MONTHLY REPORT - Per-calendar-month aggregates
// =============================================================================

// MonthlyStat is one calendar month's aggregates.
type MonthlyStat struct {
	Month           string
	CommissionTotal engine.Money
	Count           int
	CommissionMean  engine.Money
	DealTotal       engine.Money
}

// MonthlyReport groups the filtered set by calendar month of the
// calculation date, ascending.
func (a *Engine) MonthlyReport(ctx context.Context, filter Filter) ([]MonthlyStat, error) {
	rows, err := a.Report(ctx, filter)
	if err != nil {
		return nil, err
	}

	byMonth := make(map[string]*MonthlyStat)
	var months []string
	for _, row := range rows {
		stat, ok := byMonth[row.Month]
		if !ok {
			stat = &MonthlyStat{
				Month:           row.Month,
				CommissionTotal: engine.ZeroMoney(),
				CommissionMean:  engine.ZeroMoney(),
				DealTotal:       engine.ZeroMoney(),
			}
			byMonth[row.Month] = stat
			months = append(months, row.Month)
		}
		stat.CommissionTotal = stat.CommissionTotal.Add(row.CommissionAmount)
		stat.DealTotal = stat.DealTotal.Add(row.DealAmount)
		stat.Count++
	}

	sort.Strings(months)
	stats := make([]MonthlyStat, 0, len(months))
	for _, m := range months {
		stat := byMonth[m]
		if stat.Count > 0 {
			stat.CommissionMean = stat.CommissionTotal.Div(decimal.NewFromInt(int64(stat.Count)))
		}
		stats = append(stats, *stat)
	}
	return stats, nil
}

// =============================================================================
// TOP PERFORMERS - Ranked commission totals
// =============================================================================

// PerformerStat is one user's (optionally per-month) commission total.
type PerformerStat struct {
	UserID          engine.UserID
	Month           string // empty when grouping is overall
	CommissionTotal engine.Money
	DealTotal       engine.Money
}

// TopPerformers ranks users (or user-month pairs when byMonth is true)
// by commission total, descending, returning at most limit entries.
// Ties preserve first-seen input order (stable sort).
func (a *Engine) TopPerformers(ctx context.Context, filter Filter, byMonth bool, limit int) ([]PerformerStat, error) {
	rows, err := a.Report(ctx, filter)
	if err != nil {
		return nil, err
	}

	type groupKey struct {
		user  engine.UserID
		month string
	}
	byKey := make(map[groupKey]*PerformerStat)
	var order []groupKey
	for _, row := range rows {
		key := groupKey{user: row.UserID}
		if byMonth {
			key.month = row.Month
		}
		stat, ok := byKey[key]
		if !ok {
			stat = &PerformerStat{
				UserID:          key.user,
				Month:           key.month,
				CommissionTotal: engine.ZeroMoney(),
				DealTotal:       engine.ZeroMoney(),
			}
			byKey[key] = stat
			order = append(order, key)
		}
		stat.CommissionTotal = stat.CommissionTotal.Add(row.CommissionAmount)
		stat.DealTotal = stat.DealTotal.Add(row.DealAmount)
	}

	stats := make([]PerformerStat, 0, len(order))
	for _, key := range order {
		stats = append(stats, *byKey[key])
	}
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].CommissionTotal.GreaterThan(stats[j].CommissionTotal)
	})

	if limit > 0 && len(stats) > limit {
		stats = stats[:limit]
	}
	return stats, nil
}
