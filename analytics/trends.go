/*
trends.go - Month-over-month growth and the trend label

PURPOSE:
  Turns the monthly report into growth figures: percentage change in
  commission and deal totals month over month, a plan-type
  distribution, the highest month, and an overall "positive"/"negative"
  trend label.

GROWTH DEFINITION:
  growth = (curr - prev) / prev * 100
  The first month has no predecessor and a zero previous month has no
  defined ratio; both yield 0 by policy - growth figures never raise.

TREND LABEL:
  "positive" when the mean of the last up-to-3 months' commission
  growth rates is > 0, else "negative". Fewer than 3 months averages
  over what exists; a single month (growth 0) therefore labels
  "negative", which matches treating flat as not growing.

SEE ALSO:
  - analytics.go: MonthlyReport, the input
*/
package analytics

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/warp/commission-engine/engine"
)

// =============================================================================
// TREND REPORT
// =============================================================================

// MonthlyTrend is one month's totals with growth against the prior month.
type MonthlyTrend struct {
	Month            string
	CommissionTotal  engine.Money
	DealTotal        engine.Money
	CommissionGrowth decimal.Decimal // percent; 0 for the first month or a zero prior
	DealGrowth       decimal.Decimal
}

// PlanShare is one plan's slice of the commission total.
type PlanShare struct {
	PlanID          engine.PlanID
	CommissionTotal engine.Money
}

// TrendReport is the complete trend payload.
type TrendReport struct {
	Monthly                  []MonthlyTrend
	PlanDistribution         []PlanShare
	AverageMonthlyCommission engine.Money
	HighestMonth             string // empty when there is no data
	GrowthTrend              string // "positive" or "negative"
}

// Trends computes the trend report for the filtered set. Empty input
// degrades to an empty report with a "negative" label, not an error.
func (a *Engine) Trends(ctx context.Context, filter Filter) (*TrendReport, error) {
	rows, err := a.Report(ctx, filter)
	if err != nil {
		return nil, err
	}
	monthly, err := a.MonthlyReport(ctx, filter)
	if err != nil {
		return nil, err
	}

	report := &TrendReport{
		AverageMonthlyCommission: engine.ZeroMoney(),
		GrowthTrend:              "negative",
	}

	// Month-over-month growth.
	var prev *MonthlyStat
	for i := range monthly {
		curr := monthly[i]
		trend := MonthlyTrend{
			Month:           curr.Month,
			CommissionTotal: curr.CommissionTotal,
			DealTotal:       curr.DealTotal,
		}
		if prev != nil {
			trend.CommissionGrowth = growthRate(prev.CommissionTotal, curr.CommissionTotal)
			trend.DealGrowth = growthRate(prev.DealTotal, curr.DealTotal)
		}
		report.Monthly = append(report.Monthly, trend)
		prev = &monthly[i]
	}

	// Average monthly commission and highest month.
	if len(monthly) > 0 {
		total := engine.ZeroMoney()
		highest := monthly[0]
		for _, m := range monthly {
			total = total.Add(m.CommissionTotal)
			if m.CommissionTotal.GreaterThan(highest.CommissionTotal) {
				highest = m
			}
		}
		report.AverageMonthlyCommission = total.Div(decimal.NewFromInt(int64(len(monthly))))
		report.HighestMonth = highest.Month
	}

	// Plan distribution, first-seen order.
	byPlan := make(map[engine.PlanID]int)
	for _, row := range rows {
		idx, ok := byPlan[row.PlanID]
		if !ok {
			byPlan[row.PlanID] = len(report.PlanDistribution)
			report.PlanDistribution = append(report.PlanDistribution, PlanShare{
				PlanID:          row.PlanID,
				CommissionTotal: engine.ZeroMoney(),
			})
			idx = byPlan[row.PlanID]
		}
		report.PlanDistribution[idx].CommissionTotal =
			report.PlanDistribution[idx].CommissionTotal.Add(row.CommissionAmount)
	}

	// Trend label: mean of the last up-to-3 commission growth rates.
	if n := len(report.Monthly); n > 0 {
		window := report.Monthly
		if n > 3 {
			window = window[n-3:]
		}
		sum := decimal.Zero
		for _, t := range window {
			sum = sum.Add(t.CommissionGrowth)
		}
		mean := sum.Div(decimal.NewFromInt(int64(len(window))))
		if mean.IsPositive() {
			report.GrowthTrend = "positive"
		}
	}

	return report, nil
}

// growthRate returns (curr-prev)/prev*100 with a zero prev defined as 0.
func growthRate(prev, curr engine.Money) decimal.Decimal {
	if prev.IsZero() {
		return decimal.Zero
	}
	return curr.Sub(prev).Value.Div(prev.Value).Mul(oneHundred)
}
