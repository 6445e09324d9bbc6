/*
projection.go - Forward commission projection with decaying confidence

PURPOSE:
  Projects a rep's commission forward from their trailing six months of
  history. The projection is deliberately simple: the historical mean
  monthly commission carried flat into each future month, with a
  confidence score that starts at 0.8 and drops by 0.1 per projected
  month, clamped at 0.

WINDOW:
  The trailing window is the six calendar months ending at AsOf. The
  mean is over the monthly sums of the months that actually have data -
  a rep with two active months averages over two, not six.

DEGRADATION:
  No history in the window yields a projection with zero average, zero
  data points, and no projected months - never an error.

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
// PROJECTION
// =============================================================================

var (
	confidenceStart = decimal.NewFromFloat(0.8)
	confidenceStep  = decimal.NewFromFloat(0.1)
)

// ProjectionPoint is one projected future month.
type ProjectionPoint struct {
	Month               string
	ProjectedCommission engine.Money
	Confidence          decimal.Decimal // 0.8, 0.7, ... floored at 0
}

// Projection is the complete projection payload.
type Projection struct {
	HistoricalAverage engine.Money
	Points            []ProjectionPoint

	// DataPoints is the number of commission records behind the average.
	DataPoints int
}

// Project computes a months-long projection for the user from the six
// calendar months ending at asOf.
func (a *Engine) Project(ctx context.Context, user engine.UserID, asOf engine.Date, months int) (*Projection, error) {
	// Step month arithmetic from the first of asOf's month; stepping
	// from a month-end date would skip months.
	monthStart := asOf.MonthStart()

	from := monthStart.AddMonths(-5)
	filter := Filter{UserID: &user, From: &from, To: &asOf}

	monthly, err := a.MonthlyReport(ctx, filter)
	if err != nil {
		return nil, err
	}

	projection := &Projection{HistoricalAverage: engine.ZeroMoney()}
	if len(monthly) == 0 {
		return projection, nil
	}

	total := engine.ZeroMoney()
	for _, m := range monthly {
		total = total.Add(m.CommissionTotal)
		projection.DataPoints += m.Count
	}
	projection.HistoricalAverage = total.Div(decimal.NewFromInt(int64(len(monthly))))

	for i := 0; i < months; i++ {
		confidence := confidenceStart.Sub(confidenceStep.Mul(decimal.NewFromInt(int64(i))))
		if confidence.IsNegative() {
			confidence = decimal.Zero
		}
		projection.Points = append(projection.Points, ProjectionPoint{
			Month:               monthStart.AddMonths(i + 1).MonthKey(),
			ProjectedCommission: projection.HistoricalAverage,
			Confidence:          confidence,
		})
	}
	return projection, nil
}
