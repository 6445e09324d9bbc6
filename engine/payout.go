/*
payout.go - Payout batches grouping commissions for a user and period

PURPOSE:
  A payout is the unit handed to the payment process: all of a rep's
  calculated commissions for a period, with a computed total. The
  engine owns only the aggregation contract - the total is the sum of
  the member commission amounts - and the draft/processed/paid
  lifecycle bookkeeping. Payment execution is external.

LIFECYCLE:
  draft -> processed -> paid
  Building produces a draft. MarkProcessed and MarkPaid stamp the
  transition dates; they do not move money.

SEE ALSO:
  - store.go: PayoutStore
  - analytics/: Summary figures payouts feed into
*/
package engine

import "context"

// =============================================================================
// PAYOUT
// =============================================================================

type PayoutStatus string

const (
	PayoutDraft     PayoutStatus = "draft"
	PayoutProcessed PayoutStatus = "processed"
	PayoutPaid      PayoutStatus = "paid"
)

// Payout groups a user's commissions over a period.
// TotalAmount is always the sum of the member commission amounts.
type Payout struct {
	ID            PayoutID
	UserID        UserID
	Period        Period
	TotalAmount   Money
	CommissionIDs []CommissionID
	Status        PayoutStatus
	ProcessedDate *Date
	PaymentDate   *Date
}

// MarkProcessed transitions draft -> processed.
func (p *Payout) MarkProcessed(on Date) {
	p.Status = PayoutProcessed
	p.ProcessedDate = &on
}

// MarkPaid transitions processed -> paid.
func (p *Payout) MarkPaid(on Date) {
	p.Status = PayoutPaid
	p.PaymentDate = &on
}

// =============================================================================
// PAYOUT BUILDER
// =============================================================================

// PayoutBuilder assembles draft payouts from calculated commissions.
type PayoutBuilder struct {
	Commissions CommissionStore
}

// Build creates a draft payout for the user's calculated commissions
// whose calculation date falls in the period. An empty period yields a
// zero-total payout with no members, not an error.
func (pb *PayoutBuilder) Build(ctx context.Context, user UserID, period Period) (*Payout, error) {
	if !period.IsValid() {
		return nil, ErrInvalidPeriod
	}

	status := CommissionCalculated
	commissions, err := pb.Commissions.ListCommissions(ctx, CommissionFilter{
		UserID: &user,
		Status: &status,
		From:   &period.Start,
		To:     &period.End,
	})
	if err != nil {
		return nil, err
	}

	payout := &Payout{
		ID:          PayoutID("pay-" + string(user) + "-" + period.Start.MonthKey()),
		UserID:      user,
		Period:      period,
		TotalAmount: ZeroMoney(),
		Status:      PayoutDraft,
	}
	for _, c := range commissions {
		payout.TotalAmount = payout.TotalAmount.Add(c.CommissionAmount)
		payout.CommissionIDs = append(payout.CommissionIDs, c.ID)
	}
	return payout, nil
}
