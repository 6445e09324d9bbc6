/*
Package engine provides the core sales commission calculation engine.

PURPOSE:
  This package contains the domain types and algorithms for turning a
  compensation plan plus a sales rep's deal history into a monetary
  commission amount. It covers the four plan strategies (flat rate,
  percentage, tiered, quota-accelerated), the temporal resolution of
  which plan assignment applies to a deal, and the batch pipeline that
  runs the engine over many deals while isolating per-deal failures.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money: A fixed-point monetary amount (decimal-backed, never float)
  - Date/Period: Day-granular time points and closed date intervals
  - Deal: A sales opportunity (read-only input from the sales workflow)
  - Quota: A rep's target for a period (read-only input)
  - Commission: The computed artifact, with snapshotted rate and amount

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal to avoid floating-point errors on money
  2. Snapshots: Commission records freeze deal_amount and the effective rate
     at calculation time; they are never recomputed from live data
  3. Type Safety: Strong typing for IDs prevents mixing user/deal/plan IDs
  4. Determinism: Calculation depends only on inputs and explicit Config,
     never on ambient runtime state

USAGE:
  amount := engine.NewMoney(10000)
  deal := engine.Deal{ID: "deal-1", OwnerID: "rep-1", Amount: amount,
      Status: engine.DealClosedWon, CloseDate: engine.NewDate(2025, time.March, 15)}

SEE ALSO:
  - plan.go: Compensation plan and tier rule definitions
  - calc.go: Strategy resolution and commission calculation
  - batch.go: Bulk calculation with failure isolation
*/
package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Fixed-point monetary amount
// =============================================================================

// Money is a monetary amount backed by a fixed-point decimal.
// All commission math goes through Money or decimal.Decimal; binary
// floats never touch a monetary value.
type Money struct {
	Value decimal.Decimal
}

func NewMoney(value float64) Money {
	return Money{Value: decimal.NewFromFloat(value)}
}

func NewMoneyFromInt(value int) Money {
	return Money{Value: decimal.NewFromInt(int64(value))}
}

// MustParseMoney parses a decimal string, returning zero on failure.
// Use for literals in configuration and tests.
func MustParseMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{Value: decimal.Zero}
	}
	return Money{Value: d}
}

func ZeroMoney() Money { return Money{Value: decimal.Zero} }

func (m Money) Add(o Money) Money            { return Money{Value: m.Value.Add(o.Value)} }
func (m Money) Sub(o Money) Money            { return Money{Value: m.Value.Sub(o.Value)} }
func (m Money) Mul(s decimal.Decimal) Money  { return Money{Value: m.Value.Mul(s)} }
func (m Money) Div(s decimal.Decimal) Money  { return Money{Value: m.Value.Div(s)} }
func (m Money) Neg() Money                   { return Money{Value: m.Value.Neg()} }
func (m Money) IsNegative() bool             { return m.Value.IsNegative() }
func (m Money) IsZero() bool                 { return m.Value.IsZero() }
func (m Money) IsPositive() bool             { return m.Value.IsPositive() }
func (m Money) GreaterThan(o Money) bool     { return m.Value.GreaterThan(o.Value) }
func (m Money) GreaterOrEqual(o Money) bool  { return m.Value.GreaterThanOrEqual(o.Value) }
func (m Money) LessThan(o Money) bool        { return m.Value.LessThan(o.Value) }
func (m Money) Equal(o Money) bool           { return m.Value.Equal(o.Value) }
func (m Money) Min(o Money) Money            { if m.LessThan(o) { return m }; return o }
func (m Money) Max(o Money) Money            { if m.GreaterThan(o) { return m }; return o }

// Round rounds to the given number of minor-unit digits (half away from zero).
func (m Money) Round(places int32) Money { return Money{Value: m.Value.Round(places)} }

func (m Money) String() string { return m.Value.String() }

// =============================================================================
// IDENTIFIERS
// =============================================================================

type UserID string
type PlanID string
type DealID string
type QuotaID string
type AssignmentID string
type CommissionID string
type PayoutID string

// =============================================================================
// DATE - Day-granular time point
// =============================================================================

// Date is a day-granular point in time. Deal close dates, assignment
// windows, and quota periods are all whole days; normalizing here keeps
// comparisons free of wall-clock noise.
type Date struct {
	Time time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func Today() Date {
	now := time.Now().UTC()
	return NewDate(now.Year(), now.Month(), now.Day())
}

// ParseDate parses "2006-01-02".
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// Comparison
func (d Date) Before(o Date) bool        { return d.normalize().Before(o.normalize()) }
func (d Date) After(o Date) bool         { return d.normalize().After(o.normalize()) }
func (d Date) Equal(o Date) bool         { return d.normalize().Equal(o.normalize()) }
func (d Date) BeforeOrEqual(o Date) bool { return d.Before(o) || d.Equal(o) }
func (d Date) AfterOrEqual(o Date) bool  { return d.After(o) || d.Equal(o) }

func (d Date) normalize() time.Time {
	return time.Date(d.Time.Year(), d.Time.Month(), d.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Arithmetic
func (d Date) AddDays(n int) Date   { return Date{Time: d.Time.AddDate(0, 0, n)} }
func (d Date) AddMonths(n int) Date { return Date{Time: d.Time.AddDate(0, n, 0)} }
func (d Date) AddYears(n int) Date  { return Date{Time: d.Time.AddDate(n, 0, 0)} }

// Properties
func (d Date) Year() int         { return d.Time.Year() }
func (d Date) Month() time.Month { return d.Time.Month() }
func (d Date) Day() int          { return d.Time.Day() }
func (d Date) IsZero() bool      { return d.Time.IsZero() }

func (d Date) String() string { return d.Time.Format("2006-01-02") }

// MonthKey returns the calendar-month bucket for reporting ("2025-03").
func (d Date) MonthKey() string { return d.Time.Format("2006-01") }

// MonthStart returns the first day of d's calendar month. Month
// arithmetic must step from here: AddDate normalizes overflow, so
// stepping from a month-end date skips months (Mar 31 + 1 month is
// May 1).
func (d Date) MonthStart() Date { return NewDate(d.Time.Year(), d.Time.Month(), 1) }

// =============================================================================
// PERIOD - Closed date interval [Start, End]
// =============================================================================

// Period is a closed date interval. Quota periods and payout periods
// are both [Start, End] inclusive.
type Period struct {
	Start Date
	End   Date
}

func (p Period) Contains(d Date) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

func (p Period) IsValid() bool {
	return !p.Start.IsZero() && !p.End.IsZero() && p.Start.BeforeOrEqual(p.End)
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// MonthOf returns the calendar-month period containing the date.
func MonthOf(d Date) Period {
	start := NewDate(d.Year(), d.Month(), 1)
	return Period{Start: start, End: start.AddMonths(1).AddDays(-1)}
}

// =============================================================================
// DEAL - Sales opportunity (read-only input)
// =============================================================================

type DealStatus string

const (
	DealOpen       DealStatus = "open"
	DealClosedWon  DealStatus = "closed_won"
	DealClosedLost DealStatus = "closed_lost"
)

// Deal is a sales opportunity. Deals are created and mutated by the
// sales workflow; the commission engine only reads them. Only
// closed_won deals are commission-eligible.
type Deal struct {
	ID          DealID
	Name        string
	AccountName string
	OwnerID     UserID
	Amount      Money
	Status      DealStatus
	CloseDate   Date
}

// =============================================================================
// QUOTA - Target amount for a period (read-only input)
// =============================================================================

// Quota is a rep's target amount for a period. Used only by the
// quota-based strategy to decide accelerator eligibility.
type Quota struct {
	ID     QuotaID
	UserID UserID
	Amount Money
	Period Period
}

// =============================================================================
// COMMISSION - The computed artifact
// =============================================================================

type CommissionStatus string

const (
	CommissionPending    CommissionStatus = "pending"
	CommissionCalculated CommissionStatus = "calculated"
	CommissionPaid       CommissionStatus = "paid"
	CommissionDisputed   CommissionStatus = "disputed"
)

// Commission is one computed commission for one deal under one plan.
//
// CommissionRate and DealAmount are SNAPSHOTS taken at calculation time.
// They preserve the historical audit record even if the plan or deal is
// edited later, and must never be recomputed from live state.
type Commission struct {
	ID     CommissionID
	UserID UserID
	DealID DealID
	PlanID PlanID

	// Rounded to the engine's precision at record creation. Never negative.
	CommissionAmount Money

	// The effective rate applied: the accelerator rate when the quota
	// accelerator fired, the base rate otherwise. For flat-rate plans
	// this is the flat amount itself.
	CommissionRate decimal.Decimal

	// Deal amount at calculation time.
	DealAmount Money

	Status CommissionStatus

	// Set once by the batch calculator; immutable afterwards.
	CalculationDate Date

	PaymentDate *Date
	Notes       string
}
