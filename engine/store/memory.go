// Package store provides in-memory implementations of the engine's
// persistence interfaces, for tests and development.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/commission-engine/engine"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory implements every engine store interface behind one mutex.
// Listings are returned in deterministic insertion order.
type Memory struct {
	mu sync.RWMutex

	plans       map[engine.PlanID]engine.CompensationPlan
	planOrder   []engine.PlanID
	assignments map[engine.UserID][]engine.PlanAssignment
	deals       map[engine.DealID]engine.Deal
	dealOrder   []engine.DealID
	quotas      map[engine.UserID][]engine.Quota
	commissions map[engine.CommissionID]engine.Commission
	comOrder    []engine.CommissionID
	byDeal      map[engine.DealID]int
	payouts     map[engine.UserID][]engine.Payout
}

func NewMemory() *Memory {
	return &Memory{
		plans:       make(map[engine.PlanID]engine.CompensationPlan),
		assignments: make(map[engine.UserID][]engine.PlanAssignment),
		deals:       make(map[engine.DealID]engine.Deal),
		quotas:      make(map[engine.UserID][]engine.Quota),
		commissions: make(map[engine.CommissionID]engine.Commission),
		byDeal:      make(map[engine.DealID]int),
		payouts:     make(map[engine.UserID][]engine.Payout),
	}
}

// Compile-time checks that Memory satisfies the store interfaces.
var (
	_ engine.PlanStore       = (*Memory)(nil)
	_ engine.AssignmentStore = (*Memory)(nil)
	_ engine.DealStore       = (*Memory)(nil)
	_ engine.QuotaStore      = (*Memory)(nil)
	_ engine.CommissionStore = (*Memory)(nil)
	_ engine.PayoutStore     = (*Memory)(nil)
)

// =============================================================================
// PLANS
// =============================================================================

func (m *Memory) SavePlan(_ context.Context, plan engine.CompensationPlan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.plans[plan.ID]; !ok {
		m.planOrder = append(m.planOrder, plan.ID)
	}
	m.plans[plan.ID] = plan
	return nil
}

func (m *Memory) GetPlan(_ context.Context, id engine.PlanID) (engine.CompensationPlan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	plan, ok := m.plans[id]
	if !ok {
		return engine.CompensationPlan{}, engine.ErrPlanNotFound
	}
	return plan, nil
}

func (m *Memory) ListPlans(_ context.Context) ([]engine.CompensationPlan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	plans := make([]engine.CompensationPlan, 0, len(m.planOrder))
	for _, id := range m.planOrder {
		plans = append(plans, m.plans[id])
	}
	return plans, nil
}

// =============================================================================
// ASSIGNMENTS
// =============================================================================

func (m *Memory) SaveAssignment(_ context.Context, assignment engine.PlanAssignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Hydrate the plan if the caller only set PlanID.
	if assignment.Plan.ID == "" {
		if plan, ok := m.plans[assignment.PlanID]; ok {
			assignment.Plan = plan
		}
	}

	existing := m.assignments[assignment.UserID]
	for i, a := range existing {
		if a.ID == assignment.ID {
			existing[i] = assignment
			return nil
		}
	}
	m.assignments[assignment.UserID] = append(existing, assignment)
	return nil
}

func (m *Memory) AssignmentsForUser(_ context.Context, user engine.UserID) ([]engine.PlanAssignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]engine.PlanAssignment, len(m.assignments[user]))
	copy(result, m.assignments[user])
	return result, nil
}

// =============================================================================
// DEALS
// =============================================================================

func (m *Memory) SaveDeal(_ context.Context, deal engine.Deal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.deals[deal.ID]; !ok {
		m.dealOrder = append(m.dealOrder, deal.ID)
	}
	m.deals[deal.ID] = deal
	return nil
}

func (m *Memory) GetDeal(_ context.Context, id engine.DealID) (engine.Deal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	deal, ok := m.deals[id]
	if !ok {
		return engine.Deal{}, engine.ErrDealNotFound
	}
	return deal, nil
}

func (m *Memory) ListDeals(_ context.Context, filter engine.DealFilter) ([]engine.Deal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []engine.Deal
	for _, id := range m.dealOrder {
		d := m.deals[id]
		if filter.OwnerID != nil && d.OwnerID != *filter.OwnerID {
			continue
		}
		if filter.Status != nil && d.Status != *filter.Status {
			continue
		}
		result = append(result, d)
	}
	return result, nil
}

func (m *Memory) ClosedWonInPeriod(_ context.Context, user engine.UserID, period engine.Period) ([]engine.Deal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []engine.Deal
	for _, id := range m.dealOrder {
		d := m.deals[id]
		if d.OwnerID != user || d.Status != engine.DealClosedWon {
			continue
		}
		if period.Contains(d.CloseDate) {
			result = append(result, d)
		}
	}
	return result, nil
}

// =============================================================================
// QUOTAS
// =============================================================================

func (m *Memory) SaveQuota(_ context.Context, quota engine.Quota) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing := m.quotas[quota.UserID]
	for i, q := range existing {
		if q.ID == quota.ID {
			existing[i] = quota
			return nil
		}
	}
	m.quotas[quota.UserID] = append(existing, quota)
	return nil
}

func (m *Memory) QuotaFor(_ context.Context, user engine.UserID, on engine.Date) (*engine.Quota, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// First match by earliest start date keeps overlaps deterministic.
	candidates := make([]engine.Quota, len(m.quotas[user]))
	copy(candidates, m.quotas[user])
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Period.Start.Before(candidates[j].Period.Start)
	})
	for _, q := range candidates {
		if q.Period.Contains(on) {
			quota := q
			return &quota, nil
		}
	}
	return nil, nil
}

func (m *Memory) QuotasForUser(_ context.Context, user engine.UserID) ([]engine.Quota, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]engine.Quota, len(m.quotas[user]))
	copy(result, m.quotas[user])
	return result, nil
}

// =============================================================================
// COMMISSIONS
// =============================================================================

func (m *Memory) SaveCommission(_ context.Context, c engine.Commission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.commissions[c.ID]; ok {
		return engine.ErrDuplicateCommission
	}
	m.commissions[c.ID] = c
	m.comOrder = append(m.comOrder, c.ID)
	m.byDeal[c.DealID]++
	return nil
}

func (m *Memory) GetCommission(_ context.Context, id engine.CommissionID) (engine.Commission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.commissions[id]
	if !ok {
		return engine.Commission{}, engine.ErrCommissionNotFound
	}
	return c, nil
}

func (m *Memory) ExistsForDeal(_ context.Context, deal engine.DealID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.byDeal[deal] > 0, nil
}

func (m *Memory) ListCommissions(_ context.Context, filter engine.CommissionFilter) ([]engine.Commission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []engine.Commission
	for _, id := range m.comOrder {
		c := m.commissions[id]
		if filter.UserID != nil && c.UserID != *filter.UserID {
			continue
		}
		if filter.Status != nil && c.Status != *filter.Status {
			continue
		}
		if filter.From != nil && c.CalculationDate.Before(*filter.From) {
			continue
		}
		if filter.To != nil && c.CalculationDate.After(*filter.To) {
			continue
		}
		result = append(result, c)
	}
	return result, nil
}

func (m *Memory) UpdateCommissionStatus(_ context.Context, id engine.CommissionID, status engine.CommissionStatus, paymentDate *engine.Date) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.commissions[id]
	if !ok {
		return engine.ErrCommissionNotFound
	}
	c.Status = status
	if paymentDate != nil {
		c.PaymentDate = paymentDate
	}
	m.commissions[id] = c
	return nil
}

// =============================================================================
// PAYOUTS
// =============================================================================

func (m *Memory) SavePayout(_ context.Context, payout engine.Payout) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing := m.payouts[payout.UserID]
	for i, p := range existing {
		if p.ID == payout.ID {
			existing[i] = payout
			return nil
		}
	}
	m.payouts[payout.UserID] = append(existing, payout)
	return nil
}

func (m *Memory) ListPayouts(_ context.Context, user engine.UserID) ([]engine.Payout, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]engine.Payout, len(m.payouts[user]))
	copy(result, m.payouts[user])
	return result, nil
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plans = make(map[engine.PlanID]engine.CompensationPlan)
	m.planOrder = nil
	m.assignments = make(map[engine.UserID][]engine.PlanAssignment)
	m.deals = make(map[engine.DealID]engine.Deal)
	m.dealOrder = nil
	m.quotas = make(map[engine.UserID][]engine.Quota)
	m.commissions = make(map[engine.CommissionID]engine.Commission)
	m.comOrder = nil
	m.byDeal = make(map[engine.DealID]int)
	m.payouts = make(map[engine.UserID][]engine.Payout)
	return nil
}
