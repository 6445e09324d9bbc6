/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements all persistence interfaces (PlanStore, AssignmentStore,
  DealStore, QuotaStore, CommissionStore, PayoutStore) using SQLite. In
  production, the same patterns apply to PostgreSQL - only minor SQL
  dialect differences.

SNAPSHOT ENFORCEMENT:
  Commission records are written once with snapshotted deal_amount and
  commission_rate. The only UPDATE on the commissions table touches
  status and payment_date; the monetary snapshot columns are never
  rewritten.

KEY TABLES:
  plans:               Compensation plan definitions
  plan_rules:          Tier bands, one row per band
  plan_assignments:    User-to-plan links with date windows
  deals:               Sales opportunities
  quotas:              Per-user period targets
  commissions:         Computed commission records (snapshot columns)
  payouts:             Payout batches
  payout_commissions:  Payout membership

INDEXES:
  Critical indexes for performance:
  - idx_deals_owner_status_close: Attainment queries (hot path)
  - idx_commissions_deal: Idempotence guard lookups
  - idx_commissions_user_date: Analytics range scans
  - idx_assignments_user: Assignment resolution

DECIMAL STORAGE:
  Monetary amounts and rates are stored as TEXT in their exact decimal
  representation. REAL columns would reintroduce the float drift the
  engine exists to avoid.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/commissions.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - engine/store.go: Interface definitions
  - engine/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/commission-engine/engine"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Compile-time interface checks.
var (
	_ engine.PlanStore       = (*Store)(nil)
	_ engine.AssignmentStore = (*Store)(nil)
	_ engine.DealStore       = (*Store)(nil)
	_ engine.QuotaStore      = (*Store)(nil)
	_ engine.CommissionStore = (*Store)(nil)
	_ engine.PayoutStore     = (*Store)(nil)
)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Compensation plans
	CREATE TABLE IF NOT EXISTS plans (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		plan_type TEXT NOT NULL,
		base_rate TEXT NOT NULL,
		threshold_amount TEXT,
		accelerator_rate TEXT,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		description TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Tier bands, one row per band
	CREATE TABLE IF NOT EXISTS plan_rules (
		plan_id TEXT NOT NULL,
		rule_order INTEGER NOT NULL,
		min_amount TEXT,
		max_amount TEXT,
		rate TEXT NOT NULL,
		PRIMARY KEY (plan_id, rule_order)
	);

	CREATE INDEX IF NOT EXISTS idx_plan_rules_plan
		ON plan_rules(plan_id);

	-- Plan assignments
	CREATE TABLE IF NOT EXISTS plan_assignments (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		plan_id TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_assignments_user
		ON plan_assignments(user_id);
	CREATE INDEX IF NOT EXISTS idx_assignments_plan
		ON plan_assignments(plan_id);

	-- Deals
	CREATE TABLE IF NOT EXISTS deals (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		account_name TEXT,
		owner_id TEXT NOT NULL,
		amount TEXT NOT NULL,
		status TEXT NOT NULL,
		close_date TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	-- Composite index for attainment queries (hot path)
	CREATE INDEX IF NOT EXISTS idx_deals_owner_status_close
		ON deals(owner_id, status, close_date);

	-- Quotas
	CREATE TABLE IF NOT EXISTS quotas (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		amount TEXT NOT NULL,
		period_start TEXT NOT NULL,
		period_end TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_quotas_user_period
		ON quotas(user_id, period_start, period_end);

	-- Commissions (snapshot columns are write-once)
	CREATE TABLE IF NOT EXISTS commissions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		deal_id TEXT NOT NULL,
		plan_id TEXT NOT NULL,
		commission_amount TEXT NOT NULL,
		commission_rate TEXT NOT NULL,
		deal_amount TEXT NOT NULL,
		status TEXT NOT NULL,
		calculation_date TEXT NOT NULL,
		payment_date TEXT,
		notes TEXT,
		created_at TEXT NOT NULL
	);

	-- For idempotence guard lookups
	CREATE INDEX IF NOT EXISTS idx_commissions_deal
		ON commissions(deal_id);

	-- For analytics range scans
	CREATE INDEX IF NOT EXISTS idx_commissions_user_date
		ON commissions(user_id, calculation_date);
	CREATE INDEX IF NOT EXISTS idx_commissions_status
		ON commissions(status);

	-- Payouts
	CREATE TABLE IF NOT EXISTS payouts (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		period_start TEXT NOT NULL,
		period_end TEXT NOT NULL,
		total_amount TEXT NOT NULL,
		status TEXT NOT NULL,
		processed_date TEXT,
		payment_date TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_payouts_user
		ON payouts(user_id);

	-- Payout membership
	CREATE TABLE IF NOT EXISTS payout_commissions (
		payout_id TEXT NOT NULL,
		commission_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		PRIMARY KEY (payout_id, commission_id)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// PLAN STORE (engine.PlanStore interface)
// =============================================================================

// SavePlan upserts a plan and rewrites its tier bands.
func (s *Store) SavePlan(ctx context.Context, plan engine.CompensationPlan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO plans (id, name, plan_type, base_rate, threshold_amount, accelerator_rate,
			active, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			plan_type = excluded.plan_type,
			base_rate = excluded.base_rate,
			threshold_amount = excluded.threshold_amount,
			accelerator_rate = excluded.accelerator_rate,
			active = excluded.active,
			description = excluded.description,
			updated_at = excluded.updated_at
	`

	var threshold, accelerator *string
	if plan.ThresholdAmount != nil {
		v := plan.ThresholdAmount.Value.String()
		threshold = &v
	}
	if plan.AcceleratorRate != nil {
		v := plan.AcceleratorRate.String()
		accelerator = &v
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = tx.ExecContext(ctx, query,
		plan.ID, plan.Name, plan.Type, plan.BaseRate.String(),
		threshold, accelerator, plan.Active, plan.Description, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to save plan: %w", err)
	}

	// Rules are replaced wholesale with the plan.
	if _, err := tx.ExecContext(ctx, "DELETE FROM plan_rules WHERE plan_id = ?", plan.ID); err != nil {
		return fmt.Errorf("failed to clear plan rules: %w", err)
	}
	for _, rule := range plan.SortedRules() {
		var min, max *string
		if rule.MinAmount != nil {
			v := rule.MinAmount.Value.String()
			min = &v
		}
		if rule.MaxAmount != nil {
			v := rule.MaxAmount.Value.String()
			max = &v
		}
		_, err := tx.ExecContext(ctx,
			"INSERT INTO plan_rules (plan_id, rule_order, min_amount, max_amount, rate) VALUES (?, ?, ?, ?, ?)",
			plan.ID, rule.Order, min, max, rule.Rate.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to save plan rule: %w", err)
		}
	}

	return tx.Commit()
}

// GetPlan retrieves a plan with its tier bands.
func (s *Store) GetPlan(ctx context.Context, id engine.PlanID) (engine.CompensationPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.getPlan(ctx, id)
}

func (s *Store) getPlan(ctx context.Context, id engine.PlanID) (engine.CompensationPlan, error) {
	var (
		plan                   engine.CompensationPlan
		threshold, accelerator sql.NullString
		baseRate               string
		description            sql.NullString
	)

	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, plan_type, base_rate, threshold_amount, accelerator_rate, active, description FROM plans WHERE id = ?",
		id,
	).Scan(&plan.ID, &plan.Name, &plan.Type, &baseRate, &threshold, &accelerator, &plan.Active, &description)

	if err == sql.ErrNoRows {
		return engine.CompensationPlan{}, engine.ErrPlanNotFound
	}
	if err != nil {
		return engine.CompensationPlan{}, err
	}

	plan.BaseRate = engine.MustParseMoney(baseRate).Value
	plan.Description = description.String
	if threshold.Valid {
		t := engine.MustParseMoney(threshold.String)
		plan.ThresholdAmount = &t
	}
	if accelerator.Valid {
		a := engine.MustParseMoney(accelerator.String).Value
		plan.AcceleratorRate = &a
	}

	rules, err := s.loadRules(ctx, id)
	if err != nil {
		return engine.CompensationPlan{}, err
	}
	plan.Rules = rules

	return plan, nil
}

func (s *Store) loadRules(ctx context.Context, id engine.PlanID) ([]engine.CommissionRule, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT rule_order, min_amount, max_amount, rate FROM plan_rules WHERE plan_id = ? ORDER BY rule_order ASC",
		id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []engine.CommissionRule
	for rows.Next() {
		var (
			rule     engine.CommissionRule
			min, max sql.NullString
			rate     string
		)
		if err := rows.Scan(&rule.Order, &min, &max, &rate); err != nil {
			return nil, err
		}
		rule.Rate = engine.MustParseMoney(rate).Value
		if min.Valid {
			m := engine.MustParseMoney(min.String)
			rule.MinAmount = &m
		}
		if max.Valid {
			m := engine.MustParseMoney(max.String)
			rule.MaxAmount = &m
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

// ListPlans returns all plans ordered by name.
func (s *Store) ListPlans(ctx context.Context) ([]engine.CompensationPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT id FROM plans ORDER BY name, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []engine.PlanID
	for rows.Next() {
		var id engine.PlanID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var plans []engine.CompensationPlan
	for _, id := range ids {
		plan, err := s.getPlan(ctx, id)
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	return plans, nil
}

// =============================================================================
// ASSIGNMENT STORE (engine.AssignmentStore interface)
// =============================================================================

// SaveAssignment upserts a plan assignment.
func (s *Store) SaveAssignment(ctx context.Context, a engine.PlanAssignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var endDate *string
	if a.EndDate != nil {
		d := a.EndDate.String()
		endDate = &d
	}

	query := `
		INSERT INTO plan_assignments (id, user_id, plan_id, start_date, end_date, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			plan_id = excluded.plan_id,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			active = excluded.active
	`

	_, err := s.db.ExecContext(ctx, query,
		a.ID, a.UserID, a.PlanID,
		a.StartDate.String(), endDate, a.Active,
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// AssignmentsForUser returns every assignment for the user with Plan hydrated.
func (s *Store) AssignmentsForUser(ctx context.Context, user engine.UserID) ([]engine.PlanAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, user_id, plan_id, start_date, end_date, active
		FROM plan_assignments
		WHERE user_id = ?
		ORDER BY start_date ASC, id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, user)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []engine.PlanAssignment
	for rows.Next() {
		var (
			a         engine.PlanAssignment
			startDate string
			endDate   sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.UserID, &a.PlanID, &startDate, &endDate, &a.Active); err != nil {
			return nil, err
		}
		a.StartDate, _ = engine.ParseDate(startDate)
		if endDate.Valid {
			d, _ := engine.ParseDate(endDate.String)
			a.EndDate = &d
		}
		assignments = append(assignments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range assignments {
		plan, err := s.getPlan(ctx, assignments[i].PlanID)
		if err == engine.ErrPlanNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		assignments[i].Plan = plan
	}

	return assignments, nil
}

// =============================================================================
// DEAL STORE (engine.DealStore interface)
// =============================================================================

// SaveDeal upserts a deal.
func (s *Store) SaveDeal(ctx context.Context, deal engine.Deal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO deals (id, name, account_name, owner_id, amount, status, close_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			account_name = excluded.account_name,
			owner_id = excluded.owner_id,
			amount = excluded.amount,
			status = excluded.status,
			close_date = excluded.close_date
	`

	_, err := s.db.ExecContext(ctx, query,
		deal.ID, deal.Name, deal.AccountName, deal.OwnerID,
		deal.Amount.Value.String(), deal.Status, deal.CloseDate.String(),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// GetDeal retrieves a deal by ID.
func (s *Store) GetDeal(ctx context.Context, id engine.DealID) (engine.Deal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, name, account_name, owner_id, amount, status, close_date
		FROM deals WHERE id = ?
	`

	deals, err := s.queryDeals(ctx, query, id)
	if err != nil {
		return engine.Deal{}, err
	}
	if len(deals) == 0 {
		return engine.Deal{}, engine.ErrDealNotFound
	}
	return deals[0], nil
}

// ListDeals returns deals matching the filter, ordered by close date.
func (s *Store) ListDeals(ctx context.Context, filter engine.DealFilter) ([]engine.Deal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, name, account_name, owner_id, amount, status, close_date
		FROM deals
	`
	var (
		where []string
		args  []any
	)
	if filter.OwnerID != nil {
		where = append(where, "owner_id = ?")
		args = append(args, *filter.OwnerID)
	}
	if filter.Status != nil {
		where = append(where, "status = ?")
		args = append(args, *filter.Status)
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY close_date ASC, id ASC"

	return s.queryDeals(ctx, query, args...)
}

// ClosedWonInPeriod returns the user's closed-won deals inside the period.
func (s *Store) ClosedWonInPeriod(ctx context.Context, user engine.UserID, period engine.Period) ([]engine.Deal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, name, account_name, owner_id, amount, status, close_date
		FROM deals
		WHERE owner_id = ? AND status = ?
		  AND close_date >= ? AND close_date <= ?
		ORDER BY close_date ASC, id ASC
	`

	return s.queryDeals(ctx, query, user, engine.DealClosedWon,
		period.Start.String(), period.End.String())
}

func (s *Store) queryDeals(ctx context.Context, query string, args ...any) ([]engine.Deal, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query deals: %w", err)
	}
	defer rows.Close()

	var deals []engine.Deal
	for rows.Next() {
		var (
			deal        engine.Deal
			accountName sql.NullString
			amount      string
			closeDate   string
		)
		if err := rows.Scan(&deal.ID, &deal.Name, &accountName, &deal.OwnerID, &amount, &deal.Status, &closeDate); err != nil {
			return nil, fmt.Errorf("failed to scan deal: %w", err)
		}
		deal.AccountName = accountName.String
		deal.Amount = engine.MustParseMoney(amount)
		deal.CloseDate, _ = engine.ParseDate(closeDate)
		deals = append(deals, deal)
	}
	return deals, rows.Err()
}

// =============================================================================
// QUOTA STORE (engine.QuotaStore interface)
// =============================================================================

// SaveQuota upserts a quota.
func (s *Store) SaveQuota(ctx context.Context, quota engine.Quota) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO quotas (id, user_id, amount, period_start, period_end, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			amount = excluded.amount,
			period_start = excluded.period_start,
			period_end = excluded.period_end
	`

	_, err := s.db.ExecContext(ctx, query,
		quota.ID, quota.UserID, quota.Amount.Value.String(),
		quota.Period.Start.String(), quota.Period.End.String(),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// QuotaFor returns the quota whose period contains the date, or nil.
// Overlapping quotas resolve to the earliest-starting one.
func (s *Store) QuotaFor(ctx context.Context, user engine.UserID, on engine.Date) (*engine.Quota, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, user_id, amount, period_start, period_end
		FROM quotas
		WHERE user_id = ? AND period_start <= ? AND period_end >= ?
		ORDER BY period_start ASC, id ASC
		LIMIT 1
	`

	quotas, err := s.queryQuotas(ctx, query, user, on.String(), on.String())
	if err != nil {
		return nil, err
	}
	if len(quotas) == 0 {
		return nil, nil
	}
	return &quotas[0], nil
}

// QuotasForUser returns all quotas for the user ordered by period start.
func (s *Store) QuotasForUser(ctx context.Context, user engine.UserID) ([]engine.Quota, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, user_id, amount, period_start, period_end
		FROM quotas
		WHERE user_id = ?
		ORDER BY period_start ASC, id ASC
	`

	return s.queryQuotas(ctx, query, user)
}

func (s *Store) queryQuotas(ctx context.Context, query string, args ...any) ([]engine.Quota, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query quotas: %w", err)
	}
	defer rows.Close()

	var quotas []engine.Quota
	for rows.Next() {
		var (
			quota      engine.Quota
			amount     string
			start, end string
		)
		if err := rows.Scan(&quota.ID, &quota.UserID, &amount, &start, &end); err != nil {
			return nil, fmt.Errorf("failed to scan quota: %w", err)
		}
		quota.Amount = engine.MustParseMoney(amount)
		quota.Period.Start, _ = engine.ParseDate(start)
		quota.Period.End, _ = engine.ParseDate(end)
		quotas = append(quotas, quota)
	}
	return quotas, rows.Err()
}

// =============================================================================
// COMMISSION STORE (engine.CommissionStore interface)
// =============================================================================

// SaveCommission writes a new commission record. Snapshot columns are
// write-once; a duplicate ID is rejected with ErrDuplicateCommission.
func (s *Store) SaveCommission(ctx context.Context, c engine.Commission) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var paymentDate *string
	if c.PaymentDate != nil {
		d := c.PaymentDate.String()
		paymentDate = &d
	}

	query := `
		INSERT INTO commissions (id, user_id, deal_id, plan_id, commission_amount,
			commission_rate, deal_amount, status, calculation_date, payment_date, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		c.ID, c.UserID, c.DealID, c.PlanID,
		c.CommissionAmount.Value.String(), c.CommissionRate.String(), c.DealAmount.Value.String(),
		c.Status, c.CalculationDate.String(), paymentDate, c.Notes,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return engine.ErrDuplicateCommission
		}
		return fmt.Errorf("failed to save commission: %w", err)
	}
	return nil
}

// GetCommission retrieves a commission by ID.
func (s *Store) GetCommission(ctx context.Context, id engine.CommissionID) (engine.Commission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, user_id, deal_id, plan_id, commission_amount, commission_rate,
		       deal_amount, status, calculation_date, payment_date, notes
		FROM commissions WHERE id = ?
	`

	commissions, err := s.queryCommissions(ctx, query, id)
	if err != nil {
		return engine.Commission{}, err
	}
	if len(commissions) == 0 {
		return engine.Commission{}, engine.ErrCommissionNotFound
	}
	return commissions[0], nil
}

// ExistsForDeal reports whether any commission references the deal.
func (s *Store) ExistsForDeal(ctx context.Context, deal engine.DealID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM commissions WHERE deal_id = ?",
		deal,
	).Scan(&count)

	return count > 0, err
}

// ListCommissions returns commissions matching the filter, ordered by
// calculation date.
func (s *Store) ListCommissions(ctx context.Context, filter engine.CommissionFilter) ([]engine.Commission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, user_id, deal_id, plan_id, commission_amount, commission_rate,
		       deal_amount, status, calculation_date, payment_date, notes
		FROM commissions
	`
	var (
		where []string
		args  []any
	)
	if filter.UserID != nil {
		where = append(where, "user_id = ?")
		args = append(args, *filter.UserID)
	}
	if filter.Status != nil {
		where = append(where, "status = ?")
		args = append(args, *filter.Status)
	}
	if filter.From != nil {
		where = append(where, "calculation_date >= ?")
		args = append(args, filter.From.String())
	}
	if filter.To != nil {
		where = append(where, "calculation_date <= ?")
		args = append(args, filter.To.String())
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY calculation_date ASC, id ASC"

	return s.queryCommissions(ctx, query, args...)
}

// UpdateCommissionStatus transitions a record's status. Snapshot
// columns are untouched.
func (s *Store) UpdateCommissionStatus(ctx context.Context, id engine.CommissionID, status engine.CommissionStatus, paymentDate *engine.Date) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var pd *string
	if paymentDate != nil {
		d := paymentDate.String()
		pd = &d
	}

	res, err := s.db.ExecContext(ctx,
		"UPDATE commissions SET status = ?, payment_date = COALESCE(?, payment_date) WHERE id = ?",
		status, pd, id,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return engine.ErrCommissionNotFound
	}
	return nil
}

func (s *Store) queryCommissions(ctx context.Context, query string, args ...any) ([]engine.Commission, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query commissions: %w", err)
	}
	defer rows.Close()

	var commissions []engine.Commission
	for rows.Next() {
		var (
			c                        engine.Commission
			amount, rate, dealAmount string
			calculationDate          string
			paymentDate              sql.NullString
			notes                    sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.UserID, &c.DealID, &c.PlanID,
			&amount, &rate, &dealAmount, &c.Status, &calculationDate, &paymentDate, &notes); err != nil {
			return nil, fmt.Errorf("failed to scan commission: %w", err)
		}
		c.CommissionAmount = engine.MustParseMoney(amount)
		c.CommissionRate = engine.MustParseMoney(rate).Value
		c.DealAmount = engine.MustParseMoney(dealAmount)
		c.CalculationDate, _ = engine.ParseDate(calculationDate)
		if paymentDate.Valid {
			d, _ := engine.ParseDate(paymentDate.String)
			c.PaymentDate = &d
		}
		c.Notes = notes.String
		commissions = append(commissions, c)
	}
	return commissions, rows.Err()
}

// =============================================================================
// PAYOUT STORE (engine.PayoutStore interface)
// =============================================================================

// SavePayout upserts a payout batch and its membership.
func (s *Store) SavePayout(ctx context.Context, payout engine.Payout) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var processedDate, paymentDate *string
	if payout.ProcessedDate != nil {
		d := payout.ProcessedDate.String()
		processedDate = &d
	}
	if payout.PaymentDate != nil {
		d := payout.PaymentDate.String()
		paymentDate = &d
	}

	query := `
		INSERT INTO payouts (id, user_id, period_start, period_end, total_amount,
			status, processed_date, payment_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			total_amount = excluded.total_amount,
			status = excluded.status,
			processed_date = excluded.processed_date,
			payment_date = excluded.payment_date
	`

	_, err = tx.ExecContext(ctx, query,
		payout.ID, payout.UserID,
		payout.Period.Start.String(), payout.Period.End.String(),
		payout.TotalAmount.Value.String(), payout.Status,
		processedDate, paymentDate,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save payout: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM payout_commissions WHERE payout_id = ?", payout.ID); err != nil {
		return fmt.Errorf("failed to clear payout membership: %w", err)
	}
	for i, cid := range payout.CommissionIDs {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO payout_commissions (payout_id, commission_id, position) VALUES (?, ?, ?)",
			payout.ID, cid, i,
		)
		if err != nil {
			return fmt.Errorf("failed to save payout membership: %w", err)
		}
	}

	return tx.Commit()
}

// ListPayouts returns all payouts for a user with membership hydrated.
func (s *Store) ListPayouts(ctx context.Context, user engine.UserID) ([]engine.Payout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, user_id, period_start, period_end, total_amount, status, processed_date, payment_date
		FROM payouts
		WHERE user_id = ?
		ORDER BY period_start ASC, id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, user)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payouts []engine.Payout
	for rows.Next() {
		var (
			p                          engine.Payout
			start, end, total          string
			processedDate, paymentDate sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.UserID, &start, &end, &total, &p.Status, &processedDate, &paymentDate); err != nil {
			return nil, err
		}
		p.Period.Start, _ = engine.ParseDate(start)
		p.Period.End, _ = engine.ParseDate(end)
		p.TotalAmount = engine.MustParseMoney(total)
		if processedDate.Valid {
			d, _ := engine.ParseDate(processedDate.String)
			p.ProcessedDate = &d
		}
		if paymentDate.Valid {
			d, _ := engine.ParseDate(paymentDate.String)
			p.PaymentDate = &d
		}
		payouts = append(payouts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range payouts {
		ids, err := s.payoutMembers(ctx, payouts[i].ID)
		if err != nil {
			return nil, err
		}
		payouts[i].CommissionIDs = ids
	}

	return payouts, nil
}

func (s *Store) payoutMembers(ctx context.Context, id engine.PayoutID) ([]engine.CommissionID, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT commission_id FROM payout_commissions WHERE payout_id = ? ORDER BY position ASC",
		id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []engine.CommissionID
	for rows.Next() {
		var cid engine.CommissionID
		if err := rows.Scan(&cid); err != nil {
			return nil, err
		}
		ids = append(ids, cid)
	}
	return ids, rows.Err()
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{
		"payout_commissions", "payouts", "commissions",
		"quotas", "deals", "plan_assignments", "plan_rules", "plans",
	}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func isUniqueConstraintError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "duplicate key"))
}
