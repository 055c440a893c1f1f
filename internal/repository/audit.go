package repository

import (
	"context"
	"fmt"
)

// WalletDrift reports a stored wallet balance that disagrees with the
// sum of the user's ledgers.
type WalletDrift struct {
	UserID   string
	Stored   float64
	Computed float64
}

// PoolDrift reports a stored pooled amount that disagrees with the sum
// of contributions to the budget.
type PoolDrift struct {
	BudgetID string
	Stored   float64
	Computed float64
}

// AuditWalletBalances recomputes every wallet balance from the ledgers
// and returns the rows that drifted. Read-only.
func (r *Repository) AuditWalletBalances(ctx context.Context) ([]WalletDrift, error) {
	query := `
		SELECT u.id, u.balance,
			COALESCE(i.total, 0) - COALESCE(e.total, 0) - COALESCE(c.total, 0) AS computed
		FROM ledger.users u
		LEFT JOIN (SELECT user_id, SUM(amount) AS total FROM ledger.incomes GROUP BY user_id) i ON i.user_id = u.id
		LEFT JOIN (SELECT user_id, SUM(amount) AS total FROM ledger.expenses GROUP BY user_id) e ON e.user_id = u.id
		LEFT JOIN (SELECT user_id, SUM(amount) AS total FROM ledger.contributions GROUP BY user_id) c ON c.user_id = u.id
		WHERE u.balance <> COALESCE(i.total, 0) - COALESCE(e.total, 0) - COALESCE(c.total, 0)`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to audit wallets: %w", err)
	}
	defer rows.Close()

	drifts := make([]WalletDrift, 0)
	for rows.Next() {
		var d WalletDrift
		if err := rows.Scan(&d.UserID, &d.Stored, &d.Computed); err != nil {
			return nil, fmt.Errorf("failed to audit wallets: %w", err)
		}
		drifts = append(drifts, d)
	}
	return drifts, rows.Err()
}

// AuditPooledAmounts recomputes every pool from its contributions and
// returns the rows that drifted. The initial amount of a budget is
// itself recorded as an owner contribution, so the pool must equal the
// plain contribution sum.
func (r *Repository) AuditPooledAmounts(ctx context.Context) ([]PoolDrift, error) {
	query := `
		SELECT b.id, b.pooled_amount, COALESCE(c.total, 0) AS computed
		FROM ledger.shared_budgets b
		LEFT JOIN (SELECT budget_id, SUM(amount) AS total FROM ledger.contributions GROUP BY budget_id) c ON c.budget_id = b.id
		WHERE b.pooled_amount <> COALESCE(c.total, 0)`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to audit pools: %w", err)
	}
	defer rows.Close()

	drifts := make([]PoolDrift, 0)
	for rows.Next() {
		var d PoolDrift
		if err := rows.Scan(&d.BudgetID, &d.Stored, &d.Computed); err != nil {
			return nil, fmt.Errorf("failed to audit pools: %w", err)
		}
		drifts = append(drifts, d)
	}
	return drifts, rows.Err()
}
