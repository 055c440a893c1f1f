package repository

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/spnd-app/spnd-server/internal/apperr"
	"github.com/spnd-app/spnd-server/internal/models"
)

// CreateSharedBudget creates the budget with its participant set. A
// positive initial pooled amount is applied as a contribution from the
// owner inside the same transaction, so the pool invariant
// (pooled == sum of contributions) holds from the first commit.
func (r *Repository) CreateSharedBudget(ctx context.Context, budget *models.SharedBudget, initialToken string) error {
	initial := budget.PooledAmount

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to create budget: %w", err)
	}
	defer rollback(tx)

	err = tx.QueryRowContext(ctx, `
		INSERT INTO ledger.shared_budgets (name, owner_id, pooled_amount)
		VALUES ($1, $2, 0)
		RETURNING id, created_at`,
		budget.Name, budget.OwnerID).
		Scan(&budget.ID, &budget.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create budget: %w", err)
	}

	for _, participantID := range budget.Participants {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO ledger.budget_participants (budget_id, user_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING`,
			budget.ID, participantID)
		if err != nil {
			return fmt.Errorf("failed to add participant: %w", err)
		}
	}

	budget.PooledAmount = 0
	if initial > 0 {
		contribution, err := contributeInTx(ctx, tx, budget.OwnerID, budget.ID, initial, initialToken)
		if err != nil {
			return err
		}
		budget.PooledAmount = contribution.PooledAfter
	}

	return tx.Commit()
}

// GetSharedBudget returns the budget with its participant set.
func (r *Repository) GetSharedBudget(ctx context.Context, budgetID string) (*models.SharedBudget, error) {
	budget := &models.SharedBudget{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, owner_id, pooled_amount, created_at
		FROM ledger.shared_budgets
		WHERE id = $1`, budgetID).
		Scan(&budget.ID, &budget.Name, &budget.OwnerID, &budget.PooledAmount, &budget.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, apperr.New(apperr.NotFound, "shared budget not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find budget: %w", err)
	}

	budget.Participants, err = r.participantIDs(ctx, budget.ID)
	if err != nil {
		return nil, err
	}
	return budget, nil
}

// ListSharedBudgetsForUser returns every budget the user owns or
// participates in.
func (r *Repository) ListSharedBudgetsForUser(ctx context.Context, userID string) ([]models.SharedBudget, error) {
	query := psql.Select("b.id", "b.name", "b.owner_id", "b.pooled_amount", "b.created_at").
		From("ledger.shared_budgets b").
		Join("ledger.budget_participants p ON p.budget_id = b.id").
		Where(sq.Eq{"p.user_id": userID}).
		OrderBy("b.created_at DESC")

	rows, err := query.RunWith(r.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}
	defer rows.Close()

	budgets := make([]models.SharedBudget, 0)
	for rows.Next() {
		var b models.SharedBudget
		if err := rows.Scan(&b.ID, &b.Name, &b.OwnerID, &b.PooledAmount, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to list budgets: %w", err)
		}
		budgets = append(budgets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}

	for i := range budgets {
		budgets[i].Participants, err = r.participantIDs(ctx, budgets[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return budgets, nil
}

func (r *Repository) participantIDs(ctx context.Context, budgetID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id FROM ledger.budget_participants WHERE budget_id = $1`, budgetID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to list participants: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Contribute atomically moves amount from the user's wallet into the
// budget's pool and writes the audit record. Replaying with the same
// idempotency token returns the originally committed result without
// re-applying the mutation.
func (r *Repository) Contribute(ctx context.Context, userID, budgetID string, amount float64, token string) (*models.Contribution, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to contribute: %w", err)
	}
	defer rollback(tx)

	contribution, err := contributeInTx(ctx, tx, userID, budgetID, amount, token)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to contribute: %w", err)
	}
	return contribution, nil
}

// contributeInTx runs the contribution algorithm inside tx. Rows are
// locked user first, budget second; every caller must keep that order
// so concurrent contributions cannot deadlock.
func contributeInTx(ctx context.Context, tx *sql.Tx, userID, budgetID string, amount float64, token string) (*models.Contribution, error) {
	var balance float64
	err := tx.QueryRowContext(ctx,
		`SELECT balance FROM ledger.users WHERE id = $1 FOR UPDATE`, userID).
		Scan(&balance)
	if err == sql.ErrNoRows {
		return nil, apperr.New(apperr.NotFound, "user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock user: %w", err)
	}

	var pooled float64
	err = tx.QueryRowContext(ctx,
		`SELECT pooled_amount FROM ledger.shared_budgets WHERE id = $1 FOR UPDATE`, budgetID).
		Scan(&pooled)
	if err == sql.ErrNoRows {
		return nil, apperr.New(apperr.NotFound, "shared budget not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock budget: %w", err)
	}

	var isParticipant bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM ledger.budget_participants
			WHERE budget_id = $1 AND user_id = $2)`,
		budgetID, userID).
		Scan(&isParticipant)
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if !isParticipant {
		return nil, apperr.New(apperr.Forbidden, "user is not a participant of this budget")
	}

	// Idempotency check runs under the user row lock, so a concurrent
	// retry with the same token serializes here and sees the first
	// committed record.
	prev := &models.Contribution{UserID: userID, BudgetID: budgetID, IdempotencyToken: token}
	err = tx.QueryRowContext(ctx, `
		SELECT id, amount, balance_after, pooled_after, created_at
		FROM ledger.contributions
		WHERE user_id = $1 AND budget_id = $2 AND idempotency_token = $3`,
		userID, budgetID, token).
		Scan(&prev.ID, &prev.Amount, &prev.BalanceAfter, &prev.PooledAfter, &prev.CreatedAt)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to check idempotency: %w", err)
	}
	if err == nil {
		if prev.Amount != amount {
			return nil, apperr.New(apperr.Conflict, "idempotency token was already used with a different amount")
		}
		return prev, nil
	}

	if balance < amount {
		return nil, apperr.New(apperr.InsufficientFunds, "insufficient funds")
	}

	newBalance := balance - amount
	newPooled := pooled + amount

	_, err = tx.ExecContext(ctx, `
		UPDATE ledger.users SET balance = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`,
		newBalance, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to debit wallet: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		UPDATE ledger.shared_budgets SET pooled_amount = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`,
		newPooled, budgetID)
	if err != nil {
		return nil, fmt.Errorf("failed to credit pool: %w", err)
	}

	contribution := &models.Contribution{
		UserID:           userID,
		BudgetID:         budgetID,
		Amount:           amount,
		IdempotencyToken: token,
		BalanceAfter:     newBalance,
		PooledAfter:      newPooled,
	}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO ledger.contributions (user_id, budget_id, amount, idempotency_token, balance_after, pooled_after)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`,
		userID, budgetID, amount, token, newBalance, newPooled).
		Scan(&contribution.ID, &contribution.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to record contribution: %w", err)
	}

	return contribution, nil
}
