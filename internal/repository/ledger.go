package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/spnd-app/spnd-server/internal/apperr"
	"github.com/spnd-app/spnd-server/internal/models"
)

// RecordIncome appends an income record and credits the wallet balance
// in the same transaction.
func (r *Repository) RecordIncome(ctx context.Context, income *models.Income) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to record income: %w", err)
	}
	defer rollback(tx)

	query := `
		INSERT INTO ledger.incomes (user_id, amount, source, category, occurred_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	err = tx.QueryRowContext(ctx, query,
		income.UserID, income.Amount, income.Source, income.Category, income.OccurredAt).
		Scan(&income.ID)
	if err != nil {
		return fmt.Errorf("failed to record income: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE ledger.users
		SET balance = balance + $1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2`,
		income.Amount, income.UserID)
	if err != nil {
		return fmt.Errorf("failed to credit balance: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.New(apperr.NotFound, "user not found")
	}

	return tx.Commit()
}

// RecordExpense appends an expense record and debits the wallet balance
// in the same transaction. The debit is guarded so the balance can never
// go negative.
func (r *Repository) RecordExpense(ctx context.Context, expense *models.Expense) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to record expense: %w", err)
	}
	defer rollback(tx)

	res, err := tx.ExecContext(ctx, `
		UPDATE ledger.users
		SET balance = balance - $1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2 AND balance >= $1`,
		expense.Amount, expense.UserID)
	if err != nil {
		return fmt.Errorf("failed to debit balance: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM ledger.users WHERE id = $1)`, expense.UserID).
			Scan(&exists); err != nil {
			return fmt.Errorf("failed to debit balance: %w", err)
		}
		if !exists {
			return apperr.New(apperr.NotFound, "user not found")
		}
		return apperr.New(apperr.InsufficientFunds, "insufficient funds")
	}

	query := `
		INSERT INTO ledger.expenses (user_id, amount, description, category, occurred_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	err = tx.QueryRowContext(ctx, query,
		expense.UserID, expense.Amount, expense.Description, expense.Category, expense.OccurredAt).
		Scan(&expense.ID)
	if err != nil {
		return fmt.Errorf("failed to record expense: %w", err)
	}

	return tx.Commit()
}

// ListIncomes returns the user's income history, most recent first.
func (r *Repository) ListIncomes(ctx context.Context, userID string, filter models.RangeFilter) ([]models.Income, error) {
	query := psql.Select("id", "user_id", "amount", "source", "category", "occurred_at").
		From("ledger.incomes").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("occurred_at DESC")
	query = applyRange(query, filter)

	rows, err := query.RunWith(r.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list incomes: %w", err)
	}
	defer rows.Close()

	incomes := make([]models.Income, 0)
	for rows.Next() {
		var in models.Income
		if err := rows.Scan(&in.ID, &in.UserID, &in.Amount, &in.Source, &in.Category, &in.OccurredAt); err != nil {
			return nil, fmt.Errorf("failed to list incomes: %w", err)
		}
		incomes = append(incomes, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list incomes: %w", err)
	}
	return incomes, nil
}

// ListExpenses returns the user's expense history, most recent first.
func (r *Repository) ListExpenses(ctx context.Context, userID string, filter models.RangeFilter) ([]models.Expense, error) {
	query := psql.Select("id", "user_id", "amount", "description", "category", "occurred_at").
		From("ledger.expenses").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("occurred_at DESC")
	query = applyRange(query, filter)

	rows, err := query.RunWith(r.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	expenses := make([]models.Expense, 0)
	for rows.Next() {
		var ex models.Expense
		if err := rows.Scan(&ex.ID, &ex.UserID, &ex.Amount, &ex.Description, &ex.Category, &ex.OccurredAt); err != nil {
			return nil, fmt.Errorf("failed to list expenses: %w", err)
		}
		expenses = append(expenses, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	return expenses, nil
}

func applyRange(query sq.SelectBuilder, filter models.RangeFilter) sq.SelectBuilder {
	if filter.From != nil {
		query = query.Where(sq.GtOrEq{"occurred_at": *filter.From})
	}
	if filter.To != nil {
		query = query.Where(sq.LtOrEq{"occurred_at": *filter.To})
	}
	return query
}
