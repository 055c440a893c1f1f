package service

import (
	"context"
	"strings"
	"time"

	"github.com/spnd-app/spnd-server/internal/apperr"
	"github.com/spnd-app/spnd-server/internal/models"
)

// RecordIncome validates and appends an income record, crediting the
// wallet in the same atomic unit.
func (s *Service) RecordIncome(ctx context.Context, userID string, amount float64, source, category string, occurredAt *time.Time) (*models.Income, error) {
	if amount <= 0 {
		return nil, apperr.New(apperr.InvalidInput, "amount must be positive")
	}
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, apperr.New(apperr.InvalidInput, "source is required")
	}
	if len(source) > maxLabelLen {
		return nil, apperr.New(apperr.InvalidInput, "source is too long")
	}

	income := &models.Income{
		UserID:     userID,
		Amount:     amount,
		Source:     source,
		Category:   models.NormalizeIncomeCategory(category),
		OccurredAt: occurredAtOrNow(occurredAt),
	}
	if err := s.store.RecordIncome(ctx, income); err != nil {
		return nil, err
	}

	s.log.Infof("Income recorded for user %s: %.2f (%s)", userID, amount, income.Category)
	return income, nil
}

// RecordExpense validates and appends an expense record, debiting the
// wallet in the same atomic unit. An expense that would drive the
// balance negative is rejected.
func (s *Service) RecordExpense(ctx context.Context, userID string, amount float64, description, category string, occurredAt *time.Time) (*models.Expense, error) {
	if amount <= 0 {
		return nil, apperr.New(apperr.InvalidInput, "amount must be positive")
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, apperr.New(apperr.InvalidInput, "description is required")
	}
	if len(description) > maxLabelLen {
		return nil, apperr.New(apperr.InvalidInput, "description is too long")
	}

	expense := &models.Expense{
		UserID:      userID,
		Amount:      amount,
		Description: description,
		Category:    models.NormalizeExpenseCategory(category),
		OccurredAt:  occurredAtOrNow(occurredAt),
	}
	if err := s.store.RecordExpense(ctx, expense); err != nil {
		return nil, err
	}

	s.log.Infof("Expense recorded for user %s: %.2f (%s)", userID, amount, expense.Category)
	return expense, nil
}

// ListIncomes returns the user's income history, most recent first.
func (s *Service) ListIncomes(ctx context.Context, userID string, filter models.RangeFilter) ([]models.Income, error) {
	return s.store.ListIncomes(ctx, userID, filter)
}

// ListExpenses returns the user's expense history, most recent first.
func (s *Service) ListExpenses(ctx context.Context, userID string, filter models.RangeFilter) ([]models.Expense, error) {
	return s.store.ListExpenses(ctx, userID, filter)
}

func occurredAtOrNow(t *time.Time) time.Time {
	if t != nil && !t.IsZero() {
		return *t
	}
	return time.Now().UTC()
}
