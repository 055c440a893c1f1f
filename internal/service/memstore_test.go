package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/spnd-app/spnd-server/internal/apperr"
	"github.com/spnd-app/spnd-server/internal/models"
)

// memStore is an in-memory Store with the same transactional semantics
// as the Postgres repository: one mutex serializes every mutation, the
// balance guard and the idempotency check run under it.
type memStore struct {
	mu            sync.Mutex
	users         map[string]*models.User
	emailIndex    map[string]string
	incomes       []models.Income
	expenses      []models.Expense
	budgets       map[string]*models.SharedBudget
	contributions []models.Contribution
	seq           int
}

func newMemStore() *memStore {
	return &memStore{
		users:      make(map[string]*models.User),
		emailIndex: make(map[string]string),
		budgets:    make(map[string]*models.SharedBudget),
	}
}

func (m *memStore) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func (m *memStore) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.emailIndex[user.Email]; exists {
		return apperr.New(apperr.Conflict, "email is already registered")
	}
	user.ID = m.nextID("user")
	user.CreatedAt = time.Now().UTC()
	m.users[user.ID] = user
	m.emailIndex[user.Email] = user.ID
	return nil
}

func (m *memStore) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.emailIndex[email]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "user not found")
	}
	u := *m.users[id]
	return &u, nil
}

func (m *memStore) FindUserByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "user not found")
	}
	copied := *u
	return &copied, nil
}

func (m *memStore) Snapshot(_ context.Context, userID string) (*models.AccountSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "user not found")
	}
	snap := &models.AccountSnapshot{User: *u}
	for _, in := range m.incomes {
		if in.UserID == userID {
			snap.IncomeCount++
		}
	}
	for _, ex := range m.expenses {
		if ex.UserID == userID {
			snap.ExpenseCount++
		}
	}
	for _, c := range m.contributions {
		if c.UserID == userID {
			snap.ContributionCount++
		}
	}
	return snap, nil
}

func (m *memStore) RecordIncome(_ context.Context, income *models.Income) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[income.UserID]
	if !ok {
		return apperr.New(apperr.NotFound, "user not found")
	}
	income.ID = m.nextID("income")
	u.Balance += income.Amount
	m.incomes = append(m.incomes, *income)
	return nil
}

func (m *memStore) RecordExpense(_ context.Context, expense *models.Expense) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[expense.UserID]
	if !ok {
		return apperr.New(apperr.NotFound, "user not found")
	}
	if u.Balance < expense.Amount {
		return apperr.New(apperr.InsufficientFunds, "insufficient funds")
	}
	expense.ID = m.nextID("expense")
	u.Balance -= expense.Amount
	m.expenses = append(m.expenses, *expense)
	return nil
}

func (m *memStore) ListIncomes(_ context.Context, userID string, filter models.RangeFilter) ([]models.Income, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Income, 0)
	for _, in := range m.incomes {
		if in.UserID == userID && inRange(in.OccurredAt, filter) {
			out = append(out, in)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OccurredAt.After(out[j].OccurredAt) })
	return out, nil
}

func (m *memStore) ListExpenses(_ context.Context, userID string, filter models.RangeFilter) ([]models.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Expense, 0)
	for _, ex := range m.expenses {
		if ex.UserID == userID && inRange(ex.OccurredAt, filter) {
			out = append(out, ex)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OccurredAt.After(out[j].OccurredAt) })
	return out, nil
}

func (m *memStore) CreateSharedBudget(ctx context.Context, budget *models.SharedBudget, initialToken string) error {
	m.mu.Lock()
	initial := budget.PooledAmount
	budget.ID = m.nextID("budget")
	budget.CreatedAt = time.Now().UTC()
	budget.PooledAmount = 0
	stored := *budget
	stored.Participants = append([]string(nil), budget.Participants...)
	m.budgets[budget.ID] = &stored
	m.mu.Unlock()

	if initial > 0 {
		c, err := m.Contribute(ctx, budget.OwnerID, budget.ID, initial, initialToken)
		if err != nil {
			m.mu.Lock()
			delete(m.budgets, budget.ID)
			m.mu.Unlock()
			return err
		}
		budget.PooledAmount = c.PooledAfter
	}
	return nil
}

func (m *memStore) GetSharedBudget(_ context.Context, budgetID string) (*models.SharedBudget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.budgets[budgetID]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "shared budget not found")
	}
	copied := *b
	copied.Participants = append([]string(nil), b.Participants...)
	return &copied, nil
}

func (m *memStore) ListSharedBudgetsForUser(_ context.Context, userID string) ([]models.SharedBudget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.SharedBudget, 0)
	for _, b := range m.budgets {
		if b.IsParticipant(userID) {
			copied := *b
			copied.Participants = append([]string(nil), b.Participants...)
			out = append(out, copied)
		}
	}
	return out, nil
}

func (m *memStore) Contribute(_ context.Context, userID, budgetID string, amount float64, token string) (*models.Contribution, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[userID]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "user not found")
	}
	b, ok := m.budgets[budgetID]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "shared budget not found")
	}
	if !b.IsParticipant(userID) {
		return nil, apperr.New(apperr.Forbidden, "user is not a participant of this budget")
	}

	for _, c := range m.contributions {
		if c.UserID == userID && c.BudgetID == budgetID && c.IdempotencyToken == token {
			if c.Amount != amount {
				return nil, apperr.New(apperr.Conflict, "idempotency token was already used with a different amount")
			}
			replay := c
			return &replay, nil
		}
	}

	if u.Balance < amount {
		return nil, apperr.New(apperr.InsufficientFunds, "insufficient funds")
	}

	u.Balance -= amount
	b.PooledAmount += amount
	contribution := models.Contribution{
		ID:               m.nextID("contribution"),
		UserID:           userID,
		BudgetID:         budgetID,
		Amount:           amount,
		IdempotencyToken: token,
		BalanceAfter:     u.Balance,
		PooledAfter:      b.PooledAmount,
		CreatedAt:        time.Now().UTC(),
	}
	m.contributions = append(m.contributions, contribution)
	result := contribution
	return &result, nil
}

func (m *memStore) contributionCount(userID, budgetID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.contributions {
		if c.UserID == userID && c.BudgetID == budgetID {
			n++
		}
	}
	return n
}

func inRange(t time.Time, filter models.RangeFilter) bool {
	if filter.From != nil && t.Before(*filter.From) {
		return false
	}
	if filter.To != nil && t.After(*filter.To) {
		return false
	}
	return true
}
