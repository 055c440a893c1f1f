package models

import "time"

// Contribution is the audit record of a transfer from a user's wallet
// into a shared budget pool. BalanceAfter and PooledAfter are captured
// at commit time so an idempotent replay can return the original result.
type Contribution struct {
	ID               string    `json:"_id"`
	UserID           string    `json:"user"`
	BudgetID         string    `json:"budgetId"`
	Amount           float64   `json:"amount"`
	IdempotencyToken string    `json:"-"`
	BalanceAfter     float64   `json:"-"`
	PooledAfter      float64   `json:"-"`
	CreatedAt        time.Time `json:"createdAt"`
}
