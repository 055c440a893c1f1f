package models

import "time"

// Expense represents money leaving a user's wallet. Records are
// append-only and never mutated after creation.
type Expense struct {
	ID          string    `json:"_id"`
	UserID      string    `json:"user"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	OccurredAt  time.Time `json:"createdAt"`
}
