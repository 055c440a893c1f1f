package models

import "time"

// Income represents money entering a user's wallet. Records are
// append-only and never mutated after creation.
type Income struct {
	ID         string    `json:"_id"`
	UserID     string    `json:"user"`
	Amount     float64   `json:"amount"`
	Source     string    `json:"source"`
	Category   string    `json:"category"`
	OccurredAt time.Time `json:"createdAt"`
}
