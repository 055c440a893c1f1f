package models

import "time"

// SharedBudget is a named pooled fund owned by one user and fed by
// participant contributions. The owner is always a participant.
type SharedBudget struct {
	ID           string    `json:"_id"`
	Name         string    `json:"budgetname"`
	OwnerID      string    `json:"user"`
	Participants []string  `json:"participants"`
	PooledAmount float64   `json:"amount"`
	CreatedAt    time.Time `json:"createdAt"`
}

// IsParticipant reports whether the given user may contribute to the budget.
func (b *SharedBudget) IsParticipant(userID string) bool {
	if b.OwnerID == userID {
		return true
	}
	for _, p := range b.Participants {
		if p == userID {
			return true
		}
	}
	return false
}
