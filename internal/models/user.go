package models

import "time"

// User represents a user in the system. Balance is the current wallet
// balance; the mobile client calls this field totalIncome on the wire.
type User struct {
	ID           string    `json:"_id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Not serialized
	Balance      float64   `json:"totalIncome"`
	CreatedAt    time.Time `json:"createdAt"`
}
