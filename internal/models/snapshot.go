package models

// AccountSnapshot is the read-side view returned after mutations: the
// user with the refreshed wallet balance plus activity counts, so the
// client never recomputes derived totals.
type AccountSnapshot struct {
	User
	IncomeCount       int `json:"incomeCount"`
	ExpenseCount      int `json:"expenseCount"`
	ContributionCount int `json:"contributionCount"`
}
