package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeIncomeCategory(t *testing.T) {
	assert.Equal(t, "freelance", NormalizeIncomeCategory("Freelance"))
	assert.Equal(t, "salary", NormalizeIncomeCategory("  salary "))
	assert.Equal(t, CategoryOther, NormalizeIncomeCategory("winnings"))
	assert.Equal(t, CategoryOther, NormalizeIncomeCategory(""))
}

func TestNormalizeExpenseCategory(t *testing.T) {
	assert.Equal(t, "food", NormalizeExpenseCategory("FOOD"))
	assert.Equal(t, CategoryOther, NormalizeExpenseCategory("subscriptions"))
}

func TestBudgetIsParticipant(t *testing.T) {
	b := &SharedBudget{OwnerID: "owner", Participants: []string{"owner", "friend"}}
	assert.True(t, b.IsParticipant("owner"))
	assert.True(t, b.IsParticipant("friend"))
	assert.False(t, b.IsParticipant("stranger"))
}
