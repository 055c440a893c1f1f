package models

import "strings"

// CategoryOther is the fallback for categories outside the known sets.
const CategoryOther = "other"

var incomeCategories = map[string]struct{}{
	"salary":      {},
	"freelance":   {},
	"business":    {},
	"investment":  {},
	"gift":        {},
	CategoryOther: {},
}

var expenseCategories = map[string]struct{}{
	"food":          {},
	"transport":     {},
	"housing":       {},
	"utilities":     {},
	"entertainment": {},
	"shopping":      {},
	"health":        {},
	CategoryOther:   {},
}

// NormalizeIncomeCategory lowercases the category and folds unknown
// values to "other". Categories are free text on the wire.
func NormalizeIncomeCategory(c string) string {
	return normalize(c, incomeCategories)
}

// NormalizeExpenseCategory lowercases the category and folds unknown
// values to "other".
func NormalizeExpenseCategory(c string) string {
	return normalize(c, expenseCategories)
}

func normalize(c string, known map[string]struct{}) string {
	c = strings.ToLower(strings.TrimSpace(c))
	if _, ok := known[c]; ok {
		return c
	}
	return CategoryOther
}
