package models

import "slices"

// Category keys are free-form; these are the sets offered when recording.
var (
	ExpenseCategories = []string{"food", "shopping", "transport", "bills", "entertainment", "education", "other"}
	IncomeCategories  = []string{"salary", "freelance", "investment", "business", "other"}
)

// Categories returns the suggested categories for a kind.
func Categories(kind Kind) []string {
	if kind == KindIncome {
		return IncomeCategories
	}
	return ExpenseCategories
}

// IsKnownCategory reports whether category is one of the suggested ones for kind.
func IsKnownCategory(kind Kind, category string) bool {
	return slices.Contains(Categories(kind), category)
}
