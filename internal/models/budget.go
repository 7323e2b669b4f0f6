package models

import (
	"github.com/shopspring/decimal"
)

// BudgetItem is a single line of a budget plan.
type BudgetItem struct {
	Name   string          `json:"name"`
	Share  decimal.Decimal `json:"share"`
	Amount decimal.Decimal `json:"amount"`
}

// BudgetGroup groups items under one rule bucket (needs, wants, savings).
type BudgetGroup struct {
	Name   string          `json:"name"`
	Share  decimal.Decimal `json:"share"`
	Amount decimal.Decimal `json:"amount"`
	Items  []BudgetItem    `json:"items"`
}

// BudgetPlan is the 50/30/20 breakdown of a base income.
type BudgetPlan struct {
	Base   decimal.Decimal `json:"base"`
	Groups []BudgetGroup   `json:"groups"`
}
