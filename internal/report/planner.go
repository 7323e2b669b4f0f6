package report

import (
	"github.com/shopspring/decimal"
	"github.com/thestartupdeveloper10/jamiibudget/internal/models"
)

type planRule struct {
	name  string
	share string
	items [][2]string
}

// 50/30/20 rule. Item shares are fractions of the whole base.
var planRules = []planRule{
	{name: "Needs", share: "0.5", items: [][2]string{
		{"Housing", "0.25"}, {"Utilities", "0.1"}, {"Groceries", "0.1"}, {"Transport", "0.05"},
	}},
	{name: "Wants", share: "0.3", items: [][2]string{
		{"Entertainment", "0.1"}, {"Shopping", "0.1"}, {"Dining Out", "0.1"},
	}},
	{name: "Savings", share: "0.2", items: [][2]string{
		{"Emergency Fund", "0.1"}, {"Investments", "0.05"}, {"Debt Payment", "0.05"},
	}},
}

// PlanBudget splits the largest single income amount with the 50/30/20 rule.
func PlanBudget(income []models.Transaction) models.BudgetPlan {
	base := decimal.Zero
	for _, t := range income {
		if t.Amount.GreaterThan(base) {
			base = t.Amount
		}
	}
	return PlanFromBase(base)
}

// PlanFromBase splits base with the 50/30/20 rule.
func PlanFromBase(base decimal.Decimal) models.BudgetPlan {
	plan := models.BudgetPlan{Base: base}
	for _, rule := range planRules {
		share := decimal.RequireFromString(rule.share)
		group := models.BudgetGroup{
			Name:   rule.name,
			Share:  share,
			Amount: base.Mul(share),
		}
		for _, item := range rule.items {
			itemShare := decimal.RequireFromString(item[1])
			group.Items = append(group.Items, models.BudgetItem{
				Name:   item[0],
				Share:  itemShare,
				Amount: base.Mul(itemShare),
			})
		}
		plan.Groups = append(plan.Groups, group)
	}
	return plan
}
