// Package report turns transaction lists into totals, breakdowns and series.
// Every function here is pure: inputs are never modified.
package report

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/thestartupdeveloper10/jamiibudget/internal/models"
)

var hundred = decimal.NewFromInt(100)

// CategoryTotal is the aggregate of one category bucket.
type CategoryTotal struct {
	Amount decimal.Decimal `json:"amount"`
	Count  int             `json:"count"`
	// Percentage of the total across all buckets. Invalid when that total is zero.
	Percentage decimal.NullDecimal `json:"percentage"`
}

// CategoryTotals maps a lowercased category key to its aggregate.
type CategoryTotals map[string]CategoryTotal

// CategoryKey normalizes a category for bucketing. Only letter case is
// folded; whitespace is significant.
func CategoryKey(category string) string {
	return strings.ToLower(category)
}

// AggregateByCategory sums amounts and counts per category and computes each
// bucket's raw share of the total. Rounding is left to the caller.
func AggregateByCategory(txs []models.Transaction) CategoryTotals {
	totals := make(CategoryTotals)
	total := decimal.Zero

	for _, t := range txs {
		key := CategoryKey(t.Category)
		bucket := totals[key]
		bucket.Amount = bucket.Amount.Add(t.Amount)
		bucket.Count++
		totals[key] = bucket
		total = total.Add(t.Amount)
	}

	if total.IsZero() {
		return totals
	}

	for key, bucket := range totals {
		bucket.Percentage = decimal.NewNullDecimal(bucket.Amount.Div(total).Mul(hundred))
		totals[key] = bucket
	}
	return totals
}

// CategoryRow is a named bucket, used when display order matters.
type CategoryRow struct {
	Category string `json:"category"`
	CategoryTotal
}

// Sorted returns the buckets by descending amount, ties broken by key.
func (c CategoryTotals) Sorted() []CategoryRow {
	rows := make([]CategoryRow, 0, len(c))
	for key, total := range c {
		rows = append(rows, CategoryRow{Category: key, CategoryTotal: total})
	}
	slices.SortFunc(rows, func(a, b CategoryRow) int {
		if cmp := b.Amount.Cmp(a.Amount); cmp != 0 {
			return cmp
		}
		return strings.Compare(a.Category, b.Category)
	})
	return rows
}
