package report

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
	"github.com/thestartupdeveloper10/jamiibudget/internal/models"
)

// Total sums the amounts of txs.
func Total(txs []models.Transaction) decimal.Decimal {
	sum := decimal.Zero
	for _, t := range txs {
		sum = sum.Add(t.Amount)
	}
	return sum
}

// Summary is the income, expense and balance headline.
type Summary struct {
	TotalIncome  decimal.Decimal `json:"totalIncome"`
	TotalExpense decimal.Decimal `json:"totalExpense"`
	Balance      decimal.Decimal `json:"balance"`
}

// Summarize computes totals; Balance is income minus expenses.
func Summarize(expenses, income []models.Transaction) Summary {
	in := Total(income)
	out := Total(expenses)
	return Summary{
		TotalIncome:  in,
		TotalExpense: out,
		Balance:      in.Sub(out),
	}
}

// Entry is a transaction tagged with the collection it came from.
type Entry struct {
	Kind models.Kind `json:"kind"`
	models.Transaction
}

// Latest merges both kinds and returns the n most recent entries. A
// non-positive n returns all of them.
func Latest(expenses, income []models.Transaction, n int) []Entry {
	entries := make([]Entry, 0, len(expenses)+len(income))
	for _, t := range expenses {
		entries = append(entries, Entry{Kind: models.KindExpense, Transaction: t})
	}
	for _, t := range income {
		entries = append(entries, Entry{Kind: models.KindIncome, Transaction: t})
	}
	slices.SortStableFunc(entries, func(a, b Entry) int {
		return models.NewerFirst(a.Transaction, b.Transaction)
	})
	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

// MonthRange returns the first and last calendar day of t's month.
func MonthRange(t time.Time) models.DateRange {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return models.DateRange{
		Start: start,
		End:   start.AddDate(0, 1, -1),
	}
}
