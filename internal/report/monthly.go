package report

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/thestartupdeveloper10/jamiibudget/internal/models"
)

// SeriesLength is the number of trailing months in a MonthlySeries.
const SeriesLength = 6

// MonthlySeries holds per-month sums in chronological order; the last entry
// is the reference month.
type MonthlySeries struct {
	Months        [SeriesLength]time.Time       `json:"-"`
	MonthLabels   [SeriesLength]string          `json:"monthLabels"`
	ExpenseTotals [SeriesLength]decimal.Decimal `json:"expenseTotals"`
	IncomeTotals  [SeriesLength]decimal.Decimal `json:"incomeTotals"`
}

// BuildMonthlySeries sums expenses and income into the six calendar months
// ending with the month of ref. A zero ref means now.
func BuildMonthlySeries(expenses, income []models.Transaction, ref time.Time) MonthlySeries {
	if ref.IsZero() {
		ref = time.Now()
	}
	anchor := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())

	var series MonthlySeries
	index := make(map[int]int, SeriesLength)
	for i := 0; i < SeriesLength; i++ {
		month := anchor.AddDate(0, -(SeriesLength - 1 - i), 0)
		series.Months[i] = month
		series.MonthLabels[i] = month.Format("Jan")
		series.ExpenseTotals[i] = decimal.Zero
		series.IncomeTotals[i] = decimal.Zero
		index[monthKey(month)] = i
	}

	for _, t := range expenses {
		if i, ok := index[monthKey(t.Date)]; ok {
			series.ExpenseTotals[i] = series.ExpenseTotals[i].Add(t.Amount)
		}
	}
	for _, t := range income {
		if i, ok := index[monthKey(t.Date)]; ok {
			series.IncomeTotals[i] = series.IncomeTotals[i].Add(t.Amount)
		}
	}
	return series
}

func monthKey(t time.Time) int {
	return t.Year()*12 + int(t.Month()) - 1
}
