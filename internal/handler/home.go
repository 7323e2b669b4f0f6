package handler

import (
	"context"
	"fmt"
	"io"

	"github.com/thestartupdeveloper10/jamiibudget/internal/models"
	"github.com/thestartupdeveloper10/jamiibudget/internal/report"
)

// LatestCount is how many recent transactions the home screen lists.
const LatestCount = 5

// HomeView is the balance overview.
type HomeView struct {
	Summary report.Summary `json:"summary"`
	Latest  []report.Entry `json:"latest"`
}

// Home shows the balance, the totals and the latest transactions.
func (d *Dependencies) Home(ctx context.Context) error {
	snap, err := d.load(ctx)
	if err != nil {
		return fmt.Errorf("load transactions: %w", err)
	}

	view := HomeView{
		Summary: report.Summarize(snap.Expenses, snap.Income),
		Latest:  report.Latest(snap.Expenses, snap.Income, LatestCount),
	}

	return d.render(view, func(w io.Writer) {
		balance := report.FormatCurrency(view.Summary.Balance)
		if view.Summary.Balance.IsNegative() {
			balance = "-" + balance
		}
		fmt.Fprintf(w, "Balance\t%s\n", balance)
		fmt.Fprintf(w, "Income\t%s\n", report.FormatCurrency(view.Summary.TotalIncome))
		fmt.Fprintf(w, "Expenses\t%s\n", report.FormatCurrency(view.Summary.TotalExpense))
		fmt.Fprintln(w)
		if len(view.Latest) == 0 {
			fmt.Fprintln(w, "No transactions yet")
			return
		}
		fmt.Fprintln(w, "Recent transactions")
		writeEntries(w, view.Latest)
	})
}

func writeEntries(w io.Writer, entries []report.Entry) {
	for _, e := range entries {
		sign := "-"
		if e.Kind == models.KindIncome {
			sign = "+"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s%s\t%s\n", e.DateString(), e.Category, e.Description, sign, report.FormatCurrency(e.Amount), e.ID)
	}
}
