package handler

import (
	"context"
	"fmt"
	"io"

	"github.com/thestartupdeveloper10/jamiibudget/internal/models"
	"github.com/thestartupdeveloper10/jamiibudget/internal/report"
)

// HistoryView is every transaction of both kinds, newest first.
type HistoryView struct {
	Summary report.Summary `json:"summary"`
	Entries []report.Entry `json:"entries"`
}

// AllTransactions lists the cached transactions of both kinds, all time.
func (d *Dependencies) AllTransactions(ctx context.Context) error {
	snap, err := d.load(ctx)
	if err != nil {
		return fmt.Errorf("load transactions: %w", err)
	}

	view := HistoryView{
		Summary: report.Summarize(snap.Expenses, snap.Income),
		Entries: report.Latest(snap.Expenses, snap.Income, 0),
	}

	return d.render(view, func(w io.Writer) {
		if len(view.Entries) == 0 {
			fmt.Fprintln(w, "No transactions yet")
			return
		}
		writeEntries(w, view.Entries)
	})
}

// FindEntry looks id up in expenses, then income.
func FindEntry(expenses, income []models.Transaction, id string) (report.Entry, error) {
	for _, t := range expenses {
		if t.ID == id {
			return report.Entry{Kind: models.KindExpense, Transaction: t}, nil
		}
	}
	for _, t := range income {
		if t.ID == id {
			return report.Entry{Kind: models.KindIncome, Transaction: t}, nil
		}
	}
	return report.Entry{}, models.ErrNotFound
}

// Show prints the details of one transaction of either kind.
func (d *Dependencies) Show(ctx context.Context, id string) error {
	if id == "" {
		return models.ErrMissingID
	}
	snap, err := d.load(ctx)
	if err != nil {
		return fmt.Errorf("load transactions: %w", err)
	}

	entry, err := FindEntry(snap.Expenses, snap.Income, id)
	if err != nil {
		return fmt.Errorf("show %s: %w", id, err)
	}

	return d.render(entry, func(w io.Writer) {
		sign := "-"
		if entry.Kind == models.KindIncome {
			sign = "+"
		}
		fmt.Fprintf(w, "Amount\t%s%s\n", sign, report.FormatCurrency(entry.Amount))
		fmt.Fprintf(w, "Kind\t%s\n", entry.Kind)
		fmt.Fprintf(w, "Category\t%s\n", entry.Category)
		if entry.Description != "" {
			fmt.Fprintf(w, "Description\t%s\n", entry.Description)
		}
		fmt.Fprintf(w, "Date\t%s\n", entry.Date.Format("Monday, January 2, 2006"))
		fmt.Fprintf(w, "ID\t%s\n", entry.ID)
	})
}
