package handler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/thestartupdeveloper10/jamiibudget/internal/models"
	"github.com/thestartupdeveloper10/jamiibudget/internal/report"
	"golang.org/x/sync/errgroup"
)

// TransactionsView lists one month of transactions.
type TransactionsView struct {
	Start   string         `json:"start"`
	End     string         `json:"end"`
	Summary report.Summary `json:"summary"`
	Entries []report.Entry `json:"entries"`
}

// Transactions lists both kinds for the month containing month, queried
// straight from the data sources. A zero month means the current one.
func (d *Dependencies) Transactions(ctx context.Context, month time.Time) error {
	if month.IsZero() {
		month = d.now()
	}
	r := report.MonthRange(month)

	var expenses, income []models.Transaction
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		expenses, err = d.Expenses.GetByDateRange(gctx, d.UserID, r)
		return err
	})
	g.Go(func() error {
		var err error
		income, err = d.Income.GetByDateRange(gctx, d.UserID, r)
		return err
	})
	if err := g.Wait(); err != nil {
		slog.Error("failed to list transactions", "user_id", d.UserID, "start", r.Start.Format(models.DateLayout), "error", err)
		return fmt.Errorf("list transactions: %w", err)
	}

	view := TransactionsView{
		Start:   r.Start.Format(models.DateLayout),
		End:     r.End.Format(models.DateLayout),
		Summary: report.Summarize(expenses, income),
		Entries: report.Latest(expenses, income, 0),
	}

	return d.render(view, func(w io.Writer) {
		fmt.Fprintf(w, "%s\n", r.Start.Format("January 2006"))
		fmt.Fprintf(w, "Income\t%s\n", report.FormatCurrency(view.Summary.TotalIncome))
		fmt.Fprintf(w, "Expenses\t%s\n", report.FormatCurrency(view.Summary.TotalExpense))
		fmt.Fprintln(w)
		if len(view.Entries) == 0 {
			fmt.Fprintln(w, "No transactions this month")
			return
		}
		writeEntries(w, view.Entries)
	})
}

// AddRequest is the input of the add command.
type AddRequest struct {
	Kind        models.Kind
	Amount      decimal.Decimal
	Category    string
	Description string
	Date        time.Time
}

// Add records a new transaction. Unknown categories are accepted with a warning.
func (d *Dependencies) Add(ctx context.Context, req AddRequest) error {
	src, err := d.source(req.Kind)
	if err != nil {
		return err
	}

	category := strings.ToLower(strings.TrimSpace(req.Category))
	if !models.IsKnownCategory(req.Kind, category) {
		slog.Warn("unknown category", "kind", req.Kind, "category", category, "known", models.Categories(req.Kind))
	}
	date := req.Date
	if date.IsZero() {
		date = d.now()
	}

	t, err := src.Create(ctx, models.TransactionInput{
		UserID:      d.UserID,
		Amount:      req.Amount,
		Category:    category,
		Description: req.Description,
		Date:        date,
	})
	if err != nil {
		slog.Error("failed to create transaction", "kind", req.Kind, "user_id", d.UserID, "error", err)
		return fmt.Errorf("create %s: %w", req.Kind, err)
	}
	slog.Info("transaction created", "kind", req.Kind, "id", t.ID, "amount", t.Amount.String())
	d.changed(ctx, req.Kind, models.ActionCreated, t.ID)

	return d.render(t, func(w io.Writer) {
		fmt.Fprintf(w, "Saved %s %s\t%s\t%s\n", req.Kind, t.ID, t.Category, report.FormatCurrency(t.Amount))
	})
}

// Update applies patch to the transaction id of the given kind.
func (d *Dependencies) Update(ctx context.Context, kind models.Kind, id string, patch models.TransactionPatch) error {
	src, err := d.source(kind)
	if err != nil {
		return err
	}
	if patch.Category != nil {
		category := strings.ToLower(strings.TrimSpace(*patch.Category))
		patch.Category = &category
	}

	t, err := src.Update(ctx, id, patch)
	if err != nil {
		slog.Error("failed to update transaction", "kind", kind, "id", id, "error", err)
		return fmt.Errorf("update %s %s: %w", kind, id, err)
	}
	slog.Info("transaction updated", "kind", kind, "id", t.ID)
	d.changed(ctx, kind, models.ActionUpdated, t.ID)

	return d.render(t, func(w io.Writer) {
		fmt.Fprintf(w, "Updated %s %s\t%s\t%s\t%s\n", kind, t.ID, t.DateString(), t.Category, report.FormatCurrency(t.Amount))
	})
}

// Delete removes the transaction id of the given kind.
func (d *Dependencies) Delete(ctx context.Context, kind models.Kind, id string) error {
	src, err := d.source(kind)
	if err != nil {
		return err
	}

	if err := src.Delete(ctx, id); err != nil {
		slog.Error("failed to delete transaction", "kind", kind, "id", id, "error", err)
		return fmt.Errorf("delete %s %s: %w", kind, id, err)
	}
	slog.Info("transaction deleted", "kind", kind, "id", id)
	d.changed(ctx, kind, models.ActionDeleted, id)

	return d.render(map[string]string{"status": "deleted", "id": id}, func(w io.Writer) {
		fmt.Fprintf(w, "Deleted %s %s\n", kind, id)
	})
}

// Categories lists the suggested categories for kind.
func (d *Dependencies) Categories(kind models.Kind) error {
	if _, err := d.source(kind); err != nil {
		return err
	}
	categories := models.Categories(kind)
	return d.render(categories, func(w io.Writer) {
		for _, c := range categories {
			fmt.Fprintln(w, c)
		}
	})
}
