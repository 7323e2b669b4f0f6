package handler

import (
	"context"
	"fmt"
	"io"

	"github.com/thestartupdeveloper10/jamiibudget/internal/report"
)

// Planner shows the 50/30/20 budget for the largest recorded income.
func (d *Dependencies) Planner(ctx context.Context) error {
	snap, err := d.load(ctx)
	if err != nil {
		return fmt.Errorf("load transactions: %w", err)
	}

	plan := report.PlanBudget(snap.Income)
	return d.render(plan, func(w io.Writer) {
		if plan.Base.IsZero() {
			fmt.Fprintln(w, "Record some income to get a budget plan")
			return
		}
		fmt.Fprintf(w, "Based on income of %s\n\n", report.FormatCurrency(plan.Base))
		for _, g := range plan.Groups {
			fmt.Fprintf(w, "%s (%s%%)\t%s\n", g.Name, g.Share.Shift(2).String(), report.FormatCurrency(g.Amount))
			for _, item := range g.Items {
				fmt.Fprintf(w, "  %s\t%s\n", item.Name, report.FormatCurrency(item.Amount))
			}
		}
	})
}
