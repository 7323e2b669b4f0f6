package handler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/thestartupdeveloper10/jamiibudget/internal/export"
	"github.com/thestartupdeveloper10/jamiibudget/internal/report"
)

// ReportRequest selects the report anchor month and an optional export.
type ReportRequest struct {
	Ref    time.Time
	Format export.Format
	// OutDir receives the exported file unless Upload is set.
	OutDir string
	Upload bool
}

// ReportView is the category and monthly breakdown.
type ReportView struct {
	Summary  report.Summary       `json:"summary"`
	Expenses []report.CategoryRow `json:"expenses"`
	Income   []report.CategoryRow `json:"income"`
	Series   report.MonthlySeries `json:"series"`
	Export   string               `json:"export,omitempty"`
}

// Report shows per-category totals and the six-month series, and exports
// them when a format is given.
func (d *Dependencies) Report(ctx context.Context, req ReportRequest) error {
	snap, err := d.load(ctx)
	if err != nil {
		return fmt.Errorf("load transactions: %w", err)
	}

	ref := req.Ref
	if ref.IsZero() {
		ref = d.now()
	}
	doc := export.Build(d.UserID, snap.Expenses, snap.Income, ref, d.now())
	view := ReportView{
		Summary:  doc.Summary,
		Expenses: doc.Expenses,
		Income:   doc.Income,
		Series:   doc.Series,
	}

	if req.Format != "" {
		location, err := d.export(ctx, req, doc)
		if err != nil {
			return err
		}
		view.Export = location
	}

	return d.render(view, func(w io.Writer) {
		writeCategories(w, "Expenses by category", view.Expenses)
		writeCategories(w, "Income by category", view.Income)
		fmt.Fprintln(w, "Month\tIncome\tExpenses")
		for i, label := range view.Series.MonthLabels {
			fmt.Fprintf(w, "%s\t%s\t%s\n", label, report.FormatCurrency(view.Series.IncomeTotals[i]), report.FormatCurrency(view.Series.ExpenseTotals[i]))
		}
		if view.Export != "" {
			fmt.Fprintf(w, "\nExported to %s\n", view.Export)
		}
	})
}

func writeCategories(w io.Writer, title string, rows []report.CategoryRow) {
	fmt.Fprintln(w, title)
	if len(rows) == 0 {
		fmt.Fprintln(w, "  none")
	}
	for _, row := range rows {
		share := "0%"
		if row.Percentage.Valid {
			share = row.Percentage.Decimal.Round(0).String() + "%"
		}
		fmt.Fprintf(w, "  %s\t%d\t%s\t%s\n", row.Category, row.Count, report.FormatCurrency(row.Amount), share)
	}
	fmt.Fprintln(w)
}

// export renders doc and stores it locally or in the reports container.
func (d *Dependencies) export(ctx context.Context, req ReportRequest, doc export.Report) (string, error) {
	data, err := export.Render(req.Format, doc)
	if err != nil {
		slog.Error("failed to render report", "format", req.Format, "error", err)
		return "", fmt.Errorf("render report: %w", err)
	}
	name := doc.FileName(req.Format)

	if req.Upload {
		if d.Blob == nil {
			return "", ErrNoBlobStorage
		}
		blobName := fmt.Sprintf("%s/%s", blobUser(d.UserID), name)
		if err := d.Blob.UploadBytes(ctx, d.ReportsContainer, blobName, data, req.Format.ContentType()); err != nil {
			slog.Error("failed to upload report", "container", d.ReportsContainer, "blob_name", blobName, "error", err)
			return "", fmt.Errorf("upload report: %w", err)
		}
		slog.Info("report uploaded", "container", d.ReportsContainer, "blob_name", blobName, "size_bytes", len(data))
		return d.ReportsContainer + "/" + blobName, nil
	}

	path := filepath.Join(req.OutDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	slog.Info("report written", "path", path, "size_bytes", len(data))
	return path, nil
}

// blobUser keeps a missing identity out of blob paths.
func blobUser(userID string) string {
	if userID == "" {
		return "anonymous"
	}
	return userID
}
