// Package export renders budget reports as PDF or XLSX documents.
package export

import (
	"fmt"
	"time"

	"github.com/thestartupdeveloper10/jamiibudget/internal/models"
	"github.com/thestartupdeveloper10/jamiibudget/internal/report"
)

// Format is an export file format.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatPDF, FormatXLSX:
		return Format(s), nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// ContentType is the MIME type used when uploading.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/pdf"
}

// Report is everything a rendered report shows.
type Report struct {
	UserID      string
	GeneratedAt time.Time
	Summary     report.Summary
	Expenses    []report.CategoryRow
	Income      []report.CategoryRow
	Series      report.MonthlySeries
}

// Build assembles a report from transaction lists. ref anchors the monthly series.
func Build(userID string, expenses, income []models.Transaction, ref, now time.Time) Report {
	return Report{
		UserID:      userID,
		GeneratedAt: now,
		Summary:     report.Summarize(expenses, income),
		Expenses:    report.AggregateByCategory(expenses).Sorted(),
		Income:      report.AggregateByCategory(income).Sorted(),
		Series:      report.BuildMonthlySeries(expenses, income, ref),
	}
}

// FileName is the default name for an exported report.
func (r Report) FileName(f Format) string {
	return fmt.Sprintf("report-%s.%s", r.GeneratedAt.Format("20060102-150405"), f)
}

// Render produces the document bytes in format f.
func Render(f Format, r Report) ([]byte, error) {
	switch f {
	case FormatPDF:
		return RenderPDF(r)
	case FormatXLSX:
		return RenderXLSX(r)
	}
	return nil, fmt.Errorf("unsupported export format %q", f)
}

// percentLabel shows one decimal place; an undefined share reads as 0%.
func percentLabel(row report.CategoryRow) string {
	if !row.Percentage.Valid {
		return "0%"
	}
	return row.Percentage.Decimal.StringFixed(1) + "%"
}
