package export

import (
	"bytes"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/signintech/gopdf"
	"github.com/thestartupdeveloper10/jamiibudget/internal/report"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	fontRegular = "go"
	fontBold    = "go-bold"

	pageWidth  = 595.0
	pageBottom = 790.0
	marginLeft = 40.0
)

type pdfWriter struct {
	pdf *gopdf.GoPdf
	y   float64
	err error
}

func (w *pdfWriter) text(x float64, font string, size float64, s string) {
	if w.err != nil {
		return
	}
	if err := w.pdf.SetFont(font, "", size); err != nil {
		w.err = err
		return
	}
	w.pdf.SetX(x)
	w.pdf.SetY(w.y)
	w.err = w.pdf.Cell(nil, s)
}

func (w *pdfWriter) advance(dy float64) {
	w.y += dy
	if w.y > pageBottom {
		w.pdf.AddPage()
		w.y = 40
	}
}

// RenderPDF draws the summary, category tables and a monthly bar chart on A4.
func RenderPDF(r Report) ([]byte, error) {
	pdf := &gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	if err := pdf.AddTTFFontData(fontRegular, goregular.TTF); err != nil {
		return nil, fmt.Errorf("load regular font: %w", err)
	}
	if err := pdf.AddTTFFontData(fontBold, gobold.TTF); err != nil {
		return nil, fmt.Errorf("load bold font: %w", err)
	}
	pdf.AddPage()
	w := &pdfWriter{pdf: pdf}

	// Header band
	pdf.SetFillColor(46, 125, 50)
	pdf.RectFromUpperLeftWithStyle(0, 0, pageWidth, 90, "F")
	pdf.SetTextColor(255, 255, 255)
	w.y = 30
	w.text(marginLeft, fontBold, 22, "JamiiBudget Report")
	w.y = 60
	w.text(marginLeft, fontRegular, 11, "Generated "+r.GeneratedAt.Format("02 Jan 2006 15:04"))

	pdf.SetTextColor(33, 33, 33)
	w.y = 115
	w.text(marginLeft, fontBold, 15, "Summary")
	w.advance(24)
	for _, line := range [][2]string{
		{"Total income", report.FormatCurrency(r.Summary.TotalIncome)},
		{"Total expenses", report.FormatCurrency(r.Summary.TotalExpense)},
		{"Balance", balanceLabel(r.Summary.Balance)},
	} {
		w.text(marginLeft, fontRegular, 12, line[0])
		w.text(220, fontBold, 12, line[1])
		w.advance(18)
	}

	w.advance(12)
	categoryTable(w, "Expenses by category", r.Expenses)
	w.advance(12)
	categoryTable(w, "Income by category", r.Income)
	w.advance(12)
	monthlyChart(w, r.Series)

	if w.err != nil {
		return nil, fmt.Errorf("render pdf: %w", w.err)
	}

	var buf bytes.Buffer
	if _, err := pdf.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func balanceLabel(balance decimal.Decimal) string {
	if balance.IsNegative() {
		return "-" + report.FormatCurrency(balance)
	}
	return report.FormatCurrency(balance)
}

func categoryTable(w *pdfWriter, title string, rows []report.CategoryRow) {
	w.text(marginLeft, fontBold, 15, title)
	w.advance(22)
	if len(rows) == 0 {
		w.text(marginLeft, fontRegular, 11, "No transactions")
		w.advance(18)
		return
	}

	w.text(marginLeft, fontBold, 11, "Category")
	w.text(220, fontBold, 11, "Count")
	w.text(300, fontBold, 11, "Amount")
	w.text(450, fontBold, 11, "Share")
	w.advance(16)
	for _, row := range rows {
		w.text(marginLeft, fontRegular, 11, row.Category)
		w.text(220, fontRegular, 11, fmt.Sprint(row.Count))
		w.text(300, fontRegular, 11, report.FormatCurrency(row.Amount))
		w.text(450, fontRegular, 11, percentLabel(row))
		w.advance(16)
	}
}

func monthlyChart(w *pdfWriter, series report.MonthlySeries) {
	const (
		chartHeight = 120.0
		slotWidth   = 80.0
		barWidth    = 28.0
	)

	w.text(marginLeft, fontBold, 15, "Last 6 months")
	w.advance(22)
	if w.y+chartHeight+40 > pageBottom {
		w.pdf.AddPage()
		w.y = 40
	}

	peak := decimal.Zero
	for i := range series.MonthLabels {
		peak = decimal.Max(peak, series.IncomeTotals[i], series.ExpenseTotals[i])
	}

	base := w.y + chartHeight
	for i, label := range series.MonthLabels {
		x := marginLeft + float64(i)*slotWidth
		bars := []struct {
			value   decimal.Decimal
			r, g, b uint8
		}{
			{series.IncomeTotals[i], 46, 125, 50},
			{series.ExpenseTotals[i], 198, 40, 40},
		}
		for j, bar := range bars {
			h := 0.0
			if peak.IsPositive() {
				h = bar.value.Div(peak).InexactFloat64() * chartHeight
			}
			w.pdf.SetFillColor(bar.r, bar.g, bar.b)
			w.pdf.RectFromUpperLeftWithStyle(x+float64(j)*barWidth, base-h, barWidth-4, h, "F")
		}
		w.y = base + 6
		w.text(x+10, fontRegular, 10, label)
	}
	w.y = base + 24
	w.text(marginLeft, fontRegular, 9, "Green: income   Red: expenses")
}
