package export

import (
	"fmt"

	"github.com/thestartupdeveloper10/jamiibudget/internal/report"
	"github.com/xuri/excelize/v2"
)

const (
	sheetSummary    = "Summary"
	sheetCategories = "Categories"
	sheetMonthly    = "Monthly"
)

type sheetWriter struct {
	f   *excelize.File
	err error
}

func (s *sheetWriter) set(sheet string, col, row int, value any) {
	if s.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		s.err = err
		return
	}
	s.err = s.f.SetCellValue(sheet, cell, value)
}

func (s *sheetWriter) style(sheet string, fromCol, fromRow, toCol, toRow, styleID int) {
	if s.err != nil {
		return
	}
	from, _ := excelize.CoordinatesToCellName(fromCol, fromRow)
	to, _ := excelize.CoordinatesToCellName(toCol, toRow)
	s.err = s.f.SetCellStyle(sheet, from, to, styleID)
}

// RenderXLSX writes a workbook with summary, category and monthly sheets.
// Amounts are numeric cells so they can be charted in a spreadsheet.
func RenderXLSX(r Report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{sheetCategories, sheetMonthly} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#2E7D32"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return nil, fmt.Errorf("create money style: %w", err)
	}

	w := &sheetWriter{f: f}

	w.set(sheetSummary, 1, 1, "JamiiBudget Report")
	w.set(sheetSummary, 1, 2, "Generated")
	w.set(sheetSummary, 2, 2, r.GeneratedAt.Format("2006-01-02 15:04"))
	w.set(sheetSummary, 1, 4, "Total income")
	w.set(sheetSummary, 2, 4, r.Summary.TotalIncome.InexactFloat64())
	w.set(sheetSummary, 1, 5, "Total expenses")
	w.set(sheetSummary, 2, 5, r.Summary.TotalExpense.InexactFloat64())
	w.set(sheetSummary, 1, 6, "Balance")
	w.set(sheetSummary, 2, 6, r.Summary.Balance.InexactFloat64())
	w.style(sheetSummary, 2, 4, 2, 6, moneyStyle)

	headers := []string{"Kind", "Category", "Count", "Amount", "Share"}
	for i, h := range headers {
		w.set(sheetCategories, i+1, 1, h)
	}
	w.style(sheetCategories, 1, 1, len(headers), 1, headerStyle)
	row := 2
	for _, group := range []struct {
		kind string
		rows []report.CategoryRow
	}{{"expense", r.Expenses}, {"income", r.Income}} {
		for _, c := range group.rows {
			w.set(sheetCategories, 1, row, group.kind)
			w.set(sheetCategories, 2, row, c.Category)
			w.set(sheetCategories, 3, row, c.Count)
			w.set(sheetCategories, 4, row, c.Amount.InexactFloat64())
			w.set(sheetCategories, 5, row, percentLabel(c))
			row++
		}
	}
	if row > 2 {
		w.style(sheetCategories, 4, 2, 4, row-1, moneyStyle)
	}

	for i, h := range []string{"Month", "Income", "Expenses"} {
		w.set(sheetMonthly, i+1, 1, h)
	}
	w.style(sheetMonthly, 1, 1, 3, 1, headerStyle)
	for i, label := range r.Series.MonthLabels {
		w.set(sheetMonthly, 1, i+2, label+" "+r.Series.Months[i].Format("2006"))
		w.set(sheetMonthly, 2, i+2, r.Series.IncomeTotals[i].InexactFloat64())
		w.set(sheetMonthly, 3, i+2, r.Series.ExpenseTotals[i].InexactFloat64())
	}
	w.style(sheetMonthly, 2, 2, 3, len(r.Series.MonthLabels)+1, moneyStyle)

	if w.err != nil {
		return nil, fmt.Errorf("fill workbook: %w", w.err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
