package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thestartupdeveloper10/jamiibudget/internal/models"
	"github.com/xuri/excelize/v2"
)

func sampleReport() Report {
	day := func(s string) time.Time {
		d, _ := models.ParseDate(s)
		return d
	}
	expenses := []models.Transaction{
		{Amount: decimal.NewFromInt(50), Category: "food", Date: day("2024-06-01")},
		{Amount: decimal.NewFromInt(30), Category: "Food", Date: day("2024-06-10")},
		{Amount: decimal.NewFromInt(20), Category: "transport", Date: day("2024-04-10")},
	}
	income := []models.Transaction{
		{Amount: decimal.NewFromInt(1000), Category: "salary", Date: day("2024-06-05")},
	}
	ref := day("2024-06-15")
	return Build("user-1", expenses, income, ref, ref.Add(10*time.Hour))
}

func TestBuild(t *testing.T) {
	r := sampleReport()

	assert.True(t, r.Summary.Balance.Equal(decimal.NewFromInt(900)))
	require.Len(t, r.Expenses, 2)
	assert.Equal(t, "food", r.Expenses[0].Category)
	assert.Equal(t, "80.0%", percentLabel(r.Expenses[0]))
	assert.Equal(t, "Jun", r.Series.MonthLabels[5])
	assert.Equal(t, "report-20240615-100000.pdf", r.FileName(FormatPDF))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("xlsx")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)
	assert.Contains(t, f.ContentType(), "spreadsheetml")

	_, err = ParseFormat("docx")
	assert.Error(t, err)
}

func TestRenderPDF(t *testing.T) {
	data, err := Render(FormatPDF, sampleReport())

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestRenderPDF_EmptyReport(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	data, err := RenderPDF(Build("user-1", nil, nil, now, now))

	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestRenderXLSX(t *testing.T) {
	data, err := Render(FormatXLSX, sampleReport())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{sheetSummary, sheetCategories, sheetMonthly}, f.GetSheetList())

	balance, err := f.GetCellValue(sheetSummary, "B6", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "900", balance)

	category, err := f.GetCellValue(sheetCategories, "B2")
	require.NoError(t, err)
	assert.Equal(t, "food", category)

	month, err := f.GetCellValue(sheetMonthly, "A7")
	require.NoError(t, err)
	assert.Equal(t, "Jun 2024", month)
}
