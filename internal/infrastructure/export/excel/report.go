package excel

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/expenseops/expense-analyzer/internal/core/domain"
)

const (
	expensesSheet = "Expenses"
	summarySheet  = "Summary"
)

// BuildReport renders the record set and its summary as a two-sheet
// workbook.
func BuildReport(records []domain.ExpenseRecord, summary *domain.Summary) (*excelize.File, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(expensesSheet)
	if err != nil {
		return nil, fmt.Errorf("create expenses sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}

	header := []any{"Date", "Vendor", "Category", "Description", "Amount", "Source"}
	if err := f.SetSheetRow(expensesSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for i, rec := range records {
		cell := fmt.Sprintf("A%d", i+2)
		row := []any{rec.Date, rec.Vendor, string(rec.Category), rec.Description, rec.Amount.StringFixed(2), rec.SourceReference}
		if err := f.SetSheetRow(expensesSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := writeSummary(f, summary); err != nil {
		return nil, err
	}
	return f, nil
}

func writeSummary(f *excelize.File, summary *domain.Summary) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}

	rows := [][]any{
		{"Total", summary.Total.StringFixed(2)},
		{"Count", summary.Count},
		{},
		{"Category", "Total", "Count"},
	}
	for _, ct := range summary.CategoryTotals {
		rows = append(rows, []any{string(ct.Category), ct.Total.StringFixed(2), ct.Count})
	}
	rows = append(rows, []any{}, []any{"Months"})
	for _, month := range summary.Months {
		rows = append(rows, []any{month})
	}

	for i := range rows {
		cell := fmt.Sprintf("A%d", i+1)
		if err := f.SetSheetRow(summarySheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("write summary row %d: %w", i+1, err)
		}
	}
	return nil
}
