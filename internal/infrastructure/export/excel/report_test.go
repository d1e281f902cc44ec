package excel

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/expenseops/expense-analyzer/internal/core/domain"
)

func TestBuildReportWritesRecordsAndSummary(t *testing.T) {
	records := []domain.ExpenseRecord{
		{
			ID:          "e1",
			Amount:      decimal.RequireFromString("4.85"),
			Category:    domain.CategoryFood,
			Description: "Starbucks Coffee",
			Date:        "2024-01-15",
			Vendor:      "Starbucks Coffee",
			ProcessedAt: time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC),
		},
	}
	summary := &domain.Summary{
		Total: decimal.RequireFromString("4.85"),
		Count: 1,
		CategoryTotals: []domain.CategoryTotal{
			{Category: domain.CategoryFood, Total: decimal.RequireFromString("4.85"), Count: 1},
		},
		Months: []string{"2024-01"},
	}

	f, err := BuildReport(records, summary)
	if err != nil {
		t.Fatalf("BuildReport() error = %v", err)
	}
	defer f.Close()

	if got, _ := f.GetCellValue(expensesSheet, "A1"); got != "Date" {
		t.Errorf("header A1 = %q, want Date", got)
	}
	if got, _ := f.GetCellValue(expensesSheet, "B2"); got != "Starbucks Coffee" {
		t.Errorf("B2 = %q, want vendor", got)
	}
	if got, _ := f.GetCellValue(expensesSheet, "E2"); got != "4.85" {
		t.Errorf("E2 = %q, want 4.85", got)
	}
	if got, _ := f.GetCellValue(summarySheet, "B1"); got != "4.85" {
		t.Errorf("summary total = %q, want 4.85", got)
	}
	if got, _ := f.GetCellValue(summarySheet, "A5"); got != "food" {
		t.Errorf("summary category = %q, want food", got)
	}
}

func TestBuildReportEmpty(t *testing.T) {
	summary := &domain.Summary{CategoryTotals: []domain.CategoryTotal{}, Months: []string{}}
	f, err := BuildReport(nil, summary)
	if err != nil {
		t.Fatalf("BuildReport() error = %v", err)
	}
	defer f.Close()

	if got, _ := f.GetCellValue(expensesSheet, "A1"); got != "Date" {
		t.Errorf("header A1 = %q, want Date", got)
	}
}
