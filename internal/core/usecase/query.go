package usecase

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/expenseops/expense-analyzer/internal/core/domain"
	"github.com/expenseops/expense-analyzer/internal/core/ports"
)

// ExpenseQueryUseCase serves the read side: live records from the
// repository merged with an optional snapshot exported by the system
// this one replaced.
type ExpenseQueryUseCase struct {
	expenses ports.ExpenseRepository
	snapshot ports.SnapshotSource
	clock    func() time.Time
}

// NewExpenseQueryUseCase wires the read model. snapshot may be nil when
// no legacy export is configured.
func NewExpenseQueryUseCase(expenses ports.ExpenseRepository, snapshot ports.SnapshotSource) *ExpenseQueryUseCase {
	return &ExpenseQueryUseCase{
		expenses: expenses,
		snapshot: snapshot,
		clock:    time.Now,
	}
}

// WithClock overrides the time source. Intended for tests.
func (uc *ExpenseQueryUseCase) WithClock(clock func() time.Time) *ExpenseQueryUseCase {
	uc.clock = clock
	return uc
}

func (uc *ExpenseQueryUseCase) ListExpenses(ctx context.Context) ([]domain.ExpenseRecord, error) {
	records, err := uc.expenses.List(ctx)
	if err != nil {
		return nil, err
	}

	if uc.snapshot != nil {
		raw, err := uc.snapshot.Fetch(ctx)
		if err != nil {
			slog.Warn("legacy snapshot unavailable, serving live records only", "error", err)
		} else {
			records = mergeRecords(records, reconcileResultPayload(raw, uc.clock().UTC()))
		}
	}

	sortRecords(records)
	return records, nil
}

// Summary is recomputed from the full record set on every call; nothing
// is cached between requests.
func (uc *ExpenseQueryUseCase) Summary(ctx context.Context) (*domain.Summary, error) {
	records, err := uc.ListExpenses(ctx)
	if err != nil {
		return nil, err
	}
	return buildSummary(records), nil
}

// mergeRecords unions live and legacy rows. On an ID collision the live
// row wins.
func mergeRecords(live, legacy []domain.ExpenseRecord) []domain.ExpenseRecord {
	seen := make(map[string]struct{}, len(live))
	for _, rec := range live {
		seen[rec.ID] = struct{}{}
	}
	merged := live
	for _, rec := range legacy {
		if _, ok := seen[rec.ID]; ok {
			continue
		}
		seen[rec.ID] = struct{}{}
		merged = append(merged, rec)
	}
	return merged
}

func sortRecords(records []domain.ExpenseRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Date != records[j].Date {
			return records[i].Date > records[j].Date
		}
		if !records[i].ProcessedAt.Equal(records[j].ProcessedAt) {
			return records[i].ProcessedAt.After(records[j].ProcessedAt)
		}
		return records[i].ID < records[j].ID
	})
}

func buildSummary(records []domain.ExpenseRecord) *domain.Summary {
	summary := &domain.Summary{
		Count:          len(records),
		CategoryTotals: []domain.CategoryTotal{},
		Months:         []string{},
	}

	totals := make(map[domain.Category]*domain.CategoryTotal)
	months := make(map[string]struct{})

	for _, rec := range records {
		summary.Total = summary.Total.Add(rec.Amount)

		if entry, ok := totals[rec.Category]; ok {
			entry.Total = entry.Total.Add(rec.Amount)
			entry.Count++
		} else {
			totals[rec.Category] = &domain.CategoryTotal{
				Category: rec.Category,
				Total:    rec.Amount,
				Count:    1,
			}
		}

		if len(rec.Date) >= 7 {
			months[rec.Date[:7]] = struct{}{}
		}
	}

	for _, entry := range totals {
		summary.CategoryTotals = append(summary.CategoryTotals, *entry)
	}
	sort.Slice(summary.CategoryTotals, func(i, j int) bool {
		cmp := summary.CategoryTotals[i].Total.Cmp(summary.CategoryTotals[j].Total)
		if cmp != 0 {
			return cmp > 0
		}
		return summary.CategoryTotals[i].Category < summary.CategoryTotals[j].Category
	})

	for month := range months {
		summary.Months = append(summary.Months, month)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(summary.Months)))

	return summary
}
