package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/expenseops/expense-analyzer/internal/core/domain"
)

type ExpenseRepository struct {
	db *sql.DB
}

func NewExpenseRepository(db *sql.DB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

func (r *ExpenseRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026021002)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS expenses (
	id TEXT PRIMARY KEY,
	amount NUMERIC(12,2) NOT NULL,
	category TEXT NOT NULL,
	description TEXT NOT NULL,
	expense_date DATE NOT NULL,
	vendor TEXT NOT NULL,
	source_reference TEXT NOT NULL,
	raw_text_excerpt TEXT NOT NULL DEFAULT '',
	processed_at TIMESTAMPTZ NOT NULL,
	validation_flags JSONB NOT NULL DEFAULT '[]'::jsonb
);

CREATE INDEX IF NOT EXISTS idx_expenses_date ON expenses(expense_date DESC);
CREATE INDEX IF NOT EXISTS idx_expenses_category ON expenses(category);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

// Insert writes one record in a single statement; it either lands whole
// or not at all.
func (r *ExpenseRepository) Insert(ctx context.Context, rec *domain.ExpenseRecord) error {
	flagsJSON, err := json.Marshal(flagsOrEmpty(rec.Flags))
	if err != nil {
		return fmt.Errorf("marshal validation flags: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO expenses (
	id, amount, category, description, expense_date, vendor, source_reference, raw_text_excerpt, processed_at, validation_flags
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
`,
		rec.ID, rec.Amount.StringFixed(2), string(rec.Category), rec.Description, rec.Date,
		rec.Vendor, rec.SourceReference, rec.RawTextExcerpt, rec.ProcessedAt, flagsJSON,
	)
	if err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}
	return nil
}

func (r *ExpenseRepository) List(ctx context.Context) ([]domain.ExpenseRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, amount, category, description, expense_date, vendor, source_reference, raw_text_excerpt, processed_at, validation_flags
FROM expenses
ORDER BY expense_date DESC, processed_at DESC, id ASC
`)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	records := make([]domain.ExpenseRecord, 0)
	for rows.Next() {
		var rec domain.ExpenseRecord
		var amountRaw string
		var category string
		var expenseDate time.Time
		var flagsRaw []byte

		err := rows.Scan(
			&rec.ID, &amountRaw, &category, &rec.Description, &expenseDate,
			&rec.Vendor, &rec.SourceReference, &rec.RawTextExcerpt, &rec.ProcessedAt, &flagsRaw,
		)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}

		rec.Amount, err = decimal.NewFromString(amountRaw)
		if err != nil {
			return nil, fmt.Errorf("parse amount %q: %w", amountRaw, err)
		}
		rec.Category = domain.Category(category)
		rec.Date = expenseDate.Format(domain.DateLayout)
		if err := json.Unmarshal(flagsRaw, &rec.Flags); err != nil {
			return nil, fmt.Errorf("unmarshal validation flags: %w", err)
		}

		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return records, nil
}

func flagsOrEmpty(flags []domain.ValidationFlag) []domain.ValidationFlag {
	if flags == nil {
		return []domain.ValidationFlag{}
	}
	return flags
}
