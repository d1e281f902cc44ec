package ports

import (
	"context"
	"io"

	"github.com/expenseops/expense-analyzer/internal/core/domain"
)

// ReceiptIngestor is the inbound contract for receipt upload orchestration.
type ReceiptIngestor interface {
	Upload(ctx context.Context, filename, mimeType string, body io.Reader) (*domain.Document, error)
}

// ReceiptProcessor is the inbound contract for asynchronous normalization.
// A returned error means an infrastructure fault; noisy-input failures
// surface as a Rejection inside the Outcome instead.
type ReceiptProcessor interface {
	ProcessByID(ctx context.Context, documentID string) (domain.Outcome, error)
	ProcessBatch(ctx context.Context, documentIDs []string) []domain.Outcome
}

// ExpenseQueryService is the inbound read model for normalized expenses.
type ExpenseQueryService interface {
	ListExpenses(ctx context.Context) ([]domain.ExpenseRecord, error)
	Summary(ctx context.Context) (*domain.Summary, error)
}

// DocumentReader exposes document lifecycle state.
type DocumentReader interface {
	GetByID(ctx context.Context, id string) (*domain.Document, error)
}
