package ports

import (
	"context"
	"io"

	"github.com/expenseops/expense-analyzer/internal/core/domain"
)

// DocumentRepository persists and reads source-document state.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error
	SaveRejection(ctx context.Context, id string, reasons []string) error
}

// ExpenseRepository persists and lists normalized expense records. Insert
// writes one record atomically; partially valid records never reach it.
type ExpenseRepository interface {
	Insert(ctx context.Context, rec *domain.ExpenseRecord) error
	List(ctx context.Context) ([]domain.ExpenseRecord, error)
}

// ObjectStorage stores source receipt bytes.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue publishes/consumes upload events.
type MessageQueue interface {
	PublishDocumentUploaded(ctx context.Context, documentID string) error
	SubscribeDocumentUploaded(ctx context.Context, handler func(context.Context, string) error) error
}

// TextExtractor recovers plain text from a stored receipt.
type TextExtractor interface {
	Extract(ctx context.Context, doc *domain.Document) (string, error)
}

// TextRecognizer is the OCR collaborator: opaque image bytes in, best
// effort text out.
type TextRecognizer interface {
	RecognizeText(ctx context.Context, image []byte, mimeType string) (string, error)
}

// SnapshotSource fetches a raw legacy query-result payload whose shape is
// reconciled on the read path.
type SnapshotSource interface {
	Fetch(ctx context.Context) ([]byte, error)
}
