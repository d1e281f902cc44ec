package usecase

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/expenseops/expense-analyzer/internal/core/domain"
	"github.com/expenseops/expense-analyzer/internal/core/ports"
)

var allowedExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".pdf":  {},
	".txt":  {},
	".text": {},
}

// IngestReceiptUseCase stores an uploaded receipt and announces it for
// asynchronous processing.
type IngestReceiptUseCase struct {
	documents ports.DocumentRepository
	storage   ports.ObjectStorage
	queue     ports.MessageQueue
	clock     func() time.Time
}

func NewIngestReceiptUseCase(
	documents ports.DocumentRepository,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
) *IngestReceiptUseCase {
	return &IngestReceiptUseCase{
		documents: documents,
		storage:   storage,
		queue:     queue,
		clock:     time.Now,
	}
}

func (uc *IngestReceiptUseCase) Upload(ctx context.Context, filename, mimeType string, body io.Reader) (*domain.Document, error) {
	const op = "ingest.upload"

	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := allowedExtensions[ext]; !ok {
		return nil, domain.WrapError(domain.ErrInvalidInput, op,
			fmt.Errorf("unsupported file extension %q", ext))
	}

	id := uuid.NewString()
	storageKey := id + "_" + sanitizeUploadName(filename)

	if err := uc.storage.Save(ctx, storageKey, body); err != nil {
		return nil, domain.WrapError(domain.ErrTemporary, op, err)
	}

	now := uc.clock().UTC()
	doc := &domain.Document{
		ID:          id,
		Filename:    filename,
		MimeType:    mimeType,
		StoragePath: storageKey,
		Status:      domain.StatusReceived,
		UploadedAt:  now,
		UpdatedAt:   now,
	}

	if err := uc.documents.Create(ctx, doc); err != nil {
		return nil, domain.WrapError(domain.ErrTemporary, op, err)
	}

	if err := uc.queue.PublishDocumentUploaded(ctx, doc.ID); err != nil {
		return nil, domain.WrapError(domain.ErrTemporary, op, err)
	}

	return doc, nil
}

func (uc *IngestReceiptUseCase) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	return uc.documents.GetByID(ctx, id)
}

// sanitizeUploadName keeps storage keys flat and shell-safe. Path
// components are stripped and anything outside a conservative character
// set becomes an underscore.
func sanitizeUploadName(filename string) string {
	base := filepath.Base(filename)
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	name := b.String()
	if name == "" || name == "." || name == ".." {
		return "receipt"
	}
	return name
}
