package composite

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/expenseops/expense-analyzer/internal/core/domain"
	"github.com/expenseops/expense-analyzer/internal/core/ports"
)

// Extractor routes a document to the recovery strategy its file type
// needs: plain text verbatim, PDFs through the native text layer with
// an OCR fallback, everything else straight to OCR.
type Extractor struct {
	plaintext  ports.TextExtractor
	pdf        ports.TextExtractor
	storage    ports.ObjectStorage
	recognizer ports.TextRecognizer
}

func NewExtractor(
	plaintext ports.TextExtractor,
	pdf ports.TextExtractor,
	storage ports.ObjectStorage,
	recognizer ports.TextRecognizer,
) *Extractor {
	return &Extractor{
		plaintext:  plaintext,
		pdf:        pdf,
		storage:    storage,
		recognizer: recognizer,
	}
}

func (e *Extractor) Extract(ctx context.Context, doc *domain.Document) (string, error) {
	switch strings.ToLower(filepath.Ext(doc.Filename)) {
	case ".txt", ".text":
		return e.plaintext.Extract(ctx, doc)
	case ".pdf":
		text, err := e.pdf.Extract(ctx, doc)
		if err == nil && text != "" {
			return text, nil
		}
		if err != nil {
			slog.Warn("pdf text layer unavailable, falling back to ocr",
				"document_id", doc.ID, "error", err)
		}
		return e.recognize(ctx, doc)
	default:
		return e.recognize(ctx, doc)
	}
}

func (e *Extractor) recognize(ctx context.Context, doc *domain.Document) (string, error) {
	reader, err := e.storage.Open(ctx, doc.StoragePath)
	if err != nil {
		return "", fmt.Errorf("open source document: %w", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("read source document: %w", err)
	}

	return e.recognizer.RecognizeText(ctx, raw, doc.MimeType)
}
