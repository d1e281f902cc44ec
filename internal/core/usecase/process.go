package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/expenseops/expense-analyzer/internal/core/categorize"
	"github.com/expenseops/expense-analyzer/internal/core/domain"
	"github.com/expenseops/expense-analyzer/internal/core/extract"
	"github.com/expenseops/expense-analyzer/internal/core/ports"
)

// NormalizationPolicy holds the tunables of the text-to-record pass.
type NormalizationPolicy struct {
	// DateFutureTolerance is how far past "now" an extracted date may
	// land before it is discarded as misparsed.
	DateFutureTolerance time.Duration
	// RawExcerptLimit caps the stored excerpt of the source text.
	RawExcerptLimit int
}

func DefaultNormalizationPolicy() NormalizationPolicy {
	return NormalizationPolicy{
		DateFutureTolerance: 24 * time.Hour,
		RawExcerptLimit:     500,
	}
}

// ProcessReceiptUseCase drives a stored document through extraction and
// validation to a terminal status.
type ProcessReceiptUseCase struct {
	documents ports.DocumentRepository
	expenses  ports.ExpenseRepository
	extractor ports.TextExtractor
	keywords  *categorize.Table
	validator *domain.Validator
	policy    NormalizationPolicy
	clock     func() time.Time
}

func NewProcessReceiptUseCase(
	documents ports.DocumentRepository,
	expenses ports.ExpenseRepository,
	extractor ports.TextExtractor,
	keywords *categorize.Table,
	validator *domain.Validator,
	policy NormalizationPolicy,
) *ProcessReceiptUseCase {
	if keywords == nil {
		keywords = categorize.Default()
	}
	if validator == nil {
		validator = domain.NewValidator(domain.DefaultValidationPolicy())
	}
	if policy.RawExcerptLimit <= 0 {
		policy.RawExcerptLimit = DefaultNormalizationPolicy().RawExcerptLimit
	}
	if policy.DateFutureTolerance <= 0 {
		policy.DateFutureTolerance = DefaultNormalizationPolicy().DateFutureTolerance
	}
	return &ProcessReceiptUseCase{
		documents: documents,
		expenses:  expenses,
		extractor: extractor,
		keywords:  keywords,
		validator: validator,
		policy:    policy,
		clock:     time.Now,
	}
}

// WithClock overrides the time source. Intended for tests.
func (uc *ProcessReceiptUseCase) WithClock(clock func() time.Time) *ProcessReceiptUseCase {
	uc.clock = clock
	return uc
}

// ProcessByID runs the full pipeline for one document. Extraction
// failures degrade to an empty-text record; infrastructure failures
// mark the document failed and surface the error.
func (uc *ProcessReceiptUseCase) ProcessByID(ctx context.Context, documentID string) (domain.Outcome, error) {
	const op = "process.by_id"

	doc, err := uc.documents.GetByID(ctx, documentID)
	if err != nil {
		return domain.Outcome{DocumentID: documentID, Err: err}, err
	}

	if err := uc.documents.UpdateStatus(ctx, doc.ID, domain.StatusExtracting, ""); err != nil {
		wrapped := domain.WrapError(domain.ErrTemporary, op, err)
		return domain.Outcome{DocumentID: doc.ID, Err: wrapped}, wrapped
	}

	text, extractErr := uc.extractor.Extract(ctx, doc)
	if extractErr != nil {
		slog.Warn("text recovery failed, continuing with empty text",
			"document_id", doc.ID, "error", extractErr)
		text = ""
	}

	if err := uc.documents.UpdateStatus(ctx, doc.ID, domain.StatusValidating, ""); err != nil {
		wrapped := domain.WrapError(domain.ErrTemporary, op, err)
		return domain.Outcome{DocumentID: doc.ID, Err: wrapped}, wrapped
	}

	record := uc.normalize(doc, text, extractErr != nil)

	if !record.Category.Valid() {
		contractErr := domain.WrapError(domain.ErrContract, op,
			fmt.Errorf("categorizer produced %q, outside the closed set", record.Category))
		uc.markFailed(ctx, doc.ID, contractErr)
		return domain.Outcome{DocumentID: doc.ID, Err: contractErr}, contractErr
	}

	if reasons := uc.validator.Validate(record); len(reasons) > 0 {
		rejection := &domain.Rejection{
			DocumentID:     doc.ID,
			Reasons:        reasons,
			RawTextExcerpt: record.RawTextExcerpt,
		}
		if err := uc.documents.SaveRejection(ctx, doc.ID, reasons); err != nil {
			wrapped := domain.WrapError(domain.ErrTemporary, op, err)
			uc.markFailed(ctx, doc.ID, wrapped)
			return domain.Outcome{DocumentID: doc.ID, Err: wrapped}, wrapped
		}
		if err := uc.documents.UpdateStatus(ctx, doc.ID, domain.StatusRejected, ""); err != nil {
			wrapped := domain.WrapError(domain.ErrTemporary, op, err)
			return domain.Outcome{DocumentID: doc.ID, Err: wrapped}, wrapped
		}
		return domain.Outcome{DocumentID: doc.ID, Rejection: rejection}, nil
	}

	if err := uc.expenses.Insert(ctx, record); err != nil {
		wrapped := domain.WrapError(domain.ErrTemporary, op, err)
		uc.markFailed(ctx, doc.ID, wrapped)
		return domain.Outcome{DocumentID: doc.ID, Err: wrapped}, wrapped
	}

	if err := uc.documents.UpdateStatus(ctx, doc.ID, domain.StatusProcessed, ""); err != nil {
		wrapped := domain.WrapError(domain.ErrTemporary, op, err)
		return domain.Outcome{DocumentID: doc.ID, Err: wrapped}, wrapped
	}

	return domain.Outcome{DocumentID: doc.ID, Record: record}, nil
}

// ProcessBatch handles each document independently. A failure in one
// element never aborts the rest.
func (uc *ProcessReceiptUseCase) ProcessBatch(ctx context.Context, documentIDs []string) []domain.Outcome {
	outcomes := make([]domain.Outcome, 0, len(documentIDs))
	for _, id := range documentIDs {
		outcome, err := uc.ProcessByID(ctx, id)
		if err != nil {
			slog.Error("document processing failed", "document_id", id, "error", err)
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

// normalize builds the candidate record from recovered text. Every
// heuristic fallback leaves a flag on the record so downstream readers
// can tell recovered fields from defaulted ones.
func (uc *ProcessReceiptUseCase) normalize(doc *domain.Document, text string, textUnavailable bool) *domain.ExpenseRecord {
	now := uc.clock().UTC()
	var flags []domain.ValidationFlag

	if textUnavailable {
		flags = append(flags, domain.FlagTextUnavailable)
	}

	amount := extract.Amount(text)
	value := decimal.Zero
	switch {
	case !amount.Found:
		flags = append(flags, domain.FlagAmountUnrecoverable)
	case amount.LowConfidence:
		value = amount.Value
		flags = append(flags, domain.FlagAmountLowConfidence)
	default:
		value = amount.Value
	}

	dateStr := ""
	if date := extract.Date(text, now, uc.policy.DateFutureTolerance); date.Found {
		dateStr = extract.FormatDate(date.Date)
	} else {
		dateStr = now.Format(domain.DateLayout)
		flags = append(flags, domain.FlagDateDefaulted)
	}

	vendor := extract.Vendor(text, doc.Filename)
	if vendor.FromFilename {
		flags = append(flags, domain.FlagVendorFallback)
	}

	category := uc.keywords.Categorize(text, vendor.Name)

	excerpt := text
	if runes := []rune(excerpt); len(runes) > uc.policy.RawExcerptLimit {
		excerpt = string(runes[:uc.policy.RawExcerptLimit])
	}

	return &domain.ExpenseRecord{
		ID:              uuid.NewString(),
		Amount:          value,
		Category:        category,
		Description:     vendor.Name,
		Date:            dateStr,
		Vendor:          vendor.Name,
		SourceReference: doc.StoragePath,
		RawTextExcerpt:  excerpt,
		ProcessedAt:     now,
		Flags:           flags,
	}
}

func (uc *ProcessReceiptUseCase) markFailed(ctx context.Context, documentID string, cause error) {
	if err := uc.documents.UpdateStatus(ctx, documentID, domain.StatusFailed, cause.Error()); err != nil {
		slog.Error("failed to record terminal failure",
			"document_id", documentID, "error", err)
	}
}
