package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/expenseops/expense-analyzer/internal/config"
	"github.com/expenseops/expense-analyzer/internal/core/categorize"
	"github.com/expenseops/expense-analyzer/internal/core/domain"
	"github.com/expenseops/expense-analyzer/internal/core/ports"
	"github.com/expenseops/expense-analyzer/internal/core/usecase"
	"github.com/expenseops/expense-analyzer/internal/infrastructure/extractor/composite"
	"github.com/expenseops/expense-analyzer/internal/infrastructure/extractor/pdftext"
	"github.com/expenseops/expense-analyzer/internal/infrastructure/extractor/plaintext"
	"github.com/expenseops/expense-analyzer/internal/infrastructure/ocr/tesseract"
	"github.com/expenseops/expense-analyzer/internal/infrastructure/queue/nats"
	"github.com/expenseops/expense-analyzer/internal/infrastructure/repository/postgres"
	"github.com/expenseops/expense-analyzer/internal/infrastructure/resilience"
	"github.com/expenseops/expense-analyzer/internal/infrastructure/snapshot"
	"github.com/expenseops/expense-analyzer/internal/infrastructure/storage/localfs"
)

type App struct {
	Config config.Config

	Queue ports.MessageQueue
	Docs  ports.DocumentRepository

	IngestUC  ports.ReceiptIngestor
	ProcessUC ports.ReceiptProcessor
	QueryUC   ports.ExpenseQueryService

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	docs := postgres.NewDocumentRepository(db)
	if err := docs.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure documents schema: %w", err)
	}
	expenses := postgres.NewExpenseRepository(db)
	if err := expenses.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure expenses schema: %w", err)
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	recognizer := tesseract.NewWithOptions(cfg.OCRBaseURL, tesseract.Options{
		ResilienceExecutor: executor,
	})

	extractor := composite.NewExtractor(
		plaintext.NewExtractor(storage),
		pdftext.NewExtractor(storage),
		storage,
		recognizer,
	)

	keywords := categorize.Default()
	if cfg.CategoryKeywordFile != "" {
		keywords, err = categorize.Load(cfg.CategoryKeywordFile)
		if err != nil {
			return nil, fmt.Errorf("load category keywords: %w", err)
		}
	}

	ceiling, err := decimal.NewFromString(cfg.AmountCeiling)
	if err != nil {
		return nil, fmt.Errorf("parse amount ceiling %q: %w", cfg.AmountCeiling, err)
	}
	validator := domain.NewValidator(domain.ValidationPolicy{AmountCeiling: ceiling})

	var snapshotSource ports.SnapshotSource
	if cfg.SnapshotKey != "" {
		snapshotSource = snapshot.NewSource(storage, cfg.SnapshotKey)
	}

	ingestUC := usecase.NewIngestReceiptUseCase(docs, storage, queue)
	processUC := usecase.NewProcessReceiptUseCase(docs, expenses, extractor, keywords, validator,
		usecase.NormalizationPolicy{
			DateFutureTolerance: time.Duration(cfg.DateFutureToleranceHours) * time.Hour,
			RawExcerptLimit:     cfg.RawExcerptLimit,
		})
	queryUC := usecase.NewExpenseQueryUseCase(expenses, snapshotSource)

	return &App{
		Config: cfg,
		Queue:  queue,
		Docs:   docs,

		IngestUC:  ingestUC,
		ProcessUC: processUC,
		QueryUC:   queryUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
