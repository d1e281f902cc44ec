package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/expenseops/expense-analyzer/internal/bootstrap"
	"github.com/expenseops/expense-analyzer/internal/config"
	"github.com/expenseops/expense-analyzer/internal/core/domain"
	"github.com/expenseops/expense-analyzer/internal/observability/logging"
	"github.com/expenseops/expense-analyzer/internal/observability/metrics"
)

const service = "worker"

func main() {
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger(service, cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics(service)
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: metricsMux(workerMetrics),
	}
	go func() {
		slog.Info("worker metrics listening", "port", cfg.WorkerMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("worker metrics server failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	slog.Info("worker subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeDocumentUploaded(ctx, func(handlerCtx context.Context, documentID string) error {
		processCtx, cancel := context.WithTimeout(handlerCtx, 5*time.Minute)
		defer cancel()

		if doc, err := app.Docs.GetByID(processCtx, documentID); err == nil {
			workerMetrics.ObserveQueueLag(service, time.Since(doc.UploadedAt))
		}

		workerMetrics.StartDocument()
		start := time.Now()
		outcome, err := app.ProcessUC.ProcessByID(processCtx, documentID)
		workerMetrics.FinishDocument(service, outcomeStatus(outcome, err), time.Since(start))

		if outcome.Record != nil {
			for _, flag := range outcome.Record.Flags {
				workerMetrics.RecordFieldFallback(service, string(flag))
			}
		}
		return err
	})
	if err != nil {
		slog.Error("worker subscribe failed", "error", err)
		os.Exit(1)
	}
}

func metricsMux(m *metrics.WorkerMetrics) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	return mux
}

func outcomeStatus(outcome domain.Outcome, err error) string {
	switch {
	case err != nil:
		return "failed"
	case outcome.Rejection != nil:
		return "rejected"
	default:
		return "accepted"
	}
}
