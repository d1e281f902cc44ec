package httpadapter

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/expenseops/expense-analyzer/internal/config"
	"github.com/expenseops/expense-analyzer/internal/core/domain"
)

type queryFake struct {
	records []domain.ExpenseRecord
	err     error
}

func (f queryFake) ListExpenses(context.Context) ([]domain.ExpenseRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

func (f queryFake) Summary(context.Context) (*domain.Summary, error) {
	if f.err != nil {
		return nil, f.err
	}
	total := decimal.Zero
	for _, rec := range f.records {
		total = total.Add(rec.Amount)
	}
	return &domain.Summary{
		Total:          total,
		Count:          len(f.records),
		CategoryTotals: []domain.CategoryTotal{},
		Months:         []string{},
	}, nil
}

type docsFake struct {
	err error
}

func (f docsFake) GetByID(context.Context, string) (*domain.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Document{ID: "doc-1", Filename: "a.txt", MimeType: "text/plain", StoragePath: "doc-1_a.txt", Status: domain.StatusProcessed}, nil
}

func TestGetReceiptByIDReturns404ForNotFound(t *testing.T) {
	handler := NewRouter(
		config.Config{},
		ingestSuccessFake{},
		queryFake{},
		docsFake{err: domain.WrapError(domain.ErrDocumentNotFound, "get", errors.New("id=missing"))},
	).Handler()

	req := httptest.NewRequest(http.MethodGet, "/v1/receipts/missing", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
}

func TestGetReceiptByIDReturnsDocumentState(t *testing.T) {
	handler := NewRouter(config.Config{}, ingestSuccessFake{}, queryFake{}, docsFake{}).Handler()

	req := httptest.NewRequest(http.MethodGet, "/v1/receipts/doc-1", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
}

func TestListExpensesMapsTemporaryTo503(t *testing.T) {
	handler := NewRouter(
		config.Config{},
		ingestSuccessFake{},
		queryFake{err: domain.WrapError(domain.ErrTemporary, "list", errors.New("pg down"))},
		docsFake{},
	).Handler()

	req := httptest.NewRequest(http.MethodGet, "/v1/expenses", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", res.Code)
	}
}

type ingestErrFake struct {
	err error
}

func (f ingestErrFake) Upload(context.Context, string, string, io.Reader) (*domain.Document, error) {
	return nil, f.err
}

func TestUploadMapsInvalidInputTo400(t *testing.T) {
	handler := NewRouter(
		config.Config{},
		ingestErrFake{err: domain.WrapError(domain.ErrInvalidInput, "upload", errors.New("unsupported extension"))},
		queryFake{},
		docsFake{},
	).Handler()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "x.docx")
	if err != nil {
		t.Fatalf("CreateFormFile() error = %v", err)
	}
	if _, err := part.Write([]byte("data")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/receipts", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}
