package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/expenseops/expense-analyzer/internal/core/domain"
)

type statusCall struct {
	status domain.DocumentStatus
	errMsg string
}

type processRepoFake struct {
	docs          map[string]*domain.Document
	getErr        error
	statusErr     error
	rejectionErr  error
	statusCalls   map[string][]statusCall
	rejectionID   string
	rejectReasons []string
}

func newProcessRepoFake(docs ...*domain.Document) *processRepoFake {
	byID := make(map[string]*domain.Document, len(docs))
	for _, doc := range docs {
		byID[doc.ID] = doc
	}
	return &processRepoFake{docs: byID, statusCalls: map[string][]statusCall{}}
}

func (f *processRepoFake) Create(context.Context, *domain.Document) error { return nil }

func (f *processRepoFake) GetByID(_ context.Context, id string) (*domain.Document, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	doc, ok := f.docs[id]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	copyDoc := *doc
	return &copyDoc, nil
}

func (f *processRepoFake) UpdateStatus(_ context.Context, id string, status domain.DocumentStatus, errMessage string) error {
	f.statusCalls[id] = append(f.statusCalls[id], statusCall{status: status, errMsg: errMessage})
	if f.statusErr != nil {
		return f.statusErr
	}
	return nil
}

func (f *processRepoFake) SaveRejection(_ context.Context, id string, reasons []string) error {
	if f.rejectionErr != nil {
		return f.rejectionErr
	}
	f.rejectionID = id
	f.rejectReasons = reasons
	return nil
}

func (f *processRepoFake) lastStatus(id string) domain.DocumentStatus {
	calls := f.statusCalls[id]
	if len(calls) == 0 {
		return ""
	}
	return calls[len(calls)-1].status
}

type expenseRepoFake struct {
	inserted  []domain.ExpenseRecord
	insertErr error
	listErr   error
}

func (f *expenseRepoFake) Insert(_ context.Context, rec *domain.ExpenseRecord) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, *rec)
	return nil
}

func (f *expenseRepoFake) List(context.Context) ([]domain.ExpenseRecord, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]domain.ExpenseRecord, len(f.inserted))
	copy(out, f.inserted)
	return out, nil
}

type extractorFake struct {
	texts map[string]string
	err   error
}

func (f *extractorFake) Extract(_ context.Context, doc *domain.Document) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.texts[doc.ID], nil
}

func testDoc(id, filename string) *domain.Document {
	return &domain.Document{
		ID:          id,
		Filename:    filename,
		MimeType:    "text/plain",
		StoragePath: id + "_" + filename,
		Status:      domain.StatusReceived,
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

var testNow = time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)

func newProcessUC(repo *processRepoFake, expenses *expenseRepoFake, extractor *extractorFake) *ProcessReceiptUseCase {
	return NewProcessReceiptUseCase(repo, expenses, extractor, nil, nil, DefaultNormalizationPolicy()).
		WithClock(fixedClock(testNow))
}

func TestProcessByIDAccepted(t *testing.T) {
	doc := testDoc("doc-1", "coffee.txt")
	repo := newProcessRepoFake(doc)
	expenses := &expenseRepoFake{}
	extractor := &extractorFake{texts: map[string]string{
		"doc-1": "Starbucks Coffee\nTotal: $4.85\nDate: 01/15/2024",
	}}

	outcome, err := newProcessUC(repo, expenses, extractor).ProcessByID(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("ProcessByID() error = %v", err)
	}
	if !outcome.Accepted() {
		t.Fatalf("outcome not accepted: %+v", outcome)
	}

	rec := outcome.Record
	if got := rec.Amount.StringFixed(2); got != "4.85" {
		t.Errorf("Amount = %s, want 4.85", got)
	}
	if rec.Category != domain.CategoryFood {
		t.Errorf("Category = %q, want food", rec.Category)
	}
	if rec.Vendor != "Starbucks Coffee" {
		t.Errorf("Vendor = %q, want Starbucks Coffee", rec.Vendor)
	}
	if rec.Date != "2024-01-15" {
		t.Errorf("Date = %q, want 2024-01-15", rec.Date)
	}
	if len(rec.Flags) != 0 {
		t.Errorf("unexpected flags %v", rec.Flags)
	}

	if len(expenses.inserted) != 1 {
		t.Fatalf("inserted %d records, want 1", len(expenses.inserted))
	}
	statuses := repo.statusCalls["doc-1"]
	want := []domain.DocumentStatus{domain.StatusExtracting, domain.StatusValidating, domain.StatusProcessed}
	if len(statuses) != len(want) {
		t.Fatalf("status calls = %v, want %v", statuses, want)
	}
	for i, s := range want {
		if statuses[i].status != s {
			t.Errorf("status[%d] = %q, want %q", i, statuses[i].status, s)
		}
	}
}

func TestProcessByIDRejectedNegativeAmount(t *testing.T) {
	doc := testDoc("doc-1", "refund.txt")
	repo := newProcessRepoFake(doc)
	expenses := &expenseRepoFake{}
	extractor := &extractorFake{texts: map[string]string{
		"doc-1": "Refund Center\nTotal: $-5.00\nDate: 01/15/2024",
	}}

	outcome, err := newProcessUC(repo, expenses, extractor).ProcessByID(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("ProcessByID() error = %v", err)
	}
	if outcome.Rejection == nil {
		t.Fatalf("expected rejection, got %+v", outcome)
	}
	found := false
	for _, reason := range outcome.Rejection.Reasons {
		if strings.HasPrefix(reason, "amount:") {
			found = true
		}
	}
	if !found {
		t.Errorf("reasons %v do not name the amount", outcome.Rejection.Reasons)
	}
	if len(expenses.inserted) != 0 {
		t.Errorf("rejected record reached the expense store")
	}
	if repo.lastStatus("doc-1") != domain.StatusRejected {
		t.Errorf("terminal status = %q, want rejected", repo.lastStatus("doc-1"))
	}
	if repo.rejectionID != "doc-1" {
		t.Errorf("rejection saved for %q", repo.rejectionID)
	}
}

func TestProcessByIDEmptyTextFullyDefaulted(t *testing.T) {
	doc := testDoc("doc-1", "img_2043.jpg")
	repo := newProcessRepoFake(doc)
	extractor := &extractorFake{texts: map[string]string{"doc-1": ""}}
	uc := newProcessUC(repo, &expenseRepoFake{}, extractor)

	record := uc.normalize(doc, "", false)
	if !record.HasFlag(domain.FlagAmountUnrecoverable) {
		t.Errorf("missing amount_unrecoverable flag: %v", record.Flags)
	}
	if !record.HasFlag(domain.FlagDateDefaulted) {
		t.Errorf("missing date_defaulted flag: %v", record.Flags)
	}
	if !record.HasFlag(domain.FlagVendorFallback) {
		t.Errorf("missing vendor_fallback flag: %v", record.Flags)
	}
	if record.Vendor != "img_2043" {
		t.Errorf("Vendor = %q, want img_2043", record.Vendor)
	}
	if record.Date != testNow.Format(domain.DateLayout) {
		t.Errorf("Date = %q, want %q", record.Date, testNow.Format(domain.DateLayout))
	}

	outcome, err := uc.ProcessByID(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("ProcessByID() error = %v", err)
	}
	if outcome.Rejection == nil {
		t.Fatalf("expected rejection for empty text")
	}
	if repo.lastStatus("doc-1") != domain.StatusRejected {
		t.Errorf("terminal status = %q, want rejected", repo.lastStatus("doc-1"))
	}
}

func TestProcessByIDExtractorFailureDegrades(t *testing.T) {
	doc := testDoc("doc-1", "scan.pdf")
	repo := newProcessRepoFake(doc)
	extractor := &extractorFake{err: errors.New("ocr offline")}

	outcome, err := newProcessUC(repo, &expenseRepoFake{}, extractor).ProcessByID(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("ProcessByID() error = %v, extractor faults must degrade", err)
	}
	if outcome.Rejection == nil {
		t.Fatalf("expected rejection from defaulted record")
	}
	if repo.lastStatus("doc-1") != domain.StatusRejected {
		t.Errorf("terminal status = %q, want rejected", repo.lastStatus("doc-1"))
	}
}

func TestProcessByIDInsertFailureMarksFailed(t *testing.T) {
	doc := testDoc("doc-1", "coffee.txt")
	repo := newProcessRepoFake(doc)
	expenses := &expenseRepoFake{insertErr: errors.New("pg down")}
	extractor := &extractorFake{texts: map[string]string{
		"doc-1": "Starbucks Coffee\nTotal: $4.85\nDate: 01/15/2024",
	}}

	_, err := newProcessUC(repo, expenses, extractor).ProcessByID(context.Background(), "doc-1")
	if !errors.Is(err, domain.ErrTemporary) {
		t.Fatalf("ProcessByID() error = %v, want ErrTemporary", err)
	}
	if repo.lastStatus("doc-1") != domain.StatusFailed {
		t.Errorf("terminal status = %q, want failed", repo.lastStatus("doc-1"))
	}
}

func TestProcessByIDUnknownDocument(t *testing.T) {
	repo := newProcessRepoFake()
	_, err := newProcessUC(repo, &expenseRepoFake{}, &extractorFake{}).ProcessByID(context.Background(), "missing")
	if !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Fatalf("ProcessByID() error = %v, want ErrDocumentNotFound", err)
	}
}

func TestProcessBatchIsolatesFailures(t *testing.T) {
	docs := []*domain.Document{
		testDoc("d1", "a.txt"), testDoc("d2", "b.txt"), testDoc("d3", "c.txt"),
		testDoc("d4", "d.txt"), testDoc("d5", "e.txt"),
	}
	repo := newProcessRepoFake(docs...)
	expenses := &expenseRepoFake{}
	extractor := &extractorFake{texts: map[string]string{
		"d1": "Uber Trip\nTotal: $23.50\nDate: 02/01/2024",
		"d2": "Office Depot\nTotal: $89.99\nDate: 02/02/2024",
		"d3": "Bad Scan Inc\nTotal: $-12.00\nDate: 02/03/2024",
		"d4": "Delta Airlines\nTotal: $412.00\nDate: 02/04/2024",
		"d5": "CVS Pharmacy\nTotal: $18.20\nDate: 02/05/2024",
	}}

	outcomes := newProcessUC(repo, expenses, extractor).ProcessBatch(context.Background(),
		[]string{"d1", "d2", "d3", "d4", "d5"})

	if len(outcomes) != 5 {
		t.Fatalf("got %d outcomes, want 5", len(outcomes))
	}
	accepted, rejected := 0, 0
	for _, o := range outcomes {
		switch {
		case o.Accepted():
			accepted++
		case o.Rejection != nil:
			rejected++
		}
	}
	if accepted != 4 || rejected != 1 {
		t.Fatalf("accepted=%d rejected=%d, want 4 and 1", accepted, rejected)
	}
	if len(expenses.inserted) != 4 {
		t.Fatalf("inserted %d records, want 4", len(expenses.inserted))
	}
	if outcomes[2].Rejection == nil || outcomes[2].DocumentID != "d3" {
		t.Errorf("outcome[2] = %+v, want rejection for d3", outcomes[2])
	}
}

func TestNormalizeIsDeterministicExceptID(t *testing.T) {
	doc := testDoc("doc-1", "coffee.txt")
	uc := newProcessUC(newProcessRepoFake(doc), &expenseRepoFake{}, &extractorFake{})
	text := "Starbucks Coffee\nTotal: $4.85\nDate: 01/15/2024"

	a := uc.normalize(doc, text, false)
	b := uc.normalize(doc, text, false)
	if a.ID == b.ID {
		t.Errorf("record ids should be fresh per run")
	}
	a.ID, b.ID = "", ""
	if a.Amount.Cmp(b.Amount) != 0 || a.Category != b.Category || a.Date != b.Date ||
		a.Vendor != b.Vendor || a.Description != b.Description ||
		a.SourceReference != b.SourceReference || a.RawTextExcerpt != b.RawTextExcerpt ||
		!a.ProcessedAt.Equal(b.ProcessedAt) || len(a.Flags) != len(b.Flags) {
		t.Errorf("normalize not deterministic:\n%+v\n%+v", a, b)
	}
}

func TestNormalizeCapsExcerpt(t *testing.T) {
	doc := testDoc("doc-1", "long.txt")
	uc := newProcessUC(newProcessRepoFake(doc), &expenseRepoFake{}, &extractorFake{})

	text := "Total: $5.00\n" + strings.Repeat("x", 600)
	record := uc.normalize(doc, text, false)
	if got := len([]rune(record.RawTextExcerpt)); got != 500 {
		t.Errorf("excerpt length = %d, want 500", got)
	}
}
